package models

import "time"

type User struct {
	ID          int64     `json:"id,string"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"displayName"`
	Password    []byte    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Server struct {
	ID        int64     `json:"id,string"`
	OwnerID   int64     `json:"ownerID,string"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Channel ids are slugs derived from the channel name, unique per server.
type Channel struct {
	ServerID  int64     `json:"serverID,string"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Member is a user's participation record in one server. DisplayName is a
// snapshot taken when the member joined and may drift from the user's current
// display name.
type Member struct {
	ServerID    int64     `json:"serverID,string"`
	UserID      int64     `json:"userID,string"`
	DisplayName string    `json:"displayName"`
	Role        Role      `json:"role"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// Message.Username is the sender's member display name at send time.
type Message struct {
	ID        int64     `json:"id,string"`
	ServerID  int64     `json:"serverID,string"`
	ChannelID string    `json:"channelID"`
	UserID    int64     `json:"userID,string"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	Time      time.Time `json:"time"`
}

type ConfigFile struct {
	Address             string `env:"ADDRESS"`
	Port                string `env:"PORT"`
	TlsCert             string `env:"TLS_CERT"`
	TlsKey              string `env:"TLS_KEY"`
	Cors                bool   `env:"CORS"`
	PrintHttpRequests   bool   `env:"PRINT_HTTP_REQUESTS"`
	LogLevel            string `env:"LOG_LEVEL"`
	JwtSecret           string `env:"JWT_SECRET"`
	SnowflakeWorkerID   int64  `env:"SNOWFLAKE_WORKER_ID"`
	SelfContained       bool   `env:"SELF_CONTAINED"`
	RequireEmailConfirm bool   `env:"REQUIRE_EMAIL_CONFIRM"`
	DbUser              string `env:"DB_USER"`
	DbPassword          string `env:"DB_PASSWORD"`
	DbAddress           string `env:"DB_ADDRESS"`
	DbPort              string `env:"DB_PORT"`
	DbDatabase          string `env:"DB_DATABASE"`
	RedisAddress        string `env:"REDIS_ADDRESS"`
	RedisPassword       string `env:"REDIS_PASSWORD"`
	SmtpUsername        string `env:"SMTP_USERNAME"`
	SmtpPassword        string `env:"SMTP_PASSWORD"`
	SmtpServer          string `env:"SMTP_SERVER"`
	SmtpPort            int    `env:"SMTP_PORT"`
}
