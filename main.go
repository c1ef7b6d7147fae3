package main

import (
	"context"
	"fmt"
	"net/http"

	"dalchat-backend/internal/config"
	"dalchat-backend/internal/database"
	"dalchat-backend/internal/email"
	"dalchat-backend/internal/handlers"
	"dalchat-backend/internal/hub"
	"dalchat-backend/internal/keyValue"
	"dalchat-backend/internal/models"
	"dalchat-backend/internal/snowflake"
	"dalchat-backend/internal/store"
	"dalchat-backend/internal/token"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

func setupLogger(cfg *models.ConfigFile) (*zap.SugaredLogger, error) {
	zapConfig := zap.NewProductionConfig()
	zapConfig.OutputPaths = []string{"app.log", "stdout"}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zapConfig.Level = level

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	return logger.Sugar(), nil
}

func setupRedis(cfg *models.ConfigFile) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

func main() {
	fmt.Println("Reading config...")
	cfg, err := config.Load()
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println("Setting up logger...")
	sugar, err := setupLogger(cfg)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer sugar.Sync()

	if err := snowflake.Setup(cfg.SnowflakeWorkerID); err != nil {
		sugar.Fatal(err)
	}

	fmt.Println("Connecting to database...")
	db, err := database.Setup(cfg)
	if err != nil {
		sugar.Fatal(err)
	}

	var redisClient *redis.Client
	if !cfg.SelfContained {
		fmt.Println("Connecting to redis...")
		redisClient, err = setupRedis(cfg)
		if err != nil {
			sugar.Fatal(err)
		}
	}

	keyValue.Setup(sugar, redisClient, cfg.SelfContained)
	hub.Setup(sugar, redisClient, cfg.SelfContained)
	token.Setup(cfg.JwtSecret)

	isHttps := cfg.TlsCert != "" && cfg.TlsKey != ""

	httpProtocol := "http"
	if isHttps {
		httpProtocol = "https"
	}
	fullAddress := fmt.Sprintf("%s://%s:%s", httpProtocol, cfg.Address, cfg.Port)

	if cfg.RequireEmailConfirm {
		email.Setup(cfg, fullAddress)
	}

	st := store.New(sugar, db)
	defer st.Close()

	router := handlers.NewRouter(cfg, sugar, st)

	address := fmt.Sprintf("%s:%s", cfg.Address, cfg.Port)
	fmt.Printf("Server is running on %s\n", fullAddress)

	if isHttps {
		err = http.ListenAndServeTLS(address, cfg.TlsCert, cfg.TlsKey, router)
	} else {
		err = http.ListenAndServe(address, router)
	}
	if err != nil {
		sugar.Fatal(err)
	}
}
