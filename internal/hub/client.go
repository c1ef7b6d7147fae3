package hub

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// HandleClient upgrades the request to a WebSocket and pumps subscribed
// events to it until the connection drops. One connection per session;
// reconnecting replaces the previous registration.
func HandleClient(userID int64, sessionID string, w http.ResponseWriter, r *http.Request) {
	sugar.Debugf("Connecting user ID [%d] session [%s] to WebSocket", userID, sessionID)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		sugar.Error(err)
		return
	}
	defer conn.Close()

	clientCtx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client := &Client{
		UserID:       userID,
		SessionID:    sessionID,
		Send:         make(chan []byte, sendBufferSize),
		Ctx:          clientCtx,
		cancel:       cancel,
		serverTopics: make(map[string]struct{}),
	}

	if !selfContained {
		pubsub := redisClient.Subscribe(clientCtx)
		defer pubsub.Close()
		client.PubSub = pubsub
	}

	setClient(client)
	defer func() {
		deleteClient(sessionID)
		if selfContained {
			dropAllLocalSubs(sessionID)
		}
	}()

	go writeLoop(client, conn)

	// the client never sends application data; reading only detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			sugar.Debugf("Session [%s] disconnected: %v", sessionID, err)
			return
		}
	}
}

func writeLoop(client *Client, conn *websocket.Conn) {
	var redisCh <-chan *redis.Message
	if client.PubSub != nil {
		redisCh = client.PubSub.Channel()
	}

	for {
		select {
		case <-client.Ctx.Done():
			return
		case frame := <-client.Send:
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				sugar.Debug(err)
				return
			}
		case msg, ok := <-redisCh:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				sugar.Debug(err)
				return
			}
		}
	}
}
