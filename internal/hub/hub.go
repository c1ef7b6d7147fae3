// Package hub pushes chat events to connected WebSocket clients. Fan-out goes
// through redis pub/sub so multiple nodes see each other's events, or through
// an in-process subscriber map in self-contained mode.
package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrNotConnected means the session has no live WebSocket. Callers that only
// poll ignore it.
var ErrNotConnected = errors.New("session is not connected to the hub")

const sendBufferSize = 64

type Client struct {
	UserID    int64
	SessionID string

	// outbound frames in self-contained mode
	Send chan []byte

	// per-client redis subscription otherwise
	PubSub *redis.PubSub
	Ctx    context.Context

	cancel context.CancelFunc

	// topics this client currently watches. The channel feed is exclusive,
	// subscribing to a new channel drops the old one; server feeds accumulate
	// so a member of several servers sees structural events from all of them.
	channelTopic string
	serverTopics map[string]struct{}
	mu           sync.Mutex
}

var clients = make(map[string]*Client)
var clientsMutex sync.Mutex

var sugar *zap.SugaredLogger
var redisClient *redis.Client
var redisCtx = context.Background()
var selfContained = true

var localSubsMutex sync.RWMutex
var localSubs = make(map[string][]string) // topic -> session ids

func Setup(_sugar *zap.SugaredLogger, _redisClient *redis.Client, _selfContained bool) {
	sugar = _sugar
	redisClient = _redisClient
	selfContained = _selfContained
}

func setClient(client *Client) {
	clientsMutex.Lock()
	defer clientsMutex.Unlock()

	clients[client.SessionID] = client
}

func deleteClient(sessionID string) {
	clientsMutex.Lock()
	defer clientsMutex.Unlock()

	delete(clients, sessionID)
}

func GetClient(sessionID string) (*Client, bool) {
	clientsMutex.Lock()
	defer clientsMutex.Unlock()

	client, exists := clients[sessionID]
	return client, exists
}

// SubscribeChannel points the session's single live channel feed at one
// channel, unsubscribing it from the previously watched one.
func SubscribeChannel(sessionID string, serverID int64, channelID string) error {
	client, exists := GetClient(sessionID)
	if !exists {
		return ErrNotConnected
	}

	client.mu.Lock()
	defer client.mu.Unlock()

	topic := ChannelTopic(serverID, channelID)
	if client.channelTopic == topic {
		return nil
	}

	if client.channelTopic != "" {
		if err := unsubscribe(client, client.channelTopic); err != nil {
			return err
		}
	}

	client.channelTopic = topic
	return subscribe(client, topic)
}

// SubscribeServer adds a server's structural-event feed to the session.
// Server subscriptions stack up and only end when the connection drops.
func SubscribeServer(sessionID string, serverID int64) error {
	client, exists := GetClient(sessionID)
	if !exists {
		return ErrNotConnected
	}

	client.mu.Lock()
	defer client.mu.Unlock()

	topic := ServerTopic(serverID)
	if _, subscribed := client.serverTopics[topic]; subscribed {
		return nil
	}

	if err := subscribe(client, topic); err != nil {
		return err
	}

	client.serverTopics[topic] = struct{}{}
	return nil
}

// caller holds client.mu
func subscribe(client *Client, topic string) error {
	if selfContained {
		localSubsMutex.Lock()
		localSubs[topic] = append(localSubs[topic], client.SessionID)
		localSubsMutex.Unlock()
		sugar.Debugf("Session %s subscribed to %s", client.SessionID, topic)
		return nil
	}

	return client.PubSub.Subscribe(client.Ctx, topic)
}

func unsubscribe(client *Client, topic string) error {
	if selfContained {
		localSubsMutex.Lock()
		defer localSubsMutex.Unlock()

		dropLocalSub(topic, client.SessionID)
		return nil
	}

	return client.PubSub.Unsubscribe(client.Ctx, topic)
}

// caller holds localSubsMutex
func dropLocalSub(topic string, sessionID string) {
	sessionIDs := localSubs[topic]
	for i := range sessionIDs {
		if sessionIDs[i] == sessionID {
			sessionIDs[i] = sessionIDs[len(sessionIDs)-1]
			localSubs[topic] = sessionIDs[:len(sessionIDs)-1]
			break
		}
	}

	if len(localSubs[topic]) == 0 {
		delete(localSubs, topic)
	}
}

func dropAllLocalSubs(sessionID string) {
	localSubsMutex.Lock()
	defer localSubsMutex.Unlock()

	for topic := range localSubs {
		dropLocalSub(topic, sessionID)
	}
}

// Emit publishes one event to every subscriber of a topic. Handlers call it
// after the store mutation committed. Message payloads carry the snowflake id,
// which is the authoritative per-channel order if two emits race.
func Emit(eventType string, topic string, payload any) error {
	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.Grow(len(eventType) + 1 + len(jsonBytes))
	buf.WriteString(eventType)
	buf.WriteByte('\n')
	buf.Write(jsonBytes)

	if !selfContained {
		return redisClient.Publish(redisCtx, topic, buf.String()).Err()
	}

	localSubsMutex.RLock()
	defer localSubsMutex.RUnlock()

	for _, sessionID := range localSubs[topic] {
		client, exists := GetClient(sessionID)
		if !exists {
			sugar.Warnf("Session %s is subscribed to %s but has no client", sessionID, topic)
			continue
		}

		select {
		case client.Send <- buf.Bytes():
		default:
			sugar.Warnf("Dropping event for session %s, send buffer is full", sessionID)
		}
	}

	return nil
}
