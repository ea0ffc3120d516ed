// Package stream pushes plan announcements to an athlete's open websocket
// clients. With Redis configured, every API instance receives every
// announcement through a pattern subscription.
package stream

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	channelPrefix  = "plans:"
	channelSuffix  = ":broadcast"
	channelPattern = channelPrefix + "*" + channelSuffix
)

type Hub struct {
	redis   *redis.Client
	pubsub  *redis.PubSub
	logger  *slog.Logger
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	ID     string
	UserID string
	Send   chan []byte
}

// NewHub subscribes to the plan channels before returning, so a publish right
// after NewHub is not lost. A failed subscription leaves the hub local-only.
func NewHub(redisClient *redis.Client, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		logger:  logger,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		pubsub := redisClient.PSubscribe(context.Background(), channelPattern)
		if _, err := pubsub.Receive(context.Background()); err != nil {
			logger.Warn("plan feed subscription failed, delivering locally", "error", err)
			_ = pubsub.Close()
		} else {
			h.redis = redisClient
			h.pubsub = pubsub
			go h.forward(pubsub.Channel())
		}
	}
	return h
}

func (h *Hub) Register(userID string) *Client {
	client := &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		Send:   make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = map[*Client]struct{}{}
	}
	h.clients[userID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userClients, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := userClients[client]; !ok {
		return
	}
	delete(userClients, client)
	if len(userClients) == 0 {
		delete(h.clients, client.UserID)
	}
	close(client.Send)
}

// Broadcast announces payload to userID's clients. Through Redis the local
// clients are reached by the subscription; if publishing fails they are
// served directly and the error is returned.
func (h *Hub) Broadcast(ctx context.Context, userID string, payload []byte) error {
	if h.redis == nil {
		h.deliver(userID, payload)
		return nil
	}
	if err := h.redis.Publish(ctx, redisChannel(userID), payload).Err(); err != nil {
		h.deliver(userID, payload)
		return err
	}
	return nil
}

// Close stops the Redis subscription.
func (h *Hub) Close() error {
	if h.pubsub == nil {
		return nil
	}
	return h.pubsub.Close()
}

func (h *Hub) forward(messages <-chan *redis.Message) {
	for msg := range messages {
		userID := userIDFromChannel(msg.Channel)
		if userID == "" {
			continue
		}
		h.deliver(userID, []byte(msg.Payload))
	}
}

// deliver never blocks: a client whose buffer is full misses the message.
func (h *Hub) deliver(userID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.Send <- payload:
		default:
			h.logger.Debug("plan feed client lagging, dropping message", "user_id", userID, "client_id", client.ID)
		}
	}
}

func redisChannel(userID string) string {
	return channelPrefix + userID + channelSuffix
}

func userIDFromChannel(ch string) string {
	if len(ch) <= len(channelPrefix)+len(channelSuffix) {
		return ""
	}
	if !strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return ""
	}
	return ch[len(channelPrefix) : len(ch)-len(channelSuffix)]
}
