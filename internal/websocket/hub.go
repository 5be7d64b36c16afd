package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"ai-supportdesk-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Topic keys. Operator dashboards subscribe to their organization, the
// widget subscribes to its contact session.
const (
	topicOrgPrefix     = "org:"
	topicSessionPrefix = "session:"

	redisChannel = "cluster_events"
)

func OrgTopic(organizationId string) string {
	return topicOrgPrefix + organizationId
}

func SessionTopic(contactSessionId string) string {
	return topicSessionPrefix + contactSessionId
}

// Envelope is the JSON frame pushed to subscribers.
type Envelope struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

type Hub struct {
	// Registered clients map: topic -> list of clients (multi-tab)
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance fanout
	rdb *redis.Client

	// instanceId filters out our own redis echoes.
	instanceId string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		instanceId: uuid.New().String(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.Topic] = append(h.clients[client.Topic], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"topic": client.Topic})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.Topic]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.Topic] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.Topic]) == 0 {
					delete(h.clients, client.Topic)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish pushes an envelope to every subscriber of the topic on this
// instance, then relays it over redis for the other instances.
func (h *Hub) Publish(topic string, envelope Envelope) {
	data, err := json.Marshal(envelope)
	if err != nil {
		h.logger.Error("Hub", "envelope marshal failed", map[string]interface{}{"error": err.Error()})
		return
	}

	h.sendLocal(topic, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"sender":       h.instanceId,
			"target_topic": topic,
			"message":      json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), redisChannel, payload)
	}
}

func (h *Hub) sendLocal(topic string, data []byte) {
	h.mu.RLock()
	clients := h.clients[topic]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"topic": topic})
			close(client.Send)
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the one cluster channel and delivers to
	// whatever topics it holds locally.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			Sender      string          `json:"sender"`
			TargetTopic string          `json:"target_topic"`
			Message     json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}
		if payload.Sender == h.instanceId {
			continue
		}
		h.sendLocal(payload.TargetTopic, payload.Message)
	}
}
