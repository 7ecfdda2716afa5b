package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"subtitle-collector/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub streams stage events to websocket clients watching a submission.
// With a Redis client, events arrive over the submission's pub/sub channel;
// without one, the pipeline publishes to the hub directly.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID][]*websocket.Conn
	redisClient *redis.Client
	cancelFuncs map[uuid.UUID]context.CancelFunc
}

func NewHub(redisClient *redis.Client) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID][]*websocket.Conn),
		redisClient: redisClient,
		cancelFuncs: make(map[uuid.UUID]context.CancelFunc),
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	submissionID, err := uuid.Parse(r.URL.Query().Get("submission"))
	if err != nil {
		http.Error(w, "invalid submission id", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.registerConnection(submissionID, conn)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(submissionID, conn)
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				break
			}
		}
	}()
}

func (h *Hub) registerConnection(submissionID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[submissionID] = append(h.connections[submissionID], conn)

	// Start pub/sub subscription for the first watcher of this submission
	if h.redisClient != nil && len(h.connections[submissionID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[submissionID] = cancel
		go h.subscribeToPubSub(ctx, submissionID)
	}

	log.Printf("WebSocket connected: submission %s (total: %d)", submissionID, len(h.connections[submissionID]))
}

func (h *Hub) unregisterConnection(submissionID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()

	conns := h.connections[submissionID]
	for i, c := range conns {
		if c == conn {
			h.connections[submissionID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	// If no more connections, cancel pub/sub
	if len(h.connections[submissionID]) == 0 {
		delete(h.connections, submissionID)
		if cancel, ok := h.cancelFuncs[submissionID]; ok {
			cancel()
			delete(h.cancelFuncs, submissionID)
		}
	}

	log.Printf("WebSocket disconnected: submission %s", submissionID)
}

func (h *Hub) subscribeToPubSub(ctx context.Context, submissionID uuid.UUID) {
	pubsub := h.redisClient.Subscribe(ctx, models.SubmissionChannel(submissionID))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(submissionID, []byte(msg.Payload))
		}
	}
}

// broadcast writes under the write lock; gorilla connections allow only one
// concurrent writer.
func (h *Hub) broadcast(submissionID uuid.UUID, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, conn := range h.connections[submissionID] {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("WebSocket write failed for submission %s: %v", submissionID, err)
		}
	}
}

// Publish delivers a stage event to local watchers. It is the in-process
// path used when Redis is not configured.
func (h *Hub) Publish(_ context.Context, ev models.StageEvent) {
	data, err := json.Marshal(models.NewStageMessage(ev))
	if err != nil {
		return
	}
	h.broadcast(ev.SubmissionID, data)
}

// watchers reports how many clients follow a submission.
func (h *Hub) watchers(submissionID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[submissionID])
}
