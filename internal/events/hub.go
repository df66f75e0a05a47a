// Package events fans flash messages and navigation changes out to UIs
// connected over websocket.
package events

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/whookdev/hki/internal/models"
)

type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	subscribers    map[string]*Connection
	subscribersMux sync.RWMutex
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:      logger.With("component", "events"),
		subscribers: make(map[string]*Connection),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				//TODO: restrict to the configured UI origin
				return true
			},
		},
	}
}

// ServeHTTP upgrades the request and streams events until the UI leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade websocket connection", "error", err)
		return
	}
	defer conn.Close()

	sub := NewConnection(conn, h.logger)

	h.subscribersMux.Lock()
	h.subscribers[sub.ID()] = sub
	h.subscribersMux.Unlock()

	h.logger.Info("subscriber connected", "subscriber_id", sub.ID())

	defer func() {
		h.subscribersMux.Lock()
		delete(h.subscribers, sub.ID())
		h.subscribersMux.Unlock()
	}()

	if err := sub.Handle(); err != nil {
		h.logger.Error("subscriber connection error",
			"error", err,
			"subscriber_id", sub.ID(),
		)
	}
}

// Publish queues event for every subscriber. Having no subscribers is not
// an error.
func (h *Hub) Publish(_ context.Context, event *models.Event) error {
	h.subscribersMux.RLock()
	defer h.subscribersMux.RUnlock()

	if len(h.subscribers) == 0 {
		h.logger.Debug("no subscribers for event", "type", event.Type, "event_id", event.ID)
		return nil
	}

	for _, sub := range h.subscribers {
		sub.Enqueue(event)
	}
	return nil
}

// Show publishes a flash message.
func (h *Hub) Show(ctx context.Context, flash models.Flash) error {
	event := models.NewEvent(models.EventFlash)
	event.Flash = &flash
	return h.Publish(ctx, event)
}

func (h *Hub) Subscribers() int {
	h.subscribersMux.RLock()
	defer h.subscribersMux.RUnlock()
	return len(h.subscribers)
}
