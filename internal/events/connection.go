package events

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/whookdev/hki/internal/models"
)

const (
	pingInterval = 20 * time.Second
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	sendBuffer   = 32
)

// Connection is one UI subscribed to the event stream.
type Connection struct {
	id     string
	conn   *websocket.Conn
	logger *slog.Logger

	send chan *models.Event
}

func NewConnection(conn *websocket.Conn, logger *slog.Logger) *Connection {
	id := generateSubscriberID()
	return &Connection{
		id:     id,
		conn:   conn,
		logger: logger.With("subscriber_id", id),
		send:   make(chan *models.Event, sendBuffer),
	}
}

func (c *Connection) ID() string {
	return c.id
}

// Enqueue hands an event to the write loop without blocking. It reports
// false when the subscriber is too slow and the event was dropped.
func (c *Connection) Enqueue(event *models.Event) bool {
	select {
	case c.send <- event:
		return true
	default:
		c.logger.Warn("dropped event - send buffer full", "event_id", event.ID)
		return false
	}
}

// Handle pumps queued events to the socket until the peer goes away.
func (c *Connection) Handle() error {
	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	readError := make(chan error, 1)
	go func() {
		readError <- c.readPump()
	}()

	for {
		select {
		case err := <-readError:
			if err != nil {
				return fmt.Errorf("subscriber closed: %w", err)
			}
			return nil

		case event := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(event); err != nil {
				return fmt.Errorf("sending event: %w", err)
			}

		case <-pingTicker.C:
			if err := c.conn.WriteControl(
				websocket.PingMessage,
				[]byte{},
				time.Now().Add(writeTimeout),
			); err != nil {
				return fmt.Errorf("ping failed: %w", err)
			}
		}
	}
}

// readPump only services control frames; subscribers have nothing to say.
func (c *Connection) readPump() error {
	c.conn.SetReadDeadline(time.Now().Add(readTimeout))

	c.conn.SetPongHandler(func(string) error {
		c.logger.Debug("received pong")
		return c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				c.logger.Error("websocket read error", "error", err)
				return fmt.Errorf("websocket read error: %w", err)
			}
			c.logger.Info("websocket closed normally")
			return nil
		}
	}
}

func generateSubscriberID() string {
	return fmt.Sprintf("sub_%s", uuid.New().String())
}
