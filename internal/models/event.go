package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventFlash    = "flash"
	EventNavigate = "navigate"
)

// Event is pushed to connected UIs over the events websocket.
type Event struct {
	Type   string    `json:"type"`
	ID     string    `json:"id"`
	Flash  *Flash    `json:"flash,omitempty"`
	Route  *Route    `json:"route,omitempty"`
	SentAt time.Time `json:"sent_at"`
}

func NewEvent(eventType string) *Event {
	return &Event{
		Type:   eventType,
		ID:     "evt_" + uuid.New().String(),
		SentAt: time.Now().UTC(),
	}
}

type Flash struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Text  string `json:"text"`
	// Time is how long the UI keeps the message visible, in milliseconds.
	Time int `json:"time"`
}

type Route struct {
	Name     string            `json:"name"`
	Path     string            `json:"path,omitempty"`
	FullPath string            `json:"full_path,omitempty"`
	Query    map[string]string `json:"query,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
}
