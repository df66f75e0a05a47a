// Package navigation tracks the route the UI is showing and moves it.
package navigation

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/whookdev/hki/internal/models"
)

const (
	RouteLogin = "login"
	RouteError = "error"
)

type Navigator interface {
	Current() models.Route
	Push(ctx context.Context, route models.Route) error
}

// Publisher forwards navigation events to the UI.
type Publisher interface {
	Publish(ctx context.Context, event *models.Event) error
}

type Router struct {
	publisher Publisher
	logger    *slog.Logger

	mu      sync.RWMutex
	current models.Route
	history []models.Route
}

// NewRouter starts at route start. publisher may be nil.
func NewRouter(start models.Route, publisher Publisher, logger *slog.Logger) *Router {
	if start.FullPath == "" {
		start.FullPath = FullPath(start)
	}
	return &Router{
		publisher: publisher,
		logger:    logger.With("component", "router"),
		current:   start,
	}
}

func (r *Router) Current() models.Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

func (r *Router) Push(ctx context.Context, route models.Route) error {
	if route.Name == "" && route.Path == "" {
		return fmt.Errorf("route needs a name or a path")
	}
	if route.FullPath == "" {
		route.FullPath = FullPath(route)
	}

	r.mu.Lock()
	r.history = append(r.history, r.current)
	r.current = route
	r.mu.Unlock()

	r.logger.Info("navigated", "name", route.Name, "full_path", route.FullPath)

	if r.publisher == nil {
		return nil
	}

	event := models.NewEvent(models.EventNavigate)
	event.Route = &route
	if err := r.publisher.Publish(ctx, event); err != nil {
		return fmt.Errorf("publishing navigation: %w", err)
	}
	return nil
}

// Back returns to the previous route. It reports false when there is none.
func (r *Router) Back() (models.Route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return r.current, false
	}
	r.current = r.history[len(r.history)-1]
	r.history = r.history[:len(r.history)-1]
	return r.current, true
}

// FullPath renders a route's path (or name) with its query string in a
// stable order.
func FullPath(route models.Route) string {
	path := route.Path
	if path == "" {
		path = route.Name
	}
	if len(route.Query) == 0 {
		return path
	}

	keys := make([]string, 0, len(route.Query))
	for k := range route.Query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(path)
	sb.WriteByte('?')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(route.Query[k]))
	}
	return sb.String()
}
