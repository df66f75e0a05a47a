package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/whookdev/hki/internal/models"
	"github.com/whookdev/hki/internal/ratelimit"
)

// Channel shows a flash message to the user.
type Channel interface {
	Show(ctx context.Context, flash models.Flash) error
}

// Debounced drops flashes whose text was shown within the limiter's window.
type Debounced struct {
	next    Channel
	limiter ratelimit.Limiter
	logger  *slog.Logger
}

func NewDebounced(next Channel, limiter ratelimit.Limiter, logger *slog.Logger) (*Debounced, error) {
	if next == nil {
		return nil, fmt.Errorf("channel cannot be nil")
	}
	if limiter == nil {
		return nil, fmt.Errorf("limiter cannot be nil")
	}

	return &Debounced{
		next:    next,
		limiter: limiter,
		logger:  logger.With("component", "notify"),
	}, nil
}

func (d *Debounced) Show(ctx context.Context, flash models.Flash) error {
	allowed, err := d.limiter.Allow(ctx, flash.Text)
	if err != nil {
		// an unreachable limiter should not hide errors from the user
		d.logger.Warn("debounce check failed", "error", err)
		allowed = true
	}

	if !allowed {
		d.logger.Debug("flash coalesced", "text", flash.Text)
		return nil
	}

	return d.next.Show(ctx, flash)
}

// Log writes flashes to a structured logger.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger.With("component", "flash")}
}

func (l *Log) Show(_ context.Context, flash models.Flash) error {
	l.logger.Warn(flash.Text, "type", flash.Type, "title", flash.Title)
	return nil
}

// Multi shows a flash on every channel and joins their errors.
type Multi []Channel

func (m Multi) Show(ctx context.Context, flash models.Flash) error {
	var errs []error
	for _, ch := range m {
		if err := ch.Show(ctx, flash); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
