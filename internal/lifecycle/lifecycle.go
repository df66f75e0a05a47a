package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/whookdev/hki/internal/config"
	"github.com/whookdev/hki/internal/models"
	"github.com/whookdev/hki/internal/session"
)

type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (*models.User, error)
	Current(ctx context.Context) *models.User
	Logout(ctx context.Context) error
}

// Lifecycle logs in once and keeps the session store in step with the
// service until its context ends, then logs out.
type Lifecycle struct {
	cfg      *config.Config
	logger   *slog.Logger
	auth     Authenticator
	sessions session.Store
}

func New(cfg *config.Config, auth Authenticator, sessions session.Store, logger *slog.Logger) (*Lifecycle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if auth == nil {
		return nil, fmt.Errorf("authenticator cannot be nil")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session store cannot be nil")
	}

	logger = logger.With("component", "lifecycle")

	return &Lifecycle{
		cfg:      cfg,
		auth:     auth,
		sessions: sessions,
		logger:   logger,
	}, nil
}

func (lc *Lifecycle) Login(ctx context.Context, creds models.Credentials) error {
	user, err := lc.auth.Login(ctx, creds)
	if err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}

	lc.logger.Info("logged in", "user_id", user.ID, "username", user.Username)
	return nil
}

func (lc *Lifecycle) MaintainSession(ctx context.Context) chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		interval := lc.cfg.SessionRefreshInterval
		if interval <= 0 {
			interval = time.Minute
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		if err := lc.refreshSession(ctx); err != nil {
			lc.logger.Error("failed initial session refresh", "error", err)
		}
		lc.logger.Info("session refresh routine started", "interval", interval.String())

		for {
			select {
			case <-ticker.C:
				if err := lc.refreshSession(ctx); err != nil {
					lc.logger.Error("failed session refresh", "error", err)
				}
			case <-ctx.Done():
				lc.logger.Info("context cancelled, closing session")
				if err := lc.logout(); err != nil {
					lc.logger.Error("failed to log out", "error", err)
				} else {
					lc.logger.Info("logged out")
				}
				lc.logger.Info("session refresh routine stopped")
				return
			}
		}
	}()

	return done
}

func (lc *Lifecycle) refreshSession(ctx context.Context) error {
	user := lc.auth.Current(ctx)
	if user == nil {
		if err := lc.sessions.SetUser(ctx, nil); err != nil {
			return fmt.Errorf("failed to clear expired session: %w", err)
		}
		lc.logger.Warn("no active session")
		return nil
	}

	if err := lc.sessions.SetUser(ctx, user); err != nil {
		return fmt.Errorf("failed to refresh session: %w", err)
	}

	lc.logger.Debug("session refreshed", "user_id", user.ID)
	return nil
}

func (lc *Lifecycle) logout() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := lc.auth.Logout(ctx); err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	return nil
}
