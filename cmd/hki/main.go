package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"os"

	"github.com/whookdev/hki/internal/api"
	"github.com/whookdev/hki/internal/config"
	"github.com/whookdev/hki/internal/events"
	"github.com/whookdev/hki/internal/models"
	"github.com/whookdev/hki/internal/navigation"
	"github.com/whookdev/hki/internal/notify"
	"github.com/whookdev/hki/internal/ratelimit"
	"github.com/whookdev/hki/internal/redis"
	"github.com/whookdev/hki/internal/resources"
	"github.com/whookdev/hki/internal/session"
	"golang.org/x/net/publicsuffix"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := newRootCmd(logger).ExecuteContext(context.Background()); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// app holds the wired client and the pieces a command may need to run.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	hub      *events.Hub
	sessions session.Store
	api      *resources.API
	rdb      *redis.RedisServer
}

func (a *app) close() {
	if a.rdb == nil {
		return
	}
	if err := a.rdb.Stop(); err != nil {
		a.logger.Error("error stopping redis", "error", err)
	}
}

func initiateApp(ctx context.Context) (*app, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	a := &app{
		cfg:    cfg,
		logger: logger,
		hub:    events.NewHub(logger),
	}

	var limiter ratelimit.Limiter
	if cfg.RedisURL != "" {
		rdb, err := redis.New(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("creating redis client: %w", err)
		}
		if err := rdb.Start(ctx); err != nil {
			return nil, fmt.Errorf("connecting to redis server: %w", err)
		}
		a.rdb = rdb

		if limiter, err = ratelimit.NewRedis(rdb.Client, "hki:debounce", cfg.DebounceWindow); err != nil {
			return nil, fmt.Errorf("creating debounce limiter: %w", err)
		}
		if a.sessions, err = session.NewRedis(rdb.Client, "hki:session:user", 0); err != nil {
			return nil, fmt.Errorf("creating session store: %w", err)
		}
	} else {
		limiter = ratelimit.NewMemory(cfg.DebounceWindow)
		a.sessions = session.NewMemory()
	}

	notifier, err := notify.NewDebounced(notify.Multi{a.hub, notify.NewLog(logger)}, limiter, logger)
	if err != nil {
		return nil, fmt.Errorf("creating notifier: %w", err)
	}

	router := navigation.NewRouter(models.Route{Name: "page-home", Path: "/app/"}, a.hub, logger)

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	client, err := api.New(api.Options{
		BaseURL:    cfg.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.RequestTimeout, Jar: jar},
		Notifier:   notifier,
		Sessions:   a.sessions,
		Router:     router,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating api client: %w", err)
	}
	a.api = resources.New(client)

	return a, nil
}
