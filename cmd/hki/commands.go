package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/whookdev/hki/internal/lifecycle"
	"github.com/whookdev/hki/internal/models"
	"github.com/whookdev/hki/internal/server"
)

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "hki",
		Short:         "Client for the hki content service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(logger), newUsersCmd())
	return root
}

func newServeCmd(logger *slog.Logger) *cobra.Command {
	var creds models.Credentials

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Log in, keep the session alive and stream UI events over websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), logger, creds)
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", os.Getenv("HKI_EMAIL"), "account email")
	cmd.Flags().StringVar(&creds.Password, "password", os.Getenv("HKI_PASSWORD"), "account password")
	return cmd
}

func runServe(parent context.Context, logger *slog.Logger, creds models.Credentials) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	a, err := initiateApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	srv, err := server.New(a.cfg, a.hub, a.logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	var sessionDone chan struct{}
	if creds.Email != "" {
		lc, err := lifecycle.New(a.cfg, a.api.Auth, a.sessions, a.logger)
		if err != nil {
			return fmt.Errorf("creating lifecycle: %w", err)
		}
		if err := lc.Login(ctx, creds); err != nil {
			return fmt.Errorf("logging in: %w", err)
		}
		sessionDone = lc.MaintainSession(ctx)
	}

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	a.logger.Info("starting graceful shutdown")
	if sessionDone != nil {
		select {
		case <-sessionDone:
			a.logger.Info("session closed")
		case <-time.After(5 * time.Second):
			a.logger.Error("session close timed out")
		}
	}

	return nil
}

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect user accounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List users with their skills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initiateApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			users, err := a.api.Users.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing users: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), users)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show a single user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}

			a, err := initiateApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			user, err := a.api.Users.Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("fetching user: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	})

	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
