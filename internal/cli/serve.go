package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hooray-app/hooray/internal/config"
	"github.com/hooray-app/hooray/internal/event"
	"github.com/hooray-app/hooray/internal/server"
	"github.com/hooray-app/hooray/internal/store"
	"github.com/hooray-app/hooray/internal/sweep"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the sweep scheduler",
		Long: `Run the public and admin HTTP API.

The event status sweep runs on the cron schedule from the config file,
so active/upcoming transitions and recurring rollovers happen without an
external scheduler.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts, cmd)
		},
	}

	return cmd
}

func runServe(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading config", err)
	}
	setupLogging(cfg, opts)

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening database", err)
	}
	defer s.Close()

	clock := event.SystemClock{}
	sched, err := sweep.NewScheduler(sweep.New(s, clock), cfg.SweepCron)
	if err != nil {
		return WrapExitError(ExitCommandError, "configuring sweep", err)
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.New(s, clock, cfg.AdminToken).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched.Start()
	defer sched.Stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return WrapExitError(ExitCommandError, "server failed", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// setupLogging applies the configured log level. --verbose wins and was
// already applied by the root command.
func setupLogging(cfg *config.Config, opts *RootOptions) {
	if opts.Verbose {
		return
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// openStore opens the configured database for the one-shot commands.
func openStore(opts *RootOptions) (*store.Store, *config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "loading config", err)
	}
	if _, err := os.Stat(cfg.DBPath); errors.Is(err, os.ErrNotExist) {
		return nil, nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found at %s (run serve or seed first)", cfg.DBPath))
	}
	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "opening database", err)
	}
	return s, cfg, nil
}
