package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dfryer1193/blogapi/internal/config"
	"github.com/dfryer1193/blogapi/internal/scheduler"
	"github.com/dfryer1193/blogapi/internal/watch"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const watchRetryDelay = 10 * time.Second

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the API and keep the index current",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			setupLogging(cfg.Log)
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           a.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.ListenAddr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	a.coordinator.RebuildAsync("startup")

	var sched *scheduler.Scheduler
	if cfg.Schedule.Rebuild != "" {
		sched, err = scheduler.New(cfg.Schedule.Rebuild, a.coordinator)
		if err != nil {
			return err
		}
		sched.Start()
	}

	if cfg.Schedule.Watch {
		if cfg.Blog.ResetOnRebuild {
			log.Warn().Msg("Ignoring schedule.watch: the working tree is recloned on every rebuild")
		} else {
			go watchContent(ctx, cfg, a.coordinator.RebuildAsync)
		}
	}

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer cancel()

	// Websocket connections are hijacked, so Shutdown does not wait for them.
	a.events.Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown server")
	}
	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to stop scheduler")
		}
	}

	log.Info().Msg("Server stopped")
	return nil
}

// watchContent watches the working tree until ctx is done. The tree may not
// exist until the first rebuild has cloned it, so setup failures are retried.
func watchContent(ctx context.Context, cfg *config.Config, trigger watch.Trigger) {
	root := filepath.Join(cfg.Blog.LocalCloneDirectory, "content")
	w := watch.New(root, cfg.Schedule.WatchDebounce.Duration, trigger)

	for {
		err := w.Run(ctx)
		if err == nil {
			return
		}
		log.Warn().Err(err).Dur("retryIn", watchRetryDelay).Msg("Content watcher not running")

		select {
		case <-ctx.Done():
			return
		case <-time.After(watchRetryDelay):
		}
	}
}
