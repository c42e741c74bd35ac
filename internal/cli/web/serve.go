// Package web wires the cravingsd HTTP server.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/cravings/internal/api/handlers"
	"github.com/cloo-solutions/cravings/internal/config"
	"github.com/cloo-solutions/cravings/internal/jobs"
	"github.com/cloo-solutions/cravings/internal/logging"
	"github.com/cloo-solutions/cravings/internal/recommend"
	"github.com/cloo-solutions/cravings/internal/server"
	"github.com/cloo-solutions/cravings/internal/service"
	"github.com/cloo-solutions/cravings/internal/session"
	"github.com/cloo-solutions/cravings/internal/telemetry"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  "Start the cravings web front end on the configured port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides CRAVINGS_PORT)")
	cmd.Flags().String("backend-url", "", "Recommendation service URL (overrides CRAVINGS_BACKEND_URL)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}
	if backendURL, _ := cmd.Flags().GetString("backend-url"); backendURL != "" {
		cfg.BackendURL = backendURL
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.HasSentry() {
		// Full sampling in development, 10% elsewhere.
		sampleRate := 0.1
		if cfg.IsDevelopment() {
			sampleRate = 1.0
		}
		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		}, logger)
		if err != nil {
			logger.WithError(err).Warn("telemetry init failed, continuing without tracing")
		} else {
			defer shutdownTelemetry()
		}
	}

	handler, sweeper, err := buildHandler(cfg, logger)
	if err != nil {
		return err
	}

	go sweeper.Start(ctx)
	defer sweeper.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"port":        cfg.Port,
			"backend":     cfg.BackendURL,
			"environment": cfg.Environment,
		}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

// buildHandler assembles the router and the idle-session sweeper from cfg.
func buildHandler(cfg *config.Config, logger *logrus.Logger) (http.Handler, *jobs.Worker, error) {
	client := recommend.NewClient(cfg.BackendURL, cfg.BackendTimeout)

	store := session.NewStore(cfg.SessionTTL, func() *service.SearchController {
		return service.NewSearchController(client, logger)
	}, logger)

	sweepInterval := cfg.SessionTTL / 2
	if sweepInterval > time.Minute || sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	sweeper := jobs.NewWorker("session-sweeper", jobs.TaskFunc(store.EvictIdle), sweepInterval, logger)

	routerCfg := server.RouterConfig{
		Logger:        logger,
		Sessions:      store,
		SearchHandler: handlers.NewSearchHandler(store, logger),
		SearchRate:    cfg.SearchRate,
		MaxBodyBytes:  cfg.MaxBodyBytes,
		SecureCookie:  !cfg.IsDevelopment(),
	}

	if cfg.IsDevelopment() {
		proxy, err := server.NewBackendProxy(cfg.BackendURL, logger)
		if err != nil {
			return nil, nil, err
		}
		routerCfg.BackendProxy = proxy
		logger.WithField("backend", cfg.BackendURL).Info("development proxy mounted at /api")
	}

	return server.NewRouter(routerCfg), sweeper, nil
}
