package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soaringjerry/Rasch/internal/api"
	"github.com/soaringjerry/Rasch/internal/config"
	"github.com/soaringjerry/Rasch/internal/logger"
	"github.com/soaringjerry/Rasch/internal/middleware"
	"github.com/soaringjerry/Rasch/internal/rasch"
	"github.com/soaringjerry/Rasch/internal/services"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.Setup(cfg.Server)
	if cfg.Auth.JWTSecret == config.DevJWTSecret {
		log.Warn("using the development JWT secret; set RASCH_AUTH_JWT_SECRET")
	}

	pool := services.NewWorkerPool(services.WorkerPoolConfig{
		WorkerCount: cfg.Analysis.Workers,
		QueueSize:   cfg.Analysis.QueueSize,
	}, log)
	pool.Start()
	defer pool.Stop()

	router := api.NewRouter(api.Options{
		Auth:  middleware.NewAuthenticator(cfg.Auth.JWTSecret),
		Queue: pool,
		Analysis: services.AnalysisConfig{
			Options: rasch.Options{
				MaxIterations:        cfg.Analysis.MaxIterations,
				ConvergenceCriterion: cfg.Analysis.Convergence,
			},
			SubmitRate:  cfg.Analysis.SubmitRate,
			SubmitBurst: cfg.Analysis.SubmitBurst,
		},
		TokenTTL:       cfg.Auth.TokenTTL,
		MaxUploadBytes: cfg.Analysis.MaxUploadBytes,
		CORSOrigins:    cfg.Server.CORSOrigins,
		StaticDir:      cfg.Server.StaticDir,
		Version:        versionString(),
		Logger:         log,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("rasch server listening", "addr", cfg.Server.Addr, "version", versionString(), "workers", cfg.Analysis.Workers)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
