package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mtax/declaration-engine/internal/config"
	"github.com/mtax/declaration-engine/internal/events"
	"github.com/mtax/declaration-engine/internal/logger"
	"github.com/mtax/declaration-engine/internal/metrics"
	"github.com/mtax/declaration-engine/internal/server"
	"github.com/mtax/declaration-engine/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API backed by the sqlite database. Settings come from mtax.yaml,
.env and MTAX_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	gin.SetMode(cfg.GinMode)

	store, err := storage.Open(cfg.DBPath, log.Named("storage"))
	if err != nil {
		return err
	}
	defer store.Close()

	var publisher events.Publisher
	if cfg.AMQPURL != "" {
		client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, log.Named("events"))
		if err != nil {
			return fmt.Errorf("connect to message broker: %w", err)
		}
		defer client.Close()
		publisher = client
	} else {
		log.Info("AMQP URL not set, declaration events are disabled")
	}

	srv := server.New(server.Params{
		Repo:      store,
		Publisher: publisher,
		Metrics:   metrics.New(nil),
		Logger:    log,
		Defaults:  config.DefaultTaxSetting,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting mtax server", zap.String("addr", httpServer.Addr), zap.String("db_path", cfg.DBPath))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		return err
	}
	log.Info("server stopped gracefully")
	return nil
}
