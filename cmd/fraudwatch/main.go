package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/Azaziop/systeme-detect-fraude/internal/alert"
	"github.com/Azaziop/systeme-detect-fraude/internal/api"
	"github.com/Azaziop/systeme-detect-fraude/internal/app"
	"github.com/Azaziop/systeme-detect-fraude/internal/config"
	"github.com/Azaziop/systeme-detect-fraude/internal/metrics"
	"github.com/Azaziop/systeme-detect-fraude/internal/session"
	"github.com/Azaziop/systeme-detect-fraude/internal/view"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting fraudwatch client")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := session.NewStore(cfg.StateDBPath)
	if err != nil {
		logger.Error("Failed to initialize state store", "error", err, "path", cfg.StateDBPath)
		os.Exit(1)
	}
	defer store.Close()

	// Notification sinks: structured log always, AMQP fraud fan-out when
	// a broker is configured.
	notifier := alert.Fanout{alert.LogNotifier{}}
	if cfg.AMQPURL != "" {
		publisher, err := alert.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP alert publisher", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		notifier = append(notifier, publisher)
		logger.Info("Fraud alert fan-out enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	var a *app.App
	client := api.NewClient(cfg.AuthURL, cfg.TransactionURL, func() string {
		if a == nil {
			return ""
		}
		return a.Credential()
	})
	a = app.New(client, store, notifier, app.Options{
		SyncInterval: cfg.SyncInterval,
		Render: func(m view.Model) {
			fields := []any{
				"transactions", m.Stats.Total,
				"fraud", m.Stats.FraudCount,
				"total_amount", m.Stats.TotalAmount,
			}
			if a != nil {
				if last := a.Scheduler().LastSync(); !last.IsZero() {
					fields = append(fields, "last_sync", last.Format(time.RFC3339))
				}
			}
			logger.Info("Ledger updated", fields...)
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if store.DarkMode(ctx) {
		logger.Info("Dark theme preference restored")
	}

	if !a.Restore(ctx) {
		if cfg.Username == "" || cfg.Password == "" {
			logger.Error("No persisted session and no credentials configured")
			os.Exit(1)
		}
		if err := a.Login(ctx, cfg.Username, cfg.Password); err != nil {
			logger.Error("Login failed", "error", err)
			os.Exit(1)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:         cfg.MetricsAddr,
			Handler:      metrics.Handler(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			logger.Info("Metrics endpoint listening", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Client error", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	a.Shutdown(shutdownCtx)
	logger.Info("Client stopped gracefully")
}
