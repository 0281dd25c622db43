package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/amqp"
	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/cli"
	apphttp "github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/http"
	applog "github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/log"
	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/services"
	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/storage"
	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/store"
	mem "github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/store/memory"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	var (
		sessions store.SessionStore
		authSt   store.AuthStore
		closeFn  func() error
	)
	backendLog := logger.WithComponent(applog.ComponentBackend)
	switch cfg.DataBackend {
	case "sqlite":
		repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
		sessions, authSt = repo, repo
		closeFn = repo.Close
		backendLog.Info("Initialized SQLite backend", applog.FieldBackend, cfg.DataBackend, "path", cfg.SQLiteDBPath)
	default:
		st := mem.New()
		sessions, authSt = st, st
		backendLog.Info("Initialized memory backend", applog.FieldBackend, cfg.DataBackend)
	}
	if closeFn != nil {
		defer closeFn()
	}

	var events *amqp.Client
	if cfg.AMQPURL != "" {
		amqpLog := logger.WithComponent(applog.ComponentAMQP)
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			amqpLog.Error("Failed to connect AMQP, continuing without events", applog.FieldError, err)
		} else {
			events = client
			defer events.Close()
			amqpLog.Info("Connected to AMQP", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	svc := services.NewChallengeService(sessions, events)
	srv := apphttp.NewServer(":"+cfg.Port, svc, authSt, cfg.SessionTTL, cfg.RateLimitPerMinute)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	if repo, ok := sessions.(*storage.Repository); ok {
		g.Go(func() error {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if n, err := repo.CleanExpiredTokens(ctx); err != nil {
						logger.Warn("Token cleanup failed", applog.FieldError, err)
					} else if n > 0 {
						logger.Info("Cleaned expired tokens", "count", n)
					}
				}
			}
		})
	}
	g.Go(func() error {
		logger.Info("Starting server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
