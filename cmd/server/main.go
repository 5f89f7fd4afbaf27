package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/EdgarPaulEDGE/leafs-predictor/internal/cache"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/config"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/gamestore"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/handlers"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/ledger"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/ml"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/nhl"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres: the prediction ledger.
	pg, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		sugar.Fatalw("Postgres connect failed", "error", err)
	}
	defer pg.Close()
	if err := ledger.EnsureSchema(ctx, pg); err != nil {
		sugar.Fatalw("Ledger schema failed", "error", err)
	}

	// ClickHouse: the append-only game log.
	chOpts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
	if err != nil {
		sugar.Fatalw("ClickHouse DSN invalid", "error", err)
	}
	ch, err := clickhouse.Open(chOpts)
	if err != nil {
		sugar.Fatalw("ClickHouse connect failed", "error", err)
	}
	defer ch.Close()
	store := gamestore.New(ch, logger)
	if err := store.EnsureSchema(ctx); err != nil {
		sugar.Fatalw("Game store schema failed", "error", err)
	}

	// Redis: published predictions for the frontend.
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		sugar.Fatalw("Redis URL invalid", "error", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	holder := &ml.Holder{}
	if art, err := ml.LoadArtifact(cfg.ModelPath); err == nil {
		holder.Swap(art)
		sugar.Infow("Loaded model artifact",
			"path", cfg.ModelPath, "family", art.Family, "cvAccuracy", art.CVAccuracy)
	} else if !errors.Is(err, os.ErrNotExist) {
		sugar.Warnw("Model artifact unreadable, starting without a model",
			"path", cfg.ModelPath, "error", err)
	}

	client := nhl.NewClient(logger)
	feed := nhl.NewFeed(client, cache.SystemClock{}, logger)
	ledgerSvc := ledger.NewService(pg, logger)

	sched := scheduler.New(scheduler.Config{
		Store:     store,
		Ledger:    ledgerSvc,
		Source:    feed,
		Holder:    holder,
		Redis:     rdb,
		ModelPath: cfg.ModelPath,
		Interval:  cfg.UpdateInterval,
		Logger:    logger,
	})
	go sched.Run(ctx)

	h := handlers.New(handlers.Config{
		Ledger:     ledgerSvc,
		Games:      store,
		Holder:     holder,
		Schedule:   feed,
		Postgres:   pg,
		ClickHouse: ch,
		Redis:      rdb,
		Logger:     logger,
	})

	router := h.Routes()
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      corsHandler(router),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sugar.Infow("Server listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("Shutdown incomplete", "error", err)
	}
}
