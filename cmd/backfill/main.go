// Command backfill rebuilds the historical game log from the NHL APIs
// across whole seasons, and optionally trains an initial model artifact so
// the server starts with an opinion instead of waiting for its first cycle.
package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"

	"github.com/EdgarPaulEDGE/leafs-predictor/internal/features"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/gamestore"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/ml"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/nhl"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/worker"
)

const defaultSeasons = "20172018,20182019,20192020,20202021,20212022,20222023,20232024,20242025,20252026"

func main() {
	var (
		chURL     = flag.String("clickhouse", os.Getenv("CLICKHOUSE_URL"), "ClickHouse DSN")
		seasons   = flag.String("seasons", defaultSeasons, "comma-separated season ids")
		workers   = flag.Int("workers", 4, "parallel standings fetches")
		modelPath = flag.String("model", "", "train and save an artifact here after backfill")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	if *chURL == "" {
		sugar.Fatal("ClickHouse DSN required (-clickhouse or CLICKHOUSE_URL)")
	}

	ctx := context.Background()

	opts, err := clickhouse.ParseDSN(*chURL)
	if err != nil {
		sugar.Fatalw("ClickHouse DSN invalid", "error", err)
	}
	ch, err := clickhouse.Open(opts)
	if err != nil {
		sugar.Fatalw("ClickHouse connect failed", "error", err)
	}
	defer ch.Close()

	store := gamestore.New(ch, logger)
	if err := store.EnsureSchema(ctx); err != nil {
		sugar.Fatalw("Game store schema failed", "error", err)
	}

	pool := worker.NewPool(*workers, 64, logger)
	pool.Start(ctx)
	defer pool.Stop()

	client := nhl.NewClient(logger)
	backfiller := nhl.NewBackfiller(client, pool, logger)

	total := 0
	for _, season := range strings.Split(*seasons, ",") {
		season = strings.TrimSpace(season)
		if season == "" {
			continue
		}
		games, err := backfiller.SeasonGames(ctx, season)
		if err != nil {
			sugar.Errorw("Season backfill failed", "season", season, "error", err)
			continue
		}
		appended, err := store.Append(ctx, games)
		if err != nil {
			sugar.Fatalw("Append failed", "season", season, "error", err)
		}
		total += appended
		sugar.Infow("Season stored", "season", season, "appended", appended)
	}
	sugar.Infow("Backfill complete", "games", total)

	if *modelPath == "" {
		return
	}

	games, err := store.All(ctx)
	if err != nil {
		sugar.Fatalw("Game log read failed", "error", err)
	}
	table := features.BuildTrainingTable(games)
	result, err := ml.Train(table)
	if err != nil {
		sugar.Fatalw("Training failed", "error", err)
	}
	if err := result.Artifact.Save(*modelPath); err != nil {
		sugar.Fatalw("Artifact save failed", "error", err)
	}
	sugar.Infow("Initial model trained",
		"family", result.Artifact.Family,
		"cvAccuracy", result.Artifact.CVAccuracy,
		"games", result.Artifact.Games,
		"path", *modelPath,
	)
}
