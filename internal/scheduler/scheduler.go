// Package scheduler drives the background update cycle: ingest newly
// completed games, resolve predictions against them, retrain when the game
// log grew, and publish the fresh model's next-game call.
package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/EdgarPaulEDGE/leafs-predictor/internal/features"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/ledger"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/ml"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/models"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/nhl"
)

var (
	cyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leafs_update_cycles_total",
		Help: "Total number of update cycles run",
	})

	cycleErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leafs_update_cycle_errors_total",
		Help: "Total number of update cycles that failed",
	})

	gamesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leafs_games_ingested_total",
		Help: "Total number of completed games appended to the store",
	})

	retrainDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "leafs_retrain_duration_seconds",
		Help:    "Duration of full model retraining",
		Buckets: prometheus.DefBuckets,
	})

	modelAccuracy = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "leafs_model_cv_accuracy",
		Help: "Cross-validated accuracy of the active model",
	})
)

// Redis keys published after a successful cycle, for external consumers
// (the web frontend polls these instead of hitting the API on every view).
const (
	redisKeyNextPrediction = "leafs:next_prediction"
	redisKeyModelInfo      = "leafs:model_info"
	redisPublishTTL        = time.Hour
)

// GameSource is the schedule feed the scheduler pulls from.
type GameSource interface {
	NewCompleted(ctx context.Context, season string, afterGameID int64) ([]models.HistoricalGame, error)
	NextGame(ctx context.Context, season string) (*nhl.Upcoming, error)
}

// GameStore is the slice of the game log the scheduler needs.
type GameStore interface {
	Append(ctx context.Context, games []models.HistoricalGame) (int, error)
	All(ctx context.Context) ([]models.HistoricalGame, error)
	MaxGameID(ctx context.Context) (int64, error)
}

// Scheduler owns the periodic update loop.
type Scheduler struct {
	store     GameStore
	ledger    ledger.Service
	source    GameSource
	holder    *ml.Holder
	rdb       *redis.Client
	modelPath string
	interval  time.Duration
	now       func() time.Time
	logger    *zap.SugaredLogger
}

type Config struct {
	Store     GameStore
	Ledger    ledger.Service
	Source    GameSource
	Holder    *ml.Holder
	Redis     *redis.Client
	ModelPath string
	Interval  time.Duration
	Logger    *zap.Logger
}

func New(cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Minute
	}
	return &Scheduler{
		store:     cfg.Store,
		ledger:    cfg.Ledger,
		source:    cfg.Source,
		holder:    cfg.Holder,
		rdb:       cfg.Redis,
		modelPath: cfg.ModelPath,
		interval:  cfg.Interval,
		now:       time.Now,
		logger:    cfg.Logger.Sugar(),
	}
}

// Run executes one cycle immediately, then every interval until ctx is
// canceled. A failed cycle is logged and the previous model stays active;
// the loop never dies on an upstream error.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Infow("Update loop started", "interval", s.interval)

	s.runLogged(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runLogged(ctx)
		case <-ctx.Done():
			s.logger.Info("Update loop stopped")
			return
		}
	}
}

func (s *Scheduler) runLogged(ctx context.Context) {
	if err := s.RunOnce(ctx); err != nil {
		cycleErrors.Inc()
		s.logger.Errorw("Update cycle failed", "error", err)
	}
}

// RunOnce performs a single update cycle.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	cyclesTotal.Inc()
	season := nhl.Season(s.now())

	maxID, err := s.store.MaxGameID(ctx)
	if err != nil {
		return err
	}

	fresh, err := s.source.NewCompleted(ctx, season, maxID)
	if err != nil {
		return err
	}

	appended, err := s.store.Append(ctx, fresh)
	if err != nil {
		return err
	}
	if appended > 0 {
		gamesIngested.Add(float64(appended))
	}

	for i := range fresh {
		g := &fresh[i]
		if _, err := s.ledger.Resolve(ctx, g.GameID, g.Result, g.TeamScore, g.OppScore); err != nil {
			return err
		}
	}
	if err := s.resolveStale(ctx, fresh); err != nil {
		return err
	}

	if appended > 0 {
		if err := s.retrain(ctx); err != nil {
			return err
		}
	}

	s.publish(ctx, season)
	return nil
}

// resolveStale grades pending predictions on games that are already in the
// store, which happens when an earlier cycle crashed between append and
// resolve. The feed only reports games beyond the stored maximum, so those
// rows would otherwise stay pending forever.
func (s *Scheduler) resolveStale(ctx context.Context, fresh []models.HistoricalGame) error {
	ids, err := s.ledger.PendingGameIDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	covered := make(map[int64]bool, len(fresh))
	for i := range fresh {
		covered[fresh[i].GameID] = true
	}
	stale := ids[:0:0]
	for _, id := range ids {
		if !covered[id] {
			stale = append(stale, id)
		}
	}
	if len(stale) == 0 {
		return nil
	}

	games, err := s.store.All(ctx)
	if err != nil {
		return err
	}
	byID := make(map[int64]*models.HistoricalGame, len(games))
	for i := range games {
		byID[games[i].GameID] = &games[i]
	}

	for _, id := range stale {
		g, ok := byID[id]
		if !ok {
			continue // game not played yet
		}
		n, err := s.ledger.Resolve(ctx, g.GameID, g.Result, g.TeamScore, g.OppScore)
		if err != nil {
			return err
		}
		s.logger.Infow("Resolved stale predictions", "gameID", id, "count", n)
	}
	return nil
}

// retrain rebuilds the model from the full game log and swaps it in. The
// previous artifact keeps serving until the swap.
func (s *Scheduler) retrain(ctx context.Context) error {
	start := time.Now()

	games, err := s.store.All(ctx)
	if err != nil {
		return err
	}
	table := features.BuildTrainingTable(games)

	result, err := ml.Train(table)
	if err != nil {
		if errors.Is(err, ml.ErrNoTrainingData) {
			s.logger.Warnw("Skipping retrain, not enough engineered rows", "games", len(games))
			return nil
		}
		return err
	}

	art := result.Artifact
	if s.modelPath != "" {
		if err := art.Save(s.modelPath); err != nil {
			return err
		}
	}
	s.holder.Swap(art)

	retrainDuration.Observe(time.Since(start).Seconds())
	modelAccuracy.Set(art.CVAccuracy)
	s.logger.Infow("Model retrained",
		"family", art.Family,
		"cvAccuracy", art.CVAccuracy,
		"games", art.Games,
		"holdout", result.HoldoutAccuracy,
		"duration", time.Since(start),
	)
	return nil
}

// publish pushes the next-game prediction and model info to Redis. Failures
// here are logged, not fatal: the HTTP API remains the source of truth.
func (s *Scheduler) publish(ctx context.Context, season string) {
	if s.rdb == nil {
		return
	}

	art := s.holder.Current()
	if art == nil {
		return
	}

	next, err := s.source.NextGame(ctx, season)
	if err != nil {
		if !errors.Is(err, nhl.ErrNoUpcomingGame) {
			s.logger.Warnw("Next game lookup failed", "error", err)
		}
		return
	}

	games, err := s.store.All(ctx)
	if err != nil {
		s.logger.Warnw("Game log read failed during publish", "error", err)
		return
	}
	vec, err := features.BuildLiveVector(games, next.Opponent, next.IsHome)
	if err != nil {
		return
	}
	pred, err := ml.Predict(art, vec)
	if err != nil {
		s.logger.Warnw("Prediction failed during publish", "error", err)
		return
	}
	pred.Opponent = next.Opponent
	pred.IsHome = next.IsHome

	payload, _ := json.Marshal(struct {
		Game       *nhl.Upcoming         `json:"game"`
		Prediction models.GamePrediction `json:"prediction"`
	}{next, pred})
	if err := s.rdb.Set(ctx, redisKeyNextPrediction, payload, redisPublishTTL).Err(); err != nil {
		s.logger.Warnw("Redis publish failed", "key", redisKeyNextPrediction, "error", err)
	}

	info, _ := json.Marshal(models.ModelInfo{
		Family:     art.Family,
		CVAccuracy: art.CVAccuracy,
		TrainedAt:  art.TrainedAt,
		ArtifactID: art.ID,
		Games:      art.Games,
		Report:     art.Report,
	})
	if err := s.rdb.Set(ctx, redisKeyModelInfo, info, redisPublishTTL).Err(); err != nil {
		s.logger.Warnw("Redis publish failed", "key", redisKeyModelInfo, "error", err)
	}
}
