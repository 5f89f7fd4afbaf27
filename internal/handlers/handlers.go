package handlers

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/EdgarPaulEDGE/leafs-predictor/internal/ledger"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/ml"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/models"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/nhl"
)

// MaxBodySize limits request bodies to 64KB; every payload here is tiny.
const MaxBodySize = 65536

// GameReader is the read-side of the game log the handlers need.
type GameReader interface {
	All(ctx context.Context) ([]models.HistoricalGame, error)
	Count(ctx context.Context) (uint64, error)
}

// ScheduleSource resolves the next game on the schedule.
type ScheduleSource interface {
	NextGame(ctx context.Context, season string) (*nhl.Upcoming, error)
}

// Pinger is the readiness probe for Postgres.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Ledger   ledger.Service
	Games    GameReader
	Holder   *ml.Holder
	Schedule ScheduleSource

	Postgres   Pinger
	ClickHouse driver.Conn
	Redis      *redis.Client
	Logger     *zap.Logger
}

type Handler struct {
	ledger   ledger.Service
	games    GameReader
	holder   *ml.Holder
	schedule ScheduleSource

	pg        Pinger
	ch        driver.Conn
	redis     *redis.Client
	logger    *zap.SugaredLogger
	validator *validator.Validate
}

func New(cfg Config) *Handler {
	return &Handler{
		ledger:    cfg.Ledger,
		games:     cfg.Games,
		holder:    cfg.Holder,
		schedule:  cfg.Schedule,
		pg:        cfg.Postgres,
		ch:        cfg.ClickHouse,
		redis:     cfg.Redis,
		logger:    cfg.Logger.Sugar(),
		validator: validator.New(),
	}
}
