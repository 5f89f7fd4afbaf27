// Package gamestore persists the append-only log of completed games in
// ClickHouse. Rows are written once and never mutated; appends are
// serialized through a single-writer mutex while readers tolerate a stale
// (never torn) view.
package gamestore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/EdgarPaulEDGE/leafs-predictor/internal/models"
)

const schemaDDL = `
	CREATE TABLE IF NOT EXISTS leafs.historical_games (
		game_id                    Int64,
		date                       Date,
		opponent                   String,
		is_home                    UInt8,
		team_score                 Int32,
		opp_score                  Int32,
		result                     String,
		rest_days                  Int32,
		opp_win_pct                Float64,
		opp_goals_per_game         Float64,
		opp_goals_against_per_game Float64,
		opp_points                 Int32,
		opp_l10_wins               Int32,
		team_standing_points       Int32,
		team_pp_pct                Float64,
		team_pk_pct                Float64,
		team_corsi_pct             Float64,
		team_fenwick_pct           Float64,
		team_pdo                   Float64,
		team_shots_pg              Float64,
		team_shots_against_pg      Float64,
		team_faceoff_pct           Float64,
		team_save_pct              Float64,
		team_shooting_pct          Float64,
		team_zone_start_pct        Float64,
		opp_pp_pct                 Float64,
		opp_pk_pct                 Float64,
		opp_corsi_pct              Float64,
		opp_pdo                    Float64,
		opp_save_pct               Float64
	) ENGINE = MergeTree()
	ORDER BY (date, game_id)
`

const selectColumns = `
	game_id, date, opponent, is_home, team_score, opp_score, result, rest_days,
	opp_win_pct, opp_goals_per_game, opp_goals_against_per_game, opp_points,
	opp_l10_wins, team_standing_points,
	team_pp_pct, team_pk_pct, team_corsi_pct, team_fenwick_pct, team_pdo,
	team_shots_pg, team_shots_against_pg, team_faceoff_pct, team_save_pct,
	team_shooting_pct, team_zone_start_pct,
	opp_pp_pct, opp_pk_pct, opp_corsi_pct, opp_pdo, opp_save_pct
`

// Store reads and appends the historical game log.
type Store struct {
	ch     driver.Conn
	logger *zap.SugaredLogger

	mu sync.Mutex // serializes appends; retraining reads may run concurrently
}

func New(ch driver.Conn, logger *zap.Logger) *Store {
	return &Store{ch: ch, logger: logger.Sugar()}
}

// EnsureSchema creates the database and table if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := s.ch.Exec(ctx, "CREATE DATABASE IF NOT EXISTS leafs"); err != nil {
		return fmt.Errorf("gamestore: create database: %w", err)
	}
	if err := s.ch.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("gamestore: create table: %w", err)
	}
	return nil
}

// Append validates and inserts games with IDs beyond the current maximum,
// in one batch. It returns how many rows were written. Invalid rows fail
// the whole append so a bad ingestion cycle never half-applies.
func (s *Store) Append(ctx context.Context, games []models.HistoricalGame) (int, error) {
	if len(games) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	maxID, err := s.MaxGameID(ctx)
	if err != nil {
		return 0, err
	}

	fresh := make([]*models.HistoricalGame, 0, len(games))
	for i := range games {
		g := &games[i]
		if g.GameID <= maxID {
			continue // already stored
		}
		if err := g.Validate(); err != nil {
			return 0, fmt.Errorf("gamestore: reject append: %w", err)
		}
		fresh = append(fresh, g)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	batch, err := s.ch.PrepareBatch(ctx, "INSERT INTO leafs.historical_games ("+selectColumns+")")
	if err != nil {
		return 0, fmt.Errorf("gamestore: prepare batch: %w", err)
	}
	for _, g := range fresh {
		date, _ := time.Parse(models.DateLayout, g.Date)
		isHome := uint8(0)
		if g.IsHome {
			isHome = 1
		}
		err := batch.Append(
			g.GameID, date, g.Opponent, isHome,
			int32(g.TeamScore), int32(g.OppScore), g.Result, int32(g.RestDays),
			g.OppWinPct, g.OppGoalsPerGame, g.OppGoalsAgainstPG,
			int32(g.OppPoints), int32(g.OppL10Wins), int32(g.TeamStandingPoints),
			g.TeamPPPct, g.TeamPKPct, g.TeamCorsiPct, g.TeamFenwickPct, g.TeamPDO,
			g.TeamShotsPG, g.TeamShotsAgstPG, g.TeamFaceoffPct, g.TeamSavePct,
			g.TeamShootingPct, g.TeamZoneStartPct,
			g.OppPPPct, g.OppPKPct, g.OppCorsiPct, g.OppPDO, g.OppSavePct,
		)
		if err != nil {
			return 0, fmt.Errorf("gamestore: append game %d: %w", g.GameID, err)
		}
	}
	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("gamestore: send batch: %w", err)
	}

	s.logger.Infow("Appended games to store", "count", len(fresh), "lastGameID", fresh[len(fresh)-1].GameID)
	return len(fresh), nil
}

// All returns every stored game in date order.
func (s *Store) All(ctx context.Context) ([]models.HistoricalGame, error) {
	rows, err := s.ch.Query(ctx, "SELECT "+selectColumns+" FROM leafs.historical_games ORDER BY date, game_id")
	if err != nil {
		return nil, fmt.Errorf("gamestore: query games: %w", err)
	}
	defer rows.Close()

	var games []models.HistoricalGame
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// MaxGameID returns the largest stored game id, or 0 for an empty store.
func (s *Store) MaxGameID(ctx context.Context) (int64, error) {
	var maxID int64
	row := s.ch.QueryRow(ctx, "SELECT max(game_id) FROM leafs.historical_games")
	if err := row.Scan(&maxID); err != nil {
		return 0, fmt.Errorf("gamestore: max game id: %w", err)
	}
	return maxID, nil
}

// Count returns the number of stored games.
func (s *Store) Count(ctx context.Context) (uint64, error) {
	var n uint64
	row := s.ch.QueryRow(ctx, "SELECT count() FROM leafs.historical_games")
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("gamestore: count: %w", err)
	}
	return n, nil
}

func scanGame(rows driver.Rows) (models.HistoricalGame, error) {
	var (
		g      models.HistoricalGame
		date   time.Time
		isHome uint8

		teamScore, oppScore, restDays   int32
		oppPoints, oppL10, teamStandPts int32
	)
	err := rows.Scan(
		&g.GameID, &date, &g.Opponent, &isHome,
		&teamScore, &oppScore, &g.Result, &restDays,
		&g.OppWinPct, &g.OppGoalsPerGame, &g.OppGoalsAgainstPG,
		&oppPoints, &oppL10, &teamStandPts,
		&g.TeamPPPct, &g.TeamPKPct, &g.TeamCorsiPct, &g.TeamFenwickPct, &g.TeamPDO,
		&g.TeamShotsPG, &g.TeamShotsAgstPG, &g.TeamFaceoffPct, &g.TeamSavePct,
		&g.TeamShootingPct, &g.TeamZoneStartPct,
		&g.OppPPPct, &g.OppPKPct, &g.OppCorsiPct, &g.OppPDO, &g.OppSavePct,
	)
	if err != nil {
		return g, fmt.Errorf("gamestore: scan game: %w", err)
	}
	g.Date = date.Format(models.DateLayout)
	g.IsHome = isHome == 1
	g.TeamScore = int(teamScore)
	g.OppScore = int(oppScore)
	g.RestDays = int(restDays)
	g.OppPoints = int(oppPoints)
	g.OppL10Wins = int(oppL10)
	g.TeamStandingPoints = int(teamStandPts)
	return g, nil
}
