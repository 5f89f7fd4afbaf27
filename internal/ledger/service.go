// Package ledger stores user predictions in Postgres, resolves them against
// real outcomes and aggregates the leaderboard. A prediction is written once,
// resolved exactly once, and never deleted.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/EdgarPaulEDGE/leafs-predictor/internal/models"
)

// ErrDuplicatePrediction is returned when a (username, game_id) pair already
// has a stored prediction. The original row is left untouched.
var ErrDuplicatePrediction = errors.New("ledger: prediction already exists for this user and game")

// ErrInvalidPrediction is returned for malformed submissions (bad pick,
// negative scoreline).
var ErrInvalidPrediction = errors.New("ledger: invalid prediction")

// PgPool is the narrow slice of pgxpool.Pool the ledger needs; tests swap in
// a mock.
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Service is the prediction ledger API consumed by handlers and scheduler.
type Service interface {
	Submit(ctx context.Context, req *models.SubmitPredictionRequest, modelPick string, modelWinProb float64) (int64, error)
	Resolve(ctx context.Context, gameID int64, actual string, scoreFor, scoreAgainst int) (int, error)
	Pending(ctx context.Context, username string) ([]models.Prediction, error)
	Resolved(ctx context.Context, username string) ([]models.Prediction, error)
	PendingGameIDs(ctx context.Context) ([]int64, error)
	Leaderboard(ctx context.Context) (*models.Leaderboard, error)
}

type service struct {
	pg     PgPool
	logger *zap.SugaredLogger
}

func NewService(pg PgPool, logger *zap.Logger) Service {
	return &service{pg: pg, logger: logger.Sugar()}
}

const schemaDDL = `
	CREATE TABLE IF NOT EXISTS predictions (
		id                    BIGSERIAL PRIMARY KEY,
		username              TEXT NOT NULL,
		game_id               BIGINT NOT NULL,
		game_date             TEXT NOT NULL,
		opponent              TEXT NOT NULL,
		is_home               BOOLEAN NOT NULL,
		user_pick             TEXT NOT NULL,
		user_score_for        INT NOT NULL DEFAULT 0,
		user_score_against    INT NOT NULL DEFAULT 0,
		model_pick            TEXT NOT NULL,
		model_win_probability DOUBLE PRECISION NOT NULL DEFAULT 0,
		actual_result         TEXT,
		actual_score_for      INT,
		actual_score_against  INT,
		user_points           INT NOT NULL DEFAULT 0,
		model_points          INT NOT NULL DEFAULT 0,
		is_resolved           BOOLEAN NOT NULL DEFAULT FALSE,
		created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (username, game_id)
	);
	CREATE INDEX IF NOT EXISTS idx_predictions_game ON predictions (game_id) WHERE NOT is_resolved;
`

// EnsureSchema creates the predictions table and its indexes.
func EnsureSchema(ctx context.Context, pg PgPool) error {
	if _, err := pg.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ledger: ensure schema: %w", err)
	}
	return nil
}

func (s *service) Submit(ctx context.Context, req *models.SubmitPredictionRequest, modelPick string, modelWinProb float64) (int64, error) {
	if !ValidPick(req.Pick) {
		return 0, fmt.Errorf("%w: pick must be W or L", ErrInvalidPrediction)
	}
	if req.ScoreFor < 0 || req.ScoreAgainst < 0 {
		return 0, fmt.Errorf("%w: scoreline must be non-negative", ErrInvalidPrediction)
	}

	// Explicit pre-check so the duplicate case is a domain error, not a
	// constraint violation surfaced as a driver error. The unique index
	// still backstops concurrent submits.
	var existing int64
	err := s.pg.QueryRow(ctx,
		"SELECT id FROM predictions WHERE username = $1 AND game_id = $2",
		req.Username, req.GameID).Scan(&existing)
	if err == nil {
		return 0, ErrDuplicatePrediction
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("ledger: duplicate check: %w", err)
	}

	var id int64
	err = s.pg.QueryRow(ctx, `
		INSERT INTO predictions
			(username, game_id, game_date, opponent, is_home,
			 user_pick, user_score_for, user_score_against,
			 model_pick, model_win_probability)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (username, game_id) DO NOTHING
		RETURNING id
	`, req.Username, req.GameID, req.GameDate, req.Opponent, req.IsHome,
		req.Pick, req.ScoreFor, req.ScoreAgainst, modelPick, modelWinProb).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrDuplicatePrediction
		}
		return 0, fmt.Errorf("ledger: insert prediction: %w", err)
	}

	s.logger.Infow("Prediction stored",
		"username", req.Username, "gameID", req.GameID, "pick", req.Pick)
	return id, nil
}

// Resolve grades every unresolved prediction for the game. Already-resolved
// rows are skipped, which makes repeated resolution of the same game a
// no-op rather than a double count.
func (s *service) Resolve(ctx context.Context, gameID int64, actual string, scoreFor, scoreAgainst int) (int, error) {
	if !ValidPick(actual) {
		return 0, fmt.Errorf("%w: actual result must be W or L", ErrInvalidPrediction)
	}
	if scoreFor < 0 || scoreAgainst < 0 {
		return 0, fmt.Errorf("%w: actual scoreline must be non-negative", ErrInvalidPrediction)
	}

	rows, err := s.pg.Query(ctx, `
		SELECT id, user_pick, user_score_for, user_score_against, model_pick
		FROM predictions
		WHERE game_id = $1 AND NOT is_resolved
	`, gameID)
	if err != nil {
		return 0, fmt.Errorf("ledger: load unresolved: %w", err)
	}

	type graded struct {
		id          int64
		userPoints  int
		modelPoints int
	}
	var toGrade []graded
	for rows.Next() {
		var (
			id               int64
			pick, modelPick  string
			scFor, scAgainst int
		)
		if err := rows.Scan(&id, &pick, &scFor, &scAgainst, &modelPick); err != nil {
			rows.Close()
			return 0, fmt.Errorf("ledger: scan unresolved: %w", err)
		}
		toGrade = append(toGrade, graded{
			id:          id,
			userPoints:  ScoreUser(pick, scFor, scAgainst, actual, scoreFor, scoreAgainst),
			modelPoints: ScoreModel(modelPick, actual),
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("ledger: iterate unresolved: %w", err)
	}

	for _, g := range toGrade {
		_, err := s.pg.Exec(ctx, `
			UPDATE predictions
			SET actual_result = $1, actual_score_for = $2, actual_score_against = $3,
			    user_points = $4, model_points = $5, is_resolved = TRUE
			WHERE id = $6 AND NOT is_resolved
		`, actual, scoreFor, scoreAgainst, g.userPoints, g.modelPoints, g.id)
		if err != nil {
			return 0, fmt.Errorf("ledger: resolve prediction %d: %w", g.id, err)
		}
	}

	if len(toGrade) > 0 {
		s.logger.Infow("Resolved predictions", "gameID", gameID, "count", len(toGrade), "result", actual)
	}
	return len(toGrade), nil
}

const predictionColumns = `
	id, username, game_id, game_date, opponent, is_home,
	user_pick, user_score_for, user_score_against,
	model_pick, model_win_probability,
	COALESCE(actual_result, ''), COALESCE(actual_score_for, 0), COALESCE(actual_score_against, 0),
	user_points, model_points, is_resolved, created_at
`

func (s *service) Pending(ctx context.Context, username string) ([]models.Prediction, error) {
	return s.list(ctx, username, false, "game_date ASC")
}

func (s *service) Resolved(ctx context.Context, username string) ([]models.Prediction, error) {
	return s.list(ctx, username, true, "game_date DESC")
}

func (s *service) list(ctx context.Context, username string, resolved bool, order string) ([]models.Prediction, error) {
	query := "SELECT " + predictionColumns + " FROM predictions WHERE is_resolved = $1"
	args := []any{resolved}
	if username != "" {
		query += " AND username = $2"
		args = append(args, username)
	}
	query += " ORDER BY " + order

	rows, err := s.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger: list predictions: %w", err)
	}
	defer rows.Close()

	var out []models.Prediction
	for rows.Next() {
		var p models.Prediction
		err := rows.Scan(
			&p.ID, &p.Username, &p.GameID, &p.GameDate, &p.Opponent, &p.IsHome,
			&p.UserPick, &p.UserScoreFor, &p.UserScoreAgt,
			&p.ModelPick, &p.ModelWinProb,
			&p.ActualResult, &p.ActualScoreFor, &p.ActualScoreAgt,
			&p.UserPoints, &p.ModelPoints, &p.Resolved, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ledger: scan prediction: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PendingGameIDs returns the distinct game ids with unresolved predictions,
// oldest first; the scheduler checks these against the live schedule.
func (s *service) PendingGameIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.pg.Query(ctx,
		"SELECT DISTINCT game_id FROM predictions WHERE NOT is_resolved ORDER BY game_id")
	if err != nil {
		return nil, fmt.Errorf("ledger: pending game ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ledger: scan game id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *service) Leaderboard(ctx context.Context) (*models.Leaderboard, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT username,
		       COUNT(*),
		       COALESCE(SUM(user_points), 0),
		       COUNT(*) FILTER (WHERE user_points > 0),
		       COUNT(*) FILTER (WHERE user_points = 3)
		FROM predictions
		WHERE is_resolved
		GROUP BY username
		ORDER BY COALESCE(SUM(user_points), 0) DESC, username ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("ledger: leaderboard users: %w", err)
	}
	defer rows.Close()

	lb := &models.Leaderboard{}
	for rows.Next() {
		var r models.LeaderboardRow
		if err := rows.Scan(&r.Username, &r.GamesResolved, &r.TotalPoints, &r.CorrectPicks, &r.ExactScores); err != nil {
			return nil, fmt.Errorf("ledger: scan leaderboard row: %w", err)
		}
		r.Accuracy = percent(r.CorrectPicks, r.GamesResolved)
		lb.Users = append(lb.Users, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// One aggregate model row over every resolved prediction, regardless
	// of which user it was recorded against.
	var m models.LeaderboardRow
	m.Username = "model"
	err = s.pg.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(model_points), 0),
		       COUNT(*) FILTER (WHERE model_points > 0)
		FROM predictions
		WHERE is_resolved
	`).Scan(&m.GamesResolved, &m.TotalPoints, &m.CorrectPicks)
	if err != nil {
		return nil, fmt.Errorf("ledger: leaderboard model row: %w", err)
	}
	m.Accuracy = percent(m.CorrectPicks, m.GamesResolved)
	lb.Model = m

	return lb, nil
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}
