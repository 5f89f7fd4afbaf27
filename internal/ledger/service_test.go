package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/EdgarPaulEDGE/leafs-predictor/internal/models"
)

func validSubmit() *models.SubmitPredictionRequest {
	return &models.SubmitPredictionRequest{
		Username:     "morgan",
		GameID:       2025020123,
		GameDate:     "2025-11-08",
		Opponent:     "BOS",
		IsHome:       true,
		Pick:         "W",
		ScoreFor:     4,
		ScoreAgainst: 2,
	}
}

func TestSubmitInvalidPick(t *testing.T) {
	svc := NewService(&mockPool{}, zap.NewNop())

	req := validSubmit()
	req.Pick = "X"
	if _, err := svc.Submit(context.Background(), req, "W", 61.2); !errors.Is(err, ErrInvalidPrediction) {
		t.Fatalf("err = %v, want ErrInvalidPrediction", err)
	}
}

func TestSubmitNegativeScoreline(t *testing.T) {
	svc := NewService(&mockPool{}, zap.NewNop())

	req := validSubmit()
	req.ScoreAgainst = -1
	if _, err := svc.Submit(context.Background(), req, "W", 61.2); !errors.Is(err, ErrInvalidPrediction) {
		t.Fatalf("err = %v, want ErrInvalidPrediction", err)
	}
}

func TestSubmitDuplicate(t *testing.T) {
	pool := &mockPool{
		queryRowFn: func(sql string, args []any) pgx.Row {
			// The duplicate pre-check finds an existing row.
			return &fakeRow{vals: []any{int64(7)}}
		},
	}
	svc := NewService(pool, zap.NewNop())

	if _, err := svc.Submit(context.Background(), validSubmit(), "W", 61.2); !errors.Is(err, ErrDuplicatePrediction) {
		t.Fatalf("err = %v, want ErrDuplicatePrediction", err)
	}
}

func TestSubmitStoresModelPick(t *testing.T) {
	var insertArgs []any
	pool := &mockPool{
		queryRowFn: func(sql string, args []any) pgx.Row {
			if strings.Contains(sql, "INSERT") {
				insertArgs = args
				return &fakeRow{vals: []any{int64(42)}}
			}
			return &fakeRow{err: pgx.ErrNoRows}
		},
	}
	svc := NewService(pool, zap.NewNop())

	id, err := svc.Submit(context.Background(), validSubmit(), "W", 61.2)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id != 42 {
		t.Errorf("id = %d, want 42", id)
	}
	if len(insertArgs) != 10 {
		t.Fatalf("insert got %d args, want 10", len(insertArgs))
	}
	// The model's contemporaneous opinion is frozen into the row.
	if insertArgs[8] != "W" || insertArgs[9] != 61.2 {
		t.Errorf("model pick args = %v, %v; want W, 61.2", insertArgs[8], insertArgs[9])
	}
}

func TestResolveInvalidResult(t *testing.T) {
	svc := NewService(&mockPool{}, zap.NewNop())
	if _, err := svc.Resolve(context.Background(), 1, "tie", 2, 2); !errors.Is(err, ErrInvalidPrediction) {
		t.Fatalf("err = %v, want ErrInvalidPrediction", err)
	}
}

func TestResolveNothingPending(t *testing.T) {
	pool := &mockPool{
		queryFn: func(sql string, args []any) (pgx.Rows, error) {
			return &fakeRows{}, nil
		},
	}
	svc := NewService(pool, zap.NewNop())

	n, err := svc.Resolve(context.Background(), 2025020123, "W", 4, 2)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if n != 0 {
		t.Errorf("resolved = %d, want 0", n)
	}
	// Re-resolving a settled game must write nothing.
	if len(pool.execSQL) != 0 {
		t.Errorf("unexpected writes: %v", pool.execSQL)
	}
}

func TestResolveGradesEachPrediction(t *testing.T) {
	// Columns: id, user_pick, user_score_for, user_score_against, model_pick.
	pool := &mockPool{
		queryFn: func(sql string, args []any) (pgx.Rows, error) {
			return &fakeRows{rows: [][]any{
				{int64(1), "W", 4, 2, "W"}, // exact call
				{int64(2), "W", 3, 2, "L"}, // right side only
				{int64(3), "L", 1, 3, "W"}, // wrong side
			}}, nil
		},
	}
	svc := NewService(pool, zap.NewNop())

	n, err := svc.Resolve(context.Background(), 2025020123, "W", 4, 2)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if n != 3 {
		t.Fatalf("resolved = %d, want 3", n)
	}
	if len(pool.execArgs) != 3 {
		t.Fatalf("updates = %d, want 3", len(pool.execArgs))
	}

	// Update args: actual, scoreFor, scoreAgainst, userPoints, modelPoints, id.
	wantUser := []int{3, 1, 0}
	wantModel := []int{1, 0, 1}
	for i, args := range pool.execArgs {
		if got := args[3]; got != wantUser[i] {
			t.Errorf("prediction %d: user points = %v, want %d", i+1, got, wantUser[i])
		}
		if got := args[4]; got != wantModel[i] {
			t.Errorf("prediction %d: model points = %v, want %d", i+1, got, wantModel[i])
		}
		if !strings.Contains(pool.execSQL[i], "NOT is_resolved") {
			t.Errorf("prediction %d: update is not guarded against double resolution", i+1)
		}
	}
}

func TestLeaderboard(t *testing.T) {
	pool := &mockPool{
		queryFn: func(sql string, args []any) (pgx.Rows, error) {
			// username, games, points, correct, exact; ranked by points.
			return &fakeRows{rows: [][]any{
				{"auston", 10, 14, 8, 2},
				{"mitch", 10, 9, 7, 1},
			}}, nil
		},
		queryRowFn: func(sql string, args []any) pgx.Row {
			// Model aggregate: games, points, correct.
			return &fakeRow{vals: []any{20, 12, 12}}
		},
	}
	svc := NewService(pool, zap.NewNop())

	lb, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(lb.Users) != 2 {
		t.Fatalf("users = %d, want 2", len(lb.Users))
	}
	if lb.Users[0].Username != "auston" || lb.Users[0].TotalPoints != 14 {
		t.Errorf("top row = %+v", lb.Users[0])
	}
	if lb.Users[0].Accuracy != 80.0 {
		t.Errorf("accuracy = %v, want 80.0", lb.Users[0].Accuracy)
	}
	if lb.Model.Username != "model" || lb.Model.GamesResolved != 20 || lb.Model.TotalPoints != 12 {
		t.Errorf("model row = %+v", lb.Model)
	}
	if lb.Model.Accuracy != 60.0 {
		t.Errorf("model accuracy = %v, want 60.0", lb.Model.Accuracy)
	}
}
