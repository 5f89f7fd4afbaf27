package models

import "time"

// Prediction is one user's guess for one game, stored before puck drop and
// resolved exactly once when the final score is known. At most one row
// exists per (username, game_id); the ledger enforces this at write time.
type Prediction struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	GameID   int64  `json:"game_id"`
	GameDate string `json:"game_date"`
	Opponent string `json:"opponent"`
	IsHome   bool   `json:"is_home"`

	UserPick     string `json:"user_pick"` // "W" or "L"
	UserScoreFor int    `json:"user_score_for"`
	UserScoreAgt int    `json:"user_score_against"`

	ModelPick    string  `json:"model_pick"`
	ModelWinProb float64 `json:"model_win_probability"` // percent at submission time

	ActualResult   string `json:"actual_result,omitempty"`
	ActualScoreFor int    `json:"actual_score_for,omitempty"`
	ActualScoreAgt int    `json:"actual_score_against,omitempty"`

	UserPoints  int  `json:"user_points"`
	ModelPoints int  `json:"model_points"`
	Resolved    bool `json:"resolved"`

	CreatedAt time.Time `json:"created_at"`
}

// LeaderboardRow is one user's aggregate over their resolved predictions.
type LeaderboardRow struct {
	Username      string  `json:"username"`
	GamesResolved int     `json:"games_resolved"`
	TotalPoints   int     `json:"total_points"`
	CorrectPicks  int     `json:"correct_picks"`
	ExactScores   int     `json:"exact_scores"`
	Accuracy      float64 `json:"accuracy"` // percent of resolved games with a correct pick
}

// Leaderboard ranks users by total points and carries one aggregate row for
// the model, computed over every resolved prediction regardless of user.
type Leaderboard struct {
	Users []LeaderboardRow `json:"users"`
	Model LeaderboardRow   `json:"model"`
}

// ModelInfo describes the currently loaded model for the API surface.
type ModelInfo struct {
	Family     string             `json:"family"`
	CVAccuracy float64            `json:"cv_accuracy"`
	TrainedAt  time.Time          `json:"trained_at"`
	ArtifactID string             `json:"artifact_id"`
	Games      int                `json:"training_games"`
	Report     map[string]float64 `json:"cv_report"` // per-family CV accuracy
}

// GamePrediction is the model's opinion on an upcoming game.
type GamePrediction struct {
	Pick          string  `json:"pick"` // "W" or "L"
	WinProb       float64 `json:"win_probability"`  // 0-100
	LossProb      float64 `json:"loss_probability"` // 100 - WinProb
	Confidence    float64 `json:"confidence"`       // max of the two
	Opponent      string  `json:"opponent"`
	IsHome        bool    `json:"is_home"`
	ModelFamily   string  `json:"model_family"`
	ModelAccuracy float64 `json:"model_accuracy"`
}
