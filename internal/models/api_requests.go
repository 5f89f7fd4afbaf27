package models

// SubmitPredictionRequest is the POST /api/v1/predictions payload.
type SubmitPredictionRequest struct {
	Username     string `json:"username" validate:"required,min=1,max=64"`
	GameID       int64  `json:"game_id" validate:"required,gt=0"`
	GameDate     string `json:"game_date" validate:"required,datetime=2006-01-02"`
	Opponent     string `json:"opponent" validate:"required,len=3"`
	IsHome       bool   `json:"is_home"`
	Pick         string `json:"pick" validate:"required,oneof=W L"`
	ScoreFor     int    `json:"score_for" validate:"gte=0,lte=20"`
	ScoreAgainst int    `json:"score_against" validate:"gte=0,lte=20"`
}

// ResolveGameRequest is the POST /api/v1/games/{gameID}/resolve payload,
// normally driven by the scheduler rather than end users.
type ResolveGameRequest struct {
	Result       string `json:"result" validate:"required,oneof=W L"`
	ScoreFor     int    `json:"score_for" validate:"gte=0"`
	ScoreAgainst int    `json:"score_against" validate:"gte=0"`
}

// SubmitPredictionResponse echoes the stored row id and the model's
// contemporaneous pick.
type SubmitPredictionResponse struct {
	ID           int64   `json:"id"`
	ModelPick    string  `json:"model_pick"`
	ModelWinProb float64 `json:"model_win_probability"`
}
