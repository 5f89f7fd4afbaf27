package models

import (
	"fmt"
	"time"
)

// Game results as stored and scored.
const (
	ResultWin  = "W"
	ResultLoss = "L"
)

// DateLayout is the calendar-date format used across the store and the NHL API.
const DateLayout = "2006-01-02"

// MaxRestDays caps the rest-day count so long breaks (all-star, off-season)
// don't dominate the feature.
const MaxRestDays = 7

// HistoricalGame is one completed regular-season game, together with the
// standings and advanced-stat snapshot taken at ingestion time. Rows are
// append-only: once written they are never mutated or deleted.
type HistoricalGame struct {
	GameID   int64  `json:"game_id"`
	Date     string `json:"date"` // YYYY-MM-DD, non-decreasing across the store
	Opponent string `json:"opponent"`
	IsHome   bool   `json:"is_home"`

	TeamScore int `json:"team_score"`
	OppScore  int `json:"opp_score"`
	Result    string `json:"result"` // "W" iff TeamScore > OppScore

	RestDays int `json:"rest_days"` // days since previous game, capped at MaxRestDays

	// Opponent strength from the standings snapshot.
	OppWinPct          float64 `json:"opp_win_pct"`
	OppGoalsPerGame    float64 `json:"opp_goals_per_game"`
	OppGoalsAgainstPG  float64 `json:"opp_goals_against_per_game"`
	OppPoints          int     `json:"opp_points"`
	OppL10Wins         int     `json:"opp_l10_wins"`
	TeamStandingPoints int     `json:"team_standing_points"`

	// Team advanced stats at ingestion time.
	TeamPPPct        float64 `json:"team_pp_pct"`
	TeamPKPct        float64 `json:"team_pk_pct"`
	TeamCorsiPct     float64 `json:"team_corsi_pct"`
	TeamFenwickPct   float64 `json:"team_fenwick_pct"`
	TeamPDO          float64 `json:"team_pdo"`
	TeamShotsPG      float64 `json:"team_shots_pg"`
	TeamShotsAgstPG  float64 `json:"team_shots_against_pg"`
	TeamFaceoffPct   float64 `json:"team_faceoff_pct"`
	TeamSavePct      float64 `json:"team_save_pct"`
	TeamShootingPct  float64 `json:"team_shooting_pct"`
	TeamZoneStartPct float64 `json:"team_zone_start_pct"`

	// Opponent advanced stats at ingestion time.
	OppPPPct    float64 `json:"opp_pp_pct"`
	OppPKPct    float64 `json:"opp_pk_pct"`
	OppCorsiPct float64 `json:"opp_corsi_pct"`
	OppPDO      float64 `json:"opp_pdo"`
	OppSavePct  float64 `json:"opp_save_pct"`
}

// Won reports whether the team won the game.
func (g *HistoricalGame) Won() bool {
	return g.Result == ResultWin
}

// Validate rejects malformed rows at the ingestion boundary so ambiguity
// never propagates into feature engineering.
func (g *HistoricalGame) Validate() error {
	if g.GameID <= 0 {
		return fmt.Errorf("game %d: non-positive game id", g.GameID)
	}
	if _, err := time.Parse(DateLayout, g.Date); err != nil {
		return fmt.Errorf("game %d: bad date %q: %w", g.GameID, g.Date, err)
	}
	if len(g.Opponent) != 3 {
		return fmt.Errorf("game %d: bad opponent code %q", g.GameID, g.Opponent)
	}
	if g.TeamScore < 0 || g.OppScore < 0 {
		return fmt.Errorf("game %d: negative score %d-%d", g.GameID, g.TeamScore, g.OppScore)
	}
	if g.RestDays < 0 {
		return fmt.Errorf("game %d: negative rest days %d", g.GameID, g.RestDays)
	}
	want := ResultLoss
	if g.TeamScore > g.OppScore {
		want = ResultWin
	}
	if g.Result != want {
		return fmt.Errorf("game %d: result %q inconsistent with score %d-%d", g.GameID, g.Result, g.TeamScore, g.OppScore)
	}
	return nil
}

// NHLTeams lists all team codes in the fixed order used for categorical
// encoding. The order must never change once models have been trained on it.
var NHLTeams = []string{
	"ANA", "ARI", "BOS", "BUF", "CAR", "CBJ", "CGY", "CHI",
	"COL", "DAL", "DET", "EDM", "FLA", "LAK", "MIN", "MTL",
	"NJD", "NSH", "NYI", "NYR", "OTT", "PHI", "PIT", "SEA",
	"SJS", "STL", "TBL", "UTA", "VAN", "VGK", "WPG", "WSH",
}

// UnknownOpponent is the reserved categorical code for opponents missing
// from NHLTeams (expansion teams, typos in upstream data).
const UnknownOpponent = -1

var teamIndex = func() map[string]int {
	m := make(map[string]int, len(NHLTeams))
	for i, t := range NHLTeams {
		m[t] = i
	}
	return m
}()

// EncodeOpponent maps a team code to its categorical index, or
// UnknownOpponent when the code is not a known team.
func EncodeOpponent(code string) int {
	if i, ok := teamIndex[code]; ok {
		return i
	}
	return UnknownOpponent
}
