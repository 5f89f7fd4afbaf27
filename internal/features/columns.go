package features

// Columns lists every model feature in its fixed position. Training,
// scaling and inference all depend on this order; it must never be
// rearranged once a model artifact exists.
var Columns = []string{
	// Base
	"is_home",
	"opponent_encoded",
	// Team form (trailing windows)
	"rolling_win_pct",
	"rolling_goals_for",
	"rolling_goals_against",
	"goal_diff_rolling",
	"streak",
	"h2h_win_pct",
	// Situational
	"rest_days",
	"is_back_to_back",
	// Opponent standings
	"opp_win_pct",
	"opp_goals_per_game",
	"opp_goals_against_per_game",
	"opp_l10_wins",
	"standing_diff",
	// Team advanced stats
	"team_pp_pct",
	"team_pk_pct",
	"team_corsi_pct",
	"team_fenwick_pct",
	"team_pdo",
	"team_shots_pg",
	"team_shots_against_pg",
	"team_faceoff_pct",
	"team_save_pct",
	"team_shooting_pct",
	"team_zone_start_pct",
	// Opponent advanced stats
	"opp_pp_pct",
	"opp_pk_pct",
	"opp_corsi_pct",
	"opp_pdo",
	"opp_save_pct",
	// Derived differentials
	"corsi_diff",
	"special_teams_diff",
	"shots_diff",
}

// NumFeatures is the fixed vector width.
var NumFeatures = len(Columns)

// Vector is one engineered feature row, len == NumFeatures.
type Vector []float64
