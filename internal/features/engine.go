// Package features turns the ordered historical game log into model-ready
// numeric vectors. The bulk (training) and single-point (live) paths share
// one vector constructor so their semantics cannot drift apart.
//
// Every trailing statistic is computed from strictly earlier games: the
// vector for game i never sees game i's own outcome, or any later game.
package features

import (
	"errors"
	"sort"

	"github.com/EdgarPaulEDGE/leafs-predictor/internal/models"
)

// Trailing-window sizes and the minimum prior-game counts below which a
// window is undefined. Rows with any undefined window are excluded from
// training, producing a warm-up period at the start of the log.
const (
	winPctWindow   = 10
	winPctMin      = 5
	goalsWindow    = 5
	goalsMin       = 3
	goalDiffWindow = 10
	goalDiffMin    = 5
	streakLookback = 20
	h2hMinMeetings = 2
)

// ErrInsufficientHistory is returned when the game log is too short for the
// trailing windows to be defined. Callers must surface this as "no model
// opinion", never as a loss prediction.
var ErrInsufficientHistory = errors.New("features: insufficient history for trailing windows")

// Example is one training row: an engineered vector and its outcome.
type Example struct {
	GameID int64
	Vector Vector
	Win    bool
}

// BuildTrainingTable engineers one Example per game that has enough prior
// history. Games are processed in date order regardless of input order.
func BuildTrainingTable(games []models.HistoricalGame) []Example {
	ordered := make([]models.HistoricalGame, len(games))
	copy(ordered, games)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Date != ordered[j].Date {
			return ordered[i].Date < ordered[j].Date
		}
		return ordered[i].GameID < ordered[j].GameID
	})

	examples := make([]Example, 0, len(ordered))
	h2h := make(map[string][]bool)
	streak := 0

	for i := range ordered {
		g := &ordered[i]
		prior := ordered[:i]

		if len(prior) >= winPctMin {
			v := buildVector(vectorInputs{
				isHome:      g.IsHome,
				opponent:    g.Opponent,
				rollWinPct:  trailingWinPct(prior, winPctWindow),
				rollGF:      trailingMeanFor(prior, goalsWindow),
				rollGA:      trailingMeanAgainst(prior, goalsWindow),
				rollDiff:    trailingGoalDiff(prior, goalDiffWindow),
				streak:      streak,
				h2hWinPct:   h2hWinPct(h2h[g.Opponent]),
				restDays:    g.RestDays,
				backToBack:  g.RestDays == 1,
				ctx:         contextOf(g),
				standingSet: true,
			})
			examples = append(examples, Example{GameID: g.GameID, Vector: v, Win: g.Won()})
		}

		// Bookkeeping happens after the row is emitted so the current
		// game's outcome never leaks into its own vector.
		h2h[g.Opponent] = append(h2h[g.Opponent], g.Won())
		streak = advanceStreak(streak, g.Won())
	}
	return examples
}

// BuildLiveVector engineers the vector for a hypothetical upcoming game,
// anchored at the end of recent. Rest days and the back-to-back flag are
// not knowable for a future game and take fixed constants.
func BuildLiveVector(recent []models.HistoricalGame, opponent string, isHome bool) (Vector, error) {
	if len(recent) < winPctMin {
		return nil, ErrInsufficientHistory
	}

	ordered := make([]models.HistoricalGame, len(recent))
	copy(ordered, recent)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Date != ordered[j].Date {
			return ordered[i].Date < ordered[j].Date
		}
		return ordered[i].GameID < ordered[j].GameID
	})

	var meetings []bool
	var lastMeeting *models.HistoricalGame
	for i := range ordered {
		if ordered[i].Opponent == opponent {
			meetings = append(meetings, ordered[i].Won())
			lastMeeting = &ordered[i]
		}
	}

	// Team-side advanced stats come from the most recent row; the
	// opponent's come from the last meeting against them, if any.
	ctx := contextOf(&ordered[len(ordered)-1])
	standingDiff := 0
	if lastMeeting != nil {
		mc := contextOf(lastMeeting)
		ctx.oppWinPct = mc.oppWinPct
		ctx.oppGoalsPerGame = mc.oppGoalsPerGame
		ctx.oppGoalsAgainst = mc.oppGoalsAgainst
		ctx.oppPoints = mc.oppPoints
		ctx.oppL10Wins = mc.oppL10Wins
		ctx.oppPP = mc.oppPP
		ctx.oppPK = mc.oppPK
		ctx.oppCorsi = mc.oppCorsi
		ctx.oppPDO = mc.oppPDO
		ctx.oppSave = mc.oppSave
		standingDiff = mc.teamPoints - mc.oppPoints
	} else {
		dc := defaultContext()
		ctx.oppWinPct = dc.oppWinPct
		ctx.oppGoalsPerGame = dc.oppGoalsPerGame
		ctx.oppGoalsAgainst = dc.oppGoalsAgainst
		ctx.oppPoints = dc.oppPoints
		ctx.oppL10Wins = dc.oppL10Wins
		ctx.oppPP = dc.oppPP
		ctx.oppPK = dc.oppPK
		ctx.oppCorsi = dc.oppCorsi
		ctx.oppPDO = dc.oppPDO
		ctx.oppSave = dc.oppSave
	}

	v := buildVector(vectorInputs{
		isHome:       isHome,
		opponent:     opponent,
		rollWinPct:   trailingWinPct(ordered, winPctWindow),
		rollGF:       trailingMeanFor(ordered, goalsWindow),
		rollGA:       trailingMeanAgainst(ordered, goalsWindow),
		rollDiff:     trailingGoalDiff(ordered, goalDiffWindow),
		streak:       currentStreak(ordered, streakLookback),
		h2hWinPct:    h2hWinPct(meetings),
		restDays:     DefaultLiveRestDays,
		backToBack:   false,
		ctx:          ctx,
		standingDiff: standingDiff,
	})
	return v, nil
}

type vectorInputs struct {
	isHome     bool
	opponent   string
	rollWinPct float64
	rollGF     float64
	rollGA     float64
	rollDiff   float64
	streak     int
	h2hWinPct  float64
	restDays   int
	backToBack bool
	ctx        contextFields

	// standingSet derives standing_diff from ctx; otherwise standingDiff
	// is used directly (the live path computes it from the last meeting).
	standingSet  bool
	standingDiff int
}

// buildVector assembles the fixed-order feature row. Shared by both paths.
func buildVector(in vectorInputs) Vector {
	home := 0.0
	if in.isHome {
		home = 1.0
	}
	b2b := 0.0
	if in.backToBack {
		b2b = 1.0
	}
	standingDiff := in.standingDiff
	if in.standingSet {
		standingDiff = in.ctx.teamPoints - in.ctx.oppPoints
	}

	v := make(Vector, 0, NumFeatures)
	v = append(v,
		home,
		float64(models.EncodeOpponent(in.opponent)),
		in.rollWinPct,
		in.rollGF,
		in.rollGA,
		in.rollDiff,
		float64(in.streak),
		in.h2hWinPct,
		float64(in.restDays),
		b2b,
		in.ctx.oppWinPct,
		in.ctx.oppGoalsPerGame,
		in.ctx.oppGoalsAgainst,
		float64(in.ctx.oppL10Wins),
		float64(standingDiff),
		in.ctx.teamPP,
		in.ctx.teamPK,
		in.ctx.teamCorsi,
		in.ctx.teamFenwick,
		in.ctx.teamPDO,
		in.ctx.teamShotsPG,
		in.ctx.teamShotsAgstPG,
		in.ctx.teamFaceoff,
		in.ctx.teamSave,
		in.ctx.teamShooting,
		in.ctx.teamZoneStart,
		in.ctx.oppPP,
		in.ctx.oppPK,
		in.ctx.oppCorsi,
		in.ctx.oppPDO,
		in.ctx.oppSave,
		in.ctx.teamCorsi-in.ctx.oppCorsi,
		(in.ctx.teamPP+in.ctx.teamPK)-(in.ctx.oppPP+in.ctx.oppPK),
		in.ctx.teamShotsPG-in.ctx.teamShotsAgstPG,
	)
	return v
}

func tail(games []models.HistoricalGame, n int) []models.HistoricalGame {
	if len(games) > n {
		return games[len(games)-n:]
	}
	return games
}

func trailingWinPct(prior []models.HistoricalGame, window int) float64 {
	w := tail(prior, window)
	wins := 0
	for i := range w {
		if w[i].Won() {
			wins++
		}
	}
	return float64(wins) / float64(len(w))
}

func trailingMeanFor(prior []models.HistoricalGame, window int) float64 {
	w := tail(prior, window)
	sum := 0
	for i := range w {
		sum += w[i].TeamScore
	}
	return float64(sum) / float64(len(w))
}

func trailingMeanAgainst(prior []models.HistoricalGame, window int) float64 {
	w := tail(prior, window)
	sum := 0
	for i := range w {
		sum += w[i].OppScore
	}
	return float64(sum) / float64(len(w))
}

func trailingGoalDiff(prior []models.HistoricalGame, window int) float64 {
	w := tail(prior, window)
	diff := 0
	for i := range w {
		diff += w[i].TeamScore - w[i].OppScore
	}
	return float64(diff)
}

// h2hWinPct is the win rate over strictly earlier meetings against one
// opponent, defaulting to 0.5 below two meetings.
func h2hWinPct(meetings []bool) float64 {
	if len(meetings) < h2hMinMeetings {
		return DefaultH2HWinPct
	}
	wins := 0
	for _, w := range meetings {
		if w {
			wins++
		}
	}
	return float64(wins) / float64(len(meetings))
}

// advanceStreak applies one game result to the signed streak counter: the
// sign flips immediately when the result changes.
func advanceStreak(streak int, won bool) int {
	if won {
		if streak > 0 {
			return streak + 1
		}
		return 1
	}
	if streak < 0 {
		return streak - 1
	}
	return -1
}

// currentStreak walks backward from the most recent game until the result
// changes, bounded by lookback games.
func currentStreak(games []models.HistoricalGame, lookback int) int {
	w := tail(games, lookback)
	streak := 0
	for i := len(w) - 1; i >= 0; i-- {
		if w[i].Won() && streak >= 0 {
			streak++
		} else if !w[i].Won() && streak <= 0 {
			streak--
		} else {
			break
		}
	}
	return streak
}
