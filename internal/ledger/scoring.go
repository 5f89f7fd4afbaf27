package ledger

import "github.com/EdgarPaulEDGE/leafs-predictor/internal/models"

// Point values for a resolved prediction. The table is authoritative:
// a correct side is worth 1, and only a correct side plus the exact final
// score upgrades it to 3. A wrong side scores nothing even with the right
// goal totals.
const (
	PointsWrong       = 0
	PointsCorrectSide = 1
	PointsExactScore  = 3
)

// ScoreUser grades a user's guess against the real outcome.
func ScoreUser(pick string, scoreFor, scoreAgainst int, actual string, actualFor, actualAgainst int) int {
	if pick != actual {
		return PointsWrong
	}
	if scoreFor == actualFor && scoreAgainst == actualAgainst {
		return PointsExactScore
	}
	return PointsCorrectSide
}

// ScoreModel grades the model's guess. The model only ever emits a side,
// never a scoreline, so it is scored on the categorical rule alone.
func ScoreModel(pick, actual string) int {
	if pick == actual {
		return PointsCorrectSide
	}
	return PointsWrong
}

// ValidPick reports whether a pick is one of the two scoreable sides.
func ValidPick(pick string) bool {
	return pick == models.ResultWin || pick == models.ResultLoss
}
