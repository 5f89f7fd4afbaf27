package features

import "github.com/EdgarPaulEDGE/leafs-predictor/internal/models"

// League-average fallbacks for contextual fields that are absent from a
// stored row (a zero percentage or PDO cannot occur in real data, so a zero
// value means the snapshot was missing at ingestion time). These are an
// explicit default table, not silent zeros: every substituted constant is
// enumerable here.
const (
	DefaultPPPct        = 0.20
	DefaultPKPct        = 0.80
	DefaultCorsiPct     = 0.50
	DefaultFenwickPct   = 0.50
	DefaultPDO          = 1.00
	DefaultShotsPG      = 30.0
	DefaultFaceoffPct   = 0.50
	DefaultSavePct      = 0.91
	DefaultShootingPct  = 0.09
	DefaultZoneStartPct = 0.50
	DefaultOppWinPct    = 0.5
	DefaultGoalsPerGame = 3.0
	DefaultOppPoints    = 50
	DefaultOppL10Wins   = 5
	DefaultTeamPoints   = 50
	DefaultH2HWinPct    = 0.5
	DefaultLiveRestDays = 2 // rest days are unknowable for a future game
)

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func orDefaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// contextFields holds the snapshot-derived features of one game after
// default substitution.
type contextFields struct {
	oppWinPct        float64
	oppGoalsPerGame  float64
	oppGoalsAgainst  float64
	oppPoints        int
	oppL10Wins       int
	teamPoints       int
	teamPP, teamPK   float64
	teamCorsi        float64
	teamFenwick      float64
	teamPDO          float64
	teamShotsPG      float64
	teamShotsAgstPG  float64
	teamFaceoff      float64
	teamSave         float64
	teamShooting     float64
	teamZoneStart    float64
	oppPP, oppPK     float64
	oppCorsi, oppPDO float64
	oppSave          float64
}

func contextOf(g *models.HistoricalGame) contextFields {
	return contextFields{
		oppWinPct:       orDefault(g.OppWinPct, DefaultOppWinPct),
		oppGoalsPerGame: orDefault(g.OppGoalsPerGame, DefaultGoalsPerGame),
		oppGoalsAgainst: orDefault(g.OppGoalsAgainstPG, DefaultGoalsPerGame),
		oppPoints:       orDefaultInt(g.OppPoints, DefaultOppPoints),
		oppL10Wins:      orDefaultInt(g.OppL10Wins, DefaultOppL10Wins),
		teamPoints:      orDefaultInt(g.TeamStandingPoints, DefaultTeamPoints),
		teamPP:          orDefault(g.TeamPPPct, DefaultPPPct),
		teamPK:          orDefault(g.TeamPKPct, DefaultPKPct),
		teamCorsi:       orDefault(g.TeamCorsiPct, DefaultCorsiPct),
		teamFenwick:     orDefault(g.TeamFenwickPct, DefaultFenwickPct),
		teamPDO:         orDefault(g.TeamPDO, DefaultPDO),
		teamShotsPG:     orDefault(g.TeamShotsPG, DefaultShotsPG),
		teamShotsAgstPG: orDefault(g.TeamShotsAgstPG, DefaultShotsPG),
		teamFaceoff:     orDefault(g.TeamFaceoffPct, DefaultFaceoffPct),
		teamSave:        orDefault(g.TeamSavePct, DefaultSavePct),
		teamShooting:    orDefault(g.TeamShootingPct, DefaultShootingPct),
		teamZoneStart:   orDefault(g.TeamZoneStartPct, DefaultZoneStartPct),
		oppPP:           orDefault(g.OppPPPct, DefaultPPPct),
		oppPK:           orDefault(g.OppPKPct, DefaultPKPct),
		oppCorsi:        orDefault(g.OppCorsiPct, DefaultCorsiPct),
		oppPDO:          orDefault(g.OppPDO, DefaultPDO),
		oppSave:         orDefault(g.OppSavePct, DefaultSavePct),
	}
}

// defaultContext is used when no meeting against the opponent exists yet.
func defaultContext() contextFields {
	return contextOf(&models.HistoricalGame{})
}
