package nhl

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/EdgarPaulEDGE/leafs-predictor/internal/cache"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/models"
)

// League-average fallbacks used when a team is missing from a standings or
// advanced-stat response. These match the substitution table in
// features/defaults.go so a freshly ingested row and a repaired row agree.
const (
	fallbackWinPct       = 0.5
	fallbackGoalsPerGame = 3.0
	fallbackPoints       = 50
	fallbackL10Wins      = 5
	fallbackPPPct        = 0.20
	fallbackPKPct        = 0.80
	fallbackCorsiPct     = 0.50
	fallbackFenwickPct   = 0.50
	fallbackPDO          = 1.00
	fallbackShotsPG      = 30.0
	fallbackFaceoffPct   = 0.50
	fallbackSavePct      = 0.91
	fallbackShootingPct  = 0.09
	fallbackZoneStartPct = 0.50
)

// TTLs for the in-process upstream caches. Standings move slowly during a
// day; advanced stats are season aggregates and move slower still.
const (
	standingsTTL = 30 * time.Minute
	statsTTL     = 6 * time.Hour
)

// ErrNoUpcomingGame is returned when the season schedule holds no future
// regular-season game.
var ErrNoUpcomingGame = errors.New("nhl: no upcoming game on the schedule")

// Upcoming is the next scheduled game, the prediction target.
type Upcoming struct {
	GameID   int64  `json:"game_id"`
	Date     string `json:"date"`
	Opponent string `json:"opponent"`
	IsHome   bool   `json:"is_home"`
}

// Feed turns the raw NHL APIs into store-ready game rows. It caches the
// slow-moving upstream responses so the scheduler and the HTTP handlers can
// both call it without hammering the league's servers.
type Feed struct {
	client    *Client
	standings *cache.TTL[map[string]Standing]
	stats     *cache.TTL[map[string]TeamStats]
	logger    *zap.SugaredLogger
}

func NewFeed(client *Client, clock cache.Clock, logger *zap.Logger) *Feed {
	return &Feed{
		client:    client,
		standings: cache.New[map[string]Standing](clock),
		stats:     cache.New[map[string]TeamStats](clock),
		logger:    logger.Sugar(),
	}
}

// Season returns the NHL season id covering now, e.g. "20252026". The id
// rolls over in August, between the draft and training camp.
func Season(now time.Time) string {
	year := now.Year()
	if now.Month() < time.August {
		year--
	}
	return fmt.Sprintf("%d%d", year, year+1)
}

// NewCompleted returns completed regular-season games with ids beyond
// afterGameID, in date order, with the current standings and advanced-stat
// snapshot attached. Rest days are chained through the full completed
// schedule so the first new game still sees its true previous game date.
func (f *Feed) NewCompleted(ctx context.Context, season string, afterGameID int64) ([]models.HistoricalGame, error) {
	var (
		schedule  []ScheduleGame
		standings map[string]Standing
		stats     map[string]TeamStats
	)

	today := time.Now().Format(models.DateLayout)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		schedule, err = f.client.Schedule(gctx, season)
		return err
	})
	g.Go(func() error {
		var err error
		standings, err = f.standings.GetOrFetch(gctx, "standings:"+today, standingsTTL,
			func(ctx context.Context) (map[string]Standing, error) {
				return f.client.Standings(ctx, today)
			})
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = f.stats.GetOrFetch(gctx, "stats:"+season, statsTTL,
			func(ctx context.Context) (map[string]TeamStats, error) {
				return f.client.AdvancedStats(ctx, season)
			})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	standingsFor := func(string) map[string]Standing { return standings }
	rows := ParseGames(schedule, standingsFor, stats)

	fresh := rows[:0:0]
	for _, r := range rows {
		if r.GameID > afterGameID {
			fresh = append(fresh, r)
		}
	}
	f.logger.Infow("Checked schedule for completed games",
		"season", season, "completed", len(rows), "new", len(fresh))
	return fresh, nil
}

// NextGame returns the earliest not-yet-final regular-season game.
func (f *Feed) NextGame(ctx context.Context, season string) (*Upcoming, error) {
	schedule, err := f.client.Schedule(ctx, season)
	if err != nil {
		return nil, err
	}
	sortSchedule(schedule)

	for i := range schedule {
		sg := &schedule[i]
		if !sg.RegularSeason() || sg.Final() {
			continue
		}
		opponent, isHome := opponentOf(sg)
		return &Upcoming{
			GameID:   sg.ID,
			Date:     sg.GameDate,
			Opponent: opponent,
			IsHome:   isHome,
		}, nil
	}
	return nil, ErrNoUpcomingGame
}

// ParseGames converts final regular-season schedule entries into store rows.
// standingsFor selects the standings snapshot for a game date; the live path
// passes a constant snapshot while the backfill path samples per month.
func ParseGames(schedule []ScheduleGame, standingsFor func(date string) map[string]Standing, stats map[string]TeamStats) []models.HistoricalGame {
	sortSchedule(schedule)
	teamStats := statsOrFallback(stats, TeamFullName)

	var rows []models.HistoricalGame
	prevDate := ""
	for i := range schedule {
		sg := &schedule[i]
		if !sg.RegularSeason() || !sg.Final() {
			continue
		}

		opponent, isHome := opponentOf(sg)
		teamScore, oppScore := sg.HomeTeam.Score, sg.AwayTeam.Score
		if !isHome {
			teamScore, oppScore = oppScore, teamScore
		}
		result := models.ResultLoss
		if teamScore > oppScore {
			result = models.ResultWin
		}

		row := models.HistoricalGame{
			GameID:    sg.ID,
			Date:      sg.GameDate,
			Opponent:  opponent,
			IsHome:    isHome,
			TeamScore: teamScore,
			OppScore:  oppScore,
			Result:    result,
			RestDays:  restDays(prevDate, sg.GameDate),
		}
		prevDate = sg.GameDate

		standings := standingsFor(sg.GameDate)
		applyStandings(&row, standings, opponent)
		applyStats(&row, teamStats, statsOrFallback(stats, FullName(opponent)))
		rows = append(rows, row)
	}
	return rows
}

func sortSchedule(schedule []ScheduleGame) {
	sort.SliceStable(schedule, func(i, j int) bool {
		if schedule[i].GameDate != schedule[j].GameDate {
			return schedule[i].GameDate < schedule[j].GameDate
		}
		return schedule[i].ID < schedule[j].ID
	})
}

func opponentOf(sg *ScheduleGame) (opponent string, isHome bool) {
	if sg.HomeTeam.Abbrev == TeamAbbrev {
		return sg.AwayTeam.Abbrev, true
	}
	return sg.HomeTeam.Abbrev, false
}

// restDays is the calendar-day gap to the previous game, capped at
// models.MaxRestDays. A value of 1 means a back-to-back; the first game of a
// season, with no previous date, is treated the same way.
func restDays(prevDate, curDate string) int {
	if prevDate == "" {
		return 1
	}
	prev, errP := time.Parse(models.DateLayout, prevDate)
	cur, errC := time.Parse(models.DateLayout, curDate)
	if errP != nil || errC != nil {
		return 1
	}
	days := int(cur.Sub(prev).Hours() / 24)
	if days < 1 {
		days = 1
	}
	if days > models.MaxRestDays {
		days = models.MaxRestDays
	}
	return days
}

func applyStandings(row *models.HistoricalGame, standings map[string]Standing, opponent string) {
	row.OppWinPct = fallbackWinPct
	row.OppGoalsPerGame = fallbackGoalsPerGame
	row.OppGoalsAgainstPG = fallbackGoalsPerGame
	row.OppPoints = fallbackPoints
	row.OppL10Wins = fallbackL10Wins
	row.TeamStandingPoints = fallbackPoints

	if opp, ok := standings[opponent]; ok && opp.GamesPlayed > 0 {
		row.OppWinPct = opp.WinPct()
		row.OppGoalsPerGame = opp.GoalsPerGame()
		row.OppGoalsAgainstPG = opp.GoalsAgainstPerGame()
		row.OppPoints = opp.Points
		row.OppL10Wins = opp.L10Wins
	}
	if team, ok := standings[TeamAbbrev]; ok && team.GamesPlayed > 0 {
		row.TeamStandingPoints = team.Points
	}
}

func applyStats(row *models.HistoricalGame, team, opp TeamStats) {
	row.TeamPPPct = team.PPPct
	row.TeamPKPct = team.PKPct
	row.TeamCorsiPct = team.CorsiPct
	row.TeamFenwickPct = team.FenwickPct
	row.TeamPDO = team.PDO
	row.TeamShotsPG = team.ShotsPerGame
	row.TeamShotsAgstPG = team.ShotsAgainstPG
	row.TeamFaceoffPct = team.FaceoffPct
	row.TeamSavePct = team.SavePct
	row.TeamShootingPct = team.ShootingPct
	row.TeamZoneStartPct = team.ZoneStartPct

	row.OppPPPct = opp.PPPct
	row.OppPKPct = opp.PKPct
	row.OppCorsiPct = opp.CorsiPct
	row.OppPDO = opp.PDO
	row.OppSavePct = opp.SavePct
}

// statsOrFallback substitutes league averages for teams the stats API does
// not know, and for zero fields early in a season.
func statsOrFallback(stats map[string]TeamStats, fullName string) TeamStats {
	s := stats[fullName]
	if s.PPPct == 0 {
		s.PPPct = fallbackPPPct
	}
	if s.PKPct == 0 {
		s.PKPct = fallbackPKPct
	}
	if s.CorsiPct == 0 {
		s.CorsiPct = fallbackCorsiPct
	}
	if s.FenwickPct == 0 {
		s.FenwickPct = fallbackFenwickPct
	}
	if s.PDO == 0 {
		s.PDO = fallbackPDO
	}
	if s.ShotsPerGame == 0 {
		s.ShotsPerGame = fallbackShotsPG
	}
	if s.ShotsAgainstPG == 0 {
		s.ShotsAgainstPG = fallbackShotsPG
	}
	if s.FaceoffPct == 0 {
		s.FaceoffPct = fallbackFaceoffPct
	}
	if s.SavePct == 0 {
		s.SavePct = fallbackSavePct
	}
	if s.ShootingPct == 0 {
		s.ShootingPct = fallbackShootingPct
	}
	if s.ZoneStartPct == 0 {
		s.ZoneStartPct = fallbackZoneStartPct
	}
	return s
}
