// Package nhl wraps the two public NHL APIs: api-web.nhle.com for schedules
// and standings, api.nhle.com/stats/rest for advanced team stats.
package nhl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBaseURL      = "https://api-web.nhle.com/v1"
	DefaultStatsBaseURL = "https://api.nhle.com/stats/rest/en/team"

	// TeamAbbrev is the tracked team. The whole pipeline is single-team.
	TeamAbbrev   = "TOR"
	TeamFullName = "Toronto Maple Leafs"
)

// Client is a thin JSON client for the NHL APIs.
type Client struct {
	baseURL      string
	statsBaseURL string
	http         *http.Client
	logger       *zap.SugaredLogger
}

func NewClient(logger *zap.Logger) *Client {
	return &Client{
		baseURL:      DefaultBaseURL,
		statsBaseURL: DefaultStatsBaseURL,
		http:         &http.Client{Timeout: 15 * time.Second},
		logger:       logger.Sugar(),
	}
}

// NewClientWithURLs exists for tests pointed at an httptest server.
func NewClientWithURLs(baseURL, statsBaseURL string, logger *zap.Logger) *Client {
	c := NewClient(logger)
	c.baseURL = baseURL
	c.statsBaseURL = statsBaseURL
	return c
}

// ScheduleGame is one entry from the club schedule feed.
type ScheduleGame struct {
	ID        int64        `json:"id"`
	GameDate  string       `json:"gameDate"`
	GameType  int          `json:"gameType"`
	GameState string       `json:"gameState"`
	HomeTeam  ScheduleSide `json:"homeTeam"`
	AwayTeam  ScheduleSide `json:"awayTeam"`
}

type ScheduleSide struct {
	Abbrev string `json:"abbrev"`
	Score  int    `json:"score"`
}

// Final reports whether the game has a settled result.
func (g *ScheduleGame) Final() bool {
	return g.GameState == "OFF" || g.GameState == "FINAL"
}

// RegularSeason reports whether the game counts for the pipeline. Preseason
// and playoff games are excluded from both training and scoring.
func (g *ScheduleGame) RegularSeason() bool {
	return g.GameType == 2
}

type scheduleResponse struct {
	Games []ScheduleGame `json:"games"`
}

// Schedule returns the team's full schedule for a season id such as "20252026".
func (c *Client) Schedule(ctx context.Context, season string) ([]ScheduleGame, error) {
	url := fmt.Sprintf("%s/club-schedule-season/%s/%s", c.baseURL, TeamAbbrev, season)
	var resp scheduleResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("nhl: schedule %s: %w", season, err)
	}
	c.logger.Debugw("Fetched schedule", "season", season, "games", len(resp.Games))
	return resp.Games, nil
}

// Standing is one team's line from the league standings.
type Standing struct {
	Wins         int
	Losses       int
	OTLosses     int
	Points       int
	GamesPlayed  int
	GoalsFor     int
	GoalsAgainst int
	L10Wins      int
}

// WinPct is wins over games played, 0 for an unplayed team.
func (s Standing) WinPct() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.GamesPlayed)
}

func (s Standing) GoalsPerGame() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.GoalsFor) / float64(s.GamesPlayed)
}

func (s Standing) GoalsAgainstPerGame() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.GoalsAgainst) / float64(s.GamesPlayed)
}

type standingsResponse struct {
	Standings []struct {
		TeamAbbrev struct {
			Default string `json:"default"`
		} `json:"teamAbbrev"`
		Wins        int `json:"wins"`
		Losses      int `json:"losses"`
		OTLosses    int `json:"otLosses"`
		Points      int `json:"points"`
		GamesPlayed int `json:"gamesPlayed"`
		GoalFor     int `json:"goalFor"`
		GoalAgainst int `json:"goalAgainst"`
		L10Wins     int `json:"l10Wins"`
	} `json:"standings"`
}

// Standings returns the league standings on a date (YYYY-MM-DD), keyed by
// team abbreviation.
func (c *Client) Standings(ctx context.Context, date string) (map[string]Standing, error) {
	url := fmt.Sprintf("%s/standings/%s", c.baseURL, date)
	var resp standingsResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("nhl: standings %s: %w", date, err)
	}

	standings := make(map[string]Standing, len(resp.Standings))
	for _, e := range resp.Standings {
		abbrev := e.TeamAbbrev.Default
		if abbrev == "" {
			continue
		}
		standings[abbrev] = Standing{
			Wins:         e.Wins,
			Losses:       e.Losses,
			OTLosses:     e.OTLosses,
			Points:       e.Points,
			GamesPlayed:  e.GamesPlayed,
			GoalsFor:     e.GoalFor,
			GoalsAgainst: e.GoalAgainst,
			L10Wins:      e.L10Wins,
		}
	}
	return standings, nil
}

// TeamStats is the merged advanced-stat line for one team: power play,
// penalty kill, shots and faceoffs from the summary endpoint, possession
// percentages from the percentages endpoint.
type TeamStats struct {
	PPPct           float64
	PKPct           float64
	ShotsPerGame    float64
	ShotsAgainstPG  float64
	FaceoffPct      float64
	GoalsForPerGame float64
	GoalsAgainstPG  float64

	CorsiPct     float64
	FenwickPct   float64
	PDO          float64
	SavePct      float64
	ShootingPct  float64
	ZoneStartPct float64
}

type summaryResponse struct {
	Data []struct {
		TeamFullName    string  `json:"teamFullName"`
		PowerPlayPct    float64 `json:"powerPlayPct"`
		PenaltyKillPct  float64 `json:"penaltyKillPct"`
		ShotsForPerGame float64 `json:"shotsForPerGame"`
		ShotsAgainstPG  float64 `json:"shotsAgainstPerGame"`
		FaceoffWinPct   float64 `json:"faceoffWinPct"`
		GoalsForPerGame float64 `json:"goalsForPerGame"`
		GoalsAgainstPG  float64 `json:"goalsAgainstPerGame"`
	} `json:"data"`
}

type percentagesResponse struct {
	Data []struct {
		TeamFullName        string  `json:"teamFullName"`
		SatPct              float64 `json:"satPct"`
		UsatPct             float64 `json:"usatPct"`
		ShootingPlusSavePct float64 `json:"shootingPlusSavePct5v5"`
		SavePct5v5          float64 `json:"savePct5v5"`
		ShootingPct5v5      float64 `json:"shootingPct5v5"`
		ZoneStartPct5v5     float64 `json:"zoneStartPct5v5"`
	} `json:"data"`
}

// AdvancedStats fetches the summary and percentages endpoints concurrently
// and merges them into one map keyed by team full name.
func (c *Client) AdvancedStats(ctx context.Context, season string) (map[string]TeamStats, error) {
	var (
		summary summaryResponse
		pct     percentagesResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		url := fmt.Sprintf("%s/summary?cayenneExp=seasonId=%s", c.statsBaseURL, season)
		return c.getJSON(gctx, url, &summary)
	})
	g.Go(func() error {
		url := fmt.Sprintf("%s/percentages?cayenneExp=seasonId=%s", c.statsBaseURL, season)
		return c.getJSON(gctx, url, &pct)
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("nhl: advanced stats %s: %w", season, err)
	}

	stats := make(map[string]TeamStats, len(summary.Data))
	for _, t := range summary.Data {
		if t.TeamFullName == "" {
			continue
		}
		stats[t.TeamFullName] = TeamStats{
			PPPct:           t.PowerPlayPct,
			PKPct:           t.PenaltyKillPct,
			ShotsPerGame:    t.ShotsForPerGame,
			ShotsAgainstPG:  t.ShotsAgainstPG,
			FaceoffPct:      t.FaceoffWinPct,
			GoalsForPerGame: t.GoalsForPerGame,
			GoalsAgainstPG:  t.GoalsAgainstPG,
		}
	}
	for _, t := range pct.Data {
		s, ok := stats[t.TeamFullName]
		if !ok {
			continue
		}
		s.CorsiPct = t.SatPct
		s.FenwickPct = t.UsatPct
		s.PDO = t.ShootingPlusSavePct
		s.SavePct = t.SavePct5v5
		s.ShootingPct = t.ShootingPct5v5
		s.ZoneStartPct = t.ZoneStartPct5v5
		stats[t.TeamFullName] = s
	}
	return stats, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode: %w", url, err)
	}
	return nil
}
