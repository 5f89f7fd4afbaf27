package nhl

import (
	"testing"
	"time"

	"github.com/EdgarPaulEDGE/leafs-predictor/internal/models"
)

func schedGame(id int64, date string, gameType int, state, home, away string, homeScore, awayScore int) ScheduleGame {
	return ScheduleGame{
		ID:        id,
		GameDate:  date,
		GameType:  gameType,
		GameState: state,
		HomeTeam:  ScheduleSide{Abbrev: home, Score: homeScore},
		AwayTeam:  ScheduleSide{Abbrev: away, Score: awayScore},
	}
}

func noStandings(string) map[string]Standing { return nil }

func TestParseGamesFiltersAndScores(t *testing.T) {
	schedule := []ScheduleGame{
		schedGame(1, "2025-09-25", 1, "OFF", "TOR", "MTL", 5, 2),  // preseason
		schedGame(2, "2025-10-08", 2, "OFF", "TOR", "MTL", 4, 2),  // home win
		schedGame(3, "2025-10-10", 2, "FINAL", "BOS", "TOR", 3, 1),// road loss
		schedGame(4, "2025-10-12", 2, "FUT", "TOR", "DET", 0, 0),  // not played yet
	}

	rows := ParseGames(schedule, noStandings, nil)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2 (preseason and future games dropped)", len(rows))
	}

	home := rows[0]
	if home.GameID != 2 || !home.IsHome || home.Opponent != "MTL" {
		t.Errorf("home game parsed wrong: %+v", home)
	}
	if home.TeamScore != 4 || home.OppScore != 2 || home.Result != models.ResultWin {
		t.Errorf("home score parsed wrong: %+v", home)
	}

	road := rows[1]
	if road.IsHome || road.Opponent != "BOS" {
		t.Errorf("road game parsed wrong: %+v", road)
	}
	// Scores flip to the team's perspective on the road.
	if road.TeamScore != 1 || road.OppScore != 3 || road.Result != models.ResultLoss {
		t.Errorf("road score parsed wrong: %+v", road)
	}
}

func TestParseGamesRestDays(t *testing.T) {
	schedule := []ScheduleGame{
		schedGame(1, "2025-10-08", 2, "OFF", "TOR", "MTL", 4, 2),
		schedGame(2, "2025-10-09", 2, "OFF", "BOS", "TOR", 3, 1), // back-to-back
		schedGame(3, "2025-10-12", 2, "OFF", "TOR", "DET", 2, 1),
		schedGame(4, "2025-10-30", 2, "OFF", "TOR", "CHI", 3, 0), // long break, capped
	}

	rows := ParseGames(schedule, noStandings, nil)
	want := []int{1, 1, 3, models.MaxRestDays}
	for i, w := range want {
		if rows[i].RestDays != w {
			t.Errorf("game %d rest days = %d, want %d", rows[i].GameID, rows[i].RestDays, w)
		}
	}
}

func TestParseGamesStandingsAndFallbacks(t *testing.T) {
	standings := map[string]Standing{
		"MTL": {Wins: 6, GamesPlayed: 10, GoalsFor: 35, GoalsAgainst: 28, Points: 13, L10Wins: 6},
		"TOR": {Wins: 7, GamesPlayed: 10, Points: 15},
	}
	schedule := []ScheduleGame{
		schedGame(1, "2025-11-01", 2, "OFF", "TOR", "MTL", 4, 2),
		schedGame(2, "2025-11-03", 2, "OFF", "TOR", "SEA", 1, 2), // SEA missing from standings
	}

	rows := ParseGames(schedule, func(string) map[string]Standing { return standings }, nil)

	vsMTL := rows[0]
	if vsMTL.OppWinPct != 0.6 || vsMTL.OppGoalsPerGame != 3.5 || vsMTL.OppPoints != 13 {
		t.Errorf("standings not applied: %+v", vsMTL)
	}
	if vsMTL.TeamStandingPoints != 15 {
		t.Errorf("team points = %d, want 15", vsMTL.TeamStandingPoints)
	}

	vsSEA := rows[1]
	if vsSEA.OppWinPct != fallbackWinPct || vsSEA.OppPoints != fallbackPoints || vsSEA.OppL10Wins != fallbackL10Wins {
		t.Errorf("missing opponent should take league-average fallbacks: %+v", vsSEA)
	}
}

func TestParseGamesStatsFallbacks(t *testing.T) {
	schedule := []ScheduleGame{
		schedGame(1, "2025-11-01", 2, "OFF", "TOR", "MTL", 4, 2),
	}
	rows := ParseGames(schedule, noStandings, nil)

	g := rows[0]
	if g.TeamPPPct != fallbackPPPct || g.TeamPKPct != fallbackPKPct {
		t.Errorf("special teams fallbacks missing: %+v", g)
	}
	if g.TeamSavePct != fallbackSavePct || g.TeamShootingPct != fallbackShootingPct {
		t.Errorf("percentage fallbacks missing: %+v", g)
	}
	if g.OppPDO != fallbackPDO || g.OppCorsiPct != fallbackCorsiPct {
		t.Errorf("opponent fallbacks missing: %+v", g)
	}
}

func TestSeason(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2025-10-15", "20252026"},
		{"2026-03-01", "20252026"},
		{"2026-07-31", "20252026"},
		{"2026-08-01", "20262027"},
	}
	for _, tt := range tests {
		d, err := time.Parse(models.DateLayout, tt.date)
		if err != nil {
			t.Fatal(err)
		}
		if got := Season(d); got != tt.want {
			t.Errorf("Season(%s) = %s, want %s", tt.date, got, tt.want)
		}
	}
}

func TestSnapshotDates(t *testing.T) {
	schedule := []ScheduleGame{
		schedGame(1, "2025-10-03", 2, "OFF", "TOR", "MTL", 1, 0), // day <= 7 -> 1st
		schedGame(2, "2025-10-09", 2, "OFF", "TOR", "BOS", 1, 0), // -> 15th
		schedGame(3, "2025-10-22", 2, "OFF", "TOR", "DET", 1, 0), // -> 15th, deduped
		schedGame(4, "2025-11-05", 2, "OFF", "TOR", "CHI", 1, 0), // -> Nov 1st
	}

	dates := snapshotDates(schedule)
	want := []string{"2025-10-01", "2025-10-15", "2025-11-01"}
	if len(dates) != len(want) {
		t.Fatalf("dates = %v, want %v", dates, want)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("dates[%d] = %s, want %s", i, dates[i], want[i])
		}
	}
}

func TestNearestSnapshot(t *testing.T) {
	oct1 := map[string]Standing{"TOR": {Points: 2}}
	oct15 := map[string]Standing{"TOR": {Points: 10}}
	snapshots := map[string]map[string]Standing{
		"2025-10-01": oct1,
		"2025-10-15": oct15,
	}

	if got := nearestSnapshot(snapshots, "2025-10-05")["TOR"].Points; got != 2 {
		t.Errorf("2025-10-05 nearest = %d points, want 2", got)
	}
	if got := nearestSnapshot(snapshots, "2025-10-12")["TOR"].Points; got != 10 {
		t.Errorf("2025-10-12 nearest = %d points, want 10", got)
	}
	if nearestSnapshot(nil, "2025-10-12") != nil {
		t.Error("no snapshots should yield nil")
	}
}

func TestFullName(t *testing.T) {
	if got := FullName("TOR"); got != "Toronto Maple Leafs" {
		t.Errorf("FullName(TOR) = %q", got)
	}
	if got := FullName("ZZZ"); got != "" {
		t.Errorf("FullName(ZZZ) = %q, want empty", got)
	}
}
