package nhl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/EdgarPaulEDGE/leafs-predictor/internal/models"
	"github.com/EdgarPaulEDGE/leafs-predictor/internal/worker"
)

// Backfiller rebuilds the historical game log across whole seasons.
// Standings are not fetched per game date; that would be one request per
// game. Instead the backfill samples two snapshots per month (the 1st and
// the 15th) and assigns each game the snapshot nearest its date. Opponent
// strength drifts slowly enough that a half-month-old snapshot is fine.
type Backfiller struct {
	client *Client
	pool   *worker.Pool
	logger *zap.SugaredLogger
}

func NewBackfiller(client *Client, pool *worker.Pool, logger *zap.Logger) *Backfiller {
	return &Backfiller{client: client, pool: pool, logger: logger.Sugar()}
}

// SeasonGames fetches and parses all completed regular-season games of one
// season, with sampled standings snapshots attached.
func (b *Backfiller) SeasonGames(ctx context.Context, season string) ([]models.HistoricalGame, error) {
	schedule, err := b.client.Schedule(ctx, season)
	if err != nil {
		return nil, err
	}
	stats, err := b.client.AdvancedStats(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("nhl: backfill %s: %w", season, err)
	}

	snapshots, err := b.fetchSnapshots(ctx, schedule)
	if err != nil {
		return nil, fmt.Errorf("nhl: backfill %s: %w", season, err)
	}

	standingsFor := func(date string) map[string]Standing {
		return nearestSnapshot(snapshots, date)
	}
	rows := ParseGames(schedule, standingsFor, stats)
	b.logger.Infow("Backfilled season", "season", season, "games", len(rows), "snapshots", len(snapshots))
	return rows, nil
}

// fetchSnapshots fetches the sampled standings dates through the pool.
// Individual snapshot failures are tolerated; the affected games fall back
// to the nearest successful snapshot or to league-average defaults.
func (b *Backfiller) fetchSnapshots(ctx context.Context, schedule []ScheduleGame) (map[string]map[string]Standing, error) {
	dates := snapshotDates(schedule)

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		snapshots = make(map[string]map[string]Standing, len(dates))
	)
	for _, date := range dates {
		date := date
		wg.Add(1)
		ok := b.pool.Enqueue(func(ctx context.Context) error {
			defer wg.Done()
			standings, err := b.client.Standings(ctx, date)
			if err != nil {
				return fmt.Errorf("snapshot %s: %w", date, err)
			}
			mu.Lock()
			snapshots[date] = standings
			mu.Unlock()
			return nil
		})
		if !ok {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("nhl: fetch pool rejected snapshot %s", date)
		}
	}
	wg.Wait()
	return snapshots, nil
}

// snapshotDates returns the distinct sampled dates covering the schedule:
// game days in the first week of a month map to the 1st, the rest to the 15th.
func snapshotDates(schedule []ScheduleGame) []string {
	seen := make(map[string]bool)
	var dates []string
	for i := range schedule {
		d, err := time.Parse(models.DateLayout, schedule[i].GameDate)
		if err != nil {
			continue
		}
		day := 15
		if d.Day() <= 7 {
			day = 1
		}
		key := time.Date(d.Year(), d.Month(), day, 0, 0, 0, 0, time.UTC).Format(models.DateLayout)
		if !seen[key] {
			seen[key] = true
			dates = append(dates, key)
		}
	}
	return dates
}

// nearestSnapshot picks the fetched snapshot closest to date, or nil when
// none succeeded.
func nearestSnapshot(snapshots map[string]map[string]Standing, date string) map[string]Standing {
	target, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return nil
	}

	var (
		best     map[string]Standing
		bestDiff time.Duration
	)
	for key, standings := range snapshots {
		d, err := time.Parse(models.DateLayout, key)
		if err != nil {
			continue
		}
		diff := target.Sub(d)
		if diff < 0 {
			diff = -diff
		}
		if best == nil || diff < bestDiff {
			best = standings
			bestDiff = diff
		}
	}
	return best
}
