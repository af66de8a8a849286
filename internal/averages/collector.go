package averages

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fortuna/themis/internal/boxscore"
	"github.com/fortuna/themis/internal/league"
	"github.com/fortuna/themis/internal/stats"
)

// MaxSamples caps how many recent games contribute to each average.
const MaxSamples = 10

// PlayerArchive supplies archived per-game player data.
type PlayerArchive interface {
	ListPlayerGames(ctx context.Context, lg league.League) ([]string, error)
	LoadPlayers(ctx context.Context, lg league.League, gameID string) ([]boxscore.PlayerSnapshot, error)
}

// Averages maps player name to stat name to rolling average.
type Averages map[string]map[string]float64

// Counting stats averaged directly from the resolved line.
var countingKeys = []string{
	"points", "rebounds", "assists", "steals", "blocks", "turnovers", "minutes",
}

// Shooting percentages derived from made-attempted pairs.
var shootingKeys = map[string]string{
	"fieldGoalsMade-fieldGoalsAttempted":                     "fgPct",
	"threePointFieldGoalsMade-threePointFieldGoalsAttempted": "threePtPct",
	"freeThrowsMade-freeThrowsAttempted":                     "ftPct",
}

// Collector computes rolling per-player averages from archived player
// documents. It reads what the reconciliation passes archived; it never
// touches the provider.
type Collector struct {
	archive PlayerArchive
	logger  *zap.Logger
}

func NewCollector(archive PlayerArchive, logger *zap.Logger) *Collector {
	return &Collector{archive: archive, logger: logger}
}

// Collect walks a league's archived games and averages each player's
// stats over their most recent MaxSamples appearances.
func (c *Collector) Collect(ctx context.Context, lg league.League) (Averages, error) {
	gameIDs, err := c.archive.ListPlayerGames(ctx, lg)
	if err != nil {
		return nil, errors.Wrapf(err, "listing archived games for %s", lg.Slug)
	}

	samples := make(map[string]map[string][]float64)
	for _, gameID := range gameIDs {
		players, err := c.archive.LoadPlayers(ctx, lg, gameID)
		if err != nil {
			c.logger.Warn("skipping unreadable archive entry",
				zap.String("league", lg.Slug),
				zap.String("game_id", gameID),
				zap.Error(err))
			continue
		}
		for _, player := range players {
			if player.Meta.DidNotPlay {
				continue
			}
			addSamples(samples, player)
		}
	}

	averages := make(Averages, len(samples))
	for name, perStat := range samples {
		averages[name] = make(map[string]float64, len(perStat))
		for stat, values := range perStat {
			averages[name][stat] = mean(values)
		}
	}
	return averages, nil
}

func addSamples(samples map[string]map[string][]float64, player boxscore.PlayerSnapshot) {
	line := stats.Resolve(player.Rows)

	byStat, ok := samples[player.Name]
	if !ok {
		byStat = make(map[string][]float64)
		samples[player.Name] = byStat
	}

	push := func(stat string, v float64) {
		values := append(byStat[stat], v)
		if len(values) > MaxSamples {
			values = values[len(values)-MaxSamples:]
		}
		byStat[stat] = values
	}

	for _, key := range countingKeys {
		if _, present := line[key]; present {
			push(key, float64(line.Int(key)))
		}
	}
	for key, stat := range shootingKeys {
		if _, present := line[key]; !present {
			continue
		}
		attempted := line.MadeAttempted(key, false)
		if attempted == 0 {
			continue
		}
		made := line.MadeAttempted(key, true)
		push(stat, float64(made)/float64(attempted))
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}
