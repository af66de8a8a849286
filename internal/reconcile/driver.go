package reconcile

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fortuna/themis/internal/backend"
	"github.com/fortuna/themis/internal/boxscore"
	"github.com/fortuna/themis/internal/league"
	"github.com/fortuna/themis/internal/metrics"
	"github.com/fortuna/themis/internal/stats"
)

// ErrPassInProgress is returned when a pass is requested while another
// is still running. Overlapping passes race on event-store writes, so
// the newer request is skipped outright.
var ErrPassInProgress = errors.New("reconciliation pass already running")

// Provider supplies raw scoreboard and box-score documents.
type Provider interface {
	FetchScoreboard(ctx context.Context, lg league.League, date time.Time) (map[string]interface{}, error)
	FetchBoxscore(ctx context.Context, lg league.League, gameID string) (map[string]interface{}, error)
}

// EventStore is the betting-event backend.
type EventStore interface {
	ListOpenEvents(ctx context.Context, lg league.League) ([]backend.Event, error)
	SubmitBatch(ctx context.Context, mutations []backend.Mutation) error
}

// Archiver receives raw documents and normalized players for archival.
// Archival is best effort and never blocks or fails a pass.
type Archiver interface {
	ArchiveGame(ctx context.Context, lg league.League, gameID string, doc map[string]interface{}, players []boxscore.PlayerSnapshot) error
}

// SnapshotStore persists normalized snapshots per pass, also best
// effort.
type SnapshotStore interface {
	SaveSnapshots(ctx context.Context, lg league.League, capturedAt time.Time, snapshots []boxscore.PlayerSnapshot) error
}

// LeagueResult summarizes one league's share of a pass.
type LeagueResult struct {
	Status    string   `json:"status"`
	GameCount int      `json:"game_count"`
	GameIDs   []string `json:"game_ids"`
	Mutations int      `json:"mutations"`
	Error     string   `json:"error,omitempty"`
}

// PassSummary is the structured result of one full reconciliation pass.
type PassSummary struct {
	StartedAt  time.Time               `json:"started_at"`
	FinishedAt time.Time               `json:"finished_at"`
	Leagues    map[string]LeagueResult `json:"leagues"`
}

const (
	statusSuccess = "success"
	statusError   = "error"
)

// DriverConfig wires the driver's collaborators. Archive and Snapshots
// are optional.
type DriverConfig struct {
	Provider       Provider
	Events         EventStore
	Leagues        []league.League
	MatchThreshold int
	Archive        Archiver
	Snapshots      SnapshotStore
	Logger         *zap.Logger
}

// Driver runs reconciliation passes: fetch, normalize, match, decide,
// submit. Leagues and games are processed strictly sequentially.
type Driver struct {
	provider  Provider
	events    EventStore
	leagues   []league.League
	matcher   *Matcher
	archive   Archiver
	snapshots SnapshotStore
	logger    *zap.Logger

	running atomic.Bool
}

func NewDriver(cfg DriverConfig) *Driver {
	leagues := cfg.Leagues
	if len(leagues) == 0 {
		leagues = league.All
	}
	return &Driver{
		provider:  cfg.Provider,
		events:    cfg.Events,
		leagues:   leagues,
		matcher:   NewMatcher(cfg.MatchThreshold, cfg.Logger),
		archive:   cfg.Archive,
		snapshots: cfg.Snapshots,
		logger:    cfg.Logger,
	}
}

// Running reports whether a pass is currently in flight.
func (d *Driver) Running() bool {
	return d.running.Load()
}

// Run executes one pass at the given reference time. A second Run while
// one is in flight returns ErrPassInProgress without touching anything.
// Per-league failures are recorded in the summary, not propagated.
func (d *Driver) Run(ctx context.Context, ref time.Time) (PassSummary, error) {
	if !d.running.CompareAndSwap(false, true) {
		metrics.PassesSkipped.Inc()
		return PassSummary{}, ErrPassInProgress
	}
	defer d.running.Store(false)

	metrics.PassesTotal.Inc()
	summary := PassSummary{
		StartedAt: time.Now().UTC(),
		Leagues:   make(map[string]LeagueResult, len(d.leagues)),
	}

	for _, lg := range d.leagues {
		result := d.runLeague(ctx, lg, ref)
		summary.Leagues[lg.Slug] = result
		if result.Status != statusSuccess {
			d.logger.Error("league pass failed",
				zap.String("league", lg.Slug),
				zap.String("error", result.Error))
		}
	}

	summary.FinishedAt = time.Now().UTC()
	metrics.LastPassDuration.Set(summary.FinishedAt.Sub(summary.StartedAt).Seconds())
	return summary, nil
}

func (d *Driver) runLeague(ctx context.Context, lg league.League, ref time.Time) LeagueResult {
	normalizer := boxscore.ForLeague(lg, d.logger)

	games, slateDate, err := d.resolveGames(ctx, lg, ref)
	if err != nil {
		return LeagueResult{Status: statusError, Error: err.Error()}
	}

	result := LeagueResult{
		Status:    statusSuccess,
		GameCount: len(games),
		GameIDs:   boxscore.GameIDs(games),
	}
	if len(games) == 0 {
		return result
	}

	set := d.collectSnapshots(ctx, lg, normalizer, games, slateDate, ref)

	events, err := d.events.ListOpenEvents(ctx, lg)
	if err != nil {
		result.Status = statusError
		result.Error = err.Error()
		return result
	}

	mutations := d.decide(lg, set, events, ref)
	result.Mutations = len(mutations)

	if err := d.events.SubmitBatch(ctx, mutations); err != nil {
		metrics.BatchFailures.WithLabelValues(lg.Slug).Inc()
		result.Status = statusError
		result.Error = err.Error()
		return result
	}
	for _, m := range mutations {
		metrics.MutationsSubmitted.WithLabelValues(lg.Slug, string(m.Action)).Inc()
	}
	return result
}

// collectSnapshots fetches and normalizes every game, accumulating one
// player map for the league. Individual game failures are logged and
// skipped; the game's status comes from a per-pass index, never from
// state carried across passes. The status window is anchored at the
// slate date the scoreboard was actually fetched for: a shifted or
// forward-searched slate holds games dated on that slate, not on ref.
func (d *Driver) collectSnapshots(ctx context.Context, lg league.League, normalizer boxscore.Normalizer, games []boxscore.GameRecord, slateDate, ref time.Time) SnapshotSet {
	set := make(SnapshotSet)
	var captured []boxscore.PlayerSnapshot

	for _, game := range games {
		doc, err := d.provider.FetchBoxscore(ctx, lg, game.ID)
		if err != nil {
			metrics.FetchErrors.WithLabelValues(lg.Slug).Inc()
			d.logger.Warn("box-score fetch failed",
				zap.String("league", lg.Slug),
				zap.String("game_id", game.ID),
				zap.Error(err))
			continue
		}
		metrics.GamesFetched.WithLabelValues(lg.Slug).Inc()

		statusIndex := boxscore.StatusIndex(normalizer, doc, slateDate, lg)
		status, ok := statusIndex[game.ID]
		if !ok {
			status = boxscore.StatusScheduled
		}

		snapshots, err := normalizer.Normalize(doc)
		if err != nil {
			if errors.Is(err, boxscore.ErrNotAvailable) {
				d.logger.Debug("box score not yet available",
					zap.String("league", lg.Slug),
					zap.String("game_id", game.ID))
			} else {
				d.logger.Warn("box-score normalization failed",
					zap.String("league", lg.Slug),
					zap.String("game_id", game.ID),
					zap.Error(err))
			}
			continue
		}

		for i := range snapshots {
			snapshots[i].GameID = game.ID
			snapshots[i].GameStatus = status
			set.Add(snapshots[i], stats.Resolve(snapshots[i].Rows))
		}
		captured = append(captured, snapshots...)

		if d.archive != nil {
			if err := d.archive.ArchiveGame(ctx, lg, game.ID, doc, snapshots); err != nil {
				d.logger.Warn("archival failed",
					zap.String("league", lg.Slug),
					zap.String("game_id", game.ID),
					zap.Error(err))
			}
		}
	}

	if d.snapshots != nil && len(captured) > 0 {
		if err := d.snapshots.SaveSnapshots(ctx, lg, ref, captured); err != nil {
			d.logger.Warn("snapshot store write failed",
				zap.String("league", lg.Slug),
				zap.Error(err))
		}
	}
	return set
}

// decide matches every open event against the snapshot set and collects
// the resulting mutations.
func (d *Driver) decide(lg league.League, set SnapshotSet, events []backend.Event, ref time.Time) []backend.Mutation {
	var mutations []backend.Mutation
	for _, event := range events {
		if event.IsComplete {
			continue
		}
		if event.LeagueID != 0 && event.LeagueID != lg.ID {
			continue
		}

		ps, found := d.matcher.Find(set, event.PlayerName)
		if !found {
			if m := DecideNotFound(event, ref); m != nil {
				d.logger.Info("marking player did-not-play",
					zap.Int("event_id", event.ID),
					zap.String("player", event.PlayerName))
				mutations = append(mutations, *m)
			}
			continue
		}

		expr, ok := stats.ResolveStatType(lg, event.StatType)
		if !ok {
			d.logger.Warn("unrecognized stat type",
				zap.Int("event_id", event.ID),
				zap.String("stat_type", event.StatType))
			continue
		}

		value, err := expr.Evaluate(ps.Line)
		if err != nil {
			d.logger.Warn("stat evaluation failed",
				zap.Int("event_id", event.ID),
				zap.String("stat_type", event.StatType),
				zap.Error(err))
			continue
		}

		if m := Decide(event, ps.Snapshot.GameStatus, value); m != nil {
			mutations = append(mutations, *m)
		}
	}
	return mutations
}

var pacific = func() *time.Location {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		return time.UTC
	}
	return loc
}()

// resolveGames picks the scoreboard date for a league and returns its
// games along with the slate date actually used. College basketball
// slates roll over on Pacific time, so the reference date is shifted
// back a day in that zone. Football scans forward day by day when the
// reference date is empty. The returned slate date anchors the status
// window, so stale and placeholder entries are judged against the slate
// the games belong to.
func (d *Driver) resolveGames(ctx context.Context, lg league.League, ref time.Time) ([]boxscore.GameRecord, time.Time, error) {
	base := ref
	if lg.PacificDateShift {
		base = ref.In(pacific).AddDate(0, 0, -1)
	}

	attempts := 1
	if lg.SearchForwardDays > 0 {
		attempts = lg.SearchForwardDays
	}

	for offset := 0; offset < attempts; offset++ {
		date := base.AddDate(0, 0, offset)
		doc, err := d.provider.FetchScoreboard(ctx, lg, date)
		if err != nil {
			return nil, base, errors.Wrapf(err, "fetching %s scoreboard", lg.Slug)
		}
		if games := boxscore.ParseScoreboard(doc, lg); len(games) > 0 {
			return games, date, nil
		}
	}
	return nil, base, nil
}
