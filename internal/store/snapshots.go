package store

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lib/pq"

	"github.com/fortuna/themis/internal/boxscore"
	"github.com/fortuna/themis/internal/league"
)

// SnapshotRepository appends normalized player snapshots to the archive
// table. One row per player per pass.
type SnapshotRepository struct {
	db *Database
}

func NewSnapshotRepository(db *Database) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// SaveSnapshots inserts a pass's snapshots for one league inside a
// single transaction.
func (r *SnapshotRepository) SaveSnapshots(ctx context.Context, lg league.League, capturedAt time.Time, snapshots []boxscore.PlayerSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning snapshot transaction")
	}
	defer tx.Rollback()

	query := `
		INSERT INTO player_boxscores
			(league, game_id, captured_at, player_name, team, opponent,
			 game_status, starter, did_not_play, stat_keys, stat_values)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return errors.Wrap(err, "preparing snapshot insert")
	}
	defer stmt.Close()

	for _, snap := range snapshots {
		keys := make([]string, 0, len(snap.Rows))
		values := make([]string, 0, len(snap.Rows))
		for _, row := range snap.Rows {
			keys = append(keys, row.Key)
			values = append(values, row.Value)
		}

		_, err := stmt.ExecContext(ctx,
			lg.Slug, snap.GameID, capturedAt, snap.Name, snap.Team, snap.Opponent,
			string(snap.GameStatus), snap.Meta.Starter, snap.Meta.DidNotPlay,
			pq.Array(keys), pq.Array(values))
		if err != nil {
			return errors.Wrapf(err, "inserting snapshot for %s", snap.Name)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing snapshot transaction")
	}
	return nil
}
