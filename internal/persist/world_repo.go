package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type WorldRepo struct {
	db *DB
}

func NewWorldRepo(db *DB) *WorldRepo {
	return &WorldRepo{db: db}
}

// Save replaces the stored world with snap in a single transaction.
func (r *WorldRepo) Save(ctx context.Context, snap Snapshot) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("save begin: %w", err)
	}
	defer tx.Rollback(ctx)

	// components and regions cascade
	if _, err := tx.Exec(ctx, `DELETE FROM world_objects`); err != nil {
		return fmt.Errorf("clear world: %w", err)
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"world_objects"},
		[]string{"id", "ord", "type", "label", "stock"},
		pgx.CopyFromSlice(len(snap.Objects), func(i int) ([]any, error) {
			o := snap.Objects[i]
			return []any{o.ID, int32(i), o.Type, o.Label, o.Stock}, nil
		}),
	); err != nil {
		return fmt.Errorf("copy objects: %w", err)
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"object_components"},
		[]string{"object_id", "seq", "kind", "timed", "remaining"},
		pgx.CopyFromSlice(len(snap.Components), func(i int) ([]any, error) {
			c := snap.Components[i]
			return []any{c.ObjectID, c.Seq, c.Kind, c.Timed, c.Remaining}, nil
		}),
	); err != nil {
		return fmt.Errorf("copy components: %w", err)
	}

	for _, reg := range snap.Regions {
		if _, err := tx.Exec(ctx,
			`INSERT INTO world_regions (id, parent_id) VALUES ($1, $2)`,
			reg.ID, reg.ParentID,
		); err != nil {
			return fmt.Errorf("insert region %d: %w", reg.ID, err)
		}
	}

	return tx.Commit(ctx)
}

// Load reads the stored world, objects in saved registry order.
func (r *WorldRepo) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, type, label, stock FROM world_objects ORDER BY ord`)
	if err != nil {
		return snap, fmt.Errorf("query objects: %w", err)
	}
	snap.Objects, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (ObjectRow, error) {
		var o ObjectRow
		err := row.Scan(&o.ID, &o.Type, &o.Label, &o.Stock)
		return o, err
	})
	if err != nil {
		return snap, fmt.Errorf("scan objects: %w", err)
	}

	rows, err = r.db.Pool.Query(ctx,
		`SELECT object_id, seq, kind, timed, remaining FROM object_components ORDER BY object_id, seq`)
	if err != nil {
		return snap, fmt.Errorf("query components: %w", err)
	}
	snap.Components, err = pgx.CollectRows(rows, pgx.RowToStructByPos[ComponentRow])
	if err != nil {
		return snap, fmt.Errorf("scan components: %w", err)
	}

	rows, err = r.db.Pool.Query(ctx, `SELECT id, parent_id FROM world_regions ORDER BY id`)
	if err != nil {
		return snap, fmt.Errorf("query regions: %w", err)
	}
	snap.Regions, err = pgx.CollectRows(rows, pgx.RowToStructByPos[RegionRow])
	if err != nil {
		return snap, fmt.Errorf("scan regions: %w", err)
	}
	return snap, nil
}

// Count returns the number of stored objects.
func (r *WorldRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM world_objects`).Scan(&n)
	return n, err
}
