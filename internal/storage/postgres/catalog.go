package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/artifactsbot/internal/game/catalog"
)

const (
	kindItem    = "item"
	kindMonster = "monster"
)

// ErrSnapshotNotFound is returned when no catalog snapshot has been saved.
var ErrSnapshotNotFound = errors.New("catalog snapshot not found")

// CatalogRepository stores the most recent catalog fetched from the game API
// so the bot can start while the API is unreachable.
type CatalogRepository struct {
	db *pgxpool.Pool
}

// NewCatalogRepository creates a CatalogRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool with migrations applied.
func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// SaveSnapshot replaces the stored snapshot with reg in a single transaction.
//
// Precondition: reg must be non-nil.
// Postcondition: a subsequent LoadSnapshot returns a registry equal to reg.
func (r *CatalogRepository) SaveSnapshot(ctx context.Context, reg *catalog.Registry) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning snapshot transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM catalog_entries`); err != nil {
		return fmt.Errorf("clearing catalog entries: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO catalog_meta (id, version, saved_at) VALUES (1, $1, NOW())
		 ON CONFLICT (id) DO UPDATE SET version = EXCLUDED.version, saved_at = EXCLUDED.saved_at`,
		reg.Version(),
	); err != nil {
		return fmt.Errorf("saving catalog version: %w", err)
	}

	batch := &pgx.Batch{}
	const insert = `INSERT INTO catalog_entries (kind, code, body) VALUES ($1, $2, $3)`
	for _, it := range reg.Items() {
		body, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("encoding item %q: %w", it.Code, err)
		}
		batch.Queue(insert, kindItem, it.Code, body)
	}
	for _, m := range reg.Monsters() {
		body, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encoding monster %q: %w", m.Code, err)
		}
		batch.Queue(insert, kindMonster, m.Code, body)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting catalog entries: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot rebuilds the stored catalog.
//
// Postcondition: returns ErrSnapshotNotFound when nothing has been saved.
func (r *CatalogRepository) LoadSnapshot(ctx context.Context) (*catalog.Registry, error) {
	version, _, err := r.SnapshotInfo(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT kind, code, body FROM catalog_entries ORDER BY kind, code`)
	if err != nil {
		return nil, fmt.Errorf("querying catalog entries: %w", err)
	}
	defer rows.Close()

	var items []catalog.Item
	var monsters []catalog.Monster
	for rows.Next() {
		var kind, code string
		var body []byte
		if err := rows.Scan(&kind, &code, &body); err != nil {
			return nil, fmt.Errorf("scanning catalog entry: %w", err)
		}
		switch kind {
		case kindItem:
			var it catalog.Item
			if err := json.Unmarshal(body, &it); err != nil {
				return nil, fmt.Errorf("decoding item %q: %w", code, err)
			}
			items = append(items, it)
		case kindMonster:
			var m catalog.Monster
			if err := json.Unmarshal(body, &m); err != nil {
				return nil, fmt.Errorf("decoding monster %q: %w", code, err)
			}
			monsters = append(monsters, m)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catalog entries: %w", err)
	}

	reg, err := catalog.NewRegistry(version, items, monsters)
	if err != nil {
		return nil, fmt.Errorf("rebuilding catalog: %w", err)
	}
	return reg, nil
}

// SnapshotInfo returns the stored server version and when it was saved.
//
// Postcondition: returns ErrSnapshotNotFound when nothing has been saved.
func (r *CatalogRepository) SnapshotInfo(ctx context.Context) (string, time.Time, error) {
	var version string
	var savedAt time.Time
	err := r.db.QueryRow(ctx, `SELECT version, saved_at FROM catalog_meta WHERE id = 1`).Scan(&version, &savedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, ErrSnapshotNotFound
		}
		return "", time.Time{}, fmt.Errorf("querying catalog version: %w", err)
	}
	return version, savedAt, nil
}
