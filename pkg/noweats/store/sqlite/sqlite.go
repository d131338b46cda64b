package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/noweats/pkg/noweats/counts"
	"github.com/cognicore/noweats/pkg/noweats/internalerr"
	"github.com/cognicore/noweats/pkg/noweats/langmodel"
	"github.com/cognicore/noweats/pkg/noweats/store"
)

// feature kinds in lm_features
const (
	kindPrefix = "prefix"
	kindSuffix = "suffix"
	kindBag    = "bag"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// schema if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", internalerr.ErrStoreUnavailable, path, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	stats TEXT
);

CREATE TABLE IF NOT EXISTS phrase_counts (
	run_id TEXT NOT NULL,
	phrase TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY(run_id, phrase),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS merged_counts (
	run_id TEXT NOT NULL,
	phrase TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY(run_id, phrase),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS rankings (
	run_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	phrase TEXT NOT NULL,
	PRIMARY KEY(run_id, position),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS lm_models (
	name TEXT PRIMARY KEY,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS lm_features (
	model TEXT NOT NULL,
	kind TEXT NOT NULL,
	key TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY(model, kind, key),
	FOREIGN KEY(model) REFERENCES lm_models(name) ON DELETE CASCADE
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun inserts or replaces a run and its tables.
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("save run: empty id: %w", internalerr.ErrInvalidInput)
	}
	statsJSON, err := json.Marshal(r.Stats)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO runs (id, created_at, stats)
VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	created_at=excluded.created_at,
	stats=excluded.stats;
`
	if _, err := tx.ExecContext(ctx, stmt, r.ID, r.CreatedAt.UTC().Format(time.RFC3339Nano), string(statsJSON)); err != nil {
		return err
	}

	if err := replaceCounts(ctx, tx, "phrase_counts", r.ID, r.Counts); err != nil {
		return err
	}
	if err := replaceCounts(ctx, tx, "merged_counts", r.ID, r.Merged); err != nil {
		return err
	}
	if err := replaceRanking(ctx, tx, r.ID, r.Ranking); err != nil {
		return err
	}

	return tx.Commit()
}

// table is one of the fixed count tables, never user input.
func replaceCounts(ctx context.Context, tx *sql.Tx, table, runID string, c counts.Counts) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE run_id=?`, runID); err != nil {
		return err
	}
	if len(c) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+table+` (run_id, phrase, count) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for phrase, n := range c {
		if _, err := stmt.ExecContext(ctx, runID, phrase, n); err != nil {
			return err
		}
	}
	return nil
}

func replaceRanking(ctx context.Context, tx *sql.Tx, runID string, ranking []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM rankings WHERE run_id=?`, runID); err != nil {
		return err
	}
	for i, phrase := range ranking {
		if _, err := tx.ExecContext(ctx, `INSERT INTO rankings (run_id, position, phrase) VALUES (?, ?, ?)`, runID, i, phrase); err != nil {
			return err
		}
	}
	return nil
}

// GetRun loads a run by ID.
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	summary, err := s.loadSummary(ctx, `SELECT id, created_at, stats FROM runs WHERE id=?`, id)
	if err != nil {
		return store.Run{}, err
	}
	return s.loadRun(ctx, summary)
}

// LatestRun loads the most recently created run.
func (s *sqliteStore) LatestRun(ctx context.Context) (store.Run, error) {
	summary, err := s.loadSummary(ctx, `SELECT id, created_at, stats FROM runs ORDER BY id DESC LIMIT 1`)
	if err != nil {
		return store.Run{}, err
	}
	return s.loadRun(ctx, summary)
}

// ListRuns returns run summaries, newest first.
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at, stats FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.RunSummary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (store.RunSummary, error) {
	var (
		summary   store.RunSummary
		createdAt string
		statsJSON sql.NullString
	)
	if err := row.Scan(&summary.ID, &createdAt, &statsJSON); err != nil {
		return store.RunSummary{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return store.RunSummary{}, fmt.Errorf("run %s: bad created_at %q: %w", summary.ID, createdAt, err)
	}
	summary.CreatedAt = ts
	if statsJSON.Valid && statsJSON.String != "" {
		if err := json.Unmarshal([]byte(statsJSON.String), &summary.Stats); err != nil {
			return store.RunSummary{}, fmt.Errorf("run %s: bad stats: %w", summary.ID, err)
		}
	}
	return summary, nil
}

func (s *sqliteStore) loadSummary(ctx context.Context, query string, args ...any) (store.RunSummary, error) {
	summary, err := scanSummary(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return store.RunSummary{}, fmt.Errorf("run: %w", internalerr.ErrNotFound)
	}
	return summary, err
}

func (s *sqliteStore) loadRun(ctx context.Context, summary store.RunSummary) (store.Run, error) {
	r := store.Run{ID: summary.ID, CreatedAt: summary.CreatedAt, Stats: summary.Stats}

	var err error
	if r.Counts, err = s.loadCounts(ctx, "phrase_counts", r.ID); err != nil {
		return store.Run{}, err
	}
	if r.Merged, err = s.loadCounts(ctx, "merged_counts", r.ID); err != nil {
		return store.Run{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT phrase FROM rankings WHERE run_id=? ORDER BY position`, r.ID)
	if err != nil {
		return store.Run{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var phrase string
		if err := rows.Scan(&phrase); err != nil {
			return store.Run{}, err
		}
		r.Ranking = append(r.Ranking, phrase)
	}
	return r, rows.Err()
}

func (s *sqliteStore) loadCounts(ctx context.Context, table, runID string) (counts.Counts, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT phrase, count FROM `+table+` WHERE run_id=?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	c := counts.New()
	for rows.Next() {
		var (
			phrase string
			n      int
		)
		if err := rows.Scan(&phrase, &n); err != nil {
			return nil, err
		}
		c[phrase] = n
	}
	return c, rows.Err()
}

// SaveModel replaces the stored features of the named model.
func (s *sqliteStore) SaveModel(ctx context.Context, name string, f langmodel.Features) error {
	if name == "" {
		return fmt.Errorf("save model: empty name: %w", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const upsert = `
INSERT INTO lm_models (name, updated_at) VALUES (?, ?)
ON CONFLICT(name) DO UPDATE SET updated_at=excluded.updated_at;
`
	if _, err := tx.ExecContext(ctx, upsert, name, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM lm_features WHERE model=?`, name); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO lm_features (model, kind, key, count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for kind, m := range map[string]map[string]int64{
		kindPrefix: f.Prefixes,
		kindSuffix: f.Suffixes,
		kindBag:    f.Bags,
	} {
		for key, n := range m {
			if _, err := stmt.ExecContext(ctx, name, kind, key, n); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// LoadModel returns the stored features of the named model.
func (s *sqliteStore) LoadModel(ctx context.Context, name string) (langmodel.Features, error) {
	var updated string
	err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM lm_models WHERE name=?`, name).Scan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return langmodel.Features{}, fmt.Errorf("model %q: %w", name, internalerr.ErrNotFound)
	}
	if err != nil {
		return langmodel.Features{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT kind, key, count FROM lm_features WHERE model=?`, name)
	if err != nil {
		return langmodel.Features{}, err
	}
	defer rows.Close()

	f := langmodel.Features{
		Prefixes: make(map[string]int64),
		Suffixes: make(map[string]int64),
		Bags:     make(map[string]int64),
	}
	for rows.Next() {
		var (
			kind, key string
			n         int64
		)
		if err := rows.Scan(&kind, &key, &n); err != nil {
			return langmodel.Features{}, err
		}
		switch kind {
		case kindPrefix:
			f.Prefixes[key] = n
		case kindSuffix:
			f.Suffixes[key] = n
		case kindBag:
			f.Bags[key] = n
		}
	}
	return f, rows.Err()
}
