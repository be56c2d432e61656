package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/phrasemine/pkg/phrasemine/decide"
	"github.com/cognicore/phrasemine/pkg/phrasemine/internalerr"
	"github.com/cognicore/phrasemine/pkg/phrasemine/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
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

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	source TEXT,
	config TEXT,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	messages INTEGER DEFAULT 0,
	phrases INTEGER DEFAULT 0,
	failures INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS results (
	run_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	message_id TEXT,
	text TEXT NOT NULL,
	phrases TEXT NOT NULL,
	error TEXT,
	PRIMARY KEY(run_id, idx),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS score_records (
	run_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	pos INTEGER NOT NULL,
	phrase TEXT NOT NULL,
	semantic REAL NOT NULL,
	lexical REAL NOT NULL,
	combined REAL NOT NULL,
	accepted INTEGER NOT NULL,
	PRIMARY KEY(run_id, idx, pos),
	FOREIGN KEY(run_id, idx) REFERENCES results(run_id, idx) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS vocab_embeddings (
	model_id TEXT NOT NULL,
	entry TEXT NOT NULL,
	vector TEXT NOT NULL,
	PRIMARY KEY(model_id, entry)
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// CreateRun inserts a run, assigning an id and start time when missing
func (s *sqliteStore) CreateRun(ctx context.Context, r store.Run) (store.Run, error) {
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now().UTC()
	}
	if r.ID == "" {
		r.ID = store.NewRunID(r.StartedAt)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs(id, source, config, started_at)
		VALUES(?, ?, ?, ?)
	`, r.ID, r.Source, r.Config, r.StartedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return store.Run{}, fmt.Errorf("create run: %w", err)
	}
	return r, nil
}

// FinishRun records the final stats of a run
func (s *sqliteStore) FinishRun(ctx context.Context, id string, stats store.RunStats, finishedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, messages = ?, phrases = ?, failures = ?
		WHERE id = ?
	`, finishedAt.UTC().Format(time.RFC3339Nano), stats.Messages, stats.Phrases, stats.Failures, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return nil
}

const runColumns = `id, source, config, started_at, finished_at, messages, phrases, failures`

// GetRun returns a run by id
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return r, err
}

// ListRuns returns runs newest first; limit <= 0 returns all
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (store.Run, error) {
	var (
		r                 store.Run
		source, config    sql.NullString
		started, finished sql.NullString
	)
	if err := sc.Scan(&r.ID, &source, &config, &started, &finished,
		&r.Stats.Messages, &r.Stats.Phrases, &r.Stats.Failures); err != nil {
		return store.Run{}, err
	}
	r.Source = source.String
	r.Config = config.String
	if started.Valid {
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started.String)
	}
	if finished.Valid {
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
	}
	return r, nil
}

// SaveResults stores results of a run, replacing any with the same index
func (s *sqliteStore) SaveResults(ctx context.Context, runID string, results []store.MessageResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}

	for _, r := range results {
		phrases, err := json.Marshal(nonNil(r.Phrases))
		if err != nil {
			return err
		}
		// foreign_keys is per connection, so cascades are not relied on here
		if _, err := tx.ExecContext(ctx, `DELETE FROM score_records WHERE run_id = ? AND idx = ?`, runID, r.Index); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE run_id = ? AND idx = ?`, runID, r.Index); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO results(run_id, idx, message_id, text, phrases, error)
			VALUES(?, ?, ?, ?, ?, ?)
		`, runID, r.Index, r.MessageID, r.Text, string(phrases), r.Error); err != nil {
			return fmt.Errorf("insert result %d: %w", r.Index, err)
		}
		for pos, rec := range r.Records {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO score_records(run_id, idx, pos, phrase, semantic, lexical, combined, accepted)
				VALUES(?, ?, ?, ?, ?, ?, ?, ?)
			`, runID, r.Index, pos, rec.Phrase, rec.Semantic, rec.Lexical, rec.Combined, rec.Accepted); err != nil {
				return fmt.Errorf("insert score record: %w", err)
			}
		}
	}
	return tx.Commit()
}

// GetResults returns the results of a run ordered by message index
func (s *sqliteStore) GetResults(ctx context.Context, runID string) ([]store.MessageResult, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, message_id, text, phrases, error FROM results
		WHERE run_id = ? ORDER BY idx
	`, runID)
	if err != nil {
		return nil, err
	}
	var results []store.MessageResult
	pos := make(map[int]int)
	for rows.Next() {
		var (
			r                    store.MessageResult
			msgID, phrases, errs sql.NullString
		)
		if err := rows.Scan(&r.Index, &msgID, &r.Text, &phrases, &errs); err != nil {
			rows.Close()
			return nil, err
		}
		r.MessageID = msgID.String
		r.Error = errs.String
		if phrases.Valid && phrases.String != "" {
			if err := json.Unmarshal([]byte(phrases.String), &r.Phrases); err != nil {
				rows.Close()
				return nil, fmt.Errorf("decode phrases: %w", err)
			}
		}
		pos[r.Index] = len(results)
		results = append(results, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	recRows, err := s.db.QueryContext(ctx, `
		SELECT idx, phrase, semantic, lexical, combined, accepted FROM score_records
		WHERE run_id = ? ORDER BY idx, pos
	`, runID)
	if err != nil {
		return nil, err
	}
	defer recRows.Close()
	for recRows.Next() {
		var (
			idx int
			rec decide.ScoreRecord
		)
		if err := recRows.Scan(&idx, &rec.Phrase, &rec.Semantic, &rec.Lexical, &rec.Combined, &rec.Accepted); err != nil {
			return nil, err
		}
		if i, ok := pos[idx]; ok {
			results[i].Records = append(results[i].Records, rec)
		}
	}
	return results, recRows.Err()
}

// SaveVocabEmbeddings caches one vector per entry for modelID
func (s *sqliteStore) SaveVocabEmbeddings(ctx context.Context, modelID string, entries []string, vecs [][]float64) error {
	if len(entries) != len(vecs) {
		return fmt.Errorf("%w: %d vectors for %d entries", internalerr.ErrInvalidInput, len(vecs), len(entries))
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vocab_embeddings(model_id, entry, vector) VALUES(?, ?, ?)
		ON CONFLICT(model_id, entry) DO UPDATE SET vector = excluded.vector
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range entries {
		data, err := json.Marshal(vecs[i])
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, modelID, e, string(data)); err != nil {
			return fmt.Errorf("save embedding for %q: %w", e, err)
		}
	}
	return tx.Commit()
}

// GetVocabEmbeddings returns cached vectors in entry order; ok is false
// unless every entry is cached
func (s *sqliteStore) GetVocabEmbeddings(ctx context.Context, modelID string, entries []string) ([][]float64, bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT entry, vector FROM vocab_embeddings WHERE model_id = ?`, modelID)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	cached := make(map[string]string)
	for rows.Next() {
		var entry, vector string
		if err := rows.Scan(&entry, &vector); err != nil {
			return nil, false, err
		}
		cached[entry] = vector
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	out := make([][]float64, len(entries))
	for i, e := range entries {
		data, ok := cached[e]
		if !ok {
			return nil, false, nil
		}
		if err := json.Unmarshal([]byte(data), &out[i]); err != nil {
			return nil, false, fmt.Errorf("decode embedding for %q: %w", e, err)
		}
	}
	return out, true, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
