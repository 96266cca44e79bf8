// Package sqlrepo is a repository backed by a SQLite database.
package sqlrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/Aman-CERP/dorindex/internal/errors"
	"github.com/Aman-CERP/dorindex/internal/model"
	"github.com/Aman-CERP/dorindex/internal/repository"
)

var (
	_ repository.Repository = (*Store)(nil)
	_ repository.Lister     = (*Store)(nil)
)

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS records (
	id         TEXT PRIMARY KEY,
	type       TEXT NOT NULL,
	version    INTEGER NOT NULL,
	body       TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS administrative_tags (
	record_id TEXT NOT NULL,
	position  INTEGER NOT NULL,
	tag       TEXT NOT NULL,
	PRIMARY KEY (record_id, position)
);

-- A row with destination NULL marks an object whose directive list was
-- explicitly set to empty.
CREATE TABLE IF NOT EXISTS release_tags (
	record_id   TEXT NOT NULL,
	position    INTEGER NOT NULL,
	who         TEXT,
	what        TEXT,
	released_at TEXT,
	destination TEXT,
	release     INTEGER,
	PRIMARY KEY (record_id, position)
);

CREATE TABLE IF NOT EXISTS workflow_status (
	record_id          TEXT PRIMARY KEY,
	display            TEXT NOT NULL,
	display_simplified TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS workflow_milestones (
	record_id TEXT NOT NULL,
	position  INTEGER NOT NULL,
	name      TEXT NOT NULL,
	at        TEXT NOT NULL,
	version   INTEGER NOT NULL,
	PRIMARY KEY (record_id, position)
);

CREATE TABLE IF NOT EXISTS workflow_processes (
	record_id     TEXT NOT NULL,
	workflow      TEXT NOT NULL,
	wf_position   INTEGER NOT NULL,
	position      INTEGER NOT NULL,
	name          TEXT,
	status        TEXT,
	error_message TEXT,
	lifecycle     TEXT,
	PRIMARY KEY (record_id, wf_position, position)
);

INSERT OR IGNORE INTO schema_version (version) VALUES (1);
`

// Store implements repository.Repository on SQLite.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	closed bool
}

// Open opens (creating if needed) the database at path. An empty path
// opens an in-memory database.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfigInvalid, fmt.Errorf("create directory %s: %w", dir, err))
		}
		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, fmt.Errorf("open database: %w", err))
	}

	// Single writer; an in-memory database also needs the one connection
	// kept alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(errors.ErrCodeConfigInvalid, fmt.Errorf("set pragma: %w", err))
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, fmt.Errorf("initialize schema: %w", err))
	}

	return &Store{db: db, path: path}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// PutRecord stores or replaces rec.
func (s *Store) PutRecord(ctx context.Context, rec *model.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return errors.ValidationError("encode record", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (id, type, version, body, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type, version = excluded.version,
			body = excluded.body, updated_at = excluded.updated_at`,
		rec.ExternalIdentifier, rec.Type, rec.Version, string(body), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return errors.InternalError("store record", err).WithDetail("id", rec.ExternalIdentifier)
	}
	return nil
}

// PutTags replaces the administrative tags of id.
func (s *Store) PutTags(ctx context.Context, id string, tags []string) error {
	return s.replace(ctx, id, "administrative_tags", func(tx *sql.Tx) error {
		for i, tag := range tags {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO administrative_tags (record_id, position, tag) VALUES (?, ?, ?)`, id, i, tag); err != nil {
				return err
			}
		}
		return nil
	})
}

// PutReleaseTags replaces the release directives of id. An empty list
// overrides any directives carried on the record.
func (s *Store) PutReleaseTags(ctx context.Context, id string, tags []model.ReleaseTag) error {
	return s.replace(ctx, id, "release_tags", func(tx *sql.Tx) error {
		if len(tags) == 0 {
			_, err := tx.ExecContext(ctx, `INSERT INTO release_tags (record_id, position) VALUES (?, 0)`, id)
			return err
		}
		for i, tag := range tags {
			var at sql.NullString
			if tag.Date != nil {
				at = sql.NullString{String: tag.Date.UTC().Format(time.RFC3339Nano), Valid: true}
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO release_tags (record_id, position, who, what, released_at, destination, release)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				id, i, tag.Who, tag.What, at, tag.To, tag.Release); err != nil {
				return err
			}
		}
		return nil
	})
}

// PutWorkflow replaces the workflow state of id.
func (s *Store) PutWorkflow(ctx context.Context, id string, state *model.WorkflowState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.InternalError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"workflow_status", "workflow_milestones", "workflow_processes"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE record_id = ?", id); err != nil {
			return errors.InternalError("clear "+table, err).WithDetail("id", id)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO workflow_status (record_id, display, display_simplified) VALUES (?, ?, ?)`,
		id, state.Display, state.DisplaySimplified); err != nil {
		return errors.InternalError("store workflow status", err).WithDetail("id", id)
	}
	for i, m := range state.Milestones {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO workflow_milestones (record_id, position, name, at, version) VALUES (?, ?, ?, ?, ?)`,
			id, i, m.Name, m.At.UTC().Format(time.RFC3339Nano), m.Version); err != nil {
			return errors.InternalError("store milestone", err).WithDetail("id", id)
		}
	}
	for w, wf := range state.Workflows {
		// A workflow without processes is kept as a row with a NULL name.
		if len(wf.Processes) == 0 {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO workflow_processes (record_id, workflow, wf_position, position) VALUES (?, ?, ?, 0)`,
				id, wf.Name, w); err != nil {
				return errors.InternalError("store workflow", err).WithDetail("id", id)
			}
			continue
		}
		for p, proc := range wf.Processes {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO workflow_processes
					(record_id, workflow, wf_position, position, name, status, error_message, lifecycle)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				id, wf.Name, w, p, proc.Name, proc.Status, proc.ErrorMessage, proc.Lifecycle); err != nil {
				return errors.InternalError("store process", err).WithDetail("id", id)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.InternalError("commit workflow", err).WithDetail("id", id)
	}
	return nil
}

func (s *Store) replace(ctx context.Context, id, table string, insert func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.InternalError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE record_id = ?", id); err != nil {
		return errors.InternalError("clear "+table, err).WithDetail("id", id)
	}
	if err := insert(tx); err != nil {
		return errors.InternalError("store "+table, err).WithDetail("id", id)
	}
	if err := tx.Commit(); err != nil {
		return errors.InternalError("commit "+table, err).WithDetail("id", id)
	}
	return nil
}

// Find implements repository.RecordFinder.
func (s *Store) Find(ctx context.Context, id string) (*model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(ctx, id)
}

func (s *Store) find(ctx context.Context, id string) (*model.Record, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM records WHERE id = ?`, id).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(id)
	}
	if err != nil {
		return nil, errors.RetrievalFailed(id, err)
	}
	var rec model.Record
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return nil, errors.ValidationError("decode stored record", err).WithDetail("id", id)
	}
	return &rec, nil
}

func (s *Store) exists(ctx context.Context, id string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE id = ?`, id).Scan(&n); err != nil {
		return false, errors.RetrievalFailed(id, err)
	}
	return n > 0, nil
}

// AdministrativeTags implements repository.TagFinder. A known record
// without tags has none; an unknown identifier is a lookup failure.
func (s *Store) AdministrativeTags(ctx context.Context, id string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT tag FROM administrative_tags WHERE record_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, errors.RetrievalFailed(id, err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, errors.RetrievalFailed(id, err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.RetrievalFailed(id, err)
	}
	if len(tags) > 0 {
		return tags, nil
	}

	ok, err := s.exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeTagsNotFound, "no administrative tags for "+id, nil).
			WithDetail("id", id)
	}
	return tags, nil
}

// ReleaseTags implements repository.ReleaseFinder. Without stored
// directives the ones carried on the record are returned.
func (s *Store) ReleaseTags(ctx context.Context, id string) ([]model.ReleaseTag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT who, what, released_at, destination, release
		FROM release_tags WHERE record_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, errors.RetrievalFailed(id, err)
	}
	defer rows.Close()

	var tags []model.ReleaseTag
	stored := false
	for rows.Next() {
		stored = true
		var who, what, at, to sql.NullString
		var release sql.NullBool
		if err := rows.Scan(&who, &what, &at, &to, &release); err != nil {
			return nil, errors.RetrievalFailed(id, err)
		}
		if !to.Valid {
			continue
		}
		tag := model.ReleaseTag{Who: who.String, What: what.String, To: to.String, Release: release.Bool}
		if at.Valid {
			t, err := time.Parse(time.RFC3339Nano, at.String)
			if err != nil {
				return nil, errors.ValidationError("decode release date", err).WithDetail("id", id)
			}
			tag.Date = &t
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.RetrievalFailed(id, err)
	}
	if stored {
		return tags, nil
	}

	rec, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec.Administrative.ReleaseTags, nil
}

// WorkflowStatus implements repository.WorkflowClient. Unknown objects
// have an empty state.
func (s *Store) WorkflowStatus(ctx context.Context, id string, _ int) (*model.WorkflowState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := &model.WorkflowState{}
	err := s.db.QueryRowContext(ctx,
		`SELECT display, display_simplified FROM workflow_status WHERE record_id = ?`, id).
		Scan(&state.Display, &state.DisplaySimplified)
	if err == sql.ErrNoRows {
		return state, nil
	}
	if err != nil {
		return nil, errors.RetrievalFailed(id, err)
	}

	if err := s.loadMilestones(ctx, id, state); err != nil {
		return nil, err
	}
	if err := s.loadProcesses(ctx, id, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *Store) loadMilestones(ctx context.Context, id string, state *model.WorkflowState) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, at, version FROM workflow_milestones WHERE record_id = ? ORDER BY position`, id)
	if err != nil {
		return errors.RetrievalFailed(id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var m model.Milestone
		var at string
		if err := rows.Scan(&m.Name, &at, &m.Version); err != nil {
			return errors.RetrievalFailed(id, err)
		}
		if m.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return errors.ValidationError("decode milestone date", err).WithDetail("id", id)
		}
		state.Milestones = append(state.Milestones, m)
	}
	if err := rows.Err(); err != nil {
		return errors.RetrievalFailed(id, err)
	}
	return nil
}

func (s *Store) loadProcesses(ctx context.Context, id string, state *model.WorkflowState) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT wf_position, workflow, name, status, error_message, lifecycle
		FROM workflow_processes WHERE record_id = ? ORDER BY wf_position, position`, id)
	if err != nil {
		return errors.RetrievalFailed(id, err)
	}
	defer rows.Close()

	last := -1
	for rows.Next() {
		var pos int
		var wf string
		var name, status, msg, lifecycle sql.NullString
		if err := rows.Scan(&pos, &wf, &name, &status, &msg, &lifecycle); err != nil {
			return errors.RetrievalFailed(id, err)
		}
		if pos != last {
			state.Workflows = append(state.Workflows, model.Workflow{Name: wf})
			last = pos
		}
		n := len(state.Workflows)
		if !name.Valid {
			continue
		}
		state.Workflows[n-1].Processes = append(state.Workflows[n-1].Processes, model.Process{
			Name:         name.String,
			Status:       status.String,
			ErrorMessage: msg.String,
			Lifecycle:    lifecycle.String,
		})
	}
	if err := rows.Err(); err != nil {
		return errors.RetrievalFailed(id, err)
	}
	return nil
}

// IDs implements repository.Lister.
func (s *Store) IDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM records ORDER BY id`)
	if err != nil {
		return nil, errors.RetrievalFailed("records", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.RetrievalFailed("records", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
