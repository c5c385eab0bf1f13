// Package sqlite implements store.Store on modernc.org/sqlite. It is the
// default driver for local and single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/corkboard/corkboard/internal/model"
	"github.com/corkboard/corkboard/internal/store"
)

// Open opens (or creates) a SQLite database at the given path with WAL
// journal mode and foreign keys enabled, and applies the schema.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS canvases (
    canvas_id     TEXT PRIMARY KEY,
    owner_id      TEXT NOT NULL,
    title         TEXT NOT NULL,
    revision      INTEGER NOT NULL DEFAULT 0,
    layout_json   TEXT NOT NULL DEFAULT '',
    creation_time TIMESTAMP NOT NULL,
    update_time   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_canvases_owner ON canvases(owner_id);

CREATE TABLE IF NOT EXISTS guestbook_entries (
    entry_id      TEXT PRIMARY KEY,
    canvas_id     TEXT NOT NULL REFERENCES canvases(canvas_id) ON DELETE CASCADE,
    author_id     TEXT NOT NULL,
    content       TEXT NOT NULL,
    approved      INTEGER NOT NULL DEFAULT 0,
    creation_time TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_guestbook_canvas ON guestbook_entries(canvas_id, creation_time);
`

// New opens the database at path and returns a Store over it.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB wires a Store over an existing connection (used by tests and
// the factory).
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db} }

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Canvases() store.Canvases   { return &canvases{db: s.db} }
func (s *sqliteStore) Layouts() store.Layouts     { return &layouts{db: s.db} }
func (s *sqliteStore) Guestbook() store.Guestbook { return &guestbook{db: s.db} }
func (s *sqliteStore) Close() error               { return s.db.Close() }

// HealthPing implements store.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Canvases ---

type canvases struct{ db *sql.DB }

func (c *canvases) Create(ctx context.Context, in *model.Canvas) (*model.Canvas, error) {
	out := *in
	if out.CanvasID == "" {
		out.CanvasID = uuid.New().String()
	}
	now := time.Now().UTC()
	out.CreationTime = now
	out.UpdateTime = now
	out.Revision = 0

	_, err := c.db.ExecContext(ctx, `
        INSERT INTO canvases (canvas_id, owner_id, title, revision, layout_json, creation_time, update_time)
        VALUES (?,?,?,0,'',?,?)`,
		out.CanvasID, out.OwnerID, out.Title, now, now)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *canvases) Get(ctx context.Context, canvasID string) (*model.Canvas, error) {
	row := c.db.QueryRowContext(ctx, `
        SELECT canvas_id, owner_id, title, revision, creation_time, update_time
        FROM canvases WHERE canvas_id = ?`, canvasID)
	var out model.Canvas
	err := row.Scan(&out.CanvasID, &out.OwnerID, &out.Title, &out.Revision, &out.CreationTime, &out.UpdateTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *canvases) ListByOwner(ctx context.Context, ownerID string) ([]*model.Canvas, error) {
	rows, err := c.db.QueryContext(ctx, `
        SELECT canvas_id, owner_id, title, revision, creation_time, update_time
        FROM canvases WHERE owner_id = ? ORDER BY creation_time`, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.Canvas
	for rows.Next() {
		var cv model.Canvas
		if err := rows.Scan(&cv.CanvasID, &cv.OwnerID, &cv.Title, &cv.Revision, &cv.CreationTime, &cv.UpdateTime); err != nil {
			return nil, err
		}
		out = append(out, &cv)
	}
	return out, rows.Err()
}

func (c *canvases) Delete(ctx context.Context, canvasID string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM canvases WHERE canvas_id = ?`, canvasID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- Layouts ---

type layouts struct{ db *sql.DB }

func (l *layouts) Get(ctx context.Context, canvasID string) ([]byte, int64, error) {
	row := l.db.QueryRowContext(ctx, `SELECT layout_json, revision FROM canvases WHERE canvas_id = ?`, canvasID)
	var blob string
	var rev int64
	err := row.Scan(&blob, &rev)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, model.ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	return []byte(blob), rev, nil
}

func (l *layouts) Put(ctx context.Context, canvasID string, canonical []byte) (int64, error) {
	res, err := l.db.ExecContext(ctx, `
        UPDATE canvases SET layout_json = ?, revision = revision + 1, update_time = ?
        WHERE canvas_id = ?`, string(canonical), time.Now().UTC(), canvasID)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, model.ErrNotFound
	}
	row := l.db.QueryRowContext(ctx, `SELECT revision FROM canvases WHERE canvas_id = ?`, canvasID)
	var rev int64
	if err := row.Scan(&rev); err != nil {
		return 0, err
	}
	return rev, nil
}

// --- Guestbook ---

type guestbook struct{ db *sql.DB }

func (g *guestbook) Create(ctx context.Context, in *model.GuestbookEntry) (*model.GuestbookEntry, error) {
	out := *in
	if out.EntryID == "" {
		out.EntryID = uuid.New().String()
	}
	out.CreationTime = time.Now().UTC()

	_, err := g.db.ExecContext(ctx, `
        INSERT INTO guestbook_entries (entry_id, canvas_id, author_id, content, approved, creation_time)
        VALUES (?,?,?,?,?,?)`,
		out.EntryID, out.CanvasID, out.AuthorID, out.Content, boolToInt(out.Approved), out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *guestbook) List(ctx context.Context, canvasID string, approvedOnly bool, limit int) ([]*model.GuestbookEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT entry_id, canvas_id, author_id, content, approved, creation_time
          FROM guestbook_entries WHERE canvas_id = ?`
	args := []interface{}{canvasID}
	if approvedOnly {
		q += ` AND approved = 1`
	}
	q += ` ORDER BY creation_time DESC LIMIT ?`
	args = append(args, limit)

	rows, err := g.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.GuestbookEntry
	for rows.Next() {
		var e model.GuestbookEntry
		var approved int
		if err := rows.Scan(&e.EntryID, &e.CanvasID, &e.AuthorID, &e.Content, &approved, &e.CreationTime); err != nil {
			return nil, err
		}
		e.Approved = approved != 0
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (g *guestbook) Delete(ctx context.Context, canvasID, entryID string) error {
	res, err := g.db.ExecContext(ctx, `
        DELETE FROM guestbook_entries WHERE canvas_id = ? AND entry_id = ?`, canvasID, entryID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
