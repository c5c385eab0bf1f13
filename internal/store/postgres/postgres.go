// Package postgres implements store.Store on PostgreSQL via the pgx
// stdlib driver. Schema migrations are applied out of band; Bootstrap only
// verifies connectivity.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/corkboard/corkboard/internal/model"
	"github.com/corkboard/corkboard/internal/store"
)

// Open opens a PostgreSQL connection and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New opens dsn and returns a Store over it.
func New(dsn string) (store.Store, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB wires a Store over an existing connection.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Canvases() store.Canvases   { return &canvases{db: s.db} }
func (s *pgStore) Layouts() store.Layouts     { return &layouts{db: s.db} }
func (s *pgStore) Guestbook() store.Guestbook { return &guestbook{db: s.db} }
func (s *pgStore) Close() error               { return s.db.Close() }

// HealthPing implements store.HealthPinger.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Canvases ---

type canvases struct{ db *sql.DB }

func (c *canvases) Create(ctx context.Context, in *model.Canvas) (*model.Canvas, error) {
	out := *in
	if out.CanvasID == "" {
		out.CanvasID = uuid.New().String()
	}
	row := c.db.QueryRowContext(ctx, `
        INSERT INTO canvases (canvas_id, owner_id, title, revision, layout_json)
        VALUES ($1,$2,$3,0,'')
        RETURNING creation_time, update_time`,
		out.CanvasID, out.OwnerID, out.Title)
	if err := row.Scan(&out.CreationTime, &out.UpdateTime); err != nil {
		return nil, err
	}
	out.Revision = 0
	return &out, nil
}

func (c *canvases) Get(ctx context.Context, canvasID string) (*model.Canvas, error) {
	row := c.db.QueryRowContext(ctx, `
        SELECT canvas_id, owner_id, title, revision, creation_time, update_time
        FROM canvases WHERE canvas_id = $1`, canvasID)
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
        FROM canvases WHERE owner_id = $1 ORDER BY creation_time`, ownerID)
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
	res, err := c.db.ExecContext(ctx, `DELETE FROM canvases WHERE canvas_id = $1`, canvasID)
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
	row := l.db.QueryRowContext(ctx, `SELECT layout_json, revision FROM canvases WHERE canvas_id = $1`, canvasID)
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
	row := l.db.QueryRowContext(ctx, `
        UPDATE canvases SET layout_json = $1, revision = revision + 1, update_time = now()
        WHERE canvas_id = $2
        RETURNING revision`, string(canonical), canvasID)
	var rev int64
	err := row.Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.ErrNotFound
	}
	if err != nil {
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
	var created time.Time
	row := g.db.QueryRowContext(ctx, `
        INSERT INTO guestbook_entries (entry_id, canvas_id, author_id, content, approved)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING creation_time`,
		out.EntryID, out.CanvasID, out.AuthorID, out.Content, out.Approved)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out.CreationTime = created
	return &out, nil
}

func (g *guestbook) List(ctx context.Context, canvasID string, approvedOnly bool, limit int) ([]*model.GuestbookEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT entry_id, canvas_id, author_id, content, approved, creation_time
          FROM guestbook_entries WHERE canvas_id = $1`
	args := []interface{}{canvasID}
	if approvedOnly {
		q += ` AND approved`
	}
	q += ` ORDER BY creation_time DESC LIMIT $2`
	args = append(args, limit)

	rows, err := g.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.GuestbookEntry
	for rows.Next() {
		var e model.GuestbookEntry
		if err := rows.Scan(&e.EntryID, &e.CanvasID, &e.AuthorID, &e.Content, &e.Approved, &e.CreationTime); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (g *guestbook) Delete(ctx context.Context, canvasID, entryID string) error {
	res, err := g.db.ExecContext(ctx, `
        DELETE FROM guestbook_entries WHERE canvas_id = $1 AND entry_id = $2`, canvasID, entryID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}
