package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS analyses (
	id             TEXT PRIMARY KEY,
	video_id       TEXT NOT NULL,
	video_title    TEXT NOT NULL DEFAULT '',
	channel        TEXT NOT NULL DEFAULT '',
	video_url      TEXT NOT NULL DEFAULT '',
	model          TEXT NOT NULL DEFAULT '',
	total_comments INTEGER NOT NULL DEFAULT 0,
	created_at     TIMESTAMP NOT NULL,
	report         TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_analyses_video ON analyses(video_id);
`

type sqliteStore struct {
	db *sql.DB
}

// openSQLite opens (or creates) the history database. A single
// connection avoids SQLITE_BUSY under concurrent writes.
func openSQLite(path string) (Store, error) {
	if path == "" {
		path = "gotube_history.db"
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Save(ctx context.Context, rec *Record) error {
	prepareRecord(rec)
	report := rec.Report
	if len(report) == 0 {
		report = []byte("{}")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analyses (id, video_id, video_title, channel, video_url, model, total_comments, created_at, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			video_title = excluded.video_title,
			model = excluded.model,
			total_comments = excluded.total_comments,
			report = excluded.report`,
		rec.ID, rec.VideoID, rec.VideoTitle, rec.Channel, rec.VideoURL,
		rec.Model, rec.TotalComments, rec.CreatedAt.Format(time.RFC3339Nano), string(report))
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

func (s *sqliteStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, video_id, video_title, channel, video_url, model, total_comments, created_at
		FROM analyses ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var rec Record
		var created string
		if err := rows.Scan(&rec.ID, &rec.VideoID, &rec.VideoTitle, &rec.Channel,
			&rec.VideoURL, &rec.Model, &rec.TotalComments, &created); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *sqliteStore) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	var created, report string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, video_id, video_title, channel, video_url, model, total_comments, created_at, report
		FROM analyses WHERE id = ?`, id).
		Scan(&rec.ID, &rec.VideoID, &rec.VideoTitle, &rec.Channel,
			&rec.VideoURL, &rec.Model, &rec.TotalComments, &created, &report)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: analysis %s", engine.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	rec.Report = []byte(report)
	return &rec, nil
}

func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: analysis %s", engine.ErrNotFound, id)
	}
	return nil
}

func (s *sqliteStore) Close() error { return s.db.Close() }
