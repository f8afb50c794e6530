package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS analyses (
	id             TEXT PRIMARY KEY,
	video_id       TEXT NOT NULL,
	video_title    TEXT NOT NULL DEFAULT '',
	channel        TEXT NOT NULL DEFAULT '',
	video_url      TEXT NOT NULL DEFAULT '',
	model          TEXT NOT NULL DEFAULT '',
	total_comments INTEGER NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL,
	report         JSONB NOT NULL DEFAULT '{}'::jsonb
);
CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_analyses_video ON analyses(video_id);
`

type postgresStore struct {
	pool *pgxpool.Pool
}

func openPostgres(ctx context.Context, databaseURL string) (Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &postgresStore{pool: pool}, nil
}

func (s *postgresStore) Save(ctx context.Context, rec *Record) error {
	prepareRecord(rec)
	report := rec.Report
	if len(report) == 0 {
		report = []byte("{}")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO analyses (id, video_id, video_title, channel, video_url, model, total_comments, created_at, report)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			video_title = EXCLUDED.video_title,
			model = EXCLUDED.model,
			total_comments = EXCLUDED.total_comments,
			report = EXCLUDED.report`,
		rec.ID, rec.VideoID, rec.VideoTitle, rec.Channel, rec.VideoURL,
		rec.Model, rec.TotalComments, rec.CreatedAt, report)
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

func (s *postgresStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, video_id, video_title, channel, video_url, model, total_comments, created_at
		FROM analyses ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.VideoID, &rec.VideoTitle, &rec.Channel,
			&rec.VideoURL, &rec.Model, &rec.TotalComments, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *postgresStore) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := s.pool.QueryRow(ctx, `
		SELECT id, video_id, video_title, channel, video_url, model, total_comments, created_at, report
		FROM analyses WHERE id = $1`, id).
		Scan(&rec.ID, &rec.VideoID, &rec.VideoTitle, &rec.Channel,
			&rec.VideoURL, &rec.Model, &rec.TotalComments, &rec.CreatedAt, &rec.Report)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: analysis %s", engine.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	return &rec, nil
}

func (s *postgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM analyses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: analysis %s", engine.ErrNotFound, id)
	}
	return nil
}

func (s *postgresStore) Close() error {
	s.pool.Close()
	return nil
}
