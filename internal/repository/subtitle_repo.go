package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"subtitle-collector/internal/models"
)

// SubtitleRepo stores records in the PostgreSQL subtitles table.
type SubtitleRepo struct {
	pool *pgxpool.Pool
}

func NewSubtitleRepo(pool *pgxpool.Pool) *SubtitleRepo {
	return &SubtitleRepo{pool: pool}
}

const subtitleColumns = `video_id, title, datetime, content, thumbnail, numeric_tag`

func (r *SubtitleRepo) Get(ctx context.Context, videoID string) (*models.SubtitleRecord, error) {
	s := &models.SubtitleRecord{}
	query := `SELECT ` + subtitleColumns + ` FROM subtitles WHERE video_id = $1`

	err := r.pool.QueryRow(ctx, query, videoID).Scan(
		&s.VideoID, &s.Title, &s.DateTime, &s.Content, &s.Thumbnail, &s.NumericTag,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SubtitleRepo) Insert(ctx context.Context, s *models.SubtitleRecord) error {
	query := `INSERT INTO subtitles (` + subtitleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (video_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query,
		s.VideoID, s.Title, s.DateTime, s.Content, s.Thumbnail, s.NumericTag,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *SubtitleRepo) List(ctx context.Context, q models.ListQuery) ([]*models.SubtitleRecord, int, error) {
	q = window(q)

	var args []interface{}
	argIdx := 1

	where := ""
	if q.Search != "" {
		where = fmt.Sprintf("WHERE (title ILIKE $%d OR content ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+q.Search+"%")
		argIdx++
	}

	// Count total
	var total int
	countQuery := "SELECT COUNT(*) FROM subtitles " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM subtitles %s ORDER BY datetime DESC, video_id ASC LIMIT $%d OFFSET $%d`,
		subtitleColumns, where, argIdx, argIdx+1)
	args = append(args, q.Limit, q.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*models.SubtitleRecord
	for rows.Next() {
		s := &models.SubtitleRecord{}
		if err := rows.Scan(&s.VideoID, &s.Title, &s.DateTime, &s.Content, &s.Thumbnail, &s.NumericTag); err != nil {
			return nil, 0, err
		}
		records = append(records, s)
	}

	return records, total, rows.Err()
}

func (r *SubtitleRepo) UpdateContent(ctx context.Context, videoID, content string) error {
	tag, err := r.pool.Exec(ctx, "UPDATE subtitles SET content = $1 WHERE video_id = $2", content, videoID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SubtitleRepo) Delete(ctx context.Context, videoID string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM subtitles WHERE video_id = $1", videoID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
