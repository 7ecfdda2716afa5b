package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"subtitle-collector/internal/models"
)

// SQLiteSubtitleRepo is the embedded primary store used for local runs.
type SQLiteSubtitleRepo struct {
	db *sql.DB
}

// NewSQLiteSubtitleRepo creates the subtitles table if it doesn't exist.
func NewSQLiteSubtitleRepo(ctx context.Context, db *sql.DB) (*SQLiteSubtitleRepo, error) {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS subtitles (
		video_id    TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		datetime    TEXT NOT NULL,
		content     TEXT NOT NULL,
		thumbnail   TEXT,
		numeric_tag INTEGER
	)`)
	if err != nil {
		return nil, fmt.Errorf("failed to init sqlite schema: %w", err)
	}
	return &SQLiteSubtitleRepo{db: db}, nil
}

func (r *SQLiteSubtitleRepo) Get(ctx context.Context, videoID string) (*models.SubtitleRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+subtitleColumns+` FROM subtitles WHERE video_id = ?`, videoID)

	rec, err := scanSQLiteRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

func (r *SQLiteSubtitleRepo) Insert(ctx context.Context, s *models.SubtitleRecord) error {
	var tag sql.NullInt64
	if s.NumericTag != nil {
		tag = sql.NullInt64{Int64: int64(*s.NumericTag), Valid: true}
	}
	var thumb sql.NullString
	if s.Thumbnail != nil {
		thumb = sql.NullString{String: *s.Thumbnail, Valid: true}
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO subtitles (`+subtitleColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(video_id) DO NOTHING`,
		s.VideoID, s.Title, s.DateTime, s.Content, thumb, tag,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *SQLiteSubtitleRepo) List(ctx context.Context, q models.ListQuery) ([]*models.SubtitleRecord, int, error) {
	q = window(q)

	where := ""
	var args []interface{}
	if q.Search != "" {
		where = "WHERE title LIKE ? OR content LIKE ?"
		pattern := "%" + q.Search + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM subtitles "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, q.Limit, q.Offset)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+subtitleColumns+` FROM subtitles `+where+` ORDER BY datetime DESC, video_id ASC LIMIT ? OFFSET ?`,
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*models.SubtitleRecord
	for rows.Next() {
		rec, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

func (r *SQLiteSubtitleRepo) UpdateContent(ctx context.Context, videoID, content string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE subtitles SET content = ? WHERE video_id = ?", content, videoID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *SQLiteSubtitleRepo) Delete(ctx context.Context, videoID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM subtitles WHERE video_id = ?", videoID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSQLiteRecord(row rowScanner) (*models.SubtitleRecord, error) {
	s := &models.SubtitleRecord{}
	var thumb sql.NullString
	var tag sql.NullInt64
	if err := row.Scan(&s.VideoID, &s.Title, &s.DateTime, &s.Content, &thumb, &tag); err != nil {
		return nil, err
	}
	if thumb.Valid {
		s.Thumbnail = &thumb.String
	}
	if tag.Valid {
		n := int(tag.Int64)
		s.NumericTag = &n
	}
	return s, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
