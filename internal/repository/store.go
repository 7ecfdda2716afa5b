package repository

import (
	"context"
	"errors"

	"subtitle-collector/internal/models"
)

var (
	ErrNotFound  = errors.New("subtitle record not found")
	ErrDuplicate = errors.New("subtitle record already exists")
)

// SubtitleStore is the primary key-value store for subtitle records, keyed by video id.
//
// Insert must be insert-if-absent: an existing key yields ErrDuplicate and
// leaves the stored record untouched.
type SubtitleStore interface {
	Get(ctx context.Context, videoID string) (*models.SubtitleRecord, error)
	Insert(ctx context.Context, rec *models.SubtitleRecord) error
	List(ctx context.Context, q models.ListQuery) ([]*models.SubtitleRecord, int, error)
	UpdateContent(ctx context.Context, videoID, content string) error
	Delete(ctx context.Context, videoID string) error
}

// DefaultListLimit is the page size used when a ListQuery carries no positive limit.
const DefaultListLimit = 20

// window clamps a query into a usable page: a non-positive limit becomes
// DefaultListLimit and a negative offset becomes zero, the same for every backend.
func window(q models.ListQuery) models.ListQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultListLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}
