package services

import (
	"context"
	"errors"
	"log"

	"subtitle-collector/internal/repository"
)

// DuplicateGuard refuses video ids that already have a stored record.
type DuplicateGuard struct {
	store repository.SubtitleStore
}

func NewDuplicateGuard(store repository.SubtitleStore) *DuplicateGuard {
	return &DuplicateGuard{store: store}
}

func (g *DuplicateGuard) Check(ctx context.Context, videoID string) error {
	_, err := g.store.Get(ctx, videoID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		log.Printf("store access failure for %s: %v", videoID, err)
		return &StoreAccessError{VideoID: videoID, Err: err}
	default:
		return &DuplicateSubmissionError{VideoID: videoID}
	}
}
