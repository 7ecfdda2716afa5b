package services

import (
	"context"
	"errors"
	"log"

	"subtitle-collector/internal/models"
	"subtitle-collector/internal/repository"
)

// Archiver mirrors a committed record into the day-partitioned archive.
type Archiver interface {
	Append(ctx context.Context, entry models.ArchiveLedgerEntry) error
}

// Persister commits records to the primary store and, when an archiver is
// configured, mirrors them afterwards. The mirror never affects the outcome.
type Persister struct {
	store    repository.SubtitleStore
	archiver Archiver
}

// NewPersister builds a Persister. A nil archiver disables mirroring.
func NewPersister(store repository.SubtitleStore, archiver Archiver) *Persister {
	return &Persister{store: store, archiver: archiver}
}

// Persist returns the archive failure, if any, as its first value. A
// non-nil second value means nothing was committed and no mirror was tried.
func (p *Persister) Persist(ctx context.Context, rec *models.SubtitleRecord) (archiveErr error, err error) {
	if err := p.store.Insert(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &DuplicateSubmissionError{VideoID: rec.VideoID}
		}
		return nil, &PrimaryPersistError{VideoID: rec.VideoID, Err: err}
	}

	if p.archiver == nil {
		return nil, nil
	}
	if err := p.archiver.Append(ctx, rec.LedgerEntry(WatchURL(rec.VideoID))); err != nil {
		log.Printf("archive mirror failed for %s: %v", rec.VideoID, err)
		return err, nil
	}
	return nil, nil
}
