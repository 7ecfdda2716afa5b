package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"subtitle-collector/internal/models"
)

type PipelineConfig struct {
	Metadata   MetadataFetcher
	Captions   CaptionFetcher
	Guard      *DuplicateGuard
	Persister  *Persister
	StagingDir string
	Location   *time.Location

	// CaptionCleanup is applied on top of the plain caption flattening.
	CaptionCleanup []NormalizeOption

	// Locker and Observer are optional.
	Locker   Locker
	Observer Observer
	Now      func() time.Time
}

// Pipeline runs one submission from URL to committed record. Runs are
// independent; nothing is retried or compensated.
type Pipeline struct {
	metadata   MetadataFetcher
	captions   CaptionFetcher
	guard      *DuplicateGuard
	persister  *Persister
	stagingDir string
	location   *time.Location
	cleanup    []NormalizeOption
	locker     Locker
	observer   Observer
	now        func() time.Time
}

func NewPipeline(cfg PipelineConfig) *Pipeline {
	p := &Pipeline{
		metadata:   cfg.Metadata,
		captions:   cfg.Captions,
		guard:      cfg.Guard,
		persister:  cfg.Persister,
		stagingDir: cfg.StagingDir,
		location:   cfg.Location,
		cleanup:    cfg.CaptionCleanup,
		locker:     cfg.Locker,
		observer:   cfg.Observer,
		now:        cfg.Now,
	}
	if p.location == nil {
		p.location = time.UTC
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

var stageSteps = map[models.Stage]int{
	models.StageStart:          0,
	models.StageResolve:        1,
	models.StageFetchMetadata:  2,
	models.StageGuardDuplicate: 3,
	models.StageFetchCaptions:  4,
	models.StageNormalize:      5,
	models.StagePersist:        6,
	models.StageDone:           7,
}

type run struct {
	p       *Pipeline
	id      uuid.UUID
	videoID string
	stage   models.Stage
}

func (r *run) enter(ctx context.Context, stage models.Stage) {
	r.stage = stage
	if r.p.observer == nil {
		return
	}
	r.p.observer.Publish(ctx, models.StageEvent{
		SubmissionID: r.id,
		VideoID:      r.videoID,
		Stage:        stage,
		Step:         stageSteps[stage],
	})
}

func (r *run) fail(ctx context.Context, err error) {
	kind := Classify(err)
	log.Printf("submission %s: %s failed (%s): %v", r.id, r.stage, kind, err)
	if r.p.observer == nil {
		return
	}
	r.p.observer.Publish(ctx, models.StageEvent{
		SubmissionID: r.id,
		VideoID:      r.videoID,
		Stage:        models.StageFailed,
		Step:         stageSteps[r.stage],
		ErrorCode:    kind.String(),
		ErrorMessage: err.Error(),
	})
}

// Submit processes one URL. On success the record is committed; the result
// carries any archive failure, which never turns the outcome into an error.
func (p *Pipeline) Submit(ctx context.Context, req models.SubmitRequest) (*models.SubmitResult, error) {
	r := &run{p: p, id: req.SubmissionID}
	if r.id == uuid.Nil {
		r.id = uuid.New()
	}

	r.enter(ctx, models.StageStart)
	result, err := r.execute(ctx, req)
	if err != nil {
		r.fail(ctx, err)
		return nil, err
	}
	r.enter(ctx, models.StageDone)
	return result, nil
}

func (r *run) execute(ctx context.Context, req models.SubmitRequest) (*models.SubmitResult, error) {
	p := r.p

	r.enter(ctx, models.StageResolve)
	ref, err := ResolveVideoID(req.URL)
	if err != nil {
		return nil, err
	}
	r.videoID = ref.VideoID

	if p.locker != nil {
		release, ok, err := p.locker.Acquire(ctx, ref.VideoID)
		switch {
		case err != nil:
			log.Printf("submission %s: proceeding without lock: %v", r.id, err)
		case !ok:
			return nil, &DuplicateSubmissionError{VideoID: ref.VideoID, InFlight: true}
		default:
			defer release()
		}
	}

	r.enter(ctx, models.StageFetchMetadata)
	meta, err := p.metadata.FetchMetadata(ctx, ref)
	if err != nil {
		return nil, err
	}
	datetime := p.now().In(p.location).Format(models.DateTimeLayout)

	r.enter(ctx, models.StageGuardDuplicate)
	if err := p.guard.Check(ctx, ref.VideoID); err != nil {
		return nil, err
	}

	r.enter(ctx, models.StageFetchCaptions)
	path, err := p.captions.FetchCaption(ctx, ref, p.stagingDir)
	if err != nil {
		return nil, err
	}

	r.enter(ctx, models.StageNormalize)
	content, err := NormalizeCaptionFile(path, p.cleanup...)
	if err != nil {
		return nil, err
	}

	r.enter(ctx, models.StagePersist)
	rec := &models.SubtitleRecord{
		VideoID:    ref.VideoID,
		Title:      meta.Title,
		DateTime:   datetime,
		Content:    content,
		Thumbnail:  meta.Thumbnail,
		NumericTag: req.NumericTag,
	}
	archiveErr, err := p.persister.Persist(ctx, rec)
	if err != nil {
		return nil, err
	}

	result := &models.SubmitResult{SubmissionID: r.id, Record: rec}
	if archiveErr != nil {
		result.ArchiveError = archiveErr.Error()
	}
	log.Printf("submission %s: stored %s (%d chars)", r.id, rec.VideoID, len(rec.Content))
	return result, nil
}
