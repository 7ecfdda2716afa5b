package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"subtitle-collector/internal/models"
	"subtitle-collector/internal/repository"
	"subtitle-collector/internal/services"
)

const (
	QueueName    = "queue:subtitle-submission"
	statusPrefix = "submission_status:"
	statusTTL    = 24 * time.Hour
)

// Job is one queued submission.
type Job struct {
	ID         uuid.UUID            `json:"id"`
	Request    models.SubmitRequest `json:"request"`
	EnqueuedAt time.Time            `json:"enqueued_at"`
}

type submitter interface {
	Submit(ctx context.Context, req models.SubmitRequest) (*models.SubmitResult, error)
}

// Pool pulls queued submissions from Redis and runs them through the
// pipeline. Each job runs once; failures are recorded, not retried.
type Pool struct {
	redis       *redis.Client
	pipeline    submitter
	workerCount int
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

func NewPool(redisClient *redis.Client, pipeline submitter, workerCount int) *Pool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &Pool{
		redis:       redisClient,
		pipeline:    pipeline,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	log.Printf("Started %d submission workers", p.workerCount)
}

// Stop signals the workers and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	close(p.stopChan)
	p.wg.Wait()
}

// Enqueue records a pending status and pushes the job onto the queue.
func (p *Pool) Enqueue(ctx context.Context, req models.SubmitRequest) (uuid.UUID, error) {
	if req.SubmissionID == uuid.Nil {
		req.SubmissionID = uuid.New()
	}
	job := Job{ID: req.SubmissionID, Request: req, EnqueuedAt: time.Now()}

	if err := p.saveStatus(ctx, pendingStatus(job)); err != nil {
		return uuid.Nil, err
	}

	data, err := json.Marshal(job)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode job: %w", err)
	}
	if err := p.redis.RPush(ctx, QueueName, data).Err(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to queue job: %w", err)
	}
	return job.ID, nil
}

// Status returns the last recorded state of a submission, or
// repository.ErrNotFound once it has expired or never existed.
func (p *Pool) Status(ctx context.Context, id uuid.UUID) (*models.SubmissionStatus, error) {
	data, err := p.redis.Get(ctx, statusPrefix+id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read submission status: %w", err)
	}

	var status models.SubmissionStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to decode submission status: %w", err)
	}
	return &status, nil
}

func (p *Pool) saveStatus(ctx context.Context, status *models.SubmissionStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to encode submission status: %w", err)
	}
	if err := p.redis.Set(ctx, statusPrefix+status.ID.String(), data, statusTTL).Err(); err != nil {
		return fmt.Errorf("failed to save submission status: %w", err)
	}
	return nil
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with a short timeout so Stop is noticed promptly
		result, err := p.redis.BLPop(ctx, 5*time.Second, QueueName).Result()
		if err != nil {
			continue // Timeout or error, retry
		}
		if len(result) < 2 {
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse job: %v", id, err)
			continue
		}

		log.Printf("Worker %d: processing submission %s", id, job.ID)
		p.process(ctx, job)
	}
}

func (p *Pool) process(ctx context.Context, job Job) {
	status := pendingStatus(job)
	status.Status = "processing"
	status.UpdatedAt = time.Now()
	if err := p.saveStatus(ctx, status); err != nil {
		log.Printf("submission %s: %v", job.ID, err)
	}

	job.Request.SubmissionID = job.ID
	res, err := p.pipeline.Submit(ctx, job.Request)
	final := finalStatus(job, res, err)
	if err := p.saveStatus(ctx, final); err != nil {
		log.Printf("submission %s: %v", job.ID, err)
	}
}

func pendingStatus(job Job) *models.SubmissionStatus {
	return &models.SubmissionStatus{
		ID:        job.ID,
		Status:    "pending",
		URL:       job.Request.URL,
		UpdatedAt: job.EnqueuedAt,
	}
}

// finalStatus describes the outcome of a finished run.
func finalStatus(job Job, res *models.SubmitResult, err error) *models.SubmissionStatus {
	status := pendingStatus(job)
	status.UpdatedAt = time.Now()

	if err != nil {
		status.Status = "failed"
		status.ErrorCode = services.Classify(err).String()
		status.ErrorMessage = err.Error()
		if ref, rerr := services.ResolveVideoID(job.Request.URL); rerr == nil {
			status.VideoID = ref.VideoID
		}
		return status
	}

	status.Status = "completed"
	if res != nil {
		status.ArchiveError = res.ArchiveError
		if res.Record != nil {
			status.VideoID = res.Record.VideoID
		}
	}
	return status
}
