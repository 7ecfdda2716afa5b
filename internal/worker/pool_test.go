package worker

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subtitle-collector/internal/models"
	"subtitle-collector/internal/services"
)

func testJob() Job {
	return Job{
		ID:         uuid.New(),
		Request:    models.SubmitRequest{URL: "https://youtu.be/abc123"},
		EnqueuedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestPendingStatus(t *testing.T) {
	job := testJob()
	status := pendingStatus(job)

	assert.Equal(t, job.ID, status.ID)
	assert.Equal(t, "pending", status.Status)
	assert.Equal(t, job.Request.URL, status.URL)
	assert.Equal(t, job.EnqueuedAt, status.UpdatedAt)
}

func TestFinalStatus_Completed(t *testing.T) {
	job := testJob()
	res := &models.SubmitResult{
		SubmissionID: job.ID,
		Record:       &models.SubtitleRecord{VideoID: "abc123"},
		ArchiveError: "bucket unavailable",
	}

	status := finalStatus(job, res, nil)
	assert.Equal(t, "completed", status.Status)
	assert.Equal(t, "abc123", status.VideoID)
	assert.Equal(t, "bucket unavailable", status.ArchiveError)
	assert.Empty(t, status.ErrorCode)
}

func TestFinalStatus_Failed(t *testing.T) {
	job := testJob()
	err := &services.DuplicateSubmissionError{VideoID: "abc123"}

	status := finalStatus(job, nil, err)
	assert.Equal(t, "failed", status.Status)
	assert.Equal(t, "duplicate_submission", status.ErrorCode)
	assert.Equal(t, "abc123", status.VideoID)
	assert.Contains(t, status.ErrorMessage, "already been submitted")
}

func TestFinalStatus_FailedInvalidURL(t *testing.T) {
	job := testJob()
	job.Request.URL = "https://vimeo.com/1"

	status := finalStatus(job, nil, errors.New("boom"))
	assert.Equal(t, "failed", status.Status)
	assert.Equal(t, "unknown", status.ErrorCode)
	assert.Empty(t, status.VideoID)
}

func TestJobRoundTripKeepsRequest(t *testing.T) {
	tag := 7
	job := testJob()
	job.Request.NumericTag = &tag

	data, err := json.Marshal(job)
	require.NoError(t, err)

	var decoded Job
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, job.ID, decoded.ID)
	require.NotNil(t, decoded.Request.NumericTag)
	assert.Equal(t, 7, *decoded.Request.NumericTag)
}
