package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"subtitle-collector/internal/models"
	"subtitle-collector/internal/repository"
)

type submitter interface {
	Submit(ctx context.Context, req models.SubmitRequest) (*models.SubmitResult, error)
}

type submissionQueue interface {
	Enqueue(ctx context.Context, req models.SubmitRequest) (uuid.UUID, error)
	Status(ctx context.Context, id uuid.UUID) (*models.SubmissionStatus, error)
}

type SubmissionHandler struct {
	pipeline submitter
	queue    submissionQueue
}

// NewSubmissionHandler builds the handler. queue may be nil, which disables
// background submissions.
func NewSubmissionHandler(pipeline submitter, queue submissionQueue) *SubmissionHandler {
	return &SubmissionHandler{pipeline: pipeline, queue: queue}
}

// Submit accepts a JSON body {"url", "numeric_tag"} or the form fields
// youtube_url and leetcode_number. With ?async=true the run is queued and
// 202 is returned right away.
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSubmitRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
		return
	}

	if r.URL.Query().Get("async") == "true" {
		if h.queue == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResp("ASYNC_UNAVAILABLE", "Background submissions are not enabled", r))
			return
		}
		id, err := h.queue.Enqueue(r.Context(), req)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to queue submission", r))
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"submission_id": id,
			"status":        "pending",
		})
		return
	}

	result, err := h.pipeline.Submit(r.Context(), req)
	if err != nil {
		handleSubmitError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *SubmissionHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Submission not found", r))
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid submission ID", r))
		return
	}

	status, err := h.queue.Status(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Submission not found", r))
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch submission status", r))
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func decodeSubmitRequest(r *http.Request) (models.SubmitRequest, error) {
	var req models.SubmitRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, errors.New("invalid request body")
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return req, errors.New("invalid form body")
		}
		req.URL = r.PostForm.Get("youtube_url")
		if raw := strings.TrimSpace(r.PostForm.Get("leetcode_number")); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return req, errors.New("leetcode_number must be a number")
			}
			req.NumericTag = &n
		}
		if raw := r.PostForm.Get("submission_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return req, errors.New("invalid submission_id")
			}
			req.SubmissionID = id
		}
	}

	if strings.TrimSpace(req.URL) == "" {
		return req, errors.New("url is required")
	}
	return req, nil
}
