package models

import (
	"time"

	"github.com/google/uuid"
)

// Stage names a step of a submission run.
type Stage string

const (
	StageStart          Stage = "start"
	StageResolve        Stage = "resolve"
	StageFetchMetadata  Stage = "fetch_metadata"
	StageGuardDuplicate Stage = "guard_duplicate"
	StageFetchCaptions  Stage = "fetch_captions"
	StageNormalize      Stage = "normalize"
	StagePersist        Stage = "persist"
	StageDone           Stage = "done"
	StageFailed         Stage = "failed"
)

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type StageEvent struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	VideoID      string    `json:"video_id,omitempty"`
	Stage        Stage     `json:"stage"`
	Step         int       `json:"step"`
	ErrorCode    string    `json:"error_code,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// API Error response
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

// SubmissionChannel is the pub/sub channel carrying stage events of one submission.
func SubmissionChannel(id uuid.UUID) string {
	return "submission_updates:" + id.String()
}

// NewStageMessage wraps a stage event in the websocket envelope.
func NewStageMessage(ev StageEvent) WSMessage {
	msgType := "status_update"
	switch ev.Stage {
	case StageDone:
		msgType = "completed"
	case StageFailed:
		msgType = "error"
	}
	return WSMessage{Type: msgType, Payload: ev}
}

// SubmissionStatus tracks a submission accepted for background processing.
type SubmissionStatus struct {
	ID           uuid.UUID `json:"id"`
	Status       string    `json:"status"` // pending | processing | completed | failed
	URL          string    `json:"url"`
	VideoID      string    `json:"video_id,omitempty"`
	ErrorCode    string    `json:"error_code,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	ArchiveError string    `json:"archive_error,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}
