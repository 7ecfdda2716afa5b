package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"subtitle-collector/internal/middleware"
	"subtitle-collector/internal/models"
	"subtitle-collector/internal/services"
)

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get(middleware.RequestIDHeader),
		},
	}
}

// submitErrorStatus maps a pipeline failure to its HTTP status, API code and
// user-facing message. Tool and store failures carry their diagnostic text.
func submitErrorStatus(err error) (int, string, string) {
	switch kind := services.Classify(err); kind {
	case services.KindInvalidReference:
		return http.StatusBadRequest, "INVALID_URL", "Not a valid YouTube URL"
	case services.KindDuplicate:
		return http.StatusConflict, "ALREADY_SUBMITTED", "This video has already been submitted"
	case services.KindMetadataFetch:
		return http.StatusBadGateway, "METADATA_FAILED", fmt.Sprintf("Could not fetch video information: %v", err)
	case services.KindCaptionFetch, services.KindCaptionNotFound, services.KindEmptyCaption:
		return http.StatusUnprocessableEntity, "NO_CAPTIONS", fmt.Sprintf("Could not extract subtitles. The video may have no captions: %v", err)
	case services.KindStoreAccess, services.KindPrimaryPersist:
		return http.StatusInternalServerError, "INTERNAL_ERROR", err.Error()
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", fmt.Sprintf("Submission failed: %v", err)
	}
}

func handleSubmitError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := submitErrorStatus(err)
	writeJSON(w, status, errorResp(code, message, r))
}
