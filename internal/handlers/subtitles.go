package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"subtitle-collector/internal/models"
	"subtitle-collector/internal/repository"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
	maxPage        = 100000
)

type SubtitleHandler struct {
	store subtitleStore
}

type subtitleStore interface {
	Get(ctx context.Context, videoID string) (*models.SubtitleRecord, error)
	List(ctx context.Context, q models.ListQuery) ([]*models.SubtitleRecord, int, error)
	UpdateContent(ctx context.Context, videoID, content string) error
	Delete(ctx context.Context, videoID string) error
}

func NewSubtitleHandler(store subtitleStore) *SubtitleHandler {
	return &SubtitleHandler{store: store}
}

func (h *SubtitleHandler) List(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if perPage <= 0 || perPage > maxPerPage {
		perPage = defaultPerPage
	}

	records, total, err := h.store.List(r.Context(), models.ListQuery{
		Search: search,
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	})
	if err != nil {
		log.Printf("failed to list subtitles: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch subtitles", r))
		return
	}
	if records == nil {
		records = []*models.SubtitleRecord{}
	}

	totalPages := (total + perPage - 1) / perPage
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"subtitles":   records,
		"total":       total,
		"page":        page,
		"per_page":    perPage,
		"total_pages": totalPages,
	})
}

func (h *SubtitleHandler) Get(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")

	rec, err := h.store.Get(r.Context(), videoID)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Subtitle not found", r))
		return
	}
	if err != nil {
		log.Printf("failed to get subtitle %s: %v", videoID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch subtitle", r))
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (h *SubtitleHandler) Update(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")

	var req models.UpdateSubtitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Content must not be empty", r))
		return
	}

	err := h.store.UpdateContent(r.Context(), videoID, req.Content)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Subtitle not found", r))
		return
	}
	if err != nil {
		log.Printf("failed to update subtitle %s: %v", videoID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update subtitle", r))
		return
	}

	rec, err := h.store.Get(r.Context(), videoID)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Subtitle updated"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *SubtitleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")

	err := h.store.Delete(r.Context(), videoID)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Subtitle not found", r))
		return
	}
	if err != nil {
		log.Printf("failed to delete subtitle %s: %v", videoID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete subtitle", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Subtitle deleted"})
}
