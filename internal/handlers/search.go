package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"subtitle-collector/internal/models"
)

const (
	defaultSearchLimit = 30
	maxSearchLimit     = 50
)

type videoSearcher interface {
	Search(ctx context.Context, keyword string, limit int) ([]models.SearchResult, error)
}

type SearchHandler struct {
	searcher videoSearcher
}

func NewSearchHandler(searcher videoSearcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Query parameter q is required", r))
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > maxSearchLimit {
		limit = defaultSearchLimit
	}

	results, err := h.searcher.Search(r.Context(), q, limit)
	if err != nil {
		log.Printf("video search for %q failed: %v", q, err)
		writeJSON(w, http.StatusBadGateway, errorResp("SEARCH_FAILED", "Video search failed", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":   q,
		"results": results,
	})
}
