package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"subtitle-collector/internal/handlers"
	"subtitle-collector/internal/middleware"
	"subtitle-collector/internal/websocket"
)

func New(
	submissionHandler *handlers.SubmissionHandler,
	subtitleHandler *handlers.SubtitleHandler,
	searchHandler *handlers.SearchHandler,
	wsHub *websocket.Hub,
	frontendURL string,
	submitLimiter *middleware.RateLimiter,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Subtitle Routes ────
		r.Route("/subtitles", func(r chi.Router) {
			// Each submission shells out to the extraction tool twice, so it is limited per IP.
			r.With(submitLimiter.Middleware).Post("/", submissionHandler.Submit)
			r.Get("/", subtitleHandler.List)
			r.Get("/{videoID}", subtitleHandler.Get)
			r.Put("/{videoID}", subtitleHandler.Update)
			r.Delete("/{videoID}", subtitleHandler.Delete)
		})

		// ──── Background Submission Status ────
		r.Get("/submissions/{id}", submissionHandler.GetStatus)

		// ──── Video Search ────
		r.Get("/search", searchHandler.Search)

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
