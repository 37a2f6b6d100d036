package api

import (
	"net/http"

	"video-summarizer/shared/monitoring"
)

func SetupRoutes(handler *Handler, monitor *monitoring.Monitor) http.Handler {
	mux := http.NewServeMux()

	// Health, status and metrics
	monitoring.NewHealthServer(monitor).Register(mux)

	// Stateless endpoints, the caller holds the summary
	mux.HandleFunc("POST /api/fetch-video", handler.FetchVideo)
	mux.HandleFunc("POST /api/generate", handler.Generate)
	mux.HandleFunc("POST /api/answer-question", handler.AnswerQuestion)

	// Server-held sessions
	mux.HandleFunc("POST /api/sessions", handler.CreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", handler.GetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", handler.DeleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/summary", handler.SessionSummary)
	mux.HandleFunc("POST /api/sessions/{id}/resummarize", handler.Resummarize)
	mux.HandleFunc("POST /api/sessions/{id}/questions", handler.AskQuestion)

	return withMiddleware(mux, monitor)
}

// withMiddleware runs recovery inside logging so a panicking handler is
// still logged and counted as a 500.
func withMiddleware(next http.Handler, monitor *monitoring.Monitor) http.Handler {
	h := RecoveryMiddleware(next)
	h = LoggingMiddleware(monitor, h)
	return CORSMiddleware(h)
}
