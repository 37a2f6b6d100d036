package videosummarizer

import (
	"context"
	"errors"
	"net/http"

	"video-summarizer/agents/video-summarizer/youtube"
	"video-summarizer/shared/ai"
)

var (
	// ErrNoActiveSummary is returned when a question or re-summarize is
	// requested before a summary has been generated.
	ErrNoActiveSummary = errors.New("no active summary, generate one first")
	// ErrSuperseded is returned to an invocation whose result was discarded
	// because a newer one started on the same session.
	ErrSuperseded      = errors.New("superseded by a newer request")
	ErrSessionNotFound = errors.New("session not found")
)

// StatusFor maps an orchestration error to an HTTP status code.
func StatusFor(err error) int {
	var metaErr *youtube.MetadataProviderError
	var genErr *ai.GenerationProviderError

	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, youtube.ErrInvalidReference),
		errors.Is(err, ai.ErrEmptyVideoText),
		errors.Is(err, ai.ErrEmptyQuestion),
		errors.Is(err, ai.ErrEmptySummary):
		return http.StatusBadRequest
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNoActiveSummary), errors.Is(err, ErrSuperseded):
		return http.StatusConflict
	case errors.As(err, &metaErr):
		if metaErr.Status >= http.StatusBadRequest {
			return metaErr.Status
		}
		return http.StatusBadGateway
	case errors.As(err, &genErr):
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
