package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	videosummarizer "video-summarizer/agents/video-summarizer"
	"video-summarizer/internal/models"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	orchestrator *videosummarizer.Orchestrator
	sessions     *videosummarizer.SessionStore
}

func NewHandler(orchestrator *videosummarizer.Orchestrator, sessions *videosummarizer.SessionStore) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		sessions:     sessions,
	}
}

type fetchVideoResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type answerQuestionRequest struct {
	Summary   string `json:"summary"`
	Question  string `json:"question"`
	WebSearch bool   `json:"webSearch"`
}

type answerResponse struct {
	Answer string `json:"answer"`
}

type sessionSummaryRequest struct {
	YouTubeURL string `json:"youtubeURL"`
	Detailed   bool   `json:"detailed"`
}

type resummarizeRequest struct {
	Detailed bool `json:"detailed"`
}

type sessionQuestionRequest struct {
	Question  string `json:"question"`
	WebSearch bool   `json:"webSearch"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// FetchVideo handles POST /api/fetch-video
func (h *Handler) FetchVideo(w http.ResponseWriter, r *http.Request) {
	var req models.VideoReference
	if !h.decode(w, r, &req) {
		return
	}

	metadata, err := h.orchestrator.ResolveVideo(r.Context(), req.URL)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, fetchVideoResponse{
		Title:       metadata.Title,
		Description: metadata.Description,
	})
}

// Generate handles POST /api/generate
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.SummaryRequest
	if !h.decode(w, r, &req) {
		return
	}

	summary, err := h.orchestrator.Summarize(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, summary)
}

// AnswerQuestion handles POST /api/answer-question
func (h *Handler) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	var req answerQuestionRequest
	if !h.decode(w, r, &req) {
		return
	}

	answer, err := h.orchestrator.AnswerQuestion(r.Context(), req.Summary, req.Question, req.WebSearch)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, answerResponse{Answer: answer})
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Create()
	h.respondJSON(w, http.StatusCreated, sess.Snapshot())
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, sess.Snapshot())
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.PathValue("id")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SessionSummary resolves a video and summarizes it into the session,
// replacing whatever the session held.
func (h *Handler) SessionSummary(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req sessionSummaryRequest
	if !h.decode(w, r, &req) {
		return
	}

	if _, err := h.orchestrator.GenerateSummary(r.Context(), sess, req.YouTubeURL, req.Detailed); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, sess.Snapshot())
}

func (h *Handler) Resummarize(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req resummarizeRequest
	if !h.decode(w, r, &req) {
		return
	}

	if _, err := h.orchestrator.Resummarize(r.Context(), sess, req.Detailed); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, sess.Snapshot())
}

func (h *Handler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req sessionQuestionRequest
	if !h.decode(w, r, &req) {
		return
	}

	qa, err := h.orchestrator.AskQuestion(r.Context(), sess, req.Question, req.WebSearch)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, qa)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*videosummarizer.Session, bool) {
	sess, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		h.respondError(w, err)
		return nil, false
	}
	return sess, true
}

// decode reads a JSON body into dst. An empty body leaves dst zeroed.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	h.respondJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("Invalid request body: %v", err)})
	return false
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	h.respondJSON(w, videosummarizer.StatusFor(err), errorResponse{Error: err.Error()})
}
