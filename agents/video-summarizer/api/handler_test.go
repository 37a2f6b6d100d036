package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	videosummarizer "video-summarizer/agents/video-summarizer"
	"video-summarizer/agents/video-summarizer/youtube"
	"video-summarizer/internal/models"
	"video-summarizer/shared/ai"
	"video-summarizer/shared/monitoring"
	"video-summarizer/shared/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	err error
}

func (r *stubResolver) Resolve(_ context.Context, rawURL string) (*models.VideoMetadata, error) {
	id, err := youtube.ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}
	if r.err != nil {
		return nil, r.err
	}
	if id != "abc123" {
		return nil, &youtube.MetadataProviderError{Status: http.StatusNotFound, Message: "Video not found", Err: youtube.ErrVideoNotFound}
	}
	return &models.VideoMetadata{ID: id, Title: "Intro to X", Description: "A video about X"}, nil
}

type stubGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
}

func (g *stubGenerator) Name() string { return "stub" }

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.response, g.err
}

type testServer struct {
	resolver  *stubResolver
	summaries *stubGenerator
	answers   *stubGenerator
	monitor   *monitoring.Monitor
	handler   http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		resolver:  &stubResolver{},
		summaries: &stubGenerator{response: "**Main Topics Covered:**\n*Topic A*"},
		answers:   &stubGenerator{response: "X is Topic A."},
		monitor:   monitoring.NewMonitor(),
	}
	orch := videosummarizer.NewOrchestrator(
		ts.resolver,
		ai.NewSummarizer(ts.summaries),
		ai.NewAnswerer(ts.answers),
		search.NewAugmenter(nil, 5),
		ts.monitor,
	)
	ts.handler = SetupRoutes(NewHandler(orch, videosummarizer.NewSessionStore()), ts.monitor)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func TestFetchVideo(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantTitle  string
		wantError  bool
	}{
		{"Watch URL", `{"youtubeURL":"https://www.youtube.com/watch?v=abc123"}`, nil, http.StatusOK, "Intro to X", false},
		{"Short link", `{"youtubeURL":"https://youtu.be/abc123"}`, nil, http.StatusOK, "Intro to X", false},
		{"Invalid URL", `{"youtubeURL":"https://example.com/video"}`, nil, http.StatusBadRequest, "", true},
		{"Missing URL", `{}`, nil, http.StatusBadRequest, "", true},
		{"Bad JSON", `{"youtubeURL":`, nil, http.StatusBadRequest, "", true},
		{"Not found", `{"youtubeURL":"https://youtu.be/zzz999"}`, nil, http.StatusNotFound, "", true},
		{
			"Provider status passthrough",
			`{"youtubeURL":"https://youtu.be/abc123"}`,
			&youtube.MetadataProviderError{Status: http.StatusForbidden, Message: "quota exceeded"},
			http.StatusForbidden, "", true,
		},
		{
			"Transport failure",
			`{"youtubeURL":"https://youtu.be/abc123"}`,
			&youtube.MetadataProviderError{Status: http.StatusBadGateway, Message: "connection reset"},
			http.StatusBadGateway, "", true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.resolver.err = tt.err

			rec, out := ts.do(t, http.MethodPost, "/api/fetch-video", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantError {
				assert.NotEmpty(t, out["error"])
				return
			}
			assert.Equal(t, tt.wantTitle, out["title"])
			assert.Equal(t, "A video about X", out["description"])
		})
	}
}

func TestGenerate(t *testing.T) {
	ts := newTestServer(t)

	rec, out := ts.do(t, http.MethodPost, "/api/generate", `{"title":"Intro to X","description":"A video about X","detailed":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "**Main Topics Covered:**\n*Topic A*", out["output"])
	assert.Len(t, out["sections"], 1)
	require.Len(t, ts.summaries.prompts, 1)
	assert.Contains(t, ts.summaries.prompts[0], "Main topics covered")
}

func TestGenerateErrors(t *testing.T) {
	t.Run("ProviderFailure", func(t *testing.T) {
		ts := newTestServer(t)
		ts.summaries.err = &ai.GenerationProviderError{Provider: "stub", Status: http.StatusTooManyRequests, Message: "rate limited"}

		rec, out := ts.do(t, http.MethodPost, "/api/generate", `{"title":"T","description":"D"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, out["error"], "rate limited")
	})

	t.Run("EmptyVideoText", func(t *testing.T) {
		ts := newTestServer(t)

		rec, _ := ts.do(t, http.MethodPost, "/api/generate", `{"title":"","description":""}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, ts.summaries.prompts)
	})
}

func TestAnswerQuestionEndpoint(t *testing.T) {
	ts := newTestServer(t)
	summary := "**Main Topics Covered:**\n*Topic A*"

	body, err := json.Marshal(map[string]any{"summary": summary, "question": "What is X?", "webSearch": true})
	require.NoError(t, err)

	rec, out := ts.do(t, http.MethodPost, "/api/answer-question", string(body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "X is Topic A.", out["answer"])
	require.Len(t, ts.answers.prompts, 1)
	assert.Contains(t, ts.answers.prompts[0], summary)
	assert.Contains(t, ts.answers.prompts[0], search.UnavailableText)

	rec, _ = ts.do(t, http.MethodPost, "/api/answer-question", `{"summary":"S","question":" "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionFlow(t *testing.T) {
	ts := newTestServer(t)

	rec, out := ts.do(t, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	id, _ := out["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "idle", out["state"])

	base := "/api/sessions/" + id

	rec, out = ts.do(t, http.MethodPost, base+"/questions", `{"question":"What is X?"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NotEmpty(t, out["error"])
	assert.Empty(t, ts.answers.prompts)

	rec, out = ts.do(t, http.MethodPost, base+"/summary", `{"youtubeURL":"https://youtu.be/abc123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", out["state"])
	summary, _ := out["summary"].(map[string]any)
	require.NotNil(t, summary)
	assert.Equal(t, "**Main Topics Covered:**\n*Topic A*", summary["output"])

	rec, out = ts.do(t, http.MethodPost, base+"/questions", `{"question":"What is X?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "X is Topic A.", out["answer"])
	assert.Equal(t, false, out["usedWebSearch"])

	rec, out = ts.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out["history"], 1)

	rec, out = ts.do(t, http.MethodPost, base+"/resummarize", `{"detailed":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, out["history"])

	rec, out = ts.do(t, http.MethodPost, base+"/summary", `{"youtubeURL":"https://vimeo.com/1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, out["error"])

	_, out = ts.do(t, http.MethodGet, base, "")
	assert.Equal(t, "failed", out["state"])
	assert.NotEmpty(t, out["error"])
	assert.Nil(t, out["summary"])

	rec, _ = ts.do(t, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = ts.do(t, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownSession(t *testing.T) {
	ts := newTestServer(t)

	rec, out := ts.do(t, http.MethodPost, "/api/sessions/does-not-exist/questions", `{"question":"Q"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "session not found", out["error"])
}

func TestMiddleware(t *testing.T) {
	ts := newTestServer(t)

	t.Run("CountsRequests", func(t *testing.T) {
		ts.do(t, http.MethodPost, "/api/fetch-video", `{"youtubeURL":"bad"}`)

		var found bool
		for _, c := range ts.monitor.Requests() {
			if c.Route == "POST /api/fetch-video" && c.Status == http.StatusBadRequest {
				found = true
			}
		}
		assert.True(t, found, "expected fetch-video 400 to be counted")
	})

	t.Run("Preflight", func(t *testing.T) {
		rec, _ := ts.do(t, http.MethodOptions, "/api/generate", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Health", func(t *testing.T) {
		rec, _ := ts.do(t, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}

func TestPanicIsCounted(t *testing.T) {
	monitor := monitoring.NewMonitor()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	withMiddleware(mux, monitor).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, monitor.Requests(), monitoring.RequestCount{
		RequestKey: monitoring.RequestKey{Route: "GET /boom", Status: http.StatusInternalServerError},
		Count:      1,
	})
}
