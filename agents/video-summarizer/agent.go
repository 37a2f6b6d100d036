package videosummarizer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"video-summarizer/agents/video-summarizer/youtube"
	"video-summarizer/internal/models"
	"video-summarizer/shared/ai"
	"video-summarizer/shared/monitoring"
	"video-summarizer/shared/search"
)

const (
	OpFetchVideo     = "fetch-video"
	OpGenerate       = "generate"
	OpAnswerQuestion = "answer-question"
	OpSessionSummary = "session-summary"
	OpResummarize    = "resummarize"
	OpSessionAsk     = "session-question"
)

type VideoResolver interface {
	Resolve(ctx context.Context, rawURL string) (*models.VideoMetadata, error)
}

type SummaryGenerator interface {
	Summarize(ctx context.Context, req models.SummaryRequest) (*models.Summary, error)
}

type QuestionAnswerer interface {
	Answer(ctx context.Context, req ai.AnswerRequest) (string, error)
}

// SearchAugmenter never fails; it returns search.UnavailableText instead.
type SearchAugmenter interface {
	Context(ctx context.Context, query string) string
}

// Orchestrator sequences resolve → summarize and answers questions against
// a held summary.
type Orchestrator struct {
	resolver   VideoResolver
	summarizer SummaryGenerator
	answerer   QuestionAnswerer
	augmenter  SearchAugmenter
	monitor    *monitoring.Monitor
}

func NewOrchestrator(resolver VideoResolver, summarizer SummaryGenerator, answerer QuestionAnswerer, augmenter SearchAugmenter, monitor *monitoring.Monitor) *Orchestrator {
	if monitor == nil {
		monitor = monitoring.NewMonitor()
	}
	return &Orchestrator{
		resolver:   resolver,
		summarizer: summarizer,
		answerer:   answerer,
		augmenter:  augmenter,
		monitor:    monitor,
	}
}

func (o *Orchestrator) Name() string {
	return "Video Summarizer"
}

// ResolveVideo fetches title and description for a YouTube URL.
func (o *Orchestrator) ResolveVideo(ctx context.Context, rawURL string) (*models.VideoMetadata, error) {
	start := time.Now()
	metadata, err := o.resolver.Resolve(ctx, rawURL)
	return metadata, o.finish(OpFetchVideo, start, err)
}

func (o *Orchestrator) Summarize(ctx context.Context, req models.SummaryRequest) (*models.Summary, error) {
	start := time.Now()
	summary, err := o.summarizer.Summarize(ctx, req)
	return summary, o.finish(OpGenerate, start, err)
}

// AnswerQuestion answers against a caller-held summary.
func (o *Orchestrator) AnswerQuestion(ctx context.Context, summary, question string, webSearch bool) (string, error) {
	start := time.Now()
	answer, err := o.answer(ctx, summary, question, webSearch)
	return answer, o.finish(OpAnswerQuestion, start, err)
}

// GenerateSummary runs resolve → summarize for the session. Any in-flight
// invocation on the same session is cancelled, and the held summary,
// video and history are cleared before the chain starts.
func (o *Orchestrator) GenerateSummary(ctx context.Context, sess *Session, rawURL string, detailed bool) (*models.Summary, error) {
	start := time.Now()
	rawURL = strings.TrimSpace(rawURL)

	ctx, cancel, gen := sess.begin(ctx, rawURL)
	defer cancel()

	summary, err := o.generate(ctx, sess, gen, rawURL, detailed)
	return summary, o.finish(OpSessionSummary, start, err)
}

func (o *Orchestrator) generate(ctx context.Context, sess *Session, gen uint64, rawURL string, detailed bool) (*models.Summary, error) {
	if rawURL == "" {
		return nil, o.abort(sess, gen, fmt.Errorf("%w: empty URL", youtube.ErrInvalidReference))
	}

	metadata, err := runStage(ctx, sess, gen, StateResolvingMetadata, rawURL, o.resolver.Resolve)
	if err != nil {
		return nil, o.abort(sess, gen, err)
	}
	if !sess.setMetadata(gen, metadata) {
		return nil, ErrSuperseded
	}

	return o.summarizeStage(ctx, sess, gen, metadata, detailed)
}

// Resummarize re-runs only the summarize stage on the held video, for
// example to switch between concise and detailed. It replaces the summary
// and clears the question history.
func (o *Orchestrator) Resummarize(ctx context.Context, sess *Session, detailed bool) (*models.Summary, error) {
	start := time.Now()

	ctx, cancel, gen, metadata, ok := sess.beginResummarize(ctx)
	if !ok {
		return nil, o.finish(OpResummarize, start, ErrNoActiveSummary)
	}
	defer cancel()

	summary, err := o.summarizeStage(ctx, sess, gen, metadata, detailed)
	return summary, o.finish(OpResummarize, start, err)
}

func (o *Orchestrator) summarizeStage(ctx context.Context, sess *Session, gen uint64, metadata *models.VideoMetadata, detailed bool) (*models.Summary, error) {
	req := models.SummaryRequest{
		Title:       metadata.Title,
		Description: metadata.Description,
		Detailed:    detailed,
	}

	summary, err := runStage(ctx, sess, gen, StateGeneratingSummary, req, o.summarizer.Summarize)
	if err != nil {
		return nil, o.abort(sess, gen, err)
	}
	if !sess.complete(gen, summary) {
		return nil, ErrSuperseded
	}
	return summary, nil
}

// AskQuestion answers against the session's held summary and appends the
// pair to its history. Without a summary it fails with ErrNoActiveSummary
// before any LLM call.
func (o *Orchestrator) AskQuestion(ctx context.Context, sess *Session, question string, webSearch bool) (*models.QuestionAnswer, error) {
	start := time.Now()
	qa, err := o.ask(ctx, sess, question, webSearch)
	return qa, o.finish(OpSessionAsk, start, err)
}

func (o *Orchestrator) ask(ctx context.Context, sess *Session, question string, webSearch bool) (*models.QuestionAnswer, error) {
	summary, _, gen, ok := sess.heldSummary()
	if !ok {
		return nil, ErrNoActiveSummary
	}

	answer, err := o.answer(ctx, summary.Text, question, webSearch)
	if err != nil {
		sess.recordError(gen, err)
		return nil, err
	}

	qa := models.QuestionAnswer{
		Question:      strings.TrimSpace(question),
		Answer:        answer,
		UsedWebSearch: webSearch,
		AskedAt:       time.Now(),
	}
	if !sess.appendAnswer(gen, qa) {
		return nil, ErrSuperseded
	}
	return &qa, nil
}

func (o *Orchestrator) answer(ctx context.Context, summary, question string, webSearch bool) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ai.ErrEmptyQuestion
	}

	req := ai.AnswerRequest{
		Summary:    summary,
		Question:   question,
		WithSearch: webSearch,
	}
	if webSearch {
		req.SearchContext = search.UnavailableText
		if o.augmenter != nil {
			req.SearchContext = o.augmenter.Context(ctx, question)
		}
	}

	return o.answerer.Answer(ctx, req)
}

// runStage moves the session into state, runs fn and discards its result if
// the invocation was superseded while fn was running.
func runStage[In, Out any](ctx context.Context, sess *Session, gen uint64, state State, in In, fn func(context.Context, In) (Out, error)) (Out, error) {
	var zero Out
	if !sess.advance(gen, state) {
		return zero, ErrSuperseded
	}

	out, err := fn(ctx, in)
	if !sess.current(gen) {
		if err == nil {
			log.Printf("Warning: dropping superseded %s result for session %s", state, sess.ID())
		}
		return zero, ErrSuperseded
	}
	if err != nil {
		return zero, err
	}
	return out, nil
}

// abort marks the invocation failed unless it was superseded.
func (o *Orchestrator) abort(sess *Session, gen uint64, err error) error {
	if errors.Is(err, ErrSuperseded) || !sess.fail(gen, err) {
		return ErrSuperseded
	}
	return err
}

// finish is the single place orchestration errors are logged and recorded.
func (o *Orchestrator) finish(op string, start time.Time, err error) error {
	duration := time.Since(start)
	if err == nil {
		o.monitor.RecordSuccess(op, duration)
		return nil
	}

	status := StatusFor(err)
	log.Printf("%s failed (status %d): %v", op, status, err)

	if status >= http.StatusInternalServerError {
		o.monitor.RecordCriticalFailure(op, err, duration)
	} else {
		o.monitor.RecordPartialFailure(op, err, duration)
	}
	return err
}
