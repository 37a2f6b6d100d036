package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"video-summarizer/internal/models"
)

var (
	ErrEmptyVideoText = errors.New("video has neither title nor description")
	ErrEmptyQuestion  = errors.New("question cannot be empty")
	ErrEmptySummary   = errors.New("summary cannot be empty")
)

type Summarizer struct {
	generator Generator
}

func NewSummarizer(generator Generator) *Summarizer {
	return &Summarizer{generator: generator}
}

// Summarize returns the raw LLM text together with its parsed sections. It
// does not require the text to follow the requested section format.
func (s *Summarizer) Summarize(ctx context.Context, req models.SummaryRequest) (*models.Summary, error) {
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Description) == "" {
		return nil, ErrEmptyVideoText
	}

	text, err := s.generator.Generate(ctx, BuildSummaryPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary: %w", err)
	}

	return &models.Summary{
		Text:     text,
		Detailed: req.Detailed,
		Sections: ParseSections(text),
	}, nil
}

// AnswerRequest carries an already fetched search context; the Answerer
// never searches by itself.
type AnswerRequest struct {
	Summary       string
	Question      string
	SearchContext string
	WithSearch    bool
}

type Answerer struct {
	generator Generator
}

func NewAnswerer(generator Generator) *Answerer {
	return &Answerer{generator: generator}
}

// Answer returns the provider text verbatim.
func (a *Answerer) Answer(ctx context.Context, req AnswerRequest) (string, error) {
	if strings.TrimSpace(req.Question) == "" {
		return "", ErrEmptyQuestion
	}
	if strings.TrimSpace(req.Summary) == "" {
		return "", ErrEmptySummary
	}

	answer, err := a.generator.Generate(ctx, BuildAnswerPrompt(req.Summary, req.Question, req.SearchContext, req.WithSearch))
	if err != nil {
		return "", fmt.Errorf("failed to answer question: %w", err)
	}
	return answer, nil
}
