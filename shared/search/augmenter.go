package search

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"video-summarizer/internal/models"
)

// UnavailableText replaces search context whenever the search provider
// cannot deliver results.
const UnavailableText = "Web search results are unavailable."

const DefaultMaxResults = 5

var (
	// ErrUnavailable is the only error providers report for a missing
	// credential; transport and decode failures are wrapped as-is.
	ErrUnavailable = errors.New("web search unavailable")
	ErrNoResults   = errors.New("web search returned no results")
)

// Provider runs a single web search and returns results in rank order.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]models.SearchSnippet, error)
}

// Augmenter turns a question into plain-text search context. It never fails:
// every problem is logged and replaced by UnavailableText.
type Augmenter struct {
	provider   Provider
	maxResults int
}

func NewAugmenter(provider Provider, maxResults int) *Augmenter {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Augmenter{
		provider:   provider,
		maxResults: maxResults,
	}
}

func (a *Augmenter) Context(ctx context.Context, query string) string {
	snippets, err := a.Search(ctx, query)
	if err != nil {
		log.Printf("Warning: web search failed, continuing without it: %v", err)
		return UnavailableText
	}
	return FormatSnippets(snippets)
}

// Search returns at most maxResults snippets, or an error wrapping
// ErrUnavailable or ErrNoResults.
func (a *Augmenter) Search(ctx context.Context, query string) ([]models.SearchSnippet, error) {
	if a == nil || a.provider == nil {
		return nil, fmt.Errorf("%w: no provider configured", ErrUnavailable)
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", ErrUnavailable)
	}

	snippets, err := a.provider.Search(ctx, query, a.maxResults)
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", a.provider.Name(), err)
	}
	if len(snippets) == 0 {
		return nil, fmt.Errorf("%s search: %w", a.provider.Name(), ErrNoResults)
	}
	if len(snippets) > a.maxResults {
		snippets = snippets[:a.maxResults]
	}
	return snippets, nil
}

// FormatSnippets flattens results into numbered blocks, keeping provider order.
func FormatSnippets(snippets []models.SearchSnippet) string {
	if len(snippets) == 0 {
		return UnavailableText
	}

	var sb strings.Builder
	for i, s := range snippets {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[%d] %s\n%s", i+1, strings.TrimSpace(s.Title), strings.TrimSpace(s.Snippet))
	}
	return sb.String()
}
