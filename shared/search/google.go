package search

import (
	"context"
	"fmt"
	"strings"

	"video-summarizer/internal/models"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// GoogleProvider queries a Google Programmable Search Engine.
type GoogleProvider struct {
	service  *customsearch.Service
	engineID string
}

// NewGoogleProvider returns a provider even without credentials so that the
// absence degrades to UnavailableText at search time.
func NewGoogleProvider(ctx context.Context, apiKey, engineID, endpoint string) (*GoogleProvider, error) {
	if apiKey == "" {
		return &GoogleProvider{engineID: engineID}, nil
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	service, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create custom search service: %w", err)
	}

	return &GoogleProvider{service: service, engineID: engineID}, nil
}

func (g *GoogleProvider) Name() string {
	return "google"
}

func (g *GoogleProvider) Search(ctx context.Context, query string, limit int) ([]models.SearchSnippet, error) {
	if g.service == nil {
		return nil, fmt.Errorf("%w: GOOGLE_SEARCH_API_KEY is not set", ErrUnavailable)
	}
	if g.engineID == "" {
		return nil, fmt.Errorf("%w: GOOGLE_SEARCH_ENGINE_ID is not set", ErrUnavailable)
	}

	resp, err := g.service.Cse.List().
		Cx(g.engineID).
		Q(query).
		Num(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("custom search request failed: %w", err)
	}

	snippets := make([]models.SearchSnippet, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil || strings.TrimSpace(item.Title) == "" {
			continue
		}
		snippets = append(snippets, models.SearchSnippet{
			Title:   item.Title,
			Snippet: item.Snippet,
			Link:    item.Link,
		})
	}
	return snippets, nil
}
