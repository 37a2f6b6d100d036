package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"video-summarizer/internal/models"

	"github.com/PuerkitoBio/goquery"
)

const duckDuckGoHTMLURL = "https://html.duckduckgo.com/html/"

// DuckDuckGoProvider scrapes the DuckDuckGo HTML endpoint. It needs no
// credential, which makes it a fallback when no search API key is available.
type DuckDuckGoProvider struct {
	endpoint string
	client   *http.Client
}

func NewDuckDuckGoProvider(endpoint string) *DuckDuckGoProvider {
	if endpoint == "" {
		endpoint = duckDuckGoHTMLURL
	}
	return &DuckDuckGoProvider{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (d *DuckDuckGoProvider) Name() string {
	return "duckduckgo"
}

func (d *DuckDuckGoProvider) Search(ctx context.Context, query string, limit int) ([]models.SearchSnippet, error) {
	form := url.Values{"q": {query}, "kl": {"wt-wt"}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create duckduckgo request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0 Safari/537.36")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query duckduckgo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse duckduckgo response: %w", err)
	}

	return parseDuckDuckGo(doc, limit), nil
}

func parseDuckDuckGo(doc *goquery.Document, limit int) []models.SearchSnippet {
	var snippets []models.SearchSnippet

	doc.Find(".result, .web-result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass("result--ad") {
			return true
		}

		link := s.Find("a.result__a, .result__title a").First()
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return true
		}
		href, _ := link.Attr("href")

		snippets = append(snippets, models.SearchSnippet{
			Title:   title,
			Snippet: strings.TrimSpace(s.Find(".result__snippet").First().Text()),
			Link:    unwrapDuckDuckGoURL(href),
		})
		return limit <= 0 || len(snippets) < limit
	})

	return snippets
}

// unwrapDuckDuckGoURL extracts the target of //duckduckgo.com/l/?uddg=... redirects.
func unwrapDuckDuckGoURL(href string) string {
	if strings.Contains(href, "uddg=") {
		if u, err := url.Parse(href); err == nil {
			if target := u.Query().Get("uddg"); target != "" {
				return target
			}
		}
	}
	return href
}
