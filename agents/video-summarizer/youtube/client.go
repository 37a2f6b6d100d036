package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"video-summarizer/internal/models"
	"video-summarizer/shared/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

var (
	// ErrVideoNotFound is wrapped by a 404 MetadataProviderError.
	ErrVideoNotFound = errors.New("video not found")
	// ErrMissingCredential is wrapped when neither an API key nor a token file is configured.
	ErrMissingCredential = errors.New("YouTube API key is not configured")
)

// MetadataProviderError carries the status and message reported by the
// YouTube Data API, or the status we assign to a local failure.
type MetadataProviderError struct {
	Status  int
	Message string
	Err     error
}

func (e *MetadataProviderError) Error() string {
	return fmt.Sprintf("YouTube API error: %d %s", e.Status, e.Message)
}

func (e *MetadataProviderError) Unwrap() error {
	return e.Err
}

type Client struct {
	service *youtube.Service
	config  *config.YouTubeConfig
}

// NewClient builds a YouTube Data API client. Without any credential the
// client is still returned; every lookup then fails with ErrMissingCredential.
func NewClient(ctx context.Context, cfg *config.YouTubeConfig) (*Client, error) {
	opts := []option.ClientOption{}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	switch {
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	case cfg.TokenFile != "":
		httpClient, err := oauthHTTPClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to set up YouTube OAuth client: %w", err)
		}
		opts = append(opts, option.WithHTTPClient(httpClient))
	default:
		log.Println("Warning: no YouTube credential configured, video lookups will fail")
		return &Client{config: cfg}, nil
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Client{
		service: service,
		config:  cfg,
	}, nil
}

// Resolve extracts the video id from rawURL and fetches its snippet.
func (c *Client) Resolve(ctx context.Context, rawURL string) (*models.VideoMetadata, error) {
	videoID, err := ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}
	return c.FetchMetadata(ctx, videoID)
}

func (c *Client) FetchMetadata(ctx context.Context, videoID string) (*models.VideoMetadata, error) {
	if c.service == nil {
		return nil, &MetadataProviderError{
			Status:  http.StatusInternalServerError,
			Message: ErrMissingCredential.Error(),
			Err:     ErrMissingCredential,
		}
	}

	resp, err := c.service.Videos.List([]string{"snippet"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, providerError(ctx, err)
	}

	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return nil, &MetadataProviderError{
			Status:  http.StatusNotFound,
			Message: fmt.Sprintf("video %s not found", videoID),
			Err:     ErrVideoNotFound,
		}
	}

	item := resp.Items[0]
	metadata := &models.VideoMetadata{
		ID:           item.Id,
		Title:        item.Snippet.Title,
		Description:  item.Snippet.Description,
		ChannelTitle: item.Snippet.ChannelTitle,
	}
	if metadata.ID == "" {
		metadata.ID = videoID
	}
	if publishedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
		metadata.PublishedAt = publishedAt
	}

	return metadata, nil
}

func providerError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = http.StatusText(apiErr.Code)
		}
		return &MetadataProviderError{Status: apiErr.Code, Message: message, Err: err}
	}

	return &MetadataProviderError{
		Status:  http.StatusBadGateway,
		Message: "YouTube API request failed",
		Err:     err,
	}
}

func oauthHTTPClient(ctx context.Context, cfg *config.YouTubeConfig) (*http.Client, error) {
	tok, err := tokenFromFile(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load token file %s: %w", cfg.TokenFile, err)
	}
	if tok.RefreshToken == "" && !tok.Valid() {
		return nil, fmt.Errorf("token in %s is expired and has no refresh token", cfg.TokenFile)
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{youtube.YoutubeReadonlyScope},
		Endpoint:     google.Endpoint,
	}

	log.Printf("Loaded YouTube token from file (expires: %v)", tok.Expiry)
	return oauth2.NewClient(ctx, &tokenSaver{
		config:    oauthConfig,
		token:     tok,
		tokenFile: cfg.TokenFile,
	}), nil
}

// tokenSaver persists refreshed tokens back to the token file.
type tokenSaver struct {
	config    *oauth2.Config
	token     *oauth2.Token
	tokenFile string
	mu        sync.Mutex
}

func (ts *tokenSaver) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	newToken, err := ts.config.TokenSource(context.Background(), ts.token).Token()
	if err != nil {
		return nil, err
	}

	if newToken.AccessToken != ts.token.AccessToken {
		log.Println("YouTube token refreshed, saving to file")
		ts.token = newToken
		if err := saveToken(ts.tokenFile, newToken); err != nil {
			log.Printf("Warning: Failed to save refreshed token: %v", err)
		}
	}

	return newToken, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("unable to create token directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode oauth token: %w", err)
	}
	return nil
}
