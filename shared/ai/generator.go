package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"video-summarizer/shared/config"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Generator sends a single prompt to a hosted LLM and returns its text.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerationProviderError reports a failed or empty LLM call.
type GenerationProviderError struct {
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *GenerationProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s generation failed (%d): %s: %v", e.Provider, e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%s generation failed (%d): %s", e.Provider, e.Status, e.Message)
}

func (e *GenerationProviderError) Unwrap() error {
	return e.Err
}

var (
	ErrMissingCredential = errors.New("LLM API key is not configured")
	ErrEmptyResponse     = errors.New("empty response from LLM")
)

// NewGenerator picks the backend named by cfg.Provider. A missing key does
// not fail here; the returned generator reports it on first use.
func NewGenerator(ctx context.Context, cfg *config.AIConfig) (Generator, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return &unconfiguredGenerator{provider: config.ProviderOpenAI, envVar: "OPENAI_API_KEY"}, nil
		}
		return NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model), nil
	case config.ProviderGemini, "":
		if cfg.GeminiAPIKey == "" {
			return &unconfiguredGenerator{provider: config.ProviderGemini, envVar: "GEMINI_API_KEY"}, nil
		}
		return NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator talks to the Gemini API, or to baseURL when set.
func NewGeminiGenerator(ctx context.Context, apiKey, baseURL, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Name() string {
	return config.ProviderGemini
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", geminiError(err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", &GenerationProviderError{
			Provider: g.Name(),
			Status:   http.StatusInternalServerError,
			Message:  "no content returned, the response may have been filtered",
			Err:      ErrEmptyResponse,
		}
	}
	return text, nil
}

func geminiError(err error) error {
	genErr := &GenerationProviderError{
		Provider: config.ProviderGemini,
		Status:   http.StatusInternalServerError,
		Message:  "request failed",
		Err:      err,
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code > 0 {
			genErr.Status = apiErr.Code
		}
		if apiErr.Message != "" {
			genErr.Message = apiErr.Message
		}
	}
	return genErr
}

type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator also serves OpenAI-compatible endpoints when baseURL is set.
func NewOpenAIGenerator(apiKey, baseURL, model string) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}

	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (o *OpenAIGenerator) Name() string {
	return config.ProviderOpenAI
}

func (o *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", openAIError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[len(resp.Choices)-1].Message.Content) == "" {
		return "", &GenerationProviderError{
			Provider: o.Name(),
			Status:   http.StatusInternalServerError,
			Message:  "no content returned",
			Err:      ErrEmptyResponse,
		}
	}
	return resp.Choices[len(resp.Choices)-1].Message.Content, nil
}

func openAIError(err error) error {
	genErr := &GenerationProviderError{
		Provider: config.ProviderOpenAI,
		Status:   http.StatusInternalServerError,
		Message:  "request failed",
		Err:      err,
	}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		if apiErr.HTTPStatusCode > 0 {
			genErr.Status = apiErr.HTTPStatusCode
		}
		if apiErr.Message != "" {
			genErr.Message = apiErr.Message
		}
	case errors.As(err, &reqErr):
		if reqErr.HTTPStatusCode > 0 {
			genErr.Status = reqErr.HTTPStatusCode
		}
	}
	return genErr
}

type unconfiguredGenerator struct {
	provider string
	envVar   string
}

func (u *unconfiguredGenerator) Name() string {
	return u.provider
}

func (u *unconfiguredGenerator) Generate(context.Context, string) (string, error) {
	return "", &GenerationProviderError{
		Provider: u.provider,
		Status:   http.StatusInternalServerError,
		Message:  u.envVar + " is not set",
		Err:      ErrMissingCredential,
	}
}
