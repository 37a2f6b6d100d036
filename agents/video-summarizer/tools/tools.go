package tools

import (
	"context"
	"errors"

	videosummarizer "video-summarizer/agents/video-summarizer"
	"video-summarizer/internal/models"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ResolveVideoInput struct {
	YouTubeURL string `json:"youtubeURL" jsonschema:"YouTube video URL (watch, youtu.be, shorts or embed link)"`
}

type ResolveVideoOutput struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelTitle string `json:"channelTitle,omitempty"`
}

type SummarizeVideoInput struct {
	YouTubeURL string `json:"youtubeURL" jsonschema:"YouTube video URL to summarize"`
	Detailed   bool   `json:"detailed,omitempty" jsonschema:"Return a detailed, sectioned summary instead of a concise one"`
}

type SummarizeVideoOutput struct {
	Title    string           `json:"title"`
	Output   string           `json:"output"`
	Sections []models.Section `json:"sections,omitempty"`
}

type AnswerQuestionInput struct {
	Summary   string `json:"summary" jsonschema:"Summary previously returned by summarize_video"`
	Question  string `json:"question" jsonschema:"Question about the video"`
	WebSearch bool   `json:"webSearch,omitempty" jsonschema:"Also consult web search results and point out contradictions"`
}

type AnswerQuestionOutput struct {
	Answer string `json:"answer"`
}

type Tools struct {
	orchestrator *videosummarizer.Orchestrator
}

func New(orchestrator *videosummarizer.Orchestrator) *Tools {
	return &Tools{orchestrator: orchestrator}
}

// Register adds resolve_video, summarize_video and answer_question to server.
func (t *Tools) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_video",
		Description: "Fetch the title and description of a YouTube video from its URL.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ResolveVideoInput) (*mcp.CallToolResult, ResolveVideoOutput, error) {
		out, err := t.ResolveVideo(ctx, input)
		return nil, out, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "summarize_video",
		Description: "Fetch a YouTube video by URL and summarize it from its title and description. Set detailed for main topics, key points, examples, takeaway and applications as titled sections.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input SummarizeVideoInput) (*mcp.CallToolResult, SummarizeVideoOutput, error) {
		out, err := t.SummarizeVideo(ctx, input)
		return nil, out, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "answer_question",
		Description: "Answer a question about a video using its summary, optionally augmented with web search results.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input AnswerQuestionInput) (*mcp.CallToolResult, AnswerQuestionOutput, error) {
		out, err := t.AnswerQuestion(ctx, input)
		return nil, out, err
	})
}

func (t *Tools) ResolveVideo(ctx context.Context, input ResolveVideoInput) (ResolveVideoOutput, error) {
	if input.YouTubeURL == "" {
		return ResolveVideoOutput{}, errors.New("youtubeURL is required")
	}

	metadata, err := t.orchestrator.ResolveVideo(ctx, input.YouTubeURL)
	if err != nil {
		return ResolveVideoOutput{}, err
	}
	return ResolveVideoOutput{
		ID:           metadata.ID,
		Title:        metadata.Title,
		Description:  metadata.Description,
		ChannelTitle: metadata.ChannelTitle,
	}, nil
}

// SummarizeVideo runs resolve → summarize in a throwaway session.
func (t *Tools) SummarizeVideo(ctx context.Context, input SummarizeVideoInput) (SummarizeVideoOutput, error) {
	if input.YouTubeURL == "" {
		return SummarizeVideoOutput{}, errors.New("youtubeURL is required")
	}

	sess := videosummarizer.NewSession(uuid.NewString())
	summary, err := t.orchestrator.GenerateSummary(ctx, sess, input.YouTubeURL, input.Detailed)
	if err != nil {
		return SummarizeVideoOutput{}, err
	}

	out := SummarizeVideoOutput{
		Output:   summary.Text,
		Sections: summary.Sections,
	}
	if snap := sess.Snapshot(); snap.Metadata != nil {
		out.Title = snap.Metadata.Title
	}
	return out, nil
}

func (t *Tools) AnswerQuestion(ctx context.Context, input AnswerQuestionInput) (AnswerQuestionOutput, error) {
	if input.Summary == "" {
		return AnswerQuestionOutput{}, errors.New("summary is required")
	}

	answer, err := t.orchestrator.AnswerQuestion(ctx, input.Summary, input.Question, input.WebSearch)
	if err != nil {
		return AnswerQuestionOutput{}, err
	}
	return AnswerQuestionOutput{Answer: answer}, nil
}

// Serve runs an MCP server on stdio until ctx is cancelled or the client
// disconnects.
func Serve(ctx context.Context, orchestrator *videosummarizer.Orchestrator, version string) error {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "video-summarizer",
		Version: version,
	}, nil)

	New(orchestrator).Register(server)

	return server.Run(ctx, &mcp.StdioTransport{})
}
