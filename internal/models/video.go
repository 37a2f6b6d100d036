package models

import "time"

// VideoReference is the raw URL a user pasted.
type VideoReference struct {
	URL string `json:"youtubeURL"`
}

type VideoMetadata struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ChannelTitle string    `json:"channelTitle,omitempty"`
	PublishedAt  time.Time `json:"publishedAt,omitempty"`
}

type SummaryRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Detailed    bool   `json:"detailed,omitempty"`
}

// Summary is the generated text plus its parsed section structure.
// Sections is always derived from Text and never nil for non-empty text.
type Summary struct {
	Text     string    `json:"output"`
	Detailed bool      `json:"detailed"`
	Sections []Section `json:"sections,omitempty"`
}

// Section is one titled block of a summary. An empty Title marks the
// unnamed section used when the text carries no title markers.
type Section struct {
	Title   string   `json:"title,omitempty"`
	Bullets []string `json:"bullets"`
}

type SearchSnippet struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link,omitempty"`
}

type QuestionAnswer struct {
	Question      string    `json:"question"`
	Answer        string    `json:"answer"`
	UsedWebSearch bool      `json:"usedWebSearch"`
	AskedAt       time.Time `json:"askedAt"`
}
