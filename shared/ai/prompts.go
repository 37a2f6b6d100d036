package ai

import (
	"fmt"
	"strings"

	"video-summarizer/internal/models"
)

const conciseSummaryPrompt = `Summarize the following YouTube video based on its title and description:

Title: %s

Description: %s

Please provide a concise summary of the video's main points and key takeaways.`

const detailedSummaryPrompt = `Provide a detailed summary of the following YouTube video based on its title and description:

Title: %s

Description: %s

Please include:
1. Main topics covered
2. Key points for each topic
3. Any notable examples or case studies mentioned
4. The overall message or takeaway from the video
5. Potential applications or implications of the content

Format the summary as sections. Start each section with its title on its own line written as **Section Title:** and put every point of that section on its own line starting with "* ".`

const summaryAnswerPrompt = `Based on the following summary of a YouTube video:

%s

Please answer the following question:
%s

Provide a concise and accurate answer based only on the information given in the summary.`

const searchAnswerPrompt = `Based on the following summary of a YouTube video:

%s

And the following web search results:

%s

Please answer the following question:
%s

Synthesize a concise and accurate answer from both the summary and the web search results. If the web search results contradict the summary, point out the contradiction explicitly and explain it.`

// BuildSummaryPrompt returns the same prompt for the same request.
func BuildSummaryPrompt(req models.SummaryRequest) string {
	template := conciseSummaryPrompt
	if req.Detailed {
		template = detailedSummaryPrompt
	}
	return fmt.Sprintf(template, strings.TrimSpace(req.Title), strings.TrimSpace(req.Description))
}

// BuildAnswerPrompt embeds the summary verbatim. searchContext is only used
// when withSearch is set; it may be the search sentinel text.
func BuildAnswerPrompt(summary, question, searchContext string, withSearch bool) string {
	question = strings.TrimSpace(question)
	if !withSearch {
		return fmt.Sprintf(summaryAnswerPrompt, summary, question)
	}
	return fmt.Sprintf(searchAnswerPrompt, summary, strings.TrimSpace(searchContext), question)
}
