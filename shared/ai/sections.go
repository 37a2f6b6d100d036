package ai

import (
	"regexp"
	"strings"

	"video-summarizer/internal/models"
)

var (
	// **Title:** or **Title**, optionally numbered or led by a heading marker.
	boldTitlePattern = regexp.MustCompile(`^(?:#{1,6}\s*)?(?:\d+[.)]\s*)?\*\*(.+?)\*\*\s*:?\s*$`)
	headingPattern   = regexp.MustCompile(`^#{1,6}\s+(.+?)\s*:?\s*$`)
	bulletPattern    = regexp.MustCompile(`^(?:[*\-•]|\d+[.)])\s+(.+)$`)
	// *Topic A* with no space after the opening marker.
	emphasisBulletPattern = regexp.MustCompile(`^\*([^*\s][^*]*)\*$`)
)

// ParseSections splits LLM output into titled bullet sections. Output with
// no title markers becomes a single unnamed section holding the whole text.
// Empty text yields nil.
func ParseSections(text string) []models.Section {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sections []models.Section
	current := -1
	titled := false

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if title, ok := sectionTitle(line); ok {
			sections = append(sections, models.Section{Title: title})
			current = len(sections) - 1
			titled = true
			continue
		}

		if current < 0 {
			sections = append(sections, models.Section{})
			current = len(sections) - 1
		}
		sections[current].Bullets = append(sections[current].Bullets, bulletText(line))
	}

	if !titled {
		return []models.Section{{Bullets: []string{text}}}
	}
	return sections
}

func sectionTitle(line string) (string, bool) {
	if m := boldTitlePattern.FindStringSubmatch(line); m != nil {
		title := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(m[1]), ":"))
		if title != "" {
			return title, true
		}
	}
	if m := headingPattern.FindStringSubmatch(line); m != nil {
		title := strings.Trim(strings.TrimSpace(m[1]), "*")
		title = strings.TrimSpace(strings.TrimSuffix(title, ":"))
		if title != "" {
			return title, true
		}
	}
	return "", false
}

func bulletText(line string) string {
	if m := emphasisBulletPattern.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := bulletPattern.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1])
	}
	return line
}
