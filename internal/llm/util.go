package llm

import (
	"regexp"
	"strings"
)

var fenceLang = regexp.MustCompile(`^[a-z0-9+#-]{1,15}$`)

// CleanResponse removes a markdown code fence around generated text and trims whitespace.
// Models often fence their answer even when asked for plain text.
func CleanResponse(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		if fenceLang.MatchString(strings.TrimSpace(text[:idx])) {
			text = text[idx+1:]
		}
	} else {
		text = strings.TrimSuffix(text, "```")
		return strings.TrimSpace(text)
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
