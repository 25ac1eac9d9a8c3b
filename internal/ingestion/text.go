// Package ingestion turns résumé and job-description sources into clean plain text.
package ingestion

import (
	"regexp"
	"strings"
)

var (
	innerSpace = regexp.MustCompile(`[ \t\f\v]+`)
	blankRuns  = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes line endings and inner whitespace while keeping the line structure:
// headings, bullets and leading indentation survive, and runs of blank lines collapse to one.
func CleanText(content string) string {
	if content == "" {
		return ""
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}
	content = strings.Join(lines, "\n")
	content = blankRuns.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	body := strings.TrimLeft(line, " \t")
	if body == "" {
		return ""
	}
	if strings.HasPrefix(body, "#") {
		return body
	}
	indent := strings.Repeat(" ", len(line)-len(body))
	return indent + innerSpace.ReplaceAllString(body, " ")
}
