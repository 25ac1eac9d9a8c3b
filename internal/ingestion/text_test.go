package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"only whitespace", "   \n\t\n  ", ""},
		{"headings", "  # Title\n## Subtitle\nContent here", "# Title\n## Subtitle\nContent here"},
		{"bullets", "- Item 1\n- Item   2\n* Item 3", "- Item 1\n- Item 2\n* Item 3"},
		{"inner whitespace", "Line    with\t\tmultiple    spaces", "Line with multiple spaces"},
		{"blank runs", "Line 1\n\n\n\n\nLine 2", "Line 1\n\nLine 2"},
		{"line endings", "Line 1\r\nLine 2\rLine 3", "Line 1\nLine 2\nLine 3"},
		{"indentation", "Skills\n    Go,   Python", "Skills\n    Go, Python"},
		{"special characters", "C++ / C# / Node.js", "C++ / C# / Node.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}
}

func TestCleanText_Deterministic(t *testing.T) {
	input := "Senior   Engineer\n\n\n\n- Go\n- AWS  "
	assert.Equal(t, CleanText(input), CleanText(input))
}

func TestCleanJobDescription_HTML(t *testing.T) {
	text, err := CleanJobDescription(`<div class="job-description"><p>Python and AWS</p><ul><li>Docker</li></ul></div>`)
	require.NoError(t, err)
	assert.Equal(t, "Python and AWS\n- Docker", text)
}

func TestCleanJobDescription_Empty(t *testing.T) {
	_, err := CleanJobDescription("  \n ")
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.txt")
	require.NoError(t, os.WriteFile(path, []byte("Backend   role\r\nKubernetes"), 0o644))

	text, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Backend role\nKubernetes", text)

	_, err = FromFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestFromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
			<nav>Jobs home</nav>
			<div class="job-description"><h2>Requirements</h2><p>Go, gRPC and Postgres</p></div>
			<form>Apply</form>
		</body></html>`))
	}))
	defer server.Close()

	text, err := FromURL(context.Background(), server.URL, URLOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Requirements\nGo, gRPC and Postgres", text)
}

func TestFromURL_EmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><script>render()</script></body></html>`))
	}))
	defer server.Close()

	_, err := FromURL(context.Background(), server.URL, URLOptions{})
	assert.ErrorIs(t, err, ErrEmptyContent)
}
