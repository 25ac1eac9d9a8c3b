package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/applyease/internal/fetch"
)

// ErrEmptyContent is returned when a source yields no text.
var ErrEmptyContent = errors.New("no text content")

// FromFile reads and cleans a plain-text or HTML file.
func FromFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %w", err)
		}
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return CleanJobDescription(string(content))
}

// CleanJobDescription cleans pasted text. HTML input is reduced to its main text first.
func CleanJobDescription(text string) (string, error) {
	if fetch.LooksLikeHTML(text) {
		extracted, err := fetch.ExtractMainText(text, fetch.JobPostingSelectors())
		if err != nil {
			return "", err
		}
		text = extracted
	}
	cleaned := CleanText(text)
	if cleaned == "" {
		return "", ErrEmptyContent
	}
	return cleaned, nil
}

// URLOptions configures FromURL.
type URLOptions struct {
	Fetch *fetch.Options
	// UseBrowser renders the page in headless Chrome when the HTTP response is too thin.
	UseBrowser     bool
	BrowserTimeout time.Duration
	Logger         *zap.Logger
}

// FromURL downloads a job posting and returns its cleaned text, using selectors tuned for
// the hosting job board.
func FromURL(ctx context.Context, rawURL string, opts URLOptions) (string, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	platform := fetch.DetectPlatform(rawURL)
	logger = logger.With(zap.String("url", rawURL), zap.String("platform", string(platform)))

	result, err := fetch.URL(ctx, rawURL, opts.Fetch)
	if err != nil {
		return "", err
	}
	text, err := extract(result.HTML, platform)
	if err != nil {
		return "", err
	}
	logger.Debug("extracted job posting", zap.Int("chars", len(text)))

	if opts.UseBrowser && fetch.ShouldUseBrowser(text) {
		timeout := opts.BrowserTimeout
		if timeout <= 0 {
			timeout = fetch.DefaultTimeout
		}
		logger.Info("page content too short, rendering in browser", zap.Int("chars", len(text)))
		html, err := fetch.WithBrowser(ctx, rawURL, timeout, logger)
		if err != nil {
			logger.Warn("browser rendering failed, keeping HTTP content", zap.Error(err))
		} else if rendered, err := extract(html, platform); err == nil && len(rendered) > len(text) {
			text = rendered
		}
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return "", fmt.Errorf("%s: %w", rawURL, ErrEmptyContent)
	}
	return cleaned, nil
}

func extract(html string, platform fetch.Platform) (string, error) {
	return fetch.ExtractMainText(html, fetch.ContentSelectors(platform), fetch.NoiseSelectors(platform)...)
}
