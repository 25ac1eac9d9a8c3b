package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// MinContentLength is the shortest extracted text accepted from a plain HTTP fetch.
// Shorter pages are assumed to be rendered client-side.
const MinContentLength = 500

// ShouldUseBrowser reports whether extracted text is too short to be the real posting.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// WithBrowser renders url in headless Chrome and returns the resulting HTML.
// Chrome or Chromium must be installed.
func WithBrowser(ctx context.Context, url string, timeout time.Duration, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &Error{URL: url, Message: "browser rendering failed", Cause: err}
	}

	logger.Debug("rendered page in browser",
		zap.String("url", url),
		zap.Int("bytes", len(html)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	if html == "" {
		return "", &Error{URL: url, Message: fmt.Sprintf("browser returned no HTML after %s", timeout)}
	}
	return html, nil
}
