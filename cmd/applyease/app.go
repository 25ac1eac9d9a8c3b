package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/applyease/internal/config"
	"github.com/jonathan/applyease/internal/embedding"
	"github.com/jonathan/applyease/internal/fetch"
	"github.com/jonathan/applyease/internal/ingestion"
	"github.com/jonathan/applyease/internal/llm"
	"github.com/jonathan/applyease/internal/logger"
	"github.com/jonathan/applyease/internal/similarity"
)

var errAborted = errors.New("aborted")

// setup loads the configuration and builds the logger shared by every command.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("creating a logger: %w", err)
	}
	return cfg, log, nil
}

// newScorer builds the embedding-backed scorer. The returned function closes the cache.
func newScorer(ctx context.Context, cfg *config.Config, log *zap.Logger) (*similarity.Scorer, func() error, error) {
	settings := cfg.EmbeddingSettings()
	settings.Logger = log
	emb, closeFn, err := embedding.New(ctx, settings)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return similarity.NewScorer(emb, cfg.Embedding.Dimension), closeFn, nil
}

func newGenerator(ctx context.Context, cfg *config.Config, log *zap.Logger) (llm.Generator, error) {
	settings := cfg.LLMSettings()
	gen, err := llm.NewGenerator(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}
	log.Info("generator ready",
		zap.String("provider", string(settings.Provider)),
		zap.String("model", settings.ModelName()))
	return gen, nil
}

// jobSource describes where a job description comes from.
type jobSource struct {
	file       string
	url        string
	useBrowser bool
}

func (s *jobSource) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.file, "job", "", "Path to the job description (text or saved HTML)")
	cmd.Flags().StringVar(&s.url, "job-url", "", "URL of the job posting to fetch")
	cmd.Flags().BoolVar(&s.useBrowser, "use-browser", false, "Render the posting in headless Chrome when the page is mostly script")
	cmd.MarkFlagsMutuallyExclusive("job", "job-url")
	cmd.MarkFlagsOneRequired("job", "job-url")
}

func (s *jobSource) read(ctx context.Context, log *zap.Logger) (string, error) {
	if s.url != "" {
		return ingestion.FromURL(ctx, s.url, ingestion.URLOptions{
			Fetch:      fetch.DefaultOptions(),
			UseBrowser: s.useBrowser,
			Logger:     log,
		})
	}
	if s.file != "-" {
		return ingestion.FromFile(s.file)
	}
	raw, err := readInput(s.file)
	if err != nil {
		return "", err
	}
	return ingestion.CleanJobDescription(raw)
}

// readInput returns the contents of path, or of stdin when path is "-".
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// confirmOverwrite is replaced in tests.
var confirmOverwrite = func(path string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("%s exists. Overwrite", path),
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// writeOutput writes data to path, asking before replacing an existing file unless force
// is set. An empty path or "-" writes to out.
func writeOutput(out io.Writer, path string, data []byte, force bool) error {
	if path == "" || path == "-" {
		_, err := out.Write(data)
		return err
	}
	if _, err := os.Stat(path); err == nil && !force {
		ok, err := confirmOverwrite(path)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s: %w", path, errAborted)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func isPDFPath(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".pdf")
}
