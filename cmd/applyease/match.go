package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/applyease/internal/matching"
	"github.com/jonathan/applyease/internal/similarity"
)

var (
	matchResume  string
	matchJob     jobSource
	matchNoEmbed bool
)

// matchOutput leaves the score out entirely when no embedding was computed.
type matchOutput struct {
	Score    *float64 `json:"score,omitempty"`
	Percent  *float64 `json:"percent,omitempty"`
	Matching []string `json:"matching_words"`
	Missing  []string `json:"missing_words"`
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score a résumé against a job description",
	Long:  "Print the semantic similarity score and the matching and missing technical keywords as JSON.",
	RunE:  runMatch,
}

func init() {
	matchCmd.Flags().StringVarP(&matchResume, "resume", "r", "", "Path to the résumé text (required)")
	matchCmd.Flags().BoolVar(&matchNoEmbed, "no-embed", false, "Skip the embedding score and compare keywords only")
	_ = matchCmd.MarkFlagRequired("resume")
	matchJob.addFlags(matchCmd)
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	resume, err := readInput(matchResume)
	if err != nil {
		return err
	}
	jd, err := matchJob.read(ctx, log)
	if err != nil {
		return err
	}

	matched, missing := matching.Match(resume, jd, cfg.Matching.Limit)
	out := matchOutput{Matching: matched, Missing: missing}
	if !matchNoEmbed {
		scorer, closeCache, err := newScorer(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer func() { _ = closeCache() }()
		score, err := scorer.Score(ctx, resume, jd)
		if err != nil {
			return fmt.Errorf("failed to score: %w", err)
		}
		log.Debug("scored", zap.Float64("score", score))
		percent := similarity.Percent(score)
		out.Score, out.Percent = &score, &percent
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
