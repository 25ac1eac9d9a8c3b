package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/applyease/internal/llm"
	"github.com/jonathan/applyease/internal/rendering"
	"github.com/jonathan/applyease/internal/tailoring"
)

var (
	tailorResume string
	tailorJob    jobSource
	tailorOut    string
	tailorForce  bool
	tailorReport bool
)

var tailorCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Rewrite a résumé toward a job description",
	Long:  "Tailor a résumé to a job description's missing keywords. Writes text, or a PDF when --out ends in .pdf.",
	RunE:  runTailor,
}

func init() {
	tailorCmd.Flags().StringVarP(&tailorResume, "resume", "r", "", "Path to the résumé text (required)")
	tailorCmd.Flags().StringVarP(&tailorOut, "out", "o", "", "Output file (default stdout)")
	tailorCmd.Flags().BoolVarP(&tailorForce, "force", "f", false, "Overwrite the output file without asking")
	tailorCmd.Flags().BoolVar(&tailorReport, "report", false, "Print the keyword report as JSON to stderr")
	_ = tailorCmd.MarkFlagRequired("resume")
	tailorJob.addFlags(tailorCmd)
	rootCmd.AddCommand(tailorCmd)
}

func runTailor(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	resume, err := readInput(tailorResume)
	if err != nil {
		return err
	}
	jd, err := tailorJob.read(ctx, log)
	if err != nil {
		return err
	}

	gen, err := newGenerator(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = llm.Close(gen) }()

	result := tailoring.New(gen, cfg.TailoringOptions(), log).Tailor(ctx, resume, jd)
	log.Info("tailored resume",
		zap.Bool("generated", result.Generated),
		zap.Int("missing", len(result.Missing)))

	if tailorReport {
		enc := json.NewEncoder(cmd.ErrOrStderr())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	}

	data := []byte(result.ResumeText + "\n")
	if isPDFPath(tailorOut) {
		data, err = rendering.RenderPDF(result.ResumeText, cfg.Geometry())
		if err != nil {
			return fmt.Errorf("failed to render PDF: %w", err)
		}
	}
	return writeOutput(cmd.OutOrStdout(), tailorOut, data, tailorForce)
}
