package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/applyease/internal/rendering"
)

var (
	renderOut   string
	renderForce bool
)

var renderCmd = &cobra.Command{
	Use:   "render [file|-]",
	Short: "Render a text file as a paginated PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Output PDF path (required)")
	renderCmd.Flags().BoolVarP(&renderForce, "force", "f", false, "Overwrite the output file without asking")
	_ = renderCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}
	text, err := readInput(args[0])
	if err != nil {
		return err
	}
	pdf, err := rendering.RenderPDF(text, cfg.Geometry())
	if err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	if err := writeOutput(cmd.OutOrStdout(), renderOut, pdf, renderForce); err != nil {
		return err
	}
	pages := len(rendering.Paginate(text, cfg.Geometry()))
	_, err = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d pages)\n", renderOut, pages)
	return err
}
