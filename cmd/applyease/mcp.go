package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/applyease/internal/llm"
	"github.com/jonathan/applyease/internal/mcptools"
	"github.com/jonathan/applyease/internal/tailoring"
)

var mcpNoEmbed bool

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the matching and tailoring tools over MCP on stdio",
	RunE:  runMCP,
}

func init() {
	mcpCmd.Flags().BoolVar(&mcpNoEmbed, "no-embed", false, "Do not score similarity in match_resume")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	deps := mcptools.Deps{MatchLimit: cfg.Matching.Limit, Logger: log}
	if !mcpNoEmbed {
		scorer, closeCache, err := newScorer(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer func() { _ = closeCache() }()
		deps.Scorer = scorer
	}
	gen, err := newGenerator(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = llm.Close(gen) }()
	deps.Tailorer = tailoring.New(gen, cfg.TailoringOptions(), log)

	log.Info("serving MCP on stdio", zap.String("version", version))
	return mcptools.NewServer(version, deps).Run(ctx, &mcp.StdioTransport{})
}
