// Package mcptools exposes keyword matching and tailoring as MCP tools.
package mcptools

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/jonathan/applyease/internal/keywords"
	"github.com/jonathan/applyease/internal/matching"
	"github.com/jonathan/applyease/internal/similarity"
	"github.com/jonathan/applyease/internal/tailoring"
)

// Deps are the collaborators behind the tools. Scorer may be nil, in which case
// match_resume reports keywords only.
type Deps struct {
	Scorer     *similarity.Scorer
	Tailorer   *tailoring.Tailorer
	MatchLimit int
	Logger     *zap.Logger
}

// ClassifyInput is the input of classify_keywords.
type ClassifyInput struct {
	Text string `json:"text" jsonschema:"Text to extract technical keywords from"`
}

// ClassifyOutput lists keywords in sorted order.
type ClassifyOutput struct {
	Keywords []string `json:"keywords"`
}

// MatchInput is the input of match_resume and tailor_resume.
type MatchInput struct {
	Resume         string `json:"resume" jsonschema:"Full résumé text"`
	JobDescription string `json:"job_description" jsonschema:"Job description text"`
}

// MatchOutput reports keyword overlap and, when embeddings are available, the score.
type MatchOutput struct {
	Score    *float64 `json:"score,omitempty"`
	Percent  *float64 `json:"percent,omitempty"`
	Matching []string `json:"matching_words"`
	Missing  []string `json:"missing_words"`
}

// NewServer creates an MCP server with all tools registered.
func NewServer(version string, deps Deps) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "applyease",
		Version: version,
	}, nil)
	Register(server, deps)
	return server
}

// Register adds the tools to server.
func Register(server *mcp.Server, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.MatchLimit <= 0 {
		deps.MatchLimit = matching.DefaultLimit
	}
	if deps.Tailorer == nil {
		deps.Tailorer = tailoring.New(nil, tailoring.DefaultOptions(), deps.Logger)
	}
	logger := deps.Logger.With(zap.String("component", "mcptools"))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "classify_keywords",
		Description: "Extract the technical keywords (languages, frameworks, cloud services, datastores, tooling) from a text.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, input ClassifyInput) (*mcp.CallToolResult, ClassifyOutput, error) {
		return nil, ClassifyOutput{Keywords: nonNil(keywords.Classify(input.Text).Sorted())}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "match_resume",
		Description: "Compare a résumé with a job description. Returns the keywords they share, the job keywords the résumé lacks, and a semantic similarity score when embeddings are configured.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input MatchInput) (*mcp.CallToolResult, MatchOutput, error) {
		if err := input.validate(); err != nil {
			return nil, MatchOutput{}, err
		}
		matched, missing := matching.Match(input.Resume, input.JobDescription, deps.MatchLimit)
		out := MatchOutput{Matching: nonNil(matched), Missing: nonNil(missing)}
		if deps.Scorer != nil {
			score, err := deps.Scorer.Score(ctx, input.Resume, input.JobDescription)
			if err != nil {
				logger.Warn("similarity scoring failed", zap.Error(err))
				return nil, MatchOutput{}, err
			}
			percent := similarity.Percent(score)
			out.Score, out.Percent = &score, &percent
		}
		return nil, out, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "tailor_resume",
		Description: "Rewrite a résumé to work in the job description's missing technical keywords where the existing experience supports them. Falls back to appending a skills line when generation is unavailable.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input MatchInput) (*mcp.CallToolResult, tailoring.Result, error) {
		if err := input.validate(); err != nil {
			return nil, tailoring.Result{}, err
		}
		res := deps.Tailorer.Tailor(ctx, input.Resume, input.JobDescription)
		res.Matching, res.Missing = nonNil(res.Matching), nonNil(res.Missing)
		return nil, res, nil
	})
}

func (in MatchInput) validate() error {
	if strings.TrimSpace(in.Resume) == "" {
		return errors.New("resume is required")
	}
	if strings.TrimSpace(in.JobDescription) == "" {
		return errors.New("job_description is required")
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
