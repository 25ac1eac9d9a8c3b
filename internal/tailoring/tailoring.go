// Package tailoring rewrites a résumé toward a job description's missing vocabulary,
// falling back to a deterministic edit when generation yields nothing.
package tailoring

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jonathan/applyease/internal/llm"
	"github.com/jonathan/applyease/internal/logger"
	"github.com/jonathan/applyease/internal/matching"
	"github.com/jonathan/applyease/internal/prompts"
)

// SkillsHighlightPrefix introduces the fallback keyword block.
const SkillsHighlightPrefix = "\n\nSkills Highlight: "

// Generator completes a prompt. Implementations may fail or return empty text.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Options bound the prompt built for a tailoring request.
type Options struct {
	ClipChars      int
	MaxTargets     int
	MaxPromptChars int
	MatchLimit     int
}

// DefaultOptions returns the standard prompt bounds.
func DefaultOptions() Options {
	return Options{
		ClipChars:      4000,
		MaxTargets:     20,
		MaxPromptChars: 12000,
		MatchLimit:     matching.DefaultLimit,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ClipChars <= 0 {
		o.ClipChars = d.ClipChars
	}
	if o.MaxTargets <= 0 {
		o.MaxTargets = d.MaxTargets
	}
	if o.MaxPromptChars <= 0 {
		o.MaxPromptChars = d.MaxPromptChars
	}
	if o.MatchLimit <= 0 {
		o.MatchLimit = d.MatchLimit
	}
	return o
}

// Result is a tailored résumé. Missing holds only the keywords used as rewrite targets.
type Result struct {
	ResumeText string   `json:"resume_text"`
	Matching   []string `json:"matching"`
	Missing    []string `json:"missing"`
	Generated  bool     `json:"generated"`
}

// Tailorer orchestrates matching, prompt construction, generation and fallback.
type Tailorer struct {
	gen      Generator
	opts     Options
	template string
	logger   *zap.Logger
}

// New creates a Tailorer. A nil generator always takes the fallback path.
func New(gen Generator, opts Options, logger *zap.Logger) *Tailorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tailorer{
		gen:      gen,
		opts:     opts.withDefaults(),
		template: prompts.MustGet(prompts.TailoringFile, "tailor_resume"),
		logger:   logger.With(zap.String("component", "tailoring")),
	}
}

// Tailor rewrites resume toward jd. It never fails: generation errors, timeouts and
// empty output all produce the deterministic fallback.
func (t *Tailorer) Tailor(ctx context.Context, resume, jd string) Result {
	matched, missing := matching.Match(resume, jd, t.opts.MatchLimit)
	targets := missing
	if len(targets) > t.opts.MaxTargets {
		targets = targets[:t.opts.MaxTargets]
	}

	result := Result{Matching: matched, Missing: targets}

	if t.gen != nil {
		prompt := t.BuildPrompt(resume, jd, targets)
		start := time.Now()
		out, err := t.gen.Complete(ctx, prompt)
		log := t.logger.With(
			zap.Int("prompt_chars", utf8.RuneCountInString(prompt)),
			zap.Int("targets", len(targets)),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		if err != nil {
			log.Warn("generation failed, using fallback", zap.Error(err))
		} else if text := llm.CleanResponse(out); text != "" {
			log.Debug("generation succeeded",
				zap.Int("output_chars", utf8.RuneCountInString(text)),
				zap.String("preview", logger.TruncateForLog(text, 200)))
			result.ResumeText = text
			result.Generated = true
			return result
		} else {
			log.Warn("generation returned empty output, using fallback")
		}
	}

	result.ResumeText = Fallback(resume, targets)
	return result
}

// BuildPrompt assembles the rewrite instruction for the given targets. Each text is clipped
// to ClipChars, and both are clipped further when the whole prompt exceeds MaxPromptChars.
func (t *Tailorer) BuildPrompt(resume, jd string, targets []string) string {
	kw := strings.Join(targets, ", ")
	clippedJD := Clip(jd, t.opts.ClipChars)
	clippedResume := Clip(resume, t.opts.ClipChars)

	prompt := t.render(kw, clippedJD, clippedResume)
	if utf8.RuneCountInString(prompt) <= t.opts.MaxPromptChars {
		return prompt
	}

	fixed := utf8.RuneCountInString(t.render(kw, "", ""))
	remaining := t.opts.MaxPromptChars - fixed - 2*utf8.RuneCountInString(ClipMarker)
	if remaining <= 0 {
		t.logger.Warn("prompt instructions exceed the prompt budget",
			zap.Int("fixed_chars", fixed), zap.Int("max_prompt_chars", t.opts.MaxPromptChars))
		return t.render(kw, "", "")
	}

	jdBudget, resumeBudget := remaining/2, remaining-remaining/2
	if n := utf8.RuneCountInString(clippedJD); n < jdBudget {
		resumeBudget += jdBudget - n
		jdBudget = n
	} else if n := utf8.RuneCountInString(clippedResume); n < resumeBudget {
		jdBudget += resumeBudget - n
		resumeBudget = n
	}
	return t.render(kw, Clip(clippedJD, jdBudget), Clip(clippedResume, resumeBudget))
}

func (t *Tailorer) render(kw, jd, resume string) string {
	return prompts.Format(t.template, map[string]string{
		"Keywords":       kw,
		"JobDescription": jd,
		"Resume":         resume,
	})
}

// Fallback returns resume with a Skills Highlight block listing targets, or resume
// unchanged when there are no targets.
func Fallback(resume string, targets []string) string {
	if len(targets) == 0 {
		return resume
	}
	return resume + SkillsHighlightPrefix + strings.Join(targets, ", ")
}
