// Package answers drafts replies to free-form job application questions from a résumé.
package answers

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/applyease/internal/llm"
	"github.com/jonathan/applyease/internal/prompts"
	"github.com/jonathan/applyease/internal/tailoring"
)

// ErrNoAnswer is returned when the generator fails or answers with nothing.
var ErrNoAnswer = errors.New("no answer generated")

// ErrEmptyQuestion is returned when the question is blank.
var ErrEmptyQuestion = errors.New("question is required")

// DefaultClipChars bounds the résumé and job description in the prompt.
const DefaultClipChars = 4000

// Composer builds answer prompts and calls the generator.
type Composer struct {
	gen       tailoring.Generator
	clipChars int
	template  string
	logger    *zap.Logger
}

// NewComposer creates a Composer. A non-positive clipChars selects DefaultClipChars.
func NewComposer(gen tailoring.Generator, clipChars int, logger *zap.Logger) *Composer {
	if clipChars <= 0 {
		clipChars = DefaultClipChars
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{
		gen:       gen,
		clipChars: clipChars,
		template:  prompts.MustGet(prompts.AnswersFile, "custom_answer"),
		logger:    logger.With(zap.String("component", "answers")),
	}
}

// Prompt returns the prompt sent for question.
func (c *Composer) Prompt(resume, jd, question string) string {
	return prompts.Format(c.template, map[string]string{
		"Resume":         tailoring.Clip(resume, c.clipChars),
		"JobDescription": tailoring.Clip(jd, c.clipChars),
		"Question":       strings.TrimSpace(question),
	})
}

// Answer drafts a reply to question. Unlike tailoring there is no fallback text, so a
// failed or empty generation is reported as ErrNoAnswer.
func (c *Composer) Answer(ctx context.Context, resume, jd, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuestion
	}
	if c.gen == nil {
		return "", ErrNoAnswer
	}

	start := time.Now()
	out, err := c.gen.Complete(ctx, c.Prompt(resume, jd, question))
	log := c.logger.With(zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	if err != nil {
		log.Warn("answer generation failed", zap.Error(err))
		return "", errors.Join(ErrNoAnswer, err)
	}
	answer := llm.CleanResponse(out)
	if answer == "" {
		log.Warn("answer generation returned empty output")
		return "", ErrNoAnswer
	}
	log.Debug("answer generated", zap.Int("chars", len(answer)))
	return answer, nil
}
