// Package matching compares the technical vocabulary of a résumé with a job description.
package matching

import (
	"github.com/jonathan/applyease/internal/keywords"
	"github.com/jonathan/applyease/internal/similarity"
)

// DefaultLimit caps each keyword list. Truncation is lexicographic, so terms late in the
// alphabet are the ones omitted when a list overflows.
const DefaultLimit = 50

// Result is the outcome of scoring a résumé against a job description.
type Result struct {
	Score    float64  `json:"score"`
	Percent  float64  `json:"percent"`
	Matching []string `json:"matching_words"`
	Missing  []string `json:"missing_words"`
}

// Match returns the sorted keywords shared by both texts and those only in the job description.
func Match(resume, jd string, limit int) (matching, missing []string) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	r := keywords.Classify(resume)
	j := keywords.Classify(jd)
	return capList(r.Intersect(j).Sorted(), limit), capList(j.Difference(r).Sorted(), limit)
}

// NewResult combines a similarity score with the keyword comparison of the two texts.
func NewResult(score float64, resume, jd string, limit int) Result {
	matching, missing := Match(resume, jd, limit)
	return Result{
		Score:    score,
		Percent:  similarity.Percent(score),
		Matching: matching,
		Missing:  missing,
	}
}

func capList(words []string, limit int) []string {
	if len(words) > limit {
		return words[:limit]
	}
	return words
}
