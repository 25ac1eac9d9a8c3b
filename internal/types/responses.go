package types

import (
	"time"

	"github.com/google/uuid"
)

// MatchResponse is returned by POST /match.
type MatchResponse struct {
	Score         float64  `json:"score"`
	Percent       float64  `json:"percent"`
	MatchingWords []string `json:"matchingWords"`
	MissingWords  []string `json:"missingWords"`
}

// ClassifyResponse lists the keywords found in a text, sorted.
type ClassifyResponse struct {
	Keywords []string `json:"keywords"`
}

// UpsertResumeResponse acknowledges a stored résumé.
type UpsertResumeResponse struct {
	OK        bool      `json:"ok"`
	UserID    string    `json:"user_id"`
	Keywords  []string  `json:"resume_keywords"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TailorResponse is returned by POST /tailored_resume.
type TailorResponse struct {
	ID         *uuid.UUID `json:"id,omitempty"`
	ResumeText string     `json:"resume_text"`
	Matching   []string   `json:"matching"`
	Missing    []string   `json:"missing"`
	Generated  bool       `json:"generated"`
}

// CustomAnswerResponse carries a drafted answer.
type CustomAnswerResponse struct {
	Answer string `json:"answer"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}
