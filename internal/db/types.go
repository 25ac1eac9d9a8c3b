package db

import (
	"time"

	"github.com/google/uuid"
)

// Resume is a user's stored résumé. Embedding is L2-normalized.
type Resume struct {
	UserID    string    `json:"user_id"`
	Text      string    `json:"resume_text"`
	Embedding []float32 `json:"-"`
	Keywords  []string  `json:"resume_keywords"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TailoredResume is a persisted tailoring result.
type TailoredResume struct {
	ID             uuid.UUID `json:"id"`
	UserID         string    `json:"user_id"`
	JobDescription string    `json:"job_description"`
	ResumeText     string    `json:"resume_text"`
	Matching       []string  `json:"matching"`
	Missing        []string  `json:"missing"`
	Generated      bool      `json:"generated"`
	PDF            []byte    `json:"-"`
	HasPDF         bool      `json:"has_pdf"`
	CreatedAt      time.Time `json:"created_at"`
}

// DefaultListLimit caps ListTailoredResumes when no limit is given.
const DefaultListLimit = 20

// nonNil keeps TEXT[] NOT NULL columns from receiving NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
