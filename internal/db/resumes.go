package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

// UpsertResume stores or replaces the résumé of r.UserID.
func (db *DB) UpsertResume(ctx context.Context, r *Resume) error {
	var embedding any
	if r.Embedding != nil {
		embedding = pgvector.NewVector(r.Embedding)
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO resumes (user_id, resume_text, embedding, resume_keywords, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (user_id) DO UPDATE SET
		   resume_text = EXCLUDED.resume_text,
		   embedding = EXCLUDED.embedding,
		   resume_keywords = EXCLUDED.resume_keywords,
		   updated_at = now()
		 RETURNING updated_at`,
		r.UserID, r.Text, embedding, nonNil(r.Keywords),
	).Scan(&r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert resume: %w", err)
	}
	return nil
}

// GetResume returns the résumé of userID, or nil when none is stored.
func (db *DB) GetResume(ctx context.Context, userID string) (*Resume, error) {
	var (
		r   Resume
		vec *pgvector.Vector
	)
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, resume_text, embedding, resume_keywords, updated_at
		 FROM resumes WHERE user_id = $1`,
		userID,
	).Scan(&r.UserID, &r.Text, &vec, &r.Keywords, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	if vec != nil {
		r.Embedding = vec.Slice()
	}
	return &r, nil
}

// SaveTailoredResume inserts t, assigning its ID when unset.
func (db *DB) SaveTailoredResume(ctx context.Context, t *TailoredResume) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO tailored_resumes (id, user_id, job_description, resume_text, matching, missing, generated, pdf)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at`,
		t.ID, t.UserID, t.JobDescription, t.ResumeText, nonNil(t.Matching), nonNil(t.Missing), t.Generated, t.PDF,
	).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save tailored resume: %w", err)
	}
	t.HasPDF = len(t.PDF) > 0
	return nil
}

// ListTailoredResumes returns the newest tailored résumés of userID without their PDFs.
func (db *DB) ListTailoredResumes(ctx context.Context, userID string, limit int) ([]TailoredResume, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, job_description, resume_text, matching, missing, generated,
		        pdf IS NOT NULL, created_at
		 FROM tailored_resumes WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tailored resumes: %w", err)
	}
	defer rows.Close()

	var out []TailoredResume
	for rows.Next() {
		var t TailoredResume
		if err := rows.Scan(&t.ID, &t.UserID, &t.JobDescription, &t.ResumeText,
			&t.Matching, &t.Missing, &t.Generated, &t.HasPDF, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tailored resume: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tailored resumes: %w", err)
	}
	return out, nil
}

// GetTailoredResume returns one tailored résumé owned by userID, including its PDF,
// or nil when it does not exist or belongs to someone else.
func (db *DB) GetTailoredResume(ctx context.Context, userID string, id uuid.UUID) (*TailoredResume, error) {
	var t TailoredResume
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, job_description, resume_text, matching, missing, generated, pdf, created_at
		 FROM tailored_resumes WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&t.ID, &t.UserID, &t.JobDescription, &t.ResumeText,
		&t.Matching, &t.Missing, &t.Generated, &t.PDF, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tailored resume: %w", err)
	}
	t.HasPDF = len(t.PDF) > 0
	return &t, nil
}
