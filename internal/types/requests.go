// Package types defines the request and response bodies of the HTTP API.
package types

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// MaxTextChars caps any single text field, in characters.
const MaxTextChars = 200_000

// SimilarityRequest scores a résumé against a job description, both supplied inline.
type SimilarityRequest struct {
	ResumeText     string `json:"resume_text" validate:"required,max=200000"`
	JobDescription string `json:"job_description" validate:"required,max=200000"`
}

// Validate validates the SimilarityRequest.
func (r *SimilarityRequest) Validate() error {
	return Validator().Struct(r)
}

// ClassifyRequest extracts keywords from a text.
type ClassifyRequest struct {
	Text string `json:"text" validate:"max=200000"`
}

// Validate validates the ClassifyRequest.
func (r *ClassifyRequest) Validate() error {
	return Validator().Struct(r)
}

// UpsertResumeRequest stores the caller's résumé.
type UpsertResumeRequest struct {
	ResumeText string `json:"resume_text" validate:"required,max=200000"`
}

// Validate validates the UpsertResumeRequest.
func (r *UpsertResumeRequest) Validate() error {
	return Validator().Struct(r)
}

// MatchRequest scores the caller's stored résumé against a job description.
type MatchRequest struct {
	JobDescription string `json:"jobDescription" validate:"required,max=200000"`
}

// Validate validates the MatchRequest.
func (r *MatchRequest) Validate() error {
	return Validator().Struct(r)
}

// TailorRequest tailors the caller's stored résumé to a job description.
type TailorRequest struct {
	JobDescription string `json:"jobDescription" validate:"required,max=200000"`
	// Save persists the result; IncludePDF also renders and stores the document.
	Save       bool `json:"save"`
	IncludePDF bool `json:"include_pdf"`
}

// Validate validates the TailorRequest.
func (r *TailorRequest) Validate() error {
	return Validator().Struct(r)
}

// RenderRequest renders arbitrary text as a PDF.
type RenderRequest struct {
	Text     string `json:"text" validate:"max=200000"`
	Filename string `json:"filename" validate:"omitempty,max=100,excludesall=/\\\""`
}

// Validate validates the RenderRequest.
func (r *RenderRequest) Validate() error {
	return Validator().Struct(r)
}

// CustomAnswerRequest drafts an answer to an application question.
type CustomAnswerRequest struct {
	JobDescription      string `json:"jobDescription" validate:"required,max=200000"`
	ApplicationQuestion string `json:"applicationQuestion" validate:"required,max=5000"`
}

// Validate validates the CustomAnswerRequest.
func (r *CustomAnswerRequest) Validate() error {
	return Validator().Struct(r)
}
