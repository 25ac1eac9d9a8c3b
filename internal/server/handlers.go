package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/applyease/internal/db"
	"github.com/jonathan/applyease/internal/keywords"
	"github.com/jonathan/applyease/internal/matching"
	"github.com/jonathan/applyease/internal/rendering"
	"github.com/jonathan/applyease/internal/server/middleware"
	"github.com/jonathan/applyease/internal/similarity"
	"github.com/jonathan/applyease/internal/tailoring"
	"github.com/jonathan/applyease/internal/types"
)

// maxBodyBytes bounds request bodies; the text fields themselves are capped by validation.
const maxBodyBytes = 2 << 20

const healthTimeout = 2 * time.Second

type validatable interface {
	Validate() error
}

// decode reads a JSON body into req and validates it.
func decode(r *http.Request, w http.ResponseWriter, req validatable) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(req); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", ErrBadRequest, err)
	}
	return req.Validate()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok"}
	if s.deps.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := s.deps.Store.Ping(ctx); err != nil {
			s.logger.Warn("database ping failed", zap.Error(err))
			status["status"] = "degraded"
			status["database"] = "unreachable"
			s.jsonResponse(w, http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}
	s.jsonResponse(w, http.StatusOK, status)
}

func (s *Server) handleSimilarity(w http.ResponseWriter, r *http.Request) {
	var req types.SimilarityRequest
	if err := decode(r, w, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if s.deps.Scorer == nil {
		s.errorResponse(w, r, ErrNoScorer)
		return
	}
	score, err := s.deps.Scorer.Score(r.Context(), req.ResumeText, req.JobDescription)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, matchResponse(matching.NewResult(score, req.ResumeText, req.JobDescription, s.opts.MatchLimit)))
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req types.ClassifyRequest
	if err := decode(r, w, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.ClassifyResponse{Keywords: keywords.Classify(req.Text).Sorted()})
}

// handleUpsertResume stores the caller's résumé along with its keywords and, when a
// scorer is wired, its normalized embedding.
func (s *Server) handleUpsertResume(w http.ResponseWriter, r *http.Request) {
	userID, store, ok := s.userAndStore(w, r)
	if !ok {
		return
	}
	var req types.UpsertResumeRequest
	if err := decode(r, w, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	resume := &db.Resume{
		UserID:   userID,
		Text:     req.ResumeText,
		Keywords: keywords.Classify(req.ResumeText).Sorted(),
	}
	if s.deps.Scorer != nil {
		vec, err := s.deps.Scorer.EmbedNormalized(r.Context(), req.ResumeText)
		if err != nil {
			s.errorResponse(w, r, err)
			return
		}
		resume.Embedding = vec
	}
	if err := store.UpsertResume(r.Context(), resume); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.UpsertResumeResponse{
		OK:        true,
		UserID:    userID,
		Keywords:  resume.Keywords,
		UpdatedAt: resume.UpdatedAt,
	})
}

func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	resume, ok := s.storedResume(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, resume)
}

func (s *Server) handleResumePDF(w http.ResponseWriter, r *http.Request) {
	resume, ok := s.storedResume(w, r)
	if !ok {
		return
	}
	pdf, err := rendering.RenderPDF(resume.Text, s.opts.Geometry)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.pdfResponse(w, "resume.pdf", pdf)
}

// handleMatch scores the stored résumé against a job description. The persisted vector is
// reused when present; otherwise both texts are embedded.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req types.MatchRequest
	if err := decode(r, w, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	resume, ok := s.storedResume(w, r)
	if !ok {
		return
	}
	if s.deps.Scorer == nil {
		s.errorResponse(w, r, ErrNoScorer)
		return
	}

	var (
		score float64
		err   error
	)
	if len(resume.Embedding) > 0 {
		score, err = s.deps.Scorer.ScoreAgainstVector(r.Context(), req.JobDescription, resume.Embedding)
	} else {
		score, err = s.deps.Scorer.Score(r.Context(), resume.Text, req.JobDescription)
	}
	var dimErr *similarity.DimensionError
	if errors.As(err, &dimErr) && len(resume.Embedding) > 0 {
		// stored vector predates a model change
		s.logger.Warn("stored embedding has wrong dimension, re-embedding",
			zap.Int("want", dimErr.Want), zap.Int("got", dimErr.Got))
		score, err = s.deps.Scorer.Score(r.Context(), resume.Text, req.JobDescription)
	}
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, matchResponse(matching.NewResult(score, resume.Text, req.JobDescription, s.opts.MatchLimit)))
}

func (s *Server) handleTailor(w http.ResponseWriter, r *http.Request) {
	var req types.TailorRequest
	if err := decode(r, w, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	resume, ok := s.storedResume(w, r)
	if !ok {
		return
	}

	var result tailoring.Result
	err := s.generate(r.Context(), func(ctx context.Context) error {
		result = s.deps.Tailorer.Tailor(ctx, resume.Text, req.JobDescription)
		return nil
	})
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	resp := types.TailorResponse{
		ResumeText: result.ResumeText,
		Matching:   result.Matching,
		Missing:    result.Missing,
		Generated:  result.Generated,
	}
	if req.Save || req.IncludePDF {
		record := &db.TailoredResume{
			UserID:         resume.UserID,
			JobDescription: req.JobDescription,
			ResumeText:     result.ResumeText,
			Matching:       result.Matching,
			Missing:        result.Missing,
			Generated:      result.Generated,
		}
		if req.IncludePDF {
			pdf, err := rendering.RenderPDF(result.ResumeText, s.opts.Geometry)
			if err != nil {
				s.errorResponse(w, r, err)
				return
			}
			record.PDF = pdf
		}
		if err := s.deps.Store.SaveTailoredResume(r.Context(), record); err != nil {
			s.errorResponse(w, r, err)
			return
		}
		resp.ID = &record.ID
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleListTailored(w http.ResponseWriter, r *http.Request) {
	userID, store, ok := s.userAndStore(w, r)
	if !ok {
		return
	}
	limit := db.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			s.errorResponse(w, r, fmt.Errorf("%w: limit must be between 1 and 100", ErrBadRequest))
			return
		}
		limit = n
	}
	list, err := store.ListTailoredResumes(r.Context(), userID, limit)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if list == nil {
		list = []db.TailoredResume{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"tailored_resumes": list})
}

func (s *Server) handleTailoredPDF(w http.ResponseWriter, r *http.Request) {
	userID, store, ok := s.userAndStore(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, r, fmt.Errorf("%w: invalid id", ErrBadRequest))
		return
	}
	record, err := store.GetTailoredResume(r.Context(), userID, id)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if record == nil {
		s.errorResponse(w, r, fmt.Errorf("tailored resume %s: %w", id, ErrNotFound))
		return
	}
	pdf := record.PDF
	if len(pdf) == 0 {
		pdf, err = rendering.RenderPDF(record.ResumeText, s.opts.Geometry)
		if err != nil {
			s.errorResponse(w, r, err)
			return
		}
	}
	s.pdfResponse(w, fmt.Sprintf("tailored-%s.pdf", id), pdf)
}

func (s *Server) handleRenderPDF(w http.ResponseWriter, r *http.Request) {
	var req types.RenderRequest
	if err := decode(r, w, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	pdf, err := rendering.RenderPDF(req.Text, s.opts.Geometry)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.pdfResponse(w, pdfFilename(req.Filename), pdf)
}

func (s *Server) handleCustomAnswer(w http.ResponseWriter, r *http.Request) {
	var req types.CustomAnswerRequest
	if err := decode(r, w, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	resume, ok := s.storedResume(w, r)
	if !ok {
		return
	}
	var answer string
	err := s.generate(r.Context(), func(ctx context.Context) error {
		var err error
		answer, err = s.deps.Answers.Answer(ctx, resume.Text, req.JobDescription, req.ApplicationQuestion)
		return err
	})
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.CustomAnswerResponse{Answer: answer})
}

// generate runs fn once a generation slot is free, or fails with the request context.
func (s *Server) generate(ctx context.Context, fn func(context.Context) error) error {
	if err := s.generation.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.generation.Release(1)
	return fn(ctx)
}

// userAndStore resolves the authenticated user and the configured store, writing the
// error response itself when either is missing.
func (s *Server) userAndStore(w http.ResponseWriter, r *http.Request) (string, Store, bool) {
	userID, err := middleware.UserID(r.Context())
	if err != nil {
		s.jsonResponse(w, http.StatusUnauthorized, types.ErrorResponse{Error: err.Error()})
		return "", nil, false
	}
	if s.deps.Store == nil {
		s.errorResponse(w, r, ErrNoStore)
		return "", nil, false
	}
	return userID, s.deps.Store, true
}

// storedResume loads the caller's résumé, answering 404 when there is none.
func (s *Server) storedResume(w http.ResponseWriter, r *http.Request) (*db.Resume, bool) {
	userID, store, ok := s.userAndStore(w, r)
	if !ok {
		return nil, false
	}
	resume, err := store.GetResume(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, r, err)
		return nil, false
	}
	if resume == nil {
		s.errorResponse(w, r, fmt.Errorf("resume: %w", ErrNotFound))
		return nil, false
	}
	return resume, true
}

func matchResponse(res matching.Result) types.MatchResponse {
	return types.MatchResponse{
		Score:         res.Score,
		Percent:       res.Percent,
		MatchingWords: nonNil(res.Matching),
		MissingWords:  nonNil(res.Missing),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func pdfFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "document.pdf"
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}
