package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/applyease/internal/answers"
	"github.com/jonathan/applyease/internal/embedding"
	"github.com/jonathan/applyease/internal/types"
)

var (
	// ErrNoStore is returned by per-user routes when no database is configured.
	ErrNoStore = errors.New("storage is not configured")
	// ErrNotFound is returned when the requested record does not exist for the caller.
	ErrNotFound = errors.New("not found")
	// ErrBadRequest wraps malformed request bodies and parameters.
	ErrBadRequest = errors.New("bad request")
	// ErrNoScorer is returned when similarity routes run without an embedder.
	ErrNoScorer = errors.New("similarity scoring is not configured")
)

// HTTPStatus maps an error returned by a handler's collaborators to a status code.
// Dimension mismatches and render failures fall through to 500.
func HTTPStatus(err error) int {
	var (
		validationErrs validator.ValidationErrors
		embedErr       *embedding.Error
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadRequest), errors.As(err, &validationErrs), errors.Is(err, answers.ErrEmptyQuestion):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNoStore), errors.Is(err, ErrNoScorer):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		// client went away; nginx's 499 has no net/http constant
		return 499
	case errors.Is(err, answers.ErrNoAnswer), errors.As(err, &embedErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse writes err as JSON with the status HTTPStatus picks.
// Internal failures are logged and reported without detail.
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	body := types.ErrorResponse{Error: err.Error()}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		body.Error = "validation failed"
		body.Details = make(map[string]string, len(validationErrs))
		for _, fe := range validationErrs {
			body.Details[fe.Field()] = fe.Tag()
		}
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request error",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
		if status == http.StatusInternalServerError {
			body.Error = "internal error"
		}
	}
	s.jsonResponse(w, status, body)
}
