package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/quizsmith/internal/ingest"
	"github.com/abhisek/quizsmith/internal/quiz"
	"github.com/abhisek/quizsmith/internal/store"
)

// Error codes carried in the envelope.
const (
	codeValidation    = "validation"
	codeNotFound      = "not_found"
	codeConfiguration = "configuration"
	codeUpstream      = "upstream"
	codeInternal      = "internal"
)

type apiError struct {
	Message     string `json:"message"`
	Code        string `json:"code,omitempty"`
	NotReadyIDs []int  `json:"not_ready_ids,omitempty"`
	SourceID    int    `json:"source_id,omitempty"`
	QuizID      int    `json:"quiz_id,omitempty"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

// classify maps a service error to an HTTP status and envelope code.
func classify(err error) (int, string) {
	var svcErr *ingest.ServiceError
	var genErr *quiz.GenerationError
	switch {
	case errors.Is(err, quiz.ErrValidation), ingest.IsValidation(err), ingest.IsUserFacing(err):
		return http.StatusBadRequest, codeValidation
	case store.IsNotFound(err):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, quiz.ErrMissingCredential), errors.Is(err, ingest.ErrMissingCredential):
		return http.StatusInternalServerError, codeConfiguration
	case errors.As(err, &svcErr), errors.As(err, &genErr),
		errors.Is(err, ingest.ErrEmptyExtraction),
		errors.Is(err, ingest.ErrEmptyTranscript),
		errors.Is(err, ingest.ErrUnparseableResponse):
		return http.StatusBadGateway, codeUpstream
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

func respondError(c *gin.Context, err error) {
	status, code := classify(err)
	respondErrorEnvelope(c, status, apiError{Message: err.Error(), Code: code}, err)
}

func respondErrorEnvelope(c *gin.Context, status int, e apiError, err error) {
	var vErr *quiz.ValidationError
	if errors.As(err, &vErr) {
		e.NotReadyIDs = vErr.NotReadyIDs
	}
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, errorEnvelope{Error: e})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorEnvelope{Error: apiError{Message: msg, Code: codeValidation}})
}
