package http

import (
	"errors"
	"log"
	"net/http"

	"quiz-ranking-service/internal/domain"
)

// Error codes shared by the REST and socket surfaces.
const (
	codeInvalidBatchSize      = "invalid_batch_size"
	codeDuplicateQuestion     = "duplicate_question"
	codeInvalidAnswer         = "invalid_answer"
	codeQuestionNotFound      = "question_not_found"
	codeInsufficientQuestions = "insufficient_questions"
	codePersistence           = "persistence_error"
	codeUnauthorized          = "unauthorized"
	codeBadRequest            = "bad_request"
	codeInternal              = "internal_error"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// classify maps a service error to an HTTP status and a stable code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidBatchSize):
		return http.StatusBadRequest, codeInvalidBatchSize
	case errors.Is(err, domain.ErrDuplicateQuestionInBatch):
		return http.StatusBadRequest, codeDuplicateQuestion
	case errors.Is(err, domain.ErrInvalidAnswer):
		return http.StatusBadRequest, codeInvalidAnswer
	case errors.Is(err, domain.ErrQuestionNotFound):
		return http.StatusNotFound, codeQuestionNotFound
	case errors.Is(err, domain.ErrInsufficientQuestions):
		return http.StatusServiceUnavailable, codeInsufficientQuestions
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusInternalServerError, codePersistence
	}
	return http.StatusInternalServerError, codeInternal
}

// errorResponse builds the body for err; 5xx details stay in the log.
func errorResponse(err error) (int, ErrorResponse) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
		return status, ErrorResponse{Error: http.StatusText(status), Code: code}
	}
	return status, ErrorResponse{Error: err.Error(), Code: code}
}
