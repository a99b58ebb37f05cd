package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientQuestions means the bank holds fewer active questions than one batch needs.
	ErrInsufficientQuestions = errors.New("not enough active questions to build a quiz")
	// ErrInvalidBatchSize is returned when a submission does not carry exactly one batch of answers.
	ErrInvalidBatchSize = errors.New("invalid number of answers in batch")
	// ErrDuplicateQuestionInBatch is returned when one submission answers the same question twice.
	ErrDuplicateQuestionInBatch = errors.New("question answered more than once in batch")
	// ErrInvalidAnswer indicates a selected answer outside A, B or C.
	ErrInvalidAnswer = errors.New("answer must be one of A, B or C")
	// ErrQuestionNotFound indicates a submitted question ID is unknown.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrPersistence wraps failures reported by the answer store.
	ErrPersistence = errors.New("failed to persist answer")
)

// QuestionNotFoundError names the question ID that could not be resolved.
type QuestionNotFoundError struct {
	QuestionID string
}

func (e *QuestionNotFoundError) Error() string {
	return fmt.Sprintf("question %s not found", e.QuestionID)
}

func (e *QuestionNotFoundError) Unwrap() error {
	return ErrQuestionNotFound
}
