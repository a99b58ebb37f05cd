package app

import (
	"context"
	"fmt"

	"quiz-ranking-service/internal/domain"
)

// DefaultBatchSize is the number of questions in one quiz when none is configured.
const DefaultBatchSize = 5

// QuestionStore abstracts where the question bank lives (in-memory, Redis cache, Postgres).
type QuestionStore interface {
	// SampleActive returns up to n distinct active questions chosen uniformly at random.
	SampleActive(ctx context.Context, n int) ([]domain.Question, error)
	// FindByID looks a question up regardless of its active flag.
	FindByID(ctx context.Context, id string) (domain.Question, bool, error)
}

// AnswerStore persists grading outcomes and aggregates them per user.
type AnswerStore interface {
	Record(ctx context.Context, answer domain.GradedAnswer) (domain.AnsweredEvent, error)
	CountCorrectByUser(ctx context.Context, userID string) (int, error)
	// ScoresByUser returns one row per user with at least one correct answer,
	// ordered by score descending then user ID ascending.
	ScoresByUser(ctx context.Context) ([]domain.ScoreRow, error)
}

// Config carries the engine settings that would otherwise be process globals.
type Config struct {
	BatchSize int
}

// QuizService contains the quiz use cases: sampling, grading and per-user score.
type QuizService struct {
	questions QuestionStore
	answers   AnswerStore
	batchSize int
}

func NewQuizService(questions QuestionStore, answers AnswerStore, cfg Config) *QuizService {
	size := cfg.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &QuizService{questions: questions, answers: answers, batchSize: size}
}

// BatchSize reports how many questions make up one quiz.
func (s *QuizService) BatchSize() int {
	return s.batchSize
}

// GetQuestions samples one batch of active questions with the correct answers withheld.
func (s *QuizService) GetQuestions(ctx context.Context) ([]domain.QuestionView, error) {
	questions, err := s.questions.SampleActive(ctx, s.batchSize)
	if err != nil {
		return nil, err
	}
	if len(questions) < s.batchSize {
		return nil, domain.ErrInsufficientQuestions
	}

	views := make([]domain.QuestionView, 0, s.batchSize)
	for _, q := range questions[:s.batchSize] {
		views = append(views, q.View())
	}
	return views, nil
}

// SubmitAnswers validates and grades a full batch, then records one event per answer.
// Events are written one at a time in submission order; a store failure part-way
// leaves the earlier events in place.
func (s *QuizService) SubmitAnswers(ctx context.Context, userID string, answers []domain.AnswerSubmission) (domain.QuizResult, error) {
	letters, err := s.validateBatch(answers)
	if err != nil {
		return domain.QuizResult{}, err
	}

	// Resolve the whole batch before writing anything; one unknown ID rejects it.
	questions := make([]domain.Question, len(answers))
	for i, answer := range answers {
		q, ok, err := s.questions.FindByID(ctx, answer.QuestionID)
		if err != nil {
			return domain.QuizResult{}, fmt.Errorf("find question %s: %w", answer.QuestionID, err)
		}
		if !ok {
			return domain.QuizResult{}, &domain.QuestionNotFoundError{QuestionID: answer.QuestionID}
		}
		questions[i] = q
	}

	result := domain.QuizResult{
		TotalQuestions: s.batchSize,
		Answers:        make([]domain.AnswerResult, 0, len(answers)),
	}
	for i, q := range questions {
		selected := letters[i]
		correct := selected == q.CorrectAnswer

		if _, err := s.answers.Record(ctx, domain.GradedAnswer{
			UserID:         userID,
			QuestionID:     q.ID,
			SelectedAnswer: selected,
			IsCorrect:      correct,
		}); err != nil {
			return domain.QuizResult{}, fmt.Errorf("%w: question %s: %w", domain.ErrPersistence, q.ID, err)
		}

		if correct {
			result.CorrectAnswers++
		}
		result.Answers = append(result.Answers, domain.AnswerResult{
			QuestionID:     q.ID,
			QuestionText:   q.Text,
			SelectedAnswer: domain.AnswerDetail{Letter: selected, Text: q.OptionText(selected)},
			CorrectAnswer:  domain.AnswerDetail{Letter: q.CorrectAnswer, Text: q.OptionText(q.CorrectAnswer)},
			IsCorrect:      correct,
		})
	}
	result.Score = result.CorrectAnswers
	return result, nil
}

// GetUserScore returns the number of correct answers recorded for a user.
func (s *QuizService) GetUserScore(ctx context.Context, userID string) (int, error) {
	return s.answers.CountCorrectByUser(ctx, userID)
}

// validateBatch checks size, duplicates and letters, returning the parsed letters.
func (s *QuizService) validateBatch(answers []domain.AnswerSubmission) ([]domain.Letter, error) {
	if len(answers) != s.batchSize {
		return nil, fmt.Errorf("%w: got %d, want %d", domain.ErrInvalidBatchSize, len(answers), s.batchSize)
	}

	seen := make(map[string]struct{}, len(answers))
	for _, answer := range answers {
		if _, dup := seen[answer.QuestionID]; dup {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateQuestionInBatch, answer.QuestionID)
		}
		seen[answer.QuestionID] = struct{}{}
	}

	letters := make([]domain.Letter, len(answers))
	for i, answer := range answers {
		letter, ok := domain.ParseLetter(answer.Answer)
		if !ok {
			return nil, fmt.Errorf("%w: got %q for question %s", domain.ErrInvalidAnswer, answer.Answer, answer.QuestionID)
		}
		letters[i] = letter
	}
	return letters, nil
}
