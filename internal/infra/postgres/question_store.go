package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"quiz-ranking-service/internal/domain"
)

const questionColumns = `id::text, question, option_a, option_b, option_c, correct_answer, active`

// QuestionStore reads the question bank from Postgres.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

// SampleActive lets Postgres pick the random rows.
func (s *QuestionStore) SampleActive(ctx context.Context, n int) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+questionColumns+` FROM questions WHERE active ORDER BY random() LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	return collectQuestions(rows)
}

// LoadActive returns the whole active bank for caches.
func (s *QuestionStore) LoadActive(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+questionColumns+` FROM questions WHERE active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return collectQuestions(rows)
}

func (s *QuestionStore) FindByID(ctx context.Context, id string) (domain.Question, bool, error) {
	// ids are uuids; anything else cannot match and would only make Postgres complain
	if _, err := uuid.Parse(id); err != nil {
		return domain.Question{}, false, nil
	}

	var q domain.Question
	err := scanQuestion(s.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id), &q)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, false, nil
	}
	if err != nil {
		return domain.Question{}, false, fmt.Errorf("find question: %w", err)
	}
	return q, true, nil
}

func collectQuestions(rows pgx.Rows) ([]domain.Question, error) {
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := scanQuestion(rows, &q); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return questions, nil
}

func scanQuestion(row pgx.Row, q *domain.Question) error {
	var correct string
	if err := row.Scan(&q.ID, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &correct, &q.Active); err != nil {
		return err
	}
	q.CorrectAnswer = domain.Letter(correct)
	return nil
}
