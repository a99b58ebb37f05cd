package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"quiz-ranking-service/internal/domain"
)

type answerRow struct {
	bun.BaseModel `bun:"table:user_answers,alias:ua"`

	ID             string    `bun:"id,pk,type:uuid"`
	UserID         string    `bun:"user_id,type:uuid"`
	QuestionID     string    `bun:"question_id,type:uuid"`
	SelectedAnswer string    `bun:"selected_answer"`
	IsCorrect      bool      `bun:"is_correct"`
	CreatedAt      time.Time `bun:"created_at"`
}

type scoreRow struct {
	UserID string `bun:"user_id"`
	Score  int    `bun:"score"`
}

// AnswerStore keeps answered events in the user_answers table.
type AnswerStore struct {
	db  *bun.DB
	now func() time.Time
}

func NewAnswerStore(db *bun.DB) *AnswerStore {
	return &AnswerStore{db: db, now: time.Now}
}

// Record inserts a single event; callers get no batching or transaction across calls.
func (s *AnswerStore) Record(ctx context.Context, answer domain.GradedAnswer) (domain.AnsweredEvent, error) {
	row := &answerRow{
		ID:             uuid.NewString(),
		UserID:         answer.UserID,
		QuestionID:     answer.QuestionID,
		SelectedAnswer: string(answer.SelectedAnswer),
		IsCorrect:      answer.IsCorrect,
		CreatedAt:      s.now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return domain.AnsweredEvent{}, fmt.Errorf("insert answer: %w", err)
	}
	return domain.AnsweredEvent{
		ID:             row.ID,
		UserID:         row.UserID,
		QuestionID:     row.QuestionID,
		SelectedAnswer: answer.SelectedAnswer,
		IsCorrect:      row.IsCorrect,
		CreatedAt:      row.CreatedAt,
	}, nil
}

func (s *AnswerStore) CountCorrectByUser(ctx context.Context, userID string) (int, error) {
	// user_id is a uuid column; other ids have no rows by definition
	if _, err := uuid.Parse(userID); err != nil {
		return 0, nil
	}
	count, err := s.db.NewSelect().
		Model((*answerRow)(nil)).
		Where("ua.user_id = ?", userID).
		Where("ua.is_correct").
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count correct answers: %w", err)
	}
	return count, nil
}

func (s *AnswerStore) ScoresByUser(ctx context.Context) ([]domain.ScoreRow, error) {
	var rows []scoreRow
	err := s.db.NewSelect().
		Model((*answerRow)(nil)).
		ColumnExpr("ua.user_id::text AS user_id").
		ColumnExpr("COUNT(*) AS score").
		Where("ua.is_correct").
		GroupExpr("ua.user_id").
		OrderExpr("score DESC, ua.user_id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("aggregate scores: %w", err)
	}

	scores := make([]domain.ScoreRow, 0, len(rows))
	for _, r := range rows {
		scores = append(scores, domain.ScoreRow{UserID: r.UserID, Score: r.Score})
	}
	return scores, nil
}
