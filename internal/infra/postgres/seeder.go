package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"quiz-ranking-service/internal/domain"
)

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID            string `bun:"id,pk,type:uuid"`
	Question      string `bun:"question"`
	OptionA       string `bun:"option_a"`
	OptionB       string `bun:"option_b"`
	OptionC       string `bun:"option_c"`
	CorrectAnswer string `bun:"correct_answer"`
	Active        bool   `bun:"active"`
}

type userRow struct {
	bun.BaseModel `bun:"table:users"`

	ID       string `bun:"id,pk,type:uuid"`
	Email    string `bun:"email"`
	Username string `bun:"username,nullzero"`
}

// Seeder loads the question bank and demo users. Existing rows are left untouched,
// so seeding twice is harmless.
type Seeder struct {
	db *bun.DB
}

func NewSeeder(db *bun.DB) *Seeder {
	return &Seeder{db: db}
}

func (s *Seeder) SeedQuestions(ctx context.Context, questions []domain.Question) (int64, error) {
	if len(questions) == 0 {
		return 0, nil
	}
	rows := make([]questionRow, 0, len(questions))
	for _, q := range questions {
		rows = append(rows, questionRow{
			ID:            q.ID,
			Question:      q.Text,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			CorrectAnswer: string(q.CorrectAnswer),
			Active:        q.Active,
		})
	}
	res, err := s.db.NewInsert().Model(&rows).On("CONFLICT DO NOTHING").Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed questions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *Seeder) SeedUsers(ctx context.Context, users []domain.User) (int64, error) {
	if len(users) == 0 {
		return 0, nil
	}
	rows := make([]userRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, userRow{ID: u.ID, Email: u.Email, Username: u.Username})
	}
	res, err := s.db.NewInsert().Model(&rows).On("CONFLICT DO NOTHING").Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed users: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
