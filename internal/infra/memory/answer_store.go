package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"quiz-ranking-service/internal/domain"
)

// AnswerStore is an in-memory implementation of app.AnswerStore.
type AnswerStore struct {
	now    func() time.Time
	mu     sync.RWMutex
	events []domain.AnsweredEvent
}

func NewAnswerStore() *AnswerStore {
	return NewAnswerStoreWithClock(time.Now)
}

// NewAnswerStoreWithClock allows deterministic timestamps in tests.
func NewAnswerStoreWithClock(now func() time.Time) *AnswerStore {
	return &AnswerStore{now: now}
}

func (s *AnswerStore) Record(_ context.Context, answer domain.GradedAnswer) (domain.AnsweredEvent, error) {
	event := domain.AnsweredEvent{
		ID:             uuid.NewString(),
		UserID:         answer.UserID,
		QuestionID:     answer.QuestionID,
		SelectedAnswer: answer.SelectedAnswer,
		IsCorrect:      answer.IsCorrect,
		CreatedAt:      s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return event, nil
}

func (s *AnswerStore) CountCorrectByUser(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, e := range s.events {
		if e.UserID == userID && e.IsCorrect {
			count++
		}
	}
	return count, nil
}

func (s *AnswerStore) ScoresByUser(_ context.Context) ([]domain.ScoreRow, error) {
	s.mu.RLock()
	counts := make(map[string]int)
	for _, e := range s.events {
		if e.IsCorrect {
			counts[e.UserID]++
		}
	}
	s.mu.RUnlock()

	rows := make([]domain.ScoreRow, 0, len(counts))
	for userID, score := range counts {
		rows = append(rows, domain.ScoreRow{UserID: userID, Score: score})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].UserID < rows[j].UserID
	})
	return rows, nil
}

// Events returns a copy of everything recorded so far.
func (s *AnswerStore) Events() []domain.AnsweredEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.AnsweredEvent(nil), s.events...)
}
