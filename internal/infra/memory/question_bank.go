package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"quiz-ranking-service/internal/domain"
)

// QuestionBank is a simple question store backed by an in-memory slice (useful for tests/demos).
type QuestionBank struct {
	mu        sync.Mutex
	rnd       *rand.Rand
	questions []domain.Question
	byID      map[string]domain.Question
}

func NewQuestionBank(questions []domain.Question) *QuestionBank {
	byID := make(map[string]domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	return &QuestionBank{
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		questions: append([]domain.Question(nil), questions...),
		byID:      byID,
	}
}

func (b *QuestionBank) SampleActive(_ context.Context, n int) ([]domain.Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return sampleActive(b.rnd, b.questions, n), nil
}

func (b *QuestionBank) FindByID(_ context.Context, id string) (domain.Question, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.byID[id]
	return q, ok, nil
}

// LoadActive returns every active question; it lets the bank act as a cache loader.
func (b *QuestionBank) LoadActive(_ context.Context) ([]domain.Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	active := make([]domain.Question, 0, len(b.questions))
	for _, q := range b.questions {
		if q.Active {
			active = append(active, q)
		}
	}
	return active, nil
}

// sampleActive picks up to n distinct active questions with a partial Fisher-Yates shuffle.
// rnd must not be shared without external locking.
func sampleActive(rnd *rand.Rand, questions []domain.Question, n int) []domain.Question {
	pool := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		if q.Active {
			pool = append(pool, q)
		}
	}
	if n > len(pool) {
		n = len(pool)
	}
	if n <= 0 {
		return []domain.Question{}
	}
	for i := 0; i < n; i++ {
		j := i + rnd.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
