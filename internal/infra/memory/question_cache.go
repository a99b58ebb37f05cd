package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"quiz-ranking-service/internal/domain"
)

// QuestionLoader fetches questions from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadActive(ctx context.Context) ([]domain.Question, error)
	FindByID(ctx context.Context, id string) (domain.Question, bool, error)
}

// QuestionCache keeps a TTL snapshot of the active questions to avoid repeated DB hits.
// Sampling happens in-process over the snapshot.
type QuestionCache struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu        sync.Mutex
	rnd       *rand.Rand
	active    []domain.Question
	byID      map[string]domain.Question
	expiresAt time.Time
}

func NewQuestionCache(loader QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) SampleActive(ctx context.Context, n int) ([]domain.Question, error) {
	active, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return sampleActive(c.rnd, active, n), nil
}

// FindByID serves active questions from the snapshot; anything else (inactive or
// added after the snapshot) goes to the loader.
func (c *QuestionCache) FindByID(ctx context.Context, id string) (domain.Question, bool, error) {
	if _, err := c.snapshot(ctx); err != nil {
		return domain.Question{}, false, err
	}
	c.mu.Lock()
	q, ok := c.byID[id]
	c.mu.Unlock()
	if ok {
		return q, true, nil
	}
	return c.loader.FindByID(ctx, id)
}

func (c *QuestionCache) snapshot(ctx context.Context) ([]domain.Question, error) {
	c.mu.Lock()
	if c.active != nil && c.expiresAt.After(c.clock()) {
		active := c.active
		c.mu.Unlock()
		return active, nil
	}
	c.mu.Unlock()

	result, err, _ := c.sf.Do("active", func() (interface{}, error) {
		now := c.clock()
		c.mu.Lock()
		if c.active != nil && c.expiresAt.After(now) {
			active := c.active
			c.mu.Unlock()
			return active, nil
		}
		c.mu.Unlock()

		active, err := c.loader.LoadActive(ctx)
		if err != nil {
			return nil, err
		}
		byID := make(map[string]domain.Question, len(active))
		for _, q := range active {
			byID[q.ID] = q
		}

		c.mu.Lock()
		c.active = active
		c.byID = byID
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.mu.Unlock()
		return active, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// ttlWithJitter must be called with c.mu held.
func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
