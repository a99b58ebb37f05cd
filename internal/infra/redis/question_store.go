package redis

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"quiz-ranking-service/internal/domain"
)

// QuestionLoader fetches questions from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadActive(ctx context.Context) ([]domain.Question, error)
	FindByID(ctx context.Context, id string) (domain.Question, bool, error)
}

// QuestionStore caches the question bank in Redis and samples from it there.
// Active ids live in a set:   SADD quiz:questions:active {questionID}
// Questions live in hashes:   HSET quiz:question:{questionID} text ... correct ... active ...
// Sampling uses SRANDMEMBER with a positive count, which never repeats a member.
type QuestionStore struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

const activeKey = "quiz:questions:active"

func NewQuestionStore(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionStore {
	return &QuestionStore{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *QuestionStore) SampleActive(ctx context.Context, n int) ([]domain.Question, error) {
	if err := s.warm(ctx); err != nil {
		return nil, err
	}

	questions, stale, err := s.sample(ctx, n)
	if err != nil {
		return nil, err
	}
	if !stale || len(questions) >= n {
		return questions, nil
	}

	// The set still names questions that went away; rebuild it once from the loader.
	if err := s.client.Del(ctx, activeKey).Err(); err != nil {
		return nil, err
	}
	if err := s.warm(ctx); err != nil {
		return nil, err
	}
	questions, _, err = s.sample(ctx, n)
	return questions, err
}

// sample draws n ids from the active set. stale reports whether any id no longer
// resolved to an active question.
func (s *QuestionStore) sample(ctx context.Context, n int) ([]domain.Question, bool, error) {
	ids, err := s.client.SRandMemberN(ctx, activeKey, int64(n)).Result()
	if err != nil {
		return nil, false, err
	}

	questions := make([]domain.Question, 0, len(ids))
	for _, id := range ids {
		q, ok, err := s.FindByID(ctx, id)
		if err != nil {
			return nil, false, err
		}
		if ok && q.Active {
			questions = append(questions, q)
		}
	}
	return questions, len(questions) < len(ids), nil
}

func (s *QuestionStore) FindByID(ctx context.Context, id string) (domain.Question, bool, error) {
	key := questionKey(id)
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err == nil && len(fields) > 0 {
		return questionFromHash(id, fields), true, nil
	}

	type found struct {
		q  domain.Question
		ok bool
	}
	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		q, ok, err := s.loader.FindByID(ctx, id)
		if err != nil || !ok {
			return found{}, err
		}
		pipe := s.client.Pipeline()
		s.cacheQuestion(ctx, pipe, q, s.ttlWithJitter())
		_, _ = pipe.Exec(ctx)
		return found{q: q, ok: true}, nil
	})
	if err != nil {
		return domain.Question{}, false, err
	}
	f := result.(found)
	return f.q, f.ok, nil
}

// warm fills the active set and question hashes from the loader when the set is missing.
func (s *QuestionStore) warm(ctx context.Context) error {
	exists, err := s.client.Exists(ctx, activeKey).Result()
	if err == nil && exists > 0 {
		return nil
	}

	_, err, _ = s.sf.Do(activeKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if exists, err := s.client.Exists(ctx, activeKey).Result(); err == nil && exists > 0 {
			return nil, nil
		}

		questions, err := s.loader.LoadActive(ctx)
		if err != nil {
			return nil, err
		}
		if len(questions) == 0 {
			return nil, nil
		}

		ttl := s.ttlWithJitter()
		ids := make([]interface{}, 0, len(questions))
		pipe := s.client.TxPipeline()
		pipe.Del(ctx, activeKey)
		for _, q := range questions {
			s.cacheQuestion(ctx, pipe, q, ttl)
			ids = append(ids, q.ID)
		}
		pipe.SAdd(ctx, activeKey, ids...)
		if ttl > 0 {
			pipe.Expire(ctx, activeKey, ttl)
		}
		_, err = pipe.Exec(ctx)
		return nil, err
	})
	return err
}

func (s *QuestionStore) cacheQuestion(ctx context.Context, pipe redis.Pipeliner, q domain.Question, ttl time.Duration) {
	key := questionKey(q.ID)
	pipe.HSet(ctx, key, map[string]interface{}{
		"text":     q.Text,
		"option_a": q.OptionA,
		"option_b": q.OptionB,
		"option_c": q.OptionC,
		"correct":  string(q.CorrectAnswer),
		"active":   strconv.FormatBool(q.Active),
	})
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
}

func questionKey(id string) string {
	return "quiz:question:" + id
}

func questionFromHash(id string, fields map[string]string) domain.Question {
	active, _ := strconv.ParseBool(fields["active"])
	return domain.Question{
		ID:            id,
		Text:          fields["text"],
		OptionA:       fields["option_a"],
		OptionB:       fields["option_b"],
		OptionC:       fields["option_c"],
		CorrectAnswer: domain.Letter(fields["correct"]),
		Active:        active,
	}
}

func (s *QuestionStore) ttlWithJitter() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	jitterMax := int64(s.ttl) / 10
	return s.ttl + time.Duration(s.rnd.Int63n(jitterMax+1))
}
