package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-assessment-service/internal/domain"
)

// QuestionLoader fetches the question set from the backing store on a cache
// miss.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, quizID string) ([]domain.Question, error)
}

// QuestionWriter persists imported questions; the cache wraps it so imports
// invalidate the cached set.
type QuestionWriter interface {
	SaveAll(ctx context.Context, questions []domain.Question) error
}

// QuestionCache caches each quiz's question set in a Redis hash
// (HSET quiz:{quizID}:questions {questionID} {question JSON}) and falls back
// to the loader on a miss. Concurrent misses for one quiz collapse into a
// single load.
type QuestionCache struct {
	client *redis.Client
	loader QuestionLoader
	writer QuestionWriter
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionCache(client *redis.Client, loader QuestionLoader, writer QuestionWriter, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		writer: writer,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) FindAllByQuiz(ctx context.Context, quizID string) ([]domain.Question, error) {
	key := c.key(quizID)

	cached, err := c.client.HGetAll(ctx, key).Result()
	if err == nil && len(cached) > 0 {
		return questionsFromCache(cached)
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache meanwhile.
		cached, err := c.client.HGetAll(ctx, key).Result()
		if err == nil && len(cached) > 0 {
			return questionsFromCache(cached)
		}

		questions, err := c.loader.LoadQuestions(ctx, quizID)
		if err != nil {
			return nil, err
		}
		if len(questions) > 0 {
			pipe := c.client.Pipeline()
			for _, q := range questions {
				buf, err := json.Marshal(q)
				if err != nil {
					return nil, fmt.Errorf("marshal question: %w", err)
				}
				pipe.HSet(ctx, key, q.ID, buf)
			}
			if ttl := c.ttlWithJitter(); ttl > 0 {
				pipe.Expire(ctx, key, ttl)
			}
			_, _ = pipe.Exec(ctx)
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// SaveAll writes through to the backing store and drops the cached sets of
// the affected quizzes.
func (c *QuestionCache) SaveAll(ctx context.Context, questions []domain.Question) error {
	if err := c.writer.SaveAll(ctx, questions); err != nil {
		return err
	}
	seen := map[string]struct{}{}
	for _, q := range questions {
		if _, ok := seen[q.QuizID]; ok {
			continue
		}
		seen[q.QuizID] = struct{}{}
		_ = c.client.Del(ctx, c.key(q.QuizID)).Err()
	}
	return nil
}

func (c *QuestionCache) key(quizID string) string {
	return "quiz:" + quizID + ":questions"
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func questionsFromCache(cached map[string]string) ([]domain.Question, error) {
	questions := make([]domain.Question, 0, len(cached))
	for _, raw := range cached {
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return nil, fmt.Errorf("unmarshal cached question: %w", err)
		}
		questions = append(questions, q)
	}
	sort.SliceStable(questions, func(i, j int) bool { return questions[i].Order < questions[j].Order })
	return questions, nil
}
