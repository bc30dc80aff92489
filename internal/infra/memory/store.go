// Package memory provides mutex-guarded in-memory stores, used by tests and
// by the demo mode of the server when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-assessment-service/internal/domain"
)

// Store implements every store interface of the app package on plain maps.
// Uniqueness of non-practice results is enforced under the same lock as the
// insert, mirroring what the partial unique index does in Postgres.
type Store struct {
	mu        sync.RWMutex
	questions map[string][]domain.Question
	answers   []domain.Answer
	results   []domain.Result
	roles     map[string]domain.Role
}

func NewStore() *Store {
	return &Store{
		questions: make(map[string][]domain.Question),
		roles:     make(map[string]domain.Role),
	}
}

func (s *Store) FindAllByQuiz(_ context.Context, quizID string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	questions := append([]domain.Question(nil), s.questions[quizID]...)
	sort.SliceStable(questions, func(i, j int) bool { return questions[i].Order < questions[j].Order })
	return questions, nil
}

func (s *Store) SaveAll(_ context.Context, questions []domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range questions {
		s.questions[q.QuizID] = append(s.questions[q.QuizID], q)
	}
	return nil
}

func (s *Store) FindOne(_ context.Context, userID, quizID string) (*domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.results {
		r := s.results[i]
		if r.UserID == userID && r.QuizID == quizID && !r.IsPractice {
			return &r, nil
		}
	}
	return nil, nil
}

func (s *Store) ListByQuiz(_ context.Context, quizID string) ([]domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var results []domain.Result
	for _, r := range s.results {
		if r.QuizID == quizID {
			results = append(results, r)
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].CreatedAt.After(results[j].CreatedAt) })
	return results, nil
}

func (s *Store) SaveSubmission(_ context.Context, answers []domain.Answer, result domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !result.IsPractice {
		for _, r := range s.results {
			if r.UserID == result.UserID && r.QuizID == result.QuizID && !r.IsPractice {
				return domain.ErrDuplicateAttempt
			}
		}
	}
	s.answers = append(s.answers, answers...)
	s.results = append(s.results, result)
	return nil
}

func (s *Store) RoleOf(_ context.Context, userID string) (domain.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	role, ok := s.roles[userID]
	if !ok {
		return "", domain.ErrUserNotFound
	}
	return role, nil
}

// SetRole registers a user. Exposed for seeding and tests.
func (s *Store) SetRole(userID string, role domain.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[userID] = role
}

// AnswersFor returns the persisted answers of one user, for assertions in
// tests and the demo endpoints.
func (s *Store) AnswersFor(userID string) []domain.Answer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Answer
	for _, a := range s.answers {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out
}
