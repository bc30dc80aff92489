package app

import (
	"context"

	"quiz-assessment-service/internal/domain"
)

// QuestionSource serves the stored question set of a quiz (from cache or the
// backing store).
type QuestionSource interface {
	FindAllByQuiz(ctx context.Context, quizID string) ([]domain.Question, error)
}

// QuestionStore extends reads with the batch write used by question import.
type QuestionStore interface {
	QuestionSource
	SaveAll(ctx context.Context, questions []domain.Question) error
}

// ResultStore reads persisted quiz results.
type ResultStore interface {
	// FindOne returns the non-practice result for (userID, quizID), or nil
	// when the user has not attempted the quiz yet.
	FindOne(ctx context.Context, userID, quizID string) (*domain.Result, error)
	ListByQuiz(ctx context.Context, quizID string) ([]domain.Result, error)
}

// SubmissionStore persists the answers and the result of one graded attempt
// as a unit. Implementations must reject a second non-practice result for the
// same (user, quiz) with domain.ErrDuplicateAttempt, atomically with the
// insert itself, so concurrent submissions cannot both slip past the
// pre-check.
type SubmissionStore interface {
	SaveSubmission(ctx context.Context, answers []domain.Answer, result domain.Result) error
}

// UserStore resolves user roles. It is read-only from this service.
type UserStore interface {
	RoleOf(ctx context.Context, userID string) (domain.Role, error)
}
