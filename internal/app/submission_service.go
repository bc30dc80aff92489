package app

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"quiz-assessment-service/internal/domain"
	"quiz-assessment-service/internal/grading"
)

// SubmissionService grades a full quiz submission and persists the outcome.
// A submission either fully grades or is fully rejected; there is no partial
// success here, in contrast to batch question import.
type SubmissionService struct {
	users       UserStore
	questions   QuestionSource
	results     ResultStore
	submissions SubmissionStore
	feed        *ResultFeed
	now         func() time.Time
	newID       func() string
}

func NewSubmissionService(users UserStore, questions QuestionSource, results ResultStore, submissions SubmissionStore, feed *ResultFeed) *SubmissionService {
	return &SubmissionService{
		users:       users,
		questions:   questions,
		results:     results,
		submissions: submissions,
		feed:        feed,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// NewSubmissionServiceWithClock is test-only for deterministic timestamps.
func NewSubmissionServiceWithClock(users UserStore, questions QuestionSource, results ResultStore, submissions SubmissionStore, feed *ResultFeed, now func() time.Time) *SubmissionService {
	s := NewSubmissionService(users, questions, results, submissions, feed)
	s.now = now
	return s
}

// Submit grades answers in input order, persists them together with the
// aggregated result, and returns the result. Non-practice users get exactly
// one result per quiz: a duplicate fails with domain.ErrDuplicateAttempt both
// at the pre-check and, for the concurrent case, at the insert.
func (s *SubmissionService) Submit(ctx context.Context, quizID, userID string, answers []domain.SubmittedAnswer) (domain.Result, error) {
	role, err := s.users.RoleOf(ctx, userID)
	if err != nil {
		return domain.Result{}, err
	}
	isPractice := role.IsPractice()

	if !isPractice {
		existing, err := s.results.FindOne(ctx, userID, quizID)
		if err != nil {
			return domain.Result{}, err
		}
		if existing != nil {
			return domain.Result{}, domain.ErrDuplicateAttempt
		}
	}

	questions, err := s.questions.FindAllByQuiz(ctx, quizID)
	if err != nil {
		return domain.Result{}, err
	}
	if len(questions) == 0 {
		return domain.Result{}, domain.ErrQuizHasNoQuestions
	}
	byID := make(map[string]domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	now := s.now()
	var (
		graded        []domain.Answer
		correctCount  int
		totalPoints   float64
		partialPoints float64
		maxPoints     float64
	)
	for _, sub := range answers {
		question, ok := byID[sub.QuestionID]
		if !ok {
			// A malformed submission indicates a client bug; reject it
			// wholesale rather than grade the recognizable part.
			return domain.Result{}, domain.ErrUnknownQuestion
		}
		verdict := grading.Grade(question, sub)
		points := question.PointsOrDefault()
		if verdict.IsCorrect {
			correctCount++
			totalPoints += points
		} else if verdict.PartialScore > 0 {
			partialPoints += verdict.PartialScore * points
		}
		maxPoints += points

		graded = append(graded, domain.Answer{
			ID:              s.newID(),
			QuestionID:      sub.QuestionID,
			UserID:          userID,
			SelectedAnswer:  sub.SelectedAnswer,
			SelectedAnswers: sub.SelectedAnswers,
			MatchingPairs:   sub.MatchingPairs,
			IsCorrect:       verdict.IsCorrect,
			PartialScore:    verdict.PartialScore,
			CreatedAt:       now,
		})
	}

	if maxPoints == 0 {
		return domain.Result{}, domain.ErrQuizHasNoPoints
	}

	result := domain.Result{
		ID:                s.newID(),
		UserID:            userID,
		QuizID:            quizID,
		Score:             roundScore((totalPoints + partialPoints) / maxPoints * 10),
		CorrectAnswers:    correctCount,
		TotalQuestions:    len(questions),
		TotalPoints:       totalPoints + partialPoints,
		MaxPossiblePoints: maxPoints,
		PartialPoints:     partialPoints,
		IsPractice:        isPractice,
		CreatedAt:         now,
	}

	if err := s.submissions.SaveSubmission(ctx, graded, result); err != nil {
		return domain.Result{}, err
	}
	if s.feed != nil {
		s.feed.Publish(result)
	}
	return result, nil
}

// Results lists persisted results for a quiz, newest first per store contract.
func (s *SubmissionService) Results(ctx context.Context, quizID string) ([]domain.Result, error) {
	return s.results.ListByQuiz(ctx, quizID)
}

// roundScore rounds to two decimals, half away from zero (math.Round).
func roundScore(score float64) float64 {
	return math.Round(score*100) / 100
}
