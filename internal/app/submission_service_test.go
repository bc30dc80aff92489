package app_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"quiz-assessment-service/internal/app"
	"quiz-assessment-service/internal/domain"
	"quiz-assessment-service/internal/infra/memory"
)

func newTestService(questions []domain.Question) (*app.SubmissionService, *memory.Store, *app.ResultFeed) {
	store := memory.NewStore()
	store.SetRole("student-1", domain.RoleStudent)
	store.SetRole("student-2", domain.RoleStudent)
	store.SetRole("teacher-1", domain.RoleTeacher)
	_ = store.SaveAll(context.Background(), questions)
	feed := app.NewResultFeed()
	svc := app.NewSubmissionServiceWithClock(store, store, store, store, feed, func() time.Time {
		return time.Date(2025, 8, 12, 10, 0, 0, 0, time.UTC)
	})
	return svc, store, feed
}

func twoQuestionQuiz() []domain.Question {
	return []domain.Question{
		{
			ID:             "q1",
			QuizID:         "quiz-1",
			Text:           "simple",
			Type:           domain.SingleChoice,
			Options:        []string{"A", "B"},
			CorrectAnswers: []string{"A"},
			Points:         1,
		},
		{
			ID:             "q2",
			QuizID:         "quiz-1",
			Text:           "pick two",
			Type:           domain.MultipleChoice,
			Options:        []string{"A", "B", "C", "D"},
			CorrectAnswers: []string{"A", "B"},
			Points:         1,
		},
	}
}

func TestSubmitAggregatesFullQuiz(t *testing.T) {
	svc, _, _ := newTestService(twoQuestionQuiz())

	// q1 fully correct, q2 half credit (one of two correct picks, no strays).
	result, err := svc.Submit(context.Background(), "quiz-1", "student-1", []domain.SubmittedAnswer{
		{QuestionID: "q1", SelectedAnswer: "A"},
		{QuestionID: "q2", SelectedAnswers: []string{"A"}},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Score != 7.5 {
		t.Fatalf("expected score 7.5, got %v", result.Score)
	}
	if result.CorrectAnswers != 1 || result.TotalQuestions != 2 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if result.TotalPoints != 1.5 || result.PartialPoints != 0.5 || result.MaxPossiblePoints != 2 {
		t.Fatalf("unexpected point totals: %+v", result)
	}
	if result.IsPractice {
		t.Fatalf("student attempt must not be practice")
	}
}

// Score rounding is half away from zero (math.Round): 4.5 of 8 points is
// exactly 5.625 on the 10 scale and must round up to 5.63, not down to 5.62.
// The point values are dyadic so the intermediate arithmetic is exact.
func TestSubmitScoreRoundingHalfAwayFromZero(t *testing.T) {
	svc, _, _ := newTestService([]domain.Question{
		{ID: "q1", QuizID: "quiz-1", Text: "big", Type: domain.SingleChoice,
			Options: []string{"A", "B"}, CorrectAnswers: []string{"A"}, Points: 4.5},
		{ID: "q2", QuizID: "quiz-1", Text: "small", Type: domain.SingleChoice,
			Options: []string{"A", "B"}, CorrectAnswers: []string{"A"}, Points: 3.5},
	})

	result, err := svc.Submit(context.Background(), "quiz-1", "student-1", []domain.SubmittedAnswer{
		{QuestionID: "q1", SelectedAnswer: "A"},
		{QuestionID: "q2", SelectedAnswer: "B"},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Score != 5.63 {
		t.Fatalf("expected 5.63, got %v", result.Score)
	}
}

func TestSubmitScoreStaysInBounds(t *testing.T) {
	svc, _, _ := newTestService(twoQuestionQuiz())
	result, err := svc.Submit(context.Background(), "quiz-1", "student-1", []domain.SubmittedAnswer{
		{QuestionID: "q1", SelectedAnswer: "A"},
		{QuestionID: "q2", SelectedAnswers: []string{"A", "B"}},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Score < 0 || result.Score > 10 {
		t.Fatalf("score out of bounds: %v", result.Score)
	}
	if math.Abs(result.Score-10) > 1e-9 {
		t.Fatalf("all-correct submission should score 10, got %v", result.Score)
	}
}

func TestSubmitDuplicateAttempt(t *testing.T) {
	svc, store, _ := newTestService(twoQuestionQuiz())
	answers := []domain.SubmittedAnswer{{QuestionID: "q1", SelectedAnswer: "A"}}

	if _, err := svc.Submit(context.Background(), "quiz-1", "student-1", answers); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	_, err := svc.Submit(context.Background(), "quiz-1", "student-1", answers)
	if !errors.Is(err, domain.ErrDuplicateAttempt) {
		t.Fatalf("expected duplicate attempt error, got %v", err)
	}

	results, _ := store.ListByQuiz(context.Background(), "quiz-1")
	if len(results) != 1 {
		t.Fatalf("expected exactly one persisted result, got %d", len(results))
	}
}

func TestSubmitPracticeRoleBypassesUniqueness(t *testing.T) {
	svc, store, _ := newTestService(twoQuestionQuiz())
	answers := []domain.SubmittedAnswer{{QuestionID: "q1", SelectedAnswer: "A"}}

	for i := 0; i < 2; i++ {
		result, err := svc.Submit(context.Background(), "quiz-1", "teacher-1", answers)
		if err != nil {
			t.Fatalf("practice submit %d failed: %v", i, err)
		}
		if !result.IsPractice {
			t.Fatalf("teacher attempt should be practice")
		}
	}
	results, _ := store.ListByQuiz(context.Background(), "quiz-1")
	if len(results) != 2 {
		t.Fatalf("expected two practice results, got %d", len(results))
	}
}

func TestSubmitUnknownQuestionRejectsWholeSubmission(t *testing.T) {
	svc, store, _ := newTestService(twoQuestionQuiz())

	_, err := svc.Submit(context.Background(), "quiz-1", "student-1", []domain.SubmittedAnswer{
		{QuestionID: "q1", SelectedAnswer: "A"},
		{QuestionID: "ghost", SelectedAnswer: "A"},
	})
	if !errors.Is(err, domain.ErrUnknownQuestion) {
		t.Fatalf("expected unknown question error, got %v", err)
	}
	if results, _ := store.ListByQuiz(context.Background(), "quiz-1"); len(results) != 0 {
		t.Fatalf("expected nothing persisted, got %d results", len(results))
	}
	if answers := store.AnswersFor("student-1"); len(answers) != 0 {
		t.Fatalf("expected no persisted answers, got %d", len(answers))
	}
}

func TestSubmitEmptyQuiz(t *testing.T) {
	svc, _, _ := newTestService(nil)
	_, err := svc.Submit(context.Background(), "quiz-1", "student-1", []domain.SubmittedAnswer{
		{QuestionID: "q1", SelectedAnswer: "A"},
	})
	if !errors.Is(err, domain.ErrQuizHasNoQuestions) {
		t.Fatalf("expected empty quiz error, got %v", err)
	}
}

func TestSubmitUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(twoQuestionQuiz())
	_, err := svc.Submit(context.Background(), "quiz-1", "nobody", []domain.SubmittedAnswer{
		{QuestionID: "q1", SelectedAnswer: "A"},
	})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestConcurrentSubmitsYieldOneResult(t *testing.T) {
	svc, store, _ := newTestService(twoQuestionQuiz())
	answers := []domain.SubmittedAnswer{{QuestionID: "q1", SelectedAnswer: "A"}}

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(context.Background(), "quiz-1", "student-1", answers)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrDuplicateAttempt):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one winning submit, got %d", succeeded)
	}
	results, _ := store.ListByQuiz(context.Background(), "quiz-1")
	if len(results) != 1 {
		t.Fatalf("expected exactly one persisted result, got %d", len(results))
	}
}

func TestSubmitPublishesToFeed(t *testing.T) {
	svc, _, feed := newTestService(twoQuestionQuiz())

	updates, cancel := feed.Subscribe("quiz-1")
	defer cancel()

	if _, err := svc.Submit(context.Background(), "quiz-1", "student-1", []domain.SubmittedAnswer{
		{QuestionID: "q1", SelectedAnswer: "A"},
	}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	select {
	case result := <-updates:
		if result.UserID != "student-1" || result.QuizID != "quiz-1" {
			t.Fatalf("unexpected feed payload: %+v", result)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected a feed update")
	}
}
