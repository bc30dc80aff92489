package domain

import "time"

// QuestionType discriminates the four supported question shapes.
type QuestionType string

const (
	SingleChoice   QuestionType = "single_choice"
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	Matching       QuestionType = "matching"
)

// Valid reports whether t is one of the supported question types.
func (t QuestionType) Valid() bool {
	switch t {
	case SingleChoice, MultipleChoice, TrueFalse, Matching:
		return true
	}
	return false
}

// Question is the uniform stored representation of an authored question.
// Options and CorrectAnswers are positionally aligned for Matching questions:
// CorrectAnswers[i] is the value paired with the key Options[i]. For every
// other type CorrectAnswers is the set of satisfying strings and option order
// carries no meaning for grading.
type Question struct {
	ID             string       `json:"id"`
	QuizID         string       `json:"quizId"`
	Text           string       `json:"text"`
	Type           QuestionType `json:"type"`
	Options        []string     `json:"options"`
	CorrectAnswers []string     `json:"correctAnswers"`
	Points         float64      `json:"points"` // defaults to 1 if zero
	Order          int          `json:"order"`  // display ordering only
}

// PointsOrDefault returns the question's point value, treating zero as 1.
func (q Question) PointsOrDefault() float64 {
	if q.Points <= 0 {
		return 1
	}
	return q.Points
}

// SubmittedAnswer models one answer within a submission. Exactly one of the
// payload fields is populated, depending on the question's type.
type SubmittedAnswer struct {
	QuestionID      string            `json:"questionId"`
	SelectedAnswer  string            `json:"selectedAnswer,omitempty"`
	SelectedAnswers []string          `json:"selectedAnswers,omitempty"`
	MatchingPairs   map[string]string `json:"matchingPairs,omitempty"`
}

// Answer is the persisted record of one graded answer. It is created once per
// (question, user) per attempt and never mutated afterwards.
type Answer struct {
	ID              string            `json:"id"`
	QuestionID      string            `json:"questionId"`
	UserID          string            `json:"userId"`
	SelectedAnswer  string            `json:"selectedAnswer,omitempty"`
	SelectedAnswers []string          `json:"selectedAnswers,omitempty"`
	MatchingPairs   map[string]string `json:"matchingPairs,omitempty"`
	IsCorrect       bool              `json:"isCorrect"`
	PartialScore    float64           `json:"partialScore"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// Result aggregates one graded attempt. For non-practice attempts at most one
// Result may exist per (user, quiz); the storage layer enforces that.
type Result struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	QuizID            string    `json:"quizId"`
	Score             float64   `json:"score"` // 0..10, two decimals
	CorrectAnswers    int       `json:"correctAnswers"`
	TotalQuestions    int       `json:"totalQuestions"`
	TotalPoints       float64   `json:"totalPoints"`
	MaxPossiblePoints float64   `json:"maxPossiblePoints"`
	PartialPoints     float64   `json:"partialPoints"`
	IsPractice        bool      `json:"isPractice"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Role is the closed set of user roles the engine recognizes.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// IsPractice reports whether attempts by this role are practice runs, exempt
// from the one-result-per-user rule.
func (r Role) IsPractice() bool {
	return r == RoleTeacher || r == RoleAdmin
}
