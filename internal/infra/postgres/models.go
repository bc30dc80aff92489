package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"quiz-assessment-service/internal/domain"
)

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID             string   `bun:"id,pk"`
	QuizID         string   `bun:"quiz_id"`
	Text           string   `bun:"text"`
	Type           string   `bun:"type"`
	Options        []string `bun:"options,array"`
	CorrectAnswers []string `bun:"correct_answers,array"`
	Points         float64  `bun:"points"`
	Order          int      `bun:"ord"`
}

func (r questionRow) toDomain() domain.Question {
	return domain.Question{
		ID:             r.ID,
		QuizID:         r.QuizID,
		Text:           r.Text,
		Type:           domain.QuestionType(r.Type),
		Options:        r.Options,
		CorrectAnswers: r.CorrectAnswers,
		Points:         r.Points,
		Order:          r.Order,
	}
}

func questionRowFrom(q domain.Question) questionRow {
	return questionRow{
		ID:             q.ID,
		QuizID:         q.QuizID,
		Text:           q.Text,
		Type:           string(q.Type),
		Options:        q.Options,
		CorrectAnswers: q.CorrectAnswers,
		Points:         q.Points,
		Order:          q.Order,
	}
}

type answerRow struct {
	bun.BaseModel `bun:"table:answers"`

	ID              string            `bun:"id,pk"`
	QuestionID      string            `bun:"question_id"`
	UserID          string            `bun:"user_id"`
	SelectedAnswer  string            `bun:"selected_answer"`
	SelectedAnswers []string          `bun:"selected_answers,array"`
	MatchingPairs   map[string]string `bun:"matching_pairs,type:jsonb"`
	IsCorrect       bool              `bun:"is_correct"`
	PartialScore    float64           `bun:"partial_score"`
	CreatedAt       time.Time         `bun:"created_at"`
}

func answerRowFrom(a domain.Answer) answerRow {
	return answerRow{
		ID:              a.ID,
		QuestionID:      a.QuestionID,
		UserID:          a.UserID,
		SelectedAnswer:  a.SelectedAnswer,
		SelectedAnswers: a.SelectedAnswers,
		MatchingPairs:   a.MatchingPairs,
		IsCorrect:       a.IsCorrect,
		PartialScore:    a.PartialScore,
		CreatedAt:       a.CreatedAt,
	}
}

type resultRow struct {
	bun.BaseModel `bun:"table:results"`

	ID                string    `bun:"id,pk"`
	UserID            string    `bun:"user_id"`
	QuizID            string    `bun:"quiz_id"`
	Score             float64   `bun:"score"`
	CorrectAnswers    int       `bun:"correct_answers"`
	TotalQuestions    int       `bun:"total_questions"`
	TotalPoints       float64   `bun:"total_points"`
	MaxPossiblePoints float64   `bun:"max_possible_points"`
	PartialPoints     float64   `bun:"partial_points"`
	IsPractice        bool      `bun:"is_practice"`
	CreatedAt         time.Time `bun:"created_at"`
}

func (r resultRow) toDomain() domain.Result {
	return domain.Result{
		ID:                r.ID,
		UserID:            r.UserID,
		QuizID:            r.QuizID,
		Score:             r.Score,
		CorrectAnswers:    r.CorrectAnswers,
		TotalQuestions:    r.TotalQuestions,
		TotalPoints:       r.TotalPoints,
		MaxPossiblePoints: r.MaxPossiblePoints,
		PartialPoints:     r.PartialPoints,
		IsPractice:        r.IsPractice,
		CreatedAt:         r.CreatedAt,
	}
}

func resultRowFrom(r domain.Result) resultRow {
	return resultRow{
		ID:                r.ID,
		UserID:            r.UserID,
		QuizID:            r.QuizID,
		Score:             r.Score,
		CorrectAnswers:    r.CorrectAnswers,
		TotalQuestions:    r.TotalQuestions,
		TotalPoints:       r.TotalPoints,
		MaxPossiblePoints: r.MaxPossiblePoints,
		PartialPoints:     r.PartialPoints,
		IsPractice:        r.IsPractice,
		CreatedAt:         r.CreatedAt,
	}
}

type userRow struct {
	bun.BaseModel `bun:"table:users"`

	ID   string `bun:"id,pk"`
	Role string `bun:"role"`
}
