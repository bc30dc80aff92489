package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-assessment-service/internal/domain"
)

// QuestionLoader is the read-only question path used behind the Redis cache.
// It goes through pgxpool rather than bun because it only ever scans rows.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, quiz_id, text, type, options, correct_answers, points, ord
		 FROM questions WHERE quiz_id=$1 ORDER BY ord ASC`, quizID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		var qtype string
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Text, &qtype, &q.Options, &q.CorrectAnswers, &q.Points, &q.Order); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Type = domain.QuestionType(qtype)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return questions, nil
}
