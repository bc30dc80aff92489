package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"quiz-assessment-service/internal/domain"
)

// Store is the bun-backed implementation of the engine's write-side stores.
// Question reads are usually served through the cache in infra/redis instead;
// FindAllByQuiz here is the uncached path.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindAllByQuiz(ctx context.Context, quizID string) ([]domain.Question, error) {
	var rows []questionRow
	err := s.db.NewSelect().Model(&rows).
		Where("quiz_id = ?", quizID).
		Order("ord ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("find questions: %w", err)
	}
	questions := make([]domain.Question, 0, len(rows))
	for _, r := range rows {
		questions = append(questions, r.toDomain())
	}
	return questions, nil
}

func (s *Store) SaveAll(ctx context.Context, questions []domain.Question) error {
	if len(questions) == 0 {
		return nil
	}
	rows := make([]questionRow, 0, len(questions))
	for _, q := range questions {
		rows = append(rows, questionRowFrom(q))
	}
	if _, err := s.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("save questions: %w", err)
	}
	return nil
}

func (s *Store) FindOne(ctx context.Context, userID, quizID string) (*domain.Result, error) {
	var row resultRow
	err := s.db.NewSelect().Model(&row).
		Where("user_id = ?", userID).
		Where("quiz_id = ?", quizID).
		Where("NOT is_practice").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find result: %w", err)
	}
	result := row.toDomain()
	return &result, nil
}

func (s *Store) ListByQuiz(ctx context.Context, quizID string) ([]domain.Result, error) {
	var rows []resultRow
	err := s.db.NewSelect().Model(&rows).
		Where("quiz_id = ?", quizID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	results := make([]domain.Result, 0, len(rows))
	for _, r := range rows {
		results = append(results, r.toDomain())
	}
	return results, nil
}

// SaveSubmission writes the result and its answers in one transaction. The
// result goes first: the partial unique index on (user_id, quiz_id) rejects a
// concurrent duplicate before any answers are written, and the transaction
// guarantees answers never outlive a missing result.
func (s *Store) SaveSubmission(ctx context.Context, answers []domain.Answer, result domain.Result) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		row := resultRowFrom(result)
		if _, err := tx.NewInsert().Model(&row).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateAttempt
			}
			return fmt.Errorf("insert result: %w", err)
		}
		if len(answers) > 0 {
			rows := make([]answerRow, 0, len(answers))
			for _, a := range answers {
				rows = append(rows, answerRowFrom(a))
			}
			if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
				return fmt.Errorf("insert answers: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) RoleOf(ctx context.Context, userID string) (domain.Role, error) {
	var row userRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", userID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}
	return domain.Role(row.Role), nil
}

// isUniqueViolation reports whether err is Postgres error 23505.
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}
