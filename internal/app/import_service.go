package app

import (
	"context"

	"github.com/google/uuid"

	"quiz-assessment-service/internal/codec"
	"quiz-assessment-service/internal/domain"
)

// ImportFailure records one definition that could not be encoded.
type ImportFailure struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ImportOutcome is the mixed result of a batch import. A non-empty Failed
// list alongside imported questions is a successful outcome, not an error.
type ImportOutcome struct {
	Imported []domain.Question `json:"imported"`
	Failed   []ImportFailure   `json:"failed"`
}

// ImportService applies the question codec to author-submitted batches with
// per-item isolation: one bad definition never blocks the rest.
type ImportService struct {
	questions QuestionStore
	newID     func() string
}

func NewImportService(questions QuestionStore) *ImportService {
	return &ImportService{questions: questions, newID: uuid.NewString}
}

// ImportBatch encodes each definition independently, collecting failures by
// index, and persists the survivors in a single store write. When every item
// fails the batch fails with domain.ErrAllQuestionsInvalid and storage is not
// touched. A failed store write fails the whole batch: encoding success does
// not guarantee persistence success.
func (s *ImportService) ImportBatch(ctx context.Context, quizID string, defs []codec.Definition) (ImportOutcome, error) {
	outcome := ImportOutcome{}
	for i, def := range defs {
		q, err := codec.Encode(def)
		if err != nil {
			outcome.Failed = append(outcome.Failed, ImportFailure{Index: i, Reason: err.Error()})
			continue
		}
		q.ID = s.newID()
		q.QuizID = quizID
		if def.Order != nil {
			q.Order = *def.Order
		} else {
			q.Order = i
		}
		outcome.Imported = append(outcome.Imported, q)
	}

	if len(outcome.Imported) == 0 {
		return outcome, domain.ErrAllQuestionsInvalid
	}
	if err := s.questions.SaveAll(ctx, outcome.Imported); err != nil {
		return ImportOutcome{}, err
	}
	return outcome, nil
}
