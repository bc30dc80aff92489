// Package grading turns a submitted answer into a correctness verdict and a
// fractional score. All functions here are pure and safe for concurrent use.
package grading

import "quiz-assessment-service/internal/domain"

// Verdict is the outcome of grading a single answer.
type Verdict struct {
	IsCorrect    bool
	PartialScore float64 // always within [0,1]; 1 whenever IsCorrect
}

// wrongPickPenalty is the fixed deduction per incorrect selection on a
// multiple-choice answer.
const wrongPickPenalty = 0.1

// strategy grades one answer for one question type.
type strategy func(q domain.Question, sub domain.SubmittedAnswer) Verdict

var strategies = map[domain.QuestionType]strategy{
	domain.SingleChoice:   gradeSingle,
	domain.TrueFalse:      gradeSingle,
	domain.MultipleChoice: gradeMultiple,
	domain.Matching:       gradeMatching,
}

// Grade dispatches on the question type. Unknown types grade to zero rather
// than failing; shape validation happens before submissions reach the engine.
func Grade(q domain.Question, sub domain.SubmittedAnswer) Verdict {
	if grade, ok := strategies[q.Type]; ok {
		return grade(q, sub)
	}
	return Verdict{}
}

func gradeSingle(q domain.Question, sub domain.SubmittedAnswer) Verdict {
	for _, answer := range q.CorrectAnswers {
		if sub.SelectedAnswer == answer {
			return Verdict{IsCorrect: true, PartialScore: 1}
		}
	}
	return Verdict{}
}

// gradeMultiple awards full credit for exact set equality. Otherwise each
// correct pick earns 1/len(correct) and each wrong pick deducts a flat 0.1,
// floored at zero.
func gradeMultiple(q domain.Question, sub domain.SubmittedAnswer) Verdict {
	correct := toSet(q.CorrectAnswers)
	selected := toSet(sub.SelectedAnswers)

	if setEqual(selected, correct) && len(correct) > 0 {
		return Verdict{IsCorrect: true, PartialScore: 1}
	}
	if len(selected) == 0 || len(correct) == 0 {
		return Verdict{}
	}

	correctSelected := 0
	for pick := range selected {
		if _, ok := correct[pick]; ok {
			correctSelected++
		}
	}
	incorrectSelected := len(selected) - correctSelected

	partial := float64(correctSelected)/float64(len(correct)) - float64(incorrectSelected)*wrongPickPenalty
	if partial < 0 {
		partial = 0
	}
	return Verdict{PartialScore: partial}
}

// gradeMatching compares each submitted pair against the positional encoding:
// the pair (key, value) is correct when CorrectAnswers[indexOf(key, Options)]
// equals value. Keys outside Options and unanswered keys contribute nothing,
// unlike multiple choice there is no penalty for strays.
func gradeMatching(q domain.Question, sub domain.SubmittedAnswer) Verdict {
	totalPairs := len(q.Options)
	if totalPairs == 0 {
		return Verdict{}
	}

	correctPairs := 0
	for key, value := range sub.MatchingPairs {
		i := indexOf(q.Options, key)
		if i >= 0 && i < len(q.CorrectAnswers) && q.CorrectAnswers[i] == value {
			correctPairs++
		}
	}

	return Verdict{
		IsCorrect:    correctPairs == totalPairs,
		PartialScore: float64(correctPairs) / float64(totalPairs),
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}
