// Package codec normalizes the four author-facing question shapes into the
// uniform stored representation used by grading and storage.
package codec

import (
	"fmt"
	"sort"

	"quiz-assessment-service/internal/domain"
)

// Definition is the author-facing question payload. Which fields are required
// depends on Type; Encode validates the combination.
type Definition struct {
	Text           string              `json:"text"`
	Type           domain.QuestionType `json:"type"`
	Options        []string            `json:"options,omitempty"`
	CorrectAnswer  string              `json:"correctAnswer,omitempty"`
	CorrectAnswers []string            `json:"correctAnswers,omitempty"`
	MatchingPairs  map[string]string   `json:"matchingPairs,omitempty"`
	Points         float64             `json:"points,omitempty"`
	Order          *int                `json:"order,omitempty"`
}

// Reason classifies why a definition failed to encode.
type Reason string

const (
	MissingField         Reason = "missing_field"
	InvalidType          Reason = "invalid_type"
	EmptyOptions         Reason = "empty_options"
	UnknownCorrectAnswer Reason = "unknown_correct_answer"
)

// EncodingError reports a single invalid definition. It is the recoverable
// validation error class: batch import collects these per item.
type EncodingError struct {
	Reason Reason
	Field  string
}

func (e *EncodingError) Error() string {
	if e.Field == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Field)
}

// Encode validates def and produces the stored question shape. The returned
// question has no ID, QuizID or Order; callers assign those. Encode never
// mutates def and performs no I/O.
func Encode(def Definition) (domain.Question, error) {
	if !def.Type.Valid() {
		return domain.Question{}, &EncodingError{Reason: InvalidType, Field: string(def.Type)}
	}
	if def.Text == "" {
		return domain.Question{}, &EncodingError{Reason: MissingField, Field: "text"}
	}

	q := domain.Question{
		Text:   def.Text,
		Type:   def.Type,
		Points: def.Points,
	}
	if q.Points <= 0 {
		q.Points = 1
	}

	switch def.Type {
	case domain.SingleChoice, domain.TrueFalse:
		if len(def.Options) == 0 {
			return domain.Question{}, &EncodingError{Reason: EmptyOptions, Field: "options"}
		}
		if def.CorrectAnswer == "" {
			return domain.Question{}, &EncodingError{Reason: MissingField, Field: "correctAnswer"}
		}
		if !contains(def.Options, def.CorrectAnswer) {
			return domain.Question{}, &EncodingError{Reason: UnknownCorrectAnswer, Field: def.CorrectAnswer}
		}
		q.Options = append([]string(nil), def.Options...)
		q.CorrectAnswers = []string{def.CorrectAnswer}

	case domain.MultipleChoice:
		if len(def.Options) == 0 {
			return domain.Question{}, &EncodingError{Reason: EmptyOptions, Field: "options"}
		}
		if len(def.CorrectAnswers) == 0 {
			return domain.Question{}, &EncodingError{Reason: MissingField, Field: "correctAnswers"}
		}
		for _, answer := range def.CorrectAnswers {
			if !contains(def.Options, answer) {
				return domain.Question{}, &EncodingError{Reason: UnknownCorrectAnswer, Field: answer}
			}
		}
		q.Options = append([]string(nil), def.Options...)
		q.CorrectAnswers = append([]string(nil), def.CorrectAnswers...)

	case domain.Matching:
		if len(def.MatchingPairs) == 0 {
			return domain.Question{}, &EncodingError{Reason: MissingField, Field: "matchingPairs"}
		}
		// Both sequences must come from one ordered traversal of the map so
		// that CorrectAnswers[i] stays the value paired with Options[i].
		keys := make([]string, 0, len(def.MatchingPairs))
		for key := range def.MatchingPairs {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		options := make([]string, 0, len(keys))
		answers := make([]string, 0, len(keys))
		for _, key := range keys {
			options = append(options, key)
			answers = append(answers, def.MatchingPairs[key])
		}
		q.Options = options
		q.CorrectAnswers = answers
	}

	return q, nil
}

// Pairs re-zips a Matching question's Options and CorrectAnswers back into the
// key-value mapping they encode. It is the inverse of the Matching branch of
// Encode and the one place that reads the positional alignment back out.
func Pairs(q domain.Question) map[string]string {
	pairs := make(map[string]string, len(q.Options))
	for i, key := range q.Options {
		if i < len(q.CorrectAnswers) {
			pairs[key] = q.CorrectAnswers[i]
		}
	}
	return pairs
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
