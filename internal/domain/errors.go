package domain

import "errors"

var (
	// ErrDuplicateAttempt is returned when a non-practice user already has a
	// result for the quiz. It must never overwrite the existing result.
	ErrDuplicateAttempt = errors.New("quiz already attempted")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizHasNoQuestions is returned when a submission targets a quiz with
	// an empty question set.
	ErrQuizHasNoQuestions = errors.New("quiz has no questions")
	// ErrQuizHasNoPoints guards the score computation against dividing by a
	// zero point total. It signals a misconfigured quiz, not a bad submission.
	ErrQuizHasNoPoints = errors.New("quiz has no points")
	// ErrUnknownQuestion is returned when a submitted answer references a
	// question that does not belong to the quiz.
	ErrUnknownQuestion = errors.New("question not part of quiz")
	// ErrUserNotFound is returned when the submitting user cannot be resolved.
	ErrUserNotFound = errors.New("user not found")
	// ErrAllQuestionsInvalid is returned by batch import when every definition
	// failed to encode; nothing is persisted in that case.
	ErrAllQuestionsInvalid = errors.New("no valid questions in batch")
)
