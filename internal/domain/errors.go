package domain

import "errors"

var (
	// ErrQuizNotLoaded is returned when a participant joins before a quiz
	// definition has been loaded into the session.
	ErrQuizNotLoaded = errors.New("quiz not loaded")
	// ErrQuizAlreadyLoaded is returned when a second definition load is
	// attempted on a running session.
	ErrQuizAlreadyLoaded = errors.New("quiz already loaded")
	// ErrQuizNotFound indicates the quiz definition source has no quiz
	// under the requested id.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidQuiz indicates a definition that parsed but fails the
	// structural checks in Quiz.Validate.
	ErrInvalidQuiz = errors.New("invalid quiz definition")
)
