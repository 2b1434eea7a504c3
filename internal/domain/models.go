package domain

import "fmt"

// Question is a single quiz prompt with its ordered answer options.
// TimeLimitSec is advisory only; the engine does not enforce it.
type Question struct {
	Text         string   `json:"text"`
	TimeLimitSec int      `json:"timeLimit,omitempty"`
	Options      []string `json:"options"`
}

// Quiz is an immutable quiz definition. Questions are identified by their
// 0-based position in the slice.
type Quiz struct {
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// Validate checks the structural requirements a loaded definition must meet
// before a session can start on it.
func (q Quiz) Validate() error {
	if q.Name == "" {
		return fmt.Errorf("%w: missing quiz name", ErrInvalidQuiz)
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: no questions", ErrInvalidQuiz)
	}
	for i, question := range q.Questions {
		if question.Text == "" {
			return fmt.Errorf("%w: question %d has no text", ErrInvalidQuiz, i)
		}
		if len(question.Options) == 0 {
			return fmt.Errorf("%w: question %d has no options", ErrInvalidQuiz, i)
		}
	}
	return nil
}

// ResultEntry is one accepted answer, flattened for reporting to the host
// when the session ends.
type ResultEntry struct {
	Participant   string `json:"participant"`
	QuestionIndex int    `json:"questionIndex"`
	Answer        string `json:"answer"`
	Correct       bool   `json:"correct"`
}
