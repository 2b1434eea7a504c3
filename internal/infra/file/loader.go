package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"quiz-session-service/internal/domain"
)

// Loader reads a quiz definition from a JSON file on disk. The quizID
// argument of LoadQuiz is ignored: the path names exactly one quiz.
type Loader struct {
	path string
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

func (l *Loader) LoadQuiz(_ context.Context, _ string) (domain.Quiz, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("read quiz definition: %w", err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz definition: %w", err)
	}
	if err := quiz.Validate(); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}
