package app

import "quiz-session-service/internal/domain"

// sequence is the coordinator's cursor over the quiz questions. The cursor
// only moves forward, one question per Advance, and never passes the end.
type sequence struct {
	questions []domain.Question
	current   int
}

func newSequence(questions []domain.Question) *sequence {
	return &sequence{questions: questions, current: -1}
}

// Advance returns the next question in order. The second return is false
// once the sequence is exhausted; exhaustion is ordinary data here, not an
// error, and repeated calls past the end keep returning false.
func (s *sequence) Advance() (domain.Question, bool) {
	if s.current+1 >= len(s.questions) {
		s.current = len(s.questions)
		return domain.Question{}, false
	}
	s.current++
	return s.questions[s.current], true
}

func (s *sequence) Len() int {
	return len(s.questions)
}

// CurrentIndex is the 0-based index of the question last returned by
// Advance, or -1 before the first advance.
func (s *sequence) CurrentIndex() int {
	return s.current
}
