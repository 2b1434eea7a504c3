package app

import "quiz-session-service/internal/domain"

type ledgerKey struct {
	participant string
	question    int
}

// ledger stores accepted answers keyed by (participant identity, question
// index), preserving first-record order for reporting. The ledger itself
// overwrites on a repeated key; the at-most-one-answer guarantee is the
// coordinator's gate discipline, not enforced here.
type ledger struct {
	entries []domain.ResultEntry
	index   map[ledgerKey]int
}

func newLedger() *ledger {
	return &ledger{index: make(map[ledgerKey]int)}
}

func (l *ledger) record(participant string, question int, answer string, correct bool) {
	key := ledgerKey{participant: participant, question: question}
	entry := domain.ResultEntry{
		Participant:   participant,
		QuestionIndex: question,
		Answer:        answer,
		Correct:       correct,
	}
	if i, ok := l.index[key]; ok {
		l.entries[i] = entry
		return
	}
	l.index[key] = len(l.entries)
	l.entries = append(l.entries, entry)
}

// snapshot returns a copy of all entries in first-record order, suitable
// for transmission to the host.
func (l *ledger) snapshot() []domain.ResultEntry {
	out := make([]domain.ResultEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
