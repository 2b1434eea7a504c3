package app

import (
	"log"
	"sync"

	"quiz-session-service/internal/domain"
)

// State names the coordinator's lifecycle phase.
type State int

const (
	// StateAwaitingQuiz means no quiz definition has been loaded yet.
	StateAwaitingQuiz State = iota
	// StateIdle means the quiz is loaded and the cursor sits before the
	// first question.
	StateIdle
	// StateQuestionOpen means a question has been broadcast and gates are
	// open for answers.
	StateQuestionOpen
	// StateEnded is terminal: the quiz is exhausted, results delivered,
	// participants closed.
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateAwaitingQuiz:
		return "awaiting_quiz"
	case StateIdle:
		return "idle"
	case StateQuestionOpen:
		return "question_open"
	case StateEnded:
		return "ended"
	}
	return "unknown"
}

// AdvanceResult reports what a host advance command did.
type AdvanceResult struct {
	// Ignored is set when the command arrived in a state that cannot
	// advance (no quiz loaded, or already ended).
	Ignored bool
	// Ended is set when this advance exhausted the quiz.
	Ended bool
	// Results holds the final ledger snapshot when Ended is set.
	Results []domain.ResultEntry
	// Question and Index describe the question just opened when neither
	// Ignored nor Ended is set.
	Question domain.Question
	Index    int
}

// Coordinator owns one quiz session: the question cursor, the participant
// registry and the result ledger. Connection handlers run on their own
// goroutines, so every state mutation happens under mu; in particular the
// check-gate, echo, record, close-gate sequence in SubmitAnswer is atomic
// with respect to concurrent submissions and host advances.
type Coordinator struct {
	mu       sync.Mutex
	state    State
	quizName string
	seq      *sequence
	registry registry
	ledger   *ledger
	host     Conn
}

// NewCoordinator returns a coordinator in StateAwaitingQuiz. Each session
// gets its own instance; there is no shared process state.
func NewCoordinator() *Coordinator {
	return &Coordinator{
		state:  StateAwaitingQuiz,
		ledger: newLedger(),
	}
}

// LoadQuiz installs the quiz definition and moves the session to StateIdle.
// Loading happens exactly once per session.
func (c *Coordinator) LoadQuiz(quiz domain.Quiz) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateAwaitingQuiz {
		return domain.ErrQuizAlreadyLoaded
	}
	c.quizName = quiz.Name
	c.seq = newSequence(quiz.Questions)
	c.state = StateIdle
	return nil
}

// State reports the current lifecycle phase.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// QuizName returns the loaded quiz's name, or "" before loading.
func (c *Coordinator) QuizName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quizName
}

// SetHost attaches the host control connection so the final results can be
// delivered to it. A later host replaces an earlier one.
func (c *Coordinator) SetHost(conn Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.host = conn
}

// ClearHost detaches conn if it is still the attached host. Losing the host
// is advisory: the session keeps running, it just cannot advance.
func (c *Coordinator) ClearHost(conn Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.host == conn {
		c.host = nil
	}
}

// Join registers a new participant under the given identity. The identity
// is taken verbatim; a second join under an existing name coexists as a
// distinct entry. Participants joining mid-question do not receive the
// in-flight question and their gate stays closed until the next advance.
func (c *Coordinator) Join(name string, conn Conn) (*Participant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateAwaitingQuiz {
		return nil, domain.ErrQuizNotLoaded
	}
	p := &Participant{Name: name, conn: conn}
	c.registry.register(p)
	log.Printf("participant connects: %s", name)
	return p, nil
}

// Leave removes a participant. Safe to call in any state and more than
// once; removal never affects the cursor or other participants.
func (c *Coordinator) Leave(p *Participant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registry.unregister(p)
	log.Printf("participant disconnects: %s", p.Name)
}

// ParticipantCount reports the number of live registry entries.
func (c *Coordinator) ParticipantCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.size()
}

// Advance handles the host's proceed command. In order: pull the next
// question; on exhaustion deliver the ledger snapshot to the host, close
// every participant and go terminal; otherwise open all gates, then
// broadcast the question. Commands in a non-advanceable state are ignored.
func (c *Coordinator) Advance() AdvanceResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateAwaitingQuiz || c.state == StateEnded {
		return AdvanceResult{Ignored: true}
	}

	question, ok := c.seq.Advance()
	if !ok {
		results := c.ledger.snapshot()
		if c.host != nil {
			if err := c.host.Send(results); err != nil {
				log.Printf("cannot send results to host: %v", err)
			}
		}
		c.registry.closeAll("Quiz ended")
		c.state = StateEnded
		return AdvanceResult{Ended: true, Results: results}
	}

	log.Printf("next question: %d/%d", c.seq.CurrentIndex()+1, c.seq.Len())
	c.state = StateQuestionOpen
	c.registry.openAllGates()
	c.registry.broadcast(QuestionMessage{
		Type:    "question",
		Text:    question.Text,
		Options: question.Options,
	})
	return AdvanceResult{Question: question, Index: c.seq.CurrentIndex()}
}

// SubmitAnswer routes one inbound answer from p. An answer is accepted only
// while a question is open and p's gate is open; accepting echoes the
// answer back, closes the gate and records the entry. Everything else is
// dropped without an error. Grading is a placeholder: every accepted
// answer records as correct.
func (c *Coordinator) SubmitAnswer(p *Participant, answer string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateQuestionOpen || !p.mayAnswer {
		return false
	}
	if err := p.conn.Send(RepeatMessage{Type: "repeat", Text: answer}); err != nil {
		log.Printf("participant unreachable, cannot send data: %s: %v", p.Name, err)
	}
	p.mayAnswer = false
	c.ledger.record(p.Name, c.seq.CurrentIndex(), answer, true)
	return true
}
