package app_test

import (
	"sync"
	"testing"

	"quiz-session-service/internal/app"
	"quiz-session-service/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	sent   []any
	closed []string
}

func (c *fakeConn) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, v)
	return nil
}

func (c *fakeConn) Close(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = append(c.closed, reason)
	return nil
}

func (c *fakeConn) messages() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]any, len(c.sent))
	copy(out, c.sent)
	return out
}

func (c *fakeConn) closeReasons() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.closed))
	copy(out, c.closed)
	return out
}

func (c *fakeConn) questions() []app.QuestionMessage {
	var out []app.QuestionMessage
	for _, m := range c.messages() {
		if q, ok := m.(app.QuestionMessage); ok {
			out = append(out, q)
		}
	}
	return out
}

func (c *fakeConn) repeats() []app.RepeatMessage {
	var out []app.RepeatMessage
	for _, m := range c.messages() {
		if r, ok := m.(app.RepeatMessage); ok {
			out = append(out, r)
		}
	}
	return out
}

func twoQuestionQuiz() domain.Quiz {
	return domain.Quiz{
		Name: "Capitals",
		Questions: []domain.Question{
			{Text: "Capital of France?", Options: []string{"A", "B"}},
			{Text: "Capital of Italy?", Options: []string{"A", "B"}},
		},
	}
}

func TestJoinBeforeLoadFails(t *testing.T) {
	c := app.NewCoordinator()
	if _, err := c.Join("alice", &fakeConn{}); err != domain.ErrQuizNotLoaded {
		t.Fatalf("expected ErrQuizNotLoaded, got %v", err)
	}
}

func TestLoadQuizOnce(t *testing.T) {
	c := app.NewCoordinator()
	if err := c.LoadQuiz(twoQuestionQuiz()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.State() != app.StateIdle {
		t.Fatalf("expected idle after load, got %v", c.State())
	}
	if err := c.LoadQuiz(twoQuestionQuiz()); err != domain.ErrQuizAlreadyLoaded {
		t.Fatalf("expected ErrQuizAlreadyLoaded, got %v", err)
	}
}

// TestSessionFlow walks the whole session: one participant answers the
// first question once, extra submissions are dropped, and the final report
// contains exactly the accepted answers.
func TestSessionFlow(t *testing.T) {
	c := app.NewCoordinator()
	if err := c.LoadQuiz(twoQuestionQuiz()); err != nil {
		t.Fatalf("load: %v", err)
	}

	host := &fakeConn{}
	c.SetHost(host)

	aliceConn := &fakeConn{}
	alice, err := c.Join("alice", aliceConn)
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	// Answers are gated until a question opens.
	if c.SubmitAnswer(alice, "early") {
		t.Fatalf("expected submission before first question to be dropped")
	}

	res := c.Advance()
	if res.Ignored || res.Ended || res.Index != 0 {
		t.Fatalf("unexpected advance result: %+v", res)
	}
	if c.State() != app.StateQuestionOpen {
		t.Fatalf("expected question open, got %v", c.State())
	}
	if qs := aliceConn.questions(); len(qs) != 1 || qs[0].Text != "Capital of France?" || qs[0].Type != "question" {
		t.Fatalf("expected question broadcast, got %+v", qs)
	}

	if !c.SubmitAnswer(alice, "A") {
		t.Fatalf("expected first answer accepted")
	}
	if reps := aliceConn.repeats(); len(reps) != 1 || reps[0].Text != "A" || reps[0].Type != "repeat" {
		t.Fatalf("expected answer echo, got %+v", reps)
	}

	// The gate closed on accept: nothing further gets through.
	if c.SubmitAnswer(alice, "B") {
		t.Fatalf("expected second answer dropped")
	}
	if reps := aliceConn.repeats(); len(reps) != 1 {
		t.Fatalf("expected no echo for dropped answer, got %+v", reps)
	}

	// Next question reopens the gate but alice stays silent.
	res = c.Advance()
	if res.Index != 1 {
		t.Fatalf("expected second question, got %+v", res)
	}
	if qs := aliceConn.questions(); len(qs) != 2 {
		t.Fatalf("expected second broadcast, got %d", len(qs))
	}

	// Exhaustion: results to host, participants closed, terminal state.
	res = c.Advance()
	if !res.Ended {
		t.Fatalf("expected ended, got %+v", res)
	}
	want := []domain.ResultEntry{{Participant: "alice", QuestionIndex: 0, Answer: "A", Correct: true}}
	if len(res.Results) != 1 || res.Results[0] != want[0] {
		t.Fatalf("expected results %+v, got %+v", want, res.Results)
	}
	if c.State() != app.StateEnded {
		t.Fatalf("expected ended state, got %v", c.State())
	}
	if reasons := aliceConn.closeReasons(); len(reasons) != 1 || reasons[0] != "Quiz ended" {
		t.Fatalf("expected participant closed with reason, got %v", reasons)
	}

	hostGot := host.messages()
	if len(hostGot) != 1 {
		t.Fatalf("expected one results payload on host, got %d", len(hostGot))
	}
	if entries, ok := hostGot[0].([]domain.ResultEntry); !ok || len(entries) != 1 || entries[0] != want[0] {
		t.Fatalf("expected host results %+v, got %+v", want, hostGot[0])
	}

	// Advance past the end is ignored.
	if res := c.Advance(); !res.Ignored {
		t.Fatalf("expected advance after end ignored, got %+v", res)
	}
}

func TestLateJoinDoesNotReceiveInFlightQuestion(t *testing.T) {
	c := app.NewCoordinator()
	if err := c.LoadQuiz(twoQuestionQuiz()); err != nil {
		t.Fatalf("load: %v", err)
	}

	aliceConn := &fakeConn{}
	if _, err := c.Join("alice", aliceConn); err != nil {
		t.Fatalf("join: %v", err)
	}
	c.Advance()

	bobConn := &fakeConn{}
	bob, err := c.Join("bob", bobConn)
	if err != nil {
		t.Fatalf("late join: %v", err)
	}
	if len(bobConn.questions()) != 0 {
		t.Fatalf("late joiner must not receive the in-flight question")
	}
	if c.SubmitAnswer(bob, "A") {
		t.Fatalf("late joiner's gate must stay closed until the next advance")
	}

	// The next advance includes bob.
	c.Advance()
	if len(bobConn.questions()) != 1 {
		t.Fatalf("expected bob to receive the next question")
	}
	if !c.SubmitAnswer(bob, "B") {
		t.Fatalf("expected bob's gate open after advance")
	}
}

func TestDisconnectMidQuestion(t *testing.T) {
	c := app.NewCoordinator()
	if err := c.LoadQuiz(twoQuestionQuiz()); err != nil {
		t.Fatalf("load: %v", err)
	}

	aliceConn := &fakeConn{}
	alice, _ := c.Join("alice", aliceConn)
	bobConn := &fakeConn{}
	c.Join("bob", bobConn)

	c.Advance()
	c.Leave(alice)

	if c.ParticipantCount() != 1 {
		t.Fatalf("expected 1 participant after disconnect, got %d", c.ParticipantCount())
	}

	c.Advance()
	if len(aliceConn.questions()) != 1 {
		t.Fatalf("disconnected participant must not receive later broadcasts")
	}
	if len(bobConn.questions()) != 2 {
		t.Fatalf("remaining participant should keep receiving broadcasts")
	}
}

// TestDuplicateIdentitiesCoexist pins the duplicate-handling policy: both
// entries live independently, and because ledger entries key on the name,
// the later accepted answer wins for a question index.
func TestDuplicateIdentitiesCoexist(t *testing.T) {
	c := app.NewCoordinator()
	if err := c.LoadQuiz(twoQuestionQuiz()); err != nil {
		t.Fatalf("load: %v", err)
	}

	firstConn := &fakeConn{}
	first, _ := c.Join("bob", firstConn)
	secondConn := &fakeConn{}
	second, _ := c.Join("bob", secondConn)

	c.Advance()
	if len(firstConn.questions()) != 1 || len(secondConn.questions()) != 1 {
		t.Fatalf("both duplicate entries must receive broadcasts")
	}

	if !c.SubmitAnswer(first, "A") {
		t.Fatalf("first bob's answer should be accepted")
	}
	if !c.SubmitAnswer(second, "B") {
		t.Fatalf("second bob has his own gate")
	}

	c.Advance()
	res := c.Advance()
	if !res.Ended {
		t.Fatalf("expected ended, got %+v", res)
	}
	if len(res.Results) != 1 {
		t.Fatalf("shared identity key collapses to one ledger entry, got %d", len(res.Results))
	}
	if res.Results[0].Answer != "B" {
		t.Fatalf("expected the later answer to win, got %q", res.Results[0].Answer)
	}
}

// TestConcurrentSubmissionsAcceptOne races many goroutines against one
// open gate; exactly one submission may land. Run with -race.
func TestConcurrentSubmissionsAcceptOne(t *testing.T) {
	c := app.NewCoordinator()
	if err := c.LoadQuiz(twoQuestionQuiz()); err != nil {
		t.Fatalf("load: %v", err)
	}
	conn := &fakeConn{}
	alice, _ := c.Join("alice", conn)
	c.Advance()

	const n = 64
	var wg sync.WaitGroup
	accepted := make(chan bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			accepted <- c.SubmitAnswer(alice, "A")
		}()
	}
	wg.Wait()
	close(accepted)

	count := 0
	for ok := range accepted {
		if ok {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one accepted submission, got %d", count)
	}
	if len(conn.repeats()) != 1 {
		t.Fatalf("expected exactly one echo, got %d", len(conn.repeats()))
	}
}

func TestHostLossIsAdvisory(t *testing.T) {
	c := app.NewCoordinator()
	if err := c.LoadQuiz(twoQuestionQuiz()); err != nil {
		t.Fatalf("load: %v", err)
	}
	host := &fakeConn{}
	c.SetHost(host)
	c.ClearHost(host)

	conn := &fakeConn{}
	c.Join("alice", conn)

	// The session keeps working without a host attached; the final
	// results delivery is simply skipped.
	c.Advance()
	c.Advance()
	res := c.Advance()
	if !res.Ended {
		t.Fatalf("expected session to end without a host, got %+v", res)
	}
	if len(host.messages()) != 0 {
		t.Fatalf("detached host must not receive results")
	}
}

func TestClearHostIgnoresReplacedConn(t *testing.T) {
	c := app.NewCoordinator()
	if err := c.LoadQuiz(twoQuestionQuiz()); err != nil {
		t.Fatalf("load: %v", err)
	}
	old := &fakeConn{}
	replacement := &fakeConn{}
	c.SetHost(old)
	c.SetHost(replacement)
	c.ClearHost(old)

	c.Advance()
	c.Advance()
	res := c.Advance()
	if !res.Ended {
		t.Fatalf("expected ended, got %+v", res)
	}
	if len(replacement.messages()) != 1 {
		t.Fatalf("expected replacement host to receive results")
	}
}
