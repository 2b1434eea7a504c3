package app

// QuestionMessage is the payload broadcast to every participant when the
// host advances to a question.
type QuestionMessage struct {
	Type    string   `json:"type"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// RepeatMessage echoes an accepted answer back to its submitter.
type RepeatMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
