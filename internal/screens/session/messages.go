package session

import "github.com/abhisek/wordcraft/internal/study"

// sessionStartedMsg is sent when the engine finished loading a batch.
type sessionStartedMsg struct {
	Err error
}

// answerResultMsg is sent when an answer submission returns.
type answerResultMsg struct {
	Item    study.Item
	Input   string
	Skip    bool
	Verdict *study.Verdict
	Err     error
}
