package study

import (
	"context"
	"fmt"
	"time"
)

// WordStatus is the server-reported mastery state of a word.
type WordStatus int

const (
	StatusNew          WordStatus = iota // Never answered correctly
	StatusPendingCheck                   // Correct once, waiting for a same-session retest
	StatusReviewing                      // In the server's review rotation
	StatusMastered                       // Passed review
	StatusCompleted                      // Passed the final check
)

var statusLabels = map[WordStatus]string{
	StatusNew:          "new",
	StatusPendingCheck: "pending-check",
	StatusReviewing:    "reviewing",
	StatusMastered:     "mastered",
	StatusCompleted:    "completed",
}

func (s WordStatus) String() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Mode selects which words the server puts in a batch. The engine passes it
// through untouched.
type Mode string

const (
	ModeNew    Mode = "new"
	ModeReview Mode = "review"
	ModeRandom Mode = "random"
	ModeFinal  Mode = "final"
)

// Modes lists the study modes in menu order.
var Modes = []Mode{ModeNew, ModeReview, ModeRandom, ModeFinal}

// ParseMode validates a user-supplied mode string.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown study mode %q (want new, review, random or final)", s)
}

// Item is one slot in the study queue.
type Item struct {
	WordID       string
	ItemID       string // learning record ID, used for answer submission
	Word         string
	Translation  string
	Phonetic     string
	PartOfSpeech string
	Sentences    []string
	AudioURL     string
	Status       WordStatus

	IsRecheck    bool
	RecheckCount int
	InstanceKey  string // unique per queue slot, even for copies of the same word
}

// PendingRecheck is a scheduled re-insertion of a word at an absolute queue index.
type PendingRecheck struct {
	WordID       string
	TargetIndex  int
	RecheckCount int
}

// Batch is the word batch returned by the backend for a new session.
type Batch struct {
	SessionID  string
	Words      []Item
	TotalCount int
}

// Verdict is the backend's response to an answer submission.
type Verdict struct {
	Correct       bool
	CurrentStatus WordStatus
	StatusUpdate  string
	CorrectAnswer string
	NextReviewAt  *time.Time
}

// Backend is the remote study API the engine drives.
type Backend interface {
	// FetchSession requests a word batch for the collection and mode.
	FetchSession(ctx context.Context, collectionID string, mode Mode) (*Batch, error)

	// SubmitAnswer checks and records an answer for a learning record.
	SubmitAnswer(ctx context.Context, itemID, userInput string, isSkip bool) (*Verdict, error)
}

// Phase is the lifecycle stage of a session.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseActive
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseActive:
		return "active"
	case PhaseComplete:
		return "complete"
	default:
		return "uninitialized"
	}
}

// State is a point-in-time copy of the session state.
type State struct {
	Mode         Mode
	CollectionID string
	SessionID    string
	Queue        []Item
	Cursor       int
	Pending      []PendingRecheck

	TotalCount     int
	CorrectCount   int
	IncorrectCount int
	SkipCount      int
}

// Progress reports how far the cursor has moved through the queue.
type Progress struct {
	Current    int
	Total      int
	Percentage int
}

// Summary aggregates the answer counters of a session.
type Summary struct {
	SessionID    string
	CollectionID string
	Mode         Mode
	Answered     int
	Correct      int
	Incorrect    int
	Skipped      int
	Rechecks     int     // recheck copies inserted into the queue
	Accuracy     float64 // Correct / (Correct + Incorrect), 0 when nothing was graded
}
