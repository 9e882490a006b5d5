package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by SettingsRepo.Get for a missing key.
var ErrNotFound = errors.New("not found")

// Setting keys.
const (
	KeyBaseURL = "server.base_url"
	KeyToken   = "auth.token"
	KeyUser    = "auth.user"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit        int       // max results (0 = unlimited)
	After        int64     // sequence > After
	Before       int64     // sequence < Before
	From         time.Time // timestamp >= From
	To           time.Time // timestamp <= To
	CollectionID string    // exact match when non-empty
	SessionID    string    // exact match when non-empty
}

// SettingsRepo is a small persistent key/value store for client settings.
type SettingsRepo interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set inserts or replaces the value for key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Session event actions.
const (
	ActionStart    = "start"
	ActionComplete = "complete"
	ActionAbandon  = "abandon"
)

// SessionEventData is a study session lifecycle event.
type SessionEventData struct {
	SessionID    string
	CollectionID string
	Mode         string
	Action       string
	WordsServed  int
	Correct      int
	Incorrect    int
	Skipped      int
	Rechecks     int
	DurationSecs int
}

// SessionEvent is a stored SessionEventData.
type SessionEvent struct {
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// AnswerEventData records one submitted answer.
type AnswerEventData struct {
	SessionID    string
	CollectionID string
	ItemID       string
	WordID       string
	Word         string
	UserInput    string
	Skip         bool
	Correct      bool
	Status       int
	Recheck      bool
}

// AnswerEvent is a stored AnswerEventData.
type AnswerEvent struct {
	Sequence  int64
	Timestamp time.Time
	AnswerEventData
}

// CollectionStat aggregates local answer history for one collection.
type CollectionStat struct {
	CollectionID string
	Sessions     int
	Answers      int
	Correct      int
	Skipped      int
}

// Accuracy is Correct over non-skipped answers, or 0.
func (c CollectionStat) Accuracy() float64 {
	graded := c.Answers - c.Skipped
	if graded <= 0 {
		return 0
	}
	return float64(c.Correct) / float64(graded)
}

// EventRepo provides append and query access to study events.
type EventRepo interface {
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error

	// QuerySessionEvents returns session events, newest first.
	QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEvent, error)

	// QueryAnswerEvents returns answer events, newest first.
	QueryAnswerEvents(ctx context.Context, opts QueryOpts) ([]AnswerEvent, error)

	// CollectionStats aggregates answers per collection, ordered by collection ID.
	CollectionStats(ctx context.Context) ([]CollectionStat, error)
}
