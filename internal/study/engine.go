// Package study implements the in-session study scheduler: it loads a word
// batch, serves it as a mutable queue, re-inserts pending-check words a few
// steps after they were answered, and tracks answer counters and completion.
package study

import (
	"context"
	"math"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRecheckDelay is how many positions after the current one a
// pending-check word is re-inserted.
const DefaultRecheckDelay = 3

// Engine owns the state of one study session at a time.
//
// The mutex only guards in-memory state; it is never held across a backend
// call. Callers must not run two Submit calls concurrently.
type Engine struct {
	backend Backend
	logger  *zap.Logger
	delay   int
	newKey  func() string

	mu       sync.Mutex
	state    State
	phase    Phase
	gen      uint64 // bumped whenever the session is replaced or reset
	rechecks int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRecheckDelay overrides DefaultRecheckDelay. Non-positive values are ignored.
func WithRecheckDelay(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.delay = n
		}
	}
}

// WithKeyFunc overrides the instance key generator.
func WithKeyFunc(f func() string) Option {
	return func(e *Engine) {
		if f != nil {
			e.newKey = f
		}
	}
}

// New creates an Engine that talks to backend.
func New(backend Backend, opts ...Option) *Engine {
	e := &Engine{
		backend: backend,
		logger:  zap.NewNop(),
		delay:   DefaultRecheckDelay,
		newKey:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start fetches a batch for (collectionID, mode) and replaces any prior
// session with it. On failure the engine is left uninitialized.
func (e *Engine) Start(ctx context.Context, collectionID string, mode Mode) error {
	if collectionID == "" {
		return &SessionLoadError{CollectionID: collectionID, Mode: mode, Err: ErrEmptyCollection}
	}

	e.mu.Lock()
	e.resetLocked()
	e.phase = PhaseLoading
	gen := e.gen
	e.mu.Unlock()

	batch, err := e.backend.FetchSession(ctx, collectionID, mode)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gen != gen {
		e.logger.Debug("discarding stale session batch",
			zap.String("collection_id", collectionID),
			zap.String("mode", string(mode)))
		return ErrSessionAbandoned
	}

	if err != nil {
		e.resetLocked()
		e.logger.Warn("session load failed",
			zap.String("collection_id", collectionID),
			zap.String("mode", string(mode)),
			zap.Error(err))
		return &SessionLoadError{CollectionID: collectionID, Mode: mode, Err: err}
	}

	var words []Item
	if batch != nil {
		words = batch.Words
	}
	queue := make([]Item, len(words))
	for i, w := range words {
		w.IsRecheck = false
		w.RecheckCount = 0
		w.InstanceKey = e.newKey()
		queue[i] = w
	}

	total := 0
	sessionID := ""
	if batch != nil {
		total = batch.TotalCount
		sessionID = batch.SessionID
	}
	if total == 0 {
		total = len(queue)
	}

	e.state = State{
		Mode:         mode,
		CollectionID: collectionID,
		SessionID:    sessionID,
		Queue:        queue,
		TotalCount:   total,
	}
	e.phase = PhaseActive

	e.logger.Info("session started",
		zap.String("session_id", sessionID),
		zap.String("collection_id", collectionID),
		zap.String("mode", string(mode)),
		zap.Int("words", len(queue)),
		zap.Int("total_count", total))
	return nil
}

// Submit sends an answer for itemID and updates the counters from the
// backend's verdict. Counters are only touched after a successful response.
func (e *Engine) Submit(ctx context.Context, itemID, userInput string, isSkip bool) (*Verdict, error) {
	e.mu.Lock()
	gen := e.gen
	e.mu.Unlock()

	v, err := e.backend.SubmitAnswer(ctx, itemID, userInput, isSkip)
	if err != nil {
		e.logger.Warn("answer submission failed", zap.String("item_id", itemID), zap.Error(err))
		return nil, &SubmissionError{ItemID: itemID, Err: err}
	}
	if v == nil {
		v = &Verdict{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gen != gen {
		e.logger.Debug("discarding verdict for replaced session", zap.String("item_id", itemID))
		return v, nil
	}

	switch {
	case isSkip:
		e.state.SkipCount++
	case v.Correct:
		e.state.CorrectCount++
		if v.CurrentStatus == StatusPendingCheck {
			if cur, ok := e.currentLocked(); ok {
				e.scheduleLocked(cur.WordID)
			}
		}
	default:
		e.state.IncorrectCount++
	}

	e.logger.Debug("answer recorded",
		zap.String("session_id", e.state.SessionID),
		zap.String("item_id", itemID),
		zap.Bool("skip", isSkip),
		zap.Bool("correct", v.Correct),
		zap.Stringer("status", v.CurrentStatus),
		zap.Int("cursor", e.state.Cursor))
	return v, nil
}

// Current returns the item under the cursor, or false when the cursor is
// outside the queue.
func (e *Engine) Current() (Item, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentLocked()
}

func (e *Engine) currentLocked() (Item, bool) {
	q := e.state.Queue
	if e.state.Cursor < 0 || e.state.Cursor >= len(q) {
		return Item{}, false
	}
	return q[e.state.Cursor], true
}

// IsComplete reports whether the cursor has moved past the end of a
// non-empty queue. An empty queue is never complete.
func (e *Engine) IsComplete() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.completeLocked()
}

func (e *Engine) completeLocked() bool {
	return len(e.state.Queue) > 0 && e.state.Cursor >= len(e.state.Queue)
}

// Empty reports whether an active session received no words.
func (e *Engine) Empty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase == PhaseActive && len(e.state.Queue) == 0
}

// Progress returns the cursor position relative to the current queue length.
func (e *Engine) Progress() Progress {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := len(e.state.Queue)
	current := min(e.state.Cursor, total)
	pct := 0
	if total > 0 {
		pct = int(math.Round(float64(current) / float64(total) * 100))
	}
	return Progress{Current: current, Total: total, Percentage: pct}
}

// Summary returns the session counters.
func (e *Engine) Summary() Summary {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.state
	sum := Summary{
		SessionID:    s.SessionID,
		CollectionID: s.CollectionID,
		Mode:         s.Mode,
		Answered:     s.CorrectCount + s.IncorrectCount + s.SkipCount,
		Correct:      s.CorrectCount,
		Incorrect:    s.IncorrectCount,
		Skipped:      s.SkipCount,
		Rechecks:     e.rechecks,
	}
	if graded := s.CorrectCount + s.IncorrectCount; graded > 0 {
		sum.Accuracy = float64(s.CorrectCount) / float64(graded)
	}
	return sum
}

// State returns a copy of the session state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.state
	s.Queue = append([]Item(nil), e.state.Queue...)
	s.Pending = append([]PendingRecheck(nil), e.state.Pending...)
	return s
}

// Phase returns the lifecycle stage of the session.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Reset clears all session state. In-flight Start or Submit results that
// arrive afterwards are discarded.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

func (e *Engine) resetLocked() {
	e.gen++
	e.state = State{}
	e.phase = PhaseUninitialized
	e.rechecks = 0
}
