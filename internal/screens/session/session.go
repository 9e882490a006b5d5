package session

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/wordcraft/internal/router"
	"github.com/abhisek/wordcraft/internal/screen"
	"github.com/abhisek/wordcraft/internal/screens/summary"
	"github.com/abhisek/wordcraft/internal/store"
	"github.com/abhisek/wordcraft/internal/study"
	"github.com/abhisek/wordcraft/internal/ui/components"
	"github.com/abhisek/wordcraft/internal/ui/layout"
)

type phase int

const (
	phaseLoading phase = iota
	phaseLoadFailed
	phaseEmpty
	phaseAnswering
	phaseSubmitting
	phaseFeedback
)

// Collection identifies the collection being studied.
type Collection struct {
	ID   string
	Name string
}

// SessionScreen drives one study session through a study.Engine.
type SessionScreen struct {
	engine     *study.Engine
	events     store.EventRepo
	logger     *zap.Logger
	collection Collection
	mode       study.Mode
	now        func() time.Time

	phase      phase
	confirming bool
	input      components.TextInput
	result     *answerResultMsg
	localMatch bool
	errMsg     string // load failure
	submitErr  string
	startedAt  time.Time
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.BackHandler = (*SessionScreen)(nil)

// Option configures a SessionScreen.
type Option func(*SessionScreen)

// WithEventRepo persists session and answer events.
func WithEventRepo(r store.EventRepo) Option {
	return func(s *SessionScreen) { s.events = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *SessionScreen) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a SessionScreen for the given collection and mode.
func New(engine *study.Engine, c Collection, mode study.Mode, opts ...Option) *SessionScreen {
	s := &SessionScreen{
		engine:     engine,
		logger:     zap.NewNop(),
		collection: c,
		mode:       mode,
		now:        time.Now,
		input:      newInput(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newInput() components.TextInput {
	return components.NewTextInput("Type the word...", 64)
}

func (s *SessionScreen) Init() tea.Cmd {
	s.phase = phaseLoading
	return tea.Batch(s.startCmd(), s.input.Init())
}

func (s *SessionScreen) Title() string {
	if s.collection.Name != "" {
		return s.collection.Name + " · " + string(s.mode)
	}
	return "Study"
}

// HandlesBack keeps Esc for the quit confirmation while words are on screen.
func (s *SessionScreen) HandlesBack() bool {
	switch s.phase {
	case phaseAnswering, phaseSubmitting, phaseFeedback:
		return true
	}
	return false
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	if s.confirming {
		return []layout.KeyHint{
			{Key: "Y", Description: "End session"},
			{Key: "N", Description: "Keep going"},
		}
	}
	switch s.phase {
	case phaseLoadFailed:
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Back"},
		}
	case phaseEmpty:
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	case phaseFeedback:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next word"},
			{Key: "Esc", Description: "Quit"},
		}
	case phaseAnswering:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Check"},
			{Key: "Tab", Description: "Skip"},
			{Key: "Esc", Description: "Quit"},
		}
	}
	return nil
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionStartedMsg:
		return s.handleStarted(msg)
	case answerResultMsg:
		return s.handleResult(msg)
	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	if s.phase == phaseAnswering && !s.confirming {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SessionScreen) startCmd() tea.Cmd {
	engine, id, mode := s.engine, s.collection.ID, s.mode
	return func() tea.Msg {
		return sessionStartedMsg{Err: engine.Start(context.Background(), id, mode)}
	}
}

func (s *SessionScreen) submitCmd(item study.Item, input string, skip bool) tea.Cmd {
	engine := s.engine
	return func() tea.Msg {
		v, err := engine.Submit(context.Background(), item.ItemID, input, skip)
		return answerResultMsg{Item: item, Input: input, Skip: skip, Verdict: v, Err: err}
	}
}

func (s *SessionScreen) handleStarted(msg sessionStartedMsg) (screen.Screen, tea.Cmd) {
	if errors.Is(msg.Err, study.ErrSessionAbandoned) {
		return s, nil
	}
	if msg.Err != nil {
		s.phase = phaseLoadFailed
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	if s.engine.Empty() {
		s.phase = phaseEmpty
		return s, nil
	}

	s.phase = phaseAnswering
	s.startedAt = s.now()
	st := s.engine.State()
	s.appendSession(store.ActionStart, study.Summary{SessionID: st.SessionID}, len(st.Queue))
	return s, nil
}

func (s *SessionScreen) handleResult(msg answerResultMsg) (screen.Screen, tea.Cmd) {
	if s.phase != phaseSubmitting {
		return s, nil
	}
	if msg.Err != nil {
		s.phase = phaseAnswering
		s.submitErr = msg.Err.Error()
		s.input.Reopen()
		return s, nil
	}

	s.submitErr = ""
	s.result = &msg
	s.phase = phaseFeedback
	s.appendAnswer(msg)
	return s, nil
}

func (s *SessionScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.confirming {
		switch key {
		case "y", "Y":
			s.confirming = false
			return s, s.abandon()
		case "n", "N", "esc":
			s.confirming = false
		}
		return s, nil
	}

	switch s.phase {
	case phaseLoadFailed:
		switch key {
		case "r", "R":
			s.errMsg = ""
			return s, s.Init()
		case "esc", "enter":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil

	case phaseEmpty:
		if key == "enter" || key == "esc" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil

	case phaseSubmitting, phaseLoading:
		return s, nil

	case phaseFeedback:
		switch key {
		case "esc":
			s.confirming = true
		case "enter":
			return s, s.next()
		}
		return s, nil

	case phaseAnswering:
		switch key {
		case "esc":
			s.confirming = true
			return s, nil
		case "enter":
			return s, s.submit(false)
		case "tab":
			return s, s.submit(true)
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	return s, nil
}

// submit sends the typed answer, or a skip. Blank answers are ignored.
func (s *SessionScreen) submit(skip bool) tea.Cmd {
	item, ok := s.engine.Current()
	if !ok {
		return nil
	}
	input := s.input.Value()
	if skip {
		input = ""
	} else if input == "" {
		return nil
	}

	s.localMatch = !skip && matches(input, item.Word)
	s.input.Submit(s.localMatch)
	s.phase = phaseSubmitting
	return s.submitCmd(item, input, skip)
}

// next advances past the answered word and finishes the session at the end
// of the queue.
func (s *SessionScreen) next() tea.Cmd {
	s.engine.Advance()
	s.result = nil
	s.input = newInput()

	if s.engine.IsComplete() {
		return s.finish()
	}
	s.phase = phaseAnswering
	return s.input.Init()
}

func (s *SessionScreen) finish() tea.Cmd {
	sum := s.engine.Summary()
	s.appendSession(store.ActionComplete, sum, len(s.engine.State().Queue))
	s.logger.Info("session complete",
		zap.String("session_id", sum.SessionID),
		zap.String("collection_id", sum.CollectionID),
		zap.Int("answered", sum.Answered),
		zap.Int("correct", sum.Correct))

	result := summary.Result{
		Summary:    sum,
		Collection: s.collection.Name,
		Duration:   s.now().Sub(s.startedAt),
	}
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: summary.New(result)}
	}
}

func (s *SessionScreen) abandon() tea.Cmd {
	sum := s.engine.Summary()
	s.appendSession(store.ActionAbandon, sum, len(s.engine.State().Queue))
	s.engine.Reset()
	return func() tea.Msg { return router.PopScreenMsg{} }
}

func (s *SessionScreen) appendSession(action string, sum study.Summary, served int) {
	if s.events == nil {
		return
	}
	data := store.SessionEventData{
		SessionID:    sum.SessionID,
		CollectionID: s.collection.ID,
		Mode:         string(s.mode),
		Action:       action,
		WordsServed:  served,
		Correct:      sum.Correct,
		Incorrect:    sum.Incorrect,
		Skipped:      sum.Skipped,
		Rechecks:     sum.Rechecks,
	}
	if !s.startedAt.IsZero() && action != store.ActionStart {
		data.DurationSecs = int(s.now().Sub(s.startedAt).Seconds())
	}
	if err := s.events.AppendSessionEvent(context.Background(), data); err != nil {
		s.logger.Warn("save session event", zap.String("action", action), zap.Error(err))
	}
}

func (s *SessionScreen) appendAnswer(msg answerResultMsg) {
	if s.events == nil {
		return
	}
	st := s.engine.State()
	data := store.AnswerEventData{
		SessionID:    st.SessionID,
		CollectionID: s.collection.ID,
		ItemID:       msg.Item.ItemID,
		WordID:       msg.Item.WordID,
		Word:         msg.Item.Word,
		UserInput:    msg.Input,
		Skip:         msg.Skip,
		Correct:      msg.Verdict.Correct,
		Status:       int(msg.Verdict.CurrentStatus),
		Recheck:      msg.Item.IsRecheck,
	}
	if err := s.events.AppendAnswerEvent(context.Background(), data); err != nil {
		s.logger.Warn("save answer event", zap.String("word_id", data.WordID), zap.Error(err))
	}
}

// matches is the local answer check: case-insensitive, surrounding space ignored.
func matches(input, word string) bool {
	return strings.EqualFold(strings.TrimSpace(input), strings.TrimSpace(word))
}
