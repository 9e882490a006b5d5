package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/wordcraft/internal/router"
	"github.com/abhisek/wordcraft/internal/screen"
	"github.com/abhisek/wordcraft/internal/store"
	"github.com/abhisek/wordcraft/internal/ui/layout"
	"github.com/abhisek/wordcraft/internal/ui/theme"
)

const sessionLimit = 50

type historyLoadedMsg struct {
	Sessions []store.SessionEvent
	Err      error
}

type answersLoadedMsg struct {
	SessionID string
	Answers   []store.AnswerEvent
	Err       error
}

// HistoryScreen displays finished study sessions and their answers.
type HistoryScreen struct {
	eventRepo store.EventRepo
	sessions  []store.SessionEvent
	answers   map[string][]store.AnswerEvent // sessionID → answers, oldest first
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		answers:   make(map[string][]store.AnswerEvent),
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		events, err := repo.QuerySessionEvents(context.Background(), store.QueryOpts{Limit: sessionLimit * 2})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}

		// Start events carry no results; only finished sessions are listed.
		var finished []store.SessionEvent
		for _, e := range events {
			if e.Action == store.ActionStart {
				continue
			}
			finished = append(finished, e)
			if len(finished) == sessionLimit {
				break
			}
		}
		return historyLoadedMsg{Sessions: finished}
	}
}

func (s *HistoryScreen) loadAnswers(sessionID string) tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		events, err := repo.QueryAnswerEvents(context.Background(), store.QueryOpts{SessionID: sessionID})
		if err != nil {
			return answersLoadedMsg{SessionID: sessionID, Err: err}
		}
		for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
			events[i], events[j] = events[j], events[i]
		}
		return answersLoadedMsg{SessionID: sessionID, Answers: events}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case answersLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.answers[msg.SessionID] = msg.Answers
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			if len(s.sessions) == 0 {
				return s, nil
			}
			s.expanded[s.selected] = !s.expanded[s.selected]
			id := s.sessions[s.selected].SessionID
			if _, ok := s.answers[id]; s.expanded[s.selected] && !ok {
				return s, s.loadAnswers(id)
			}
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No sessions yet. Start studying!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, sess := range s.sessions {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(prefix+sessionLine(sess))))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(s.renderAnswers(sess.SessionID, width))
		}
	}

	return b.String()
}

func sessionLine(sess store.SessionEvent) string {
	graded := sess.Correct + sess.Incorrect
	var accuracy float64
	if graded > 0 {
		accuracy = float64(sess.Correct) / float64(graded) * 100
	}

	line := fmt.Sprintf("%s  %-6s  %d:%02d  %d words  %.0f%% accuracy",
		sess.Timestamp.Local().Format("Jan 02, 2006"),
		sess.Mode,
		sess.DurationSecs/60, sess.DurationSecs%60,
		sess.WordsServed,
		accuracy)
	if sess.Action == store.ActionAbandon {
		line += "  (quit)"
	}
	return line
}

func (s *HistoryScreen) renderAnswers(sessionID string, width int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true)

	answers, ok := s.answers[sessionID]
	if !ok {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, dim.Render("    Loading answers...")) + "\n"
	}
	if len(answers) == 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, dim.Render("    No answers recorded")) + "\n"
	}

	var b strings.Builder
	for _, a := range answers {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, answerLine(a)))
		b.WriteString("\n")
	}
	return b.String()
}

func answerLine(a store.AnswerEvent) string {
	word := a.Word
	if a.Recheck {
		word += " (recheck)"
	}
	switch {
	case a.Skip:
		return theme.Hint.Render(fmt.Sprintf("    - %s  skipped", word))
	case a.Correct:
		return theme.Correct.Render(fmt.Sprintf("    ✓ %s", word))
	default:
		return theme.Incorrect.Render(fmt.Sprintf("    ✗ %s  you typed %q", word, a.UserInput))
	}
}
