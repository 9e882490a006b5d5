package summary

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/wordcraft/internal/router"
	"github.com/abhisek/wordcraft/internal/screen"
	"github.com/abhisek/wordcraft/internal/study"
	"github.com/abhisek/wordcraft/internal/ui/layout"
	"github.com/abhisek/wordcraft/internal/ui/theme"
)

// Result is what the summary screen displays.
type Result struct {
	study.Summary
	Collection string
	Duration   time.Duration
}

// SummaryScreen displays the session summary.
type SummaryScreen struct {
	result Result
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(r Result) *SummaryScreen {
	return &SummaryScreen{result: r}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Home"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	r := s.result

	var b strings.Builder

	b.WriteString(layout.Centered("Session complete!", width, theme.Title))
	b.WriteString("\n\n")

	sub := fmt.Sprintf("%s · %s · %s", r.Collection, r.Mode, formatDuration(r.Duration))
	if r.Collection == "" {
		sub = fmt.Sprintf("%s · %s", r.Mode, formatDuration(r.Duration))
	}
	b.WriteString(layout.Centered(sub, width, lipgloss.NewStyle().Foreground(theme.TextDim)))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("Answered: %d        Correct: %d        Accuracy: %.0f%%",
		r.Answered, r.Correct, r.Accuracy*100)
	b.WriteString(layout.Centered(stats, width, lipgloss.NewStyle().Foreground(theme.Text)))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(min(width-8, 50), 0)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	rows := []struct {
		label string
		n     int
		color lipgloss.Style
	}{
		{"Correct", r.Correct, theme.Correct},
		{"Missed", r.Incorrect, theme.Incorrect},
		{"Skipped", r.Skipped, lipgloss.NewStyle().Foreground(theme.TextDim)},
		{"Double checks", r.Rechecks, lipgloss.NewStyle().Foreground(theme.Secondary)},
	}
	for _, row := range rows {
		line := fmt.Sprintf("%-14s %3d", row.label, row.n)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, row.color.Render(line)))
		b.WriteString("\n")
	}

	return b.String()
}

func formatDuration(d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
