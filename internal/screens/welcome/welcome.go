package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/wordcraft/internal/router"
	"github.com/abhisek/wordcraft/internal/screen"
	"github.com/abhisek/wordcraft/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	cardEnd      = 400 * time.Millisecond
	totalDur     = 1200 * time.Millisecond
)

// Letters typed onto the card one tick at a time.
const cardWord = "lexicon"

const cardTop = "╭─────────────╮"
const cardBottom = "╰─────────────╯"

type tickMsg time.Time

// WelcomeScreen shows a short splash before handing off to the home screen.
type WelcomeScreen struct {
	user         string
	homeFactory  func() screen.Screen
	elapsed      time.Duration
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that replaces itself with homeFactory's
// screen on the first key press. user may be empty.
func New(user string, homeFactory func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{
		user:        user,
		homeFactory: homeFactory,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.elapsed >= totalDur {
			return w, nil
		}
		w.elapsed += tickInterval
		return w, tick()

	case tea.KeyPressMsg:
		return w, w.transition()
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	homeScreen := w.homeFactory()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: homeScreen}
	}
}

// typed is the part of cardWord revealed so far.
func (w *WelcomeScreen) typed() string {
	if w.elapsed < cardEnd {
		return ""
	}
	n := int((w.elapsed - cardEnd) / tickInterval)
	return cardWord[:min(n, len(cardWord))]
}

func (w *WelcomeScreen) View(width, height int) string {
	cardStyle := lipgloss.NewStyle().Foreground(theme.Primary)
	letterStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)

	inner := lipgloss.PlaceHorizontal(13, lipgloss.Center, letterStyle.Render(w.typed()))
	card := strings.Join([]string{
		cardStyle.Render(cardTop),
		cardStyle.Render("│") + inner + cardStyle.Render("│"),
		cardStyle.Render(cardBottom),
	}, "\n")

	sections := []string{card}

	if w.elapsed >= totalDur {
		sections = append(sections, "", RenderBanner(width), "")

		tagline := "Words that stick."
		if w.user != "" {
			tagline = "Welcome back, " + w.user + "!"
		}
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(tagline))
	}

	sections = append(sections, "", lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Italic(true).
		Render("press any key to continue"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}
