package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/wordcraft/internal/api"
	"github.com/abhisek/wordcraft/internal/router"
	"github.com/abhisek/wordcraft/internal/screen"
	"github.com/abhisek/wordcraft/internal/screens/history"
	"github.com/abhisek/wordcraft/internal/screens/session"
	"github.com/abhisek/wordcraft/internal/store"
	"github.com/abhisek/wordcraft/internal/study"
	"github.com/abhisek/wordcraft/internal/ui/components"
	"github.com/abhisek/wordcraft/internal/ui/layout"
	"github.com/abhisek/wordcraft/internal/ui/theme"
)

// CollectionSource lists the user's collections.
type CollectionSource interface {
	Collections(ctx context.Context, page, size int) (*api.CollectionPage, error)
}

// SessionFactory builds the study screen for a collection and mode.
type SessionFactory func(c session.Collection, mode study.Mode) screen.Screen

type collectionsLoadedMsg struct {
	Page *api.CollectionPage
	Err  error
}

// HomeScreen lists collections to study.
type HomeScreen struct {
	source      CollectionSource
	events      store.EventRepo
	newSession  SessionFactory
	defaultMode study.Mode

	menu    components.Menu
	loaded  bool
	total   int
	errMsg  string
	loading bool
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen. events may be nil, which hides history.
func New(source CollectionSource, events store.EventRepo, newSession SessionFactory, defaultMode study.Mode) *HomeScreen {
	h := &HomeScreen{
		source:      source,
		events:      events,
		newSession:  newSession,
		defaultMode: defaultMode,
	}
	h.menu = components.NewMenu(h.menuItems(nil))
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.load()
}

// Resume reloads collections so word counts reflect the last session.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.load()
}

func (h *HomeScreen) load() tea.Cmd {
	h.loading = true
	src := h.source
	return func() tea.Msg {
		page, err := src.Collections(context.Background(), 1, api.MaxPageSize)
		return collectionsLoadedMsg{Page: page, Err: err}
	}
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "R", Description: "Refresh"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case collectionsLoadedMsg:
		h.loading = false
		h.loaded = true
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			h.menu = components.NewMenu(h.menuItems(nil))
			return h, nil
		}
		h.errMsg = ""
		var cols []api.Collection
		if msg.Page != nil {
			cols = msg.Page.Collections
			h.total = msg.Page.Total
		}
		selected := h.menu.Selected
		h.menu = components.NewMenu(h.menuItems(cols))
		if selected < len(h.menu.Items) && !h.menu.Items[selected].Disabled {
			h.menu.Selected = selected
		}
		return h, nil

	case tea.KeyPressMsg:
		if (msg.String() == "r" || msg.String() == "R") && !h.loading {
			return h, h.load()
		}
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) menuItems(cols []api.Collection) []components.MenuItem {
	var items []components.MenuItem
	for _, c := range cols {
		items = append(items, components.MenuItem{
			Label:    c.Name,
			Detail:   wordCount(c.WordCount),
			Disabled: c.WordCount == 0,
			Action: func() tea.Cmd {
				modes := NewModes(session.Collection{ID: c.ID, Name: c.Name}, h.newSession, h.defaultMode)
				return func() tea.Msg { return router.PushScreenMsg{Screen: modes} }
			},
		})
	}

	if h.events != nil {
		events := h.events
		items = append(items, components.MenuItem{Label: "History", Action: func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: history.New(events)} }
		}})
	}
	items = append(items, components.MenuItem{Label: "Quit", Action: func() tea.Cmd {
		return tea.Quit
	}})
	return items
}

func wordCount(n int) string {
	if n == 1 {
		return "1 word"
	}
	return fmt.Sprintf("%d words", n)
}

func (h *HomeScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(layout.Centered("Pick a collection", width, theme.Title))
	b.WriteString("\n\n")

	switch {
	case !h.loaded:
		b.WriteString(layout.Centered("Loading collections...", width, lipgloss.NewStyle().Foreground(theme.TextDim)))
		b.WriteString("\n\n")
	case h.errMsg != "":
		b.WriteString(layout.Centered("Could not load collections: "+h.errMsg, width,
			lipgloss.NewStyle().Foreground(theme.Error)))
		b.WriteString("\n")
		b.WriteString(layout.Centered("Press R to retry. Run `wordcraft login` if your session expired.", width, theme.Hint))
		b.WriteString("\n\n")
	case h.total == 0:
		b.WriteString(layout.Centered("No collections yet. Create one with `wordcraft collections create`.",
			width, theme.Hint))
		b.WriteString("\n\n")
	}

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, h.menu.View()))
	return b.String()
}
