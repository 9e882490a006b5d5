package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/wordcraft/internal/router"
	"github.com/abhisek/wordcraft/internal/screen"
	"github.com/abhisek/wordcraft/internal/screens/session"
	"github.com/abhisek/wordcraft/internal/study"
	"github.com/abhisek/wordcraft/internal/ui/components"
	"github.com/abhisek/wordcraft/internal/ui/layout"
	"github.com/abhisek/wordcraft/internal/ui/theme"
)

var modeDetails = map[study.Mode]string{
	study.ModeNew:    "words you have not learned yet",
	study.ModeReview: "words waiting for review",
	study.ModeRandom: "a shuffled mix of unfinished words",
	study.ModeFinal:  "final check for mastered words",
}

// ModesScreen picks the study mode for a collection.
type ModesScreen struct {
	collection session.Collection
	menu       components.Menu
}

var _ screen.Screen = (*ModesScreen)(nil)

// NewModes creates a mode picker with defaultMode preselected.
func NewModes(c session.Collection, newSession SessionFactory, defaultMode study.Mode) *ModesScreen {
	items := make([]components.MenuItem, 0, len(study.Modes))
	selected := 0
	for i, mode := range study.Modes {
		if mode == defaultMode {
			selected = i
		}
		items = append(items, components.MenuItem{
			Label:  strings.ToUpper(string(mode)),
			Detail: modeDetails[mode],
			Action: func() tea.Cmd {
				s := newSession(c, mode)
				return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
			},
		})
	}
	menu := components.NewMenu(items)
	menu.Selected = selected
	return &ModesScreen{collection: c, menu: menu}
}

func (m *ModesScreen) Init() tea.Cmd {
	return nil
}

func (m *ModesScreen) Title() string {
	return m.collection.Name
}

func (m *ModesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m *ModesScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Centered("How do you want to study?", width, theme.Title))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, m.menu.View()))
	return b.String()
}
