package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/wordcraft/internal/router"
	"github.com/abhisek/wordcraft/internal/screen"
	"github.com/abhisek/wordcraft/internal/screens/home"
	"github.com/abhisek/wordcraft/internal/screens/placeholder"
	"github.com/abhisek/wordcraft/internal/screens/session"
	"github.com/abhisek/wordcraft/internal/screens/welcome"
	"github.com/abhisek/wordcraft/internal/store"
	"github.com/abhisek/wordcraft/internal/study"
	"github.com/abhisek/wordcraft/internal/ui/layout"
)

// Options wires the TUI to its collaborators.
type Options struct {
	Collections  home.CollectionSource
	Backend      study.Backend
	Events       store.EventRepo // optional
	Logger       *zap.Logger     // optional
	User         string          // shown in the header
	DefaultMode  study.Mode
	RecheckDelay int

	// Start opens a session for this collection right away.
	Start     *session.Collection
	StartMode study.Mode

	SkipSplash bool

	// Notice replaces the app with a static message, such as setup
	// instructions when no server is configured.
	Notice string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	user   string
	start  screen.Screen
	width  int
	height int
}

// newAppModel creates a new AppModel with the welcome or home screen as root.
func newAppModel(opts Options) AppModel {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DefaultMode == "" {
		opts.DefaultMode = study.ModeNew
	}
	if opts.RecheckDelay <= 0 {
		opts.RecheckDelay = study.DefaultRecheckDelay
	}

	newSession := func(c session.Collection, mode study.Mode) screen.Screen {
		engine := study.New(opts.Backend,
			study.WithLogger(logger.Named("study")),
			study.WithRecheckDelay(opts.RecheckDelay),
		)
		sopts := []session.Option{session.WithLogger(logger)}
		if opts.Events != nil {
			sopts = append(sopts, session.WithEventRepo(opts.Events))
		}
		return session.New(engine, c, mode, sopts...)
	}

	homeScreen := home.New(opts.Collections, opts.Events, newSession, opts.DefaultMode)

	m := AppModel{user: opts.User}
	switch {
	case opts.Notice != "":
		m.router = router.New(placeholder.New("Setup", opts.Notice))
	case opts.Start != nil:
		mode := opts.StartMode
		if mode == "" {
			mode = opts.DefaultMode
		}
		m.router = router.New(homeScreen)
		m.start = newSession(*opts.Start, mode)
	case opts.SkipSplash:
		m.router = router.New(homeScreen)
	default:
		m.router = router.New(welcome.New(opts.User, func() screen.Screen { return homeScreen }))
	}
	return m
}

func (m AppModel) Init() tea.Cmd {
	var cmds []tea.Cmd
	if active := m.router.Active(); active != nil {
		cmds = append(cmds, active.Init())
	}
	if m.start != nil {
		s := m.start
		cmds = append(cmds, func() tea.Msg { return router.PushScreenMsg{Screen: s} })
	}
	return tea.Batch(cmds...)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if bh, ok := m.router.Active().(screen.BackHandler); ok && bh.HandlesBack() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) footerHints() []layout.KeyHint {
	if kp, ok := m.router.Active().(screen.KeyHintProvider); ok {
		return kp.KeyHints()
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.user, m.width)
	footer := layout.RenderFooter(m.footerHints(), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(m.height-headerHeight-footerHeight, 0)

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(newAppModel(opts), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
