package home

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/wordcraft/internal/api"
	"github.com/abhisek/wordcraft/internal/router"
	"github.com/abhisek/wordcraft/internal/screen"
	"github.com/abhisek/wordcraft/internal/screens/history"
	"github.com/abhisek/wordcraft/internal/screens/placeholder"
	"github.com/abhisek/wordcraft/internal/screens/session"
	"github.com/abhisek/wordcraft/internal/store"
	"github.com/abhisek/wordcraft/internal/study"
)

type fakeSource struct {
	page  *api.CollectionPage
	err   error
	calls int
	size  int
}

func (f *fakeSource) Collections(_ context.Context, _, size int) (*api.CollectionPage, error) {
	f.calls++
	f.size = size
	return f.page, f.err
}

type nopEvents struct{}

func (nopEvents) AppendSessionEvent(context.Context, store.SessionEventData) error { return nil }
func (nopEvents) AppendAnswerEvent(context.Context, store.AnswerEventData) error   { return nil }
func (nopEvents) QuerySessionEvents(context.Context, store.QueryOpts) ([]store.SessionEvent, error) {
	return nil, nil
}
func (nopEvents) QueryAnswerEvents(context.Context, store.QueryOpts) ([]store.AnswerEvent, error) {
	return nil, nil
}
func (nopEvents) CollectionStats(context.Context) ([]store.CollectionStat, error) { return nil, nil }

type started struct {
	collection session.Collection
	mode       study.Mode
}

func testHome(src *fakeSource, events store.EventRepo) (*HomeScreen, *[]started) {
	var calls []started
	factory := func(c session.Collection, mode study.Mode) screen.Screen {
		calls = append(calls, started{c, mode})
		return placeholder.New(c.Name, string(mode))
	}
	return New(src, events, factory, study.ModeReview), &calls
}

func basicsPage() *api.CollectionPage {
	return &api.CollectionPage{
		Total: 2,
		Collections: []api.Collection{
			{ID: "c0", Name: "Empty", WordCount: 0},
			{ID: "c1", Name: "Basics", WordCount: 12},
		},
	}
}

func loadHome(h *HomeScreen) {
	h.Update(h.Init()())
}

func pushed(t *testing.T, cmd tea.Cmd) screen.Screen {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	return msg.Screen
}

func TestHome_LoadsCollections(t *testing.T) {
	src := &fakeSource{page: basicsPage()}
	h, _ := testHome(src, nopEvents{})
	loadHome(h)

	if src.size != api.MaxPageSize {
		t.Errorf("page size = %d, want %d", src.size, api.MaxPageSize)
	}
	// Empty, Basics, History, Quit
	if len(h.menu.Items) != 4 {
		t.Fatalf("menu items = %d, want 4", len(h.menu.Items))
	}
	if !h.menu.Items[0].Disabled {
		t.Error("empty collection should be disabled")
	}
	if h.menu.Selected != 1 {
		t.Errorf("selected = %d, want first enabled item", h.menu.Selected)
	}
	view := h.View(80, 24)
	if !strings.Contains(view, "12 words") || !strings.Contains(view, "0 words") {
		t.Errorf("view missing word counts:\n%s", view)
	}
}

func TestHome_NoEventsHidesHistory(t *testing.T) {
	h, _ := testHome(&fakeSource{page: basicsPage()}, nil)
	loadHome(h)
	for _, item := range h.menu.Items {
		if item.Label == "History" {
			t.Error("History should be hidden without an event repo")
		}
	}
}

func TestHome_PickCollectionThenMode(t *testing.T) {
	h, calls := testHome(&fakeSource{page: basicsPage()}, nopEvents{})
	loadHome(h)

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	modes, ok := pushed(t, cmd).(*ModesScreen)
	if !ok {
		t.Fatal("expected the mode picker")
	}
	if modes.Title() != "Basics" {
		t.Errorf("Title = %q", modes.Title())
	}
	if got := study.Modes[modes.menu.Selected]; got != study.ModeReview {
		t.Errorf("preselected mode = %q, want review", got)
	}

	_, cmd = modes.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if cmd != nil {
		t.Error("navigation should not emit a command")
	}
	_, cmd = modes.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	s := pushed(t, cmd)
	if s == nil {
		t.Fatal("expected a session screen")
	}

	want := started{session.Collection{ID: "c1", Name: "Basics"}, study.Modes[modes.menu.Selected]}
	if len(*calls) != 1 || (*calls)[0] != want {
		t.Errorf("factory calls = %+v, want %+v", *calls, want)
	}
}

func TestHome_History(t *testing.T) {
	h, _ := testHome(&fakeSource{page: basicsPage()}, nopEvents{})
	loadHome(h)

	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if _, ok := pushed(t, cmd).(*history.HistoryScreen); !ok {
		t.Error("expected the history screen")
	}
}

func TestHome_ErrorAndRetry(t *testing.T) {
	src := &fakeSource{err: errors.New("unauthorized")}
	h, _ := testHome(src, nil)
	loadHome(h)

	if !strings.Contains(h.View(100, 24), "unauthorized") {
		t.Error("expected error in view")
	}

	src.err = nil
	src.page = basicsPage()
	_, cmd := h.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	if cmd == nil {
		t.Fatal("r should reload")
	}
	h.Update(cmd())
	if h.errMsg != "" || src.calls != 2 {
		t.Errorf("errMsg = %q, calls = %d", h.errMsg, src.calls)
	}
}

func TestHome_ResumeReloads(t *testing.T) {
	src := &fakeSource{page: basicsPage()}
	h, _ := testHome(src, nil)
	loadHome(h)
	h.Update(h.Resume()())
	if src.calls != 2 {
		t.Errorf("calls = %d, want 2", src.calls)
	}
}

func TestHome_NoCollections(t *testing.T) {
	h, _ := testHome(&fakeSource{page: &api.CollectionPage{}}, nil)
	loadHome(h)
	if !strings.Contains(h.View(100, 24), "No collections yet") {
		t.Error("expected empty hint")
	}
}
