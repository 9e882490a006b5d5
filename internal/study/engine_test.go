package study

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakeBackend implements Backend for testing.
type fakeBackend struct {
	batch     *Batch
	fetchErr  error
	verdict   *Verdict
	submitErr error

	fetches []string
	submits []submitCall

	// onFetch runs inside FetchSession, before it returns.
	onFetch func()
	// onSubmit runs inside SubmitAnswer, before it returns.
	onSubmit func()
}

type submitCall struct {
	itemID string
	input  string
	skip   bool
}

func (f *fakeBackend) FetchSession(_ context.Context, collectionID string, mode Mode) (*Batch, error) {
	f.fetches = append(f.fetches, collectionID+"/"+string(mode))
	if f.onFetch != nil {
		f.onFetch()
	}
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.batch, nil
}

func (f *fakeBackend) SubmitAnswer(_ context.Context, itemID, userInput string, isSkip bool) (*Verdict, error) {
	f.submits = append(f.submits, submitCall{itemID, userInput, isSkip})
	if f.onSubmit != nil {
		f.onSubmit()
	}
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.verdict, nil
}

func testWords(n int) []Item {
	words := make([]Item, n)
	for i := range words {
		words[i] = Item{
			WordID:      fmt.Sprintf("w%d", i),
			ItemID:      fmt.Sprintf("i%d", i),
			Word:        fmt.Sprintf("word%d", i),
			Translation: fmt.Sprintf("translation%d", i),
			Sentences:   []string{fmt.Sprintf("sentence %d", i)},
		}
	}
	return words
}

func startedEngine(t *testing.T, n int) (*Engine, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{batch: &Batch{SessionID: "s1", Words: testWords(n), TotalCount: n}}
	e := New(fb)
	if err := e.Start(context.Background(), "c1", ModeNew); err != nil {
		t.Fatalf("start: %v", err)
	}
	return e, fb
}

func TestStart_InitializesState(t *testing.T) {
	e, fb := startedEngine(t, 3)

	if len(fb.fetches) != 1 || fb.fetches[0] != "c1/new" {
		t.Errorf("fetches = %v, want [c1/new]", fb.fetches)
	}

	st := e.State()
	if st.SessionID != "s1" || st.CollectionID != "c1" || st.Mode != ModeNew {
		t.Errorf("session fields = %q %q %q", st.SessionID, st.CollectionID, st.Mode)
	}
	if len(st.Queue) != 3 {
		t.Fatalf("queue length = %d, want 3", len(st.Queue))
	}
	if st.Cursor != 0 || len(st.Pending) != 0 {
		t.Errorf("cursor = %d, pending = %d, want 0, 0", st.Cursor, len(st.Pending))
	}
	if st.CorrectCount != 0 || st.IncorrectCount != 0 || st.SkipCount != 0 {
		t.Error("expected zero counters")
	}
	keys := map[string]bool{}
	for _, it := range st.Queue {
		if it.IsRecheck || it.RecheckCount != 0 {
			t.Errorf("item %s: IsRecheck=%v RecheckCount=%d", it.WordID, it.IsRecheck, it.RecheckCount)
		}
		if it.InstanceKey == "" || keys[it.InstanceKey] {
			t.Errorf("item %s: instance key %q missing or duplicated", it.WordID, it.InstanceKey)
		}
		keys[it.InstanceKey] = true
	}
	if e.Phase() != PhaseActive {
		t.Errorf("phase = %v, want active", e.Phase())
	}
}

func TestStart_TotalCountFallback(t *testing.T) {
	fb := &fakeBackend{batch: &Batch{SessionID: "s", Words: testWords(4)}}
	e := New(fb)
	if err := e.Start(context.Background(), "c", ModeReview); err != nil {
		t.Fatal(err)
	}
	if got := e.State().TotalCount; got != 4 {
		t.Errorf("TotalCount = %d, want 4 (queue length fallback)", got)
	}

	fb.batch = &Batch{SessionID: "s", Words: testWords(2), TotalCount: 10}
	if err := e.Start(context.Background(), "c", ModeReview); err != nil {
		t.Fatal(err)
	}
	if got := e.State().TotalCount; got != 10 {
		t.Errorf("TotalCount = %d, want 10 (server value)", got)
	}
}

func TestStart_EmptyCollectionID(t *testing.T) {
	fb := &fakeBackend{}
	e := New(fb)

	err := e.Start(context.Background(), "", ModeNew)
	var loadErr *SessionLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("err = %v, want *SessionLoadError", err)
	}
	if !errors.Is(err, ErrEmptyCollection) {
		t.Errorf("err = %v, want ErrEmptyCollection", err)
	}
	if len(fb.fetches) != 0 {
		t.Error("expected no fetch for empty collection ID")
	}
}

func TestStart_FailureResetsState(t *testing.T) {
	e, fb := startedEngine(t, 3)
	e.Advance()

	netErr := errors.New("connection refused")
	fb.fetchErr = netErr

	err := e.Start(context.Background(), "c2", ModeRandom)
	var loadErr *SessionLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("err = %v, want *SessionLoadError", err)
	}
	if !errors.Is(err, netErr) {
		t.Error("expected SessionLoadError to wrap the network error")
	}
	if loadErr.CollectionID != "c2" || loadErr.Mode != ModeRandom {
		t.Errorf("load error fields = %q %q", loadErr.CollectionID, loadErr.Mode)
	}

	st := e.State()
	if len(st.Queue) != 0 || st.Cursor != 0 || st.SessionID != "" {
		t.Errorf("state not reset: queue=%d cursor=%d session=%q", len(st.Queue), st.Cursor, st.SessionID)
	}
	if e.Phase() != PhaseUninitialized {
		t.Errorf("phase = %v, want uninitialized", e.Phase())
	}
}

func TestStart_ReplacesPriorSession(t *testing.T) {
	e, fb := startedEngine(t, 5)
	fb.verdict = &Verdict{Correct: true, CurrentStatus: StatusPendingCheck}
	if _, err := e.Submit(context.Background(), "i0", "word0", false); err != nil {
		t.Fatal(err)
	}
	e.Advance()

	fb.batch = &Batch{SessionID: "s2", Words: testWords(2)}
	if err := e.Start(context.Background(), "c1", ModeReview); err != nil {
		t.Fatal(err)
	}

	st := e.State()
	if st.SessionID != "s2" || len(st.Queue) != 2 || st.Cursor != 0 {
		t.Errorf("state = session %q queue %d cursor %d", st.SessionID, len(st.Queue), st.Cursor)
	}
	if st.CorrectCount != 0 || len(st.Pending) != 0 {
		t.Error("expected counters and pending rechecks from the prior session to be cleared")
	}
}

func TestStart_ResetWhileLoadingDiscardsBatch(t *testing.T) {
	fb := &fakeBackend{batch: &Batch{SessionID: "s", Words: testWords(3)}}
	e := New(fb)
	fb.onFetch = func() {
		if e.Phase() != PhaseLoading {
			t.Errorf("phase during fetch = %v, want loading", e.Phase())
		}
		e.Reset()
	}

	err := e.Start(context.Background(), "c", ModeNew)
	if !errors.Is(err, ErrSessionAbandoned) {
		t.Fatalf("err = %v, want ErrSessionAbandoned", err)
	}
	if len(e.State().Queue) != 0 {
		t.Error("expected abandoned batch to be discarded")
	}
}

func TestProgress_ThreeWords(t *testing.T) {
	e, _ := startedEngine(t, 3)

	if got, want := e.Progress(), (Progress{Current: 0, Total: 3, Percentage: 0}); got != want {
		t.Errorf("progress = %+v, want %+v", got, want)
	}
	if e.IsComplete() {
		t.Error("expected incomplete session at cursor 0")
	}

	for range 3 {
		e.Advance()
	}

	if got, want := e.Progress(), (Progress{Current: 3, Total: 3, Percentage: 100}); got != want {
		t.Errorf("progress = %+v, want %+v", got, want)
	}
	if !e.IsComplete() {
		t.Error("expected complete session after 3 advances")
	}
	if e.Phase() != PhaseComplete {
		t.Errorf("phase = %v, want complete", e.Phase())
	}
}

func TestProgress_Rounding(t *testing.T) {
	e, _ := startedEngine(t, 3)
	e.Advance()
	if got := e.Progress().Percentage; got != 33 {
		t.Errorf("percentage = %d, want 33", got)
	}
	e.Advance()
	if got := e.Progress().Percentage; got != 67 {
		t.Errorf("percentage = %d, want 67", got)
	}
}

func TestProgress_ClampsPastEnd(t *testing.T) {
	e, _ := startedEngine(t, 2)
	for range 5 {
		e.Advance()
	}
	p := e.Progress()
	if p.Current != 2 || p.Percentage != 100 {
		t.Errorf("progress = %+v, want current 2, 100%%", p)
	}
	if _, ok := e.Current(); ok {
		t.Error("expected no current item past the end")
	}
	if e.State().Cursor != 5 {
		t.Errorf("cursor = %d, want 5", e.State().Cursor)
	}
}

func TestIsComplete_EmptyQueue(t *testing.T) {
	fb := &fakeBackend{batch: &Batch{SessionID: "s"}}
	e := New(fb)
	if err := e.Start(context.Background(), "c", ModeNew); err != nil {
		t.Fatal(err)
	}

	for range 3 {
		if e.IsComplete() {
			t.Fatal("empty queue must never be complete")
		}
		e.Advance()
	}
	if !e.Empty() {
		t.Error("expected Empty() for a session without words")
	}
	if got := e.Progress(); got != (Progress{}) {
		t.Errorf("progress = %+v, want zero", got)
	}
}

func TestIsComplete_Uninitialized(t *testing.T) {
	e := New(&fakeBackend{})
	if e.IsComplete() {
		t.Error("uninitialized engine must not be complete")
	}
	if _, ok := e.Current(); ok {
		t.Error("uninitialized engine must have no current item")
	}
}

func TestReset(t *testing.T) {
	e, fb := startedEngine(t, 4)
	fb.verdict = &Verdict{Correct: true, CurrentStatus: StatusPendingCheck}
	if _, err := e.Submit(context.Background(), "i0", "word0", false); err != nil {
		t.Fatal(err)
	}
	e.Advance()

	e.Reset()

	st := e.State()
	if st.SessionID != "" || st.CollectionID != "" || st.Mode != "" {
		t.Error("expected identity fields cleared")
	}
	if len(st.Queue) != 0 || len(st.Pending) != 0 || st.Cursor != 0 {
		t.Error("expected queue, pending and cursor cleared")
	}
	if st.CorrectCount != 0 || st.TotalCount != 0 {
		t.Error("expected counters cleared")
	}
	if e.Phase() != PhaseUninitialized {
		t.Errorf("phase = %v, want uninitialized", e.Phase())
	}
}

func TestStateReturnsCopy(t *testing.T) {
	e, _ := startedEngine(t, 2)
	st := e.State()
	st.Queue[0].Word = "mutated"

	cur, ok := e.Current()
	if !ok || cur.Word != "word0" {
		t.Errorf("current word = %q, want word0", cur.Word)
	}
}
