package devserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDeck = `
users:
  - username: alice
    email: alice@example.com
    password: secret
collections:
  - id: c1
    name: Basics
    words:
      - word: Apple
        chinese: 苹果
        sentences: ["An apple a day."]
      - word: river
        chinese: 河流
      - word: quiet
        status: 1
      - word: ticket
        status: 2
      - word: luggage
        status: 3
      - word: arrive
        status: 4
  - id: c2
    name: Other
    words:
      - word: borrow
        chinese: 借
`

func newTestServer(t *testing.T, opts ...Option) (*Server, http.Handler) {
	t.Helper()
	deck, err := ParseDeck([]byte(testDeck))
	require.NoError(t, err)
	s := New(deck, opts...)
	return s, s.Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"account": "alice", "password": "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

type sessionBody struct {
	SessionID  string          `json:"session_id"`
	Words      []studyWordJSON `json:"words"`
	TotalCount int             `json:"total_count"`
}

func fetchSession(t *testing.T, h http.Handler, tok, collection, mode string) sessionBody {
	t.Helper()
	rec := doJSON(t, h, http.MethodGet, "/api/study/session?collection_id="+collection+"&mode="+mode, tok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body sessionBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthIsPublic(t *testing.T) {
	_, h := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"account": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Email works as the account name.
	rec = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"account": "alice@example.com", "password": "secret",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	tok := login(t, h)
	rec = doJSON(t, h, http.MethodGet, "/api/auth/me", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)

	rec = doJSON(t, h, http.MethodPost, "/api/auth/logout", tok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/auth/me", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionModes(t *testing.T) {
	_, h := newTestServer(t, WithSeed(1))
	tok := login(t, h)

	tests := []struct {
		mode  string
		words []string
	}{
		{"new", []string{"Apple", "river"}},
		{"review", []string{"quiet", "ticket"}},
		{"final", []string{"luggage"}},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			body := fetchSession(t, h, tok, "c1", tt.mode)
			var got []string
			for _, w := range body.Words {
				got = append(got, w.Word)
			}
			assert.Equal(t, tt.words, got)
			assert.Equal(t, len(tt.words), body.TotalCount)
			assert.NotEmpty(t, body.SessionID)
		})
	}

	t.Run("random", func(t *testing.T) {
		body := fetchSession(t, h, tok, "c1", "random")
		var got []string
		for _, w := range body.Words {
			got = append(got, w.Word)
		}
		assert.ElementsMatch(t, []string{"Apple", "river", "quiet", "ticket", "luggage"}, got)
	})
}

func TestSessionBatchSize(t *testing.T) {
	_, h := newTestServer(t, WithBatchSize(1))
	tok := login(t, h)

	body := fetchSession(t, h, tok, "c1", "new")
	assert.Len(t, body.Words, 1)
	assert.Equal(t, 2, body.TotalCount)
}

func TestSessionErrors(t *testing.T) {
	_, h := newTestServer(t)
	tok := login(t, h)

	rec := doJSON(t, h, http.MethodGet, "/api/study/session?collection_id=nope&mode=new", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/study/session?collection_id=c1&mode=weekly", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/study/session?mode=new", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type submitBody struct {
	Correct       bool   `json:"correct"`
	CurrentStatus int    `json:"current_status"`
	StatusUpdate  string `json:"status_update"`
	CorrectAnswer string `json:"correct_answer"`
	NextReviewAt  string `json:"next_review_at"`
}

func submit(t *testing.T, h http.Handler, tok, itemID, input string, skip bool) submitBody {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/study/submit", tok, map[string]any{
		"item_id": itemID, "user_input": input, "is_skip": skip,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body submitBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSubmitStatusProgression(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	_, h := newTestServer(t, WithClock(func() time.Time { return now }))
	tok := login(t, h)

	apple := fetchSession(t, h, tok, "c1", "new").Words[0]
	require.Equal(t, "Apple", apple.Word)

	// Case-insensitive, trimmed match.
	got := submit(t, h, tok, apple.ItemID, "  apple ", false)
	assert.True(t, got.Correct)
	assert.Equal(t, statusPendingCheck, got.CurrentStatus)
	assert.Equal(t, "upgraded", got.StatusUpdate)
	assert.Equal(t, "2026-03-01T09:10:00Z", got.NextReviewAt)

	got = submit(t, h, tok, apple.ItemID, "Apple", false)
	assert.Equal(t, statusReviewing, got.CurrentStatus)

	got = submit(t, h, tok, apple.ItemID, "aple", false)
	assert.False(t, got.Correct)
	assert.Equal(t, statusNew, got.CurrentStatus)
	assert.Equal(t, "reset", got.StatusUpdate)
	assert.Equal(t, "Apple", got.CorrectAnswer)
	assert.Empty(t, got.NextReviewAt)
}

func TestSubmitSkipResets(t *testing.T) {
	_, h := newTestServer(t)
	tok := login(t, h)

	quiet := fetchSession(t, h, tok, "c1", "review").Words[0]
	require.Equal(t, "quiet", quiet.Word)

	got := submit(t, h, tok, quiet.ItemID, "quiet", true)
	assert.False(t, got.Correct, "a skip is never correct")
	assert.Equal(t, statusNew, got.CurrentStatus)
}

func TestSubmitCompletedStaysCompleted(t *testing.T) {
	s, h := newTestServer(t)
	tok := login(t, h)

	var arriveID string
	s.mu.Lock()
	for id, it := range s.items {
		if it.Word == "arrive" {
			arriveID = id
		}
	}
	s.mu.Unlock()

	got := submit(t, h, tok, arriveID, "arrive", false)
	assert.Equal(t, statusCompleted, got.CurrentStatus)
	assert.Equal(t, "unchanged", got.StatusUpdate)
}

func TestSubmitUnknownItem(t *testing.T) {
	_, h := newTestServer(t)
	tok := login(t, h)
	rec := doJSON(t, h, http.MethodPost, "/api/study/submit", tok, map[string]any{"item_id": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCollectionsCRUD(t *testing.T) {
	_, h := newTestServer(t)
	tok := login(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/collections", tok, map[string]string{"name": "Fresh"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created collectionJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Fresh", created.Name)

	rec = doJSON(t, h, http.MethodGet, "/api/collections?page=1&page_size=2", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Collections []collectionJSON `json:"collections"`
		Total       int              `json:"total"`
		PageSize    int              `json:"page_size"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 3, list.Total)
	assert.Equal(t, 2, list.PageSize)
	require.Len(t, list.Collections, 2)
	assert.Equal(t, created.ID, list.Collections[0].ID, "newest first")
	assert.Equal(t, 6, list.Collections[1].WordCount)

	rec = doJSON(t, h, http.MethodPost, "/api/collections", tok, map[string]string{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/collections/"+created.ID, tok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, h, http.MethodGet, "/api/collections/"+created.ID, tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImportWords(t *testing.T) {
	_, h := newTestServer(t)
	tok := login(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/collections/c1/import", tok, map[string]any{
		"collection_id": "c1",
		"words":         []string{"apple", "borrow", "window", "window", " "},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 2, res["imported"])
	assert.Equal(t, 1, res["reused"])
	assert.Equal(t, 2, res["duplicates"])

	rec = doJSON(t, h, http.MethodGet, "/api/collections/c1/words?page=2&page_size=5", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var words struct {
		Words []wordJSON `json:"words"`
		Total int        `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &words))
	assert.Equal(t, 8, words.Total)
	require.Len(t, words.Words, 3)
	assert.Equal(t, "borrow", words.Words[1].Word)
	assert.Equal(t, "借", words.Words[1].Chinese, "reused words share the translation")
}

func TestDashboard(t *testing.T) {
	_, h := newTestServer(t)
	tok := login(t, h)

	river := fetchSession(t, h, tok, "c1", "new").Words[1]
	submit(t, h, tok, river.ItemID, "river", false)

	rec := doJSON(t, h, http.MethodGet, "/api/dashboard/stats", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats dashboardJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, dashboardJSON{
		TotalWords:       7,
		TotalCollections: 2,
		TodayLearned:     1,
		ToReview:         3,
	}, stats)
}

func TestParseDeckValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no users", "collections: []"},
		{"missing password", "users: [{username: a}]"},
		{"duplicate user", "users: [{username: a, password: p}, {username: a, password: q}]"},
		{"blank word", "users: [{username: a, password: p}]\ncollections: [{name: x, words: [{word: ' '}]}]"},
		{"bad status", "users: [{username: a, password: p}]\ncollections: [{name: x, words: [{word: w, status: 7}]}]"},
		{"duplicate id", "users: [{username: a, password: p}]\ncollections: [{id: x, name: a}, {id: x, name: b}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDeck([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestDefaultDeck(t *testing.T) {
	d := DefaultDeck()
	require.NotEmpty(t, d.Users)
	require.NotEmpty(t, d.Collections)
}
