package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/wordcraft/internal/devserver"
	"github.com/abhisek/wordcraft/internal/study"
)

const testDeck = `
users:
  - username: alice
    email: alice@example.com
    password: secret
    nickname: Al
collections:
  - id: c1
    name: Basics
    words:
      - word: apple
        chinese: 苹果
        phonetic: /ˈæp.əl/
        part_of_speech: n.
        sentences: ["An apple a day."]
      - word: river
        chinese: 河流
      - word: quiet
        chinese: 安静的
      - word: borrow
        chinese: 借
      - word: window
        chinese: 窗户
`

func newDevServer(t *testing.T) *httptest.Server {
	t.Helper()
	deck, err := devserver.ParseDeck([]byte(testDeck))
	require.NoError(t, err)
	srv := httptest.NewServer(devserver.New(deck, devserver.WithSeed(7)).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func loggedInClient(t *testing.T) *Client {
	t.Helper()
	srv := newDevServer(t)
	c := New(srv.URL + "/")
	_, err := c.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	return c
}

func TestNormalizeBaseURL(t *testing.T) {
	assert.Equal(t, "http://host:8080", NormalizeBaseURL(" http://host:8080/// "))
	assert.Equal(t, "http://host/api", NormalizeBaseURL("http://host/api/"))
	assert.Equal(t, "", NormalizeBaseURL("  "))
}

func TestNotConfigured(t *testing.T) {
	c := New("")
	_, err := c.Health(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestHealth(t *testing.T) {
	srv := newDevServer(t)
	h, err := New(srv.URL).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
}

func TestLoginAndMe(t *testing.T) {
	srv := newDevServer(t)
	c := New(srv.URL)
	ctx := context.Background()

	_, err := c.Me(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.Login(ctx, "alice", "nope")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid account or password", apiErr.Message)
	assert.Empty(t, c.Token())

	resp, err := c.Login(ctx, "alice@example.com", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, resp.Token, c.Token())
	assert.Equal(t, "Al", resp.User.DisplayName())

	u, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	require.NoError(t, c.Logout(ctx))
	assert.Empty(t, c.Token())

	// The old token no longer works.
	stale := New(srv.URL, WithToken(resp.Token))
	_, err = stale.Me(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCollections(t *testing.T) {
	c := loggedInClient(t)
	ctx := context.Background()

	page, err := c.Collections(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultPage, page.Page)
	assert.Equal(t, DefaultPageSize, page.PageSize)
	require.Len(t, page.Collections, 1)
	assert.Equal(t, 5, page.Collections[0].WordCount)

	created, err := c.CreateCollection(ctx, CollectionInput{Name: "Travel"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := c.Collection(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Travel", got.Name)

	res, err := c.ImportWords(ctx, created.ID, []string{"ticket", "apple", "ticket"})
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Imported: 2, Reused: 1, Duplicates: 1}, *res)

	words, err := c.CollectionWords(ctx, created.ID, 1, 500)
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, words.PageSize)
	assert.Equal(t, 2, words.Total)

	require.NoError(t, c.DeleteCollection(ctx, created.ID))
	_, err = c.Collection(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDashboardStats(t *testing.T) {
	c := loggedInClient(t)
	stats, err := c.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalWords)
	assert.Equal(t, 1, stats.TotalCollections)
}

func TestStudySessionAndSubmit(t *testing.T) {
	c := loggedInClient(t)
	ctx := context.Background()

	sess, err := c.StudySession(ctx, "c1", "new")
	require.NoError(t, err)
	require.Len(t, sess.Words, 5)
	assert.Equal(t, 5, sess.TotalCount)
	assert.Equal(t, "apple", sess.Words[0].Word)
	assert.Equal(t, []string{"An apple a day."}, sess.Words[0].Sentences)

	resp, err := c.SubmitAnswer(ctx, SubmitRequest{ItemID: sess.Words[0].ItemID, UserInput: "Apple"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.True(t, resp.Correct)
	assert.Equal(t, int(study.StatusPendingCheck), resp.CurrentStatus)
	assert.NotEmpty(t, resp.NextReviewAt)
}

func TestStatusErrorsMapToSentinels(t *testing.T) {
	tests := []struct {
		status   int
		sentinel error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusInternalServerError, ErrServer},
		{http.StatusBadGateway, ErrServer},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"message":"boom"}`))
			}))
			defer srv.Close()

			_, err := New(srv.URL).DashboardStats(context.Background())
			assert.ErrorIs(t, err, tt.sentinel)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "boom", apiErr.Message)
			assert.Equal(t, "/api/dashboard/stats", apiErr.Path)

			for _, other := range []error{ErrUnauthorized, ErrForbidden, ErrNotFound, ErrServer} {
				if other != tt.sentinel {
					assert.NotErrorIs(t, err, other)
				}
			}
		})
	}
}

func TestAPIErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "418 I'm a teapot")
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).Health(context.Background())
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "/health", netErr.Path)
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(srv.URL, WithTimeout(50*time.Millisecond)).Health(context.Background())
	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestRequestHeaders(t *testing.T) {
	var gotAuth, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("tok"))
	_, err := c.SubmitAnswer(context.Background(), SubmitRequest{ItemID: "i"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "application/json", gotType)

	c.SetToken("")
	_, err = c.Health(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestStudySessionSchemaValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"session_id":"s","words":[{"word_id":"w","item_id":"i","word":"x","status":1}],"total_count":1}`, false},
		{"null words", `{"session_id":"s","words":null}`, false},
		{"null optional fields", `{"session_id":"s","words":[{"word_id":"w","item_id":"i","word":"x","chinese":null,"sentences":null}]}`, false},
		{"extra fields", `{"session_id":"s","words":[],"server_time":"now"}`, false},
		{"missing session id", `{"words":[]}`, true},
		{"missing item id", `{"session_id":"s","words":[{"word_id":"w","word":"x"}]}`, true},
		{"status out of range", `{"session_id":"s","words":[{"word_id":"w","item_id":"i","word":"x","status":9}]}`, true},
		{"words not array", `{"session_id":"s","words":"apple"}`, true},
		{"not json", `<html>`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).StudySession(context.Background(), "c", "new")
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var invalid *InvalidResponseError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, "/api/study/session", invalid.Path)
		})
	}
}

func TestSessionQueryParams(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"session_id":"s","words":[]}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).StudySession(context.Background(), "c 1", "review")
	require.NoError(t, err)
	assert.True(t, strings.Contains(query, "collection_id=c+1"), query)
	assert.True(t, strings.Contains(query, "mode=review"), query)
}

func TestErrorsUnwrap(t *testing.T) {
	inner := errors.New("dial tcp: refused")
	err := error(&NetworkError{Method: "GET", Path: "/health", Err: inner})
	assert.ErrorIs(t, err, inner)
}
