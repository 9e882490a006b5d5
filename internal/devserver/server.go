// Package devserver is an in-memory implementation of the word-learning
// backend, seeded from a YAML deck. It exists for local development and
// client integration tests.
package devserver

import (
	"errors"
	"math/rand/v2"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Learning statuses, mirrored from the client's study package.
const (
	statusNew = iota
	statusPendingCheck
	statusReviewing
	statusMastered
	statusCompleted
)

var statusNames = [...]string{"new", "pending-check", "reviewing", "mastered", "completed"}

// DefaultBatchSize is the number of words returned per study session.
const DefaultBatchSize = 20

// reviewIntervals maps a status to the delay before the word is due again.
var reviewIntervals = map[int]time.Duration{
	statusPendingCheck: 10 * time.Minute,
	statusReviewing:    24 * time.Hour,
	statusMastered:     72 * time.Hour,
	statusCompleted:    7 * 24 * time.Hour,
}

var (
	errNotFound     = errors.New("not found")
	errUnauthorized = errors.New("invalid account or password")
)

type account struct {
	ID       string
	Username string
	Email    string
	Password string
	Nickname string
}

type collection struct {
	ID          string
	Name        string
	Description string
	Color       string
	Icon        string
	CreatedAt   time.Time
	itemIDs     []string
}

type item struct {
	ID           string
	WordID       string
	CollectionID string
	Word         string
	Chinese      string
	Phonetic     string
	PartOfSpeech string
	Sentences    []string
	Status       int
	NextReviewAt time.Time
	LearnedAt    time.Time
}

// Server holds the in-memory backend state.
type Server struct {
	logger    *zap.Logger
	batchSize int
	now       func() time.Time
	rng       *rand.Rand
	newID     func() string

	mu          sync.Mutex
	users       []*account
	tokens      map[string]*account
	collections []*collection
	items       map[string]*item
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and state logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBatchSize overrides DefaultBatchSize.
func WithBatchSize(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSeed makes random-mode shuffling deterministic.
func WithSeed(seed uint64) Option {
	return func(s *Server) {
		s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// New creates a server seeded from deck.
func New(deck *Deck, opts ...Option) *Server {
	s := &Server{
		logger:    zap.NewNop(),
		batchSize: DefaultBatchSize,
		now:       time.Now,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		newID:     uuid.NewString,
		tokens:    map[string]*account{},
		items:     map[string]*item{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.seed(deck)
	return s
}

func (s *Server) seed(deck *Deck) {
	if deck == nil {
		return
	}
	for _, u := range deck.Users {
		s.users = append(s.users, &account{
			ID:       s.newID(),
			Username: u.Username,
			Email:    u.Email,
			Password: u.Password,
			Nickname: u.Nickname,
		})
	}
	now := s.now()
	for _, dc := range deck.Collections {
		c := &collection{
			ID:          dc.ID,
			Name:        dc.Name,
			Description: dc.Description,
			Color:       dc.Color,
			Icon:        dc.Icon,
			CreatedAt:   now,
		}
		if c.ID == "" {
			c.ID = s.newID()
		}
		for _, w := range dc.Words {
			it := &item{
				ID:           s.newID(),
				WordID:       s.newID(),
				CollectionID: c.ID,
				Word:         strings.TrimSpace(w.Word),
				Chinese:      w.Chinese,
				Phonetic:     w.Phonetic,
				PartOfSpeech: w.PartOfSpeech,
				Sentences:    slices.Clone(w.Sentences),
				Status:       w.Status,
			}
			s.items[it.ID] = it
			c.itemIDs = append(c.itemIDs, it.ID)
		}
		s.collections = append(s.collections, c)
	}
}

// Handler returns the HTTP handler serving the backend API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(s.recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Post("/api/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.bearerAuth)

		r.Route("/api/auth", func(r chi.Router) {
			r.Post("/logout", s.handleLogout)
			r.Get("/me", s.handleMe)
		})

		r.Route("/api/collections", func(r chi.Router) {
			r.Get("/", s.handleListCollections)
			r.Post("/", s.handleCreateCollection)
			r.Get("/{id}", s.handleGetCollection)
			r.Delete("/{id}", s.handleDeleteCollection)
			r.Post("/{id}/import", s.handleImport)
			r.Get("/{id}/words", s.handleListWords)
		})

		r.Route("/api/study", func(r chi.Router) {
			r.Get("/session", s.handleSession)
			r.Post("/submit", s.handleSubmit)
		})

		r.Get("/api/dashboard/stats", s.handleDashboard)
	})

	return r
}

// login returns a fresh token for a matching username or email.
func (s *Server) login(accountName, password string) (string, *account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if (u.Username == accountName || (u.Email != "" && u.Email == accountName)) && u.Password == password {
			tok := s.newID()
			s.tokens[tok] = u
			return tok, u, nil
		}
	}
	return "", nil, errUnauthorized
}

func (s *Server) userForToken(tok string) (*account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.tokens[tok]
	return u, ok
}

func (s *Server) logout(tok string) {
	s.mu.Lock()
	delete(s.tokens, tok)
	s.mu.Unlock()
}

func (s *Server) findCollectionLocked(id string) (*collection, int) {
	for i, c := range s.collections {
		if c.ID == id {
			return c, i
		}
	}
	return nil, -1
}

// matchesMode reports whether a word with status st belongs in a batch for mode.
func matchesMode(mode string, st int) bool {
	switch mode {
	case "new":
		return st == statusNew
	case "review":
		return st == statusPendingCheck || st == statusReviewing
	case "random":
		return st != statusCompleted
	case "final":
		return st == statusMastered
	}
	return false
}

func validMode(mode string) bool {
	switch mode {
	case "new", "review", "random", "final":
		return true
	}
	return false
}

// buildSession selects the batch for (collectionID, mode) and returns copies
// of the chosen items. The total is the number of eligible words before
// truncation.
func (s *Server) buildSession(collectionID, mode string) (string, []item, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, _ := s.findCollectionLocked(collectionID)
	if c == nil {
		return "", nil, 0, errNotFound
	}

	var eligible []*item
	for _, id := range c.itemIDs {
		if it := s.items[id]; it != nil && matchesMode(mode, it.Status) {
			eligible = append(eligible, it)
		}
	}
	if mode == "random" {
		s.rng.Shuffle(len(eligible), func(i, j int) {
			eligible[i], eligible[j] = eligible[j], eligible[i]
		})
	}

	total := len(eligible)
	batch := make([]item, 0, min(total, s.batchSize))
	for _, it := range eligible[:min(total, s.batchSize)] {
		cp := *it
		cp.Sentences = slices.Clone(it.Sentences)
		batch = append(batch, cp)
	}

	return s.newID(), batch, total, nil
}

// answerResult is the outcome of grading one answer.
type answerResult struct {
	Correct       bool
	Status        int
	StatusUpdate  string
	NextReviewAt  time.Time
	CorrectAnswer string
}

// answer grades input against the item and advances or resets its status.
func (s *Server) answer(itemID, input string, skip bool) (answerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[itemID]
	if !ok {
		return answerResult{}, errNotFound
	}

	prev := it.Status
	correct := !skip && strings.EqualFold(strings.TrimSpace(input), it.Word)
	if correct {
		it.Status = min(it.Status+1, statusCompleted)
		if prev == statusNew {
			it.LearnedAt = s.now()
		}
	} else {
		it.Status = statusNew
	}

	if d, ok := reviewIntervals[it.Status]; ok {
		it.NextReviewAt = s.now().Add(d)
	} else {
		it.NextReviewAt = time.Time{}
	}

	update := "unchanged"
	switch {
	case it.Status > prev:
		update = "upgraded"
	case it.Status < prev:
		update = "reset"
	}

	s.logger.Debug("answer graded",
		zap.String("item_id", itemID),
		zap.Bool("correct", correct),
		zap.Bool("skip", skip),
		zap.String("from", statusNames[prev]),
		zap.String("status", statusNames[it.Status]))

	return answerResult{
		Correct:       correct,
		Status:        it.Status,
		StatusUpdate:  update,
		NextReviewAt:  it.NextReviewAt,
		CorrectAnswer: it.Word,
	}, nil
}

// importResult mirrors the backend's import counters. Reused is a subset of
// Imported.
type importResult struct {
	Imported   int
	Reused     int
	Duplicates int
}

// importWords adds words to a collection. Words already in the collection are
// counted as duplicates; words known from another collection reuse its
// translation.
func (s *Server) importWords(collectionID string, words []string) (importResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, _ := s.findCollectionLocked(collectionID)
	if c == nil {
		return importResult{}, errNotFound
	}

	existing := map[string]bool{}
	for _, id := range c.itemIDs {
		existing[strings.ToLower(s.items[id].Word)] = true
	}
	known := map[string]*item{}
	for _, it := range s.items {
		if it.CollectionID != collectionID {
			known[strings.ToLower(it.Word)] = it
		}
	}

	var res importResult
	for _, w := range words {
		w = strings.TrimSpace(w)
		key := strings.ToLower(w)
		if key == "" {
			continue
		}
		if existing[key] {
			res.Duplicates++
			continue
		}
		existing[key] = true

		it := &item{
			ID:           s.newID(),
			WordID:       s.newID(),
			CollectionID: collectionID,
			Word:         w,
		}
		if src, ok := known[key]; ok {
			it.WordID = src.WordID
			it.Chinese = src.Chinese
			it.Phonetic = src.Phonetic
			it.PartOfSpeech = src.PartOfSpeech
			it.Sentences = slices.Clone(src.Sentences)
			res.Reused++
		}
		res.Imported++
		s.items[it.ID] = it
		c.itemIDs = append(c.itemIDs, it.ID)
	}
	return res, nil
}
