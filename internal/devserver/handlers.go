package devserver

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxRequestBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(v)
}

// pageParams parses page and page_size with the backend defaults.
func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	return page, min(size, 100)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": "devserver"})
}

type userJSON struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Nickname string `json:"nickname,omitempty"`
}

func (a *account) toJSON() userJSON {
	return userJSON{ID: a.ID, Email: a.Email, Username: a.Username, Nickname: a.Nickname}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Account  string `json:"account"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Account == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "account and password are required")
		return
	}

	tok, u, err := s.login(req.Account, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": tok, "user": u.toJSON()})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.logout(tokenFromContext(r.Context()))
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFromContext(r.Context()).toJSON())
}

func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	cols, total := s.listCollections(page, size)
	writeJSON(w, http.StatusOK, map[string]any{
		"collections": cols,
		"total":       total,
		"page":        page,
		"page_size":   size,
	})
}

func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Color       string `json:"color"`
		Icon        string `json:"icon"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	c := s.createCollection(strings.TrimSpace(req.Name), req.Description, req.Color, req.Icon)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	c, err := s.getCollection(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "collection not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	if err := s.deleteCollection(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, "collection not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CollectionID string   `json:"collection_id"`
		Words        []string `json:"words"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Words) == 0 {
		writeError(w, http.StatusBadRequest, "words is required")
		return
	}

	res, err := s.importWords(chi.URLParam(r, "id"), req.Words)
	if err != nil {
		writeError(w, http.StatusNotFound, "collection not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"imported":      res.Imported,
		"llm_generated": 0,
		"reused":        res.Reused,
		"duplicates":    res.Duplicates,
	})
}

func (s *Server) handleListWords(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	words, total, err := s.listWords(chi.URLParam(r, "id"), page, size)
	if err != nil {
		writeError(w, http.StatusNotFound, "collection not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"words":     words,
		"total":     total,
		"page":      page,
		"page_size": size,
	})
}

type studyWordJSON struct {
	WordID       string   `json:"word_id"`
	ItemID       string   `json:"item_id"`
	Word         string   `json:"word"`
	Chinese      string   `json:"chinese"`
	Phonetic     string   `json:"phonetic"`
	PartOfSpeech string   `json:"part_of_speech"`
	Sentences    []string `json:"sentences"`
	Status       int      `json:"status"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	collectionID := r.URL.Query().Get("collection_id")
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "new"
	}
	if collectionID == "" {
		writeError(w, http.StatusBadRequest, "collection_id is required")
		return
	}
	if !validMode(mode) {
		writeError(w, http.StatusBadRequest, "invalid mode: "+mode)
		return
	}

	sid, batch, total, err := s.buildSession(collectionID, mode)
	if err != nil {
		writeError(w, http.StatusNotFound, "collection not found")
		return
	}

	words := make([]studyWordJSON, 0, len(batch))
	for _, it := range batch {
		sentences := it.Sentences
		if sentences == nil {
			sentences = []string{}
		}
		words = append(words, studyWordJSON{
			WordID:       it.WordID,
			ItemID:       it.ID,
			Word:         it.Word,
			Chinese:      it.Chinese,
			Phonetic:     it.Phonetic,
			PartOfSpeech: it.PartOfSpeech,
			Sentences:    sentences,
			Status:       it.Status,
		})
	}

	s.logger.Info("session served",
		zap.String("session_id", sid),
		zap.String("collection_id", collectionID),
		zap.String("mode", mode),
		zap.Int("words", len(words)),
		zap.Int("total_count", total))

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":    sid,
		"collection_id": collectionID,
		"mode":          mode,
		"words":         words,
		"total_count":   total,
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID    string `json:"item_id"`
		UserInput string `json:"user_input"`
		IsSkip    bool   `json:"is_skip"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ItemID == "" {
		writeError(w, http.StatusBadRequest, "item_id is required")
		return
	}

	res, err := s.answer(req.ItemID, req.UserInput, req.IsSkip)
	if err != nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	resp := map[string]any{
		"success":        true,
		"correct":        res.Correct,
		"status_update":  res.StatusUpdate,
		"current_status": res.Status,
		"correct_answer": res.CorrectAnswer,
	}
	if !res.NextReviewAt.IsZero() {
		resp["next_review_at"] = res.NextReviewAt.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dashboard())
}
