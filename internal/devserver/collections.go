package devserver

import (
	"time"
)

type collectionJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
	WordCount   int    `json:"word_count"`
	CreatedAt   string `json:"created_at"`
}

type wordJSON struct {
	ID           string `json:"id"`
	ItemID       string `json:"item_id"`
	Word         string `json:"word"`
	Phonetic     string `json:"phonetic,omitempty"`
	Chinese      string `json:"chinese,omitempty"`
	PartOfSpeech string `json:"part_of_speech,omitempty"`
	Status       int    `json:"status"`
	NextReviewAt string `json:"next_review_at,omitempty"`
}

func (c *collection) toJSON() collectionJSON {
	return collectionJSON{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		Icon:        c.Icon,
		WordCount:   len(c.itemIDs),
		CreatedAt:   c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (it *item) toWordJSON() wordJSON {
	w := wordJSON{
		ID:           it.WordID,
		ItemID:       it.ID,
		Word:         it.Word,
		Phonetic:     it.Phonetic,
		Chinese:      it.Chinese,
		PartOfSpeech: it.PartOfSpeech,
		Status:       it.Status,
	}
	if !it.NextReviewAt.IsZero() {
		w.NextReviewAt = it.NextReviewAt.UTC().Format(time.RFC3339)
	}
	return w
}

// pageBounds returns the slice bounds of page (1-based) over n elements.
func pageBounds(n, page, size int) (int, int) {
	start := min((page-1)*size, n)
	end := min(start+size, n)
	return start, end
}

func (s *Server) listCollections(page, size int) ([]collectionJSON, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start, end := pageBounds(len(s.collections), page, size)
	out := make([]collectionJSON, 0, end-start)
	for _, c := range s.collections[start:end] {
		out = append(out, c.toJSON())
	}
	return out, len(s.collections)
}

func (s *Server) getCollection(id string) (collectionJSON, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, _ := s.findCollectionLocked(id)
	if c == nil {
		return collectionJSON{}, errNotFound
	}
	return c.toJSON(), nil
}

func (s *Server) createCollection(name, description, color, icon string) collectionJSON {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &collection{
		ID:          s.newID(),
		Name:        name,
		Description: description,
		Color:       color,
		Icon:        icon,
		CreatedAt:   s.now(),
	}
	// Newest first, as the backend lists them.
	s.collections = append([]*collection{c}, s.collections...)
	return c.toJSON()
}

func (s *Server) deleteCollection(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, idx := s.findCollectionLocked(id)
	if c == nil {
		return errNotFound
	}
	for _, itemID := range c.itemIDs {
		delete(s.items, itemID)
	}
	s.collections = append(s.collections[:idx], s.collections[idx+1:]...)
	return nil
}

func (s *Server) listWords(id string, page, size int) ([]wordJSON, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, _ := s.findCollectionLocked(id)
	if c == nil {
		return nil, 0, errNotFound
	}
	start, end := pageBounds(len(c.itemIDs), page, size)
	out := make([]wordJSON, 0, end-start)
	for _, itemID := range c.itemIDs[start:end] {
		out = append(out, s.items[itemID].toWordJSON())
	}
	return out, len(c.itemIDs), nil
}

type dashboardJSON struct {
	TotalWords       int `json:"total_words"`
	TotalCollections int `json:"total_collections"`
	TodayLearned     int `json:"today_learned"`
	ToReview         int `json:"to_review"`
}

func (s *Server) dashboard() dashboardJSON {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	y, m, d := now.Date()
	d0 := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	stats := dashboardJSON{
		TotalWords:       len(s.items),
		TotalCollections: len(s.collections),
	}
	for _, it := range s.items {
		if !it.LearnedAt.IsZero() && !it.LearnedAt.Before(d0) {
			stats.TodayLearned++
		}
		if it.Status == statusPendingCheck || it.Status == statusReviewing {
			stats.ToReview++
		}
	}
	return stats
}
