package api

import (
	"context"
	"time"

	"github.com/abhisek/wordcraft/internal/study"
)

// StudyBackend adapts a Client to study.Backend.
type StudyBackend struct {
	Client *Client
}

var _ study.Backend = (*StudyBackend)(nil)

// FetchSession implements study.Backend.
func (b *StudyBackend) FetchSession(ctx context.Context, collectionID string, mode study.Mode) (*study.Batch, error) {
	resp, err := b.Client.StudySession(ctx, collectionID, string(mode))
	if err != nil {
		return nil, err
	}

	batch := &study.Batch{
		SessionID:  resp.SessionID,
		TotalCount: resp.TotalCount,
		Words:      make([]study.Item, 0, len(resp.Words)),
	}
	for _, w := range resp.Words {
		batch.Words = append(batch.Words, study.Item{
			WordID:       w.WordID,
			ItemID:       w.ItemID,
			Word:         w.Word,
			Translation:  w.Chinese,
			Phonetic:     w.Phonetic,
			PartOfSpeech: w.PartOfSpeech,
			Sentences:    w.Sentences,
			AudioURL:     w.AudioURL,
			Status:       study.WordStatus(w.Status),
		})
	}
	return batch, nil
}

// SubmitAnswer implements study.Backend.
func (b *StudyBackend) SubmitAnswer(ctx context.Context, itemID, userInput string, isSkip bool) (*study.Verdict, error) {
	resp, err := b.Client.SubmitAnswer(ctx, SubmitRequest{
		ItemID:    itemID,
		UserInput: userInput,
		IsSkip:    isSkip,
	})
	if err != nil {
		return nil, err
	}
	return &study.Verdict{
		Correct:       resp.Correct,
		CurrentStatus: study.WordStatus(resp.CurrentStatus),
		StatusUpdate:  resp.StatusUpdate,
		CorrectAnswer: resp.CorrectAnswer,
		NextReviewAt:  parseTime(resp.NextReviewAt),
	}, nil
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"}

// parseTime accepts the timestamp formats the backend has been seen to emit.
// Unparseable values yield nil.
func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
