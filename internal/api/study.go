package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// StudySession fetches a word batch for a collection and mode.
func (c *Client) StudySession(ctx context.Context, collectionID, mode string) (*SessionResponse, error) {
	const path = "/api/study/session"
	q := url.Values{}
	q.Set("collection_id", collectionID)
	q.Set("mode", mode)

	raw, err := c.doRaw(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return nil, err
	}
	if err := validateSession(raw); err != nil {
		return nil, &InvalidResponseError{Path: path, Content: raw, Err: err}
	}

	var resp SessionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &InvalidResponseError{Path: path, Content: raw, Err: err}
	}
	return &resp, nil
}

// SubmitAnswer records an answer (or skip) for a learning record.
func (c *Client) SubmitAnswer(ctx context.Context, req SubmitRequest) (*SubmitResponse, error) {
	var resp SubmitResponse
	if err := c.do(ctx, http.MethodPost, "/api/study/submit", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
