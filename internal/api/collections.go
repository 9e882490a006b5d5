package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// pageQuery applies pagination defaults and the size cap.
func pageQuery(page, size int) url.Values {
	if page < 1 {
		page = DefaultPage
	}
	if size < 1 {
		size = DefaultPageSize
	}
	size = min(size, MaxPageSize)

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(size))
	return q
}

func collectionPath(id string) string {
	return "/api/collections/" + url.PathEscape(id)
}

// Collections lists one page of the user's collections.
func (c *Client) Collections(ctx context.Context, page, size int) (*CollectionPage, error) {
	var resp CollectionPage
	if err := c.do(ctx, http.MethodGet, "/api/collections", pageQuery(page, size), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Collection fetches a single collection.
func (c *Client) Collection(ctx context.Context, id string) (*Collection, error) {
	var resp Collection
	if err := c.do(ctx, http.MethodGet, collectionPath(id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateCollection creates a new collection.
func (c *Client) CreateCollection(ctx context.Context, in CollectionInput) (*Collection, error) {
	var resp Collection
	if err := c.do(ctx, http.MethodPost, "/api/collections", nil, in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteCollection removes a collection.
func (c *Client) DeleteCollection(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, collectionPath(id), nil, nil, nil)
}

// ImportWords adds words to a collection.
func (c *Client) ImportWords(ctx context.Context, id string, words []string) (*ImportResult, error) {
	var resp ImportResult
	req := ImportRequest{CollectionID: id, Words: words}
	if err := c.do(ctx, http.MethodPost, collectionPath(id)+"/import", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CollectionWords lists one page of words in a collection.
func (c *Client) CollectionWords(ctx context.Context, id string, page, size int) (*WordPage, error) {
	var resp WordPage
	if err := c.do(ctx, http.MethodGet, collectionPath(id)+"/words", pageQuery(page, size), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DashboardStats returns account-wide counters.
func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var resp DashboardStats
	if err := c.do(ctx, http.MethodGet, "/api/dashboard/stats", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
