package api

import (
	"context"
	"net/http"
)

// Login exchanges credentials for a token. On success the client starts
// sending the new token.
func (c *Client) Login(ctx context.Context, account, password string) (*LoginResponse, error) {
	var resp LoginResponse
	req := LoginRequest{Account: account, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, req, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

// Logout invalidates the token server-side and clears it locally, even when
// the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
	c.SetToken("")
	return err
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
