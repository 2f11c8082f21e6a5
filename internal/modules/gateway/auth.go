package gateway

import (
	"context"
	"errors"
	"net/http"
)

// Login exchanges credentials for an API token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/login", credentials{username, password}, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errors.New("login response did not include a token")
	}
	return resp.Token, nil
}

func (c *Client) Register(ctx context.Context, username, password string) error {
	return c.sendJSON(ctx, http.MethodPost, "/auth/register", credentials{username, password}, nil)
}
