package backend

import (
	"context"
	"net/http"

	appsession "github.com/rental/backoffice/internal/application/session"
	domain "github.com/rental/backoffice/internal/domain/session"
)

var _ appsession.Authenticator = (*Client)(nil)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login calls POST /auth/login. A 401 here means bad credentials, not an
// expired session, so the unauthorized hook is not fired.
func (c *Client) Login(ctx context.Context, username, password string) (*appsession.LoginResult, error) {
	resp, err := c.do(ctx, request{
		method:             http.MethodPost,
		path:               "/auth/login",
		body:               loginRequest{Username: username, Password: password},
		anonymous:          true,
		noUnauthorizedHook: true,
	})
	if err != nil {
		return nil, err
	}
	return decode[appsession.LoginResult](resp)
}

// Logout calls POST /auth/logout with the given token
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.do(ctx, request{
		method:             http.MethodPost,
		path:               "/auth/logout",
		body:               struct{}{},
		token:              token,
		noUnauthorizedHook: true,
	})
	return err
}

// Me calls GET /auth/me with the given token
func (c *Client) Me(ctx context.Context, token string) (*domain.User, error) {
	resp, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/auth/me",
		token:  token,
	})
	if err != nil {
		return nil, err
	}
	return decode[domain.User](resp)
}
