package client

import (
	"context"
	"net/http"
)

// RegisterRequest creates an account. Role may be empty.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// Register creates an account and stores the returned token.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, c.saveSession(&out)
}

// Login authenticates and stores the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	payload := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", payload, &out); err != nil {
		return nil, err
	}
	return &out, c.saveSession(&out)
}

// Logout forgets the token locally. Tokens are not revocable server side.
func (c *Client) Logout() error {
	return c.tokens.Clear()
}

// Session returns the stored session, or nil when logged out.
func (c *Client) Session() (*Session, error) {
	return c.tokens.Load()
}

func (c *Client) saveSession(res *AuthResponse) error {
	return c.tokens.Save(&Session{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      res.User,
		Server:    c.baseURL,
	})
}
