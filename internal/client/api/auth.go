package api

import (
	"context"
	"net/http"

	"github.com/auradrive/auradrive/internal/models"
)

// Session asks the backend who the current session belongs to.
// A 401 means there is no session; callers treat that as anonymous.
func (c *Client) Session(ctx context.Context) (*models.User, error) {
	var resp struct {
		User *models.User `json:"user"`
	}
	if err := c.getJSON(ctx, "/auth/session", &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Login authenticates with email and password. On success the backend sets
// the session cookie and returns the identity plus a confirmation message.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	body := map[string]string{"email": email, "password": password}
	var resp struct {
		Message string       `json:"message"`
		User    *models.User `json:"user"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, "", err
	}
	return resp.User, resp.Message, nil
}

// Logout invalidates the backend session.
func (c *Client) Logout(ctx context.Context) error {
	return c.sendJSON(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Register creates a new account. matrickNumber is required for student
// accounts and must be empty otherwise.
func (c *Client) Register(ctx context.Context, email, password, matrickNumber string) (string, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}
	if matrickNumber != "" {
		body["matrickNumber"] = matrickNumber
	} else {
		body["matrickNumber"] = nil
	}
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/register", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ResetPassword changes the current user's password. The client validates
// length and confirmation before calling; the backend verifies the current
// password.
func (c *Client) ResetPassword(ctx context.Context, currentPassword, newPassword string) (string, error) {
	body := map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	}
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/reset-password", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
