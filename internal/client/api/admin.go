package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/auradrive/auradrive/internal/models"
)

// Users fetches all registered users. Admin only.
func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.getJSON(ctx, "/admin/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Logs fetches the recent activity log. Admin only.
func (c *Client) Logs(ctx context.Context) ([]models.ActivityEntry, error) {
	var logs []models.ActivityEntry
	if err := c.getJSON(ctx, "/admin/logs", &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// DeleteUser permanently removes a user account. Admin only.
func (c *Client) DeleteUser(ctx context.Context, id string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.sendJSON(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(id), nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// SetUserPassword replaces a user's password. Admin only.
func (c *Client) SetUserPassword(ctx context.Context, id, password string) (string, error) {
	body := map[string]string{"password": password}
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/admin/users/"+url.PathEscape(id)+"/set-password", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
