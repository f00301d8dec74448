package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/auradrive/auradrive/internal/models"
)

// List fetches the entries of a folder within a scope. parentID is empty at
// the scope root. userID is set only when an admin is viewing another user's
// drive.
func (c *Client) List(ctx context.Context, scope models.Scope, parentID, userID string) ([]models.Entry, error) {
	path := "/api/files/" + url.PathEscape(string(scope))
	params := url.Values{}
	if parentID != "" {
		params.Set("parent_id", parentID)
	}
	if userID != "" {
		params.Set("user_id", userID)
	}
	if q := params.Encode(); q != "" {
		path += "?" + q
	}
	var entries []models.Entry
	if err := c.getJSON(ctx, path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Breadcrumbs fetches the root-to-folder path for the given folder id.
func (c *Client) Breadcrumbs(ctx context.Context, parentID string) ([]models.Breadcrumb, error) {
	var crumbs []models.Breadcrumb
	if err := c.getJSON(ctx, "/api/files/breadcrumbs/"+url.PathEscape(parentID), &crumbs); err != nil {
		return nil, err
	}
	return crumbs, nil
}

// Upload sends one file as a multipart request carrying the destination
// scope and parent folder. Each file of a batch is an independent request.
func (c *Client) Upload(ctx context.Context, scope models.Scope, parentID, filename string, content io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.WriteField("scope", string(scope)); err != nil {
		return err
	}
	if parentID != "" {
		if err := mw.WriteField("parent_id", parentID); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/files/upload", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, nil)
}

// CreateFolder creates a folder under the given parent within a scope.
func (c *Client) CreateFolder(ctx context.Context, name string, scope models.Scope, parentID string) error {
	body := map[string]any{"name": name, "scope": scope}
	if parentID != "" {
		body["parent_id"] = parentID
	} else {
		body["parent_id"] = nil
	}
	return c.sendJSON(ctx, http.MethodPost, "/api/files/folder", body, nil)
}

// Rename changes an entry's display name.
func (c *Client) Rename(ctx context.Context, id, newName string) error {
	body := map[string]string{"newName": newName}
	return c.sendJSON(ctx, http.MethodPatch, "/api/files/"+url.PathEscape(id)+"/rename", body, nil)
}

// Delete removes a single entry. Multi-entry deletes are a client-side
// fan-out of independent calls, not a transaction.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/api/files/"+url.PathEscape(id), nil, nil)
}

// batchRequest is the body of the copy and move endpoints.
type batchRequest struct {
	ItemIDs             []string     `json:"item_ids"`
	DestinationScope    models.Scope `json:"destination_scope"`
	DestinationParentID string       `json:"destination_parent_id,omitempty"`
}

// Copy duplicates the given entries into a destination folder in one batch
// request.
func (c *Client) Copy(ctx context.Context, itemIDs []string, destScope models.Scope, destParentID string) (string, error) {
	return c.batch(ctx, "/api/files/copy", itemIDs, destScope, destParentID)
}

// Move relocates the given entries into a destination folder in one batch
// request.
func (c *Client) Move(ctx context.Context, itemIDs []string, destScope models.Scope, destParentID string) (string, error) {
	return c.batch(ctx, "/api/files/move", itemIDs, destScope, destParentID)
}

func (c *Client) batch(ctx context.Context, path string, itemIDs []string, destScope models.Scope, destParentID string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	body := batchRequest{
		ItemIDs:             itemIDs,
		DestinationScope:    destScope,
		DestinationParentID: destParentID,
	}
	if err := c.sendJSON(ctx, http.MethodPost, path, body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Serve fetches a file's content for inline preview.
func (c *Client) Serve(ctx context.Context, id string) ([]byte, error) {
	return c.fetchBytes(ctx, "/api/files/"+url.PathEscape(id)+"/serve")
}

// Download fetches a file's content for saving locally.
func (c *Client) Download(ctx context.Context, id string) ([]byte, error) {
	return c.fetchBytes(ctx, "/api/files/"+url.PathEscape(id)+"/download")
}

// DownloadURL returns the direct download address for an entry, used by the
// no-preview fallback.
func (c *Client) DownloadURL(id string) string {
	return c.baseURL + "/api/files/" + url.PathEscape(id) + "/download"
}
