package api

import (
	"context"
	"net/http"
)

// ChatContext is the structural context sent alongside every assistant
// prompt so the backend can resolve references like "this folder".
type ChatContext struct {
	Scope    string `json:"scope"`
	ParentID string `json:"parent_id,omitempty"`
	Path     string `json:"path"`
}

// ChatReply is the assistant's answer. RefreshNeeded signals that the
// assistant mutated the drive and the current listing should be re-fetched.
type ChatReply struct {
	Author        string `json:"author"`
	Text          string `json:"text"`
	RefreshNeeded bool   `json:"refresh_needed,omitempty"`
}

// Chat sends one free-text prompt with its structural context.
func (c *Client) Chat(ctx context.Context, prompt string, chatCtx ChatContext) (*ChatReply, error) {
	body := struct {
		Prompt  string      `json:"prompt"`
		Context ChatContext `json:"context"`
	}{Prompt: prompt, Context: chatCtx}

	var reply ChatReply
	if err := c.sendJSON(ctx, http.MethodPost, "/api/ai/chat", body, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}
