// Package assistant maintains the conversational panel: an ordered
// transcript and a single in-flight request to the backend's natural
// language endpoint. The user's message is appended optimistically; the
// reply (or a canned failure line) reconciles the transcript when the
// request settles.
package assistant

import (
	"context"
	"strings"
	"sync"

	"github.com/auradrive/auradrive/internal/client/api"
	"github.com/auradrive/auradrive/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Greeting seeds every new transcript.
const Greeting = "Hello! I'm DriveAi. How can I assist you today?"

// failureText is appended when the chat request fails.
const failureText = "Sorry, I'm having trouble connecting right now."

// ChatAPI is the slice of the backend client the panel needs.
type ChatAPI interface {
	Chat(ctx context.Context, prompt string, chatCtx api.ChatContext) (*api.ChatReply, error)
}

// Panel is the assistant chat panel.
type Panel struct {
	api    ChatAPI
	logger *zap.Logger

	// ContextFunc supplies the structural context (scope, folder, path)
	// of the hosting drive view for each prompt.
	ContextFunc func() api.ChatContext
	// OnRefresh is invoked when a reply indicates the listing changed.
	OnRefresh func()

	mu       sync.Mutex
	messages []models.ChatMessage
	busy     bool
}

// NewPanel constructs a Panel seeded with the greeting.
func NewPanel(chat ChatAPI, logger *zap.Logger) *Panel {
	return &Panel{
		api:    chat,
		logger: logger,
		messages: []models.ChatMessage{{
			ID:     uuid.NewString(),
			Author: models.AuthorAssistant,
			Text:   Greeting,
		}},
	}
}

// Transcript returns a snapshot of the conversation.
func (p *Panel) Transcript() []models.ChatMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.ChatMessage, len(p.messages))
	copy(out, p.messages)
	return out
}

// Busy reports whether a request is in flight.
func (p *Panel) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

// Send submits one prompt. It reports false without issuing a request when
// the trimmed prompt is empty or a request is already in flight. The user's
// message is appended before the request; the assistant's reply or a failure
// line is appended when it settles, and the composing state clears in both
// outcomes.
func (p *Panel) Send(ctx context.Context, prompt string) bool {
	prompt = strings.TrimSpace(prompt)

	p.mu.Lock()
	if prompt == "" || p.busy {
		p.mu.Unlock()
		return false
	}
	p.busy = true
	p.messages = append(p.messages, models.ChatMessage{
		ID:     uuid.NewString(),
		Author: models.AuthorUser,
		Text:   prompt,
	})
	p.mu.Unlock()

	var chatCtx api.ChatContext
	if p.ContextFunc != nil {
		chatCtx = p.ContextFunc()
	}

	reply, err := p.api.Chat(ctx, prompt, chatCtx)

	p.mu.Lock()
	if err != nil {
		p.logger.Warn("chat request failed", zap.Error(err))
		p.messages = append(p.messages, models.ChatMessage{
			ID:     uuid.NewString(),
			Author: models.AuthorAssistant,
			Text:   failureText,
		})
	} else {
		author := reply.Author
		if author == "" {
			author = models.AuthorAssistant
		}
		p.messages = append(p.messages, models.ChatMessage{
			ID:     uuid.NewString(),
			Author: author,
			Text:   reply.Text,
		})
	}
	p.busy = false
	p.mu.Unlock()

	if err == nil && reply.RefreshNeeded && p.OnRefresh != nil {
		p.OnRefresh()
	}
	return true
}
