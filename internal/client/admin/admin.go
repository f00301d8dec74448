// Package admin implements the admin panel: user management and the
// activity log. Both tables load concurrently on mount; row actions are
// independent requests and refresh only the user list, never the log.
package admin

import (
	"context"
	"fmt"
	"sync"

	"github.com/auradrive/auradrive/internal/client/ui"
	"github.com/auradrive/auradrive/internal/models"
	"go.uber.org/zap"
)

// MinPasswordLength is enforced client-side before a set-password request.
const MinPasswordLength = 6

// API is the slice of the backend client the panel needs.
type API interface {
	Users(ctx context.Context) ([]models.User, error)
	Logs(ctx context.Context) ([]models.ActivityEntry, error)
	DeleteUser(ctx context.Context, id string) (string, error)
	SetUserPassword(ctx context.Context, id, password string) (string, error)
}

// Panel is the admin control panel. Actor identifies the acting admin and
// guards against self-deletion.
type Panel struct {
	api      API
	notifier ui.Notifier
	prompter ui.Prompter
	logger   *zap.Logger

	// Actor returns the acting admin's identity.
	Actor func() *models.User

	mu    sync.Mutex
	users []models.User
	logs  []models.ActivityEntry
}

// NewPanel constructs a Panel.
func NewPanel(a API, notifier ui.Notifier, prompter ui.Prompter, logger *zap.Logger) *Panel {
	return &Panel{api: a, notifier: notifier, prompter: prompter, logger: logger}
}

// Load fetches the user list and the activity log concurrently. Either
// failure surfaces one aggregate error and leaves the panel empty.
func (p *Panel) Load(ctx context.Context) error {
	var (
		wg         sync.WaitGroup
		users      []models.User
		logs       []models.ActivityEntry
		uErr, lErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		users, uErr = p.api.Users(ctx)
	}()
	go func() {
		defer wg.Done()
		logs, lErr = p.api.Logs(ctx)
	}()
	wg.Wait()

	if uErr != nil || lErr != nil {
		p.logger.Warn("admin data fetch failed", zap.NamedError("users", uErr), zap.NamedError("logs", lErr))
		p.notifier.Error("Failed to fetch admin data. You may not have permission.")
		if uErr != nil {
			return uErr
		}
		return lErr
	}

	p.mu.Lock()
	p.users = users
	p.logs = logs
	p.mu.Unlock()
	return nil
}

// Users returns the loaded user list.
func (p *Panel) Users() []models.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.User, len(p.users))
	copy(out, p.users)
	return out
}

// Logs returns the loaded activity log.
func (p *Panel) Logs() []models.ActivityEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.ActivityEntry, len(p.logs))
	copy(out, p.logs)
	return out
}

func (p *Panel) findUser(id string) (models.User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, u := range p.users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// DeleteUser permanently removes an account after confirmation. The acting
// admin's own account is refused locally without a request. On success only
// the user list is refreshed.
func (p *Panel) DeleteUser(ctx context.Context, id string) {
	if actor := p.actor(); actor != nil && actor.ID == id {
		p.notifier.Error("You cannot delete your own account.")
		return
	}
	user, ok := p.findUser(id)
	if !ok {
		return
	}
	if !p.prompter.Confirm(fmt.Sprintf("Are you sure you want to permanently delete user %s? This cannot be undone.", user.Email)) {
		return
	}
	message, err := p.api.DeleteUser(ctx, id)
	if err != nil {
		p.notifier.Error("Failed to delete user.")
		return
	}
	if message == "" {
		message = "User deleted."
	}
	p.notifier.Success(message)
	p.refreshUsers(ctx)
}

// ResetPassword sets a new password for a user. The minimum length is
// enforced locally before any request is issued. On success only the user
// list is refreshed.
func (p *Panel) ResetPassword(ctx context.Context, id string) {
	user, ok := p.findUser(id)
	if !ok {
		return
	}
	password, ok := p.prompter.Prompt(fmt.Sprintf("Enter a new password for %s", user.Email), "")
	if !ok || password == "" {
		return
	}
	if len(password) < MinPasswordLength {
		p.notifier.Error(fmt.Sprintf("Password must be at least %d characters long.", MinPasswordLength))
		return
	}
	if !p.prompter.Confirm(fmt.Sprintf("Are you sure you want to set this new password for %s?", user.Email)) {
		return
	}
	message, err := p.api.SetUserPassword(ctx, id, password)
	if err != nil {
		p.notifier.Error("Failed to set password.")
		return
	}
	if message == "" {
		message = "Password updated."
	}
	p.notifier.Success(message)
	p.refreshUsers(ctx)
}

func (p *Panel) actor() *models.User {
	if p.Actor == nil {
		return nil
	}
	return p.Actor()
}

// refreshUsers re-fetches the user list only; the activity log is left as
// loaded.
func (p *Panel) refreshUsers(ctx context.Context) {
	users, err := p.api.Users(ctx)
	if err != nil {
		p.logger.Warn("user list refresh failed", zap.Error(err))
		return
	}
	p.mu.Lock()
	p.users = users
	p.mu.Unlock()
}
