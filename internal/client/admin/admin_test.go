package admin_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/auradrive/auradrive/internal/client/admin"
	"github.com/auradrive/auradrive/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAdminAPI struct {
	mu    sync.Mutex
	users []models.User
	logs  []models.ActivityEntry

	usersErr  error
	logsErr   error
	deleteErr error
	setErr    error

	usersCalls  int
	logsCalls   int
	deleteCalls []string
	setCalls    []string
}

func (f *fakeAdminAPI) Users(context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usersCalls++
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	return append([]models.User(nil), f.users...), nil
}

func (f *fakeAdminAPI) Logs(context.Context) ([]models.ActivityEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logsCalls++
	if f.logsErr != nil {
		return nil, f.logsErr
	}
	return append([]models.ActivityEntry(nil), f.logs...), nil
}

func (f *fakeAdminAPI) DeleteUser(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, id)
	if f.deleteErr != nil {
		return "", f.deleteErr
	}
	for i, u := range f.users {
		if u.ID == id {
			f.users = append(f.users[:i], f.users[i+1:]...)
			break
		}
	}
	return "User deleted.", nil
}

func (f *fakeAdminAPI) SetUserPassword(_ context.Context, id, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls = append(f.setCalls, id+":"+password)
	if f.setErr != nil {
		return "", f.setErr
	}
	return "Password updated.", nil
}

type fakeNotifier struct {
	successes []string
	errors    []string
	infos     []string
}

func (n *fakeNotifier) Success(msg string) { n.successes = append(n.successes, msg) }
func (n *fakeNotifier) Error(msg string)   { n.errors = append(n.errors, msg) }
func (n *fakeNotifier) Info(msg string)    { n.infos = append(n.infos, msg) }

type fakePrompter struct {
	value   string
	ok      bool
	confirm bool
}

func (p *fakePrompter) Prompt(label, initial string) (string, bool) { return p.value, p.ok }
func (p *fakePrompter) Confirm(string) bool                         { return p.confirm }

func seededAPI() *fakeAdminAPI {
	return &fakeAdminAPI{
		users: []models.User{
			{ID: "user-1", Email: "root@example.edu", Role: models.RoleAdmin},
			{ID: "user-2", Email: "sam@example.edu", Role: models.RoleStudent, MatrickNumber: "A1234567"},
		},
		logs: []models.ActivityEntry{
			{ID: "log-1", UserEmail: "sam@example.edu", Action: "login"},
		},
	}
}

func newPanel(api *fakeAdminAPI) (*admin.Panel, *fakeNotifier, *fakePrompter) {
	notifier := &fakeNotifier{}
	prompter := &fakePrompter{ok: true, confirm: true}
	p := admin.NewPanel(api, notifier, prompter, zap.NewNop())
	p.Actor = func() *models.User {
		return &models.User{ID: "user-1", Email: "root@example.edu", Role: models.RoleAdmin}
	}
	return p, notifier, prompter
}

func TestLoadFetchesUsersAndLogs(t *testing.T) {
	api := seededAPI()
	p, _, _ := newPanel(api)

	require.NoError(t, p.Load(context.Background()))
	assert.Len(t, p.Users(), 2)
	assert.Len(t, p.Logs(), 1)
	assert.Equal(t, 1, api.usersCalls)
	assert.Equal(t, 1, api.logsCalls)
}

func TestLoadEitherFailureSurfacesNotice(t *testing.T) {
	tests := []struct {
		name     string
		usersErr error
		logsErr  error
	}{
		{"users fetch fails", errors.New("403"), nil},
		{"logs fetch fails", nil, errors.New("403")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := seededAPI()
			api.usersErr = tt.usersErr
			api.logsErr = tt.logsErr
			p, notifier, _ := newPanel(api)

			require.Error(t, p.Load(context.Background()))
			assert.Empty(t, p.Users())
			assert.Empty(t, p.Logs())
			assert.Equal(t, []string{"Failed to fetch admin data. You may not have permission."}, notifier.errors)
		})
	}
}

func TestDeleteUserRefusesSelf(t *testing.T) {
	api := seededAPI()
	p, notifier, _ := newPanel(api)
	require.NoError(t, p.Load(context.Background()))

	p.DeleteUser(context.Background(), "user-1")

	assert.Empty(t, api.deleteCalls)
	assert.Equal(t, []string{"You cannot delete your own account."}, notifier.errors)
	assert.Len(t, p.Users(), 2)
}

func TestDeleteUserRefreshesUsersOnly(t *testing.T) {
	api := seededAPI()
	p, notifier, _ := newPanel(api)
	require.NoError(t, p.Load(context.Background()))
	logsBefore := api.logsCalls

	p.DeleteUser(context.Background(), "user-2")

	assert.Equal(t, []string{"user-2"}, api.deleteCalls)
	assert.Equal(t, []string{"User deleted."}, notifier.successes)
	assert.Len(t, p.Users(), 1)
	// The activity log is not re-fetched by row actions.
	assert.Equal(t, logsBefore, api.logsCalls)
}

func TestDeleteUserDeclinedIssuesNoRequest(t *testing.T) {
	api := seededAPI()
	p, _, prompter := newPanel(api)
	require.NoError(t, p.Load(context.Background()))
	prompter.confirm = false

	p.DeleteUser(context.Background(), "user-2")
	assert.Empty(t, api.deleteCalls)
}

func TestResetPasswordEnforcesMinLength(t *testing.T) {
	api := seededAPI()
	p, notifier, prompter := newPanel(api)
	require.NoError(t, p.Load(context.Background()))
	prompter.value = "short"

	p.ResetPassword(context.Background(), "user-2")

	assert.Empty(t, api.setCalls)
	assert.Equal(t, []string{"Password must be at least 6 characters long."}, notifier.errors)
}

func TestResetPasswordSuccess(t *testing.T) {
	api := seededAPI()
	p, notifier, prompter := newPanel(api)
	require.NoError(t, p.Load(context.Background()))
	usersBefore := api.usersCalls
	prompter.value = "longenough"

	p.ResetPassword(context.Background(), "user-2")

	assert.Equal(t, []string{"user-2:longenough"}, api.setCalls)
	assert.Equal(t, []string{"Password updated."}, notifier.successes)
	assert.Equal(t, usersBefore+1, api.usersCalls)
}

func TestResetPasswordFailureSurfacesNotice(t *testing.T) {
	api := seededAPI()
	api.setErr = errors.New("boom")
	p, notifier, prompter := newPanel(api)
	require.NoError(t, p.Load(context.Background()))
	prompter.value = "longenough"

	p.ResetPassword(context.Background(), "user-2")
	assert.Equal(t, []string{"Failed to set password."}, notifier.errors)
}
