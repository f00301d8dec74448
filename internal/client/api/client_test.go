package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/auradrive/auradrive/internal/client/api"
	"github.com/auradrive/auradrive/internal/drivetest"
	"github.com/auradrive/auradrive/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newClient(t *testing.T) (*api.Client, *drivetest.Server) {
	t.Helper()
	backend := drivetest.NewServer()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	client, err := api.New(srv.URL, zap.NewNop())
	require.NoError(t, err)
	return client, backend
}

func login(t *testing.T, client *api.Client, email, password string) *models.User {
	t.Helper()
	user, _, err := client.Login(context.Background(), email, password)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

func TestSessionLifecycle(t *testing.T) {
	client, backend := newClient(t)
	backend.AddUser("amira@example.edu", "hunter22", models.RoleStaff, "")
	ctx := context.Background()

	_, err := client.Session(ctx)
	assert.True(t, api.IsStatus(err, http.StatusUnauthorized))

	_, _, err = client.Login(ctx, "amira@example.edu", "wrong")
	require.Error(t, err)
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid email or password.", apiErr.Message)

	user, message, err := client.Login(ctx, "amira@example.edu", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "Login successful.", message)
	assert.Equal(t, "amira@example.edu", user.Email)

	// Cookie jar carries the session into subsequent calls.
	current, err := client.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, current.ID)

	require.NoError(t, client.Logout(ctx))
	_, err = client.Session(ctx)
	assert.True(t, api.IsStatus(err, http.StatusUnauthorized))
}

func TestRegisterAssignsRoleByMatrickNumber(t *testing.T) {
	client, _ := newClient(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		matrick  string
		wantRole string
	}{
		{"with matrick number becomes student", "sam@example.edu", "A1234567", models.RoleStudent},
		{"without matrick number becomes staff", "lee@example.edu", "", models.RoleStaff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Register(ctx, tt.email, "secret99", tt.matrick)
			require.NoError(t, err)
			user := login(t, client, tt.email, "secret99")
			assert.Equal(t, tt.wantRole, user.Role)
			require.NoError(t, client.Logout(ctx))
		})
	}

	_, err := client.Register(ctx, "sam@example.edu", "secret99", "")
	assert.True(t, api.IsStatus(err, http.StatusConflict))
}

func TestFilesRoundTrip(t *testing.T) {
	client, backend := newClient(t)
	ctx := context.Background()
	user := backend.AddUser("amira@example.edu", "hunter22", models.RoleStaff, "")
	login(t, client, "amira@example.edu", "hunter22")

	require.NoError(t, client.CreateFolder(ctx, "Reports", models.ScopePersonal, ""))
	entries, err := client.List(ctx, models.ScopePersonal, "", "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	folder := entries[0]
	assert.True(t, folder.IsFolder())
	assert.Equal(t, "Reports", folder.Filename)

	err = client.Upload(ctx, models.ScopePersonal, folder.ID, "notes.txt", strings.NewReader("hello drive"))
	require.NoError(t, err)

	entries, err = client.List(ctx, models.ScopePersonal, folder.ID, "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	file := entries[0]
	assert.Equal(t, models.EntryFile, file.Type)
	assert.Equal(t, int64(len("hello drive")), file.Filesize)
	assert.Equal(t, "text/plain; charset=utf-8", file.Filetype)

	crumbs, err := client.Breadcrumbs(ctx, folder.ID)
	require.NoError(t, err)
	require.Len(t, crumbs, 1)
	assert.Equal(t, "Reports", crumbs[0].Filename)

	require.NoError(t, client.Rename(ctx, file.ID, "renamed.txt"))
	body, err := client.Serve(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello drive", string(body))

	body, err = client.Download(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello drive", string(body))
	assert.Equal(t, client.BaseURL()+"/api/files/"+file.ID+"/download", client.DownloadURL(file.ID))

	message, err := client.Copy(ctx, []string{file.ID}, models.ScopePersonal, "")
	require.NoError(t, err)
	assert.Equal(t, "1 item(s) copied successfully.", message)
	root := backend.List(models.ScopePersonal, "", user.ID)
	require.Len(t, root, 2)

	message, err = client.Move(ctx, []string{file.ID}, models.ScopePersonal, "")
	require.NoError(t, err)
	assert.Equal(t, "1 item(s) moved successfully.", message)

	require.NoError(t, client.Delete(ctx, file.ID))
	err = client.Delete(ctx, file.ID)
	assert.True(t, api.IsStatus(err, http.StatusNotFound))
}

func TestScopeAccess(t *testing.T) {
	client, backend := newClient(t)
	ctx := context.Background()
	backend.AddUser("student@example.edu", "secret99", models.RoleStudent, "A1234567")
	backend.AddFile(models.ScopeStaffOnly, "", "exam.pdf", "application/pdf", []byte("pdf"), "")
	login(t, client, "student@example.edu", "secret99")

	_, err := client.List(ctx, models.ScopeStaffOnly, "", "")
	assert.True(t, api.IsStatus(err, http.StatusForbidden))

	// Viewing another user's drive is an admin affordance.
	_, err = client.List(ctx, models.ScopePersonal, "", "someone-else")
	assert.True(t, api.IsStatus(err, http.StatusForbidden))
}

func TestChat(t *testing.T) {
	client, backend := newClient(t)
	ctx := context.Background()
	backend.AddUser("amira@example.edu", "hunter22", models.RoleStaff, "")
	login(t, client, "amira@example.edu", "hunter22")

	backend.ChatFunc = func(prompt, scope, parentID, path string) (string, bool) {
		assert.Equal(t, "personal", scope)
		assert.Equal(t, "/personal/", path)
		return "Created the folder for you.", true
	}
	reply, err := client.Chat(ctx, "make me a folder", api.ChatContext{Scope: "personal", Path: "/personal/"})
	require.NoError(t, err)
	assert.Equal(t, models.AuthorAssistant, reply.Author)
	assert.Equal(t, "Created the folder for you.", reply.Text)
	assert.True(t, reply.RefreshNeeded)
}

func TestAdminEndpoints(t *testing.T) {
	client, backend := newClient(t)
	ctx := context.Background()
	backend.AddUser("root@example.edu", "hunter22", models.RoleAdmin, "")
	target := backend.AddUser("sam@example.edu", "secret99", models.RoleStudent, "A1234567")
	backend.AddLog("sam@example.edu", "login", "")
	login(t, client, "root@example.edu", "hunter22")

	users, err := client.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	logs, err := client.Logs(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	assert.Equal(t, "sam@example.edu", logs[0].UserEmail)

	message, err := client.SetUserPassword(ctx, target.ID, "newpass1")
	require.NoError(t, err)
	assert.Equal(t, "Password updated.", message)

	message, err = client.DeleteUser(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, "User deleted.", message)

	users, err = client.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestAdminEndpointsForbiddenForStaff(t *testing.T) {
	client, backend := newClient(t)
	ctx := context.Background()
	backend.AddUser("amira@example.edu", "hunter22", models.RoleStaff, "")
	login(t, client, "amira@example.edu", "hunter22")

	_, err := client.Users(ctx)
	assert.True(t, api.IsStatus(err, http.StatusForbidden))
	_, err = client.Logs(ctx)
	assert.True(t, api.IsStatus(err, http.StatusForbidden))
}
