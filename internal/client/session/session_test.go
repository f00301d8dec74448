package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/auradrive/auradrive/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAuth struct {
	user       *models.User
	sessionErr error
	logoutErr  error
	logoutN    int
}

func (f *fakeAuth) Session(context.Context) (*models.User, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return f.user, nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.logoutN++
	return f.logoutErr
}

type fakeNav struct {
	routes []string
}

func (f *fakeNav) NavigateTo(route string) { f.routes = append(f.routes, route) }

func TestResolveSuccess(t *testing.T) {
	user := &models.User{ID: "user-1", Email: "amira@example.edu", Role: models.RoleStaff}
	s := New(&fakeAuth{user: user}, nil, zap.NewNop())

	assert.False(t, s.Resolved())
	assert.Nil(t, s.Current())

	s.Resolve(context.Background())

	assert.True(t, s.Resolved())
	require.NotNil(t, s.Current())
	assert.Equal(t, "user-1", s.Current().ID)
}

func TestResolveFailureMeansAnonymous(t *testing.T) {
	s := New(&fakeAuth{sessionErr: errors.New("401")}, nil, zap.NewNop())

	s.Resolve(context.Background())

	// Resolution completed even though there is no identity.
	assert.True(t, s.Resolved())
	assert.Nil(t, s.Current())
}

func TestLoginRaisesWelcomeAndNavigates(t *testing.T) {
	nav := &fakeNav{}
	s := New(&fakeAuth{}, nav, zap.NewNop())
	s.WelcomeDelay = 10 * time.Millisecond

	user := &models.User{ID: "user-1", Email: "amira@example.edu", Role: models.RoleStaff}
	s.Login(user)

	assert.True(t, s.Resolved())
	assert.Equal(t, user, s.Current())
	assert.True(t, s.Welcome())
	assert.Equal(t, []string{RouteDashboard}, nav.routes)

	// The welcome signal clears on its own after the delay.
	assert.Eventually(t, func() bool { return !s.Welcome() }, time.Second, time.Millisecond)
	assert.Equal(t, user, s.Current())
}

func TestLogoutClearsStateEvenWhenRequestFails(t *testing.T) {
	auth := &fakeAuth{logoutErr: errors.New("network down")}
	nav := &fakeNav{}
	s := New(auth, nav, zap.NewNop())
	s.Login(&models.User{ID: "user-1"})

	s.Logout(context.Background())

	assert.Equal(t, 1, auth.logoutN)
	assert.Nil(t, s.Current())
	assert.False(t, s.Welcome())
	assert.Equal(t, []string{RouteDashboard, RouteLogin}, nav.routes)
}

func TestAuthorizeBlocksEverythingBeforeResolution(t *testing.T) {
	s := New(&fakeAuth{}, nil, zap.NewNop())

	for _, route := range []string{RouteLogin, RouteRegister, RouteDashboard, RouteAdmin} {
		redirect, ok := s.Authorize(route)
		assert.False(t, ok, route)
		assert.Empty(t, redirect, route)
	}
}

func TestAuthorizeAfterResolution(t *testing.T) {
	staff := &models.User{ID: "user-1", Role: models.RoleStaff}
	admin := &models.User{ID: "user-2", Role: models.RoleAdmin}

	tests := []struct {
		name         string
		user         *models.User
		route        string
		wantOK       bool
		wantRedirect string
	}{
		{"anonymous on login", nil, RouteLogin, true, ""},
		{"anonymous on dashboard", nil, RouteDashboard, false, RouteLogin},
		{"anonymous on admin", nil, RouteAdmin, false, RouteLogin},
		{"staff on dashboard", staff, RouteDashboard, true, ""},
		{"staff on login bounces to dashboard", staff, RouteLogin, false, RouteDashboard},
		{"staff on admin bounces to dashboard", staff, RouteAdmin, false, RouteDashboard},
		{"admin on admin", admin, RouteAdmin, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeAuth{user: tt.user}
			if tt.user == nil {
				auth.sessionErr = errors.New("401")
			}
			s := New(auth, nil, zap.NewNop())
			s.Resolve(context.Background())

			redirect, ok := s.Authorize(tt.route)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantRedirect, redirect)
		})
	}
}

func TestSubscribeRunsOnEveryChange(t *testing.T) {
	s := New(&fakeAuth{}, nil, zap.NewNop())
	n := 0
	s.Subscribe(func() { n++ })

	s.Resolve(context.Background())
	s.Login(&models.User{ID: "user-1"})
	s.Logout(context.Background())

	assert.GreaterOrEqual(t, n, 3)
}
