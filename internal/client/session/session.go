// Package session holds the client's view of the backend session: the
// current identity, whether startup resolution has completed, and the
// transient welcome signal raised on login.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/auradrive/auradrive/internal/models"
	"go.uber.org/zap"
)

// Client-side routes. Identity-gated consumers redirect to RouteLogin only
// after resolution completes with no identity present.
const (
	RouteLogin     = "/login"
	RouteRegister  = "/register"
	RouteDashboard = "/dashboard"
	RouteAdmin     = "/admin"
)

// RouteDrive returns the auth-gated drive view route for a scope.
func RouteDrive(scope string) string {
	return "/drive/" + scope
}

// DefaultWelcomeDelay is how long the welcome signal stays raised after a
// successful login.
const DefaultWelcomeDelay = 2500 * time.Millisecond

// AuthAPI is the slice of the backend client the store needs.
type AuthAPI interface {
	Session(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error
}

// Navigator receives route-change requests from the store.
type Navigator interface {
	NavigateTo(route string)
}

// Store is the process-wide session store. It is initialised once at
// application start and reset at logout; consumers must not treat the
// session as known until Resolved reports true.
type Store struct {
	api    AuthAPI
	nav    Navigator
	logger *zap.Logger

	// WelcomeDelay overrides DefaultWelcomeDelay; tests shorten it.
	WelcomeDelay time.Duration

	mu           sync.Mutex
	user         *models.User
	resolved     bool
	welcome      bool
	welcomeTimer *time.Timer
	subs         []func()
}

// New constructs a Store. nav may be nil when no routing is attached.
func New(api AuthAPI, nav Navigator, logger *zap.Logger) *Store {
	return &Store{
		api:          api,
		nav:          nav,
		logger:       logger,
		WelcomeDelay: DefaultWelcomeDelay,
	}
}

// Resolve asks the backend who the current session belongs to. Any failure
// means anonymous. After Resolve returns, Resolved reports true permanently.
func (s *Store) Resolve(ctx context.Context) {
	user, err := s.api.Session(ctx)
	if err != nil {
		s.logger.Debug("no active session", zap.Error(err))
		user = nil
	}

	s.mu.Lock()
	s.user = user
	s.resolved = true
	s.mu.Unlock()
	s.notify()
}

// Authorize decides whether the current identity may enter a route. Before
// resolution completes nothing may render: ok is false with no redirect.
// Afterwards, anonymous users are sent to the login screen from any
// protected route, logged-in users are bounced off the auth screens, and
// non-admins are bounced off the admin panel before it issues a single
// request.
func (s *Store) Authorize(route string) (redirect string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.resolved {
		return "", false
	}
	switch route {
	case RouteLogin, RouteRegister:
		if s.user != nil {
			return RouteDashboard, false
		}
	case RouteAdmin:
		if s.user == nil {
			return RouteLogin, false
		}
		if !s.user.IsAdmin() {
			return RouteDashboard, false
		}
	default:
		if s.user == nil {
			return RouteLogin, false
		}
	}
	return "", true
}

// Resolved reports whether startup session resolution has completed.
func (s *Store) Resolved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved
}

// Current returns the logged-in identity, or nil when anonymous.
func (s *Store) Current() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Welcome reports whether the transient welcome signal is raised.
func (s *Store) Welcome() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.welcome
}

// Login installs the identity returned by the backend, raises the welcome
// signal and schedules its auto-clear, then requests navigation to the
// dashboard.
func (s *Store) Login(user *models.User) {
	s.mu.Lock()
	s.user = user
	s.resolved = true
	s.welcome = true
	if s.welcomeTimer != nil {
		s.welcomeTimer.Stop()
	}
	s.welcomeTimer = time.AfterFunc(s.WelcomeDelay, func() {
		s.mu.Lock()
		s.welcome = false
		s.mu.Unlock()
		s.notify()
	})
	s.mu.Unlock()

	s.notify()
	if s.nav != nil {
		s.nav.NavigateTo(RouteDashboard)
	}
}

// Logout notifies the backend best-effort, unconditionally clears the
// identity, and requests navigation to the login screen.
func (s *Store) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		// Even if the request fails, log out on the client.
		s.logger.Warn("logout request failed", zap.Error(err))
	}

	s.mu.Lock()
	s.user = nil
	s.welcome = false
	if s.welcomeTimer != nil {
		s.welcomeTimer.Stop()
		s.welcomeTimer = nil
	}
	s.mu.Unlock()

	s.notify()
	if s.nav != nil {
		s.nav.NavigateTo(RouteLogin)
	}
}

// Subscribe registers fn to run after every state change.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) notify() {
	s.mu.Lock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}
