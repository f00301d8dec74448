package drivetest

import (
	"fmt"
	"sync"
	"time"

	"github.com/auradrive/auradrive/internal/models"
)

// store is the in-memory state behind the fake backend: users, sessions,
// entries with their content, and the activity log.
type store struct {
	mu sync.Mutex

	nextID    int
	users     map[string]*models.User
	passwords map[string]string
	sessions  map[string]string // token -> user id
	entries   map[string]*models.Entry
	owners    map[string]string // entry id -> owning user id (personal scope)
	scopes    map[string]models.Scope
	content   map[string][]byte
	logs      []models.ActivityEntry
}

func newStore() *store {
	return &store{
		users:     make(map[string]*models.User),
		passwords: make(map[string]string),
		sessions:  make(map[string]string),
		entries:   make(map[string]*models.Entry),
		owners:    make(map[string]string),
		scopes:    make(map[string]models.Scope),
		content:   make(map[string][]byte),
	}
}

func (s *store) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *store) addUser(email, password, role, matrick string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &models.User{
		ID:            s.id("user"),
		Email:         email,
		Role:          role,
		MatrickNumber: matrick,
	}
	s.users[u.ID] = u
	s.passwords[u.ID] = password
	return u
}

func (s *store) userByEmail(email string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (s *store) openSession(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := s.id("token")
	s.sessions[token] = userID
	return token
}

func (s *store) sessionUser(token string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.sessions[token]
	if !ok {
		return nil
	}
	return s.users[userID]
}

func (s *store) closeSession(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// addEntry creates an entry record. owner is the owning user id for
// personal-scope entries and empty for shared scopes.
func (s *store) addEntry(e models.Entry, scope models.Scope, owner string, body []byte) *models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = s.id("entry")
	}
	entry := e
	s.entries[entry.ID] = &entry
	s.scopes[entry.ID] = scope
	if owner != "" {
		s.owners[entry.ID] = owner
	}
	if body != nil {
		s.content[entry.ID] = body
	}
	return &entry
}

func (s *store) entry(id string) (*models.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	return e, ok
}

// list returns the entries of one folder within a scope, filtered to the
// given owner for the personal scope.
func (s *store) list(scope models.Scope, parentID, owner string) []models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Entry{}
	for id, e := range s.entries {
		if s.scopes[id] != scope || e.ParentID != parentID {
			continue
		}
		if scope == models.ScopePersonal && s.owners[id] != owner {
			continue
		}
		out = append(out, *e)
	}
	return out
}

// breadcrumbs walks parent links from the given folder up to the scope root.
func (s *store) breadcrumbs(parentID string) []models.Breadcrumb {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rev []models.Breadcrumb
	for id := parentID; id != ""; {
		e, ok := s.entries[id]
		if !ok {
			break
		}
		rev = append(rev, models.Breadcrumb{ID: e.ID, Filename: e.Filename})
		id = e.ParentID
	}
	out := make([]models.Breadcrumb, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		out = append(out, rev[i])
	}
	return out
}

func (s *store) rename(id, newName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return false
	}
	e.Filename = newName
	return true
}

func (s *store) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	delete(s.scopes, id)
	delete(s.owners, id)
	delete(s.content, id)
	return true
}

// relocate moves (or, with duplicate, copies) entries into a destination
// folder and scope.
func (s *store) relocate(ids []string, destScope models.Scope, destParent, owner string, duplicate bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	moved := 0
	for _, id := range ids {
		e, ok := s.entries[id]
		if !ok {
			continue
		}
		if duplicate {
			dup := *e
			dup.ID = s.id("entry")
			dup.ParentID = destParent
			s.entries[dup.ID] = &dup
			s.scopes[dup.ID] = destScope
			if owner != "" && destScope == models.ScopePersonal {
				s.owners[dup.ID] = owner
			}
			if body, ok := s.content[id]; ok {
				s.content[dup.ID] = append([]byte(nil), body...)
			}
		} else {
			e.ParentID = destParent
			s.scopes[id] = destScope
		}
		moved++
	}
	return moved
}

func (s *store) deleteUser(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return false
	}
	delete(s.users, id)
	delete(s.passwords, id)
	for token, uid := range s.sessions {
		if uid == id {
			delete(s.sessions, token)
		}
	}
	return true
}

func (s *store) allUsers() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out
}

func (s *store) log(email, action, details string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, models.ActivityEntry{
		ID:        s.id("log"),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		UserEmail: email,
		Action:    action,
		Details:   details,
	})
}

func (s *store) allLogs() []models.ActivityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ActivityEntry, len(s.logs))
	copy(out, s.logs)
	return out
}
