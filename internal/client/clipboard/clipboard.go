// Package clipboard holds the pending copy/move operation: a set of entry
// ids plus an operation tag. The clipboard is process-wide state that
// survives navigation across folders and scopes until a paste consumes it or
// it is explicitly cleared. It is not a backend resource.
package clipboard

import "sync"

// Op tags the pending operation.
type Op string

const (
	OpNone Op = ""
	OpCopy Op = "copy"
	OpCut  Op = "cut"
)

// Store is the clipboard. Invariant: the operation is OpNone exactly when
// the id set is empty.
type Store struct {
	mu  sync.Mutex
	ids map[string]struct{}
	op  Op
}

// New returns an empty clipboard.
func New() *Store {
	return &Store{ids: make(map[string]struct{})}
}

// Set replaces the clipboard contents. An empty id set clears it regardless
// of op, keeping the invariant.
func (s *Store) Set(ids []string, op Op) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	if len(s.ids) == 0 || op == OpNone {
		s.ids = make(map[string]struct{})
		s.op = OpNone
		return
	}
	s.op = op
}

// Clear empties the clipboard.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[string]struct{})
	s.op = OpNone
}

// Contents returns a snapshot of the id set and the operation tag.
func (s *Store) Contents() ([]string, Op) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	return ids, s.op
}

// Len returns the number of ids held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Empty reports whether the clipboard holds nothing.
func (s *Store) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids) == 0
}
