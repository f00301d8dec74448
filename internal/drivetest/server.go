// Package drivetest provides an in-memory AuraDrive backend for client
// tests. It serves the same HTTP surface the real backend exposes - cookie
// sessions, scoped file listings, uploads, batch copy/move, assistant chat
// and the admin endpoints - backed by maps instead of a database, plus
// request recording and failure injection hooks.
package drivetest

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/auradrive/auradrive/internal/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// sessionCookie is the name of the backend session cookie.
const sessionCookie = "session"

type ctxKey string

const userKey ctxKey = "user"

// Server is the fake backend. Zero-value hooks mean normal behavior.
type Server struct {
	store *store

	// Fail, when set, is consulted for every request; a non-zero return
	// short-circuits the request with that status and an injected error
	// body. Used to script backend failures.
	Fail func(r *http.Request) int

	// ChatFunc scripts the assistant endpoint. The default echoes the
	// prompt without requesting a refresh.
	ChatFunc func(prompt, scope, parentID, path string) (reply string, refresh bool)

	mu       sync.Mutex
	requests []string
}

// NewServer returns an empty fake backend.
func NewServer() *Server {
	return &Server{store: newStore()}
}

// AddUser seeds an account and returns it.
func (s *Server) AddUser(email, password, role, matrick string) *models.User {
	return s.store.addUser(email, password, role, matrick)
}

// AddFolder seeds a folder entry. owner is required for the personal scope.
func (s *Server) AddFolder(scope models.Scope, parentID, name, owner string) *models.Entry {
	return s.store.addEntry(models.Entry{
		Filename: name,
		Type:     models.EntryFolder,
		ParentID: parentID,
	}, scope, owner, nil)
}

// AddFile seeds a file entry with content.
func (s *Server) AddFile(scope models.Scope, parentID, name, mimeType string, body []byte, owner string) *models.Entry {
	return s.store.addEntry(models.Entry{
		Filename: name,
		Type:     models.EntryFile,
		Filesize: int64(len(body)),
		Filetype: mimeType,
		ParentID: parentID,
	}, scope, owner, body)
}

// AddLog seeds an activity log row.
func (s *Server) AddLog(email, action, details string) {
	s.store.log(email, action, details)
}

// Entry looks up a seeded or created entry by id.
func (s *Server) Entry(id string) (models.Entry, bool) {
	e, ok := s.store.entry(id)
	if !ok {
		return models.Entry{}, false
	}
	return *e, true
}

// List returns the current entries of a folder, as the listing endpoint
// would for the given owner.
func (s *Server) List(scope models.Scope, parentID, owner string) []models.Entry {
	return s.store.list(scope, parentID, owner)
}

// Requests returns every "METHOD /path" seen so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.requests))
	copy(out, s.requests)
	return out
}

// CountRequests returns how many recorded requests match exactly.
func (s *Server) CountRequests(methodAndPath string) int {
	n := 0
	for _, r := range s.Requests() {
		if r == methodAndPath {
			n++
		}
	}
	return n
}

// ResetRequests clears the request record.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// Handler returns the backend's HTTP surface.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Route("/auth", func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json"))
		r.Get("/session", s.handleSession)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Post("/register", s.handleRegister)
		r.With(s.requireUser).Post("/reset-password", s.handleResetPassword)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireUser)
		r.Route("/files", func(r chi.Router) {
			r.Get("/breadcrumbs/{parentID}", s.handleBreadcrumbs)
			r.Post("/upload", s.handleUpload)
			r.Post("/folder", s.handleCreateFolder)
			r.Post("/copy", s.handleCopy)
			r.Post("/move", s.handleMove)
			r.Patch("/{id}/rename", s.handleRename)
			r.Get("/{id}/serve", s.handleContent)
			r.Get("/{id}/download", s.handleContent)
			r.Delete("/{id}", s.handleDelete)
			r.Get("/{scope}", s.handleList)
		})
		r.Post("/ai/chat", s.handleChat)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json"))
		r.Use(s.requireUser, s.requireAdmin)
		r.Get("/logs", s.handleAdminLogs)
		r.Get("/users", s.handleAdminUsers)
		r.Delete("/users/{id}", s.handleAdminDeleteUser)
		r.Post("/users/{id}/set-password", s.handleAdminSetPassword)
	})

	return r
}

// record notes every request and applies the failure hook.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		fail := s.Fail
		s.mu.Unlock()

		if fail != nil {
			if code := fail(r); code != 0 {
				writeError(w, code, "injected failure")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireUser resolves the session cookie to a user and stores it in the
// request context.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := s.currentUser(r)
		if user == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// requireAdmin gates the admin surface.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := userFrom(r); !user.IsAdmin() {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) currentUser(r *http.Request) *models.User {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	return s.store.sessionUser(cookie.Value)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	user := s.currentUser(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "no active session")
		return
	}
	writeJSON(w, map[string]any{"user": user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	user := s.store.userByEmail(req.Email)
	if user == nil || s.store.passwords[user.ID] != req.Password {
		writeError(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}
	token := s.store.openSession(user.ID)
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: token, Path: "/"})
	s.store.log(user.Email, "login", "")
	writeJSON(w, map[string]any{"message": "Login successful.", "user": user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		s.store.closeSession(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, map[string]string{"message": "Logged out."})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email         string  `json:"email"`
		Password      string  `json:"password"`
		MatrickNumber *string `json:"matrickNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if s.store.userByEmail(req.Email) != nil {
		writeError(w, http.StatusConflict, "An account with this email already exists.")
		return
	}
	role := models.RoleStaff
	matrick := ""
	if req.MatrickNumber != nil && *req.MatrickNumber != "" {
		role = models.RoleStudent
		matrick = *req.MatrickNumber
	}
	user := s.store.addUser(req.Email, req.Password, role, matrick)
	s.store.log(user.Email, "register", "")
	writeJSON(w, map[string]string{"message": "Account created."})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if s.store.passwords[user.ID] != req.CurrentPassword {
		writeError(w, http.StatusForbidden, "Current password is incorrect.")
		return
	}
	s.store.mu.Lock()
	s.store.passwords[user.ID] = req.NewPassword
	s.store.mu.Unlock()
	writeJSON(w, map[string]string{"message": "Password updated."})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	scope := models.Scope(chi.URLParam(r, "scope"))
	if scope == models.ScopeStaffOnly && !user.IsStaff() && !user.IsAdmin() {
		writeError(w, http.StatusForbidden, "staff access required")
		return
	}
	owner := user.ID
	if targetID := r.URL.Query().Get("user_id"); targetID != "" {
		if !user.IsAdmin() {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		owner = targetID
	}
	writeJSON(w, s.store.list(scope, r.URL.Query().Get("parent_id"), owner))
}

func (s *Server) handleBreadcrumbs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.breadcrumbs(chi.URLParam(r, "parentID")))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable file part")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(header.Filename)); byExt != "" {
			mimeType = byExt
		} else {
			mimeType = "application/octet-stream"
		}
	}

	scope := models.Scope(r.FormValue("scope"))
	entry := s.store.addEntry(models.Entry{
		Filename: header.Filename,
		Type:     models.EntryFile,
		Filesize: int64(len(body)),
		Filetype: mimeType,
		ParentID: r.FormValue("parent_id"),
	}, scope, user.ID, body)
	s.store.log(user.Email, "upload", entry.Filename)
	writeJSON(w, map[string]string{"message": "Upload complete.", "id": entry.ID})
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	var req struct {
		Name     string       `json:"name"`
		Scope    models.Scope `json:"scope"`
		ParentID string       `json:"parent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "folder name is required")
		return
	}
	entry := s.store.addEntry(models.Entry{
		Filename: req.Name,
		Type:     models.EntryFolder,
		ParentID: req.ParentID,
	}, req.Scope, user.ID, nil)
	s.store.log(user.Email, "create_folder", entry.Filename)
	writeJSON(w, map[string]string{"message": "Folder created.", "id": entry.ID})
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewName string `json:"newName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewName == "" {
		writeError(w, http.StatusBadRequest, "new name is required")
		return
	}
	if !s.store.rename(chi.URLParam(r, "id"), req.NewName) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, map[string]string{"message": "Item renamed."})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !s.store.remove(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, map[string]string{"message": "Item deleted."})
}

func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	s.handleRelocate(w, r, true)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	s.handleRelocate(w, r, false)
}

func (s *Server) handleRelocate(w http.ResponseWriter, r *http.Request, duplicate bool) {
	user := userFrom(r)
	var req struct {
		ItemIDs             []string     `json:"item_ids"`
		DestinationScope    models.Scope `json:"destination_scope"`
		DestinationParentID string       `json:"destination_parent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.ItemIDs) == 0 {
		writeError(w, http.StatusBadRequest, "item_ids is required")
		return
	}
	n := s.store.relocate(req.ItemIDs, req.DestinationScope, req.DestinationParentID, user.ID, duplicate)
	verb := "moved"
	if duplicate {
		verb = "copied"
	}
	writeJSON(w, map[string]any{"message": fmtMessage(n, verb)})
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, ok := s.store.entry(id)
	if !ok {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	s.store.mu.Lock()
	body := s.store.content[id]
	s.store.mu.Unlock()
	w.Header().Set("Content-Type", entry.Filetype)
	_, _ = w.Write(body)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt  string `json:"prompt"`
		Context struct {
			Scope    string `json:"scope"`
			ParentID string `json:"parent_id"`
			Path     string `json:"path"`
		} `json:"context"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	reply := "You said: " + req.Prompt
	refresh := false
	if s.ChatFunc != nil {
		reply, refresh = s.ChatFunc(req.Prompt, req.Context.Scope, req.Context.ParentID, req.Context.Path)
	}
	writeJSON(w, map[string]any{
		"author":         models.AuthorAssistant,
		"text":           reply,
		"refresh_needed": refresh,
	})
}

func (s *Server) handleAdminLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.allLogs())
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.allUsers())
}

func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	actor := userFrom(r)
	id := chi.URLParam(r, "id")
	if id == actor.ID {
		writeError(w, http.StatusBadRequest, "You cannot delete your own account.")
		return
	}
	if !s.store.deleteUser(id) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	s.store.log(actor.Email, "delete_user", id)
	writeJSON(w, map[string]string{"message": "User deleted."})
}

func (s *Server) handleAdminSetPassword(w http.ResponseWriter, r *http.Request) {
	actor := userFrom(r)
	id := chi.URLParam(r, "id")
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "password too short")
		return
	}
	s.store.mu.Lock()
	_, ok := s.store.users[id]
	if ok {
		s.store.passwords[id] = req.Password
	}
	s.store.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	s.store.log(actor.Email, "set_password", id)
	writeJSON(w, map[string]string{"message": "Password updated."})
}
