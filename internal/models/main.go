// Package models defines the core data structures shared between the
// AuraDrive client components: users, drive entries, and assistant messages.
package models

// User represents the authenticated identity returned by the backend.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Email is the address the user signs in with.
	Email string `json:"email"`
	// Role is one of "student", "staff" or "admin".
	Role string `json:"role"`
	// MatrickNumber is set for student accounts only.
	MatrickNumber string `json:"matrick_number,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsStaff reports whether the user holds the staff role.
func (u *User) IsStaff() bool {
	return u != nil && u.Role == RoleStaff
}

// Roles recognised by the backend.
const (
	RoleStudent = "student"
	RoleStaff   = "staff"
	RoleAdmin   = "admin"
)

// Entry is a single file or folder record within a drive scope. The client
// holds entries as a read-only snapshot of the currently displayed folder.
type Entry struct {
	// ID is the unique identifier for the entry.
	ID string `json:"id"`
	// Filename is the display name of the entry.
	Filename string `json:"filename"`
	// Type is EntryFile or EntryFolder.
	Type string `json:"type"`
	// Filesize is the size in bytes; files only.
	Filesize int64 `json:"filesize,omitempty"`
	// Filetype is the MIME type reported by the backend; files only.
	Filetype string `json:"filetype,omitempty"`
	// ParentID is the containing folder, empty at the scope root.
	ParentID string `json:"parent_id,omitempty"`
}

// IsFolder reports whether the entry is a folder.
func (e Entry) IsFolder() bool { return e.Type == EntryFolder }

// Entry types.
const (
	EntryFile   = "file"
	EntryFolder = "folder"
)

// Breadcrumb is one hop on the path from a scope root to the current folder.
type Breadcrumb struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
}

// Scope names a partition of the file hierarchy with its own access rules.
type Scope string

const (
	// ScopePersonal is the user's private drive.
	ScopePersonal Scope = "personal"
	// ScopeCommunity is shared with all students and staff.
	ScopeCommunity Scope = "community"
	// ScopeStaffOnly is restricted to staff and admin users.
	ScopeStaffOnly Scope = "staff_only"
)

// ChatMessage is one line of the assistant transcript.
type ChatMessage struct {
	// ID is a client-generated identifier for the message.
	ID string `json:"id,omitempty"`
	// Author is AuthorUser or AuthorAssistant.
	Author string `json:"author"`
	// Text is the message body.
	Text string `json:"text"`
}

// Transcript authors.
const (
	AuthorUser      = "user"
	AuthorAssistant = "ai"
)

// ActivityEntry is one row of the admin activity log.
type ActivityEntry struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	UserEmail string `json:"user_email"`
	Action    string `json:"action"`
	Details   string `json:"details,omitempty"`
}
