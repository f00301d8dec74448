// Package browser implements the drive browser: listing and breadcrumbs for
// a (scope, folder) pair, the selection model, and every file mutation the
// client can issue. All destructive or renaming actions operate on the
// current selection at invocation time; a right-click on an unselected entry
// first collapses the selection to that entry.
package browser

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/auradrive/auradrive/internal/client/clipboard"
	"github.com/auradrive/auradrive/internal/client/ui"
	"github.com/auradrive/auradrive/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FilesAPI is the slice of the backend client the browser needs.
type FilesAPI interface {
	List(ctx context.Context, scope models.Scope, parentID, userID string) ([]models.Entry, error)
	Breadcrumbs(ctx context.Context, parentID string) ([]models.Breadcrumb, error)
	Upload(ctx context.Context, scope models.Scope, parentID, filename string, content io.Reader) error
	CreateFolder(ctx context.Context, name string, scope models.Scope, parentID string) error
	Rename(ctx context.Context, id, newName string) error
	Delete(ctx context.Context, id string) error
	Copy(ctx context.Context, itemIDs []string, destScope models.Scope, destParentID string) (string, error)
	Move(ctx context.Context, itemIDs []string, destScope models.Scope, destParentID string) (string, error)
	Download(ctx context.Context, id string) ([]byte, error)
}

// UploadFile is one file of an upload batch.
type UploadFile struct {
	Name    string
	Content io.Reader
}

// Browser is the state machine for one drive view. The entry list is a
// read-only snapshot of the currently displayed folder; the selection is
// always a subset of that snapshot and resets on every successful
// re-listing.
type Browser struct {
	api      FilesAPI
	clip     *clipboard.Store
	notifier ui.Notifier
	prompter ui.Prompter
	logger   *zap.Logger

	// OnPreview is invoked when a file entry is opened.
	OnPreview func(models.Entry)
	// SaveFunc persists downloaded content; defaults to writing the file
	// into the working directory.
	SaveFunc func(filename string, data []byte) error

	mu        sync.Mutex
	scope     models.Scope
	parentID  string
	userID    string
	gen       uint64
	entries   []models.Entry
	crumbs    []models.Breadcrumb
	selection map[string]struct{}
	menuOpen  bool
}

// New constructs a Browser for the given scope.
func New(api FilesAPI, clip *clipboard.Store, notifier ui.Notifier, prompter ui.Prompter, logger *zap.Logger, scope models.Scope) *Browser {
	return &Browser{
		api:      api,
		clip:     clip,
		notifier: notifier,
		prompter: prompter,
		logger:   logger,
		scope:    scope,
		SaveFunc: func(filename string, data []byte) error {
			return os.WriteFile(filename, data, 0o644)
		},
		selection: make(map[string]struct{}),
	}
}

// Scope returns the displayed scope.
func (b *Browser) Scope() models.Scope {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scope
}

// ParentID returns the displayed folder id, empty at the scope root.
func (b *Browser) ParentID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.parentID
}

// Entries returns the current listing snapshot.
func (b *Browser) Entries() []models.Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Breadcrumbs returns the root-to-current path, empty at the scope root.
func (b *Browser) Breadcrumbs() []models.Breadcrumb {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Breadcrumb, len(b.crumbs))
	copy(out, b.crumbs)
	return out
}

// Path returns the slash-joined path string for the current view, e.g.
// "/personal/Reports/2024".
func (b *Browser) Path() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	path := "/" + string(b.scope) + "/"
	for i, crumb := range b.crumbs {
		if i > 0 {
			path += "/"
		}
		path += crumb.Filename
	}
	return path
}

// Selection returns the selected entry ids.
func (b *Browser) Selection() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]string, 0, len(b.selection))
	for id := range b.selection {
		ids = append(ids, id)
	}
	return ids
}

// NavigateTo switches the view to a scope and folder and reloads.
func (b *Browser) NavigateTo(ctx context.Context, scope models.Scope, parentID string) {
	b.mu.Lock()
	b.scope = scope
	b.parentID = parentID
	b.mu.Unlock()
	b.Load(ctx)
}

// ViewUser switches the view to another user's drive (admin only) and
// reloads from that user's scope root.
func (b *Browser) ViewUser(ctx context.Context, userID string) {
	b.mu.Lock()
	b.userID = userID
	b.parentID = ""
	b.mu.Unlock()
	b.Load(ctx)
}

// Up navigates to the parent of the current folder.
func (b *Browser) Up(ctx context.Context) {
	b.mu.Lock()
	if len(b.crumbs) >= 2 {
		b.parentID = b.crumbs[len(b.crumbs)-2].ID
	} else {
		b.parentID = ""
	}
	b.mu.Unlock()
	b.Load(ctx)
}

// Load fetches the listing for the current (scope, folder) pair and
// recomputes the breadcrumbs. Each Load invalidates earlier in-flight loads:
// a response for a superseded navigation is discarded, so the last-issued
// navigation is authoritative. On failure the view is emptied and a
// notification is surfaced.
func (b *Browser) Load(ctx context.Context) {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	scope, parentID, userID := b.scope, b.parentID, b.userID
	b.mu.Unlock()

	entries, err := b.api.List(ctx, scope, parentID, userID)
	if err != nil {
		b.logger.Warn("listing failed", zap.String("scope", string(scope)), zap.Error(err))
		b.notifier.Error(fmt.Sprintf("Failed to load items from %s drive.", scope))
		b.mu.Lock()
		if gen == b.gen {
			b.entries = nil
			b.crumbs = nil
			b.selection = make(map[string]struct{})
		}
		b.mu.Unlock()
		return
	}

	var crumbs []models.Breadcrumb
	if parentID != "" {
		crumbs, err = b.api.Breadcrumbs(ctx, parentID)
		if err != nil {
			b.logger.Warn("breadcrumb fetch failed", zap.String("parent_id", parentID), zap.Error(err))
			crumbs = nil
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		// A newer navigation superseded this load.
		return
	}
	b.entries = entries
	b.crumbs = crumbs
	b.selection = make(map[string]struct{})
}

// Click replaces the selection with the clicked entry.
func (b *Browser) Click(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.listed(id) {
		return
	}
	b.selection = map[string]struct{}{id: {}}
}

// ToggleClick toggles the clicked entry's membership in the selection
// (multi-select modifier held).
func (b *Browser) ToggleClick(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.listed(id) {
		return
	}
	if _, ok := b.selection[id]; ok {
		delete(b.selection, id)
	} else {
		b.selection[id] = struct{}{}
	}
}

// ClearSelection empties the selection (background click).
func (b *Browser) ClearSelection() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selection = make(map[string]struct{})
}

func (b *Browser) listed(id string) bool {
	for _, e := range b.entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

func (b *Browser) find(id string) (models.Entry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.entries {
		if e.ID == id {
			return e, true
		}
	}
	return models.Entry{}, false
}

// Open is the double-click action: folders become the current folder, files
// open in the preview panel.
func (b *Browser) Open(ctx context.Context, id string) {
	entry, ok := b.find(id)
	if !ok {
		return
	}
	if entry.IsFolder() {
		b.mu.Lock()
		b.parentID = entry.ID
		b.mu.Unlock()
		b.Load(ctx)
		return
	}
	if b.OnPreview != nil {
		b.OnPreview(entry)
	}
}

// OpenContextMenu is the right-click action. If the target entry is not part
// of the selection, the selection collapses to that single entry before the
// menu opens; an already-selected target leaves a multi-selection intact.
func (b *Browser) OpenContextMenu(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.listed(id) {
		return
	}
	if _, ok := b.selection[id]; !ok {
		b.selection = map[string]struct{}{id: {}}
	}
	b.menuOpen = true
}

// CloseContextMenu closes the menu (any outside click).
func (b *Browser) CloseContextMenu() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.menuOpen = false
}

// MenuOpen reports whether the context menu is showing.
func (b *Browser) MenuOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.menuOpen
}

// Upload sends each file as an independent request carrying the current
// scope and folder, reports each outcome separately, and refreshes the
// listing once after the whole batch. There is no transaction: some files of
// a batch may land while others fail.
func (b *Browser) Upload(ctx context.Context, files []UploadFile) {
	b.mu.Lock()
	scope, parentID := b.scope, b.parentID
	b.mu.Unlock()

	batch := uuid.NewString()
	for _, f := range files {
		if err := b.api.Upload(ctx, scope, parentID, f.Name, f.Content); err != nil {
			b.logger.Warn("upload failed",
				zap.String("batch", batch),
				zap.String("filename", f.Name),
				zap.Error(err),
			)
			b.notifier.Error(uploadError(f.Name, err))
			continue
		}
		b.notifier.Success(fmt.Sprintf("'%s' uploaded successfully.", f.Name))
	}
	b.Load(ctx)
}

func uploadError(name string, err error) string {
	if msg := backendMessage(err); msg != "" {
		return msg
	}
	return fmt.Sprintf("'%s' upload failed.", name)
}

// CreateFolder prompts for a name and creates the folder in the current
// view. An empty or aborted prompt issues no request.
func (b *Browser) CreateFolder(ctx context.Context) {
	name, ok := b.prompter.Prompt("Enter a name for the new folder", "")
	if !ok || name == "" {
		return
	}
	b.mu.Lock()
	scope, parentID := b.scope, b.parentID
	b.mu.Unlock()

	if err := b.api.CreateFolder(ctx, name, scope, parentID); err != nil {
		b.notifier.Error(orBackend(err, "Failed to create folder."))
		return
	}
	b.notifier.Success(fmt.Sprintf("Folder '%s' created.", name))
	b.Load(ctx)
}

// Rename requires exactly one selected entry, prompts for a new name, and
// no-ops when the name is unchanged.
func (b *Browser) Rename(ctx context.Context) {
	sel := b.Selection()
	if len(sel) != 1 {
		b.notifier.Info("Please select a single item to rename.")
		return
	}
	entry, ok := b.find(sel[0])
	if !ok {
		return
	}
	newName, ok := b.prompter.Prompt("Enter a new name", entry.Filename)
	if !ok || newName == "" || newName == entry.Filename {
		return
	}
	if err := b.api.Rename(ctx, entry.ID, newName); err != nil {
		b.notifier.Error(orBackend(err, "Failed to rename item."))
		return
	}
	b.notifier.Success("Item renamed successfully.")
	b.Load(ctx)
}

// Delete removes every selected entry after explicit confirmation. Each
// entry is an independent request; a partial failure leaves some entries
// deleted and others not, and only the aggregate outcome is reported.
func (b *Browser) Delete(ctx context.Context) {
	sel := b.Selection()
	if len(sel) == 0 {
		return
	}
	if !b.prompter.Confirm(fmt.Sprintf("Are you sure you want to delete %d item(s)? This action cannot be undone.", len(sel))) {
		return
	}

	failed := 0
	for _, id := range sel {
		if err := b.api.Delete(ctx, id); err != nil {
			b.logger.Warn("delete failed", zap.String("id", id), zap.Error(err))
			failed++
		}
	}
	if failed == 0 {
		b.notifier.Success(fmt.Sprintf("%d item(s) deleted successfully.", len(sel)))
	} else {
		b.notifier.Error("Failed to delete items.")
	}
	b.Load(ctx)
}

// Download requires exactly one selected entry of type file, fetches its
// content and hands it to SaveFunc.
func (b *Browser) Download(ctx context.Context) {
	sel := b.Selection()
	if len(sel) != 1 {
		b.notifier.Info("Please select a single file to download.")
		return
	}
	entry, ok := b.find(sel[0])
	if !ok {
		return
	}
	if entry.IsFolder() {
		b.notifier.Error("You can only download files.")
		return
	}
	data, err := b.api.Download(ctx, entry.ID)
	if err != nil {
		b.notifier.Error("Download failed.")
		return
	}
	if err := b.SaveFunc(entry.Filename, data); err != nil {
		b.notifier.Error("Download failed.")
		return
	}
	b.notifier.Success(fmt.Sprintf("'%s' downloaded.", entry.Filename))
}

// Copy stores the selection in the clipboard with the copy tag. The backend
// is not touched until paste.
func (b *Browser) Copy() {
	sel := b.Selection()
	if len(sel) == 0 {
		return
	}
	b.clip.Set(sel, clipboard.OpCopy)
	b.notifier.Info(fmt.Sprintf("%d item(s) ready to copy.", len(sel)))
}

// Cut stores the selection in the clipboard with the cut tag.
func (b *Browser) Cut() {
	sel := b.Selection()
	if len(sel) == 0 {
		return
	}
	b.clip.Set(sel, clipboard.OpCut)
	b.notifier.Info(fmt.Sprintf("%d item(s) ready to move.", len(sel)))
}

// Paste issues one batch request for the whole clipboard against the current
// view. On success the clipboard is cleared and the listing refreshed; on
// failure the clipboard is preserved so the paste can be retried.
func (b *Browser) Paste(ctx context.Context) {
	ids, op := b.clip.Contents()
	if len(ids) == 0 || op == clipboard.OpNone {
		return
	}
	b.mu.Lock()
	scope, parentID := b.scope, b.parentID
	b.mu.Unlock()

	var message string
	var err error
	if op == clipboard.OpCopy {
		message, err = b.api.Copy(ctx, ids, scope, parentID)
	} else {
		message, err = b.api.Move(ctx, ids, scope, parentID)
	}
	if err != nil {
		b.notifier.Error(orBackend(err, "Operation failed."))
		return
	}
	if message == "" {
		message = "Done."
	}
	b.notifier.Success(message)
	b.clip.Clear()
	b.Load(ctx)
}
