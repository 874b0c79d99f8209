package workspace

import (
	"context"
	"io"
	"log/slog"

	"syno/internal/service"
)

// Workspace wires a Store, its Controllers and a Router for one session.
type Workspace struct {
	Store  *Store
	Router *Router

	Members  *Controller[service.Member, service.MemberInput, NoPatch]
	Tasks    *Controller[service.Task, service.TaskInput, service.TaskPatch]
	Files    *Controller[service.FileAsset, service.Upload, NoPatch]
	Messages *Controller[service.Message, service.MessageInput, NoPatch]
}

// New creates a workspace with no group open.
func New(svc service.Service, logger *slog.Logger) *Workspace {
	store := NewStore(svc, logger)
	return &Workspace{
		Store:    store,
		Router:   NewRouter(),
		Members:  NewController(store, MemberResource),
		Tasks:    NewController(store, TaskResource),
		Files:    NewController(store, FileResource),
		Messages: NewController(store, MessageResource),
	}
}

// Open loads groupID and returns to the overview tab.
func (w *Workspace) Open(ctx context.Context, groupID service.ID) (Snapshot, error) {
	snap, err := w.Store.LoadGroup(ctx, groupID)
	if err != nil {
		return Snapshot{}, err
	}
	_ = w.Router.Select(TabOverview)
	return snap, nil
}

// Close leaves the open group.
func (w *Workspace) Close() { w.Store.Leave() }

// Snapshot returns the current state of the open group.
func (w *Workspace) Snapshot() Snapshot { return w.Store.Snapshot() }

// ToggleCompletion flips a task's completed flag. The new value is computed
// when the toggle's turn comes, so toggles issued back to back apply in
// order on top of each other.
func (w *Workspace) ToggleCompletion(ctx context.Context, taskID service.ID) (service.Task, error) {
	return w.Tasks.UpdateWith(ctx, taskID, func(t service.Task) service.TaskPatch {
		done := !t.Completed
		return service.TaskPatch{Completed: &done}
	})
}

// Upload sends content as a new group file.
func (w *Workspace) Upload(ctx context.Context, name string, content io.Reader) (service.FileAsset, error) {
	return w.Files.Create(ctx, service.Upload{Name: name, Content: content})
}

// RefreshActive reloads what the active tab shows: its collection, or the
// group summary on the overview.
func (w *Workspace) RefreshActive(ctx context.Context) error {
	kind, ok := w.Router.ActiveKind()
	if !ok {
		return w.Store.RefreshGroup(ctx)
	}
	return w.Store.Refresh(ctx, kind)
}
