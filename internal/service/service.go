package service

import (
	"context"
	"encoding/json"
	"io"
)

// Service defines the interface for the remote group workspace backend.
// All REST calls go through this interface.
// The workspace and commands never build HTTP requests directly.
type Service interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, creds Credentials) (string, error)

	// Register creates an account.
	Register(ctx context.Context, profile Profile) error

	// ListGroups returns the groups the current user belongs to.
	ListGroups(ctx context.Context) ([]Group, error)

	// CreateGroup creates a group owned by the current user.
	CreateGroup(ctx context.Context, name string) (Group, error)

	// DeleteGroup deletes a group by ID.
	DeleteGroup(ctx context.Context, groupID ID) error

	// JoinGroup joins a group by invite code.
	JoinGroup(ctx context.Context, code string) (Group, error)

	// GetGroup returns the group summary record.
	GetGroup(ctx context.Context, groupID ID) (Group, error)

	// ListMembers returns the group roster.
	ListMembers(ctx context.Context, groupID ID) ([]Member, error)

	// AddMember adds a member to the group.
	AddMember(ctx context.Context, groupID ID, in MemberInput) (Member, error)

	// RemoveMember removes a membership.
	RemoveMember(ctx context.Context, groupID, memberID ID) error

	// ListTasks returns the group task list in server order.
	ListTasks(ctx context.Context, groupID ID) ([]Task, error)

	// CreateTask creates a task.
	CreateTask(ctx context.Context, groupID ID, in TaskInput) (Task, error)

	// UpdateTask patches a task and returns the server representation.
	UpdateTask(ctx context.Context, groupID, taskID ID, patch TaskPatch) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, groupID, taskID ID) error

	// ListFiles returns the group files.
	ListFiles(ctx context.Context, groupID ID) ([]FileAsset, error)

	// UploadFile uploads a file as multipart form data.
	UploadFile(ctx context.Context, groupID ID, up Upload) (FileAsset, error)

	// DeleteFile deletes a file.
	DeleteFile(ctx context.Context, groupID, fileID ID) error

	// ListMessages returns the chat thread in server order.
	ListMessages(ctx context.Context, groupID ID) ([]Message, error)

	// PostMessage posts a chat message.
	PostMessage(ctx context.Context, groupID ID, in MessageInput) (Message, error)
}

// Credentials are the login inputs.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Profile is the registration input.
type Profile struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MemberInput is the input for adding a member.
type MemberInput struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// TaskInput is the input for creating a task.
type TaskInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	DueDate     *Date    `json:"due_date,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
}

// TaskPatch holds the fields to change on a task. Nil fields are left alone.
type TaskPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
}

type taskPatchJSON struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
	IsDone      *bool     `json:"is_done,omitempty"`
}

// MarshalJSON encodes the patch. Completion is sent as both completed and
// is_done; the server's task update only reads is_done.
func (p TaskPatch) MarshalJSON() ([]byte, error) {
	var priority *Priority
	if p.Priority != nil {
		canonical := p.Priority.Canonical()
		priority = &canonical
	}
	return json.Marshal(taskPatchJSON{
		Title:       p.Title,
		Description: p.Description,
		Priority:    priority,
		Completed:   p.Completed,
		IsDone:      p.Completed,
	})
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil && p.Completed == nil
}

// Apply returns t with the patch applied.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = p.Priority.Canonical()
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

// MarshalJSON encodes the input with the priority in canonical form.
func (in TaskInput) MarshalJSON() ([]byte, error) {
	type plain TaskInput
	out := plain(in)
	out.Priority = in.Priority.Canonical()
	return json.Marshal(out)
}

// MessageInput is the input for posting a message.
type MessageInput struct {
	Content string `json:"content"`
}

// Upload is a file upload. Content is read once.
type Upload struct {
	Name    string
	Content io.Reader
}
