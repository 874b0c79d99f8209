// Package service defines the backend-agnostic interface for group workspace operations.
package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ID is an opaque identifier assigned by the remote service.
// The server may send it as a JSON number or a JSON string.
type ID string

// String returns the identifier as used in request paths.
func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts numbers and strings.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id: %s", data)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes numeric identifiers as numbers.
func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Role is a member's role within a group.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// UnmarshalText normalizes server roles. The server calls owners "admin".
func (r *Role) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "owner", "admin":
		*r = RoleOwner
	default:
		*r = RoleMember
	}
	return nil
}

// Priority is a task priority.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityNormal Priority = "Normal"
	PriorityHigh   Priority = "High"
)

// ParsePriority parses a priority name case-insensitively.
// Empty input yields PriorityNormal.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow, nil
	case "", "normal":
		return PriorityNormal, nil
	case "high":
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("invalid priority: %s", s)
}

// Canonical returns the named priority spelled as the server spells it.
// Unknown and empty values are returned unchanged.
func (p Priority) Canonical() Priority {
	if p == "" {
		return p
	}
	parsed, err := ParsePriority(string(p))
	if err != nil {
		return p
	}
	return parsed
}

// UnmarshalText decodes a priority. Unknown values fall back to Normal.
func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		parsed = PriorityNormal
	}
	*p = parsed
	return nil
}

// DateLayout is the wire layout of calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time component.
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string { return d.Format(DateLayout) }

// MarshalJSON writes the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON reads a YYYY-MM-DD string. An empty string leaves the zero date.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid date: %s", data)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// timestampLayouts are the formats the server has been seen to emit.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// Timestamp is a server timestamp. The zero value means the server sent none.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON accepts null and several text layouts.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid timestamp: %s", data)
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = Timestamp{parsed}
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp: %s", s)
}

// MarshalJSON writes RFC 3339, or null for the zero value.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

// Group is the aggregate root of a workspace.
type Group struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	InviteCode   string `json:"invite_code"`
	MembersCount int    `json:"members_count"`
	FilesCount   int    `json:"files_count"`
	TasksCount   int    `json:"tasks_count"`
	Role         Role   `json:"role,omitempty"`
	IsOwner      bool   `json:"is_owner"`
}

// Member is a group membership.
type Member struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role"`
}

// Task is a group task.
type Task struct {
	ID          ID
	Title       string
	Description string
	DueDate     *Date
	Priority    Priority
	Completed   bool
}

type taskJSON struct {
	ID          ID       `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	DueDate     *Date    `json:"due_date"`
	Priority    Priority `json:"priority,omitempty"`
	Completed   *bool    `json:"completed,omitempty"`
	IsDone      *bool    `json:"is_done,omitempty"`
}

// UnmarshalJSON decodes a task. Completion may arrive as completed or is_done.
func (t *Task) UnmarshalJSON(data []byte) error {
	var raw taskJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Task{
		ID:          raw.ID,
		Title:       raw.Title,
		Description: raw.Description,
		DueDate:     raw.DueDate,
		Priority:    raw.Priority,
	}
	if t.Priority == "" {
		t.Priority = PriorityNormal
	}
	switch {
	case raw.Completed != nil:
		t.Completed = *raw.Completed
	case raw.IsDone != nil:
		t.Completed = *raw.IsDone
	}
	return nil
}

// MarshalJSON encodes a task using the completed field.
func (t Task) MarshalJSON() ([]byte, error) {
	completed := t.Completed
	return json.Marshal(taskJSON{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		Completed:   &completed,
	})
}

// FileAsset is an uploaded group file.
type FileAsset struct {
	ID           ID
	OriginalName string
	DownloadURL  string
	UploadedAt   Timestamp
}

type fileJSON struct {
	ID           ID        `json:"id"`
	OriginalName string    `json:"original_name,omitempty"`
	Name         string    `json:"name,omitempty"`
	DownloadURL  string    `json:"download_url,omitempty"`
	URL          string    `json:"url,omitempty"`
	UploadedAt   Timestamp `json:"uploaded_at"`
	CreatedAt    Timestamp `json:"created_at"`
}

// UnmarshalJSON decodes a file record, accepting the alternate field names
// older server versions use.
func (f *FileAsset) UnmarshalJSON(data []byte) error {
	var raw fileJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = FileAsset{
		ID:           raw.ID,
		OriginalName: firstNonEmpty(raw.OriginalName, raw.Name),
		DownloadURL:  firstNonEmpty(raw.DownloadURL, raw.URL),
		UploadedAt:   raw.UploadedAt,
	}
	if f.UploadedAt.IsZero() {
		f.UploadedAt = raw.CreatedAt
	}
	return nil
}

// MarshalJSON encodes a file record.
func (f FileAsset) MarshalJSON() ([]byte, error) {
	return json.Marshal(fileJSON{
		ID:           f.ID,
		OriginalName: f.OriginalName,
		DownloadURL:  f.DownloadURL,
		UploadedAt:   f.UploadedAt,
	})
}

// Message is a chat message in a group thread.
type Message struct {
	ID        ID
	Content   string
	CreatedAt Timestamp
	AuthorRef ID
}

type messageJSON struct {
	ID        ID        `json:"id"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"created_at"`
	Author    ID        `json:"author,omitempty"`
	AuthorID  ID        `json:"author_id,omitempty"`
	UserID    ID        `json:"user_id,omitempty"`
}

// UnmarshalJSON decodes a message; the author may be sent under several names.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw messageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Message{
		ID:        raw.ID,
		Content:   raw.Content,
		CreatedAt: raw.CreatedAt,
		AuthorRef: ID(firstNonEmpty(string(raw.Author), string(raw.AuthorID), string(raw.UserID))),
	}
	return nil
}

// MarshalJSON encodes a message.
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(messageJSON{
		ID:        m.ID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		Author:    m.AuthorRef,
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
