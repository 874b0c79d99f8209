// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"syno/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
// IDs are assigned from a counter, the way the real server assigns them.
type FakeService struct {
	mu       sync.Mutex
	nextID   int
	users    map[string]string // email -> password
	groups   []service.Group
	members  map[service.ID][]service.Member
	tasks    map[service.ID][]service.Task
	files    map[service.ID][]service.FileAsset
	messages map[service.ID][]service.Message
	uploads  map[service.ID][]byte // fileID -> content

	// Token is returned by a successful Login.
	Token string

	// Error injection for testing
	LoginErr        error
	RegisterErr     error
	ListGroupsErr   error
	CreateGroupErr  error
	DeleteGroupErr  error
	JoinGroupErr    error
	GetGroupErr     error
	ListMembersErr  error
	AddMemberErr    error
	RemoveMemberErr error
	ListTasksErr    error
	CreateTaskErr   error
	UpdateTaskErr   error
	DeleteTaskErr   error
	ListFilesErr    error
	UploadFileErr   error
	DeleteFileErr   error
	ListMessagesErr error
	PostMessageErr  error

	// BeforeUpdateTask runs before each task update is applied. A non-nil
	// return fails the update. Tests use it to hold requests in flight.
	BeforeUpdateTask func(ctx context.Context, taskID service.ID, patch service.TaskPatch) error

	// BeforeList runs before each collection read, with the collection
	// name ("group", "members", "tasks", "files", "messages").
	BeforeList func(ctx context.Context, collection string, groupID service.ID) error

	// TaskPatches records every applied task patch in order.
	TaskPatches []service.TaskPatch
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		users:    make(map[string]string),
		members:  make(map[service.ID][]service.Member),
		tasks:    make(map[service.ID][]service.Task),
		files:    make(map[service.ID][]service.FileAsset),
		messages: make(map[service.ID][]service.Message),
		uploads:  make(map[service.ID][]byte),
		Token:    "fake-token",
	}
}

func notFound(what string) error {
	return &service.ServerRejected{Status: http.StatusNotFound, Message: what + " not found"}
}

func (f *FakeService) newID() service.ID {
	f.nextID++
	return service.ID(strconv.Itoa(f.nextID))
}

func (f *FakeService) groupIndex(id service.ID) int {
	for i, g := range f.groups {
		if g.ID == id {
			return i
		}
	}
	return -1
}

// SeedUser registers an account.
func (f *FakeService) SeedUser(email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[strings.ToLower(email)] = password
}

// SeedGroup adds a group and returns it.
func (f *FakeService) SeedGroup(name string) service.Group {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := service.Group{
		ID:         f.newID(),
		Name:       name,
		InviteCode: fmt.Sprintf("CODE%04d", f.nextID),
		Role:       service.RoleOwner,
		IsOwner:    true,
	}
	f.groups = append(f.groups, g)
	return g
}

// SetGroupCounts overrides the counts reported by the group record.
func (f *FakeService) SetGroupCounts(groupID service.ID, members, tasks, files int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.groupIndex(groupID); i >= 0 {
		f.groups[i].MembersCount = members
		f.groups[i].TasksCount = tasks
		f.groups[i].FilesCount = files
	}
}

// SeedMember adds a member to a group.
func (f *FakeService) SeedMember(groupID service.ID, name, email string, role service.Role) service.Member {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := service.Member{ID: f.newID(), Name: name, Email: email, Role: role}
	f.members[groupID] = append(f.members[groupID], m)
	return m
}

// SeedTask adds a task to a group.
func (f *FakeService) SeedTask(groupID service.ID, title string, completed bool, priority service.Priority) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	if priority == "" {
		priority = service.PriorityNormal
	}
	t := service.Task{ID: f.newID(), Title: title, Priority: priority, Completed: completed}
	f.tasks[groupID] = append(f.tasks[groupID], t)
	return t
}

// SeedFile adds a file record to a group.
func (f *FakeService) SeedFile(groupID service.ID, name string) service.FileAsset {
	f.mu.Lock()
	defer f.mu.Unlock()
	file := service.FileAsset{
		ID:           f.newID(),
		OriginalName: name,
		UploadedAt:   service.Timestamp{Time: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
	}
	file.DownloadURL = "/files/" + file.ID.String()
	f.files[groupID] = append(f.files[groupID], file)
	return file
}

// SeedMessage adds a chat message to a group.
func (f *FakeService) SeedMessage(groupID service.ID, content string) service.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := service.Message{
		ID:        f.newID(),
		Content:   content,
		CreatedAt: service.Timestamp{Time: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		AuthorRef: "1",
	}
	f.messages[groupID] = append(f.messages[groupID], m)
	return m
}

// Tasks returns a copy of a group's tasks as stored server-side.
func (f *FakeService) Tasks(groupID service.ID) []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]service.Task(nil), f.tasks[groupID]...)
}

// Members returns a copy of a group's members as stored server-side.
func (f *FakeService) Members(groupID service.ID) []service.Member {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]service.Member(nil), f.members[groupID]...)
}

// UploadedContent returns the bytes stored for a file.
func (f *FakeService) UploadedContent(fileID service.ID) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploads[fileID]
}

func (f *FakeService) beforeList(ctx context.Context, collection string, groupID service.ID) error {
	if f.BeforeList != nil {
		return f.BeforeList(ctx, collection, groupID)
	}
	return nil
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, creds service.Credentials) (string, error) {
	if f.LoginErr != nil {
		return "", f.LoginErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	pw, ok := f.users[strings.ToLower(strings.TrimSpace(creds.Email))]
	if !ok || pw != creds.Password {
		return "", service.ErrInvalidCredentials
	}
	return f.Token, nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, profile service.Profile) error {
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if _, ok := f.users[email]; ok {
		return &service.ServerRejected{Status: http.StatusConflict, Message: "Email already registered"}
	}
	f.users[email] = profile.Password
	return nil
}

// ListGroups implements service.Service.
func (f *FakeService) ListGroups(ctx context.Context) ([]service.Group, error) {
	if f.ListGroupsErr != nil {
		return nil, f.ListGroupsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]service.Group, len(f.groups))
	for i, g := range f.groups {
		g.MembersCount = len(f.members[g.ID])
		result[i] = g
	}
	return result, nil
}

// CreateGroup implements service.Service.
func (f *FakeService) CreateGroup(ctx context.Context, name string) (service.Group, error) {
	if f.CreateGroupErr != nil {
		return service.Group{}, f.CreateGroupErr
	}
	g := f.SeedGroup(name)
	f.SeedMember(g.ID, "Me", "me@example.com", service.RoleOwner)
	g.MembersCount = 1
	return g, nil
}

// DeleteGroup implements service.Service.
func (f *FakeService) DeleteGroup(ctx context.Context, groupID service.ID) error {
	if f.DeleteGroupErr != nil {
		return f.DeleteGroupErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.groupIndex(groupID)
	if i < 0 {
		return notFound("Group")
	}
	f.groups = append(f.groups[:i], f.groups[i+1:]...)
	delete(f.members, groupID)
	delete(f.tasks, groupID)
	delete(f.files, groupID)
	delete(f.messages, groupID)
	return nil
}

// JoinGroup implements service.Service.
func (f *FakeService) JoinGroup(ctx context.Context, code string) (service.Group, error) {
	if f.JoinGroupErr != nil {
		return service.Group{}, f.JoinGroupErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.groups {
		if g.InviteCode == code {
			g.Role = service.RoleMember
			g.IsOwner = false
			return g, nil
		}
	}
	return service.Group{}, notFound("Group")
}

// GetGroup implements service.Service.
func (f *FakeService) GetGroup(ctx context.Context, groupID service.ID) (service.Group, error) {
	if err := f.beforeList(ctx, "group", groupID); err != nil {
		return service.Group{}, err
	}
	if f.GetGroupErr != nil {
		return service.Group{}, f.GetGroupErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.groupIndex(groupID)
	if i < 0 {
		return service.Group{}, notFound("Group")
	}
	return f.groups[i], nil
}

// ListMembers implements service.Service.
func (f *FakeService) ListMembers(ctx context.Context, groupID service.ID) ([]service.Member, error) {
	if err := f.beforeList(ctx, "members", groupID); err != nil {
		return nil, err
	}
	if f.ListMembersErr != nil {
		return nil, f.ListMembersErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.groupIndex(groupID) < 0 {
		return nil, notFound("Group")
	}
	return append([]service.Member{}, f.members[groupID]...), nil
}

// AddMember implements service.Service.
func (f *FakeService) AddMember(ctx context.Context, groupID service.ID, in service.MemberInput) (service.Member, error) {
	if f.AddMemberErr != nil {
		return service.Member{}, f.AddMemberErr
	}
	f.mu.Lock()
	if f.groupIndex(groupID) < 0 {
		f.mu.Unlock()
		return service.Member{}, notFound("Group")
	}
	f.mu.Unlock()
	return f.SeedMember(groupID, strings.TrimSpace(in.Name), in.Email, service.RoleMember), nil
}

// RemoveMember implements service.Service.
func (f *FakeService) RemoveMember(ctx context.Context, groupID, memberID service.ID) error {
	if f.RemoveMemberErr != nil {
		return f.RemoveMemberErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	members := f.members[groupID]
	for i, m := range members {
		if m.ID == memberID {
			f.members[groupID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return notFound("Member")
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, groupID service.ID) ([]service.Task, error) {
	if err := f.beforeList(ctx, "tasks", groupID); err != nil {
		return nil, err
	}
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.groupIndex(groupID) < 0 {
		return nil, notFound("Group")
	}
	return append([]service.Task{}, f.tasks[groupID]...), nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, groupID service.ID, in service.TaskInput) (service.Task, error) {
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.groupIndex(groupID) < 0 {
		return service.Task{}, notFound("Group")
	}
	priority := in.Priority.Canonical()
	if priority == "" {
		priority = service.PriorityNormal
	}
	t := service.Task{
		ID:          f.newID(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		DueDate:     in.DueDate,
		Priority:    priority,
	}
	// The server lists newest tasks first.
	f.tasks[groupID] = append([]service.Task{t}, f.tasks[groupID]...)
	return t, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, groupID, taskID service.ID, patch service.TaskPatch) (service.Task, error) {
	if f.BeforeUpdateTask != nil {
		if err := f.BeforeUpdateTask(ctx, taskID, patch); err != nil {
			return service.Task{}, err
		}
	}
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tasks := f.tasks[groupID]
	for i, t := range tasks {
		if t.ID == taskID {
			tasks[i] = patch.Apply(t)
			f.TaskPatches = append(f.TaskPatches, patch)
			return tasks[i], nil
		}
	}
	return service.Task{}, notFound("Task")
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, groupID, taskID service.ID) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tasks := f.tasks[groupID]
	for i, t := range tasks {
		if t.ID == taskID {
			f.tasks[groupID] = append(tasks[:i], tasks[i+1:]...)
			return nil
		}
	}
	return notFound("Task")
}

// ListFiles implements service.Service.
func (f *FakeService) ListFiles(ctx context.Context, groupID service.ID) ([]service.FileAsset, error) {
	if err := f.beforeList(ctx, "files", groupID); err != nil {
		return nil, err
	}
	if f.ListFilesErr != nil {
		return nil, f.ListFilesErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.groupIndex(groupID) < 0 {
		return nil, notFound("Group")
	}
	return append([]service.FileAsset{}, f.files[groupID]...), nil
}

// UploadFile implements service.Service.
func (f *FakeService) UploadFile(ctx context.Context, groupID service.ID, up service.Upload) (service.FileAsset, error) {
	if f.UploadFileErr != nil {
		return service.FileAsset{}, f.UploadFileErr
	}
	data, err := io.ReadAll(up.Content)
	if err != nil {
		return service.FileAsset{}, err
	}
	f.mu.Lock()
	if f.groupIndex(groupID) < 0 {
		f.mu.Unlock()
		return service.FileAsset{}, notFound("Group")
	}
	f.mu.Unlock()
	file := f.SeedFile(groupID, up.Name)
	f.mu.Lock()
	f.uploads[file.ID] = data
	f.mu.Unlock()
	return file, nil
}

// DeleteFile implements service.Service.
func (f *FakeService) DeleteFile(ctx context.Context, groupID, fileID service.ID) error {
	if f.DeleteFileErr != nil {
		return f.DeleteFileErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	files := f.files[groupID]
	for i, file := range files {
		if file.ID == fileID {
			f.files[groupID] = append(files[:i], files[i+1:]...)
			delete(f.uploads, fileID)
			return nil
		}
	}
	return notFound("File")
}

// ListMessages implements service.Service.
func (f *FakeService) ListMessages(ctx context.Context, groupID service.ID) ([]service.Message, error) {
	if err := f.beforeList(ctx, "messages", groupID); err != nil {
		return nil, err
	}
	if f.ListMessagesErr != nil {
		return nil, f.ListMessagesErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.groupIndex(groupID) < 0 {
		return nil, notFound("Group")
	}
	return append([]service.Message{}, f.messages[groupID]...), nil
}

// PostMessage implements service.Service.
func (f *FakeService) PostMessage(ctx context.Context, groupID service.ID, in service.MessageInput) (service.Message, error) {
	if f.PostMessageErr != nil {
		return service.Message{}, f.PostMessageErr
	}
	f.mu.Lock()
	if f.groupIndex(groupID) < 0 {
		f.mu.Unlock()
		return service.Message{}, notFound("Group")
	}
	f.mu.Unlock()
	return f.SeedMessage(groupID, strings.TrimSpace(in.Content)), nil
}

var _ service.Service = (*FakeService)(nil)
