package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syno/internal/backend/rest"
	"syno/internal/logging"
	"syno/internal/service"
	"syno/internal/session"
	"syno/internal/testutil"
	"syno/internal/workspace"
)

type fixture struct {
	client  *rest.Client
	session *session.Session
	api     *testutil.FakeAPI
	svc     *testutil.FakeService
}

func newFixture(t *testing.T, opts ...rest.Option) *fixture {
	t.Helper()
	svc := testutil.NewFakeService()
	api := testutil.NewFakeAPI(t, svc)
	sess := session.New(&session.MemoryStore{}, logging.Discard())
	require.NoError(t, sess.Begin(svc.Token))

	opts = append([]rest.Option{rest.WithLogger(logging.Discard())}, opts...)
	client, err := rest.NewClient(api.URL(), sess, opts...)
	require.NoError(t, err)
	return &fixture{client: client, session: sess, api: api, svc: svc}
}

func TestNewClient_InvalidHost(t *testing.T) {
	for _, host := range []string{"", "localhost:5000", "://bad"} {
		_, err := rest.NewClient(host, nil)
		assert.Error(t, err, "host %q", host)
	}
}

func TestClient_AttachesBearerAndRequestID(t *testing.T) {
	f := newFixture(t)
	g := f.svc.SeedGroup("Algorithms")

	got, err := f.client.GetGroup(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Algorithms", got.Name)

	req := f.api.LastRequest()
	assert.Equal(t, "Bearer fake-token", req.Authorization)
	assert.Equal(t, "/groups/"+g.ID.String(), req.Path)
	_, err = uuid.Parse(req.RequestID)
	assert.NoError(t, err, "request id should be a uuid")
}

func TestClient_UnauthorizedClearsSession(t *testing.T) {
	f := newFixture(t)
	g := f.svc.SeedGroup("Algorithms")

	cleared := 0
	f.session.OnClear(func() { cleared++ })

	f.svc.Token = "rotated"
	_, err := f.client.ListTasks(context.Background(), g.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrUnauthorized)
	assert.Equal(t, service.SessionExpiredMessage, service.UserMessage(err))
	assert.Equal(t, "", f.session.CurrentToken())
	assert.Equal(t, 1, cleared)

	// The next call goes out without a credential.
	_, err = f.client.ListMembers(context.Background(), g.ID)
	assert.ErrorIs(t, err, service.ErrUnauthorized)
	assert.Empty(t, f.api.LastRequest().Authorization)
}

func TestClient_ServerMessagePassesThrough(t *testing.T) {
	f := newFixture(t)
	g := f.svc.SeedGroup("Algorithms")

	err := f.client.DeleteTask(context.Background(), g.ID, "999")
	require.Error(t, err)

	var rej *service.ServerRejected
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, http.StatusNotFound, rej.Status)
	assert.Equal(t, "Task not found", rej.Message)
	assert.True(t, service.IsNotFound(err))
	assert.Equal(t, "Task not found", service.UserMessage(err))
	// A 404 leaves the session alone.
	assert.Equal(t, "fake-token", f.session.CurrentToken())
}

func TestClient_ErrorBodyShapes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"msg", http.StatusBadRequest, `{"msg":"Name required"}`, "Name required"},
		{"error", http.StatusBadRequest, `{"error":"No file part"}`, "No file part"},
		{"message", http.StatusConflict, `{"message":"Already a member"}`, "Already a member"},
		{"empty", http.StatusInternalServerError, ``, "server returned 500 Internal Server Error"},
		{"html", http.StatusBadGateway, `<html>bad gateway</html>`, "server returned 502 Bad Gateway"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client, err := rest.NewClient(srv.URL, nil, rest.WithLogger(logging.Discard()))
			require.NoError(t, err)

			_, err = client.ListGroups(context.Background())
			var rej *service.ServerRejected
			require.ErrorAs(t, err, &rej)
			assert.Equal(t, tt.status, rej.Status)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestClient_ListTasksDecodesIsDone(t *testing.T) {
	f := newFixture(t)
	g := f.svc.SeedGroup("Algorithms")
	f.svc.SeedTask(g.ID, "Read chapter 3", true, service.PriorityHigh)
	f.svc.SeedTask(g.ID, "Problem set", false, "")

	tasks, err := f.client.ListTasks(context.Background(), g.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.True(t, tasks[0].Completed)
	assert.Equal(t, service.PriorityHigh, tasks[0].Priority)
	assert.False(t, tasks[1].Completed)
	assert.Equal(t, service.PriorityNormal, tasks[1].Priority)
}

func TestClient_UpdateTaskSendsBothCompletionKeys(t *testing.T) {
	f := newFixture(t)
	g := f.svc.SeedGroup("Algorithms")
	task := f.svc.SeedTask(g.ID, "Read chapter 3", true, "")

	done := false
	got, err := f.client.UpdateTask(context.Background(), g.ID, task.ID, service.TaskPatch{Completed: &done})
	require.NoError(t, err)
	assert.False(t, got.Completed)

	req := f.api.LastRequest()
	assert.Equal(t, http.MethodPatch, req.Method)
	var body map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, map[string]any{"completed": false, "is_done": false}, body)
}

func TestClient_ToggleCompletesTaskOnServer(t *testing.T) {
	f := newFixture(t)
	g := f.svc.SeedGroup("Algorithms")
	task := f.svc.SeedTask(g.ID, "Read chapter 3", false, "")

	ws := workspace.New(f.client, logging.Discard())
	_, err := ws.Open(context.Background(), g.ID)
	require.NoError(t, err)

	got, err := ws.ToggleCompletion(context.Background(), task.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)

	stored, ok := ws.Tasks.Get(task.ID)
	require.True(t, ok)
	assert.True(t, stored.Completed)
	assert.True(t, f.svc.Tasks(g.ID)[0].Completed, "server task should be done")
}

func TestClient_CreateTaskAndDueDate(t *testing.T) {
	f := newFixture(t)
	g := f.svc.SeedGroup("Algorithms")
	due, err := service.ParseDate("2025-03-01")
	require.NoError(t, err)

	task, err := f.client.CreateTask(context.Background(), g.ID, service.TaskInput{
		Title:    "Write report",
		DueDate:  &due,
		Priority: service.PriorityHigh,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2025-03-01", task.DueDate.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(f.api.LastRequest().Body, &body))
	assert.Equal(t, "2025-03-01", body["due_date"])
	assert.Equal(t, "High", body["priority"])
}

func TestClient_UploadFileMultipart(t *testing.T) {
	f := newFixture(t)
	g := f.svc.SeedGroup("Algorithms")

	file, err := f.client.UploadFile(context.Background(), g.ID, service.Upload{
		Name:    "notes.pdf",
		Content: strings.NewReader("%PDF-1.4"),
	})
	require.NoError(t, err)
	assert.Equal(t, "notes.pdf", file.OriginalName)
	assert.Equal(t, []byte("%PDF-1.4"), f.svc.UploadedContent(file.ID))

	files, err := f.client.ListFiles(context.Background(), g.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, file.ID, files[0].ID)
	assert.False(t, files[0].UploadedAt.IsZero())
}

func TestClient_GroupLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := f.client.CreateGroup(ctx, "Physics")
	require.NoError(t, err)
	assert.Equal(t, service.RoleOwner, g.Role)

	joined, err := f.client.JoinGroup(ctx, g.InviteCode)
	require.NoError(t, err)
	assert.Equal(t, g.ID, joined.ID)

	groups, err := f.client.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0].MembersCount)

	m, err := f.client.AddMember(ctx, g.ID, service.MemberInput{Name: "Ada"})
	require.NoError(t, err)
	require.NoError(t, f.client.RemoveMember(ctx, g.ID, m.ID))

	msg, err := f.client.PostMessage(ctx, g.ID, service.MessageInput{Content: "hello"})
	require.NoError(t, err)
	messages, err := f.client.ListMessages(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, msg.ID, messages[0].ID)

	require.NoError(t, f.client.DeleteGroup(ctx, g.ID))
	_, err = f.client.GetGroup(ctx, g.ID)
	assert.True(t, service.IsNotFound(err))
}

func TestClient_Login(t *testing.T) {
	f := newFixture(t)
	f.svc.SeedUser("ada@example.com", "secret")
	require.NoError(t, f.session.Clear())

	token, err := f.client.Login(context.Background(), service.Credentials{Email: "ada@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "fake-token", token)
	assert.Empty(t, f.api.LastRequest().Authorization)
}

func TestClient_LoginRejectedKeepsSession(t *testing.T) {
	f := newFixture(t)
	f.svc.SeedUser("ada@example.com", "secret")

	_, err := f.client.Login(context.Background(), service.Credentials{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	assert.Equal(t, "fake-token", f.session.CurrentToken())
}

func TestClient_RegisterConflict(t *testing.T) {
	f := newFixture(t)
	f.svc.SeedUser("ada@example.com", "secret")

	err := f.client.Register(context.Background(), service.Profile{Email: "ada@example.com", Password: "x"})
	assert.True(t, service.IsConflict(err))
	assert.Equal(t, "Email already registered", service.UserMessage(err))
}

func TestClient_NetworkError(t *testing.T) {
	f := newFixture(t)
	f.api.Server.Close()

	_, err := f.client.ListGroups(context.Background())
	var ne *service.NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, service.NetworkRetryMessage, service.UserMessage(err))
	assert.Equal(t, "fake-token", f.session.CurrentToken())
}

func TestClient_Timeout(t *testing.T) {
	f := newFixture(t, rest.WithTimeout(50*time.Millisecond))
	g := f.svc.SeedGroup("Algorithms")
	f.svc.BeforeList = func(ctx context.Context, _ string, _ service.ID) error {
		<-ctx.Done()
		return ctx.Err()
	}

	_, err := f.client.ListTasks(context.Background(), g.ID)
	var ne *service.NetworkError
	require.ErrorAs(t, err, &ne)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Contains(t, err.Error(), "timed out")
}

func TestClient_RateLimit(t *testing.T) {
	f := newFixture(t, rest.WithRateLimit(1000))
	for range 3 {
		_, err := f.client.ListGroups(context.Background())
		require.NoError(t, err)
	}
	assert.Len(t, f.api.Requests(), 3)
}
