package testutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"syno/internal/service"
)

// RecordedRequest is a request seen by FakeAPI.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	Body          []byte
}

// FakeAPI serves a FakeService over the REST routes the real server exposes.
// Routes other than /auth require "Bearer " + Service.Token.
type FakeAPI struct {
	Service *FakeService
	Server  *httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewFakeAPI starts a FakeAPI for svc. The server is closed on test cleanup.
func NewFakeAPI(t *testing.T, svc *FakeService) *FakeAPI {
	t.Helper()
	api := &FakeAPI{Service: svc}

	r := chi.NewRouter()
	r.Use(api.record)
	r.Post("/auth/login", api.login)
	r.Post("/auth/register", api.register)

	r.Group(func(r chi.Router) {
		r.Use(api.requireToken)
		r.Get("/groups/", api.listGroups)
		r.Post("/groups/", api.createGroup)
		r.Post("/groups/join", api.joinGroup)
		r.Route("/groups/{groupID}", func(r chi.Router) {
			r.Get("/", api.getGroup)
			r.Delete("/", api.deleteGroup)
			r.Get("/members", api.listMembers)
			r.Post("/members", api.addMember)
			r.Delete("/members/{id}", api.removeMember)
			r.Get("/tasks", api.listTasks)
			r.Post("/tasks", api.createTask)
			r.Patch("/tasks/{id}", api.updateTask)
			r.Delete("/tasks/{id}", api.deleteTask)
			r.Get("/files", api.listFiles)
			r.Post("/files", api.uploadFile)
			r.Delete("/files/{id}", api.deleteFile)
			r.Get("/messages", api.listMessages)
			r.Post("/messages", api.postMessage)
		})
	})

	api.Server = httptest.NewServer(r)
	t.Cleanup(api.Server.Close)
	return api
}

// URL returns the base URL of the server.
func (a *FakeAPI) URL() string { return a.Server.URL }

// Requests returns the requests received so far.
func (a *FakeAPI) Requests() []RecordedRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]RecordedRequest(nil), a.requests...)
}

// LastRequest returns the most recent request.
func (a *FakeAPI) LastRequest() RecordedRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.requests) == 0 {
		return RecordedRequest{}
	}
	return a.requests[len(a.requests)-1]
}

func (a *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		}
		// Multipart bodies are parsed by the handler; only JSON is captured.
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			var raw json.RawMessage
			if err := json.NewDecoder(r.Body).Decode(&raw); err == nil {
				rec.Body = raw
				r.Body = io.NopCloser(bytes.NewReader(raw))
			}
		}
		a.mu.Lock()
		a.requests = append(a.requests, rec)
		a.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (a *FakeAPI) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+a.Service.Token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Token has expired"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err the way the server does: rejections keep their
// status and text under "msg", anything else is a 500 with "error".
func writeError(w http.ResponseWriter, err error) {
	var rej *service.ServerRejected
	if errors.As(err, &rej) {
		writeJSON(w, rej.Status, map[string]string{"msg": rej.Message})
		return
	}
	if errors.Is(err, service.ErrInvalidCredentials) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Invalid email or password"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return false
	}
	return true
}

func groupID(r *http.Request) service.ID { return service.ID(chi.URLParam(r, "groupID")) }

func itemID(r *http.Request) service.ID { return service.ID(chi.URLParam(r, "id")) }

func (a *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var creds service.Credentials
	if !decode(w, r, &creds) {
		return
	}
	token, err := a.Service.Login(r.Context(), creds)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"user":         map[string]string{"email": creds.Email},
	})
}

func (a *FakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var profile service.Profile
	if !decode(w, r, &profile) {
		return
	}
	if err := a.Service.Register(r.Context(), profile); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"msg": "User created"})
}

func (a *FakeAPI) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := a.Service.ListGroups(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (a *FakeAPI) createGroup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &body) {
		return
	}
	g, err := a.Service.CreateGroup(r.Context(), body.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (a *FakeAPI) joinGroup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if !decode(w, r, &body) {
		return
	}
	g, err := a.Service.JoinGroup(r.Context(), body.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (a *FakeAPI) getGroup(w http.ResponseWriter, r *http.Request) {
	g, err := a.Service.GetGroup(r.Context(), groupID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (a *FakeAPI) deleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := a.Service.DeleteGroup(r.Context(), groupID(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Group deleted"})
}

func (a *FakeAPI) listMembers(w http.ResponseWriter, r *http.Request) {
	members, err := a.Service.ListMembers(r.Context(), groupID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (a *FakeAPI) addMember(w http.ResponseWriter, r *http.Request) {
	var in service.MemberInput
	if !decode(w, r, &in) {
		return
	}
	m, err := a.Service.AddMember(r.Context(), groupID(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (a *FakeAPI) removeMember(w http.ResponseWriter, r *http.Request) {
	if err := a.Service.RemoveMember(r.Context(), groupID(r), itemID(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Member removed"})
}

func (a *FakeAPI) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := a.Service.ListTasks(r.Context(), groupID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, len(tasks))
	for i, t := range tasks {
		out[i] = taskBody(t)
	}
	writeJSON(w, http.StatusOK, out)
}

// taskBody renders a task the way the server does, with completion as is_done.
func taskBody(t service.Task) map[string]any {
	return map[string]any{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"due_date":    t.DueDate,
		"priority":    t.Priority,
		"is_done":     t.Completed,
	}
}

func (a *FakeAPI) createTask(w http.ResponseWriter, r *http.Request) {
	var in service.TaskInput
	if !decode(w, r, &in) {
		return
	}
	t, err := a.Service.CreateTask(r.Context(), groupID(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, taskBody(t))
}

// updateTask reads only the fields the server's task update reads. A
// completed key is ignored.
func (a *FakeAPI) updateTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title       *string           `json:"title"`
		Description *string           `json:"description"`
		Priority    *service.Priority `json:"priority"`
		IsDone      *bool             `json:"is_done"`
	}
	if !decode(w, r, &body) {
		return
	}
	patch := service.TaskPatch{
		Title:       body.Title,
		Description: body.Description,
		Priority:    body.Priority,
		Completed:   body.IsDone,
	}
	t, err := a.Service.UpdateTask(r.Context(), groupID(r), itemID(r), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskBody(t))
}

func (a *FakeAPI) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := a.Service.DeleteTask(r.Context(), groupID(r), itemID(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Task deleted"})
}

func (a *FakeAPI) listFiles(w http.ResponseWriter, r *http.Request) {
	files, err := a.Service.ListFiles(r.Context(), groupID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (a *FakeAPI) uploadFile(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file part"})
		return
	}
	defer file.Close()
	f, err := a.Service.UploadFile(r.Context(), groupID(r), service.Upload{Name: header.Filename, Content: file})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (a *FakeAPI) deleteFile(w http.ResponseWriter, r *http.Request) {
	if err := a.Service.DeleteFile(r.Context(), groupID(r), itemID(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "File deleted"})
}

func (a *FakeAPI) listMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := a.Service.ListMessages(r.Context(), groupID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (a *FakeAPI) postMessage(w http.ResponseWriter, r *http.Request) {
	var in service.MessageInput
	if !decode(w, r, &in) {
		return
	}
	m, err := a.Service.PostMessage(r.Context(), groupID(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}
