// Package rest implements the service.Service interface against the study
// group REST API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"

	"syno/internal/config"
	"syno/internal/service"
	"syno/internal/session"
)

const (
	// DefaultTimeout is the timeout for API calls when none is configured.
	DefaultTimeout = 10 * time.Second

	// RequestIDHeader carries a per-request identifier for server-side logs.
	RequestIDHeader = "X-Request-ID"
)

// Client implements service.Service over HTTP.
type Client struct {
	base    *url.URL
	http    *http.Client
	session *session.Session
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables the limit.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for the API at baseURL.
// sess supplies the bearer token and is cleared when the server rejects it.
func NewClient(baseURL string, sess *session.Session, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid host: %q", baseURL)
	}
	if sess == nil {
		sess = session.New(nil, nil)
	}
	c := &Client{
		base:    base,
		http:    &http.Client{},
		session: sess,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// New creates a client from configuration.
func New(cfg *config.Config, sess *session.Session, logger *slog.Logger) (*Client, error) {
	return NewClient(cfg.Host, sess,
		WithTimeout(cfg.Timeout),
		WithRateLimit(cfg.RateLimit),
		WithLogger(logger),
	)
}

// request describes one API call.
type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	// public calls never clear the session on 401.
	public bool
}

func jsonRequest(method, path string, payload any) (request, error) {
	r := request{method: method, path: path}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return r, fmt.Errorf("encode request: %w", err)
		}
		r.body = bytes.NewReader(data)
		r.contentType = "application/json"
	}
	return r, nil
}

// do sends r and decodes a JSON response into out (if non-nil).
// Every call goes through here: it attaches the bearer token and turns a 401
// into a cleared session plus service.ErrUnauthorized.
func (c *Client) do(ctx context.Context, r request, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	op := r.method + " " + r.path

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &service.NetworkError{Op: op, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.base.String()+r.path, r.body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	c.session.Authorize(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", r.method, "path", r.path, "request_id", reqID, "error", err)
		return &service.NetworkError{Op: op, Err: wrapTransportError(ctx, err)}
	}
	defer resp.Body.Close()

	c.logger.Debug("request done",
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if err := googleapi.CheckResponse(resp); err != nil {
		return c.rejection(r, err)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return &service.ServerRejected{Status: resp.StatusCode, Message: "empty response from server"}
		}
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

// rejection maps a non-2xx response to the error taxonomy.
func (c *Client) rejection(r request, err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return &service.NetworkError{Op: r.method + " " + r.path, Err: err}
	}
	msg := errorMessage(gerr)
	if gerr.Code == http.StatusUnauthorized && !r.public {
		if cerr := c.session.Clear(); cerr != nil {
			c.logger.Warn("failed to clear session", "error", cerr)
		}
		c.logger.Debug("credential rejected", "path", r.path, "message", msg)
		if msg == "" {
			return service.ErrUnauthorized
		}
		return fmt.Errorf("%w: %s", service.ErrUnauthorized, msg)
	}
	return &service.ServerRejected{Status: gerr.Code, Message: msg}
}

// errorMessage extracts the human-readable message from an error body.
// The server uses msg, error or message depending on the route.
func errorMessage(gerr *googleapi.Error) string {
	var body struct {
		Msg     any `json:"msg"`
		Error   any `json:"error"`
		Message any `json:"message"`
	}
	if err := json.Unmarshal([]byte(gerr.Body), &body); err == nil {
		for _, v := range []any{body.Msg, body.Error, body.Message} {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	if gerr.Message != "" {
		return gerr.Message
	}
	return ""
}

// wrapTransportError gives timeouts a user-friendly description while
// keeping the cause for errors.Is.
func wrapTransportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	return err
}

func groupPath(groupID service.ID, parts ...string) string {
	p := "/groups/" + url.PathEscape(groupID.String())
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

// Login implements service.Service.
func (c *Client) Login(ctx context.Context, creds service.Credentials) (string, error) {
	r, err := jsonRequest(http.MethodPost, "/auth/login", creds)
	if err != nil {
		return "", err
	}
	r.public = true

	var resp struct {
		Token       string `json:"token"`
		AccessToken string `json:"access_token"`
	}
	if err := c.do(ctx, r, &resp); err != nil {
		var rej *service.ServerRejected
		if errors.As(err, &rej) && rej.Status == http.StatusUnauthorized {
			return "", service.ErrInvalidCredentials
		}
		return "", err
	}
	token := resp.Token
	if token == "" {
		token = resp.AccessToken
	}
	if token == "" {
		return "", &service.ServerRejected{Status: http.StatusOK, Message: "login response carried no token"}
	}
	return token, nil
}

// Register implements service.Service.
func (c *Client) Register(ctx context.Context, profile service.Profile) error {
	r, err := jsonRequest(http.MethodPost, "/auth/register", profile)
	if err != nil {
		return err
	}
	r.public = true
	return c.do(ctx, r, nil)
}

// ListGroups implements service.Service.
func (c *Client) ListGroups(ctx context.Context) ([]service.Group, error) {
	var groups []service.Group
	if err := c.do(ctx, request{method: http.MethodGet, path: "/groups/"}, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// CreateGroup implements service.Service.
func (c *Client) CreateGroup(ctx context.Context, name string) (service.Group, error) {
	var g service.Group
	r, err := jsonRequest(http.MethodPost, "/groups/", map[string]string{"name": name})
	if err != nil {
		return g, err
	}
	err = c.do(ctx, r, &g)
	return g, err
}

// DeleteGroup implements service.Service.
func (c *Client) DeleteGroup(ctx context.Context, groupID service.ID) error {
	return c.do(ctx, request{method: http.MethodDelete, path: groupPath(groupID)}, nil)
}

// JoinGroup implements service.Service.
func (c *Client) JoinGroup(ctx context.Context, code string) (service.Group, error) {
	var g service.Group
	r, err := jsonRequest(http.MethodPost, "/groups/join", map[string]string{"code": code})
	if err != nil {
		return g, err
	}
	err = c.do(ctx, r, &g)
	return g, err
}

// GetGroup implements service.Service.
func (c *Client) GetGroup(ctx context.Context, groupID service.ID) (service.Group, error) {
	var g service.Group
	err := c.do(ctx, request{method: http.MethodGet, path: groupPath(groupID)}, &g)
	return g, err
}

// ListMembers implements service.Service.
func (c *Client) ListMembers(ctx context.Context, groupID service.ID) ([]service.Member, error) {
	var members []service.Member
	if err := c.do(ctx, request{method: http.MethodGet, path: groupPath(groupID, "members")}, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// AddMember implements service.Service.
func (c *Client) AddMember(ctx context.Context, groupID service.ID, in service.MemberInput) (service.Member, error) {
	var m service.Member
	r, err := jsonRequest(http.MethodPost, groupPath(groupID, "members"), in)
	if err != nil {
		return m, err
	}
	err = c.do(ctx, r, &m)
	return m, err
}

// RemoveMember implements service.Service.
func (c *Client) RemoveMember(ctx context.Context, groupID, memberID service.ID) error {
	return c.do(ctx, request{method: http.MethodDelete, path: groupPath(groupID, "members", memberID.String())}, nil)
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context, groupID service.ID) ([]service.Task, error) {
	var tasks []service.Task
	if err := c.do(ctx, request{method: http.MethodGet, path: groupPath(groupID, "tasks")}, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, groupID service.ID, in service.TaskInput) (service.Task, error) {
	var t service.Task
	r, err := jsonRequest(http.MethodPost, groupPath(groupID, "tasks"), in)
	if err != nil {
		return t, err
	}
	err = c.do(ctx, r, &t)
	return t, err
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, groupID, taskID service.ID, patch service.TaskPatch) (service.Task, error) {
	var t service.Task
	r, err := jsonRequest(http.MethodPatch, groupPath(groupID, "tasks", taskID.String()), patch)
	if err != nil {
		return t, err
	}
	err = c.do(ctx, r, &t)
	return t, err
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, groupID, taskID service.ID) error {
	return c.do(ctx, request{method: http.MethodDelete, path: groupPath(groupID, "tasks", taskID.String())}, nil)
}

// ListFiles implements service.Service.
func (c *Client) ListFiles(ctx context.Context, groupID service.ID) ([]service.FileAsset, error) {
	var files []service.FileAsset
	if err := c.do(ctx, request{method: http.MethodGet, path: groupPath(groupID, "files")}, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// UploadFile implements service.Service. The body is a multipart form with
// a single "file" field.
func (c *Client) UploadFile(ctx context.Context, groupID service.ID, up service.Upload) (service.FileAsset, error) {
	var f service.FileAsset

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", up.Name)
	if err != nil {
		return f, fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, up.Content); err != nil {
		return f, fmt.Errorf("read %s: %w", up.Name, err)
	}
	if err := mw.Close(); err != nil {
		return f, fmt.Errorf("build upload: %w", err)
	}

	r := request{
		method:      http.MethodPost,
		path:        groupPath(groupID, "files"),
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}
	err = c.do(ctx, r, &f)
	return f, err
}

// DeleteFile implements service.Service.
func (c *Client) DeleteFile(ctx context.Context, groupID, fileID service.ID) error {
	return c.do(ctx, request{method: http.MethodDelete, path: groupPath(groupID, "files", fileID.String())}, nil)
}

// ListMessages implements service.Service.
func (c *Client) ListMessages(ctx context.Context, groupID service.ID) ([]service.Message, error) {
	var messages []service.Message
	if err := c.do(ctx, request{method: http.MethodGet, path: groupPath(groupID, "messages")}, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// PostMessage implements service.Service.
func (c *Client) PostMessage(ctx context.Context, groupID service.ID, in service.MessageInput) (service.Message, error) {
	var m service.Message
	r, err := jsonRequest(http.MethodPost, groupPath(groupID, "messages"), in)
	if err != nil {
		return m, err
	}
	err = c.do(ctx, r, &m)
	return m, err
}

var _ service.Service = (*Client)(nil)
