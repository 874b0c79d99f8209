package cli_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"syno/internal/backend/rest"
	"syno/internal/cli"
	"syno/internal/commands"
	"syno/internal/config"
	"syno/internal/exitcode"
	"syno/internal/service"
	"syno/internal/session"
	"syno/internal/testutil"
)

// testFactory creates a service factory that returns the given FakeService.
func testFactory(svc *testutil.FakeService) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config, sess *session.Session, logger *slog.Logger) (service.Service, error) {
		return svc, nil
	}
}

// setup returns a dispatcher and a private config dir. SYNO_* variables
// from the environment are cleared so they cannot leak into the test.
func setup(t *testing.T, svc *testutil.FakeService) (*cli.Dispatcher, string) {
	t.Helper()
	for _, kv := range os.Environ() {
		if name, _, _ := strings.Cut(kv, "="); strings.HasPrefix(name, "SYNO_") || name == "LOG_LEVEL" {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))
	d.In = strings.NewReader("")
	return d, t.TempDir()
}

// logIn stores a token in dir the way a previous login would have.
func logIn(t *testing.T, dir string) {
	t.Helper()
	sess := session.New(session.FileStore{Path: filepath.Join(dir, config.TokenFile)}, nil)
	if err := sess.Begin("fake-token"); err != nil {
		t.Fatal(err)
	}
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	d, _ := setup(t, testutil.NewFakeService())

	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), []string{"unknowncmd"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	d, _ := setup(t, testutil.NewFakeService())

	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), []string{"--quiet"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	d, dir := setup(t, testutil.NewFakeService())

	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), []string{"help", "--config", dir}, &stdout, &stderr)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr.String() != "" {
		t.Errorf("expected no stderr, got %q", stderr.String())
	}
	if !bytes.Contains(stdout.Bytes(), []byte("Usage:")) {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	d, dir := setup(t, testutil.NewFakeService())

	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), []string{"version", "--config", dir}, &stdout, &stderr)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr.String() != "" {
		t.Errorf("expected no stderr, got %q", stderr.String())
	}
	if stdout.String() != "syno 0.1.0\n" {
		t.Errorf("expected 'syno 0.1.0\\n', got %q", stdout.String())
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	d, _ := setup(t, testutil.NewFakeService())

	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), []string{"help", "--unknown"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: --unknown\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_NotLoggedIn(t *testing.T) {
	d, dir := setup(t, testutil.NewFakeService())

	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), []string{"groups", "--config", dir}, &stdout, &stderr)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	expected := "error: not logged in (run: syno login)\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_NoArgsShowsDefaultGroup(t *testing.T) {
	svc := testutil.NewFakeService()
	g := svc.SeedGroup("Study Group")
	d, _ := setup(t, svc)
	t.Setenv("SYNO_GROUP", g.ID.String())

	// Without a command there is no --config, so the default dir is used.
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	logIn(t, filepath.Join(xdg, config.AppName))

	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), nil, &stdout, &stderr)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Study Group") {
		t.Errorf("expected overview of Study Group, got %q", stdout.String())
	}
}

func TestDispatcher_HostFlagOverridesConfig(t *testing.T) {
	var gotHost string
	svc := testutil.NewFakeService()
	d := cli.NewDispatcher(commands.DefaultRegistry, func(ctx context.Context, cfg *config.Config, sess *session.Session, logger *slog.Logger) (service.Service, error) {
		gotHost = cfg.Host
		return svc, nil
	})
	dir := t.TempDir()
	t.Setenv("SYNO_HOST", "")

	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), []string{"version", "--config", dir, "--host", "http://example.test:8080"}, &stdout, &stderr)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if gotHost != "http://example.test:8080" {
		t.Errorf("expected host override, got %q", gotHost)
	}
}

func TestDispatcher_LoginStoresToken(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SeedUser("ana@example.com", "secret")
	d, dir := setup(t, svc)
	d.In = strings.NewReader("secret\n")

	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), []string{"login", "--config", dir, "--email", "ana@example.com"}, &stdout, &stderr)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr.String())
	}
	if _, err := os.Stat(filepath.Join(dir, config.TokenFile)); err != nil {
		t.Errorf("expected token file: %v", err)
	}

	stdout.Reset()
	stderr.Reset()
	code = d.Run(context.Background(), []string{"groups", "--config", dir}, &stdout, &stderr)
	if code != exitcode.Success {
		t.Errorf("expected logged-in groups to succeed, got %d (stderr %q)", code, stderr.String())
	}
}

func TestDispatcher_OverREST(t *testing.T) {
	svc := testutil.NewFakeService()
	g := svc.SeedGroup("Study Group")
	svc.SeedMember(g.ID, "Ana", "", service.RoleOwner)
	svc.SeedTask(g.ID, "Read chapter 1", false, service.PriorityNormal)
	api := testutil.NewFakeAPI(t, svc)

	_, dir := setup(t, svc)
	logIn(t, dir)
	d := cli.NewDispatcher(commands.DefaultRegistry, func(ctx context.Context, cfg *config.Config, sess *session.Session, logger *slog.Logger) (service.Service, error) {
		return rest.New(cfg, sess, logger)
	})

	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), []string{"done", "--config", dir, "--host", api.URL(), "-g", g.ID.String(), "3"}, &stdout, &stderr)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr.String())
	}
	if stdout.String() != "   3  [x] Read chapter 1\n" {
		t.Errorf("unexpected stdout %q", stdout.String())
	}
	last := api.LastRequest()
	if last.Method != "PATCH" || last.Authorization != "Bearer fake-token" {
		t.Errorf("unexpected last request %+v", last)
	}
}

func TestDispatcher_ExpiredSessionOverREST(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Token = "rotated"
	api := testutil.NewFakeAPI(t, svc)

	_, dir := setup(t, svc)
	logIn(t, dir)
	d := cli.NewDispatcher(commands.DefaultRegistry, func(ctx context.Context, cfg *config.Config, sess *session.Session, logger *slog.Logger) (service.Service, error) {
		return rest.New(cfg, sess, logger)
	})

	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), []string{"groups", "--config", dir, "--host", api.URL()}, &stdout, &stderr)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr.String() != "error: session expired (run: syno login)\n" {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
	if _, err := os.Stat(filepath.Join(dir, config.TokenFile)); !os.IsNotExist(err) {
		t.Errorf("expected token file removed, stat err %v", err)
	}
}
