// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/pflag"

	"syno/internal/config"
	"syno/internal/service"
	"syno/internal/session"
)

// Env is what the dispatcher hands to a command.
type Env struct {
	// Config is always provided (config dir, paths, settings).
	Config *config.Config

	// Session holds the stored credential.
	Session *session.Session

	// Service is the backend. It shares Session.
	Service service.Service

	// Logger writes diagnostics to stderr.
	Logger *slog.Logger

	// In is where prompts read from.
	In io.Reader
}

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a stored session.
	// Commands like help, version, login, logout return false.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *pflag.FlagSet)

	// Run executes the command.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}
