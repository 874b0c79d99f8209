package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"syno/internal/config"
	"syno/internal/exitcode"
	"syno/internal/service"
	"syno/internal/workspace"
)

// groupFlag is embedded by commands that act on one group.
type groupFlag struct {
	group string
}

func (g *groupFlag) register(fs *pflag.FlagSet) {
	fs.StringVarP(&g.group, "group", "g", "", "")
}

// resolve returns --group, or the configured default group.
func (g *groupFlag) resolve(cfg *config.Config) (service.ID, bool) {
	id := strings.TrimSpace(g.group)
	if id == "" {
		id = strings.TrimSpace(cfg.Group)
	}
	return service.ID(id), id != ""
}

// openGroup resolves the group and loads it into a new workspace.
// On failure it has already reported the error; the int is the exit code.
func (g *groupFlag) openGroup(ctx context.Context, env *Env, errOut io.Writer) (*workspace.Workspace, int) {
	groupID, ok := g.resolve(env.Config)
	if !ok {
		return nil, usageError(errOut, "no group selected (use --group <id> or run: syno use <id>)")
	}
	ws := workspace.New(env.Service, env.Logger)
	if env.Session != nil {
		env.Session.OnClear(ws.Close)
	}
	if _, err := ws.Open(ctx, groupID); err != nil {
		if service.IsNotFound(err) {
			return nil, usageError(errOut, "group not found: %s", groupID)
		}
		return nil, reportError(errOut, err)
	}
	for _, w := range ws.Store.Warnings() {
		fmt.Fprintf(errOut, "warning: could not load %s: %s\n", w.Kind, service.UserMessage(w.Err))
	}
	return ws, exitcode.Success
}

// idArg returns the single positional id argument.
func idArg(args []string, what string, errOut io.Writer) (service.ID, int) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", usageError(errOut, "%s id required", what)
	}
	if len(args) > 1 {
		return "", usageError(errOut, "too many arguments")
	}
	return service.ID(strings.TrimSpace(args[0])), exitcode.Success
}

// textArg joins the positional arguments into one string.
func textArg(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
