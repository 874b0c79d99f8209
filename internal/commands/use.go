package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"syno/internal/config"
	"syno/internal/exitcode"
	"syno/internal/service"
)

func init() {
	Register(SectionGroups, &UseCmd{})
}

// UseCmd implements the use command, which sets the default group.
type UseCmd struct{}

func (c *UseCmd) Name() string      { return "use" }
func (c *UseCmd) Aliases() []string { return nil }
func (c *UseCmd) Synopsis() string  { return "Set the default group" }
func (c *UseCmd) Usage() string     { return "syno use [common flags] [<group-id>]" }
func (c *UseCmd) NeedsAuth() bool   { return true }

func (c *UseCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *UseCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		if env.Config.Group == "" {
			if !env.Config.Quiet {
				fmt.Fprintln(out, "no default group")
			}
			return exitcode.Success
		}
		fmt.Fprintln(out, env.Config.Group)
		return exitcode.Success
	}

	groupID, code := idArg(args, "group", errOut)
	if code != exitcode.Success {
		return code
	}

	g, err := env.Service.GetGroup(ctx, groupID)
	if err != nil {
		if service.IsNotFound(err) {
			return usageError(errOut, "group not found: %s", groupID)
		}
		return reportError(errOut, err)
	}

	if err := env.Config.Update(func(s *config.Settings) { s.Group = groupID.String() }); err != nil {
		fmt.Fprintf(errOut, "error: failed to save config: %v\n", err)
		return exitcode.UserError
	}

	if !env.Config.Quiet {
		fmt.Fprintf(out, "using %s\n", g.Name)
	}
	return exitcode.Success
}
