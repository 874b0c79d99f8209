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
	Register(SectionGroups, &RmGroupCmd{})
}

// RmGroupCmd implements the rmgroup command.
type RmGroupCmd struct{}

func (c *RmGroupCmd) Name() string      { return "rmgroup" }
func (c *RmGroupCmd) Aliases() []string { return []string{"delgroup"} }
func (c *RmGroupCmd) Synopsis() string  { return "Delete a group you own" }
func (c *RmGroupCmd) Usage() string     { return "syno rmgroup [common flags] <group-id>" }
func (c *RmGroupCmd) NeedsAuth() bool   { return true }

func (c *RmGroupCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *RmGroupCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	groupID, code := idArg(args, "group", errOut)
	if code != exitcode.Success {
		return code
	}

	if err := env.Service.DeleteGroup(ctx, groupID); err != nil {
		if service.IsNotFound(err) {
			return usageError(errOut, "group not found: %s", groupID)
		}
		return reportError(errOut, err)
	}

	// Forget the default group if it was this one.
	if env.Config.Group == groupID.String() {
		if err := env.Config.Update(func(s *config.Settings) { s.Group = "" }); err != nil {
			fmt.Fprintf(errOut, "warning: failed to update config: %v\n", err)
		}
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
