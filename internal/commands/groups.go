package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"syno/internal/exitcode"
	"syno/internal/output"
)

func init() {
	Register(SectionGroups, &GroupsCmd{})
}

// GroupsCmd implements the groups command.
type GroupsCmd struct{}

func (c *GroupsCmd) Name() string      { return "groups" }
func (c *GroupsCmd) Aliases() []string { return []string{"ls"} }
func (c *GroupsCmd) Synopsis() string  { return "List your groups" }
func (c *GroupsCmd) Usage() string     { return "syno groups [common flags]" }
func (c *GroupsCmd) NeedsAuth() bool   { return true }

func (c *GroupsCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *GroupsCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	groups, err := env.Service.ListGroups(ctx)
	if err != nil {
		return reportError(errOut, err)
	}

	if len(groups) == 0 {
		if !env.Config.Quiet {
			fmt.Fprintln(out, "no groups found")
		}
		return exitcode.Success
	}

	for _, g := range groups {
		output.FormatGroup(out, g)
	}
	return exitcode.Success
}
