package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"syno/internal/exitcode"
	"syno/internal/output"
	"syno/internal/service"
)

func init() {
	Register(SectionGroups, &CreateGroupCmd{})
}

// CreateGroupCmd implements the creategroup command.
type CreateGroupCmd struct{}

func (c *CreateGroupCmd) Name() string      { return "creategroup" }
func (c *CreateGroupCmd) Aliases() []string { return []string{"addgroup"} }
func (c *CreateGroupCmd) Synopsis() string  { return "Create a group" }
func (c *CreateGroupCmd) Usage() string     { return "syno creategroup [common flags] <name...>" }
func (c *CreateGroupCmd) NeedsAuth() bool   { return true }

func (c *CreateGroupCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *CreateGroupCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	name := textArg(args)
	if err := service.ValidateGroupName(name); err != nil {
		return reportError(errOut, err)
	}

	g, err := env.Service.CreateGroup(ctx, name)
	if err != nil {
		return reportError(errOut, err)
	}

	if !env.Config.Quiet {
		output.FormatGroup(out, g)
		if link := output.InviteLink(env.Config.Host, g.InviteCode); link != "" {
			fmt.Fprintf(out, "invite: %s\n", link)
		}
	}
	return exitcode.Success
}
