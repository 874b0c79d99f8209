package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"syno/internal/exitcode"
	"syno/internal/output"
	"syno/internal/service"
)

func init() {
	Register(SectionMembers, &AddMemberCmd{})
	Register(SectionMembers, &RmMemberCmd{})
}

// AddMemberCmd implements the addmember command.
type AddMemberCmd struct {
	groupFlag
	email string
}

func (c *AddMemberCmd) Name() string      { return "addmember" }
func (c *AddMemberCmd) Aliases() []string { return nil }
func (c *AddMemberCmd) Synopsis() string  { return "Add a member to a group" }
func (c *AddMemberCmd) Usage() string {
	return "syno addmember [common flags] [--group <id>] [--email <email>] <name...>"
}
func (c *AddMemberCmd) NeedsAuth() bool { return true }

func (c *AddMemberCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.groupFlag.register(fs)
	fs.StringVarP(&c.email, "email", "e", "", "")
}

func (c *AddMemberCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	in := service.MemberInput{Name: textArg(args), Email: strings.TrimSpace(c.email)}
	if err := in.Validate(); err != nil {
		return reportError(errOut, err)
	}

	ws, code := c.openGroup(ctx, env, errOut)
	if ws == nil {
		return code
	}
	defer ws.Close()

	m, err := ws.Members.Create(ctx, in)
	if err != nil {
		return reportError(errOut, err)
	}

	if !env.Config.Quiet {
		output.FormatMember(out, m)
	}
	return exitcode.Success
}

// RmMemberCmd implements the rmmember command.
type RmMemberCmd struct {
	groupFlag
}

func (c *RmMemberCmd) Name() string      { return "rmmember" }
func (c *RmMemberCmd) Aliases() []string { return nil }
func (c *RmMemberCmd) Synopsis() string  { return "Remove a member from a group" }
func (c *RmMemberCmd) Usage() string {
	return "syno rmmember [common flags] [--group <id>] <member-id>"
}
func (c *RmMemberCmd) NeedsAuth() bool { return true }

func (c *RmMemberCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.groupFlag.register(fs)
}

func (c *RmMemberCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	memberID, code := idArg(args, "member", errOut)
	if code != exitcode.Success {
		return code
	}

	ws, code := c.openGroup(ctx, env, errOut)
	if ws == nil {
		return code
	}
	defer ws.Close()

	if err := ws.Members.Remove(ctx, memberID); err != nil {
		if service.IsNotFound(err) {
			return usageError(errOut, "member not found: %s", memberID)
		}
		return reportError(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
