package commands

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"syno/internal/exitcode"
	"syno/internal/output"
	"syno/internal/service"
)

func init() {
	Register(SectionGroups, &JoinCmd{})
}

// JoinCmd implements the join command.
type JoinCmd struct{}

func (c *JoinCmd) Name() string      { return "join" }
func (c *JoinCmd) Aliases() []string { return nil }
func (c *JoinCmd) Synopsis() string  { return "Join a group by invite code" }
func (c *JoinCmd) Usage() string     { return "syno join [common flags] <invite-code>" }
func (c *JoinCmd) NeedsAuth() bool   { return true }

func (c *JoinCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *JoinCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 1 {
		return usageError(errOut, "too many arguments")
	}
	code, err := service.NormalizeInviteCode(textArg(args))
	if err != nil {
		return reportError(errOut, err)
	}

	g, err := env.Service.JoinGroup(ctx, code)
	if err != nil {
		if service.IsNotFound(err) {
			return usageError(errOut, "invalid invite code: %s", code)
		}
		return reportError(errOut, err)
	}

	if !env.Config.Quiet {
		output.FormatGroup(out, g)
	}
	return exitcode.Success
}
