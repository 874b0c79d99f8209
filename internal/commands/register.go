package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"syno/internal/exitcode"
	"syno/internal/service"
)

func init() {
	Register(SectionAccount, &RegisterCmd{})
}

// RegisterCmd implements the register command. A new account is logged in
// right away.
type RegisterCmd struct {
	name  string
	email string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string {
	return "syno register [common flags] [--name <name>] --email <email>"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.name, "name", "n", "", "")
	fs.StringVarP(&c.email, "email", "e", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return usageError(errOut, "unexpected argument: %s", args[0])
	}
	if strings.TrimSpace(c.email) == "" {
		return usageError(errOut, "email required")
	}

	password, err := readSecret(env.In, errOut, "Password: ")
	if err != nil {
		return usageError(errOut, "failed to read password: %v", err)
	}

	profile := service.Profile{
		Name:     strings.TrimSpace(c.name),
		Email:    strings.TrimSpace(c.email),
		Password: password,
	}
	if err := env.Session.Register(ctx, env.Service, profile); err != nil {
		return reportError(errOut, err)
	}
	creds := service.Credentials{Email: profile.Email, Password: profile.Password}
	if err := env.Session.Login(ctx, env.Service, creds); err != nil {
		return reportError(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
