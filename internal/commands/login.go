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
	Register(SectionAccount, &LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in and store the session" }
func (c *LoginCmd) Usage() string     { return "syno login [common flags] --email <email>" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.email, "email", "e", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	email := strings.TrimSpace(c.email)
	if email == "" && len(args) == 1 {
		email = strings.TrimSpace(args[0])
	}
	if email == "" {
		return usageError(errOut, "email required")
	}

	password, err := readSecret(env.In, errOut, "Password: ")
	if err != nil {
		return usageError(errOut, "failed to read password: %v", err)
	}

	creds := service.Credentials{Email: email, Password: password}
	if err := env.Session.Login(ctx, env.Service, creds); err != nil {
		return reportError(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
