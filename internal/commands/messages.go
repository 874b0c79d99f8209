package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/pflag"

	"syno/internal/exitcode"
	"syno/internal/output"
	"syno/internal/service"
	"syno/internal/workspace"
)

func init() {
	Register(SectionChat, &SayCmd{})
	Register(SectionChat, &ChatCmd{})
}

// SayCmd implements the say command.
type SayCmd struct {
	groupFlag
}

func (c *SayCmd) Name() string      { return "say" }
func (c *SayCmd) Aliases() []string { return []string{"post"} }
func (c *SayCmd) Synopsis() string  { return "Post a chat message" }
func (c *SayCmd) Usage() string     { return "syno say [common flags] [--group <id>] <message...>" }
func (c *SayCmd) NeedsAuth() bool   { return true }

func (c *SayCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.groupFlag.register(fs)
}

func (c *SayCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	in := service.MessageInput{Content: textArg(args)}
	if err := in.Validate(); err != nil {
		return reportError(errOut, err)
	}

	ws, code := c.openGroup(ctx, env, errOut)
	if ws == nil {
		return code
	}
	defer ws.Close()

	m, err := ws.Messages.Create(ctx, in)
	if err != nil {
		return reportError(errOut, err)
	}

	if !env.Config.Quiet {
		output.FormatMessage(out, m)
	}
	return exitcode.Success
}

// ChatCmd implements the chat command.
type ChatCmd struct {
	groupFlag
	poll time.Duration
}

func (c *ChatCmd) Name() string      { return "chat" }
func (c *ChatCmd) Aliases() []string { return nil }
func (c *ChatCmd) Synopsis() string  { return "Print the chat thread, optionally following it" }
func (c *ChatCmd) Usage() string {
	return "syno chat [common flags] [--group <id>] [--poll <interval>]"
}
func (c *ChatCmd) NeedsAuth() bool { return true }

func (c *ChatCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.groupFlag.register(fs)
	fs.DurationVar(&c.poll, "poll", 0, "")
}

func (c *ChatCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return usageError(errOut, "too many arguments")
	}
	if c.poll < 0 {
		return usageError(errOut, "invalid poll interval: %s", c.poll)
	}

	ws, code := c.openGroup(ctx, env, errOut)
	if ws == nil {
		return code
	}
	defer ws.Close()

	if err := ws.Router.Select(workspace.TabChat); err != nil {
		return reportError(errOut, err)
	}

	seen := make(map[service.ID]bool)
	printNew := func(snap workspace.Snapshot) {
		for _, m := range snap.Messages {
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			output.FormatMessage(out, m)
		}
	}

	snap := ws.Snapshot()
	if len(snap.Messages) == 0 && c.poll == 0 && !env.Config.Quiet {
		fmt.Fprintln(out, "no messages found")
	}
	printNew(snap)
	if c.poll == 0 {
		return exitcode.Success
	}

	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return exitcode.Success
		case <-ticker.C:
		}
		if err := ws.RefreshActive(ctx); err != nil {
			if ctx.Err() != nil || errors.Is(err, workspace.ErrGroupChanged) {
				return exitcode.Success
			}
			var ne *service.NetworkError
			if errors.As(err, &ne) {
				env.Logger.Warn("chat refresh failed", "error", err)
				continue
			}
			return reportError(errOut, err)
		}
		printNew(ws.Snapshot())
	}
}
