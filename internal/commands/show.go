package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"syno/internal/exitcode"
	"syno/internal/output"
	"syno/internal/stats"
	"syno/internal/workspace"
)

func init() {
	Register(SectionGroups, &ShowCmd{})
}

// ShowCmd implements the show command.
type ShowCmd struct {
	groupFlag
	tab    string
	filter string
}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return []string{"open"} }
func (c *ShowCmd) Synopsis() string  { return "Show a group" }
func (c *ShowCmd) Usage() string {
	return "syno show [common flags] [--tab <tab>] [--filter <filter>] [<group-id>]"
}
func (c *ShowCmd) NeedsAuth() bool { return true }

func (c *ShowCmd) Details() string {
	tabs := make([]string, len(workspace.Tabs))
	for i, t := range workspace.Tabs {
		tabs[i] = t.String()
	}
	filters := []string{
		stats.FilterAll.String(), stats.FilterPending.String(),
		stats.FilterCompleted.String(), stats.FilterHigh.String(),
	}
	return "        tabs: " + strings.Join(tabs, ", ") + "\n" +
		"        filters: " + strings.Join(filters, ", ") + "\n"
}

func (c *ShowCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.groupFlag.register(fs)
	fs.StringVarP(&c.tab, "tab", "t", "overview", "")
	fs.StringVarP(&c.filter, "filter", "f", "", "")
}

func (c *ShowCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 1 {
		return usageError(errOut, "too many arguments")
	}
	if len(args) == 1 {
		c.group = args[0]
	}
	filter, err := stats.ParseFilter(c.filter)
	if err != nil {
		return reportError(errOut, err)
	}
	if _, err := workspace.ParseTab(c.tab); err != nil {
		return reportError(errOut, err)
	}

	ws, code := c.openGroup(ctx, env, errOut)
	if ws == nil {
		return code
	}
	defer ws.Close()

	if err := ws.Router.SelectName(c.tab); err != nil {
		return reportError(errOut, err)
	}
	if c.filter != "" && ws.Router.Current() != workspace.TabTasks {
		return usageError(errOut, "--filter only applies to the tasks tab")
	}

	renderTab(out, ws.Router.Current(), ws.Snapshot(), filter, env.Config.Host, env.Config.Quiet)
	return exitcode.Success
}

// renderTab prints the slice of snap shown by tab.
func renderTab(out io.Writer, tab workspace.Tab, snap workspace.Snapshot, filter stats.TaskFilter, host string, quiet bool) {
	empty := func(what string) {
		if !quiet {
			fmt.Fprintf(out, "no %s found\n", what)
		}
	}

	switch tab {
	case workspace.TabOverview:
		output.FormatOverview(out, snap, output.InviteLink(host, snap.Group.InviteCode))
	case workspace.TabMembers:
		if len(snap.Members) == 0 {
			empty("members")
		}
		for _, m := range snap.Members {
			output.FormatMember(out, m)
		}
	case workspace.TabTasks:
		tasks := stats.Filter(snap.Tasks, filter)
		if len(tasks) == 0 {
			empty("tasks")
		}
		for _, t := range tasks {
			output.FormatTaskDetail(out, t)
		}
	case workspace.TabFiles:
		if len(snap.Files) == 0 {
			empty("files")
		}
		for _, f := range snap.Files {
			output.FormatFile(out, f)
		}
	case workspace.TabChat:
		if len(snap.Messages) == 0 {
			empty("messages")
		}
		for _, m := range snap.Messages {
			output.FormatMessage(out, m)
		}
	}
}
