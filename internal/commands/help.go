package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"syno/internal/exitcode"
)

func init() {
	Register(SectionOther, &HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "syno help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	writeHelp(out, DefaultRegistry)
	return exitcode.Success
}

const usageColumn = 52

// writeHelp prints every registered command's usage line, grouped by section.
func writeHelp(w io.Writer, r *Registry) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %-*s %s\n", usageColumn-3, "syno", "Show the default group")
	for _, sec := range r.Sections() {
		fmt.Fprintf(w, "\n%s:\n", sec.Section)
		for _, cmd := range sec.Commands {
			usage := cmd.Usage()
			if len(usage) < usageColumn-3 {
				fmt.Fprintf(w, "  %-*s %s\n", usageColumn-3, usage, cmd.Synopsis())
			} else {
				fmt.Fprintf(w, "  %s\n  %*s %s\n", usage, usageColumn-3, "", cmd.Synopsis())
			}
			if d, ok := cmd.(detailer); ok {
				fmt.Fprint(w, d.Details())
			}
		}
	}
	fmt.Fprint(w, commonFlagsHelp)
}

// detailer is implemented by commands with extra help lines under their usage.
type detailer interface {
	Details() string
}

const commonFlagsHelp = `
Common flags:
  --config <dir>   Override config directory
  --host <url>     Override the server URL
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
