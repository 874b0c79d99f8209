package commands_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syno/internal/commands"
)

type stubCmd struct {
	name    string
	aliases []string
}

func (c *stubCmd) Name() string                    { return c.name }
func (c *stubCmd) Aliases() []string               { return c.aliases }
func (c *stubCmd) Synopsis() string                { return "stub" }
func (c *stubCmd) Usage() string                   { return "syno " + c.name }
func (c *stubCmd) NeedsAuth() bool                 { return false }
func (c *stubCmd) RegisterFlags(fs *pflag.FlagSet) {}
func (c *stubCmd) Run(ctx context.Context, env *commands.Env, args []string, out, errOut io.Writer) int {
	return 0
}

func names(cmds []commands.Command) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Name()
	}
	return out
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	r := commands.NewRegistry()
	require.NoError(t, r.Register(commands.SectionTasks, &stubCmd{name: "done", aliases: []string{"toggle"}}))

	err := r.Register(commands.SectionTasks, &stubCmd{name: "done"})
	assert.EqualError(t, err, "command already registered: done")

	err = r.Register(commands.SectionOther, &stubCmd{name: "flip", aliases: []string{"toggle"}})
	assert.EqualError(t, err, "command alias already registered: toggle")

	cmd, ok := r.Find("toggle")
	require.True(t, ok)
	assert.Equal(t, "done", cmd.Name())
	assert.Equal(t, []string{"done"}, names(r.All()))
}

func TestRegistry_SectionsInDisplayOrder(t *testing.T) {
	r := commands.NewRegistry()
	require.NoError(t, r.Register(commands.SectionOther, &stubCmd{name: "version"}))
	require.NoError(t, r.Register(commands.SectionTasks, &stubCmd{name: "rmtask"}))
	require.NoError(t, r.Register(commands.SectionAccount, &stubCmd{name: "login"}))
	require.NoError(t, r.Register(commands.SectionTasks, &stubCmd{name: "addtask", aliases: []string{"new"}}))

	sections := r.Sections()
	require.Len(t, sections, 3)
	assert.Equal(t, commands.SectionAccount, sections[0].Section)
	assert.Equal(t, []string{"login"}, names(sections[0].Commands))
	assert.Equal(t, commands.SectionTasks, sections[1].Section)
	assert.Equal(t, []string{"addtask", "rmtask"}, names(sections[1].Commands))
	assert.Equal(t, commands.SectionOther, sections[2].Section)
	assert.Equal(t, []string{"addtask", "login", "rmtask", "version"}, names(r.All()))
}

func TestDefaultRegistry_EveryCommandHasASection(t *testing.T) {
	var listed []string
	for _, sec := range commands.DefaultRegistry.Sections() {
		listed = append(listed, names(sec.Commands)...)
	}
	assert.ElementsMatch(t, names(commands.DefaultRegistry.All()), listed)

	sections := commands.DefaultRegistry.Sections()
	assert.Equal(t, commands.SectionAccount, sections[0].Section)
	assert.Equal(t, []string{"login", "logout", "register"}, names(sections[0].Commands))
	assert.Equal(t, commands.SectionOther, sections[len(sections)-1].Section)
}

func TestHelpCommand_GroupsBySection(t *testing.T) {
	stdout, _, _ := runCommand(t, &commands.HelpCmd{}, nil, nil, false)

	last := -1
	for _, header := range []string{"\nAccount:\n", "\nGroups:\n", "\nMembers:\n", "\nTasks:\n", "\nFiles:\n", "\nChat:\n", "\nOther:\n", "\nCommon flags:\n"} {
		i := strings.Index(stdout, header)
		require.GreaterOrEqual(t, i, 0, "missing %q", header)
		assert.Greater(t, i, last, "%q out of order", header)
		last = i
	}
	assert.Contains(t, stdout, "Toggle a task's completion")
	assert.Contains(t, stdout, "tabs: overview, members, files, chat, tasks\n")
	assert.Contains(t, stdout, "filters: all, pending, completed, high\n")
}
