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
	Register(SectionTasks, &AddTaskCmd{})
	Register(SectionTasks, &EditTaskCmd{})
	Register(SectionTasks, &DoneCmd{})
	Register(SectionTasks, &RmTaskCmd{})
}

// AddTaskCmd implements the addtask command.
type AddTaskCmd struct {
	groupFlag
	description string
	due         string
	priority    string
}

func (c *AddTaskCmd) Name() string      { return "addtask" }
func (c *AddTaskCmd) Aliases() []string { return []string{"add"} }
func (c *AddTaskCmd) Synopsis() string  { return "Add a task" }
func (c *AddTaskCmd) Usage() string {
	return "syno addtask [common flags] [--group <id>] [--desc <text>] [--due YYYY-MM-DD] [--priority low|normal|high] <title...>"
}
func (c *AddTaskCmd) NeedsAuth() bool { return true }

func (c *AddTaskCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.groupFlag.register(fs)
	fs.StringVarP(&c.description, "desc", "d", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.StringVarP(&c.priority, "priority", "p", "", "")
}

func (c *AddTaskCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	priority, err := service.ParsePriority(c.priority)
	if err != nil {
		return usageError(errOut, "%v", err)
	}
	in := service.TaskInput{
		Title:       textArg(args),
		Description: c.description,
		Priority:    priority,
	}
	if c.due != "" {
		due, err := service.ParseDate(c.due)
		if err != nil {
			return usageError(errOut, "%v", err)
		}
		in.DueDate = &due
	}
	if err := in.Validate(); err != nil {
		return reportError(errOut, err)
	}

	ws, code := c.openGroup(ctx, env, errOut)
	if ws == nil {
		return code
	}
	defer ws.Close()

	t, err := ws.Tasks.Create(ctx, in)
	if err != nil {
		return reportError(errOut, err)
	}

	if !env.Config.Quiet {
		output.FormatTask(out, t)
	}
	return exitcode.Success
}

// EditTaskCmd implements the edittask command.
type EditTaskCmd struct {
	groupFlag
	title       string
	description string
	priority    string
	flags       *pflag.FlagSet
}

func (c *EditTaskCmd) Name() string      { return "edittask" }
func (c *EditTaskCmd) Aliases() []string { return []string{"edit"} }
func (c *EditTaskCmd) Synopsis() string  { return "Change a task's title, description or priority" }
func (c *EditTaskCmd) Usage() string {
	return "syno edittask [common flags] [--group <id>] [--title <t>] [--desc <text>] [--priority <p>] <task-id>"
}
func (c *EditTaskCmd) NeedsAuth() bool { return true }

func (c *EditTaskCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.groupFlag.register(fs)
	fs.StringVar(&c.title, "title", "", "")
	fs.StringVarP(&c.description, "desc", "d", "", "")
	fs.StringVarP(&c.priority, "priority", "p", "", "")
	c.flags = fs
}

func (c *EditTaskCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	taskID, code := idArg(args, "task", errOut)
	if code != exitcode.Success {
		return code
	}

	var patch service.TaskPatch
	if c.changed("title") {
		patch.Title = &c.title
	}
	if c.changed("desc") {
		patch.Description = &c.description
	}
	if c.changed("priority") {
		p, err := service.ParsePriority(c.priority)
		if err != nil || c.priority == "" {
			return usageError(errOut, "invalid priority: %s", c.priority)
		}
		patch.Priority = &p
	}
	if err := patch.Validate(); err != nil {
		return reportError(errOut, err)
	}

	ws, code := c.openGroup(ctx, env, errOut)
	if ws == nil {
		return code
	}
	defer ws.Close()

	t, err := ws.Tasks.Update(ctx, taskID, patch)
	if err != nil {
		return reportError(errOut, err)
	}

	if !env.Config.Quiet {
		output.FormatTask(out, t)
	}
	return exitcode.Success
}

func (c *EditTaskCmd) changed(name string) bool {
	return c.flags != nil && c.flags.Changed(name)
}

// DoneCmd implements the done command. It toggles completion, so running
// it on a completed task reopens it.
type DoneCmd struct {
	groupFlag
}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string  { return "Toggle a task's completion" }
func (c *DoneCmd) Usage() string     { return "syno done [common flags] [--group <id>] <task-id>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.groupFlag.register(fs)
}

func (c *DoneCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	taskID, code := idArg(args, "task", errOut)
	if code != exitcode.Success {
		return code
	}

	ws, code := c.openGroup(ctx, env, errOut)
	if ws == nil {
		return code
	}
	defer ws.Close()

	t, err := ws.ToggleCompletion(ctx, taskID)
	if err != nil {
		return reportError(errOut, err)
	}

	if !env.Config.Quiet {
		output.FormatTask(out, t)
	}
	return exitcode.Success
}

// RmTaskCmd implements the rmtask command.
type RmTaskCmd struct {
	groupFlag
}

func (c *RmTaskCmd) Name() string      { return "rmtask" }
func (c *RmTaskCmd) Aliases() []string { return []string{"rm"} }
func (c *RmTaskCmd) Synopsis() string  { return "Delete a task" }
func (c *RmTaskCmd) Usage() string     { return "syno rmtask [common flags] [--group <id>] <task-id>" }
func (c *RmTaskCmd) NeedsAuth() bool   { return true }

func (c *RmTaskCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.groupFlag.register(fs)
}

func (c *RmTaskCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	taskID, code := idArg(args, "task", errOut)
	if code != exitcode.Success {
		return code
	}

	ws, code := c.openGroup(ctx, env, errOut)
	if ws == nil {
		return code
	}
	defer ws.Close()

	if err := ws.Tasks.Remove(ctx, taskID); err != nil {
		if service.IsNotFound(err) {
			return usageError(errOut, "task not found: %s", taskID)
		}
		return reportError(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
