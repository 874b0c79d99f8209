package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"syno/internal/exitcode"
	"syno/internal/output"
	"syno/internal/service"
)

func init() {
	Register(SectionFiles, &UploadCmd{})
	Register(SectionFiles, &RmFileCmd{})
}

// UploadCmd implements the upload command.
type UploadCmd struct {
	groupFlag
	name string
}

func (c *UploadCmd) Name() string      { return "upload" }
func (c *UploadCmd) Aliases() []string { return nil }
func (c *UploadCmd) Synopsis() string  { return "Upload a file to a group" }
func (c *UploadCmd) Usage() string {
	return "syno upload [common flags] [--group <id>] [--name <name>] <path>"
}
func (c *UploadCmd) NeedsAuth() bool { return true }

func (c *UploadCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.groupFlag.register(fs)
	fs.StringVarP(&c.name, "name", "n", "", "")
}

func (c *UploadCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return reportError(errOut, service.Upload{}.Validate())
	}
	if len(args) > 1 {
		return usageError(errOut, "too many arguments")
	}

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return usageError(errOut, "cannot read %s: %v", path, err)
	}
	defer f.Close()

	name := strings.TrimSpace(c.name)
	if name == "" {
		name = filepath.Base(path)
	}

	ws, code := c.openGroup(ctx, env, errOut)
	if ws == nil {
		return code
	}
	defer ws.Close()

	asset, err := ws.Upload(ctx, name, f)
	if err != nil {
		return reportError(errOut, err)
	}

	if !env.Config.Quiet {
		output.FormatFile(out, asset)
	}
	return exitcode.Success
}

// RmFileCmd implements the rmfile command.
type RmFileCmd struct {
	groupFlag
}

func (c *RmFileCmd) Name() string      { return "rmfile" }
func (c *RmFileCmd) Aliases() []string { return nil }
func (c *RmFileCmd) Synopsis() string  { return "Delete a file from a group" }
func (c *RmFileCmd) Usage() string     { return "syno rmfile [common flags] [--group <id>] <file-id>" }
func (c *RmFileCmd) NeedsAuth() bool   { return true }

func (c *RmFileCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.groupFlag.register(fs)
}

func (c *RmFileCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	fileID, code := idArg(args, "file", errOut)
	if code != exitcode.Success {
		return code
	}

	ws, code := c.openGroup(ctx, env, errOut)
	if ws == nil {
		return code
	}
	defer ws.Close()

	if err := ws.Files.Remove(ctx, fileID); err != nil {
		if service.IsNotFound(err) {
			return usageError(errOut, "file not found: %s", fileID)
		}
		return reportError(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
