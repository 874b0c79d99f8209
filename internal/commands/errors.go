package commands

import (
	"errors"
	"fmt"
	"io"

	"syno/internal/exitcode"
	"syno/internal/service"
	"syno/internal/workspace"
)

// reportError prints err the way users should see it and returns the exit
// code for it. Validation and server messages are shown verbatim.
func reportError(errOut io.Writer, err error) int {
	var (
		rej *service.ServerRejected
		ne  *service.NetworkError
	)
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		fmt.Fprintln(errOut, "error: session expired (run: syno login)")
		return exitcode.AuthError
	case errors.Is(err, service.ErrInvalidCredentials):
		fmt.Fprintf(errOut, "error: %s\n", service.ErrInvalidCredentials)
		return exitcode.AuthError
	case service.IsValidation(err), errors.Is(err, workspace.ErrNoGroup):
		fmt.Fprintf(errOut, "error: %s\n", service.UserMessage(err))
		return exitcode.UserError
	case errors.As(err, &rej):
		fmt.Fprintf(errOut, "error: %s\n", rej.Error())
		return exitcode.ForStatus(rej.Status)
	case errors.As(err, &ne):
		fmt.Fprintf(errOut, "error: %s\n", service.NetworkRetryMessage)
		return exitcode.BackendError
	}
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitcode.BackendError
}

// usageError prints a usage problem and returns exitcode.UserError.
func usageError(errOut io.Writer, format string, args ...any) int {
	fmt.Fprintf(errOut, "error: "+format+"\n", args...)
	return exitcode.UserError
}
