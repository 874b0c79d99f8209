// Package exitcode defines the process exit codes of syno.
package exitcode

import "net/http"

const (
	// Success means the command did what was asked.
	Success = 0

	// UserError covers bad arguments and input the server refused.
	UserError = 1

	// AuthError means there is no usable session or the credentials were wrong.
	AuthError = 2

	// BackendError covers network failures and server faults.
	BackendError = 3
)

// ForStatus maps the status of a rejected request to an exit code.
func ForStatus(status int) int {
	switch {
	case status == http.StatusUnauthorized:
		return AuthError
	case status >= http.StatusInternalServerError:
		return BackendError
	default:
		return UserError
	}
}
