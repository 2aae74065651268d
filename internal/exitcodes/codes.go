package exitcodes

import (
	"errors"
	"fmt"
	"os"
)

// Standard exit codes for unjail-console
const (
	// Success indicates successful command completion
	Success = 0

	// GeneralError indicates a general/unknown error
	GeneralError = 1

	// InvalidArgs indicates invalid command-line arguments, flags or form fields
	InvalidArgs = 2

	// PreconditionFailed indicates a precondition was not met
	// (e.g., wallet missing, not connected, operation already in flight)
	PreconditionFailed = 3

	// NetworkError indicates network/connectivity failure
	// (e.g., RPC unreachable, handshake failed, broadcast transport error)
	NetworkError = 4

	// ProcessError indicates the chain binary could not be run
	ProcessError = 5

	// ValidationError indicates validation failure
	// (e.g., validator operator address for another chain)
	ValidationError = 6

	// Rejected indicates the chain accepted the broadcast but the
	// transaction result carried a non-zero code
	Rejected = 7
)

// ExitWithError prints error message to stderr and exits with the given code
func ExitWithError(code int, msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(code)
}

// CodeForError returns the appropriate exit code for an error.
// Unwraps ErrorWithCode for explicit codes, otherwise returns GeneralError.
func CodeForError(err error) int {
	if err == nil {
		return Success
	}

	var ec *ErrorWithCode
	if errors.As(err, &ec) {
		return ec.Code
	}

	return GeneralError
}
