package exitcodes

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can branch on it without string matching.
type Kind string

const (
	KindNone                    Kind = ""
	KindInvalidInput            Kind = "InvalidInput"
	KindUnknownChain            Kind = "UnknownChain"
	KindWalletUnavailable       Kind = "WalletUnavailable"
	KindSignerUnavailable       Kind = "SignerUnavailable"
	KindUnsupportedSigner       Kind = "UnsupportedSigner"
	KindNoAccounts              Kind = "NoAccounts"
	KindClientConnect           Kind = "ClientConnectError"
	KindNotConnected            Kind = "NotConnected"
	KindInvalidValidatorAddress Kind = "InvalidValidatorAddress"
	KindSimulate                Kind = "SimulateError"
	KindBroadcast               Kind = "BroadcastError"
	KindBusy                    Kind = "Busy"
)

// codeForKind maps each kind onto the process exit code used by the CLI.
var codeForKind = map[Kind]int{
	KindInvalidInput:            InvalidArgs,
	KindUnknownChain:            InvalidArgs,
	KindWalletUnavailable:       PreconditionFailed,
	KindSignerUnavailable:       PreconditionFailed,
	KindUnsupportedSigner:       PreconditionFailed,
	KindNoAccounts:              PreconditionFailed,
	KindClientConnect:           NetworkError,
	KindNotConnected:            PreconditionFailed,
	KindInvalidValidatorAddress: ValidationError,
	KindSimulate:                NetworkError,
	KindBroadcast:               NetworkError,
	KindBusy:                    PreconditionFailed,
}

// ErrorWithCode is an error that carries an explicit exit code
type ErrorWithCode struct {
	Code    int
	Kind    Kind
	Message string
	Cause   error
}

func (e *ErrorWithCode) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ErrorWithCode) Unwrap() error {
	return e.Cause
}

// NewError creates an error with an explicit exit code
func NewError(code int, message string) *ErrorWithCode {
	return &ErrorWithCode{Code: code, Message: message}
}

// NewErrorf creates an error with formatted message and exit code
func NewErrorf(code int, format string, args ...interface{}) *ErrorWithCode {
	return &ErrorWithCode{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError wraps an existing error with an exit code
func WrapError(code int, message string, cause error) *ErrorWithCode {
	return &ErrorWithCode{Code: code, Message: message, Cause: cause}
}

// New creates a classified error. The exit code follows from the kind.
func New(kind Kind, message string) *ErrorWithCode {
	return &ErrorWithCode{Code: kind.code(), Kind: kind, Message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *ErrorWithCode {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap classifies cause under kind.
func Wrap(kind Kind, message string, cause error) *ErrorWithCode {
	return &ErrorWithCode{Code: kind.code(), Kind: kind, Message: message, Cause: cause}
}

func (k Kind) code() int {
	if c, ok := codeForKind[k]; ok {
		return c
	}
	return GeneralError
}

// KindOf returns the kind of the outermost classified error in err's chain.
func KindOf(err error) Kind {
	var ec *ErrorWithCode
	for err != nil {
		if !errors.As(err, &ec) {
			return KindNone
		}
		if ec.Kind != KindNone {
			return ec.Kind
		}
		err = ec.Cause
	}
	return KindNone
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return kind != KindNone && KindOf(err) == kind
}

// Common error constructors

func InvalidArgsError(message string) *ErrorWithCode {
	return New(KindInvalidInput, message)
}

func InvalidArgsErrorf(format string, args ...interface{}) *ErrorWithCode {
	return Newf(KindInvalidInput, format, args...)
}

func PreconditionError(message string) *ErrorWithCode {
	return NewError(PreconditionFailed, message)
}

func NetworkErr(message string) *ErrorWithCode {
	return NewError(NetworkError, message)
}

func ProcessErrf(format string, args ...interface{}) *ErrorWithCode {
	return NewErrorf(ProcessError, format, args...)
}

func ValidationErrf(format string, args ...interface{}) *ErrorWithCode {
	return NewErrorf(ValidationError, format, args...)
}
