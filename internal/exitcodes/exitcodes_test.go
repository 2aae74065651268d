package exitcodes

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCodeConstants(t *testing.T) {
	tests := []struct {
		name string
		code int
		want int
	}{
		{"Success", Success, 0},
		{"GeneralError", GeneralError, 1},
		{"InvalidArgs", InvalidArgs, 2},
		{"PreconditionFailed", PreconditionFailed, 3},
		{"NetworkError", NetworkError, 4},
		{"ProcessError", ProcessError, 5},
		{"ValidationError", ValidationError, 6},
		{"Rejected", Rejected, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.code, tt.want)
			}
		})
	}
}

func TestWrapError(t *testing.T) {
	baseErr := errors.New("base error")

	tests := []struct {
		name      string
		cause     error
		wantError string
	}{
		{"wrap standard error", baseErr, "connection failed: base error"},
		{"wrap nil error", nil, "connection failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WrapError(NetworkError, "connection failed", tt.cause)
			if err.Code != NetworkError {
				t.Errorf("Code = %d, want %d", err.Code, NetworkError)
			}
			if err.Error() != tt.wantError {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantError)
			}
			if err.Unwrap() != tt.cause {
				t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), tt.cause)
			}
		})
	}
}

func TestKindCodes(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindInvalidInput, InvalidArgs},
		{KindUnknownChain, InvalidArgs},
		{KindWalletUnavailable, PreconditionFailed},
		{KindSignerUnavailable, PreconditionFailed},
		{KindUnsupportedSigner, PreconditionFailed},
		{KindNoAccounts, PreconditionFailed},
		{KindClientConnect, NetworkError},
		{KindNotConnected, PreconditionFailed},
		{KindInvalidValidatorAddress, ValidationError},
		{KindSimulate, NetworkError},
		{KindBroadcast, NetworkError},
		{KindBusy, PreconditionFailed},
		{Kind("Other"), GeneralError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := New(tt.kind, "boom")
			if err.Code != tt.want {
				t.Errorf("New(%s).Code = %d, want %d", tt.kind, err.Code, tt.want)
			}
			if CodeForError(err) != tt.want {
				t.Errorf("CodeForError = %d, want %d", CodeForError(err), tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	base := errors.New("io error")
	classified := Wrap(KindClientConnect, "dial", base)

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"plain error", base, KindNone},
		{"classified", classified, KindClientConnect},
		{"fmt wrapped", fmt.Errorf("connect: %w", classified), KindClientConnect},
		{"unclassified wrapper", WrapError(GeneralError, "outer", classified), KindClientConnect},
		{"outer kind wins", Wrap(KindBroadcast, "outer", classified), KindBroadcast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}

	if !Is(classified, KindClientConnect) {
		t.Error("Is(classified, KindClientConnect) = false, want true")
	}
	if Is(base, KindNone) {
		t.Error("Is(_, KindNone) must be false")
	}
	if !errors.Is(classified, base) {
		t.Error("errors.Is should reach the cause")
	}
}

func TestCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, Success},
		{"invalid args", InvalidArgsError("invalid arg"), InvalidArgs},
		{"precondition", PreconditionError("not connected"), PreconditionFailed},
		{"network", NetworkErr("connection failed"), NetworkError},
		{"process", ProcessErrf("seid exited %d", 1), ProcessError},
		{"validation", ValidationErrf("bad prefix %s", "cosmos"), ValidationError},
		{"custom code", NewError(99, "custom"), 99},
		{"standard error", errors.New("standard"), GeneralError},
		{"wrapped by fmt", fmt.Errorf("ctx: %w", NewError(Rejected, "code 5")), Rejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeForError(tt.err); got != tt.want {
				t.Errorf("CodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
