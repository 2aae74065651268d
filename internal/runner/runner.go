// Package runner runs the chain binary and condenses its output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Runner abstracts exec.Command calls for testability. Run returns the
// combined stdout and stderr.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Exec is the production Runner.
type Exec struct{}

func (Exec) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return Command(ctx, name, args...).CombinedOutput()
}

// Command creates an exec.Cmd for the chain binary. On macOS the binary's
// directory is added to DYLD_LIBRARY_PATH so libwasmvm.dylib resolves.
func Command(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	if runtime.GOOS != "darwin" {
		return cmd
	}
	binDir := filepath.Dir(name)
	if binDir == "" || binDir == "." {
		return cmd
	}
	existing := os.Getenv("DYLD_LIBRARY_PATH")
	path := binDir
	if existing != "" {
		path = binDir + ":" + existing
	}
	cmd.Env = append(os.Environ(), "DYLD_LIBRARY_PATH="+path)
	return cmd
}

// ErrorLine picks the line of chain binary output that explains a failure,
// or "" if none matches.
func ErrorLine(s string) string {
	for _, l := range strings.Split(s, "\n") {
		if strings.Contains(l, "rpc error:") ||
			strings.Contains(l, "failed to execute message") ||
			strings.Contains(l, "insufficient") ||
			strings.Contains(l, "unauthorized") ||
			strings.Contains(l, "key not found") ||
			strings.Contains(l, "failed to convert") ||
			strings.Contains(l, "account sequence mismatch") ||
			strings.Contains(l, "validator not jailed") ||
			strings.Contains(l, "not found: key") {
			return strings.TrimSpace(l)
		}
	}
	return ""
}

// LastLine returns the last non-empty line of s.
func LastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}

// Failure turns a failed run into a one-line error.
func Failure(out []byte, err error) error {
	msg := ErrorLine(string(out))
	if msg == "" {
		msg = LastLine(string(out))
	}
	if msg == "" && err != nil {
		msg = err.Error()
	}
	if msg == "" {
		msg = "command failed"
	}
	return errors.New(msg)
}

// JSON returns the first JSON object or array in out. Chain binaries print
// warnings ahead of their JSON payload.
func JSON(out []byte) []byte {
	start := bytes.IndexAny(out, "{[")
	if start < 0 {
		return nil
	}
	end := bytes.LastIndexAny(out, "}]")
	if end < start {
		return nil
	}
	return out[start : end+1]
}
