package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

var initOnce sync.Once

// IsTerminal reports whether f is attached to a TTY.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// Interactive reports whether both stdin and stdout are terminals, which the
// console page needs.
func Interactive() bool {
	return IsTerminal(os.Stdin) && IsTerminal(os.Stdout)
}

// TerminalWidth returns the width of stdout, or fallback when unknown.
func TerminalWidth(fallback int) int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}

// InitTerminal must run before lipgloss or bubbletea touch the terminal.
// Presetting COLORFGBG stops termenv from sending an OSC 11 background query
// whose reply would otherwise land in the page input.
func InitTerminal() {
	initOnce.Do(func() {
		if os.Getenv("COLORFGBG") == "" {
			os.Setenv("COLORFGBG", "0;15")
		}
		if IsTerminal(os.Stdout) {
			fmt.Fprint(os.Stdout, "\033[?1004l") // focus reporting off
			time.Sleep(20 * time.Millisecond)
			FlushStdinWithTimeout(150 * time.Millisecond)
		}
	})
}

// ResetTerminalAfterTUI restores terminal modes after the page exits and
// drops late replies (cursor reports, focus events) still in flight.
func ResetTerminalAfterTUI() {
	if !IsTerminal(os.Stdout) {
		return
	}
	writeReset(os.Stdout)
	time.Sleep(30 * time.Millisecond)
	FlushStdinWithTimeout(150 * time.Millisecond)
}

func writeReset(w io.Writer) {
	for _, seq := range []string{
		"\033[?1004l", // focus reporting
		"\033[?1003l", // all mouse tracking
		"\033[?1000l", // X10 mouse
		"\033[?1006l", // SGR mouse
		"\033[?25h",   // show cursor
		"\r",
	} {
		fmt.Fprint(w, seq)
	}
}

// FlushStdinWithTimeout reads and discards stdin for the given duration.
// Pipes are never read.
func FlushStdinWithTimeout(timeout time.Duration) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return
	}
	if err := syscall.SetNonblock(fd, true); err != nil {
		return
	}
	defer syscall.SetNonblock(fd, false)

	buf := make([]byte, 256)
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if n, _ := os.Stdin.Read(buf); n <= 0 {
			time.Sleep(5 * time.Millisecond)
		}
	}
}
