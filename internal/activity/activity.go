// Package activity keeps the operator-facing, append-only activity log.
package activity

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Entry is one timestamped log line.
type Entry struct {
	Time    time.Time `json:"time"`
	Level   log.Level `json:"level"`
	Message string    `json:"message"`
}

func (e Entry) String() string {
	switch e.Level {
	case log.WarnLevel:
		return fmt.Sprintf("[%s] warning: %s", e.Time.Format("15:04:05"), e.Message)
	case log.ErrorLevel:
		return fmt.Sprintf("[%s] error: %s", e.Time.Format("15:04:05"), e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Time.Format("15:04:05"), e.Message)
}

// Log is safe for concurrent use. Entries are also forwarded to a
// structured logger.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	logger  *log.Logger
	now     func() time.Time
}

// New returns an empty log forwarding to logger (nil discards).
func New(logger *log.Logger) *Log {
	return &Log{logger: logger, now: time.Now}
}

func (l *Log) add(level log.Level, msg string) {
	l.mu.Lock()
	l.entries = append(l.entries, Entry{Time: l.now(), Level: level, Message: msg})
	l.mu.Unlock()
	if l.logger != nil {
		l.logger.Log(level, msg)
	}
}

func (l *Log) Infof(format string, args ...any)  { l.add(log.InfoLevel, fmt.Sprintf(format, args...)) }
func (l *Log) Warnf(format string, args ...any)  { l.add(log.WarnLevel, fmt.Sprintf(format, args...)) }
func (l *Log) Errorf(format string, args ...any) { l.add(log.ErrorLevel, fmt.Sprintf(format, args...)) }

// Debugf goes to the structured logger only.
func (l *Log) Debugf(format string, args ...any) {
	if l.logger != nil {
		l.logger.Debugf(format, args...)
	}
}

// Entries returns a copy of all entries, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Tail returns up to n of the newest entries, oldest first.
func (l *Log) Tail(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 {
		return nil
	}
	start := len(l.entries) - n
	if start < 0 {
		start = 0
	}
	return append([]Entry(nil), l.entries[start:]...)
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
