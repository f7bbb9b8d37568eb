package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultPath is the log file used by the viewer and the headless runner, relative to the working directory.
const DefaultPath = "logs/boxworld.txt"

// DefaultMaxLines is how many lines a Logger keeps in memory for the console.
const DefaultMaxLines = 500

// Logger stores recent lines (simulation events, console input) in memory and appends every line to a file on disk.
// It is safe for concurrent use.
type Logger struct {
	mu       sync.Mutex
	path     string
	maxLines int
	lines    []string
	now      func() time.Time
}

// New returns a Logger writing to path and ensures its directory exists. An empty path keeps lines in memory only.
// maxLines <= 0 uses DefaultMaxLines.
func New(path string, maxLines int) *Logger {
	if path != "" {
		_ = os.MkdirAll(filepath.Dir(path), 0755)
	}
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	return &Logger{path: path, maxLines: maxLines, lines: make([]string, 0), now: time.Now}
}

// Log appends a line to the logger and to the log file. Each entry is prefixed with [timestamp] using computer time.
func (l *Logger) Log(line string) {
	stamped := "[" + l.now().Format("2006-01-02 15:04:05") + "] " + line

	l.mu.Lock()
	l.lines = append(l.lines, stamped)
	if over := len(l.lines) - l.maxLines; over > 0 {
		l.lines = append(l.lines[:0], l.lines[over:]...)
	}
	path := l.path
	l.mu.Unlock()

	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	_, _ = f.WriteString(stamped + "\n")
	_ = f.Close()
}

// Logf formats according to a format specifier and logs the result.
func (l *Logger) Logf(format string, args ...any) {
	l.Log(fmt.Sprintf(format, args...))
}

// Lines returns a copy of the retained lines, oldest first.
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Path returns the file the logger appends to, or "" for memory only.
func (l *Logger) Path() string { return l.path }
