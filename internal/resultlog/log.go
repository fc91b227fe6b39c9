// Package resultlog writes the per-run result log.
//
// Every event is echoed to the console and appended to a file named after the
// process start time. Each persisted line is prefixed with a
// "YYYY-MM-DD HH:MM:SS" timestamp.
package resultlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// TimestampLayout is the prefix format of every persisted line.
const TimestampLayout = "2006-01-02 15:04:05"

// progressWidth is the number of columns blanked by ClearProgress.
const progressWidth = 80

// FileName returns the log file name for a run started at t.
func FileName(t time.Time) string {
	return "results-" + t.Format("20060102-150405") + ".tmp"
}

// Log is an append-only result log. The zero value is not usable; call [New].
//
// The file is created on the first persisted write, so a run that never
// records an event leaves nothing behind. If the file cannot be opened the
// failure is logged once and the log keeps writing to the console.
type Log struct {
	mu      sync.Mutex
	console io.Writer
	path    string
	file    *os.File
	failed  bool
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a [Log].
type Option func(*Log)

// WithClock replaces the time source used for timestamps and the file name.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger sets the logger used to report file errors.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a [Log] writing to console and to a file in dir. An empty dir
// disables the file.
func New(console io.Writer, dir string, opts ...Option) *Log {
	if console == nil {
		console = io.Discard
	}
	l := &Log{
		console: console,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if dir != "" {
		l.path = filepath.Join(dir, FileName(l.now()))
	}
	return l
}

// Path returns the log file path, or "" if the file is disabled.
func (l *Log) Path() string {
	return l.path
}

// Event writes msg to the console and the file.
func (l *Log) Event(msg string) {
	line := l.stamp(msg)

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, line)
	l.appendLocked(line)
}

// FileOnly writes msg to the file only.
func (l *Log) FileOnly(msg string) {
	line := l.stamp(msg)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.appendLocked(line)
}

// Print writes msg to the console without a timestamp. It is not persisted.
func (l *Log) Print(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, msg)
}

// Progress overwrites the current console line with msg.
func (l *Log) Progress(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.console, "\r"+msg)
}

// ClearProgress blanks the line written by Progress.
func (l *Log) ClearProgress() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.console, "\r"+strings.Repeat(" ", progressWidth)+"\r")
}

// Close closes the log file, if one was opened.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// stamp prefixes msg with the current timestamp unless it already carries it.
func (l *Log) stamp(msg string) string {
	ts := l.now().Format(TimestampLayout)
	if strings.HasPrefix(msg, ts) {
		return msg
	}
	return ts + " " + msg
}

func (l *Log) appendLocked(line string) {
	if l.path == "" || l.failed {
		return
	}
	if l.file == nil {
		f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			l.failed = true
			l.logger.Error("failed to open result log", "path", l.path, "error", err.Error())
			return
		}
		l.file = f
	}
	if _, err := fmt.Fprintln(l.file, line); err != nil {
		l.logger.Error("failed to write result log", "path", l.path, "error", err.Error())
	}
}
