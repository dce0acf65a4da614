// Package diag buffers compiler diagnostics so a pass can record problems,
// keep going, and report everything at the end.
package diag

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

// Priority orders diagnostics by severity.
type Priority int

const (
	Message Priority = iota
	Warn
	Error
)

func (p Priority) String() string {
	switch p {
	case Message:
		return "message"
	case Warn:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Priority(%d)", int(p))
	}
}

const (
	colorReset  = "\033[0m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
)

type entry[T any] struct {
	msg      T
	priority Priority
}

// Listener collects diagnostics of type T and writes them out on Flush:
// messages to the output stream, warnings and errors to the error stream.
// It is safe for concurrent use.
type Listener[T any] struct {
	mu      sync.Mutex
	entries []entry[T]
	out     io.Writer
	errOut  io.Writer
	color   bool
	logger  *slog.Logger
}

// ListenerOption configures a Listener.
type ListenerOption func(*listenerOptions)

type listenerOptions struct {
	logger *slog.Logger
	color  *bool
}

// WithLogger mirrors every recorded diagnostic to logger at debug level.
func WithLogger(logger *slog.Logger) ListenerOption {
	return func(o *listenerOptions) {
		o.logger = logger
	}
}

// WithColor forces colored severity prefixes on or off. By default they are
// colored only when the error stream is a terminal.
func WithColor(enabled bool) ListenerOption {
	return func(o *listenerOptions) {
		o.color = &enabled
	}
}

// NewListener creates a listener writing to out and errOut.
func NewListener[T any](out, errOut io.Writer, opts ...ListenerOption) *Listener[T] {
	var o listenerOptions
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	color := IsTerminal(errOut)
	if o.color != nil {
		color = *o.color
	}
	return &Listener[T]{
		out:    out,
		errOut: errOut,
		color:  color,
		logger: logger,
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (l *Listener[T]) Log(msg T)   { l.add(msg, Message) }
func (l *Listener[T]) Warn(msg T)  { l.add(msg, Warn) }
func (l *Listener[T]) Error(msg T) { l.add(msg, Error) }

func (l *Listener[T]) add(msg T, p Priority) {
	l.mu.Lock()
	l.entries = append(l.entries, entry[T]{msg: msg, priority: p})
	l.mu.Unlock()
	l.logger.Debug("diagnostic recorded", "priority", p, "message", msg)
}

// Len returns the number of buffered diagnostics.
func (l *Listener[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Count returns the number of buffered diagnostics with priority p.
func (l *Listener[T]) Count(p Priority) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.priority == p {
			n++
		}
	}
	return n
}

// Flush writes out and clears the buffer. It returns the highest priority
// written, or false if the buffer was empty.
func (l *Listener[T]) Flush() (Priority, bool, error) {
	l.mu.Lock()
	entries := l.entries
	l.entries = nil
	l.mu.Unlock()

	highest, flushed := Message, false
	for _, e := range entries {
		if err := l.write(e); err != nil {
			return highest, flushed, fmt.Errorf("flush diagnostics: %w", err)
		}
		if !flushed || e.priority > highest {
			highest = e.priority
		}
		flushed = true
	}
	return highest, flushed, nil
}

func (l *Listener[T]) write(e entry[T]) error {
	var err error
	switch e.priority {
	case Message:
		_, err = fmt.Fprintln(l.out, e.msg)
	case Warn:
		_, err = fmt.Fprintf(l.errOut, "%s%v\n", l.prefix("warning: ", colorYellow), e.msg)
	default:
		_, err = fmt.Fprintf(l.errOut, "%s%v\n", l.prefix("error: ", colorRed), e.msg)
	}
	return err
}

func (l *Listener[T]) prefix(label, color string) string {
	if !l.color {
		return label
	}
	return color + label + colorReset
}
