// Package xlog is a small leveled logger for pipeline diagnostics. All
// output goes to a single writer (stderr by default); Debugf lines are
// dropped unless verbose mode is on.
package xlog

import (
	"io"
	"log"
	"os"
	"sync"
)

type Logger struct {
	mu      sync.Mutex
	l       *log.Logger
	verbose bool
}

// New returns a Logger writing to w. If w is nil, os.Stderr is used.
func New(w io.Writer, verbose bool) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{l: log.New(w, "[motifscan] ", 0), verbose: verbose}
}

// Discard returns a Logger that drops everything. Handy in tests.
func Discard() *Logger { return New(io.Discard, false) }

func (g *Logger) Printf(format string, args ...interface{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.l.Printf(format, args...)
}

func (g *Logger) Warnf(format string, args ...interface{}) {
	g.Printf("warning: "+format, args...)
}

func (g *Logger) Errorf(format string, args ...interface{}) {
	g.Printf("error: "+format, args...)
}

func (g *Logger) Debugf(format string, args ...interface{}) {
	g.mu.Lock()
	v := g.verbose
	g.mu.Unlock()
	if !v {
		return
	}
	g.Printf(format, args...)
}

// SetVerbose toggles Debugf output.
func (g *Logger) SetVerbose(on bool) {
	g.mu.Lock()
	g.verbose = on
	g.mu.Unlock()
}
