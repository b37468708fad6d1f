// Package console provides the colored, verbosity-gated console
// logging used by the poolsync commands.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#30D5C8")) // Turquoise
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")) // Orange
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5555"))
	successStyle = lipgloss.NewStyle().Background(lipgloss.Color("#2FD576")).Foreground(lipgloss.Color("#0B1220"))
)

// Logger writes leveled, colored messages. Info, Warn and Success are
// gated on verbose; Error always writes. Color is disabled when the
// output is not a terminal or NO_COLOR is set.
type Logger struct {
	out     io.Writer
	verbose bool
	color   bool
}

// New builds a logger writing to stderr.
func New(verbose bool) *Logger {
	return &Logger{
		out:     os.Stderr,
		verbose: verbose,
		color:   useColor(),
	}
}

// NewWriter builds an uncolored logger writing to w. Test seam.
func NewWriter(w io.Writer, verbose bool) *Logger {
	return &Logger{out: w, verbose: verbose}
}

func useColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func (l *Logger) print(style lipgloss.Style, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if l.color {
		msg = style.Render(msg)
	}
	fmt.Fprintln(l.out, msg)
}

// Infof logs an informational message when verbose is on.
func (l *Logger) Infof(format string, args ...any) {
	if !l.verbose {
		return
	}
	l.print(infoStyle, format, args...)
}

// Warnf logs a warning when verbose is on.
func (l *Logger) Warnf(format string, args ...any) {
	if !l.verbose {
		return
	}
	l.print(warnStyle, format, args...)
}

// Successf logs a success message when verbose is on.
func (l *Logger) Successf(format string, args ...any) {
	if !l.verbose {
		return
	}
	l.print(successStyle, format, args...)
}

// Errorf always logs, regardless of verbosity.
func (l *Logger) Errorf(format string, args ...any) {
	l.print(errorStyle, format, args...)
}
