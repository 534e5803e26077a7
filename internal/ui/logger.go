package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Logger wraps the charmbracelet logger to add a success level
type Logger struct {
	*log.Logger
}

var logger *Logger

// SetLogger injects the application logger into the UI package.
func SetLogger(l *Logger) {
	logger = l
}

// NewLogger creates a styled logger writing to w.
func NewLogger(w io.Writer) *Logger {
	l := &Logger{Logger: log.New(w)}
	ConfigureLoggerStyles(l.Logger)
	return l
}

var successLabel = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("86")).
	SetString("SUCCESS")

// Success prints a success message with a green prefix
func (l *Logger) Success(msg interface{}, keyvals ...interface{}) {
	l.Helper()
	if l.GetLevel() > log.InfoLevel {
		return
	}
	// Print avoids the default "INFO" prefix
	l.Print(fmt.Sprintf("%s %v", successLabel.String(), msg), keyvals...)
}

// Apply sets the level and output format. Verbose and quiet override the
// configured level; an empty level or format keeps the current one.
func (l *Logger) Apply(level, format string, verbose, quiet bool) error {
	switch {
	case quiet:
		l.SetLevel(log.ErrorLevel)
	case verbose:
		l.SetLevel(log.DebugLevel)
		l.SetReportTimestamp(true)
	case level != "":
		lvl, err := log.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		l.SetLevel(lvl)
	default:
		l.SetLevel(log.InfoLevel)
	}

	if format != "" {
		f, err := ParseFormatter(format)
		if err != nil {
			return err
		}
		l.SetFormatter(f)
	}
	return nil
}

// ParseFormatter maps text, json and logfmt to a log.Formatter.
func ParseFormatter(name string) (log.Formatter, error) {
	switch strings.ToLower(name) {
	case "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	}
	return log.TextFormatter, fmt.Errorf("unknown log format %q", name)
}

// ConfigureLoggerStyles applies the lipgloss level labels to l.
func ConfigureLoggerStyles(l *log.Logger) {
	styles := log.DefaultStyles()

	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().
		SetString("DEBUG").
		Bold(true).
		Foreground(lipgloss.Color("63"))

	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO ").
		Bold(true).
		Foreground(lipgloss.Color("86"))

	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN ").
		Bold(true).
		Foreground(lipgloss.Color("192"))

	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Bold(true).
		Foreground(lipgloss.Color("204"))

	l.SetStyles(styles)
}
