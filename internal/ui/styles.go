package ui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	// Adaptive Color definitions
	colorHeader = lipgloss.CompleteAdaptiveColor{
		Dark:  lipgloss.CompleteColor{TrueColor: "#00af00", ANSI256: "34", ANSI: "2"},
		Light: lipgloss.CompleteColor{TrueColor: "#008700", ANSI256: "28", ANSI: "2"},
	}
	colorCommand = lipgloss.CompleteAdaptiveColor{
		Dark:  lipgloss.CompleteColor{TrueColor: "#5fffff", ANSI256: "86", ANSI: "6"},
		Light: lipgloss.CompleteColor{TrueColor: "#008787", ANSI256: "30", ANSI: "6"},
	}
	colorPath = lipgloss.CompleteAdaptiveColor{
		Dark:  lipgloss.CompleteColor{TrueColor: "#5f5fff", ANSI256: "63", ANSI: "4"},
		Light: lipgloss.CompleteColor{TrueColor: "#0000af", ANSI256: "19", ANSI: "4"},
	}
	colorPattern = lipgloss.CompleteAdaptiveColor{
		Dark:  lipgloss.CompleteColor{TrueColor: "#d7ff87", ANSI256: "192", ANSI: "11"},
		Light: lipgloss.CompleteColor{TrueColor: "#5f8700", ANSI256: "64", ANSI: "10"},
	}
	colorDim = lipgloss.CompleteAdaptiveColor{
		Dark:  lipgloss.CompleteColor{TrueColor: "#bdbdbd", ANSI256: "250", ANSI: "8"},
		Light: lipgloss.CompleteColor{TrueColor: "#626262", ANSI256: "241", ANSI: "0"},
	}
	colorFlag = lipgloss.CompleteAdaptiveColor{
		Dark:  lipgloss.CompleteColor{TrueColor: "#ff5faf", ANSI256: "204", ANSI: "13"},
		Light: lipgloss.CompleteColor{TrueColor: "#af005f", ANSI256: "125", ANSI: "5"},
	}

	// Exported Styles for CLI and TUI
	StyleHeader  = lipgloss.NewStyle().Bold(true).Foreground(colorHeader)
	StyleCommand = lipgloss.NewStyle().Bold(true).Foreground(colorCommand)
	StylePath    = lipgloss.NewStyle().Foreground(colorPath)
	StylePattern = lipgloss.NewStyle().Foreground(colorPattern)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleFlag    = lipgloss.NewStyle().Italic(true).Foreground(colorFlag)

	// StyleBanner is the title shown above interactive forms
	StyleBanner = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCommand).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorHeader).
			Padding(0, 4).
			Align(lipgloss.Center)

	yamlKey   = lipgloss.NewStyle().Foreground(colorCommand).Bold(true)
	yamlValue = lipgloss.NewStyle().Foreground(colorPattern)
)

// Theme returns the Catppuccin theme for huh forms.
func Theme() *huh.Theme {
	return huh.ThemeCatppuccin()
}

// KeyMap maps esc to "back" and ctrl+c to "quit"; both abort the form and
// keyFilter records which one it was.
func KeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()

	km.Quit.SetKeys("esc", "ctrl+c")
	km.Quit.SetHelp("ctrl+c", "quit")

	km.Select.Submit.SetHelp("enter", "choose • esc: back • ctrl+c: quit")
	km.Input.Next.SetHelp("enter", "next • esc: back • ctrl+c: quit")
	km.Input.Submit.SetHelp("enter", "submit • esc: back • ctrl+c: quit")
	km.Confirm.Submit.SetHelp("enter", "confirm • esc: back • ctrl+c: quit")
	km.Note.Next.SetHelp("enter", "next • esc: back • ctrl+c: quit")
	km.Note.Submit.SetHelp("enter", "submit • esc: back • ctrl+c: quit")

	return km
}

var (
	// ErrUserBack is returned when the user presses esc to go to the previous step.
	ErrUserBack = errors.New("user navigated back")

	// ErrCancelled is returned when the user quits with ctrl+c.
	ErrCancelled = errors.New("cancelled")
)

// interceptedKey is the last key that aborted a form (esc or ctrl+c).
var interceptedKey string

func keyFilter(m tea.Model, msg tea.Msg) tea.Msg {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyEsc:
			interceptedKey = "esc"
		case tea.KeyCtrlC:
			interceptedKey = "ctrl+c"
		}
	}
	return msg
}

// RunForm runs f with the lrcfetch theme, key map and abort tracking.
func RunForm(f *huh.Form) error {
	interceptedKey = ""
	return f.WithTheme(Theme()).
		WithKeyMap(KeyMap()).
		WithProgramOptions(tea.WithFilter(keyFilter)).
		Run()
}

// HandleAbort maps huh.ErrUserAborted to ErrUserBack (esc) or
// ErrCancelled (ctrl+c). Other errors pass through.
func HandleAbort(err error) error {
	if !errors.Is(err, huh.ErrUserAborted) {
		return err
	}
	if interceptedKey == "esc" {
		return ErrUserBack
	}
	return ErrCancelled
}

// IsTerminal reports whether both stdin and stdout are terminals, which is
// what interactive forms need.
func IsTerminal() bool {
	return isTTY(os.Stdin.Fd()) && isTTY(os.Stdout.Fd())
}

func isTTY(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ClearAndPrintBanner clears the terminal and prints the lrcfetch header.
func ClearAndPrintBanner(subtitle string) {
	fmt.Print("\033[H\033[2J")
	fmt.Println()
	fmt.Println(StyleBanner.Render("lrcfetch"))
	fmt.Println()
	if subtitle != "" {
		fmt.Println(StyleFlag.Render("  " + subtitle))
		fmt.Println()
	}
}

// ColorizeEvent styles "Label: value" event messages.
func ColorizeEvent(msg string) string {
	label, value, ok := strings.Cut(msg, ": ")
	if !ok {
		return msg
	}
	return fmt.Sprintf("%s %s", StyleHeader.Render(label+":"), StylePath.Render(value))
}

// HighlightYAML colors keys, values and comments of a YAML document for
// terminal display.
func HighlightYAML(input string) string {
	lines := strings.Split(input, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			lines[i] = StyleDim.Render(line)
			continue
		}

		indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
		body := line[len(indent):]
		if rest, ok := strings.CutPrefix(body, "- "); ok {
			indent += StyleDim.Render("- ")
			body = rest
		}

		key, val, ok := strings.Cut(body, ":")
		if !ok {
			lines[i] = indent + yamlValue.Render(body)
			continue
		}
		if strings.TrimSpace(val) == "" {
			lines[i] = indent + yamlKey.Render(key) + ":"
			continue
		}
		lines[i] = indent + yamlKey.Render(key) + ":" + yamlValue.Render(val)
	}
	return strings.Join(lines, "\n")
}
