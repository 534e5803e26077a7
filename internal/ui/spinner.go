package ui

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type titleMsg string

type stopMsg struct{}

type spinnerModel struct {
	spinner spinner.Model
	title   string
	stopped bool
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case titleMsg:
		m.title = string(msg)
		return m, nil

	case stopMsg:
		m.stopped = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.stopped {
		return ""
	}
	return m.spinner.View() + " " + StyleCommand.Render(m.title) + "\n"
}

// Spinner shows a status line while work runs. When stderr is not a
// terminal it does nothing and Writer passes output straight through.
type Spinner struct {
	program *tea.Program
	done    chan struct{}
	out     io.Writer
	once    sync.Once
}

// StartSpinner starts a spinner titled title on stderr.
func StartSpinner(title string) *Spinner {
	s := &Spinner{out: os.Stderr, done: make(chan struct{})}
	if !isTTY(os.Stderr.Fd()) {
		close(s.done)
		return s
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StyleCommand

	s.program = tea.NewProgram(
		spinnerModel{spinner: sp, title: title},
		tea.WithOutput(os.Stderr),
		tea.WithInput(nil),
	)
	go func() {
		defer close(s.done)
		_, _ = s.program.Run()
	}()
	return s
}

// Update changes the status line.
func (s *Spinner) Update(title string) {
	if s.program != nil {
		s.program.Send(titleMsg(title))
	}
}

// Println prints msg above the status line.
func (s *Spinner) Println(msg string) {
	if s.program == nil {
		_, _ = io.WriteString(s.out, msg+"\n")
		return
	}
	s.program.Println(msg)
}

// Writer returns a writer whose lines are printed above the status line,
// so a logger can keep writing while the spinner runs.
func (s *Spinner) Writer() io.Writer {
	if s.program == nil {
		return s.out
	}
	return spinnerWriter{s}
}

// Stop removes the status line and waits for the program to exit.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		if s.program != nil {
			s.program.Send(stopMsg{})
		}
		<-s.done
	})
}

type spinnerWriter struct {
	s *Spinner
}

func (w spinnerWriter) Write(p []byte) (int, error) {
	w.s.program.Println(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
