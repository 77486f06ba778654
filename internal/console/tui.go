package console

import (
	"bytes"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/docon/internal/ui"
)

// maxScrollback is the number of output lines kept on screen
const maxScrollback = 200

// execDoneMsg is sent when a command line has finished
type execDoneMsg struct {
	output string
	quit   bool
}

// keyMap defines key bindings for the console
type keyMap struct {
	Run   key.Binding
	Prev  key.Binding
	Next  key.Binding
	Clear key.Binding
	Quit  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Run, k.Prev, k.Next, k.Clear, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Run, k.Prev, k.Next, k.Clear, k.Quit},
	}
}

func newKeyMap() keyMap {
	return keyMap{
		Run: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run"),
		),
		Prev: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous"),
		),
		Next: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// Model is the interactive console: a command input with history, a
// spinner while a command blocks, and the output of previous commands.
type Model struct {
	shell *Shell
	out   *bytes.Buffer

	Input   textinput.Model
	Spinner spinner.Model
	Help    help.Model
	Keys    keyMap

	Lines   []string
	History []string
	histPos int

	Running  string // command line in flight, "" when idle
	Quitting bool

	Width  int
	Height int
}

// NewModel creates a console model for svc. intro is shown above the first
// prompt.
func NewModel(svc Controller, intro string) Model {
	out := &bytes.Buffer{}

	input := textinput.New()
	input.Prompt = ui.PromptStyle.Render(Prompt)
	input.Placeholder = "type a command, e.g. on 1 (help for the list)"
	input.CharLimit = 128
	input.Width = 60
	input.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ui.PrimaryColor)

	m := Model{
		shell:   NewShell(svc, out),
		out:     out,
		Input:   input,
		Spinner: s,
		Help:    help.New(),
		Keys:    newKeyMap(),
	}
	if intro != "" {
		m.appendOutput(intro)
	}
	return m
}

// SetSize sets the screen size the view is laid out for.
func (m *Model) SetSize(width, height int) {
	m.Width = width
	m.Height = height
	m.Help.Width = width
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case execDoneMsg:
		m.Running = ""
		m.appendOutput(msg.output)
		if msg.quit {
			m.Quitting = true
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		if m.Running == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.Keys.Quit) {
			m.Quitting = true
			return m, tea.Quit
		}
		// Block input while a command runs
		if m.Running != "" {
			return m, nil
		}

		switch {
		case key.Matches(msg, m.Keys.Run):
			return m.submit()
		case key.Matches(msg, m.Keys.Prev):
			m.recall(-1)
			return m, nil
		case key.Matches(msg, m.Keys.Next):
			m.recall(1)
			return m, nil
		case key.Matches(msg, m.Keys.Clear):
			m.Lines = nil
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

// submit starts the command in the input field
func (m Model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.Input.Value())
	m.Input.Reset()
	if line == "" {
		return m, nil
	}

	m.History = append(m.History, line)
	m.histPos = len(m.History)
	m.appendOutput(ui.PromptStyle.Render(Prompt) + line)
	m.Running = line

	return m, tea.Batch(m.exec(line), m.Spinner.Tick)
}

// exec runs a command line off the UI goroutine
func (m Model) exec(line string) tea.Cmd {
	return func() tea.Msg {
		m.out.Reset()
		quit := m.shell.Exec(line)
		return execDoneMsg{output: m.out.String(), quit: quit}
	}
}

// recall moves through the command history
func (m *Model) recall(delta int) {
	if len(m.History) == 0 {
		return
	}
	pos := m.histPos + delta
	if pos < 0 {
		pos = 0
	}
	if pos >= len(m.History) {
		m.histPos = len(m.History)
		m.Input.SetValue("")
		return
	}
	m.histPos = pos
	m.Input.SetValue(m.History[pos])
	m.Input.CursorEnd()
}

func (m *Model) appendOutput(text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}
	m.Lines = append(m.Lines, strings.Split(text, "\n")...)
	if len(m.Lines) > maxScrollback {
		m.Lines = m.Lines[len(m.Lines)-maxScrollback:]
	}
}

// View implements tea.Model
func (m Model) View() string {
	if m.Quitting {
		return strings.Join(m.Lines, "\n") + "\n"
	}

	lines := m.Lines
	if m.Height > 0 {
		// Leave room for the prompt and help lines
		visible := m.Height - 3
		if visible < 1 {
			visible = 1
		}
		if len(lines) > visible {
			lines = lines[len(lines)-visible:]
		}
	}

	var b strings.Builder
	if len(lines) > 0 {
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n")
	}

	if m.Running != "" {
		b.WriteString(m.Spinner.View() + " " + ui.MutedStyle.Render("running "+m.Running+"..."))
	} else {
		b.WriteString(m.Input.View())
	}
	b.WriteString("\n")
	b.WriteString(m.Help.View(m.Keys))
	return b.String()
}

// RunTUI runs the interactive console until the user quits.
func RunTUI(svc Controller, intro string) error {
	// Lay out for the current terminal until the first WindowSizeMsg
	m := NewModel(svc, intro)
	m.SetSize(ui.GetTerminalSize())
	p := tea.NewProgram(m)
	_, err := p.Run()
	return err
}
