package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// inputPrompt is a single-line text prompt, the address/port
// counterpart to selector, adapted from the teacher's multi-line
// TextArea wrapper but backed by bubbles/textinput since a peer
// address or port never needs more than one line.
type inputPrompt struct {
	ti textinput.Model
}

func newInputPrompt(placeholder, initial string) inputPrompt {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.SetValue(initial)
	ti.Focus()
	return inputPrompt{ti: ti}
}

func (m inputPrompt) Value() string {
	return m.ti.Value()
}

func (m inputPrompt) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputPrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			return m, tea.Quit
		case "ctrl+c":
			m.ti.SetValue("")
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m inputPrompt) View() string {
	return fmt.Sprintf("%s\n\n%s\n\n(enter to confirm)\n", m.ti.Placeholder, m.ti.View())
}

// runInputPrompt runs a single text-input prompt to completion.
func runInputPrompt(placeholder, initial string) (string, error) {
	p := tea.NewProgram(newInputPrompt(placeholder, initial))
	m, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("tui: run input prompt: %w", err)
	}
	ip, ok := m.(inputPrompt)
	if !ok {
		return "", fmt.Errorf("tui: unexpected prompt model")
	}
	return ip.Value(), nil
}
