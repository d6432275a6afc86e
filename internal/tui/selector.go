// Package tui provides the interactive mode picker the teacher's CLI
// falls back to when invoked with no arguments, adapted here to pick
// the tunnel mode and the transfer mode (plus, for server/client, the
// peer address and port) instead of its original choices.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// selector is a single-choice vertical list prompt.
type selector struct {
	placeholder string
	options     []string
	cursor      int
	choice      string
	checked     int
}

func newSelector(placeholder string, options []string) selector {
	return selector{placeholder: placeholder, options: options, checked: -1}
}

func (m selector) Choice() string {
	return m.choice
}

func (m selector) Init() tea.Cmd {
	return nil
}

func (m selector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "enter":
		m.choice = strings.Split(m.options[m.cursor], " ")[0]
		m.checked = m.cursor
		return m, tea.Quit
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m selector) View() string {
	s := fmt.Sprintf("%s\n\n", m.placeholder)
	for i, option := range m.options {
		checked := "[ ]"
		if m.checked == i {
			checked = "[x]"
		}
		line := fmt.Sprintf("%s %s", checked, option)
		if m.cursor == i {
			line = "\033[1;32m" + line + "\033[0m"
		}
		s += line + "\n"
	}
	s += "\nPress q to quit.\n"
	return s
}

// runSelector runs a single selector prompt to completion and returns
// the chosen option's leading token, or an error if the program
// cannot run (e.g. not attached to a tty) or the user quit without
// choosing.
func runSelector(placeholder string, options []string) (string, error) {
	p := tea.NewProgram(newSelector(placeholder, options))
	m, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("tui: run selector: %w", err)
	}
	sel, ok := m.(selector)
	if !ok || sel.Choice() == "" {
		return "", fmt.Errorf("tui: no selection made")
	}
	return sel.Choice(), nil
}
