package cmd

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type initModel struct {
	inputs   []textinput.Model
	focusIdx int
	canceled bool
	done     bool
}

func initialInitModel() initModel {
	server := textinput.New()
	server.Placeholder = "http://localhost:8080/ogc-api"
	server.Focus()
	server.CharLimit = 256
	server.Width = 42

	// TODO: selection menu for auth mode (token vs basic vs api key)
	token := textinput.New()
	token.Placeholder = "(none)"
	token.CharLimit = 512
	token.Width = 42
	token.EchoMode = textinput.EchoPassword

	patterns := textinput.New()
	patterns.Placeholder = "data/patterns"
	patterns.CharLimit = 128
	patterns.Width = 42

	return initModel{
		inputs: []textinput.Model{server, token, patterns},
	}
}

func (m initModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m initModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.canceled = true
			m.done = true
			return m, tea.Quit
		case "enter":
			m.done = true
			return m, tea.Quit
		case "tab", "shift+tab", "down", "up":
			if msg.String() == "up" || msg.String() == "shift+tab" {
				m.focusIdx--
			} else {
				m.focusIdx++
			}
			if m.focusIdx >= len(m.inputs) {
				m.focusIdx = 0
			} else if m.focusIdx < 0 {
				m.focusIdx = len(m.inputs) - 1
			}
			for i := range m.inputs {
				if i == m.focusIdx {
					m.inputs[i].Focus()
				} else {
					m.inputs[i].Blur()
				}
			}
			return m, nil
		}
	}

	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m initModel) View() string {
	s := "\n"
	labels := []string{"Server URL", "Auth token (optional)", "Patterns directory"}

	for i, input := range m.inputs {
		s += labels[i] + ": " + input.View() + "\n"
	}

	s += "\n[Enter] to continue • [Esc] to cancel\n"
	return s
}

func RunInitTUI() (server, token, patterns string, canceled bool) {
	p := tea.NewProgram(initialInitModel())
	m, err := p.Run()
	if err != nil {
		return "", "", "", true
	}

	final := m.(initModel)
	if final.canceled {
		return "", "", "", true
	}

	server = final.inputs[0].Value()
	if server == "" {
		server = "http://localhost:8080/ogc-api"
	}

	token = final.inputs[1].Value()

	patterns = final.inputs[2].Value()
	if patterns == "" {
		patterns = "data/patterns"
	}

	return server, token, patterns, false
}
