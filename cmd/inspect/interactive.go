package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/serial/jsonform"
	"github.com/wippyai/serial/mapform"
	"github.com/wippyai/serial/tagwire"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectType modelState = iota
	stateShowRenders
	stateEditPatch
)

type interactiveModel struct {
	err      error
	entries  []entry
	selected int
	state    modelState
	renders  renderedMsg
	patch    textinput.Model
	value    any
}

type renderedMsg struct {
	err  error
	json string
	wire string
	tree string
}

func newInteractiveModel() *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = `{"age": 37}`
	ti.Prompt = "patch: "
	ti.Width = 60
	return &interactiveModel{
		entries: registry(),
		state:   stateSelectType,
		patch:   ti,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) render() tea.Msg {
	e := m.entries[m.selected]
	var out renderedMsg

	data, err := jsonform.MarshalIndent(e.codec, m.value, 2)
	if err != nil {
		return renderedMsg{err: err}
	}
	out.json = string(data)

	wire, err := tagwire.Marshal(e.codec, m.value)
	if err != nil {
		return renderedMsg{err: err}
	}
	out.wire = fmt.Sprintf("%d bytes\n%s", len(wire), hex.Dump(wire))

	tree, err := mapform.Encode(e.codec, m.value)
	if err != nil {
		return renderedMsg{err: err}
	}
	out.tree = fmt.Sprintf("%#v", tree)

	return out
}

func (m *interactiveModel) applyPatch() tea.Msg {
	e := m.entries[m.selected]
	patched, err := jsonform.Update(e.codec, []byte(m.patch.Value()), m.value)
	if err != nil {
		return renderedMsg{err: err}
	}
	m.value = patched
	return m.render()
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateEditPatch {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectType && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectType && m.selected < len(m.entries)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectType:
				m.value = m.entries[m.selected].sample
				m.state = stateShowRenders
				return m, m.render
			case stateEditPatch:
				m.state = stateShowRenders
				return m, m.applyPatch
			}

		case "p":
			if m.state == stateShowRenders {
				m.state = stateEditPatch
				m.patch.SetValue("")
				m.patch.Focus()
				return m, textinput.Blink
			}

		case "r":
			if m.state == stateShowRenders {
				m.value = m.entries[m.selected].sample
				return m, m.render
			}

		case "esc":
			switch m.state {
			case stateShowRenders:
				m.state = stateSelectType
				m.renders = renderedMsg{}
			case stateEditPatch:
				m.state = stateShowRenders
			}
		}

	case renderedMsg:
		m.renders = msg
		m.err = msg.err
	}

	if m.state == stateEditPatch {
		var cmd tea.Cmd
		m.patch, cmd = m.patch.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Serialization Inspector"))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectType:
		b.WriteString("Select a type to inspect:\n\n")
		for i, e := range m.entries {
			d := e.codec.Descriptor()
			line := nameStyle.Render(e.name) + " " + kindStyle.Render(fmt.Sprintf("%s (%s)", d.Name(), d.Kind()))
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> ") + line)
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter inspect • q quit"))

	case stateShowRenders:
		e := m.entries[m.selected]
		b.WriteString(nameStyle.Render(e.name))
		b.WriteString("\n\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(sectionStyle.Render("json"))
			b.WriteString("\n" + m.renders.json + "\n\n")
			b.WriteString(sectionStyle.Render("wire"))
			b.WriteString("\n" + m.renders.wire + "\n")
			b.WriteString(sectionStyle.Render("map"))
			b.WriteString("\n" + m.renders.tree + "\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("p patch • r reset • esc back • q quit"))

	case stateEditPatch:
		b.WriteString("Merge a sparse JSON document into the value:\n\n")
		b.WriteString(m.patch.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter apply • esc cancel"))
	}

	return b.String()
}

func runInteractive() error {
	p := tea.NewProgram(newInteractiveModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
