package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Liamolucko/wasm2ts"
	"github.com/Liamolucko/wasm2ts/dts"
	"github.com/Liamolucko/wasm2ts/wasm"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")).
			Width(7)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	declStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type exportItem struct {
	name      string
	kind      string
	decl      string
	signature string // wasm value types, functions only
}

type interactiveModel struct {
	filename string
	items    []exportItem
	visible  []int
	filter   textinput.Model
	selected int
	detail   bool
}

func newInteractiveModel(filename string, data []byte) (*interactiveModel, error) {
	m, err := wasm2ts.Decode(data)
	if err != nil {
		return nil, err
	}
	decls, err := wasm2ts.Resolve(m)
	if err != nil {
		return nil, err
	}

	items := make([]exportItem, len(m.Exports))
	for i, exp := range m.Exports {
		single := &dts.Module{Decls: []dts.Decl{decls.Decls[i]}}
		items[i] = exportItem{
			name: exp.Name,
			kind: exp.KindName(),
			decl: strings.TrimSuffix(single.String(), "\n"),
		}
		if exp.Kind == wasm.KindFunc {
			if ft, err := m.FuncType(exp.Idx); err == nil {
				items[i].signature = formatSignature(ft)
			}
		}
	}

	ti := textinput.New()
	ti.Placeholder = "filter exports"
	ti.Prompt = "/ "
	ti.Focus()

	model := &interactiveModel{
		filename: filename,
		items:    items,
		filter:   ti,
	}
	model.applyFilter()
	return model, nil
}

func formatSignature(ft *wasm.FuncType) string {
	names := func(vs []wasm.ValType) string {
		parts := make([]string, len(vs))
		for i, v := range vs {
			parts[i] = v.String()
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprintf("(%s) -> (%s)", names(ft.Params), names(ft.Results))
}

func (m *interactiveModel) applyFilter() {
	query := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for i, item := range m.items {
		if query == "" || strings.Contains(strings.ToLower(item.name), query) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *interactiveModel) current() (exportItem, bool) {
	if len(m.visible) == 0 {
		return exportItem{}, false
	}
	return m.items[m.visible[m.selected]], true
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "up", "ctrl+p":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down", "ctrl+n":
			if m.selected < len(m.visible)-1 {
				m.selected++
			}
			return m, nil

		case "enter":
			m.detail = !m.detail
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("wasm2ts"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	fmt.Fprintf(&b, " (%d of %d exports)\n\n", len(m.visible), len(m.items))

	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		b.WriteString(helpStyle.Render("no matching exports"))
		b.WriteString("\n")
	}
	for i, idx := range m.visible {
		item := m.items[idx]
		line := kindStyle.Render(item.kind) + " " + item.name
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if item, ok := m.current(); ok && m.detail {
		b.WriteString("\n")
		b.WriteString(declStyle.Render(item.decl))
		b.WriteString("\n")
		if item.signature != "" {
			b.WriteString(helpStyle.Render("wasm: " + item.signature))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("type to filter • ↑/↓ select • enter declaration • esc quit"))
	return b.String()
}

func runInteractive(filename string, data []byte) error {
	model, err := newInteractiveModel(filename, data)
	if err != nil {
		return err
	}
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
