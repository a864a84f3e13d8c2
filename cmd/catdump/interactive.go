package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	catalogreader "github.com/addrkit/catalog-reader"
	"github.com/addrkit/catalog-reader/catalog"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type browseState int

const (
	stateBrowse browseState = iota
	stateFilter
	stateDetail
)

type browserModel struct {
	err      error
	filename string
	cat      *catalog.Catalog
	keys     []string // all keys, sorted
	visible  []string // keys matching the filter
	filter   textinput.Model
	selected int
	offset   int
	height   int
	state    browseState
}

type catalogLoadedMsg struct {
	err error
	cat *catalog.Catalog
}

func newBrowserModel(filename string) *browserModel {
	filter := textinput.New()
	filter.Placeholder = "filter keys"
	filter.Prompt = "/ "
	filter.Width = 40
	return &browserModel{
		filename: filename,
		filter:   filter,
		height:   24,
	}
}

func (m *browserModel) Init() tea.Cmd {
	return m.loadCatalog
}

func (m *browserModel) loadCatalog() tea.Msg {
	data, err := os.ReadFile(m.filename)
	if err != nil {
		return catalogLoadedMsg{err: err}
	}
	cat, err := catalogreader.Decode(data)
	if err != nil {
		return catalogLoadedMsg{err: err}
	}
	return catalogLoadedMsg{cat: cat}
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height

	case catalogLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.cat = msg.cat
		m.keys = make([]string, 0, len(msg.cat.Locations))
		for key := range msg.cat.Locations {
			m.keys = append(m.keys, key)
		}
		sort.Strings(m.keys)
		m.visible = m.keys

	case tea.KeyMsg:
		if m.state == stateFilter {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
				if m.selected < m.offset {
					m.offset = m.selected
				}
			}

		case "down", "j":
			if m.state == stateBrowse && m.selected < len(m.visible)-1 {
				m.selected++
				if m.selected >= m.offset+m.pageSize() {
					m.offset = m.selected - m.pageSize() + 1
				}
			}

		case "/":
			if m.state == stateBrowse {
				m.state = stateFilter
				m.filter.Focus()
				return m, textinput.Blink
			}

		case "enter":
			if m.state == stateBrowse && len(m.visible) > 0 {
				m.state = stateDetail
			}

		case "esc":
			switch m.state {
			case stateDetail:
				m.state = stateBrowse
			case stateBrowse:
				if m.filter.Value() != "" {
					m.filter.SetValue("")
					m.applyFilter()
				}
			}
		}
	}
	return m, nil
}

func (m *browserModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		if msg.String() == "esc" {
			m.filter.SetValue("")
		}
		m.filter.Blur()
		m.state = stateBrowse
		m.applyFilter()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *browserModel) applyFilter() {
	needle := strings.ToLower(m.filter.Value())
	if needle == "" {
		m.visible = m.keys
	} else {
		m.visible = nil
		for _, key := range m.keys {
			if strings.Contains(strings.ToLower(key), needle) {
				m.visible = append(m.visible, key)
			}
		}
	}
	m.selected = 0
	m.offset = 0
}

func (m *browserModel) pageSize() int {
	// Header, filter line, help line.
	n := m.height - 6
	if n < 1 {
		return 1
	}
	return n
}

func (m *browserModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.cat == nil {
		return "Loading catalog..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Catalog Browser"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	fmt.Fprintf(&b, "  (%d/%d locations)\n", len(m.visible), len(m.keys))

	if m.state == stateDetail {
		m.viewDetail(&b)
		return b.String()
	}

	if m.state == stateFilter || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
	}
	b.WriteString("\n")

	end := m.offset + m.pageSize()
	if end > len(m.visible) {
		end = len(m.visible)
	}
	for i := m.offset; i < end; i++ {
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + m.visible[i]))
		} else {
			b.WriteString("  " + keyStyle.Render(m.visible[i]))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • enter details • / filter • q quit"))
	return b.String()
}

func (m *browserModel) viewDetail(b *strings.Builder) {
	loc := m.cat.Locations[m.visible[m.selected]]

	b.WriteString("\n")
	row := func(name, value string) {
		if value == "" {
			return
		}
		b.WriteString(fieldStyle.Render(name))
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\n")
	}
	row("Key", loc.Key)
	row("Internal ID", loc.InternalID)
	row("Provider", loc.ProviderID)
	row("Bundle", loc.BundleName)
	if loc.BundleSize > 0 {
		row("Size", fmt.Sprintf("%d bytes", loc.BundleSize))
	}
	row("CRC", loc.CRC)
	row("Hash", loc.Hash)
	if loc.ResourceType != nil {
		row("Type", loc.ResourceType.ClassName)
	}
	row("Dependency key", loc.DependencyKey)
	if len(loc.Dependencies) > 0 {
		b.WriteString(fieldStyle.Render("Dependencies"))
		b.WriteString(":\n")
		for _, dep := range loc.Dependencies {
			b.WriteString("  - ")
			b.WriteString(keyStyle.Render(dep.Key))
			b.WriteString("\n")
		}
	}
	if o := loc.RequestOptions; o != nil {
		row("Options", fmt.Sprintf("timeout=%d retries=%d chunked=%t (v%d)",
			o.Timeout, o.RetryCount, o.ChunkedTransfer, o.SchemaVersion))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("esc back • q quit"))
}

func runInteractive(filename string) error {
	p := tea.NewProgram(newBrowserModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
