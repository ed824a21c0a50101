package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/phanxgames/barboard"
)

func newLibraryCmd(config func() Config) *cobra.Command {
	return &cobra.Command{
		Use:   "library",
		Short: "Browse and reorder saved board resources and templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config()
			store := barboard.NewStore()
			db, err := openLibrary(cmd.Context(), cfg, store)
			if err != nil {
				return err
			}
			defer db.Close()

			p := tea.NewProgram(newLibraryModel(store), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("library: %w", err)
			}
			return nil
		},
	}
}

type libraryTab int

const (
	tabResources libraryTab = iota
	tabTemplates
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffd166"))
	tabStyle      = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#8a8f98"))
	activeTab     = tabStyle.Copy().Bold(true).Foreground(lipgloss.Color("#f5f5f5")).Underline(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#06d6a0")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8a8f98"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef476f")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#5c6370"))
	frameStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#3a3f4b")).Padding(0, 1)
	builtinMarker = mutedStyle.Render(" (built-in)")
)

// libraryModel is the bubbletea model of the library browser. Every change
// goes through the store, which mirrors it to the database.
type libraryModel struct {
	store   *barboard.Store
	tab     libraryTab
	cursor  int
	confirm bool
	status  string
	width   int
}

func newLibraryModel(store *barboard.Store) libraryModel {
	return libraryModel{store: store}
}

func (m libraryModel) Init() tea.Cmd { return nil }

func (m libraryModel) rows() int {
	if m.tab == tabTemplates {
		return len(m.store.Templates())
	}
	return len(m.store.Resources())
}

func (m libraryModel) selectedResource() (barboard.BoardResource, bool) {
	rs := m.store.Resources()
	if m.tab != tabResources || m.cursor < 0 || m.cursor >= len(rs) {
		return barboard.BoardResource{}, false
	}
	return rs[m.cursor], true
}

func (m libraryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.key(msg.String())
	}
	return m, nil
}

func (m libraryModel) key(k string) (tea.Model, tea.Cmd) {
	if m.confirm {
		m.confirm = false
		if k != "y" {
			m.status = "delete cancelled"
			return m, nil
		}
		if r, ok := m.selectedResource(); ok && m.store.DeleteBoardResource(r.ID) {
			m.status = fmt.Sprintf("deleted %q", r.Name)
			m.cursor = min(m.cursor, max(m.rows()-1, 0))
		}
		return m, nil
	}

	m.status = ""
	switch k {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		m.tab = 1 - m.tab
		m.cursor = 0
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, max(m.rows()-1, 0))
	case "K", "shift+up":
		if r, ok := m.selectedResource(); ok && m.store.MoveBoardResource(r.ID, -1) {
			m.cursor--
		}
	case "J", "shift+down":
		if r, ok := m.selectedResource(); ok && m.store.MoveBoardResource(r.ID, 1) {
			m.cursor++
		}
	case "d", "delete":
		if r, ok := m.selectedResource(); ok {
			m.confirm = true
			m.status = fmt.Sprintf("delete %q? (y/n)", r.Name)
		}
	case "p":
		if r, ok := m.selectedResource(); ok {
			m.status = exportResourcePNG(r)
		}
	}
	return m, nil
}

// exportResourcePNG writes a preview of r to <id>.png in the working
// directory and returns a status line.
func exportResourcePNG(r barboard.BoardResource) string {
	preview := barboard.NewStore()
	node := preview.AddNode(barboard.NewBoardNode(r.Name, nil, 0, 0, 960, 600))
	preview.LoadResources([]barboard.BoardResource{r})
	preview.ApplyResourceToBoard(node, r.ID)

	name := r.ID + ".png"
	f, err := os.Create(name)
	if err != nil {
		return warnStyle.Render(err.Error())
	}
	defer f.Close()
	if err := barboard.ExportPNG(f, preview.Snapshot(), nil, barboard.DefaultThumbnailWidth*2, barboard.DefaultThumbnailHeight*2); err != nil {
		return warnStyle.Render(err.Error())
	}
	return "wrote " + name
}

func (m libraryModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("barboard library"))
	b.WriteString("\n\n")

	res, tpl := tabStyle, tabStyle
	if m.tab == tabResources {
		res = activeTab
	} else {
		tpl = activeTab
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		res.Render(fmt.Sprintf("Boards (%d)", len(m.store.Resources()))),
		tpl.Render(fmt.Sprintf("Templates (%d)", len(m.store.Templates()))),
	))
	b.WriteString("\n")

	var lines []string
	if m.tab == tabResources {
		for i, r := range m.store.Resources() {
			zones := 0
			if r.Content != nil && r.Content.Structure != nil {
				zones = len(r.Content.Structure.Zones)
			}
			detail := mutedStyle.Render(fmt.Sprintf("  %d zones  %s", zones, r.CreatedAt.Format("2006-01-02")))
			lines = append(lines, m.row(i, r.Name)+detail)
		}
		if len(lines) == 0 {
			lines = append(lines, mutedStyle.Render("no saved boards"))
		}
	} else {
		for i, t := range m.store.Templates() {
			line := m.row(i, t.Name)
			if t.BuiltIn {
				line += builtinMarker
			}
			lines = append(lines, line)
		}
	}
	frame := frameStyle
	if m.width > 4 {
		frame = frame.Width(m.width - 4)
	}
	b.WriteString(frame.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	help := "tab switch  j/k move  q quit"
	if m.tab == tabResources {
		help = "tab switch  j/k move  J/K reorder  d delete  p preview png  q quit"
	}
	b.WriteString(helpStyle.Render(help))
	return b.String()
}

func (m libraryModel) row(i int, name string) string {
	if i == m.cursor {
		return cursorStyle.Render("> " + name)
	}
	return "  " + name
}
