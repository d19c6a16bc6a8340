package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	matchLineStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("228")). // yellow
			Foreground(lipgloss.Color("0"))    // black

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			PaddingLeft(2)
)

// pagerModel shows a report in a scrollable viewport with line search
type pagerModel struct {
	viewport viewport.Model
	lines    []string
	ready    bool

	searching bool
	input     textinput.Model
	matches   []int // line numbers
	current   int
}

// NewPager creates a new pager model with the given content
func NewPager(content string) *pagerModel {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	return &pagerModel{
		lines: strings.Split(content, "\n"),
		input: ti,
	}
}

// Init initializes the pager model
func (m *pagerModel) Init() tea.Cmd {
	return nil
}

// Update handles user input and updates the model state
func (m *pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.setMatches(nil)
		case "g", "home":
			m.viewport.GotoTop()
		case "G", "end":
			m.viewport.GotoBottom()
		case "/":
			m.searching = true
			m.input.Focus()
			return m, textinput.Blink
		case "n":
			m.jump(1)
		case "N":
			m.jump(-1)
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-2)
			m.viewport.Style = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				PaddingLeft(2).
				PaddingRight(2)
			m.render()
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 2
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *pagerModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.searching = false
		m.input.Reset()
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.setMatches(findLines(m.lines, m.input.Value()))
		m.jump(0)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// findLines returns the lines containing query, ignoring ANSI styling.
// A lowercase query matches case-insensitively.
func findLines(lines []string, query string) []int {
	if query == "" {
		return nil
	}
	fold := strings.ToLower(query) == query
	var found []int
	for i, line := range lines {
		plain := ansi.Strip(line)
		if fold {
			plain = strings.ToLower(plain)
		}
		if strings.Contains(plain, query) {
			found = append(found, i)
		}
	}
	return found
}

func (m *pagerModel) setMatches(matches []int) {
	m.matches = matches
	m.current = 0
	m.render()
}

// jump moves the current match by delta and scrolls to it
func (m *pagerModel) jump(delta int) {
	if len(m.matches) == 0 {
		return
	}
	m.current = (m.current + delta + len(m.matches)) % len(m.matches)
	m.render()

	line := m.matches[m.current]
	if line < m.viewport.YOffset || line >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(line)
	}
}

func (m *pagerModel) render() {
	if len(m.matches) == 0 {
		m.viewport.SetContent(strings.Join(m.lines, "\n"))
		return
	}
	out := append([]string(nil), m.lines...)
	out[m.matches[m.current]] = matchLineStyle.Render(ansi.Strip(out[m.matches[m.current]]))
	m.viewport.SetContent(strings.Join(out, "\n"))
}

// View renders the current state of the model
func (m *pagerModel) View() string {
	if !m.ready {
		return "\nInitializing..."
	}
	if m.searching {
		return m.viewport.View() + "\n" + m.input.View()
	}

	help := "↑/k up • ↓/j down • f/b page • g/G top/bottom • / search • q quit"
	if len(m.matches) > 0 {
		help = fmt.Sprintf("match %d/%d • n next • N previous • esc clear • q quit", m.current+1, len(m.matches))
	}
	return m.viewport.View() + "\n" + helpStyle.Render(help)
}

// RunPager starts the pager program with the given content
func RunPager(content string) error {
	p := tea.NewProgram(
		NewPager(content),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
