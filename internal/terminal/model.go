package terminal

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

const defaultMaxWidth = 60

// frameMsg carries the latest text and opacity to the program.
type frameMsg struct {
	text    string
	opacity float64
}

type model struct {
	renderer *lipgloss.Renderer
	theme    Theme
	maxWidth int
	width    int
	frame    frameMsg
}

func newModel(renderer *lipgloss.Renderer, theme Theme, maxWidth int) model {
	return model{
		renderer: renderer,
		theme:    theme,
		maxWidth: maxWidth,
		frame:    frameMsg{opacity: 1},
	}
}

func (m model) withFrame(f frameMsg) model {
	m.frame = f
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.frame = msg
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

// View draws the bordered box. A fully transparent frame draws nothing.
func (m model) View() string {
	if m.frame.opacity <= 0 {
		return ""
	}

	width := m.maxWidth
	if m.width > 0 && m.width-4 < width {
		width = m.width - 4
	}
	if width < 1 {
		width = 1
	}

	style := m.renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(blend(m.theme.Border, m.theme.Background, m.frame.opacity))).
		Foreground(lipgloss.Color(blend(m.theme.Foreground, m.theme.Background, m.frame.opacity))).
		Padding(0, 1).
		MaxWidth(width + 4).
		Width(width)

	return style.Render(m.frame.text)
}

// blend mixes fg toward bg as opacity drops from 1 to 0. Unparseable colors
// are returned unchanged.
func blend(fg, bg string, opacity float64) string {
	from, err := colorful.Hex(fg)
	if err != nil {
		return fg
	}
	to, err := colorful.Hex(bg)
	if err != nil {
		return fg
	}
	switch {
	case opacity < 0:
		opacity = 0
	case opacity > 1:
		opacity = 1
	}
	return from.BlendRgb(to, 1-opacity).Clamped().Hex()
}
