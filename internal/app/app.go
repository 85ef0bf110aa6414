// Package app is the root Bubble Tea model: a screen stack inside the
// header/footer frame.
package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/timedquiz/internal/router"
	"github.com/abhisek/timedquiz/internal/screen"
	"github.com/abhisek/timedquiz/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// NewAppModel creates a model showing initial.
func NewAppModel(initial screen.Screen) AppModel {
	return AppModel{
		router: router.New(initial),
	}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Screens get the space left inside the frame.
		msg.Height = max(msg.Height-frameHeight, 0)
		return m, m.router.Update(msg)

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// frameHeight is the height of the bordered header and footer.
const frameHeight = 6

func (m AppModel) View() tea.View {
	v := tea.NewView(m.frame())
	v.AltScreen = true
	return v
}

// frame renders the whole terminal as a string.
func (m AppModel) frame() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	var (
		title, status string
		hints         []layout.KeyHint
	)
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
		if kp, ok := active.(screen.KeyHintProvider); ok {
			hints = kp.KeyHints()
		}
	}
	hints = append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})

	header := layout.RenderHeader(title, status, m.width)
	footer := layout.RenderFooter(hints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)

	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program on initial and blocks until it exits.
// Cancelling ctx stops the program.
func Run(ctx context.Context, initial screen.Screen, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(NewAppModel(initial), opts...)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
