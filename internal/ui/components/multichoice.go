package components

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/timedquiz/internal/bank"
	"github.com/abhisek/timedquiz/internal/ui/theme"
)

// MultiChoice is a multiple-choice selector. Arrow keys move the cursor;
// a letter or number moves it straight to that option.
type MultiChoice struct {
	Options  []string
	Selected int
}

// NewMultiChoice creates a selector over options.
func NewMultiChoice(options []string) MultiChoice {
	return MultiChoice{Options: options}
}

// Update handles keyboard navigation.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	default:
		if i, ok := m.indexFor(key); ok {
			m.Selected = i
		}
	}
	return m, nil
}

// indexFor maps "b" / "B" / "2" to option index 1.
func (m MultiChoice) indexFor(key string) (int, bool) {
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(m.Options) {
		return n - 1, true
	}
	if len(key) == 1 {
		c := strings.ToUpper(key)[0]
		if i := int(c - 'A'); c >= 'A' && i < len(m.Options) {
			return i, true
		}
	}
	return 0, false
}

// Value returns the text of the highlighted option.
func (m MultiChoice) Value() string {
	if m.Selected < 0 || m.Selected >= len(m.Options) {
		return ""
	}
	return m.Options[m.Selected]
}

// View renders the options.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		prefix := "  "
		style := theme.Unselected
		if i == m.Selected {
			prefix = "▸ "
			style = theme.Selected
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%s)  %s", prefix, bank.ChoiceLabel(i), opt)))
		b.WriteString("\n")
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("\n↑↓ or a letter to choose, Enter to answer"))
	return b.String()
}
