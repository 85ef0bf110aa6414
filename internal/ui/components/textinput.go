package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/timedquiz/internal/bank"
)

// TextInput wraps bubbles/textinput for free-text answers. Numeric answer
// types only accept characters that can appear in a number.
type TextInput struct {
	Model      textinput.Model
	AnswerType bank.AnswerType
}

// NewTextInput creates a focused input for answers of type t.
func NewTextInput(placeholder string, t bank.AnswerType, maxWidth int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if maxWidth > 0 {
		ti.CharLimit = maxWidth
		ti.SetWidth(maxWidth)
	}
	ti.Focus()

	return TextInput{Model: ti, AnswerType: t}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok && !t.accepts(kmsg.Text) {
		return t, nil
	}

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func (t TextInput) accepts(text string) bool {
	var allowed string
	switch t.AnswerType {
	case bank.AnswerTypeInteger:
		allowed = "0123456789-+ "
	case bank.AnswerTypeDecimal:
		allowed = "0123456789-+.,e "
	case bank.AnswerTypeFraction:
		allowed = "0123456789-+/ "
	default:
		return true
	}
	for _, r := range text {
		if !strings.ContainsRune(allowed, r) {
			return false
		}
	}
	return true
}

// View renders the text input.
func (t TextInput) View() string {
	return t.Model.View()
}

// Value returns the current input value with surrounding space trimmed.
func (t TextInput) Value() string {
	return strings.TrimSpace(t.Model.Value())
}

// Reset clears the input.
func (t *TextInput) Reset() {
	t.Model.Reset()
}
