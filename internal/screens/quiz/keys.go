package quiz

import (
	"charm.land/bubbles/v2/key"

	"github.com/abhisek/timedquiz/internal/ui/layout"
)

type keyMap struct {
	Start          key.Binding
	GotoReview     key.Binding
	Submit         key.Binding
	Skip           key.Binding
	Confirm        key.Binding
	Reject         key.Binding
	NextSkipped    key.Binding
	ForceReview    key.Binding
	CompleteReview key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Start:          key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Start")),
		GotoReview:     key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("Ctrl+R", "Straight to review")),
		Submit:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Submit")),
		Skip:           key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("Ctrl+S", "Skip")),
		Confirm:        key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("Y", "Skip it")),
		Reject:         key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("N", "Keep answering")),
		NextSkipped:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("Tab", "Next skipped")),
		ForceReview:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("Ctrl+R", "Review now")),
		CompleteReview: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("Ctrl+D", "Finish")),
	}
}

func hints(bindings ...key.Binding) []layout.KeyHint {
	out := make([]layout.KeyHint, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		out = append(out, layout.KeyHint{Key: h.Key, Description: h.Desc})
	}
	return out
}
