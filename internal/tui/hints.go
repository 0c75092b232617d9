package tui

import "strings"

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string
	Desc string
}

// renderHints renders hints for the bottom bar: "s:stop y:copy log q:quit".
func (m Model) renderHints(hints []Hint) string {
	if len(hints) == 0 {
		return ""
	}
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = m.styles.HintKey.Render(h.Key) + ":" + m.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, " ")
}

// contextualHints returns the hints for the current phase of the run.
func (m Model) contextualHints() []Hint {
	scroll := Hint{Key: "j/k", Desc: "scroll"}
	copyLog := Hint{Key: "y", Desc: "copy log"}
	switch {
	case m.done:
		return []Hint{scroll, copyLog, {Key: "q", Desc: "quit"}}
	case m.stopping:
		return []Hint{scroll, copyLog, {Key: "q", Desc: "force quit"}}
	default:
		return []Hint{scroll, {Key: "s", Desc: "stop"}, copyLog, {Key: "q", Desc: "stop & quit"}}
	}
}
