package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/bmsort/internal/runctl"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("bmsort organize"))
	b.WriteString("\n")
	b.WriteString(m.styles.Status.Render(m.statusLine()))
	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(float64(m.last.PercentComplete) / 100))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Logs.Render(m.logs.View()))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(m.styles.Error.Render("✗ " + m.err.Error()))
	case m.summary != nil:
		b.WriteString(m.styles.Summary.Render(m.summary.Message))
	}
	b.WriteString("\n")
	b.WriteString(m.renderHints(m.contextualHints()))
	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Notice.Render(m.notice))
	}

	return m.styles.App.Render(b.String())
}

func (m Model) statusLine() string {
	p := m.last
	counts := fmt.Sprintf("%d processed · %d ✓ · %d ✗", p.Processed, p.SuccessCount, p.FailureCount)
	switch {
	case m.done && m.summary != nil && m.summary.State == runctl.StateStopped:
		return "Stopped · " + counts
	case m.done:
		return "Done · " + counts
	case p.TotalBatches == 0:
		return m.spinner.View() + " Reading bookmarks..."
	default:
		prefix := m.spinner.View()
		if m.stopping {
			prefix += " Stopping ·"
		}
		return fmt.Sprintf("%s Batch %d/%d · %s", prefix, p.CurrentBatch, p.TotalBatches, counts)
	}
}

// renderLines styles log lines by outcome. Lines are wrapped to the
// viewport width.
func (m Model) renderLines() string {
	width := max(m.logs.Width, 1)
	out := make([]string, len(m.lines))
	for i, line := range m.lines {
		style := m.styles.LogOK
		if strings.HasPrefix(line, "✗") {
			style = m.styles.LogFail
		}
		out[i] = style.Render(lipgloss.NewStyle().Width(width).Render(line))
	}
	return strings.Join(out, "\n")
}
