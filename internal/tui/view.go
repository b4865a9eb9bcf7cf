package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mesoscale/mesoscaler/internal/marathon"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A78BFA"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	valueStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9FAFB"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")).MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6B7280")).
			Padding(1, 2)
)

// gaugeWidth is the character width of the instance bound gauge.
const gaugeWidth = 24

// sparks are the history strip glyphs, lowest to highest.
var sparks = []rune("▁▂▃▄▅▆▇█")

// maxTaskRows bounds the task list so large apps do not flood the screen.
const maxTaskRows = 8

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("mesoscaler"))
	b.WriteString("  " + labelStyle.Render(m.appID))
	b.WriteString("  " + labelStyle.Render("mode="+m.mode))
	b.WriteString("\n\n")

	switch {
	case m.app == nil && m.err == nil:
		b.WriteString(m.spinner.View() + " waiting for first reading\n")

	case m.app == nil:
		b.WriteString(errorStyle.Render("✗ "+m.err.Error()) + "\n")

	default:
		if m.err != nil {
			b.WriteString(errorStyle.Render("✗ "+m.err.Error()) + "\n\n")
		}
		m.renderApp(&b)
	}

	b.WriteString("\n" + m.renderStatus())
	b.WriteString(helpStyle.Render("\nq quit · r refresh"))

	return boxStyle.Render(b.String())
}

// renderApp renders the instance gauge, history strip, and task list.
func (m Model) renderApp(b *strings.Builder) {
	fmt.Fprintf(b, "%s %s  %s %s\n",
		labelStyle.Render("instances"),
		valueStyle.Render(fmt.Sprintf("%d", m.app.Instances)),
		labelStyle.Render("running"),
		valueStyle.Render(fmt.Sprintf("%d", m.app.TasksRunning)),
	)
	b.WriteString(renderGauge(m.app.Instances, m.minInstances, m.maxInstances) + "\n")

	if len(m.history) > 1 {
		b.WriteString(labelStyle.Render("history   ") +
			renderHistory(m.history, m.minInstances, m.maxInstances) + "\n")
	}

	if len(m.app.Tasks) > 0 {
		b.WriteString("\n")
		for i, task := range m.app.Tasks {
			if i == maxTaskRows {
				fmt.Fprintf(b, "%s\n", labelStyle.Render(
					fmt.Sprintf("… and %d more", len(m.app.Tasks)-maxTaskRows)))
				break
			}
			marker := okStyle.Render("●")
			if task.State != "" && task.State != marathon.TaskRunning {
				marker = errorStyle.Render("●")
			}
			fmt.Fprintf(b, "%s %s  %s\n", marker, task.ID, labelStyle.Render(task.Host))
		}
	}
}

// renderStatus renders the refresh indicator line.
func (m Model) renderStatus() string {
	if m.fetching {
		return m.spinner.View() + " refreshing"
	}
	if m.fetched.IsZero() {
		return ""
	}
	return okStyle.Render(fmt.Sprintf("updated %s ago", time.Since(m.fetched).Round(time.Second)))
}

// renderGauge draws the instance count's position between the bounds.
func renderGauge(current, lo, hi int) string {
	pos := 0
	if hi > lo {
		pos = (current - lo) * (gaugeWidth - 1) / (hi - lo)
	}
	pos = max(0, min(pos, gaugeWidth-1))

	var bar strings.Builder
	for i := range gaugeWidth {
		if i == pos {
			bar.WriteString(valueStyle.Render("●"))
		} else {
			bar.WriteString(labelStyle.Render("─"))
		}
	}
	return labelStyle.Render(fmt.Sprintf("%4d ", lo)) + bar.String() +
		labelStyle.Render(fmt.Sprintf(" %d", hi))
}

// renderHistory draws recent instance counts as a sparkline scaled to the
// configured bounds.
func renderHistory(history []int, lo, hi int) string {
	var b strings.Builder
	for _, v := range history {
		idx := 0
		if hi > lo {
			idx = (v - lo) * (len(sparks) - 1) / (hi - lo)
		}
		idx = max(0, min(idx, len(sparks)-1))
		b.WriteRune(sparks[idx])
	}
	return b.String()
}
