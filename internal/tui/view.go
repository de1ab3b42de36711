// internal/tui/view.go
//
// Rendering. The screen is a stack of panels: header, filter form, the
// session line (spinner + progress while a request runs), the service
// status panel with a latency sparkline, the result table and the log
// tail.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")).
			Width(18)

	focusedLabelStyle = labelStyle.
				Foreground(lipgloss.Color("#5B8DEF")).
				Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#50FA7B"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

func (a *App) View() string {
	sections := []string{
		headerStyle.Render("◆ DIPSCAN"),
		a.renderFilterPanel(),
		a.renderSessionLine(),
		a.renderStatusPanel(),
		a.renderResultsPanel(),
	}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	sections = append(sections, a.help.View(a.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) renderFilterPanel() string {
	lines := make([]string, 0, len(a.fields))
	for i := range a.fields {
		label := labelStyle
		if a.zone == focusFilters && i == a.focusField {
			label = focusedLabelStyle
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			label.Render(a.fields[i].label),
			a.fields[i].View(),
		))
	}
	body := panelTitleStyle.Render("FILTERS") + "\n" + strings.Join(lines, "\n")
	return panelStyle.Render(body)
}

func (a *App) renderSessionLine() string {
	switch a.state {
	case stateRequesting:
		return fmt.Sprintf("%s analyzing… %s %s",
			a.spinner.View(),
			a.progress.ViewAs(a.progressFrac),
			dimStyle.Render(fmt.Sprintf("%.1fs", a.elapsed.Seconds())))
	case stateFailed:
		return errStyle.Render("✗ " + a.errMsg)
	case stateDisplaying:
		return okStyle.Render(fmt.Sprintf("✓ %d records", len(a.records))) +
			dimStyle.Render(fmt.Sprintf("  (%.1fs)", a.elapsed.Seconds()))
	default:
		return dimStyle.Render("enter to analyze")
	}
}

func (a *App) renderStatusPanel() string {
	var head string
	if !a.statusSeen {
		head = dimStyle.Render("● probing…")
	} else if a.online {
		head = okStyle.Render("● online") +
			dimStyle.Render(fmt.Sprintf("  upstream requests: %d", a.requests))
	} else {
		head = errStyle.Render("● offline") + dimStyle.Render("  "+a.statusErr)
	}
	body := panelTitleStyle.Render("SERVICE") + "\n" + head
	if spark := a.renderSparkline(); spark != "" {
		body += "\n" + spark + "\n" +
			dimStyle.Render(fmt.Sprintf("latency %.0fms", a.latencies[len(a.latencies)-1]))
	}
	return panelStyle.Render(body)
}

func (a *App) renderSparkline() string {
	if len(a.latencies) < 2 {
		return ""
	}
	a.canvas.Fill([][]float64{a.latencies})
	return strings.TrimRight(a.canvas.String(), "\n")
}

func (a *App) renderResultsPanel() string {
	title := panelTitleStyle.Render("RESULTS")
	if a.state != stateDisplaying {
		return panelStyle.Render(title + "\n" + dimStyle.Render("No results yet."))
	}
	if len(a.records) == 0 {
		return panelStyle.Render(title + "\n" + dimStyle.Render("No assets matched the filters."))
	}
	body := title + "\n" + a.table.View()
	if row := a.table.Cursor(); row >= 0 && row < a.revealed {
		body += "\n" + dimStyle.Render(assetURL(a.records[row].ID))
	}
	return panelStyle.Render(body)
}

func (a *App) renderLogPanel() string {
	lines := a.book.Tail(6)
	if len(lines) == 0 {
		return ""
	}
	body := panelTitleStyle.Render("LOG") + "\n" +
		dimStyle.Render(strings.Join(lines, "\n"))
	return panelStyle.Render(body)
}
