// ABOUTME: Dashboard view showing pipeline totals and records needing attention
// ABOUTME: Stats are computed off the UI goroutine and dropped if the view was left
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/dealboard/viz"
)

func (m Model) loadDashboard() tea.Cmd {
	ctx, gen, database, now := m.ctx, m.gen, m.db, m.now()
	return func() tea.Msg {
		stats, err := viz.GenerateDashboardStats(ctx, database, now)
		if err != nil {
			return dashboardMsg{gen: gen, err: err}
		}
		return dashboardMsg{gen: gen, text: viz.RenderDashboard(stats)}
	}
}

func (m Model) renderDashboardView() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("DASHBOARD"))
	s.WriteString("\n")
	if m.busy && m.dashboard == "" {
		s.WriteString(mutedStyle.Render("loading…"))
		s.WriteString("\n")
	} else {
		s.WriteString(m.dashboard)
	}
	s.WriteString(helpStyle.Render("r: Refresh • Esc: Back • q: Quit"))
	return s.String()
}

func (m Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.cancel()
		return m, tea.Quit
	case "esc", "b", "d":
		m.nextGeneration()
		m.viewMode = ViewBoard
		return m, nil
	case "r":
		m.nextGeneration()
		m.busy = true
		m.dashboard = ""
		return m, m.loadDashboard()
	}
	return m, nil
}
