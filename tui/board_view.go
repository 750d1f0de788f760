// ABOUTME: Pipeline board view with one column per stage
// ABOUTME: Handles cursor movement and keyboard drag-and-drop between stages
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/pipeline"
)

func (m Model) renderBoardView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("DEALBOARD PIPELINE"))
	s.WriteString("\n")

	if m.loadErr != nil {
		s.WriteString(failureStyle.Render("Could not load deals: " + m.loadErr.Error()))
		s.WriteString("\n")
		s.WriteString(m.renderBoardHelp())
		return s.String()
	}

	cols := m.board.Columns()
	width := max(m.width/len(cols)-2, 18)
	rendered := make([]string, len(cols))
	for i, col := range cols {
		rendered[i] = m.renderColumn(i, col, width)
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	s.WriteString("\n")

	sum := m.board.Summary()
	s.WriteString(fmt.Sprintf("Pipeline %s • %d deals • %d closed • conversion %s • avg %s",
		pipeline.FormatCurrency(sum.TotalPipelineValue), sum.TotalCount, sum.ClosedCount,
		pipeline.FormatPercent(sum.ConversionRate), pipeline.FormatCurrency(sum.AvgDealSize)))
	s.WriteString("\n")

	if m.busy {
		s.WriteString(mutedStyle.Render("saving…"))
	} else {
		s.WriteString(m.renderStatus())
	}
	s.WriteString("\n")
	s.WriteString(m.renderBoardHelp())
	return s.String()
}

func (m Model) renderColumn(index int, col pipeline.Column, width int) string {
	var s strings.Builder
	s.WriteString(lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d %s", index+1, col.Stage)))
	s.WriteString("\n")
	s.WriteString(mutedStyle.Render(fmt.Sprintf("%d • %s", col.Stats.Count, pipeline.FormatCurrency(col.Stats.TotalValue))))
	s.WriteString("\n\n")

	if len(col.Deals) == 0 {
		s.WriteString(mutedStyle.Render("(empty)"))
	}
	for i, d := range col.Deals {
		card := fmt.Sprintf("%s\n%s %d%%", truncate(d.Title, width-2), pipeline.FormatCurrency(d.Value), d.Probability)
		if index == m.col && i == m.row {
			card = selectedStyle.Width(width - 2).Render(card)
		}
		s.WriteString(card)
		s.WriteString("\n")
	}

	style := columnStyle
	if index == m.col {
		style = activeColumnStyle
	}
	return style.Width(width).Render(s.String())
}

func (m Model) renderBoardHelp() string {
	help := []string{
		"←/→ ↑/↓: Select",
		"Shift+←/→: Move stage",
		"1-5: Move to stage",
		"e: Edit",
		"d: Dashboard",
		"r: Reload",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q":
		m.cancel()
		return m, tea.Quit
	case "left", "h":
		if m.col > 0 {
			m.col--
			m.row = 0
		}
	case "right", "l":
		if m.col < len(models.Stages)-1 {
			m.col++
			m.row = 0
		}
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		m.row++
		m.clampCursor()
	case "shift+left", "shift+right":
		deal, ok := m.selected()
		if !ok {
			return m, nil
		}
		target := deal.Stage.Prev()
		if key == "shift+right" {
			target = deal.Stage.Next()
		}
		return m.move(deal, target)
	case "1", "2", "3", "4", "5":
		deal, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m.move(deal, models.Stages[int(key[0]-'1')])
	case "e", "enter":
		deal, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.openEdit(deal)
	case "d":
		m.nextGeneration()
		m.viewMode = ViewDashboard
		m.dashboard = ""
		m.busy = true
		return m, m.loadDashboard()
	case "r":
		m.nextGeneration()
		m.busy = true
		m.status = ""
		return m, m.loadBoard()
	}
	return m, nil
}

// move drops the deal onto target. Moving onto the current stage does
// nothing.
func (m Model) move(deal models.Deal, target models.Stage) (tea.Model, tea.Cmd) {
	if deal.Stage == target {
		return m, nil
	}
	m.busy = true
	ctx, gen, board := m.ctx, m.gen, m.board
	return m, func() tea.Msg {
		moved, err := board.Move(ctx, deal.ID, target)
		return dealMovedMsg{gen: gen, dealID: deal.ID, deal: moved, err: err}
	}
}

func (m Model) selected() (models.Deal, bool) {
	cols := m.board.Columns()
	if m.col < 0 || m.col >= len(cols) {
		return models.Deal{}, false
	}
	deals := cols[m.col].Deals
	if m.row < 0 || m.row >= len(deals) {
		return models.Deal{}, false
	}
	return deals[m.row], true
}

// follow puts the cursor on deal in its current column.
func (m *Model) follow(deal models.Deal) {
	i := deal.Stage.Index()
	if i < 0 {
		return
	}
	m.col = i
	for row, d := range m.board.Columns()[i].Deals {
		if d.ID == deal.ID {
			m.row = row
			return
		}
	}
}

func (m *Model) clampCursor() {
	cols := m.board.Columns()
	m.col = min(max(m.col, 0), len(cols)-1)
	n := len(cols[m.col].Deals)
	m.row = min(m.row, n-1)
	m.row = max(m.row, 0)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 1 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
