// ABOUTME: Deal editor view with a stage selector
// ABOUTME: Choosing a stage resets probability to its default unless the user types one afterwards
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/dealboard/forms"
	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/notify"
	"github.com/shopspring/decimal"
)

// Focus slots in the edit form.
const (
	focusTitle = iota
	focusValue
	focusStage
	focusProbability
	focusCount
)

type editForm struct {
	form        *forms.DealForm
	title       textinput.Model
	value       textinput.Model
	probability textinput.Model
	focus       int
	err         string
}

func (m *Model) openEdit(deal models.Deal) {
	e := &editForm{form: forms.NewDealForm(deal)}

	e.title = textinput.New()
	e.title.Placeholder = "Title"
	e.title.CharLimit = 100
	e.title.SetValue(deal.Title)

	e.value = textinput.New()
	e.value.Placeholder = "Value"
	e.value.CharLimit = 20
	e.value.SetValue(deal.Value.String())

	e.probability = textinput.New()
	e.probability.Placeholder = "Probability"
	e.probability.CharLimit = 3
	e.probability.SetValue(strconv.Itoa(e.form.Deal.Probability))

	e.setFocus(focusTitle)
	m.edit = e
	m.viewMode = ViewEdit
}

func (e *editForm) setFocus(focus int) {
	e.focus = focus
	e.title.Blur()
	e.value.Blur()
	e.probability.Blur()
	switch focus {
	case focusTitle:
		e.title.Focus()
	case focusValue:
		e.value.Focus()
	case focusProbability:
		e.probability.Focus()
	}
}

func (e *editForm) selectStage(stage models.Stage) {
	e.form.SelectStage(stage)
	e.probability.SetValue(strconv.Itoa(e.form.Deal.Probability))
}

// sync copies the text inputs onto the form's deal. A value that does not
// parse is left zero so validation reports it.
func (e *editForm) sync() {
	e.form.Deal.Title = strings.TrimSpace(e.title.Value())
	v, err := decimal.NewFromString(strings.TrimSpace(e.value.Value()))
	if err != nil {
		v = decimal.Zero
	}
	e.form.Deal.Value = v
}

func (m Model) renderEditView() string {
	var s strings.Builder
	e := m.edit

	s.WriteString(titleStyle.Render(fmt.Sprintf("EDIT DEAL #%d", e.form.Deal.ID)))
	s.WriteString("\n")

	row := func(focus int, label, field string) {
		cursor := "  "
		if e.focus == focus {
			cursor = "> "
		}
		s.WriteString(fmt.Sprintf("%s%-12s %s\n", cursor, label, field))
	}
	row(focusTitle, "Title", e.title.View())
	row(focusValue, "Value", e.value.View())
	row(focusStage, "Stage", m.renderStageSelector())

	probability := e.probability.View()
	if !e.form.CustomProbability() {
		probability += mutedStyle.Render("  (stage default)")
	}
	row(focusProbability, "Probability", probability)

	s.WriteString(fmt.Sprintf("  %-12s %s\n", "Contact", e.form.Deal.ContactName))

	if e.err != "" {
		s.WriteString("\n")
		s.WriteString(failureStyle.Render(e.err))
		s.WriteString("\n")
	}
	if m.busy {
		s.WriteString("\n")
		s.WriteString(mutedStyle.Render("saving…"))
		s.WriteString("\n")
	}

	s.WriteString(m.renderEditHelp())
	return s.String()
}

func (m Model) renderStageSelector() string {
	parts := make([]string, len(models.Stages))
	for i, stage := range models.Stages {
		if stage == m.edit.form.Deal.Stage {
			parts[i] = selectedStyle.Render(" " + string(stage) + " ")
		} else {
			parts[i] = mutedStyle.Render(" " + string(stage) + " ")
		}
	}
	return strings.Join(parts, "")
}

func (m Model) renderEditHelp() string {
	help := []string{
		"Tab: Next field",
		"←/→: Change stage",
		"Enter: Save",
		"Esc: Cancel",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	e := m.edit
	switch msg.String() {
	case "esc":
		m.nextGeneration()
		m.edit = nil
		m.viewMode = ViewBoard
		return m, nil
	case "tab", "down":
		e.setFocus((e.focus + 1) % focusCount)
		return m, nil
	case "shift+tab", "up":
		e.setFocus((e.focus + focusCount - 1) % focusCount)
		return m, nil
	case "enter":
		if m.busy {
			return m, nil
		}
		e.sync()
		if err := e.form.Validate(); err != nil {
			e.err = notify.Message(err)
			return m, nil
		}
		e.err = ""
		m.busy = true
		return m, m.saveDeal()
	}

	var cmd tea.Cmd
	switch e.focus {
	case focusTitle:
		e.title, cmd = e.title.Update(msg)
	case focusValue:
		e.value, cmd = e.value.Update(msg)
	case focusStage:
		switch msg.String() {
		case "left", "h":
			e.selectStage(e.form.Deal.Stage.Prev())
		case "right", "l":
			e.selectStage(e.form.Deal.Stage.Next())
		}
	case focusProbability:
		before := e.probability.Value()
		e.probability, cmd = e.probability.Update(msg)
		if after := e.probability.Value(); after != before {
			if p, err := strconv.Atoi(strings.TrimSpace(after)); err == nil {
				e.form.SetProbability(p)
			}
		}
	}
	return m, cmd
}

func (m Model) saveDeal() tea.Cmd {
	form := *m.edit.form
	ctx, gen, database := m.ctx, m.gen, m.db
	return func() tea.Msg {
		deal, err := form.Submit(ctx, database.Deals, database.Contacts)
		return dealSavedMsg{gen: gen, deal: deal, err: err}
	}
}

func (m Model) handleSaved(msg dealSavedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen || m.edit == nil {
		return m, nil
	}
	m.busy = false
	if msg.err != nil {
		m.logger.Sugar().Errorw("failed to save deal", "error", msg.err)
		m.edit.err = notify.Message(msg.err)
		return m, nil
	}
	m.board.Replace(msg.deal)
	m.setStatus(notify.LevelSuccess, "Deal saved")
	m.edit = nil
	m.viewMode = ViewBoard
	m.follow(msg.deal)
	return m, nil
}
