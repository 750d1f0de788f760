// ABOUTME: Tests for the pipeline board TUI
// ABOUTME: Drives the model with key messages and runs its commands synchronously
package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func setupModel(t *testing.T) (Model, *db.Database) {
	t.Helper()
	clock := func() time.Time { return testNow }
	database, err := db.Open(db.Options{Now: clock})
	require.NoError(t, err)

	m := NewModel(Options{DB: database, Now: clock})
	m = run(t, m, m.Init())
	return m, database
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	next, _ := m.Update(cmd())
	return next.(Model)
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func dealByID(t *testing.T, database *db.Database, id int) models.Deal {
	t.Helper()
	d, err := database.Deals.GetByID(context.Background(), id)
	require.NoError(t, err)
	return d
}

func TestBoardRendersColumns(t *testing.T) {
	m, _ := setupModel(t)

	view := m.View()
	for _, stage := range models.StageNames() {
		assert.Contains(t, view, stage)
	}
	assert.Contains(t, view, "$525,000")
	assert.Contains(t, view, "Bluefin pilot")
}

func TestShiftRightMovesDealOneStage(t *testing.T) {
	m, database := setupModel(t)

	deal, ok := m.selected()
	require.True(t, ok)
	require.Equal(t, "Bluefin pilot", deal.Title)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyShiftRight})
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	m = run(t, m, cmd)

	stored := dealByID(t, database, deal.ID)
	assert.Equal(t, models.StageQualified, stored.Stage)
	assert.Equal(t, 25, stored.Probability)
	assert.Equal(t, 1, m.col)
	assert.Equal(t, "Deal moved to Qualified", m.status)
	assert.False(t, m.busy)
}

func TestShiftLeftOnFirstStageIsNoop(t *testing.T) {
	m, _ := setupModel(t)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyShiftLeft})
	assert.Nil(t, cmd)
	assert.False(t, m.busy)
}

func TestNumberKeyJumpsToStage(t *testing.T) {
	m, database := setupModel(t)

	m, cmd := press(t, m, keys("5"))
	m = run(t, m, cmd)

	assert.Equal(t, models.StageClosed, dealByID(t, database, 3).Stage)
	assert.Equal(t, 4, m.col)
	selected, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, 3, selected.ID)
}

func TestAbandonedMoveIsDropped(t *testing.T) {
	m, database := setupModel(t)

	m, moveCmd := press(t, m, tea.KeyMsg{Type: tea.KeyShiftRight})
	require.NotNil(t, moveCmd)

	m, reloadCmd := press(t, m, keys("r"))
	m = run(t, m, moveCmd)
	assert.Empty(t, m.status)
	m = run(t, m, reloadCmd)

	assert.Equal(t, models.StageLead, dealByID(t, database, 3).Stage)
	assert.Equal(t, 0, m.col)
}

func TestEditStageResetsProbability(t *testing.T) {
	m, database := setupModel(t)

	m, _ = press(t, m, keys("e"))
	require.Equal(t, ViewEdit, m.viewMode)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, focusStage, m.edit.focus)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "50", m.edit.probability.Value())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m.edit.probability.SetValue("")
	m, _ = press(t, m, keys("6"))
	m, _ = press(t, m, keys("0"))
	assert.True(t, m.edit.form.CustomProbability())

	// Choosing a stage after typing discards the typed probability.
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "75", m.edit.probability.Value())

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m = run(t, m, cmd)

	stored := dealByID(t, database, 3)
	assert.Equal(t, models.StageProposal, stored.Stage)
	assert.Equal(t, 75, stored.Probability)
	assert.Equal(t, ViewBoard, m.viewMode)
	assert.Equal(t, "Deal saved", m.status)
}

func TestEditKeepsTypedProbability(t *testing.T) {
	m, database := setupModel(t)

	m, _ = press(t, m, keys("e"))
	m.edit.setFocus(focusStage)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m.edit.probability.SetValue("")
	m, _ = press(t, m, keys("6"))
	m, _ = press(t, m, keys("0"))

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = run(t, m, cmd)

	stored := dealByID(t, database, 3)
	assert.Equal(t, models.StageQualified, stored.Stage)
	assert.Equal(t, 60, stored.Probability)
}

func TestEditRejectsInvalidValue(t *testing.T) {
	m, _ := setupModel(t)

	m, _ = press(t, m, keys("e"))
	m.edit.value.SetValue("")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Equal(t, ViewEdit, m.viewMode)
	assert.Contains(t, m.edit.err, "valid deal value")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewBoard, m.viewMode)
	assert.Nil(t, m.edit)
}

func TestDashboardView(t *testing.T) {
	m, _ := setupModel(t)

	m, cmd := press(t, m, keys("d"))
	require.Equal(t, ViewDashboard, m.viewMode)
	assert.Contains(t, m.View(), "loading")
	m = run(t, m, cmd)
	assert.Contains(t, m.View(), "PIPELINE OVERVIEW")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewBoard, m.viewMode)
}

func TestQuit(t *testing.T) {
	m, _ := setupModel(t)

	_, cmd := press(t, m, keys("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
