// ABOUTME: Tests for the pipeline board and stage transitions
// ABOUTME: Counts store writes and notifications around each move
package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/notify"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

type countingStore struct {
	*db.DealStore
	updates int
	patches []models.Deal
	fail    error
}

func (c *countingStore) Update(ctx context.Context, id int, patch models.Deal) (models.Deal, error) {
	c.updates++
	c.patches = append(c.patches, patch)
	if c.fail != nil {
		return models.Deal{}, c.fail
	}
	return c.DealStore.Update(ctx, id, patch)
}

func setupBoard(t *testing.T) (*Board, *countingStore, *notify.Recorder) {
	t.Helper()
	created := now.AddDate(0, -1, 0)
	store := &countingStore{DealStore: db.NewDealStore([]models.Deal{
		{ID: 1, Title: "Seats", Value: decimal.NewFromInt(1000), Stage: models.StageLead, Probability: 25, CreatedAt: created, UpdatedAt: created},
		{ID: 2, Title: "Upgrade", Value: decimal.NewFromInt(3000), Stage: models.StageProposal, Probability: 75, CreatedAt: created, UpdatedAt: created},
	}, db.StoreOptions{Now: func() time.Time { return now }})}
	rec := &notify.Recorder{}
	board := NewBoard(store, rec, WithClock(func() time.Time { return now }))
	require.NoError(t, board.Load(context.Background()))
	return board, store, rec
}

func TestMoveSameStageIsNoop(t *testing.T) {
	board, store, rec := setupBoard(t)

	d, err := board.Move(context.Background(), 2, models.StageProposal)
	require.NoError(t, err)
	assert.Equal(t, models.StageProposal, d.Stage)
	assert.Equal(t, 0, store.updates)
	assert.Empty(t, rec.Notes())
}

func TestMoveWritesOnlyStageAndUpdatedAt(t *testing.T) {
	board, store, rec := setupBoard(t)

	d, err := board.Move(context.Background(), 1, models.StageNegotiation)
	require.NoError(t, err)
	assert.Equal(t, models.StageNegotiation, d.Stage)
	assert.Equal(t, 25, d.Probability, "drag does not touch probability")
	assert.True(t, d.UpdatedAt.Equal(now))

	require.Len(t, store.patches, 1)
	assert.Equal(t, models.Deal{Stage: models.StageNegotiation, UpdatedAt: now}, store.patches[0])

	onBoard, ok := board.Deal(1)
	require.True(t, ok)
	assert.Equal(t, models.StageNegotiation, onBoard.Stage)
	assert.Equal(t, []notify.Note{{Level: notify.LevelSuccess, Message: "Deal moved to Negotiation"}}, rec.Notes())
}

func TestMoveAllowsAnyJump(t *testing.T) {
	board, _, _ := setupBoard(t)
	_, err := board.Move(context.Background(), 1, models.StageClosed)
	require.NoError(t, err)
	d, err := board.Move(context.Background(), 1, models.StageQualified)
	require.NoError(t, err)
	assert.Equal(t, models.StageQualified, d.Stage)
}

func TestMoveFailureLeavesBoardUnchanged(t *testing.T) {
	board, store, rec := setupBoard(t)
	store.fail = errors.New("store offline")

	_, err := board.Move(context.Background(), 1, models.StageClosed)
	require.Error(t, err)

	d, ok := board.Deal(1)
	require.True(t, ok)
	assert.Equal(t, models.StageLead, d.Stage)
	assert.Equal(t, []notify.Note{{Level: notify.LevelFailure, Message: MoveFailedMessage}}, rec.Notes())
	assert.Equal(t, 1, board.Columns()[0].Stats.Count)
}

func TestMoveAbandonedDoesNotApply(t *testing.T) {
	store := db.NewDealStore([]models.Deal{{ID: 1, Stage: models.StageLead}},
		db.StoreOptions{Latency: time.Hour})
	rec := &notify.Recorder{}
	board := NewBoard(store, rec)
	board.Replace(models.Deal{ID: 1, Stage: models.StageLead})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := board.Move(ctx, 1, models.StageClosed)
	assert.ErrorIs(t, err, context.Canceled)
	d, _ := board.Deal(1)
	assert.Equal(t, models.StageLead, d.Stage)
	assert.Empty(t, rec.Notes())
}

func TestMoveUnknownDealOrStage(t *testing.T) {
	board, store, rec := setupBoard(t)

	_, err := board.Move(context.Background(), 99, models.StageClosed)
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = board.Move(context.Background(), 1, "Won")
	assert.Equal(t, notify.ValidationFailed, notify.Classify(err))

	assert.Equal(t, 0, store.updates)
	assert.Len(t, rec.Notes(), 2)
}

func TestColumns(t *testing.T) {
	board, _, _ := setupBoard(t)
	board.Replace(models.Deal{ID: 3, Stage: "Archived", Value: decimal.NewFromInt(10)})

	cols := board.Columns()
	require.Len(t, cols, 5)
	assert.Equal(t, models.StageLead, cols[0].Stage)
	assert.Len(t, cols[0].Deals, 1)
	assert.Len(t, cols[2].Deals, 1)
	total := 0
	for _, c := range cols {
		total += len(c.Deals)
	}
	assert.Equal(t, 2, total)

	board.Remove(3)
	assert.Len(t, board.Deals(), 2)
}

func TestMoveNotifiesCallerScopedRecorder(t *testing.T) {
	board, store, rec := setupBoard(t)

	first, second := &notify.Recorder{}, &notify.Recorder{}
	_, err := board.Move(notify.WithNotifier(context.Background(), first), 1, models.StageQualified)
	require.NoError(t, err)

	store.fail = errors.New("disk on fire")
	_, err = board.Move(notify.WithNotifier(context.Background(), second), 2, models.StageClosed)
	require.Error(t, err)

	assert.Equal(t, []notify.Note{{Level: notify.LevelSuccess, Message: "Deal moved to Qualified"}}, first.Notes())
	assert.Equal(t, []notify.Note{{Level: notify.LevelFailure, Message: MoveFailedMessage}}, second.Notes())
	assert.Len(t, rec.Notes(), 2)
}
