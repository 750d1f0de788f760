// ABOUTME: Tests for the generic record store
// ABOUTME: Covers Id assignment, patch merging, not-found errors and abandonment
package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harperreed/dealboard/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAssignsIncreasingIDs(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	first, err := database.Contacts.Create(ctx, models.Contact{ID: 99, Name: "Cleo"})
	require.NoError(t, err)
	second, err := database.Contacts.Create(ctx, models.Contact{Name: "Dev"})
	require.NoError(t, err)

	assert.Equal(t, 5, first.ID, "ids start above the highest seeded id")
	assert.Equal(t, 6, second.ID)
	assert.Equal(t, testNow, first.CreatedAt)
}

func TestCreateOnEmptyStoreStartsAtOne(t *testing.T) {
	store := NewQuoteStore(nil, StoreOptions{Now: fixedClock})
	q, err := store.Create(context.Background(), models.Quote{Title: "First"})
	require.NoError(t, err)
	assert.Equal(t, 1, q.ID)
	assert.Equal(t, models.QuoteDraft, q.Status)
}

func TestIDsAreNotReusedAfterDeletingLowerRecords(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	_, err := database.Contacts.Delete(ctx, 1)
	require.NoError(t, err)
	c, err := database.Contacts.Create(ctx, models.Contact{Name: "Eve"})
	require.NoError(t, err)
	assert.Equal(t, 5, c.ID)
}

func TestGetAllReturnsCopies(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	all, err := database.Deals.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	all[0].Title = "mutated"

	again, err := database.Deals.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Seats", again.Title)
}

func TestUpdatePreservesID(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	updated, err := database.Deals.Update(ctx, 1, models.Deal{ID: 42, Title: "Seats v2"})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ID)
	assert.Equal(t, "Seats v2", updated.Title)

	_, err = database.Deals.GetByID(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMergesOnlyPresentFields(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	updated, err := database.Deals.Update(ctx, 1, models.Deal{Stage: models.StageNegotiation})
	require.NoError(t, err)
	assert.Equal(t, models.StageNegotiation, updated.Stage)
	assert.Equal(t, "Seats", updated.Title)
	assert.Equal(t, 25, updated.Probability)
	assert.True(t, updated.Value.Equal(decimal.NewFromInt(1000)))
	assert.True(t, updated.UpdatedAt.Equal(testNow))
}

func TestUpdateMissingRecord(t *testing.T) {
	database := setupTestDB(t)
	_, err := database.Companies.Update(context.Background(), 77, models.Company{Name: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "company with ID 77")
}

func TestReplaceClearsZeroFields(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	created, err := database.Deals.Create(ctx, models.Deal{Title: "Seats", Probability: 40, Notes: "call back"})
	require.NoError(t, err)

	replaced, err := database.Deals.Replace(ctx, created.ID, models.Deal{ID: 99, Title: "Seats"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, replaced.ID)
	assert.Equal(t, 0, replaced.Probability)
	assert.Empty(t, replaced.Notes)
	assert.True(t, replaced.CreatedAt.Equal(created.CreatedAt))
	assert.True(t, replaced.UpdatedAt.Equal(testNow))

	stored, err := database.Deals.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Probability)
}

func TestReplaceKeepsTableFields(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	replaced, err := database.Tables.Replace(ctx, 1, models.Table{Name: "vendors", Description: ""})
	require.NoError(t, err)
	assert.Equal(t, "vendors", replaced.Name)
	assert.Empty(t, replaced.Description)
	require.Len(t, replaced.Fields, 1)
	assert.Equal(t, "tier", replaced.Fields[0].Name)
}

func TestReplaceMissingRecord(t *testing.T) {
	database := setupTestDB(t)
	_, err := database.Contacts.Replace(context.Background(), 77, models.Contact{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteThenGetFails(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	removed, err := database.Companies.Delete(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Hooli", removed.Name)

	_, err = database.Companies.GetByID(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = database.Companies.Delete(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteDoesNotCascade(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	_, err := database.Contacts.Delete(ctx, 1)
	require.NoError(t, err)
	deals, err := database.Deals.GetByContactID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, deals, 1)
}

func TestAbandonedOperationDoesNotMutate(t *testing.T) {
	store := NewDealStore([]models.Deal{{ID: 1, Title: "Seats", Stage: models.StageLead}},
		StoreOptions{Latency: time.Hour, Now: fixedClock})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := store.Update(ctx, 1, models.Deal{Stage: models.StageClosed})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = store.Create(ctx, models.Deal{Title: "new"})
	assert.ErrorIs(t, err, context.Canceled)

	store.latency = 0
	d, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.StageLead, d.Stage)
	assert.Equal(t, 1, store.Len())
}

func TestLatencyIsObserved(t *testing.T) {
	store := NewCompanyStore(nil, StoreOptions{Latency: 20 * time.Millisecond})
	start := time.Now()
	_, err := store.GetAll(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestMutateErrorLeavesRecord(t *testing.T) {
	database := setupTestDB(t)
	boom := errors.New("boom")
	_, err := database.Deals.Mutate(context.Background(), 1, func(d *models.Deal) error {
		d.Title = "changed"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	d, err := database.Deals.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Seats", d.Title)
}
