// ABOUTME: Tests for the deal edit form
// ABOUTME: Covers the stage to probability reset and contact name copy
package forms

import (
	"context"
	"errors"
	"testing"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectStageResetsProbability(t *testing.T) {
	f := NewDealForm(models.Deal{Stage: models.StageLead, Probability: 25})
	f.SelectStage(models.StageNegotiation)
	assert.Equal(t, 90, f.Deal.Probability)
	assert.False(t, f.CustomProbability())
}

func TestCustomProbabilitySurvivesUntilNextStage(t *testing.T) {
	f := NewDealForm(models.Deal{})
	assert.Equal(t, models.StageLead, f.Deal.Stage)
	assert.Equal(t, 25, f.Deal.Probability)

	f.SelectStage(models.StageProposal)
	f.SetProbability(60)
	assert.Equal(t, 60, f.Deal.Probability)
	assert.True(t, f.CustomProbability())

	f.SelectStage(models.StageClosed)
	assert.Equal(t, 100, f.Deal.Probability)
	assert.False(t, f.CustomProbability())

	f.SetProbability(140)
	assert.Equal(t, 100, f.Deal.Probability)
}

func TestDealFormValidation(t *testing.T) {
	store := &fakeStore[models.Deal]{}
	f := NewDealForm(models.Deal{Title: "Seats"})

	_, err := f.Submit(context.Background(), store, nil)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Please enter a valid deal value", ve.Fields["value"])
	assert.Equal(t, "Please select a contact", ve.Fields["contact_id"])
	assert.Equal(t, 0, store.calls())
}

func TestDealFormSubmitCopiesContactName(t *testing.T) {
	database := db.New(db.Seed{
		Contacts: []models.Contact{{ID: 3, Name: "Grace", Email: "grace@example.com"}},
	}, db.StoreOptions{})
	ctx := context.Background()

	f := NewDealForm(models.Deal{Title: "Compiler", Value: decimal.NewFromInt(5000), ContactID: 3})
	f.SelectStage(models.StageQualified)
	deal, err := f.Submit(ctx, database.Deals, database.Contacts)
	require.NoError(t, err)
	assert.Equal(t, "Grace", deal.ContactName)
	assert.Equal(t, 50, deal.Probability)

	_, err = database.Contacts.Update(ctx, 3, models.Contact{Name: "Grace Hopper"})
	require.NoError(t, err)
	stale, err := database.Deals.GetByID(ctx, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace", stale.ContactName)
}

func TestDealFormUnknownContact(t *testing.T) {
	database := db.New(db.Seed{}, db.StoreOptions{})
	f := NewDealForm(models.Deal{Title: "Ghost", Value: decimal.NewFromInt(1), ContactID: 8})
	_, err := f.Submit(context.Background(), database.Deals, database.Contacts)
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.Equal(t, 0, database.Deals.Len())
}

func seededDealDB(t *testing.T) *db.Database {
	t.Helper()
	return db.New(db.Seed{
		Contacts: []models.Contact{{ID: 3, Name: "Grace", Email: "grace@example.com"}},
		Deals: []models.Deal{{
			ID: 7, Title: "Compiler", Value: decimal.NewFromInt(5000), ContactID: 3, ContactName: "Grace",
			Stage: models.StageLead, Probability: 25, Notes: "Waiting on budget",
		}},
	}, db.StoreOptions{})
}

func TestDealFormStageChangeStoresDefaultProbability(t *testing.T) {
	database := seededDealDB(t)
	ctx := context.Background()
	current, err := database.Deals.GetByID(ctx, 7)
	require.NoError(t, err)

	f := NewDealForm(current)
	f.SelectStage(models.StageNegotiation)
	_, err = f.Submit(ctx, database.Deals, database.Contacts)
	require.NoError(t, err)

	stored, err := database.Deals.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.StageNegotiation, stored.Stage)
	assert.Equal(t, 90, stored.Probability)
}

func TestDealFormStoresZeroProbabilityAndClearedNotes(t *testing.T) {
	database := seededDealDB(t)
	ctx := context.Background()
	current, err := database.Deals.GetByID(ctx, 7)
	require.NoError(t, err)

	f := NewDealForm(current)
	f.SetProbability(0)
	f.Deal.Notes = ""
	saved, err := f.Submit(ctx, database.Deals, database.Contacts)
	require.NoError(t, err)
	assert.Equal(t, 0, saved.Probability)

	stored, err := database.Deals.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Probability)
	assert.Empty(t, stored.Notes)
	assert.Equal(t, models.StageLead, stored.Stage)
}
