// ABOUTME: Tests for dashboard statistics and graph generation
// ABOUTME: Runs against a small seeded database with a fixed clock
package viz

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *db.Database {
	t.Helper()
	recent := now.AddDate(0, 0, -2)
	old := now.AddDate(0, -2, 0)
	return db.New(db.Seed{
		Companies: []models.Company{{ID: 1, Name: "Initech", Industry: "Software"}},
		Contacts: []models.Contact{
			{ID: 1, Name: "Ada", Email: "ada@initech.example", CompanyID: 1, Status: models.ContactActive, LastContactedAt: &recent},
			{ID: 2, Name: "Brian", Email: "brian@example.com", Status: models.ContactProspect},
			{ID: 3, Name: "Cleo", Email: "cleo@example.com", Status: models.ContactActive, LastContactedAt: &old},
		},
		Deals: []models.Deal{
			{ID: 1, Title: "Seats", Value: decimal.NewFromInt(1000), ContactID: 1, Stage: models.StageLead, UpdatedAt: recent},
			{ID: 2, Title: "Upgrade", Value: decimal.NewFromInt(3000), ContactID: 1, Stage: models.StageClosed, UpdatedAt: old},
			{ID: 3, Title: "Pilot", Value: decimal.NewFromInt(500), ContactID: 2, Stage: models.StageProposal, UpdatedAt: old},
		},
		Activities: []models.Activity{
			{ID: 1, Type: models.ActivityCall, ContactID: 1, DealID: 1, Subject: "Kickoff", Date: recent},
			{ID: 2, Type: models.ActivityNote, ContactID: 1, Subject: "Old note", Date: old},
		},
		Quotes: []models.Quote{{ID: 1, Status: models.QuoteSent}, {ID: 2, Status: models.QuoteAccepted}},
	}, db.StoreOptions{Now: func() time.Time { return now }})
}

func TestGenerateDashboardStats(t *testing.T) {
	stats, err := GenerateDashboardStats(context.Background(), setupTestDB(t), now)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalContacts)
	assert.Equal(t, 2, stats.ActiveContacts)
	assert.Equal(t, 1, stats.TotalCompanies)
	assert.Equal(t, 3, stats.TotalDeals)
	assert.Equal(t, 1, stats.OpenQuotes)
	require.Len(t, stats.RecentActivity, 1)
	assert.Equal(t, "Call: Kickoff", stats.RecentActivity[0].Description)

	require.Len(t, stats.StaleContacts, 2)
	assert.Equal(t, -1, stats.StaleContacts[0].DaysSince)
	assert.Equal(t, "Cleo", stats.StaleContacts[1].Name)

	require.Len(t, stats.StaleDeals, 1, "closed deals never go stale")
	assert.Equal(t, "Pilot", stats.StaleDeals[0].Title)
	assert.Equal(t, 1, stats.Pipeline.ClosedCount)
}

func TestRenderDashboard(t *testing.T) {
	stats, err := GenerateDashboardStats(context.Background(), setupTestDB(t), now)
	require.NoError(t, err)
	out := RenderDashboard(stats)

	assert.Contains(t, out, "PIPELINE OVERVIEW")
	assert.Contains(t, out, "Negotiation")
	assert.Contains(t, out, "$4,500")
	assert.Contains(t, out, "33.3%")
	assert.Contains(t, out, "NEEDS ATTENTION")
	assert.Equal(t, 50, strings.Count(out, "░")+strings.Count(out, "█"), "one ten-block bar per stage")
}

func TestGeneratePipelineGraph(t *testing.T) {
	dot, err := NewGraphGenerator(setupTestDB(t)).GeneratePipelineGraph(context.Background())
	require.NoError(t, err)
	assert.Contains(t, dot, "digraph")
	assert.Contains(t, dot, "stage_Lead")
	assert.Contains(t, dot, "deal_2")
}

func TestGenerateCompanyGraph(t *testing.T) {
	gen := NewGraphGenerator(setupTestDB(t))
	dot, err := gen.GenerateCompanyGraph(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, dot, "company_1")
	assert.Contains(t, dot, "contact_1")
	assert.NotContains(t, dot, "contact_2")
	assert.Contains(t, dot, "deal_1")
	assert.NotContains(t, dot, "deal_3")

	_, err = gen.GenerateCompanyGraph(context.Background(), 42)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestGenerateContactAndCompleteGraphs(t *testing.T) {
	gen := NewGraphGenerator(setupTestDB(t))
	dot, err := gen.GenerateContactGraph(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, dot, "activity_1")

	dot, err = gen.GenerateCompleteGraph(context.Background())
	require.NoError(t, err)
	assert.Contains(t, dot, "contact_3")
}
