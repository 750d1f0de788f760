// ABOUTME: Tests for report generation and rendering
// ABOUTME: Covers range filtering, top contacts ordering and monthly buckets
package reports

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var genTime = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func day(month time.Month, d int) time.Time {
	return time.Date(2025, month, d, 9, 0, 0, 0, time.UTC)
}

func sampleDeals() []models.Deal {
	mk := func(id int, name string, stage models.Stage, value int64, created time.Time) models.Deal {
		return models.Deal{ID: id, ContactName: name, Stage: stage, Value: decimal.NewFromInt(value), CreatedAt: created}
	}
	return []models.Deal{
		mk(1, "Ada", models.StageLead, 1000, day(1, 10)),
		mk(2, "Brian", models.StageClosed, 3000, day(2, 5)),
		mk(3, "Ada", models.StageClosed, 2000, day(3, 1)),
		mk(4, "", models.StageProposal, 500, day(3, 2)),
		mk(5, "Cleo", models.StageProposal, 3000, day(3, 3)),
		mk(6, "Dev", models.StageNegotiation, 100, day(3, 4)),
		mk(7, "Eve", models.StageQualified, 50, day(3, 5)),
		mk(8, "Old", models.StageLead, 99999, day(1, 1).AddDate(-1, 0, 0)),
	}
}

func TestCurrentMonth(t *testing.T) {
	r := CurrentMonth(genTime)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, 31, r.End.Day())
	assert.True(t, r.Contains(time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("2025-01-01", "2025-01-31", genTime)
	require.NoError(t, err)
	assert.True(t, r.Contains(time.Date(2025, 1, 31, 18, 0, 0, 0, time.UTC)), "end date covers the whole day")
	assert.True(t, r.Contains(r.Start), "range is inclusive")

	_, err = ParseRange("2025-02-01", "2025-01-01", genTime)
	assert.Error(t, err)
	_, err = ParseRange("yesterday", "", genTime)
	assert.Error(t, err)

	def, err := ParseRange("", "", genTime)
	require.NoError(t, err)
	assert.Equal(t, CurrentMonth(genTime), def)
}

func TestBuildSummary(t *testing.T) {
	r := Range{Start: day(1, 1), End: day(3, 31)}
	contacts := []models.Contact{{ID: 1, Status: models.ContactActive}, {ID: 2, Status: models.ContactProspect}}
	activities := []models.Activity{
		{ID: 1, Type: models.ActivityCall, Date: day(2, 1)},
		{ID: 2, Type: models.ActivityCall, Date: day(3, 1)},
		{ID: 3, Type: models.ActivityEmail, Date: day(3, 2)},
		{ID: 4, Type: models.ActivityNote, Date: day(5, 1)},
	}
	rep := Build(sampleDeals(), contacts, activities, r, genTime)

	s := rep.Summary
	assert.Equal(t, 7, s.TotalDeals)
	assert.True(t, s.TotalRevenue.Equal(decimal.NewFromInt(9650)))
	assert.Equal(t, 2, s.WonDeals)
	assert.InDelta(t, 28.571, s.WinRate, 0.001)
	assert.Equal(t, 2, s.TotalContacts)
	assert.Equal(t, 1, s.ActiveContacts)
	assert.Equal(t, 3, s.TotalActivities)

	assert.Equal(t, []TypeCount{{models.ActivityCall, 2}, {models.ActivityEmail, 1}}, rep.ActivityTypes)

	require.Len(t, rep.Stages, 5)
	assert.Equal(t, models.StageProposal, rep.Stages[2].Stage)
	assert.Equal(t, 2, rep.Stages[2].Count)
	assert.True(t, rep.Stages[2].Value.Equal(decimal.NewFromInt(3500)))

	require.Len(t, rep.MonthlyRevenue, 3)
	assert.Equal(t, "Jan 2025", rep.MonthlyRevenue[0].Month)
	assert.Equal(t, "Mar 2025", rep.MonthlyRevenue[2].Month)
	assert.True(t, rep.MonthlyRevenue[2].Revenue.Equal(decimal.NewFromInt(5650)))
}

func TestTopContacts(t *testing.T) {
	r := Range{Start: day(1, 1), End: day(3, 31)}
	rep := Build(sampleDeals(), nil, nil, r, genTime)

	require.Len(t, rep.TopContacts, 5)
	names := make([]string, len(rep.TopContacts))
	for i, c := range rep.TopContacts {
		names[i] = c.Name
	}
	// Ada 3000, Brian 3000 and Cleo 3000 tie and keep first-seen order.
	assert.Equal(t, []string{"Ada", "Brian", "Cleo", "Unknown", "Dev"}, names)
	assert.Equal(t, 2, rep.TopContacts[0].Count)
}

func TestBuildEmptyRange(t *testing.T) {
	rep := Build(nil, nil, nil, CurrentMonth(genTime), genTime)
	assert.Zero(t, rep.Summary.WinRate)
	assert.True(t, rep.Summary.AvgDealSize.IsZero())
	assert.Empty(t, rep.TopContacts)
	assert.Empty(t, rep.MonthlyRevenue)
}

type failingLister[T any] struct{}

func (failingLister[T]) GetAll(context.Context) ([]T, error) {
	return nil, errors.New("activities unavailable")
}

func TestGenerate(t *testing.T) {
	database := db.New(db.Seed{Deals: sampleDeals()}, db.StoreOptions{})
	rep, err := Generate(context.Background(), FromDatabase(database), Range{Start: day(3, 1), End: day(3, 31)}, genTime)
	require.NoError(t, err)
	assert.Equal(t, 5, rep.Summary.TotalDeals)
	assert.Equal(t, genTime, rep.GeneratedAt)

	src := FromDatabase(database)
	src.Activities = failingLister[models.Activity]{}
	_, err = Generate(context.Background(), src, CurrentMonth(genTime), genTime)
	assert.ErrorContains(t, err, "activities unavailable")
}

func TestRenderEverySection(t *testing.T) {
	rep := Build(sampleDeals(), nil, nil, Range{Start: day(1, 1), End: day(3, 31)}, genTime)
	for _, kind := range Kinds {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, kind, rep), kind)
		assert.Contains(t, buf.String(), kind.Title())
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, KindOverview, rep))
	assert.Contains(t, buf.String(), "$9,650")
	assert.Contains(t, buf.String(), "28.6%")

	assert.Error(t, Render(&buf, Kind("weekly"), rep))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Revenue")
	require.NoError(t, err)
	assert.Equal(t, KindRevenue, k)
	k, err = ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindOverview, k)
	_, err = ParseKind("weekly")
	assert.Error(t, err)
}
