// ABOUTME: Tests for pipeline aggregation and formatting
// ABOUTME: Covers empty input, unknown stages and idempotence
package pipeline

import (
	"testing"

	"github.com/harperreed/dealboard/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func deal(id int, stage models.Stage, value int64) models.Deal {
	return models.Deal{ID: id, Stage: stage, Value: decimal.NewFromInt(value)}
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil)
	assert.Len(t, s.Stages, 5)
	for _, st := range s.Stages {
		assert.Equal(t, 0, st.Count)
		assert.True(t, st.TotalValue.IsZero())
		assert.True(t, st.AvgValue.IsZero())
		assert.Zero(t, st.PctOfTotal)
	}
	assert.Zero(t, s.ConversionRate)
	assert.True(t, s.AvgDealSize.IsZero())
	assert.True(t, s.TotalPipelineValue.IsZero())
}

func TestAggregateLeadAndClosed(t *testing.T) {
	s := Aggregate([]models.Deal{
		deal(1, models.StageLead, 1000),
		deal(2, models.StageClosed, 3000),
	})

	lead := s.Stage(models.StageLead)
	assert.Equal(t, 1, lead.Count)
	assert.True(t, lead.TotalValue.Equal(decimal.NewFromInt(1000)))
	assert.InDelta(t, 25.0, lead.PctOfTotal, 0.0001)

	closed := s.Stage(models.StageClosed)
	assert.Equal(t, 1, closed.Count)
	assert.True(t, closed.TotalValue.Equal(decimal.NewFromInt(3000)))

	assert.True(t, s.TotalPipelineValue.Equal(decimal.NewFromInt(4000)))
	assert.InDelta(t, 50.0, s.ConversionRate, 0.0001)
	assert.True(t, s.AvgDealSize.Equal(decimal.NewFromInt(2000)))
	assert.Equal(t, 0, s.Stage(models.StageProposal).Count)
}

func TestAggregateUnknownStage(t *testing.T) {
	s := Aggregate([]models.Deal{
		deal(1, models.StageLead, 1000),
		deal(2, "Archived", 1000),
	})
	bucketed := 0
	for _, st := range s.Stages {
		bucketed += st.Count
	}
	assert.Equal(t, 1, bucketed)
	assert.Equal(t, 2, s.TotalCount)
	assert.True(t, s.TotalPipelineValue.Equal(decimal.NewFromInt(2000)))
	assert.InDelta(t, 50.0, s.Stage(models.StageLead).PctOfTotal, 0.0001)
}

func TestAggregateIsPure(t *testing.T) {
	deals := []models.Deal{
		deal(1, models.StageProposal, 500),
		deal(2, models.StageProposal, 1500),
		deal(3, models.StageNegotiation, 2000),
	}
	snapshot := make([]models.Deal, len(deals))
	copy(snapshot, deals)

	first := Aggregate(deals)
	second := Aggregate(deals)
	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, deals)
	assert.True(t, first.Stage(models.StageProposal).AvgValue.Equal(decimal.NewFromInt(1000)))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$12,345", FormatCurrency(decimal.NewFromInt(12345)))
	assert.Equal(t, "$12,346", FormatCurrency(decimal.NewFromFloat(12345.6)))
	assert.Equal(t, "$0", FormatCurrency(decimal.Zero))
	assert.Equal(t, "$1,000,000", FormatCurrency(decimal.NewFromInt(1000000)))
	assert.Equal(t, "-$50", FormatCurrency(decimal.NewFromInt(-50)))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "50.0%", FormatPercent(50))
	assert.Equal(t, "33.3%", FormatPercent(100.0/3))
	assert.Equal(t, "0.0%", FormatPercent(0))
}
