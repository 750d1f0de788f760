// ABOUTME: Tests for the CRM data models
// ABOUTME: Covers stage ordering, probabilities, line item math and cloning
package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageProbabilities(t *testing.T) {
	assert.Equal(t, 25, StageLead.DefaultProbability())
	assert.Equal(t, 50, StageQualified.DefaultProbability())
	assert.Equal(t, 75, StageProposal.DefaultProbability())
	assert.Equal(t, 90, StageNegotiation.DefaultProbability())
	assert.Equal(t, 100, StageClosed.DefaultProbability())
	assert.Equal(t, 25, Stage("Archived").DefaultProbability())
}

func TestStageNavigation(t *testing.T) {
	assert.Equal(t, StageQualified, StageLead.Next())
	assert.Equal(t, StageClosed, StageClosed.Next())
	assert.Equal(t, StageLead, StageLead.Prev())
	assert.Equal(t, StageProposal, StageNegotiation.Prev())
	assert.Equal(t, -1, Stage("Won").Index())
	assert.False(t, Stage("Won").Valid())
}

func TestParseStage(t *testing.T) {
	s, err := ParseStage("negotiation")
	require.NoError(t, err)
	assert.Equal(t, StageNegotiation, s)

	s, err = ParseStage(" CLOSED ")
	require.NoError(t, err)
	assert.Equal(t, StageClosed, s)

	_, err = ParseStage("won")
	assert.Error(t, err)
}

func TestLineItemTotal(t *testing.T) {
	li := LineItem{
		Quantity:  decimal.NewFromInt(2),
		UnitPrice: decimal.NewFromInt(100),
		Discount:  decimal.NewFromInt(10),
		Tax:       decimal.NewFromInt(5),
	}
	assert.True(t, li.ComputeTotal().Equal(decimal.NewFromInt(189)), "got %s", li.ComputeTotal())
}

func TestSalesOrderRecalculate(t *testing.T) {
	order := SalesOrder{
		TotalAmount: decimal.NewFromInt(1),
		LineItems: []LineItem{
			{Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(100), Discount: decimal.NewFromInt(10), Tax: decimal.NewFromInt(5)},
			{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50)},
		},
	}
	order.Recalculate()
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(239)), "got %s", order.TotalAmount)
	assert.True(t, order.LineItems[1].Total.Equal(decimal.NewFromInt(50)))

	manual := SalesOrder{TotalAmount: decimal.NewFromInt(700)}
	manual.Recalculate()
	assert.True(t, manual.TotalAmount.Equal(decimal.NewFromInt(700)))
}

func TestCloneIsDeep(t *testing.T) {
	when := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	c := Contact{ID: 1, Tags: []string{"vip"}, LastContactedAt: &when}
	cp := c.Clone()
	cp.Tags[0] = "cold"
	*cp.LastContactedAt = when.AddDate(0, 1, 0)
	assert.Equal(t, "vip", c.Tags[0])
	assert.Equal(t, when, *c.LastContactedAt)

	tbl := Table{Fields: []Field{{Name: "a"}}}
	tcp := tbl.Clone()
	tcp.Fields[0].Name = "b"
	assert.Equal(t, "a", tbl.Fields[0].Name)
}
