// ABOUTME: Pipeline aggregation over the deal collection
// ABOUTME: Computes per-stage counts, totals, averages and shares of pipeline value
package pipeline

import (
	"github.com/harperreed/dealboard/models"
	"github.com/shopspring/decimal"
)

// StageStats summarizes the deals in one stage.
type StageStats struct {
	Stage      models.Stage    `json:"stage"`
	Count      int             `json:"count"`
	TotalValue decimal.Decimal `json:"total_value"`
	AvgValue   decimal.Decimal `json:"avg_value"`
	PctOfTotal float64         `json:"pct_of_total"`
}

// Summary is the result of aggregating a deal collection.
type Summary struct {
	Stages             []StageStats    `json:"stages"`
	TotalCount         int             `json:"total_count"`
	TotalPipelineValue decimal.Decimal `json:"total_pipeline_value"`
	ClosedCount        int             `json:"closed_count"`
	ConversionRate     float64         `json:"conversion_rate"`
	AvgDealSize        decimal.Decimal `json:"avg_deal_size"`
}

// Stage returns the stats for one stage. Unknown stages get zero stats.
func (s Summary) Stage(stage models.Stage) StageStats {
	for _, st := range s.Stages {
		if st.Stage == stage {
			return st
		}
	}
	return StageStats{Stage: stage, TotalValue: decimal.Zero, AvgValue: decimal.Zero}
}

// Aggregate computes the pipeline summary for deals without modifying them.
// Deals whose stage is not one of the five known stages are left out of
// every stage bucket but still count toward the global totals.
func Aggregate(deals []models.Deal) Summary {
	buckets := make(map[models.Stage]*StageStats, len(models.Stages))
	out := Summary{
		Stages:             make([]StageStats, len(models.Stages)),
		TotalPipelineValue: decimal.Zero,
		AvgDealSize:        decimal.Zero,
	}
	for i, stage := range models.Stages {
		out.Stages[i] = StageStats{Stage: stage, TotalValue: decimal.Zero, AvgValue: decimal.Zero}
		buckets[stage] = &out.Stages[i]
	}

	for _, d := range deals {
		out.TotalCount++
		out.TotalPipelineValue = out.TotalPipelineValue.Add(d.Value)
		if d.Stage == models.StageClosed {
			out.ClosedCount++
		}
		if b, ok := buckets[d.Stage]; ok {
			b.Count++
			b.TotalValue = b.TotalValue.Add(d.Value)
		}
	}

	for i := range out.Stages {
		st := &out.Stages[i]
		if st.Count > 0 {
			st.AvgValue = st.TotalValue.Div(decimal.NewFromInt(int64(st.Count)))
		}
		if out.TotalPipelineValue.IsPositive() {
			st.PctOfTotal = st.TotalValue.Div(out.TotalPipelineValue).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
	}
	if out.TotalCount > 0 {
		out.ConversionRate = float64(out.ClosedCount) / float64(out.TotalCount) * 100
		out.AvgDealSize = out.TotalPipelineValue.Div(decimal.NewFromInt(int64(out.TotalCount)))
	}
	return out
}
