// ABOUTME: Pipeline MCP tool handlers
// ABOUTME: Implements move_deal and pipeline_summary against the shared board
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/notify"
	"github.com/harperreed/dealboard/pipeline"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// PipelineHandlers drives the board. Each move collects its own
// notifications into the tool result.
type PipelineHandlers struct {
	board *pipeline.Board
}

func NewPipelineHandlers(board *pipeline.Board) *PipelineHandlers {
	return &PipelineHandlers{board: board}
}

type MoveDealInput struct {
	DealID int    `json:"deal_id" jsonschema:"Deal ID (required)"`
	Stage  string `json:"stage" jsonschema:"Target stage: Lead, Qualified, Proposal, Negotiation or Closed (required)"`
}

type MoveDealOutput struct {
	Deal          DealOutput `json:"deal"`
	Moved         bool       `json:"moved"`
	Notifications []string   `json:"notifications,omitempty"`
}

// MoveDeal moves a deal to any stage. Only stage and updated_at change; the
// probability is kept.
func (h *PipelineHandlers) MoveDeal(ctx context.Context, _ *mcp.CallToolRequest, input MoveDealInput) (*mcp.CallToolResult, MoveDealOutput, error) {
	target, err := models.ParseStage(input.Stage)
	if err != nil {
		target = models.Stage(input.Stage)
	}
	before, _ := h.board.Deal(input.DealID)

	notes := &notify.Recorder{}
	deal, err := h.board.Move(notify.WithNotifier(ctx, notes), input.DealID, target)
	messages := noteMessages(notes.Notes())
	if err != nil {
		return nil, MoveDealOutput{}, fmt.Errorf("failed to move deal: %w", err)
	}
	return nil, MoveDealOutput{
		Deal:          dealToOutput(deal),
		Moved:         before.Stage != deal.Stage,
		Notifications: messages,
	}, nil
}

func noteMessages(notes []notify.Note) []string {
	var messages []string
	for _, n := range notes {
		messages = append(messages, n.Message)
	}
	return messages
}

type PipelineSummaryInput struct {
	Reload bool `json:"reload,omitempty" jsonschema:"Reload deals from the store before summarizing"`
}

type StageOutput struct {
	Stage      string `json:"stage"`
	Count      int    `json:"count"`
	TotalValue string `json:"total_value"`
	AvgValue   string `json:"avg_value"`
	PctOfTotal string `json:"pct_of_total"`
}

type PipelineSummaryOutput struct {
	Stages             []StageOutput `json:"stages"`
	TotalCount         int           `json:"total_count"`
	TotalPipelineValue string        `json:"total_pipeline_value"`
	ClosedCount        int           `json:"closed_count"`
	ConversionRate     string        `json:"conversion_rate"`
	AvgDealSize        string        `json:"avg_deal_size"`
}

func (h *PipelineHandlers) PipelineSummary(ctx context.Context, _ *mcp.CallToolRequest, input PipelineSummaryInput) (*mcp.CallToolResult, PipelineSummaryOutput, error) {
	if input.Reload {
		if err := h.board.Load(ctx); err != nil {
			return nil, PipelineSummaryOutput{}, err
		}
	}
	return nil, summaryToOutput(h.board.Summary()), nil
}

func summaryToOutput(s pipeline.Summary) PipelineSummaryOutput {
	out := PipelineSummaryOutput{
		Stages:             make([]StageOutput, len(s.Stages)),
		TotalCount:         s.TotalCount,
		TotalPipelineValue: pipeline.FormatCurrency(s.TotalPipelineValue),
		ClosedCount:        s.ClosedCount,
		ConversionRate:     pipeline.FormatPercent(s.ConversionRate),
		AvgDealSize:        pipeline.FormatCurrency(s.AvgDealSize),
	}
	for i, st := range s.Stages {
		out.Stages[i] = StageOutput{
			Stage:      string(st.Stage),
			Count:      st.Count,
			TotalValue: pipeline.FormatCurrency(st.TotalValue),
			AvgValue:   pipeline.FormatCurrency(st.AvgValue),
			PctOfTotal: pipeline.FormatPercent(st.PctOfTotal),
		}
	}
	return out
}
