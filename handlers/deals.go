// ABOUTME: Deal MCP tool handlers
// ABOUTME: Implements create_deal, find_deals, update_deal and delete_deal tools
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/forms"
	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/pipeline"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DealHandlers writes through the deal store and keeps the shared board in
// step with every confirmed write.
type DealHandlers struct {
	db    *db.Database
	board *pipeline.Board
}

func NewDealHandlers(database *db.Database, board *pipeline.Board) *DealHandlers {
	return &DealHandlers{db: database, board: board}
}

type CreateDealInput struct {
	Title             string `json:"title" jsonschema:"Deal title (required)"`
	Value             string `json:"value" jsonschema:"Deal value in dollars, e.g. 12500.00 (required, positive)"`
	ContactID         int    `json:"contact_id" jsonschema:"ID of the contact the deal belongs to (required)"`
	Stage             string `json:"stage,omitempty" jsonschema:"Lead, Qualified, Proposal, Negotiation or Closed (default Lead)"`
	Probability       *int   `json:"probability,omitempty" jsonschema:"Win probability 0-100 (default follows the stage)"`
	ExpectedCloseDate string `json:"expected_close_date,omitempty" jsonschema:"Expected close date, YYYY-MM-DD"`
	Notes             string `json:"notes,omitempty" jsonschema:"Notes about the deal"`
}

type DealOutput struct {
	ID                int     `json:"id"`
	Title             string  `json:"title"`
	Value             string  `json:"value"`
	ContactID         int     `json:"contact_id"`
	ContactName       string  `json:"contact_name,omitempty"`
	Stage             string  `json:"stage"`
	Probability       int     `json:"probability"`
	ExpectedCloseDate *string `json:"expected_close_date,omitempty"`
	Notes             string  `json:"notes,omitempty"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

func (h *DealHandlers) CreateDeal(ctx context.Context, _ *mcp.CallToolRequest, input CreateDealInput) (*mcp.CallToolResult, DealOutput, error) {
	form := forms.NewDealForm(models.Deal{})
	if err := applyDealInput(form, dealFields{
		Title:             input.Title,
		Value:             input.Value,
		ContactID:         input.ContactID,
		Stage:             input.Stage,
		Probability:       input.Probability,
		ExpectedCloseDate: input.ExpectedCloseDate,
		Notes:             input.Notes,
	}); err != nil {
		return nil, DealOutput{}, err
	}

	created, err := form.Submit(ctx, h.db.Deals, h.db.Contacts)
	if err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to create deal: %w", err)
	}
	h.board.Replace(created)
	return nil, dealToOutput(created), nil
}

type FindDealsInput struct {
	Query     string `json:"query,omitempty" jsonschema:"Search query (matches title and contact name)"`
	Stage     string `json:"stage,omitempty" jsonschema:"Filter by stage"`
	ContactID int    `json:"contact_id,omitempty" jsonschema:"Filter by contact ID"`
	MinValue  string `json:"min_value,omitempty" jsonschema:"Only deals worth at least this much"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindDealsOutput struct {
	Deals []DealOutput `json:"deals"`
}

func (h *DealHandlers) FindDeals(ctx context.Context, _ *mcp.CallToolRequest, input FindDealsInput) (*mcp.CallToolResult, FindDealsOutput, error) {
	var stage models.Stage
	if input.Stage != "" {
		s, err := models.ParseStage(input.Stage)
		if err != nil {
			return nil, FindDealsOutput{}, err
		}
		stage = s
	}
	minValue, err := parseAmount("min_value", input.MinValue)
	if err != nil {
		return nil, FindDealsOutput{}, err
	}

	deals, err := h.db.Deals.Filter(ctx, func(d models.Deal) bool {
		if stage != "" && d.Stage != stage {
			return false
		}
		if input.ContactID != 0 && d.ContactID != input.ContactID {
			return false
		}
		if d.Value.LessThan(minValue) {
			return false
		}
		return containsFold(input.Query, d.Title, d.ContactName)
	})
	if err != nil {
		return nil, FindDealsOutput{}, fmt.Errorf("failed to find deals: %w", err)
	}

	deals = truncate(deals, limitOrDefault(input.Limit))
	result := make([]DealOutput, len(deals))
	for i, d := range deals {
		result[i] = dealToOutput(d)
	}
	return nil, FindDealsOutput{Deals: result}, nil
}

type UpdateDealInput struct {
	ID                int    `json:"id" jsonschema:"Deal ID (required)"`
	Title             string `json:"title,omitempty" jsonschema:"Updated title"`
	Value             string `json:"value,omitempty" jsonschema:"Updated value in dollars"`
	ContactID         int    `json:"contact_id,omitempty" jsonschema:"Updated contact ID"`
	Stage             string `json:"stage,omitempty" jsonschema:"Updated stage; resets probability to the stage default unless probability is also given"`
	Probability       *int   `json:"probability,omitempty" jsonschema:"Updated win probability 0-100"`
	ExpectedCloseDate string `json:"expected_close_date,omitempty" jsonschema:"Updated expected close date, YYYY-MM-DD"`
	Notes             string `json:"notes,omitempty" jsonschema:"Updated notes"`
}

func (h *DealHandlers) UpdateDeal(ctx context.Context, _ *mcp.CallToolRequest, input UpdateDealInput) (*mcp.CallToolResult, DealOutput, error) {
	if input.ID == 0 {
		return nil, DealOutput{}, fmt.Errorf("id is required")
	}
	current, err := h.db.Deals.GetByID(ctx, input.ID)
	if err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to get deal: %w", err)
	}

	form := forms.NewDealForm(current)
	if err := applyDealInput(form, dealFields{
		Title:             input.Title,
		Value:             input.Value,
		ContactID:         input.ContactID,
		Stage:             input.Stage,
		Probability:       input.Probability,
		ExpectedCloseDate: input.ExpectedCloseDate,
		Notes:             input.Notes,
	}); err != nil {
		return nil, DealOutput{}, err
	}

	updated, err := form.Submit(ctx, h.db.Deals, h.db.Contacts)
	if err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to update deal: %w", err)
	}
	h.board.Replace(updated)
	return nil, dealToOutput(updated), nil
}

func (h *DealHandlers) DeleteDeal(ctx context.Context, _ *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	removed, err := h.db.Deals.Delete(ctx, input.ID)
	if err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete deal: %w", err)
	}
	h.board.Remove(removed.ID)
	return nil, DeleteOutput{ID: removed.ID, Deleted: true, Message: fmt.Sprintf("Deleted deal %s", removed.Title)}, nil
}

// dealFields are the editable deal arguments shared by create and update.
// Empty values leave the form untouched.
type dealFields struct {
	Title             string
	Value             string
	ContactID         int
	Stage             string
	Probability       *int
	ExpectedCloseDate string
	Notes             string
}

func applyDealInput(form *forms.DealForm, in dealFields) error {
	setIfPresent(&form.Deal.Title, in.Title)
	setIfPresent(&form.Deal.Notes, in.Notes)
	if in.ContactID != 0 {
		form.Deal.ContactID = in.ContactID
	}
	if in.Value != "" {
		value, err := parseAmount("value", in.Value)
		if err != nil {
			return err
		}
		form.Deal.Value = value
	}
	if in.ExpectedCloseDate != "" {
		closeDate, err := parseDate("expected_close_date", in.ExpectedCloseDate)
		if err != nil {
			return err
		}
		form.Deal.ExpectedCloseDate = &closeDate
	}
	if in.Stage != "" {
		stage, err := models.ParseStage(in.Stage)
		if err != nil {
			return err
		}
		if stage != form.Deal.Stage {
			form.SelectStage(stage)
		}
	}
	if in.Probability != nil {
		form.SetProbability(*in.Probability)
	}
	return nil
}

func dealToOutput(d models.Deal) DealOutput {
	return DealOutput{
		ID:                d.ID,
		Title:             d.Title,
		Value:             d.Value.StringFixed(2),
		ContactID:         d.ContactID,
		ContactName:       d.ContactName,
		Stage:             string(d.Stage),
		Probability:       d.Probability,
		ExpectedCloseDate: formatTimePtr(d.ExpectedCloseDate),
		Notes:             d.Notes,
		CreatedAt:         formatTime(d.CreatedAt),
		UpdatedAt:         formatTime(d.UpdatedAt),
	}
}
