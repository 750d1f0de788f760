// ABOUTME: Activity MCP tool handlers
// ABOUTME: Implements log_activity, find_activities and delete_activity tools
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/forms"
	"github.com/harperreed/dealboard/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ActivityHandlers struct {
	db *db.Database
}

func NewActivityHandlers(database *db.Database) *ActivityHandlers {
	return &ActivityHandlers{db: database}
}

type LogActivityInput struct {
	Type      string `json:"type" jsonschema:"Call, Email, Meeting or Note (required)"`
	ContactID int    `json:"contact_id" jsonschema:"Contact ID (required)"`
	DealID    int    `json:"deal_id,omitempty" jsonschema:"Related deal ID"`
	Subject   string `json:"subject" jsonschema:"Subject (required)"`
	Notes     string `json:"notes,omitempty" jsonschema:"Details"`
	Date      string `json:"date,omitempty" jsonschema:"Date of the activity, YYYY-MM-DD (default now)"`
}

type ActivityOutput struct {
	ID        int    `json:"id"`
	Type      string `json:"type"`
	ContactID int    `json:"contact_id"`
	DealID    int    `json:"deal_id,omitempty"`
	Subject   string `json:"subject"`
	Notes     string `json:"notes,omitempty"`
	Date      string `json:"date"`
	CreatedAt string `json:"created_at"`
}

func (h *ActivityHandlers) LogActivity(ctx context.Context, _ *mcp.CallToolRequest, input LogActivityInput) (*mcp.CallToolResult, ActivityOutput, error) {
	date, err := parseDate("date", input.Date)
	if err != nil {
		return nil, ActivityOutput{}, err
	}
	if date.IsZero() {
		date = h.db.Activities.Now()
	}

	created, err := forms.SaveActivity(ctx, h.db.Activities, models.Activity{
		Type:      models.ActivityType(input.Type),
		ContactID: input.ContactID,
		DealID:    input.DealID,
		Subject:   input.Subject,
		Notes:     input.Notes,
		Date:      date,
	})
	if err != nil {
		return nil, ActivityOutput{}, fmt.Errorf("failed to log activity: %w", err)
	}
	return nil, activityToOutput(created), nil
}

type FindActivitiesInput struct {
	ContactID int    `json:"contact_id,omitempty" jsonschema:"Filter by contact ID"`
	DealID    int    `json:"deal_id,omitempty" jsonschema:"Filter by deal ID"`
	Type      string `json:"type,omitempty" jsonschema:"Filter by activity type"`
	Query     string `json:"query,omitempty" jsonschema:"Search subject and notes"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindActivitiesOutput struct {
	Activities []ActivityOutput `json:"activities"`
}

// FindActivities returns matching activities, newest first.
func (h *ActivityHandlers) FindActivities(ctx context.Context, _ *mcp.CallToolRequest, input FindActivitiesInput) (*mcp.CallToolResult, FindActivitiesOutput, error) {
	var (
		activities []models.Activity
		err        error
	)
	switch {
	case input.ContactID != 0:
		activities, err = h.db.Activities.GetByContactID(ctx, input.ContactID)
	case input.DealID != 0:
		activities, err = h.db.Activities.GetByDealID(ctx, input.DealID)
	case input.Type != "":
		activities, err = h.db.Activities.GetByType(ctx, models.ActivityType(input.Type))
	default:
		activities, err = h.db.Activities.Recent(ctx)
	}
	if err != nil {
		return nil, FindActivitiesOutput{}, fmt.Errorf("failed to find activities: %w", err)
	}

	result := make([]ActivityOutput, 0, len(activities))
	for _, a := range activities {
		if input.DealID != 0 && a.DealID != input.DealID {
			continue
		}
		if input.Type != "" && string(a.Type) != input.Type {
			continue
		}
		if !containsFold(input.Query, a.Subject, a.Notes) {
			continue
		}
		result = append(result, activityToOutput(a))
	}
	return nil, FindActivitiesOutput{Activities: truncate(result, limitOrDefault(input.Limit))}, nil
}

func (h *ActivityHandlers) DeleteActivity(ctx context.Context, _ *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	removed, err := h.db.Activities.Delete(ctx, input.ID)
	if err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete activity: %w", err)
	}
	return nil, DeleteOutput{ID: removed.ID, Deleted: true, Message: fmt.Sprintf("Deleted activity %s", removed.Subject)}, nil
}

func activityToOutput(a models.Activity) ActivityOutput {
	return ActivityOutput{
		ID:        a.ID,
		Type:      string(a.Type),
		ContactID: a.ContactID,
		DealID:    a.DealID,
		Subject:   a.Subject,
		Notes:     a.Notes,
		Date:      formatTime(a.Date),
		CreatedAt: formatTime(a.CreatedAt),
	}
}
