// ABOUTME: MCP prompt handlers for reusable CRM workflow templates
// ABOUTME: Provides standardized prompts for common CRM operations
package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/pipeline"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PromptHandlers struct {
	db *db.Database
}

func NewPromptHandlers(database *db.Database) *PromptHandlers {
	return &PromptHandlers{db: database}
}

// Prompts lists the templates served by GetPrompt.
func (h *PromptHandlers) Prompts() []*mcp.Prompt {
	return []*mcp.Prompt{
		{
			Name:        "contact-summary",
			Description: "Summarize a contact with their deals and recent activity",
			Arguments:   []*mcp.PromptArgument{{Name: "contact_id", Description: "Contact ID", Required: true}},
		},
		{
			Name:        "deal-analysis",
			Description: "Analyze the pipeline and suggest where to focus",
		},
		{
			Name:        "follow-up-suggestions",
			Description: "Suggest follow-ups for contacts that have gone quiet",
			Arguments:   []*mcp.PromptArgument{{Name: "days", Description: "Days without contact (default 30)"}},
		},
		{
			Name:        "company-overview",
			Description: "Overview of a company, its people and its orders",
			Arguments:   []*mcp.PromptArgument{{Name: "company_id", Description: "Company ID", Required: true}},
		},
	}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	arguments := request.Params.Arguments
	switch request.Params.Name {
	case "contact-summary":
		return h.getContactSummaryPrompt(ctx, arguments)
	case "deal-analysis":
		return h.getDealAnalysisPrompt(ctx)
	case "follow-up-suggestions":
		return h.getFollowUpSuggestionsPrompt(ctx, arguments)
	case "company-overview":
		return h.getCompanyOverviewPrompt(ctx, arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func requiredID(args map[string]string, key string) (int, error) {
	raw, ok := args[key]
	if !ok || raw == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return id, nil
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: text}},
		},
	}
}

func (h *PromptHandlers) getContactSummaryPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	contactID, err := requiredID(args, "contact_id")
	if err != nil {
		return nil, err
	}
	contact, err := h.db.Contacts.GetByID(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact: %w", err)
	}
	deals, err := h.db.Deals.GetByContactID(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deals: %w", err)
	}
	activities, err := h.db.Activities.GetByContactID(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}

	var text strings.Builder
	text.WriteString("Please provide a comprehensive summary of this contact:\n\n")
	fmt.Fprintf(&text, "Name: %s\n", contact.Name)
	fmt.Fprintf(&text, "Email: %s\n", contact.Email)
	if contact.Position != "" {
		fmt.Fprintf(&text, "Position: %s\n", contact.Position)
	}
	if contact.Company != "" {
		fmt.Fprintf(&text, "Company: %s\n", contact.Company)
	}
	fmt.Fprintf(&text, "Status: %s\n", contact.Status)
	if contact.LastContactedAt != nil {
		fmt.Fprintf(&text, "Last Contacted: %s\n", contact.LastContactedAt.Format(dateLayout))
	}
	if len(deals) > 0 {
		text.WriteString("\nDeals:\n")
		for _, d := range deals {
			fmt.Fprintf(&text, "- %s: %s, %s, %d%%\n", d.Title, pipeline.FormatCurrency(d.Value), d.Stage, d.Probability)
		}
	}
	if len(activities) > 0 {
		text.WriteString("\nRecent activity:\n")
		for _, a := range truncate(activities, 5) {
			fmt.Fprintf(&text, "- %s %s: %s\n", a.Date.Format(dateLayout), a.Type, a.Subject)
		}
	}
	if contact.Notes != "" {
		fmt.Fprintf(&text, "\nNotes: %s\n", contact.Notes)
	}

	text.WriteString("\nPlease analyze this contact and provide:")
	text.WriteString("\n1. A brief summary of their role and background")
	text.WriteString("\n2. Recommendations for next steps or follow-up actions")
	text.WriteString("\n3. Any patterns or insights from their interaction history")

	return userPrompt(fmt.Sprintf("Summary for contact: %s", contact.Name), text.String()), nil
}

func (h *PromptHandlers) getDealAnalysisPrompt(ctx context.Context) (*mcp.GetPromptResult, error) {
	deals, err := h.db.Deals.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deals: %w", err)
	}
	summary := pipeline.Aggregate(deals)

	var text strings.Builder
	text.WriteString("Please analyze the current sales pipeline:\n\n")
	fmt.Fprintf(&text, "Total Deals: %d\n", summary.TotalCount)
	fmt.Fprintf(&text, "Total Pipeline Value: %s\n", pipeline.FormatCurrency(summary.TotalPipelineValue))
	fmt.Fprintf(&text, "Conversion Rate: %s\n", pipeline.FormatPercent(summary.ConversionRate))
	fmt.Fprintf(&text, "Average Deal Size: %s\n\n", pipeline.FormatCurrency(summary.AvgDealSize))
	text.WriteString("By stage:\n")
	for _, st := range summary.Stages {
		fmt.Fprintf(&text, "- %s: %d deals, %s (%s of pipeline)\n",
			st.Stage, st.Count, pipeline.FormatCurrency(st.TotalValue), pipeline.FormatPercent(st.PctOfTotal))
	}

	text.WriteString("\nPlease provide:")
	text.WriteString("\n1. Where deals are getting stuck")
	text.WriteString("\n2. Which deals deserve attention this week")
	text.WriteString("\n3. Suggestions to improve conversion")

	return userPrompt("Pipeline analysis", text.String()), nil
}

func (h *PromptHandlers) getFollowUpSuggestionsPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	days := 30
	if raw := args["days"]; raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid days: %s", raw)
		}
		days = n
	}
	cutoff := h.db.Contacts.Now().AddDate(0, 0, -days)

	quiet, err := h.db.Contacts.Filter(ctx, func(c models.Contact) bool {
		return c.Status != models.ContactInactive && (c.LastContactedAt == nil || c.LastContactedAt.Before(cutoff))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "These contacts have not been contacted in the last %d days:\n\n", days)
	if len(quiet) == 0 {
		text.WriteString("(none)\n")
	}
	for _, c := range quiet {
		last := "never"
		if c.LastContactedAt != nil {
			last = c.LastContactedAt.Format(dateLayout)
		}
		fmt.Fprintf(&text, "- %s (%s), last contacted %s\n", c.Name, c.Company, last)
	}
	text.WriteString("\nFor each contact, suggest a short, specific follow-up and the best channel for it.")

	return userPrompt(fmt.Sprintf("Follow-up suggestions (%d days)", days), text.String()), nil
}

func (h *PromptHandlers) getCompanyOverviewPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	companyID, err := requiredID(args, "company_id")
	if err != nil {
		return nil, err
	}
	company, err := h.db.Companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company: %w", err)
	}
	contacts, err := h.db.Contacts.GetByCompanyID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	orders, err := h.db.SalesOrders.GetByCompanyID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sales orders: %w", err)
	}

	var text strings.Builder
	text.WriteString("Please provide an overview of this company:\n\n")
	fmt.Fprintf(&text, "Name: %s\n", company.Name)
	fmt.Fprintf(&text, "Industry: %s\n", company.Industry)
	if company.Website != "" {
		fmt.Fprintf(&text, "Website: %s\n", company.Website)
	}
	if company.Employees > 0 {
		fmt.Fprintf(&text, "Employees: %d\n", company.Employees)
	}
	fmt.Fprintf(&text, "\nContacts (%d):\n", len(contacts))
	for _, c := range contacts {
		fmt.Fprintf(&text, "- %s, %s\n", c.Name, c.Position)
	}
	fmt.Fprintf(&text, "\nSales orders (%d):\n", len(orders))
	for _, o := range orders {
		fmt.Fprintf(&text, "- %s %s: %s (%s)\n", o.OrderNumber, o.Title, pipeline.FormatCurrency(o.TotalAmount), o.Status)
	}
	text.WriteString("\nPlease summarize the relationship and suggest opportunities to grow it.")

	return userPrompt(fmt.Sprintf("Overview for company: %s", company.Name), text.String()), nil
}
