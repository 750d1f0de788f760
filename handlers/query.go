// ABOUTME: Universal query tool handler
// ABOUTME: Implements flexible filtering across all CRM entity types
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/dealboard/db"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type QueryHandlers struct {
	db *db.Database
}

func NewQueryHandlers(database *db.Database) *QueryHandlers {
	return &QueryHandlers{db: database}
}

type QueryCRMInput struct {
	EntityType string         `json:"entity_type" jsonschema:"Type of entity to query (contact, company, deal, activity, quote, sales_order)"`
	Query      string         `json:"query,omitempty" jsonschema:"Free text search"`
	Filters    map[string]any `json:"filters,omitempty" jsonschema:"Additional filters: contact_id, company_id, deal_id, stage, status, type"`
	Limit      int            `json:"limit,omitempty" jsonschema:"Maximum results to return (default 10)"`
}

type QueryCRMOutput struct {
	EntityType string `json:"entity_type"`
	Results    []any  `json:"results"`
	Count      int    `json:"count"`
}

func (h *QueryHandlers) QueryCRM(ctx context.Context, req *mcp.CallToolRequest, input QueryCRMInput) (*mcp.CallToolResult, QueryCRMOutput, error) {
	f := queryFilters(input.Filters)
	var (
		results []any
		err     error
	)

	switch input.EntityType {
	case "contact":
		var out FindContactsOutput
		_, out, err = NewContactHandlers(h.db).FindContacts(ctx, req, FindContactsInput{
			Query: input.Query, CompanyID: f.int("company_id"), Status: f.string("status"), Limit: input.Limit,
		})
		results = toAny(out.Contacts)
	case "company":
		var out FindCompaniesOutput
		_, out, err = NewCompanyHandlers(h.db).FindCompanies(ctx, req, FindCompaniesInput{
			Query: input.Query, Industry: f.string("industry"), Limit: input.Limit,
		})
		results = toAny(out.Companies)
	case "deal":
		var out FindDealsOutput
		_, out, err = (&DealHandlers{db: h.db}).FindDeals(ctx, req, FindDealsInput{
			Query: input.Query, Stage: f.string("stage"), ContactID: f.int("contact_id"), Limit: input.Limit,
		})
		results = toAny(out.Deals)
	case "activity":
		var out FindActivitiesOutput
		_, out, err = NewActivityHandlers(h.db).FindActivities(ctx, req, FindActivitiesInput{
			Query: input.Query, ContactID: f.int("contact_id"), DealID: f.int("deal_id"), Type: f.string("type"), Limit: input.Limit,
		})
		results = toAny(out.Activities)
	case "quote":
		var out FindQuotesOutput
		_, out, err = NewQuoteHandlers(h.db).FindQuotes(ctx, req, FindQuotesInput{
			Query: input.Query, ContactID: f.int("contact_id"), CompanyID: f.int("company_id"), Status: f.string("status"), Limit: input.Limit,
		})
		results = toAny(out.Quotes)
	case "sales_order":
		var out FindSalesOrdersOutput
		_, out, err = NewSalesOrderHandlers(h.db).FindSalesOrders(ctx, req, FindSalesOrdersInput{
			ContactID: f.int("contact_id"), CompanyID: f.int("company_id"), Status: f.string("status"), Limit: input.Limit,
		})
		results = toAny(out.Orders)
	default:
		return nil, QueryCRMOutput{}, fmt.Errorf("invalid entity_type: %s (valid: contact, company, deal, activity, quote, sales_order)", input.EntityType)
	}
	if err != nil {
		return nil, QueryCRMOutput{}, err
	}

	return nil, QueryCRMOutput{EntityType: input.EntityType, Results: results, Count: len(results)}, nil
}

type queryFilters map[string]any

func (f queryFilters) string(key string) string {
	s, _ := f[key].(string)
	return s
}

// int accepts JSON numbers, which decode as float64.
func (f queryFilters) int(key string) int {
	switch v := f[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func toAny[T any](items []T) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
