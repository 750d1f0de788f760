// ABOUTME: MCP resource handlers for exposing CRM data
// ABOUTME: Provides read-only access to contacts, companies, deals, pipeline, reports and tables via URI
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/pipeline"
	"github.com/harperreed/dealboard/reports"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ResourceHandlers struct {
	db *db.Database
}

func NewResourceHandlers(database *db.Database) *ResourceHandlers {
	return &ResourceHandlers{db: database}
}

// Resources lists the fixed URIs served by ReadResource.
func (h *ResourceHandlers) Resources() []*mcp.Resource {
	return []*mcp.Resource{
		{URI: "crm://contacts", Name: "contacts", Description: "All contacts", MIMEType: "application/json"},
		{URI: "crm://companies", Name: "companies", Description: "All companies", MIMEType: "application/json"},
		{URI: "crm://deals", Name: "deals", Description: "All deals", MIMEType: "application/json"},
		{URI: "crm://pipeline", Name: "pipeline", Description: "Pipeline summary by stage", MIMEType: "application/json"},
		{URI: "crm://tables", Name: "tables", Description: "Custom table definitions", MIMEType: "application/json"},
	}
}

// Templates lists the parameterized URIs served by ReadResource.
func (h *ResourceHandlers) Templates() []*mcp.ResourceTemplate {
	return []*mcp.ResourceTemplate{
		{URITemplate: "crm://contacts/{id}", Name: "contact", Description: "One contact", MIMEType: "application/json"},
		{URITemplate: "crm://companies/{id}", Name: "company", Description: "One company", MIMEType: "application/json"},
		{URITemplate: "crm://deals/{id}", Name: "deal", Description: "One deal", MIMEType: "application/json"},
		{URITemplate: "crm://reports/{type}", Name: "report", Description: "Report for the current month", MIMEType: "application/json"},
	}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, "crm://") {
		return nil, fmt.Errorf("invalid URI scheme: expected crm://")
	}
	parts := strings.Split(strings.TrimPrefix(uri, "crm://"), "/")

	var (
		data any
		err  error
	)
	switch parts[0] {
	case "contacts":
		data, err = readCollection(ctx, parts, h.db.Contacts.GetAll, h.db.Contacts.GetByID)
	case "companies":
		data, err = readCollection(ctx, parts, h.db.Companies.GetAll, h.db.Companies.GetByID)
	case "deals":
		data, err = readCollection(ctx, parts, h.db.Deals.GetAll, h.db.Deals.GetByID)
	case "tables":
		data, err = readCollection(ctx, parts, h.db.Tables.GetAll, h.db.Tables.GetByID)
	case "pipeline":
		data, err = h.readPipeline(ctx)
	case "reports":
		kind := ""
		if len(parts) > 1 {
			kind = parts[1]
		}
		data, err = h.readReport(ctx, kind)
	default:
		return nil, mcp.ResourceNotFoundError(uri)
	}
	if err != nil {
		return nil, err
	}

	text, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", parts[0], err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(text),
		},
	}}, nil
}

// readCollection serves crm://<name> and crm://<name>/<id>.
func readCollection[T any](ctx context.Context, parts []string, all func(context.Context) ([]T, error), one func(context.Context, int) (T, error)) (any, error) {
	if len(parts) == 1 || parts[1] == "" {
		items, err := all(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", parts[0], err)
		}
		return items, nil
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid %s ID: %s", parts[0], parts[1])
	}
	item, err := one(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", parts[0], err)
	}
	return item, nil
}

func (h *ResourceHandlers) readPipeline(ctx context.Context) (any, error) {
	deals, err := h.db.Deals.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deals: %w", err)
	}
	return summaryToOutput(pipeline.Aggregate(deals)), nil
}

func (h *ResourceHandlers) readReport(ctx context.Context, kindArg string) (any, error) {
	kind, err := reports.ParseKind(kindArg)
	if err != nil {
		return nil, err
	}
	now := h.db.Deals.Now()
	rep, err := reports.Generate(ctx, reports.FromDatabase(h.db), reports.CurrentMonth(now), now)
	if err != nil {
		return nil, err
	}
	return reports.NewEnvelope(kind, rep), nil
}
