// ABOUTME: GraphViz visualization MCP handlers
// ABOUTME: Provides generate_graph and dashboard tools for agents
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type VizHandlers struct {
	db *db.Database
}

func NewVizHandlers(database *db.Database) *VizHandlers {
	return &VizHandlers{db: database}
}

type GenerateGraphInput struct {
	Type     string `json:"type" jsonschema:"Graph type: pipeline, company, contact or complete"`
	EntityID int    `json:"entity_id,omitempty" jsonschema:"Company or contact ID (required for company and contact graphs)"`
}

type GenerateGraphOutput struct {
	GraphType string `json:"graph_type"`
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) GenerateGraph(ctx context.Context, _ *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	generator := viz.NewGraphGenerator(h.db)
	var (
		dot string
		err error
	)

	switch input.Type {
	case "pipeline":
		dot, err = generator.GeneratePipelineGraph(ctx)
	case "company":
		if input.EntityID == 0 {
			return nil, GenerateGraphOutput{}, fmt.Errorf("entity_id required for company graph")
		}
		dot, err = generator.GenerateCompanyGraph(ctx, input.EntityID)
	case "contact":
		if input.EntityID == 0 {
			return nil, GenerateGraphOutput{}, fmt.Errorf("entity_id required for contact graph")
		}
		dot, err = generator.GenerateContactGraph(ctx, input.EntityID)
	case "complete":
		dot, err = generator.GenerateCompleteGraph(ctx)
	default:
		return nil, GenerateGraphOutput{}, fmt.Errorf("unknown graph type: %s (valid types: pipeline, company, contact, complete)", input.Type)
	}
	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	return nil, GenerateGraphOutput{
		GraphType: input.Type,
		DOTSource: dot,
		NodeCount: strings.Count(dot, "label="),
		EdgeCount: strings.Count(dot, "->"),
	}, nil
}

type DashboardInput struct{}

type DashboardOutput struct {
	Text string `json:"text"`
}

func (h *VizHandlers) Dashboard(ctx context.Context, _ *mcp.CallToolRequest, _ DashboardInput) (*mcp.CallToolResult, DashboardOutput, error) {
	stats, err := viz.GenerateDashboardStats(ctx, h.db, h.db.Deals.Now())
	if err != nil {
		return nil, DashboardOutput{}, fmt.Errorf("failed to build dashboard: %w", err)
	}
	return nil, DashboardOutput{Text: viz.RenderDashboard(stats)}, nil
}
