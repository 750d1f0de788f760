// ABOUTME: Report MCP tool handlers
// ABOUTME: Implements generate_report and export_report over a date range
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/reports"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ReportHandlers struct {
	db        *db.Database
	exportDir string
}

func NewReportHandlers(database *db.Database, exportDir string) *ReportHandlers {
	return &ReportHandlers{db: database, exportDir: exportDir}
}

type GenerateReportInput struct {
	Type string `json:"type,omitempty" jsonschema:"overview, sales, pipeline, contacts or revenue (default overview)"`
	From string `json:"from,omitempty" jsonschema:"Start date, YYYY-MM-DD (default first day of this month)"`
	To   string `json:"to,omitempty" jsonschema:"End date, YYYY-MM-DD, inclusive (default last day of this month)"`
}

type GenerateReportOutput struct {
	Type      string `json:"type"`
	DateRange string `json:"date_range"`
	Text      string `json:"text"`
}

func (h *ReportHandlers) GenerateReport(ctx context.Context, _ *mcp.CallToolRequest, input GenerateReportInput) (*mcp.CallToolResult, GenerateReportOutput, error) {
	kind, rep, err := h.generate(ctx, input.Type, input.From, input.To)
	if err != nil {
		return nil, GenerateReportOutput{}, err
	}
	var text strings.Builder
	if err := reports.Render(&text, kind, rep); err != nil {
		return nil, GenerateReportOutput{}, fmt.Errorf("failed to render report: %w", err)
	}
	return nil, GenerateReportOutput{Type: string(kind), DateRange: rep.Range.String(), Text: text.String()}, nil
}

type ExportReportInput struct {
	Type   string `json:"type,omitempty" jsonschema:"overview, sales, pipeline, contacts or revenue (default overview)"`
	Format string `json:"format,omitempty" jsonschema:"json, csv or sqlite (default json)"`
	From   string `json:"from,omitempty" jsonschema:"Start date, YYYY-MM-DD"`
	To     string `json:"to,omitempty" jsonschema:"End date, YYYY-MM-DD, inclusive"`
}

type ExportReportOutput struct {
	ID     string `json:"id"`
	Path   string `json:"path"`
	Format string `json:"format"`
}

func (h *ReportHandlers) ExportReport(ctx context.Context, _ *mcp.CallToolRequest, input ExportReportInput) (*mcp.CallToolResult, ExportReportOutput, error) {
	format, err := reports.ParseFormat(input.Format)
	if err != nil {
		return nil, ExportReportOutput{}, err
	}
	kind, rep, err := h.generate(ctx, input.Type, input.From, input.To)
	if err != nil {
		return nil, ExportReportOutput{}, err
	}
	envelope := reports.NewEnvelope(kind, rep)
	path, err := reports.ExportFile(h.exportDir, format, envelope)
	if err != nil {
		return nil, ExportReportOutput{}, fmt.Errorf("failed to export report: %w", err)
	}
	return nil, ExportReportOutput{ID: envelope.ID, Path: path, Format: string(format)}, nil
}

func (h *ReportHandlers) generate(ctx context.Context, kindArg, from, to string) (reports.Kind, *reports.Report, error) {
	kind, err := reports.ParseKind(kindArg)
	if err != nil {
		return "", nil, err
	}
	now := h.db.Deals.Now()
	r, err := reports.ParseRange(from, to, now)
	if err != nil {
		return "", nil, err
	}
	rep, err := reports.Generate(ctx, reports.FromDatabase(h.db), r, now)
	if err != nil {
		return "", nil, err
	}
	return kind, rep, nil
}
