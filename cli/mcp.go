// ABOUTME: MCP server subcommand
// ABOUTME: Registers every CRM tool, resource and prompt and serves them on stdio
package cli

import (
	"context"

	"github.com/harperreed/dealboard/handlers"
	"github.com/harperreed/dealboard/notify"
	"github.com/harperreed/dealboard/pipeline"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// ServerVersion is reported to MCP clients.
var ServerVersion = "dev"

// NewMCPServer builds the MCP server over app's database. The board is loaded
// once here and kept in memory for the life of the server.
func NewMCPServer(ctx context.Context, app *App) (*mcp.Server, error) {
	board := pipeline.NewBoard(app.DB.Deals, notify.LogNotifier{Logger: app.Logger},
		pipeline.WithLogger(app.Logger), pipeline.WithClock(app.now))
	if err := board.Load(ctx); err != nil {
		return nil, err
	}

	exportDir := ""
	if app.Config != nil {
		exportDir = app.Config.Export.Dir
	}

	contacts := handlers.NewContactHandlers(app.DB)
	companies := handlers.NewCompanyHandlers(app.DB)
	deals := handlers.NewDealHandlers(app.DB, board)
	activities := handlers.NewActivityHandlers(app.DB)
	quotes := handlers.NewQuoteHandlers(app.DB)
	orders := handlers.NewSalesOrderHandlers(app.DB)
	tables := handlers.NewTableHandlers(app.DB)
	pipe := handlers.NewPipelineHandlers(board)
	reps := handlers.NewReportHandlers(app.DB, exportDir)
	graphs := handlers.NewVizHandlers(app.DB)
	query := handlers.NewQueryHandlers(app.DB)
	resources := handlers.NewResourceHandlers(app.DB)
	prompts := handlers.NewPromptHandlers(app.DB)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "dealboard",
		Version: ServerVersion,
	}, nil)

	// Contacts
	mcp.AddTool(server, &mcp.Tool{Name: "add_contact", Description: "Add a new contact to the CRM"}, contacts.AddContact)
	mcp.AddTool(server, &mcp.Tool{Name: "find_contacts", Description: "Search for contacts by name, email, or company"}, contacts.FindContacts)
	mcp.AddTool(server, &mcp.Tool{Name: "update_contact", Description: "Update an existing contact's information"}, contacts.UpdateContact)
	mcp.AddTool(server, &mcp.Tool{Name: "delete_contact", Description: "Delete a contact"}, contacts.DeleteContact)
	mcp.AddTool(server, &mcp.Tool{Name: "log_contact_interaction", Description: "Log an interaction with a contact and update last contacted timestamp"}, contacts.LogContactInteraction)

	// Companies
	mcp.AddTool(server, &mcp.Tool{Name: "add_company", Description: "Add a new company to the CRM"}, companies.AddCompany)
	mcp.AddTool(server, &mcp.Tool{Name: "find_companies", Description: "Search for companies by name or industry"}, companies.FindCompanies)
	mcp.AddTool(server, &mcp.Tool{Name: "update_company", Description: "Update an existing company"}, companies.UpdateCompany)
	mcp.AddTool(server, &mcp.Tool{Name: "delete_company", Description: "Delete a company"}, companies.DeleteCompany)

	// Deals and pipeline
	mcp.AddTool(server, &mcp.Tool{Name: "create_deal", Description: "Create a new deal; probability defaults from the stage"}, deals.CreateDeal)
	mcp.AddTool(server, &mcp.Tool{Name: "find_deals", Description: "Search deals by title, stage, contact or minimum value"}, deals.FindDeals)
	mcp.AddTool(server, &mcp.Tool{Name: "update_deal", Description: "Update an existing deal's information including stage and value"}, deals.UpdateDeal)
	mcp.AddTool(server, &mcp.Tool{Name: "delete_deal", Description: "Delete a deal"}, deals.DeleteDeal)
	mcp.AddTool(server, &mcp.Tool{Name: "move_deal", Description: "Move a deal to another pipeline stage, keeping its probability"}, pipe.MoveDeal)
	mcp.AddTool(server, &mcp.Tool{Name: "pipeline_summary", Description: "Per-stage counts and values plus pipeline totals"}, pipe.PipelineSummary)

	// Activities
	mcp.AddTool(server, &mcp.Tool{Name: "log_activity", Description: "Log a call, email, meeting or note"}, activities.LogActivity)
	mcp.AddTool(server, &mcp.Tool{Name: "find_activities", Description: "List activities, newest first, by contact, deal or type"}, activities.FindActivities)
	mcp.AddTool(server, &mcp.Tool{Name: "delete_activity", Description: "Delete an activity"}, activities.DeleteActivity)

	// Quotes and sales orders
	mcp.AddTool(server, &mcp.Tool{Name: "create_quote", Description: "Create a quote valid for 30 days by default"}, quotes.CreateQuote)
	mcp.AddTool(server, &mcp.Tool{Name: "find_quotes", Description: "Search quotes by status, contact or company"}, quotes.FindQuotes)
	mcp.AddTool(server, &mcp.Tool{Name: "update_quote_status", Description: "Change a quote's status"}, quotes.UpdateQuoteStatus)
	mcp.AddTool(server, &mcp.Tool{Name: "delete_quote", Description: "Delete a quote"}, quotes.DeleteQuote)
	mcp.AddTool(server, &mcp.Tool{Name: "convert_quote", Description: "Turn a quote into a draft sales order and mark the quote accepted"}, quotes.ConvertQuote)
	mcp.AddTool(server, &mcp.Tool{Name: "create_sales_order", Description: "Create a sales order from line items or a total"}, orders.CreateSalesOrder)
	mcp.AddTool(server, &mcp.Tool{Name: "find_sales_orders", Description: "Search sales orders by status, date range or amount range"}, orders.FindSalesOrders)
	mcp.AddTool(server, &mcp.Tool{Name: "update_order_status", Description: "Change a sales order's status"}, orders.UpdateOrderStatus)
	mcp.AddTool(server, &mcp.Tool{Name: "delete_sales_order", Description: "Delete a sales order"}, orders.DeleteSalesOrder)
	mcp.AddTool(server, &mcp.Tool{Name: "order_summary", Description: "Order count, revenue and average order value"}, orders.OrderSummary)

	// Custom tables
	mcp.AddTool(server, &mcp.Tool{Name: "create_table", Description: "Define a custom table"}, tables.CreateTable)
	mcp.AddTool(server, &mcp.Tool{Name: "list_tables", Description: "List custom table definitions"}, tables.ListTables)
	mcp.AddTool(server, &mcp.Tool{Name: "update_table", Description: "Update a table's description or status"}, tables.UpdateTable)
	mcp.AddTool(server, &mcp.Tool{Name: "delete_table", Description: "Delete a table definition"}, tables.DeleteTable)
	mcp.AddTool(server, &mcp.Tool{Name: "add_field", Description: "Add a field to a table"}, tables.AddField)
	mcp.AddTool(server, &mcp.Tool{Name: "update_field", Description: "Replace a field's definition"}, tables.UpdateField)
	mcp.AddTool(server, &mcp.Tool{Name: "delete_field", Description: "Remove a field from a table"}, tables.DeleteField)

	// Reports, graphs and queries
	mcp.AddTool(server, &mcp.Tool{Name: "generate_report", Description: "Render an overview, sales, pipeline or activity report"}, reps.GenerateReport)
	mcp.AddTool(server, &mcp.Tool{Name: "export_report", Description: "Export a report as JSON, CSV or SQLite"}, reps.ExportReport)
	mcp.AddTool(server, &mcp.Tool{Name: "generate_graph", Description: "Generate a GraphViz DOT graph of the pipeline, a company, a contact or everything"}, graphs.GenerateGraph)
	mcp.AddTool(server, &mcp.Tool{Name: "dashboard", Description: "Text dashboard with pipeline, activity and stale records"}, graphs.Dashboard)
	mcp.AddTool(server, &mcp.Tool{Name: "query_crm", Description: "Universal query tool across contacts, companies, deals, activities, quotes and sales orders"}, query.QueryCRM)

	for _, r := range resources.Resources() {
		server.AddResource(r, resources.ReadResource)
	}
	for _, t := range resources.Templates() {
		server.AddResourceTemplate(t, resources.ReadResource)
	}
	for _, p := range prompts.Prompts() {
		server.AddPrompt(p, prompts.GetPrompt)
	}

	return server, nil
}

// MCPCommand starts the MCP server on stdio and blocks until the client
// disconnects or ctx is cancelled.
func MCPCommand(ctx context.Context, app *App) error {
	server, err := NewMCPServer(ctx, app)
	if err != nil {
		return err
	}
	app.Logger.Info("starting MCP server", zap.String("version", ServerVersion))
	return server.Run(ctx, &mcp.StdioTransport{})
}
