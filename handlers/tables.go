// ABOUTME: Custom table MCP tool handlers
// ABOUTME: Implements table and field management tools; tables hold schema only, never rows
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/forms"
	"github.com/harperreed/dealboard/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type TableHandlers struct {
	db *db.Database
}

func NewTableHandlers(database *db.Database) *TableHandlers {
	return &TableHandlers{db: database}
}

type FieldInput struct {
	Name         string `json:"name" jsonschema:"Field name: a letter followed by letters, digits or underscores"`
	Type         string `json:"type" jsonschema:"text, number, email, date or boolean"`
	Required     bool   `json:"required,omitempty" jsonschema:"Whether the field must be filled in"`
	DefaultValue string `json:"default_value,omitempty" jsonschema:"Default value"`
}

func (f FieldInput) model() models.Field {
	return models.Field{Name: f.Name, Type: models.FieldType(f.Type), Required: f.Required, DefaultValue: f.DefaultValue}
}

type FieldOutput struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Required     bool   `json:"required"`
	DefaultValue string `json:"default_value,omitempty"`
}

type TableOutput struct {
	ID          int           `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      string        `json:"status"`
	Type        string        `json:"type"`
	Fields      []FieldOutput `json:"fields"`
	CreatedAt   string        `json:"created_at"`
	UpdatedAt   string        `json:"updated_at"`
}

type CreateTableInput struct {
	Name        string       `json:"name" jsonschema:"Table name: a letter followed by letters, digits or underscores (required)"`
	Description string       `json:"description" jsonschema:"What the table is for (required)"`
	Fields      []FieldInput `json:"fields,omitempty" jsonschema:"Initial fields"`
}

func (h *TableHandlers) CreateTable(ctx context.Context, _ *mcp.CallToolRequest, input CreateTableInput) (*mcp.CallToolResult, TableOutput, error) {
	table := models.Table{Name: input.Name, Description: input.Description}
	for _, f := range input.Fields {
		field := f.model()
		if err := forms.ValidateField(field); err != nil {
			return nil, TableOutput{}, fmt.Errorf("invalid field %q: %w", f.Name, err)
		}
		table.Fields = append(table.Fields, field)
	}

	created, err := forms.SaveTable(ctx, h.db.Tables, table)
	if err != nil {
		return nil, TableOutput{}, fmt.Errorf("failed to create table: %w", err)
	}
	return nil, tableToOutput(created), nil
}

type ListTablesInput struct {
	Status string `json:"status,omitempty" jsonschema:"Filter by status: active or inactive"`
}

type ListTablesOutput struct {
	Tables []TableOutput `json:"tables"`
}

func (h *TableHandlers) ListTables(ctx context.Context, _ *mcp.CallToolRequest, input ListTablesInput) (*mcp.CallToolResult, ListTablesOutput, error) {
	tables, err := h.db.Tables.Filter(ctx, func(t models.Table) bool {
		return input.Status == "" || t.Status == input.Status
	})
	if err != nil {
		return nil, ListTablesOutput{}, fmt.Errorf("failed to list tables: %w", err)
	}
	result := make([]TableOutput, len(tables))
	for i, t := range tables {
		result[i] = tableToOutput(t)
	}
	return nil, ListTablesOutput{Tables: result}, nil
}

type UpdateTableInput struct {
	ID          int    `json:"id" jsonschema:"Table ID (required)"`
	Name        string `json:"name,omitempty" jsonschema:"Updated name"`
	Description string `json:"description,omitempty" jsonschema:"Updated description"`
	Status      string `json:"status,omitempty" jsonschema:"active or inactive"`
}

func (h *TableHandlers) UpdateTable(ctx context.Context, _ *mcp.CallToolRequest, input UpdateTableInput) (*mcp.CallToolResult, TableOutput, error) {
	table, err := h.db.Tables.GetByID(ctx, input.ID)
	if err != nil {
		return nil, TableOutput{}, fmt.Errorf("failed to get table: %w", err)
	}
	setIfPresent(&table.Name, input.Name)
	setIfPresent(&table.Description, input.Description)
	setIfPresent(&table.Status, input.Status)

	updated, err := forms.SaveTable(ctx, h.db.Tables, table)
	if err != nil {
		return nil, TableOutput{}, fmt.Errorf("failed to update table: %w", err)
	}
	return nil, tableToOutput(updated), nil
}

func (h *TableHandlers) DeleteTable(ctx context.Context, _ *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	removed, err := h.db.Tables.Delete(ctx, input.ID)
	if err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete table: %w", err)
	}
	return nil, DeleteOutput{ID: removed.ID, Deleted: true, Message: fmt.Sprintf("Deleted table %s", removed.Name)}, nil
}

type AddFieldInput struct {
	TableID int        `json:"table_id" jsonschema:"Table ID (required)"`
	Field   FieldInput `json:"field" jsonschema:"Field to add (required)"`
}

func (h *TableHandlers) AddField(ctx context.Context, _ *mcp.CallToolRequest, input AddFieldInput) (*mcp.CallToolResult, TableOutput, error) {
	table, err := forms.AddField(ctx, h.db.Tables, input.TableID, input.Field.model())
	if err != nil {
		return nil, TableOutput{}, fmt.Errorf("failed to add field: %w", err)
	}
	return nil, tableToOutput(table), nil
}

type UpdateFieldInput struct {
	TableID int        `json:"table_id" jsonschema:"Table ID (required)"`
	Name    string     `json:"name" jsonschema:"Current field name (required)"`
	Field   FieldInput `json:"field" jsonschema:"Replacement field definition (required)"`
}

func (h *TableHandlers) UpdateField(ctx context.Context, _ *mcp.CallToolRequest, input UpdateFieldInput) (*mcp.CallToolResult, TableOutput, error) {
	table, err := forms.UpdateField(ctx, h.db.Tables, input.TableID, input.Name, input.Field.model())
	if err != nil {
		return nil, TableOutput{}, fmt.Errorf("failed to update field: %w", err)
	}
	return nil, tableToOutput(table), nil
}

type DeleteFieldInput struct {
	TableID int    `json:"table_id" jsonschema:"Table ID (required)"`
	Name    string `json:"name" jsonschema:"Field name (required)"`
}

func (h *TableHandlers) DeleteField(ctx context.Context, _ *mcp.CallToolRequest, input DeleteFieldInput) (*mcp.CallToolResult, TableOutput, error) {
	table, err := h.db.Tables.DeleteField(ctx, input.TableID, input.Name)
	if err != nil {
		return nil, TableOutput{}, fmt.Errorf("failed to delete field: %w", err)
	}
	return nil, tableToOutput(table), nil
}

func tableToOutput(t models.Table) TableOutput {
	out := TableOutput{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Status:      t.Status,
		Type:        t.Type,
		Fields:      make([]FieldOutput, len(t.Fields)),
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
	}
	for i, f := range t.Fields {
		out.Fields[i] = FieldOutput{Name: f.Name, Type: string(f.Type), Required: f.Required, DefaultValue: f.DefaultValue}
	}
	return out
}
