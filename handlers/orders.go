// ABOUTME: Sales order MCP tool handlers
// ABOUTME: Implements create_sales_order, find_sales_orders, update_order_status, delete_sales_order and order_summary
package handlers

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/forms"
	"github.com/harperreed/dealboard/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type SalesOrderHandlers struct {
	db *db.Database
}

func NewSalesOrderHandlers(database *db.Database) *SalesOrderHandlers {
	return &SalesOrderHandlers{db: database}
}

type LineItemInput struct {
	ProductName string `json:"product_name" jsonschema:"Product name"`
	Quantity    string `json:"quantity" jsonschema:"Quantity"`
	UnitPrice   string `json:"unit_price" jsonschema:"Unit price in dollars"`
	Discount    string `json:"discount,omitempty" jsonschema:"Discount percentage"`
	Tax         string `json:"tax,omitempty" jsonschema:"Tax percentage applied after discount"`
}

func (li LineItemInput) model() (models.LineItem, error) {
	var (
		item = models.LineItem{ProductName: li.ProductName}
		err  error
	)
	if item.Quantity, err = parseAmount("quantity", li.Quantity); err != nil {
		return item, err
	}
	if item.UnitPrice, err = parseAmount("unit_price", li.UnitPrice); err != nil {
		return item, err
	}
	if item.Discount, err = parseAmount("discount", li.Discount); err != nil {
		return item, err
	}
	if item.Tax, err = parseAmount("tax", li.Tax); err != nil {
		return item, err
	}
	return item, nil
}

type CreateSalesOrderInput struct {
	Title        string          `json:"title" jsonschema:"Order title (required)"`
	ContactID    int             `json:"contact_id" jsonschema:"Contact ID (required)"`
	CompanyID    int             `json:"company_id" jsonschema:"Company ID (required)"`
	Description  string          `json:"description" jsonschema:"Order description (required)"`
	Notes        string          `json:"notes,omitempty" jsonschema:"Internal notes"`
	OrderDate    string          `json:"order_date,omitempty" jsonschema:"Order date, YYYY-MM-DD (default today)"`
	DeliveryDate string          `json:"delivery_date,omitempty" jsonschema:"Expected delivery date, YYYY-MM-DD"`
	TotalAmount  string          `json:"total_amount,omitempty" jsonschema:"Order total, ignored when line items are given"`
	LineItems    []LineItemInput `json:"line_items,omitempty" jsonschema:"Line items; the total is their sum"`
}

type LineItemOutput struct {
	ProductName string `json:"product_name"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Discount    string `json:"discount"`
	Tax         string `json:"tax"`
	Total       string `json:"total"`
}

type SalesOrderOutput struct {
	ID           int              `json:"id"`
	OrderNumber  string           `json:"order_number"`
	Title        string           `json:"title"`
	ContactID    int              `json:"contact_id"`
	CompanyID    int              `json:"company_id"`
	QuoteID      int              `json:"quote_id,omitempty"`
	Status       string           `json:"status"`
	OrderDate    string           `json:"order_date"`
	DeliveryDate *string          `json:"delivery_date,omitempty"`
	Description  string           `json:"description"`
	Notes        string           `json:"notes,omitempty"`
	LineItems    []LineItemOutput `json:"line_items,omitempty"`
	TotalAmount  string           `json:"total_amount"`
	CreatedDate  string           `json:"created_date"`
	UpdatedDate  string           `json:"updated_date"`
}

func (h *SalesOrderHandlers) CreateSalesOrder(ctx context.Context, _ *mcp.CallToolRequest, input CreateSalesOrderInput) (*mcp.CallToolResult, SalesOrderOutput, error) {
	now := h.db.SalesOrders.Now()
	order := forms.NewSalesOrder(now)
	order.Title = input.Title
	order.ContactID = input.ContactID
	order.CompanyID = input.CompanyID
	order.Description = input.Description
	order.Notes = input.Notes

	var err error
	if input.OrderDate != "" {
		if order.OrderDate, err = parseDate("order_date", input.OrderDate); err != nil {
			return nil, SalesOrderOutput{}, err
		}
	}
	if input.DeliveryDate != "" {
		delivery, err := parseDate("delivery_date", input.DeliveryDate)
		if err != nil {
			return nil, SalesOrderOutput{}, err
		}
		order.DeliveryDate = &delivery
	}
	if order.TotalAmount, err = parseAmount("total_amount", input.TotalAmount); err != nil {
		return nil, SalesOrderOutput{}, err
	}
	for _, li := range input.LineItems {
		item, err := li.model()
		if err != nil {
			return nil, SalesOrderOutput{}, err
		}
		order.LineItems = append(order.LineItems, item)
	}

	created, err := forms.SaveSalesOrder(ctx, h.db.SalesOrders, order, now)
	if err != nil {
		return nil, SalesOrderOutput{}, fmt.Errorf("failed to create sales order: %w", err)
	}
	return nil, salesOrderToOutput(created), nil
}

type FindSalesOrdersInput struct {
	ContactID int    `json:"contact_id,omitempty" jsonschema:"Filter by contact ID"`
	CompanyID int    `json:"company_id,omitempty" jsonschema:"Filter by company ID"`
	Status    string `json:"status,omitempty" jsonschema:"Filter by status"`
	From      string `json:"from,omitempty" jsonschema:"Earliest order date, YYYY-MM-DD"`
	To        string `json:"to,omitempty" jsonschema:"Latest order date, YYYY-MM-DD (inclusive)"`
	MinAmount string `json:"min_amount,omitempty" jsonschema:"Smallest order total"`
	MaxAmount string `json:"max_amount,omitempty" jsonschema:"Largest order total"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindSalesOrdersOutput struct {
	Orders []SalesOrderOutput `json:"orders"`
}

func (h *SalesOrderHandlers) FindSalesOrders(ctx context.Context, _ *mcp.CallToolRequest, input FindSalesOrdersInput) (*mcp.CallToolResult, FindSalesOrdersOutput, error) {
	from, err := parseDate("from", input.From)
	if err != nil {
		return nil, FindSalesOrdersOutput{}, err
	}
	to, err := parseDate("to", input.To)
	if err != nil {
		return nil, FindSalesOrdersOutput{}, err
	}
	if !to.IsZero() {
		to = to.AddDate(0, 0, 1).Add(-1)
	}
	minAmount, err := parseAmount("min_amount", input.MinAmount)
	if err != nil {
		return nil, FindSalesOrdersOutput{}, err
	}
	maxAmount, err := parseAmount("max_amount", input.MaxAmount)
	if err != nil {
		return nil, FindSalesOrdersOutput{}, err
	}

	orders, err := h.db.SalesOrders.Filter(ctx, func(o models.SalesOrder) bool {
		switch {
		case input.ContactID != 0 && o.ContactID != input.ContactID,
			input.CompanyID != 0 && o.CompanyID != input.CompanyID,
			input.Status != "" && !strings.EqualFold(string(o.Status), input.Status),
			!from.IsZero() && o.OrderDate.Before(from),
			!to.IsZero() && o.OrderDate.After(to),
			o.TotalAmount.LessThan(minAmount),
			input.MaxAmount != "" && o.TotalAmount.GreaterThan(maxAmount):
			return false
		}
		return true
	})
	if err != nil {
		return nil, FindSalesOrdersOutput{}, fmt.Errorf("failed to find sales orders: %w", err)
	}

	orders = truncate(orders, limitOrDefault(input.Limit))
	result := make([]SalesOrderOutput, len(orders))
	for i, o := range orders {
		result[i] = salesOrderToOutput(o)
	}
	return nil, FindSalesOrdersOutput{Orders: result}, nil
}

type UpdateOrderStatusInput struct {
	ID     int    `json:"id" jsonschema:"Sales order ID (required)"`
	Status string `json:"status" jsonschema:"Draft, Confirmed, In Progress, Shipped, Delivered or Cancelled (required)"`
}

func (h *SalesOrderHandlers) UpdateOrderStatus(ctx context.Context, _ *mcp.CallToolRequest, input UpdateOrderStatusInput) (*mcp.CallToolResult, SalesOrderOutput, error) {
	status := models.OrderStatus(input.Status)
	if !slices.Contains(models.OrderStatuses, status) {
		problems := &forms.ValidationError{}
		problems.Add("status", "Invalid order status")
		return nil, SalesOrderOutput{}, problems
	}
	updated, err := h.db.SalesOrders.Update(ctx, input.ID, models.SalesOrder{Status: status})
	if err != nil {
		return nil, SalesOrderOutput{}, fmt.Errorf("failed to update sales order: %w", err)
	}
	return nil, salesOrderToOutput(updated), nil
}

func (h *SalesOrderHandlers) DeleteSalesOrder(ctx context.Context, _ *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	removed, err := h.db.SalesOrders.Delete(ctx, input.ID)
	if err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete sales order: %w", err)
	}
	return nil, DeleteOutput{ID: removed.ID, Deleted: true, Message: fmt.Sprintf("Deleted sales order %s", removed.OrderNumber)}, nil
}

type OrderSummaryInput struct{}

type OrderSummaryOutput struct {
	TotalOrders       int            `json:"total_orders"`
	TotalRevenue      string         `json:"total_revenue"`
	AverageOrderValue string         `json:"average_order_value"`
	StatusCounts      map[string]int `json:"status_counts"`
}

func (h *SalesOrderHandlers) OrderSummary(ctx context.Context, _ *mcp.CallToolRequest, _ OrderSummaryInput) (*mcp.CallToolResult, OrderSummaryOutput, error) {
	summary, err := h.db.SalesOrders.Summary(ctx)
	if err != nil {
		return nil, OrderSummaryOutput{}, fmt.Errorf("failed to summarize sales orders: %w", err)
	}
	counts := make(map[string]int, len(summary.StatusCounts))
	for status, n := range summary.StatusCounts {
		counts[string(status)] = n
	}
	return nil, OrderSummaryOutput{
		TotalOrders:       summary.TotalOrders,
		TotalRevenue:      summary.TotalRevenue.StringFixed(2),
		AverageOrderValue: summary.AverageOrderValue.StringFixed(2),
		StatusCounts:      counts,
	}, nil
}

func salesOrderToOutput(o models.SalesOrder) SalesOrderOutput {
	out := SalesOrderOutput{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		Title:        o.Title,
		ContactID:    o.ContactID,
		CompanyID:    o.CompanyID,
		QuoteID:      o.QuoteID,
		Status:       string(o.Status),
		OrderDate:    o.OrderDate.Format(dateLayout),
		DeliveryDate: formatTimePtr(o.DeliveryDate),
		Description:  o.Description,
		Notes:        o.Notes,
		TotalAmount:  o.TotalAmount.StringFixed(2),
		CreatedDate:  formatTime(o.CreatedDate),
		UpdatedDate:  formatTime(o.UpdatedDate),
	}
	for _, li := range o.LineItems {
		out.LineItems = append(out.LineItems, LineItemOutput{
			ProductName: li.ProductName,
			Quantity:    li.Quantity.String(),
			UnitPrice:   li.UnitPrice.StringFixed(2),
			Discount:    li.Discount.String(),
			Tax:         li.Tax.String(),
			Total:       li.Total.StringFixed(2),
		})
	}
	return out
}
