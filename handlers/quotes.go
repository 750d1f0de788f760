// ABOUTME: Quote MCP tool handlers
// ABOUTME: Implements create_quote, find_quotes, update_quote_status, delete_quote and convert_quote tools
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

type QuoteHandlers struct {
	db *db.Database
}

func NewQuoteHandlers(database *db.Database) *QuoteHandlers {
	return &QuoteHandlers{db: database}
}

type AddressInput struct {
	Street     string `json:"street" jsonschema:"Street address"`
	City       string `json:"city" jsonschema:"City"`
	State      string `json:"state" jsonschema:"State or region"`
	Country    string `json:"country" jsonschema:"Country"`
	PostalCode string `json:"postal_code" jsonschema:"Postal code"`
}

func (a AddressInput) model() models.Address {
	return models.Address(a)
}

type CreateQuoteInput struct {
	Title                 string       `json:"title" jsonschema:"Quote title (required)"`
	ContactID             int          `json:"contact_id" jsonschema:"Contact ID (required)"`
	CompanyID             int          `json:"company_id" jsonschema:"Company ID (required)"`
	Amount                string       `json:"amount" jsonschema:"Quoted amount in dollars (required, positive)"`
	Description           string       `json:"description" jsonschema:"What is being quoted (required)"`
	Terms                 string       `json:"terms,omitempty" jsonschema:"Payment and delivery terms"`
	ValidUntil            string       `json:"valid_until,omitempty" jsonschema:"Expiry date, YYYY-MM-DD (default 30 days from now, must be in the future)"`
	BillingAddress        AddressInput `json:"billing_address" jsonschema:"Billing address (required)"`
	ShippingAddress       AddressInput `json:"shipping_address,omitzero" jsonschema:"Shipping address (required unless copy_billing_to_shipping is set)"`
	CopyBillingToShipping bool         `json:"copy_billing_to_shipping,omitempty" jsonschema:"Use the billing address for shipping"`
}

type AddressOutput struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

type QuoteOutput struct {
	ID              int           `json:"id"`
	QuoteNumber     string        `json:"quote_number"`
	Title           string        `json:"title"`
	ContactID       int           `json:"contact_id"`
	CompanyID       int           `json:"company_id"`
	Amount          string        `json:"amount"`
	Status          string        `json:"status"`
	ValidUntil      string        `json:"valid_until"`
	Description     string        `json:"description"`
	Terms           string        `json:"terms,omitempty"`
	BillingAddress  AddressOutput `json:"billing_address"`
	ShippingAddress AddressOutput `json:"shipping_address"`
	CreatedDate     string        `json:"created_date"`
	UpdatedDate     string        `json:"updated_date"`
}

func (h *QuoteHandlers) CreateQuote(ctx context.Context, _ *mcp.CallToolRequest, input CreateQuoteInput) (*mcp.CallToolResult, QuoteOutput, error) {
	now := h.db.Quotes.Now()
	quote := forms.NewQuote(now)
	quote.Title = input.Title
	quote.ContactID = input.ContactID
	quote.CompanyID = input.CompanyID
	quote.Description = input.Description
	quote.Terms = input.Terms
	quote.BillingAddress = input.BillingAddress.model()
	quote.ShippingAddress = input.ShippingAddress.model()
	if input.CopyBillingToShipping {
		forms.CopyBillingToShipping(&quote)
	}

	amount, err := parseAmount("amount", input.Amount)
	if err != nil {
		return nil, QuoteOutput{}, err
	}
	quote.Amount = amount
	if input.ValidUntil != "" {
		validUntil, err := parseDate("valid_until", input.ValidUntil)
		if err != nil {
			return nil, QuoteOutput{}, err
		}
		quote.ValidUntil = validUntil
	}

	created, err := forms.SaveQuote(ctx, h.db.Quotes, quote, now)
	if err != nil {
		return nil, QuoteOutput{}, fmt.Errorf("failed to create quote: %w", err)
	}
	return nil, quoteToOutput(created), nil
}

type FindQuotesInput struct {
	ContactID int    `json:"contact_id,omitempty" jsonschema:"Filter by contact ID"`
	CompanyID int    `json:"company_id,omitempty" jsonschema:"Filter by company ID"`
	Status    string `json:"status,omitempty" jsonschema:"Filter by status"`
	Query     string `json:"query,omitempty" jsonschema:"Search title, number and description"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindQuotesOutput struct {
	Quotes []QuoteOutput `json:"quotes"`
}

func (h *QuoteHandlers) FindQuotes(ctx context.Context, _ *mcp.CallToolRequest, input FindQuotesInput) (*mcp.CallToolResult, FindQuotesOutput, error) {
	quotes, err := h.db.Quotes.Filter(ctx, func(q models.Quote) bool {
		if input.ContactID != 0 && q.ContactID != input.ContactID {
			return false
		}
		if input.CompanyID != 0 && q.CompanyID != input.CompanyID {
			return false
		}
		if input.Status != "" && !strings.EqualFold(string(q.Status), input.Status) {
			return false
		}
		return containsFold(input.Query, q.Title, q.QuoteNumber, q.Description)
	})
	if err != nil {
		return nil, FindQuotesOutput{}, fmt.Errorf("failed to find quotes: %w", err)
	}

	quotes = truncate(quotes, limitOrDefault(input.Limit))
	result := make([]QuoteOutput, len(quotes))
	for i, q := range quotes {
		result[i] = quoteToOutput(q)
	}
	return nil, FindQuotesOutput{Quotes: result}, nil
}

type UpdateQuoteStatusInput struct {
	ID     int    `json:"id" jsonschema:"Quote ID (required)"`
	Status string `json:"status" jsonschema:"Draft, Sent, Under Review, Accepted, Rejected or Expired (required)"`
}

func (h *QuoteHandlers) UpdateQuoteStatus(ctx context.Context, _ *mcp.CallToolRequest, input UpdateQuoteStatusInput) (*mcp.CallToolResult, QuoteOutput, error) {
	status := models.QuoteStatus(input.Status)
	if !slices.Contains(models.QuoteStatuses, status) {
		problems := &forms.ValidationError{}
		problems.Add("status", "Invalid quote status")
		return nil, QuoteOutput{}, problems
	}
	updated, err := h.db.Quotes.Update(ctx, input.ID, models.Quote{Status: status})
	if err != nil {
		return nil, QuoteOutput{}, fmt.Errorf("failed to update quote: %w", err)
	}
	return nil, quoteToOutput(updated), nil
}

func (h *QuoteHandlers) DeleteQuote(ctx context.Context, _ *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	removed, err := h.db.Quotes.Delete(ctx, input.ID)
	if err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete quote: %w", err)
	}
	return nil, DeleteOutput{ID: removed.ID, Deleted: true, Message: fmt.Sprintf("Deleted quote %s", removed.QuoteNumber)}, nil
}

type ConvertQuoteInput struct {
	QuoteID int `json:"quote_id" jsonschema:"ID of the quote to turn into a sales order (required)"`
}

// ConvertQuote creates a sales order from the quote and marks the quote
// Accepted. If marking the quote fails the order still exists and is
// returned alongside the error.
func (h *QuoteHandlers) ConvertQuote(ctx context.Context, _ *mcp.CallToolRequest, input ConvertQuoteInput) (*mcp.CallToolResult, SalesOrderOutput, error) {
	order, err := forms.ConvertQuote(ctx, h.db.Quotes, h.db.SalesOrders, input.QuoteID, h.db.SalesOrders.Now())
	if err != nil {
		if order.ID != 0 {
			return nil, salesOrderToOutput(order), fmt.Errorf("order %s created but quote not updated: %w", order.OrderNumber, err)
		}
		return nil, SalesOrderOutput{}, fmt.Errorf("failed to convert quote: %w", err)
	}
	return nil, salesOrderToOutput(order), nil
}

func addressToOutput(a models.Address) AddressOutput {
	return AddressOutput(a)
}

func quoteToOutput(q models.Quote) QuoteOutput {
	return QuoteOutput{
		ID:              q.ID,
		QuoteNumber:     q.QuoteNumber,
		Title:           q.Title,
		ContactID:       q.ContactID,
		CompanyID:       q.CompanyID,
		Amount:          q.Amount.StringFixed(2),
		Status:          string(q.Status),
		ValidUntil:      q.ValidUntil.Format(dateLayout),
		Description:     q.Description,
		Terms:           q.Terms,
		BillingAddress:  addressToOutput(q.BillingAddress),
		ShippingAddress: addressToOutput(q.ShippingAddress),
		CreatedDate:     formatTime(q.CreatedDate),
		UpdatedDate:     formatTime(q.UpdatedDate),
	}
}
