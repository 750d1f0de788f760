// ABOUTME: Entity forms that validate input before calling a store
// ABOUTME: Covers contacts, companies, activities, quotes, sales orders and tables
package forms

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/harperreed/dealboard/models"
)

// Writer is the store surface a form submits to. A form always holds the
// whole record, so edits replace rather than merge.
type Writer[T any] interface {
	Create(ctx context.Context, rec T) (T, error)
	Replace(ctx context.Context, id int, rec T) (T, error)
}

// Reader is the store surface used to resolve references.
type Reader[T any] interface {
	GetByID(ctx context.Context, id int) (T, error)
}

// QuoteReadWriter is the quote store surface used when converting a quote.
type QuoteReadWriter interface {
	Reader[models.Quote]
	Update(ctx context.Context, id int, patch models.Quote) (models.Quote, error)
}

// save validates rec and creates it when id is zero, otherwise replaces the
// stored record with it. Nothing reaches the store when validation fails.
func save[T any](ctx context.Context, w Writer[T], id int, rec T, problems *ValidationError) (T, error) {
	var zero T
	if err := problems.OrNil(); err != nil {
		return zero, err
	}
	if id == 0 {
		return w.Create(ctx, rec)
	}
	return w.Replace(ctx, id, rec)
}

func ValidateContact(c models.Contact) error {
	return check(c).OrNil()
}

func SaveContact(ctx context.Context, w Writer[models.Contact], c models.Contact) (models.Contact, error) {
	return save(ctx, w, c.ID, c, check(c))
}

func ValidateCompany(c models.Company) error {
	return check(c).OrNil()
}

func SaveCompany(ctx context.Context, w Writer[models.Company], c models.Company) (models.Company, error) {
	return save(ctx, w, c.ID, c, check(c))
}

func ValidateActivity(a models.Activity) error {
	return check(a).OrNil()
}

func SaveActivity(ctx context.Context, w Writer[models.Activity], a models.Activity) (models.Activity, error) {
	return save(ctx, w, a.ID, a, check(a))
}

// NewQuote returns a blank quote with a fresh number, Draft status and a
// validity window of 30 days from now.
func NewQuote(now time.Time) models.Quote {
	return models.Quote{
		QuoteNumber: documentNumber("Q", now),
		Status:      models.QuoteDraft,
		ValidUntil:  now.AddDate(0, 0, 30),
	}
}

// ValidateQuote checks the quote and requires ValidUntil to be after now.
func ValidateQuote(q models.Quote, now time.Time) error {
	return quoteProblems(q, now).OrNil()
}

func quoteProblems(q models.Quote, now time.Time) *ValidationError {
	problems := check(q)
	if !q.ValidUntil.IsZero() && !q.ValidUntil.After(now) {
		problems.Add("valid_until", "Valid until date must be in the future")
	}
	return problems
}

func SaveQuote(ctx context.Context, w Writer[models.Quote], q models.Quote, now time.Time) (models.Quote, error) {
	if q.QuoteNumber == "" {
		q.QuoteNumber = documentNumber("Q", now)
	}
	return save(ctx, w, q.ID, q, quoteProblems(q, now))
}

// CopyBillingToShipping makes the shipping address match the billing one.
func CopyBillingToShipping(q *models.Quote) {
	q.ShippingAddress = q.BillingAddress
}

// NewSalesOrder returns a blank order with a fresh number dated now.
func NewSalesOrder(now time.Time) models.SalesOrder {
	return models.SalesOrder{
		OrderNumber: documentNumber("SO", now),
		Status:      models.OrderDraft,
		OrderDate:   now,
	}
}

// ValidateSalesOrder checks the order after deriving its total from any line
// items.
func ValidateSalesOrder(o models.SalesOrder) error {
	o = o.Clone()
	o.Recalculate()
	return check(o).OrNil()
}

func SaveSalesOrder(ctx context.Context, w Writer[models.SalesOrder], o models.SalesOrder, now time.Time) (models.SalesOrder, error) {
	o = o.Clone()
	o.Recalculate()
	if o.OrderNumber == "" {
		o.OrderNumber = documentNumber("SO", now)
	}
	return save(ctx, w, o.ID, o, check(o))
}

// OrderFromQuote pre-fills a sales order from a quote.
func OrderFromQuote(q models.Quote, now time.Time) models.SalesOrder {
	o := NewSalesOrder(now)
	o.Title = q.Title
	o.ContactID = q.ContactID
	o.CompanyID = q.CompanyID
	o.QuoteID = q.ID
	o.TotalAmount = q.Amount
	o.Description = q.Description
	o.Notes = q.Terms
	return o
}

// ConvertQuote creates an order from a quote and then marks the quote
// Accepted. The two writes are independent: if the quote update fails the
// order is kept and the error is returned alongside it.
func ConvertQuote(ctx context.Context, quotes QuoteReadWriter, orders Writer[models.SalesOrder], quoteID int, now time.Time) (models.SalesOrder, error) {
	q, err := quotes.GetByID(ctx, quoteID)
	if err != nil {
		return models.SalesOrder{}, err
	}
	order, err := SaveSalesOrder(ctx, orders, OrderFromQuote(q, now), now)
	if err != nil {
		return models.SalesOrder{}, err
	}
	if _, err := quotes.Update(ctx, q.ID, models.Quote{Status: models.QuoteAccepted}); err != nil {
		return order, fmt.Errorf("failed to mark quote accepted: %w", err)
	}
	return order, nil
}

func documentNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%d-%03d", prefix, now.Year(), rand.IntN(1000))
}
