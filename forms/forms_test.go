// ABOUTME: Tests for entity form validation and submission
// ABOUTME: Uses a counting fake store to prove invalid forms never reach it
package forms

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

type fakeStore[T any] struct {
	creates int
	updates int
	last    T
	err     error
}

func (f *fakeStore[T]) Create(_ context.Context, rec T) (T, error) {
	f.creates++
	f.last = rec
	return rec, f.err
}

func (f *fakeStore[T]) Replace(_ context.Context, _ int, rec T) (T, error) {
	f.updates++
	f.last = rec
	return rec, f.err
}

func (f *fakeStore[T]) calls() int { return f.creates + f.updates }

func validQuote() models.Quote {
	addr := models.Address{Street: "1 Main St", City: "Springfield", State: "IL", Country: "USA", PostalCode: "62701"}
	return models.Quote{
		Title:           "Robots",
		ContactID:       1,
		CompanyID:       1,
		Amount:          decimal.NewFromInt(5000),
		ValidUntil:      now.AddDate(0, 0, 10),
		Description:     "Two robots",
		BillingAddress:  addr,
		ShippingAddress: addr,
	}
}

func TestQuoteWithPastValidityRejectedBeforeStore(t *testing.T) {
	store := &fakeStore[models.Quote]{}
	q := validQuote()
	q.ValidUntil = now.AddDate(0, 0, -1)

	_, err := SaveQuote(context.Background(), store, q, now)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "valid_until")
	assert.Equal(t, 0, store.calls())
}

func TestQuoteValidation(t *testing.T) {
	store := &fakeStore[models.Quote]{}
	q := validQuote()
	q.Amount = decimal.Zero
	q.ShippingAddress.City = ""

	_, err := SaveQuote(context.Background(), store, q, now)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "amount")
	assert.Contains(t, ve.Fields, "shipping_address.city")
	assert.Equal(t, 0, store.calls())

	saved, err := SaveQuote(context.Background(), store, validQuote(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, store.creates)
	assert.Regexp(t, regexp.MustCompile(`^Q-2025-\d{3}$`), saved.QuoteNumber)
}

func TestNewQuoteDefaults(t *testing.T) {
	q := NewQuote(now)
	assert.Equal(t, models.QuoteDraft, q.Status)
	assert.Equal(t, now.AddDate(0, 0, 30), q.ValidUntil)
	assert.Regexp(t, `^Q-2025-\d{3}$`, q.QuoteNumber)
}

func TestCopyBillingToShipping(t *testing.T) {
	q := validQuote()
	q.ShippingAddress = models.Address{}
	CopyBillingToShipping(&q)
	assert.Equal(t, q.BillingAddress, q.ShippingAddress)
}

func TestContactValidation(t *testing.T) {
	err := ValidateContact(models.Contact{Name: "Ada", Email: "not-an-email"})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Invalid email format", ve.Fields["email"])

	err = ValidateContact(models.Contact{Email: "ada@example.com"})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "This field is required", ve.Fields["name"])

	assert.NoError(t, ValidateContact(models.Contact{Name: "Ada", Email: "ada@example.com"}))
}

func TestCompanyValidation(t *testing.T) {
	base := models.Company{Name: "Initech", Industry: "Software", Email: "info@initech.example"}
	assert.NoError(t, ValidateCompany(base))

	bad := base
	bad.Website = "initech.example"
	bad.Employees = -1
	err := ValidateCompany(bad)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "website")
	assert.Contains(t, ve.Fields, "employees")

	ok := base
	ok.Website = "https://initech.example"
	assert.NoError(t, ValidateCompany(ok))
}

func TestActivityValidation(t *testing.T) {
	err := ValidateActivity(models.Activity{Type: models.ActivityCall})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "contact_id")
	assert.Contains(t, ve.Fields, "subject")
	assert.Contains(t, ve.Fields, "date")

	assert.NoError(t, ValidateActivity(models.Activity{Type: models.ActivityNote, ContactID: 1, Subject: "hi", Date: now}))
}

func TestSalesOrderTotalFromLineItems(t *testing.T) {
	store := &fakeStore[models.SalesOrder]{}
	o := NewSalesOrder(now)
	o.Title = "Robots"
	o.ContactID = 1
	o.CompanyID = 1
	o.Description = "Order"

	_, err := SaveSalesOrder(context.Background(), store, o, now)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "total_amount")
	assert.Equal(t, 0, store.calls())

	o.LineItems = []models.LineItem{{ProductName: "Robot", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(100), Discount: decimal.NewFromInt(10), Tax: decimal.NewFromInt(5)}}
	saved, err := SaveSalesOrder(context.Background(), store, o, now)
	require.NoError(t, err)
	assert.True(t, saved.TotalAmount.Equal(decimal.NewFromInt(189)))
	assert.Regexp(t, `^SO-2025-\d{3}$`, saved.OrderNumber)
}

func TestConvertQuoteHasNoTransaction(t *testing.T) {
	database := db.New(db.Seed{
		Quotes: []models.Quote{{ID: 1, Title: "Robots", ContactID: 1, CompanyID: 2, Amount: decimal.NewFromInt(900), Description: "d", Status: models.QuoteSent}},
	}, db.StoreOptions{Now: func() time.Time { return now }})

	order, err := ConvertQuote(context.Background(), database.Quotes, database.SalesOrders, 1, now)
	require.NoError(t, err)
	assert.Equal(t, 1, order.QuoteID)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(900)))

	q, err := database.Quotes.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteAccepted, q.Status)

	failing := &failingQuotes{QuoteStore: database.Quotes}
	order, err = ConvertQuote(context.Background(), failing, database.SalesOrders, 1, now)
	require.Error(t, err)
	assert.NotZero(t, order.ID, "the order write stands when the quote write fails")
	assert.Equal(t, 2, database.SalesOrders.Len())
}

type failingQuotes struct {
	*db.QuoteStore
}

func (f *failingQuotes) Update(context.Context, int, models.Quote) (models.Quote, error) {
	return models.Quote{}, errors.New("quote store unavailable")
}

func TestTableAndFieldValidation(t *testing.T) {
	assert.Error(t, ValidateTable(models.Table{Name: "1bad", Description: "x"}))
	assert.Error(t, ValidateTable(models.Table{Name: "good"}))
	assert.NoError(t, ValidateTable(models.Table{Name: "good_name", Description: "x"}))

	assert.Error(t, ValidateField(models.Field{Name: "has space", Type: models.FieldText}))
	assert.Error(t, ValidateField(models.Field{Name: "ok", Type: "money"}))
	assert.NoError(t, ValidateField(models.Field{Name: "ok", Type: models.FieldBoolean}))
}

func TestAddFieldSkipsStoreOnInvalidName(t *testing.T) {
	database := db.New(db.Seed{Tables: []models.Table{{ID: 1, Name: "t", Description: "d"}}}, db.StoreOptions{})
	_, err := AddField(context.Background(), database.Tables, 1, models.Field{Name: "9lives", Type: models.FieldText})
	assert.True(t, IsValidationError(err))

	tbl, err := AddField(context.Background(), database.Tables, 1, models.Field{Name: "lives", Type: models.FieldNumber})
	require.NoError(t, err)
	assert.Len(t, tbl.Fields, 1)
}
