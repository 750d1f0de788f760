// ABOUTME: Data models for CRM entities
// ABOUTME: Defines Contact, Company, Deal, Activity, Quote, SalesOrder and Table structs
package models

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Optional fields carry omitzero so that a zero value in an update patch
// means "leave unchanged". The validate tags are checked by the forms
// package before anything reaches a store.

type ContactStatus string

const (
	ContactActive   ContactStatus = "Active"
	ContactInactive ContactStatus = "Inactive"
	ContactProspect ContactStatus = "Prospect"
)

type Contact struct {
	ID              int           `json:"id,omitzero"`
	Name            string        `json:"name,omitzero" validate:"required"`
	Email           string        `json:"email,omitzero" validate:"required,crm_email"`
	Phone           string        `json:"phone,omitzero"`
	Company         string        `json:"company,omitzero"`
	CompanyID       int           `json:"company_id,omitzero"`
	Position        string        `json:"position,omitzero"`
	Status          ContactStatus `json:"status,omitzero" validate:"omitempty,oneof=Active Inactive Prospect"`
	Tags            []string      `json:"tags,omitempty"`
	Notes           string        `json:"notes,omitzero"`
	CreatedAt       time.Time     `json:"created_at,omitzero"`
	LastContactedAt *time.Time    `json:"last_contacted_at,omitempty"`
}

type CompanyStatus string

const (
	CompanyActive   CompanyStatus = "Active"
	CompanyProspect CompanyStatus = "Prospect"
	CompanyInactive CompanyStatus = "Inactive"
)

type Company struct {
	ID          int           `json:"id,omitzero"`
	Name        string        `json:"name,omitzero" validate:"required"`
	Industry    string        `json:"industry,omitzero" validate:"required"`
	Website     string        `json:"website,omitzero" validate:"omitempty,http_url"`
	Email       string        `json:"email,omitzero" validate:"required,crm_email"`
	Phone       string        `json:"phone,omitzero"`
	Address     string        `json:"address,omitzero"`
	Employees   int           `json:"employees,omitzero" validate:"gte=0"`
	Revenue     string        `json:"revenue,omitzero"`
	Status      CompanyStatus `json:"status,omitzero" validate:"omitempty,oneof=Active Prospect Inactive"`
	Description string        `json:"description,omitzero"`
	CreatedAt   time.Time     `json:"created_at,omitzero"`
	UpdatedAt   time.Time     `json:"updated_at,omitzero"`
}

// Deal is one opportunity on the pipeline board.
//
// ContactName is copied from the contact when the deal form is saved and is
// not refreshed if the contact is renamed later.
type Deal struct {
	ID                int             `json:"id,omitzero"`
	Title             string          `json:"title,omitzero" validate:"required"`
	Value             decimal.Decimal `json:"value,omitzero" validate:"gt=0"`
	ContactID         int             `json:"contact_id,omitzero" validate:"required"`
	ContactName       string          `json:"contact_name,omitzero"`
	Stage             Stage           `json:"stage,omitzero" validate:"required,oneof=Lead Qualified Proposal Negotiation Closed"`
	Probability       int             `json:"probability,omitzero" validate:"gte=0,lte=100"`
	ExpectedCloseDate *time.Time      `json:"expected_close_date,omitempty"`
	Notes             string          `json:"notes,omitzero"`
	CreatedAt         time.Time       `json:"created_at,omitzero"`
	UpdatedAt         time.Time       `json:"updated_at,omitzero"`
}

type ActivityType string

const (
	ActivityCall    ActivityType = "Call"
	ActivityEmail   ActivityType = "Email"
	ActivityMeeting ActivityType = "Meeting"
	ActivityNote    ActivityType = "Note"
)

// ActivityTypes lists the activity kinds in display order.
var ActivityTypes = []ActivityType{ActivityCall, ActivityEmail, ActivityMeeting, ActivityNote}

type Activity struct {
	ID        int          `json:"id,omitzero"`
	Type      ActivityType `json:"type,omitzero" validate:"required,oneof=Call Email Meeting Note"`
	ContactID int          `json:"contact_id,omitzero" validate:"required"`
	DealID    int          `json:"deal_id,omitzero"`
	Subject   string       `json:"subject,omitzero" validate:"required"`
	Notes     string       `json:"notes,omitzero"`
	Date      time.Time    `json:"date,omitzero" validate:"required"`
	CreatedAt time.Time    `json:"created_at,omitzero"`
}

type QuoteStatus string

const (
	QuoteDraft       QuoteStatus = "Draft"
	QuoteSent        QuoteStatus = "Sent"
	QuoteUnderReview QuoteStatus = "Under Review"
	QuoteAccepted    QuoteStatus = "Accepted"
	QuoteRejected    QuoteStatus = "Rejected"
	QuoteExpired     QuoteStatus = "Expired"
)

var QuoteStatuses = []QuoteStatus{QuoteDraft, QuoteSent, QuoteUnderReview, QuoteAccepted, QuoteRejected, QuoteExpired}

type Address struct {
	Street     string `json:"street,omitzero" validate:"required"`
	City       string `json:"city,omitzero" validate:"required"`
	State      string `json:"state,omitzero" validate:"required"`
	Country    string `json:"country,omitzero" validate:"required"`
	PostalCode string `json:"postal_code,omitzero" validate:"required"`
}

type Quote struct {
	ID              int             `json:"id,omitzero"`
	QuoteNumber     string          `json:"quote_number,omitzero"`
	Title           string          `json:"title,omitzero" validate:"required"`
	ContactID       int             `json:"contact_id,omitzero" validate:"required"`
	CompanyID       int             `json:"company_id,omitzero" validate:"required"`
	Amount          decimal.Decimal `json:"amount,omitzero" validate:"gt=0"`
	Status          QuoteStatus     `json:"status,omitzero"`
	ValidUntil      time.Time       `json:"valid_until,omitzero" validate:"required"`
	Description     string          `json:"description,omitzero" validate:"required"`
	Terms           string          `json:"terms,omitzero"`
	BillingAddress  Address         `json:"billing_address,omitzero"`
	ShippingAddress Address         `json:"shipping_address,omitzero"`
	CreatedDate     time.Time       `json:"created_date,omitzero"`
	UpdatedDate     time.Time       `json:"updated_date,omitzero"`
}

type OrderStatus string

const (
	OrderDraft      OrderStatus = "Draft"
	OrderConfirmed  OrderStatus = "Confirmed"
	OrderInProgress OrderStatus = "In Progress"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

var OrderStatuses = []OrderStatus{OrderDraft, OrderConfirmed, OrderInProgress, OrderShipped, OrderDelivered, OrderCancelled}

type SalesOrder struct {
	ID           int             `json:"id,omitzero"`
	OrderNumber  string          `json:"order_number,omitzero"`
	Title        string          `json:"title,omitzero" validate:"required"`
	ContactID    int             `json:"contact_id,omitzero" validate:"required"`
	CompanyID    int             `json:"company_id,omitzero" validate:"required"`
	QuoteID      int             `json:"quote_id,omitzero"`
	Status       OrderStatus     `json:"status,omitzero"`
	OrderDate    time.Time       `json:"order_date,omitzero" validate:"required"`
	DeliveryDate *time.Time      `json:"delivery_date,omitempty"`
	Description  string          `json:"description,omitzero" validate:"required"`
	Notes        string          `json:"notes,omitzero"`
	LineItems    []LineItem      `json:"line_items,omitempty"`
	TotalAmount  decimal.Decimal `json:"total_amount,omitzero" validate:"gt=0"`
	CreatedDate  time.Time       `json:"created_date,omitzero"`
	UpdatedDate  time.Time       `json:"updated_date,omitzero"`
}

type FieldType string

const (
	FieldText    FieldType = "text"
	FieldNumber  FieldType = "number"
	FieldEmail   FieldType = "email"
	FieldDate    FieldType = "date"
	FieldBoolean FieldType = "boolean"
)

var FieldTypes = []FieldType{FieldText, FieldNumber, FieldEmail, FieldDate, FieldBoolean}

const (
	TableStatusActive   = "active"
	TableStatusInactive = "inactive"
	TableTypeSystem     = "system"
	TableTypeCustom     = "custom"
)

// Table is schema metadata for a user-defined record type. No rows are
// ever stored against it.
type Table struct {
	ID          int       `json:"id,omitzero"`
	Name        string    `json:"name,omitzero" validate:"required,identifier"`
	Description string    `json:"description,omitzero" validate:"required"`
	Status      string    `json:"status,omitzero"`
	Type        string    `json:"type,omitzero"`
	Fields      []Field   `json:"fields,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

type Field struct {
	Name         string    `json:"name,omitzero" validate:"required,identifier"`
	Type         FieldType `json:"type,omitzero" validate:"required,oneof=text number email date boolean"`
	Required     bool      `json:"required,omitzero"`
	DefaultValue string    `json:"default_value,omitzero"`
}

// Record identity and copy helpers used by the generic store.

func (c *Contact) RecordID() int       { return c.ID }
func (c *Contact) SetRecordID(id int)  { c.ID = id }
func (c *Company) RecordID() int       { return c.ID }
func (c *Company) SetRecordID(id int)  { c.ID = id }
func (d *Deal) RecordID() int          { return d.ID }
func (d *Deal) SetRecordID(id int)     { d.ID = id }
func (a *Activity) RecordID() int      { return a.ID }
func (a *Activity) SetRecordID(id int) { a.ID = id }
func (q *Quote) RecordID() int         { return q.ID }
func (q *Quote) SetRecordID(id int)    { q.ID = id }
func (o *SalesOrder) RecordID() int    { return o.ID }
func (o *SalesOrder) SetRecordID(id int) { o.ID = id }
func (t *Table) RecordID() int      { return t.ID }
func (t *Table) SetRecordID(id int) { t.ID = id }

func (c Contact) Clone() Contact {
	c.Tags = slices.Clone(c.Tags)
	c.LastContactedAt = cloneTime(c.LastContactedAt)
	return c
}

func (c Company) Clone() Company { return c }

func (d Deal) Clone() Deal {
	d.ExpectedCloseDate = cloneTime(d.ExpectedCloseDate)
	return d
}

func (a Activity) Clone() Activity { return a }

func (q Quote) Clone() Quote { return q }

func (o SalesOrder) Clone() SalesOrder {
	o.LineItems = slices.Clone(o.LineItems)
	o.DeliveryDate = cloneTime(o.DeliveryDate)
	return o
}

func (t Table) Clone() Table {
	t.Fields = slices.Clone(t.Fields)
	return t
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
