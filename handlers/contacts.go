// ABOUTME: Contact MCP tool handlers
// ABOUTME: Implements add_contact, find_contacts, update_contact, delete_contact and log_contact_interaction
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/forms"
	"github.com/harperreed/dealboard/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ContactHandlers struct {
	db *db.Database
}

func NewContactHandlers(database *db.Database) *ContactHandlers {
	return &ContactHandlers{db: database}
}

type AddContactInput struct {
	Name        string   `json:"name" jsonschema:"Contact name (required)"`
	Email       string   `json:"email" jsonschema:"Contact email address (required)"`
	Phone       string   `json:"phone,omitempty" jsonschema:"Contact phone number"`
	CompanyName string   `json:"company_name,omitempty" jsonschema:"Company name, linked when it matches an existing company"`
	Position    string   `json:"position,omitempty" jsonschema:"Job title"`
	Status      string   `json:"status,omitempty" jsonschema:"Active, Inactive or Prospect (default Prospect)"`
	Tags        []string `json:"tags,omitempty" jsonschema:"Free-form tags"`
	Notes       string   `json:"notes,omitempty" jsonschema:"Additional notes about the contact"`
}

type ContactOutput struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone,omitempty"`
	Company         string   `json:"company,omitempty"`
	CompanyID       int      `json:"company_id,omitempty"`
	Position        string   `json:"position,omitempty"`
	Status          string   `json:"status,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	CreatedAt       string   `json:"created_at"`
	LastContactedAt *string  `json:"last_contacted_at,omitempty"`
}

func (h *ContactHandlers) AddContact(ctx context.Context, _ *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	contact := models.Contact{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Company:  input.CompanyName,
		Position: input.Position,
		Status:   models.ContactStatus(input.Status),
		Tags:     input.Tags,
		Notes:    input.Notes,
	}
	if contact.Status == "" {
		contact.Status = models.ContactProspect
	}
	if err := h.linkCompany(ctx, &contact); err != nil {
		return nil, ContactOutput{}, err
	}

	created, err := forms.SaveContact(ctx, h.db.Contacts, contact)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to create contact: %w", err)
	}
	return nil, contactToOutput(created), nil
}

// linkCompany sets CompanyID when the company name matches an existing
// company exactly, ignoring case.
func (h *ContactHandlers) linkCompany(ctx context.Context, contact *models.Contact) error {
	if contact.Company == "" {
		return nil
	}
	matches, err := h.db.Companies.FindByName(ctx, contact.Company)
	if err != nil {
		return fmt.Errorf("failed to lookup company: %w", err)
	}
	for _, c := range matches {
		if strings.EqualFold(c.Name, contact.Company) {
			contact.CompanyID = c.ID
			contact.Company = c.Name
			return nil
		}
	}
	return nil
}

type FindContactsInput struct {
	Query     string `json:"query,omitempty" jsonschema:"Search query (matches name, email and company)"`
	CompanyID int    `json:"company_id,omitempty" jsonschema:"Filter by company ID"`
	Status    string `json:"status,omitempty" jsonschema:"Filter by status"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
}

func (h *ContactHandlers) FindContacts(ctx context.Context, _ *mcp.CallToolRequest, input FindContactsInput) (*mcp.CallToolResult, FindContactsOutput, error) {
	contacts, err := h.db.Contacts.Filter(ctx, func(c models.Contact) bool {
		if input.CompanyID != 0 && c.CompanyID != input.CompanyID {
			return false
		}
		if input.Status != "" && !strings.EqualFold(string(c.Status), input.Status) {
			return false
		}
		return containsFold(input.Query, c.Name, c.Email, c.Company)
	})
	if err != nil {
		return nil, FindContactsOutput{}, fmt.Errorf("failed to find contacts: %w", err)
	}

	contacts = truncate(contacts, limitOrDefault(input.Limit))
	result := make([]ContactOutput, len(contacts))
	for i, contact := range contacts {
		result[i] = contactToOutput(contact)
	}
	return nil, FindContactsOutput{Contacts: result}, nil
}

type UpdateContactInput struct {
	ID       int      `json:"id" jsonschema:"Contact ID (required)"`
	Name     string   `json:"name,omitempty" jsonschema:"Updated contact name"`
	Email    string   `json:"email,omitempty" jsonschema:"Updated email address"`
	Phone    string   `json:"phone,omitempty" jsonschema:"Updated phone number"`
	Company  string   `json:"company,omitempty" jsonschema:"Updated company name"`
	Position string   `json:"position,omitempty" jsonschema:"Updated job title"`
	Status   string   `json:"status,omitempty" jsonschema:"Updated status"`
	Tags     []string `json:"tags,omitempty" jsonschema:"Replacement tag list"`
	Notes    string   `json:"notes,omitempty" jsonschema:"Updated notes"`
}

func (h *ContactHandlers) UpdateContact(ctx context.Context, _ *mcp.CallToolRequest, input UpdateContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.ID == 0 {
		return nil, ContactOutput{}, fmt.Errorf("id is required")
	}
	contact, err := h.db.Contacts.GetByID(ctx, input.ID)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to get contact: %w", err)
	}

	setIfPresent(&contact.Name, input.Name)
	setIfPresent(&contact.Email, input.Email)
	setIfPresent(&contact.Phone, input.Phone)
	setIfPresent(&contact.Position, input.Position)
	setIfPresent(&contact.Notes, input.Notes)
	if input.Status != "" {
		contact.Status = models.ContactStatus(input.Status)
	}
	if input.Tags != nil {
		contact.Tags = input.Tags
	}
	if input.Company != "" {
		contact.Company = input.Company
		if err := h.linkCompany(ctx, &contact); err != nil {
			return nil, ContactOutput{}, err
		}
	}

	updated, err := forms.SaveContact(ctx, h.db.Contacts, contact)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to update contact: %w", err)
	}
	return nil, contactToOutput(updated), nil
}

type DeleteInput struct {
	ID int `json:"id" jsonschema:"Record ID (required)"`
}

type DeleteOutput struct {
	ID      int    `json:"id"`
	Deleted bool   `json:"deleted"`
	Message string `json:"message"`
}

func (h *ContactHandlers) DeleteContact(ctx context.Context, _ *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	removed, err := h.db.Contacts.Delete(ctx, input.ID)
	if err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil, DeleteOutput{ID: removed.ID, Deleted: true, Message: fmt.Sprintf("Deleted contact %s", removed.Name)}, nil
}

type LogInteractionInput struct {
	ContactID int    `json:"contact_id" jsonschema:"Contact ID (required)"`
	Type      string `json:"type,omitempty" jsonschema:"Call, Email, Meeting or Note (default Note)"`
	Subject   string `json:"subject" jsonschema:"Short description of the interaction (required)"`
	Notes     string `json:"notes,omitempty" jsonschema:"Interaction details"`
	DealID    int    `json:"deal_id,omitempty" jsonschema:"Related deal ID"`
	Date      string `json:"date,omitempty" jsonschema:"When it happened, YYYY-MM-DD (default now)"`
}

type LogInteractionOutput struct {
	Contact  ContactOutput  `json:"contact"`
	Activity ActivityOutput `json:"activity"`
}

// LogContactInteraction records an activity and stamps the contact's last
// contacted time.
func (h *ContactHandlers) LogContactInteraction(ctx context.Context, _ *mcp.CallToolRequest, input LogInteractionInput) (*mcp.CallToolResult, LogInteractionOutput, error) {
	date, err := parseDate("date", input.Date)
	if err != nil {
		return nil, LogInteractionOutput{}, err
	}
	if date.IsZero() {
		date = h.db.Activities.Now()
	}
	kind := models.ActivityType(input.Type)
	if kind == "" {
		kind = models.ActivityNote
	}

	activity, err := forms.SaveActivity(ctx, h.db.Activities, models.Activity{
		Type:      kind,
		ContactID: input.ContactID,
		DealID:    input.DealID,
		Subject:   input.Subject,
		Notes:     input.Notes,
		Date:      date,
	})
	if err != nil {
		return nil, LogInteractionOutput{}, fmt.Errorf("failed to log interaction: %w", err)
	}
	contact, err := h.db.Contacts.UpdateLastContacted(ctx, input.ContactID)
	if err != nil {
		return nil, LogInteractionOutput{}, fmt.Errorf("failed to update last contacted: %w", err)
	}
	return nil, LogInteractionOutput{Contact: contactToOutput(contact), Activity: activityToOutput(activity)}, nil
}

func setIfPresent(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func contactToOutput(c models.Contact) ContactOutput {
	return ContactOutput{
		ID:              c.ID,
		Name:            c.Name,
		Email:           c.Email,
		Phone:           c.Phone,
		Company:         c.Company,
		CompanyID:       c.CompanyID,
		Position:        c.Position,
		Status:          string(c.Status),
		Tags:            c.Tags,
		Notes:           c.Notes,
		CreatedAt:       formatTime(c.CreatedAt),
		LastContactedAt: formatTimePtr(c.LastContactedAt),
	}
}
