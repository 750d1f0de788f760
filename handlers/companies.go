// ABOUTME: Company MCP tool handlers
// ABOUTME: Implements add_company, find_companies, update_company and delete_company tools
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/forms"
	"github.com/harperreed/dealboard/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type CompanyHandlers struct {
	db *db.Database
}

func NewCompanyHandlers(database *db.Database) *CompanyHandlers {
	return &CompanyHandlers{db: database}
}

type AddCompanyInput struct {
	Name        string `json:"name" jsonschema:"Company name (required)"`
	Industry    string `json:"industry" jsonschema:"Industry (required)"`
	Email       string `json:"email" jsonschema:"Main contact email (required)"`
	Website     string `json:"website,omitempty" jsonschema:"Website URL starting with http:// or https://"`
	Phone       string `json:"phone,omitempty" jsonschema:"Phone number"`
	Address     string `json:"address,omitempty" jsonschema:"Postal address"`
	Employees   int    `json:"employees,omitempty" jsonschema:"Number of employees"`
	Revenue     string `json:"revenue,omitempty" jsonschema:"Annual revenue, free text"`
	Status      string `json:"status,omitempty" jsonschema:"Active, Prospect or Inactive (default Prospect)"`
	Description string `json:"description,omitempty" jsonschema:"Description of the company"`
}

type CompanyOutput struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Industry    string `json:"industry"`
	Email       string `json:"email"`
	Website     string `json:"website,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	Employees   int    `json:"employees,omitempty"`
	Revenue     string `json:"revenue,omitempty"`
	Status      string `json:"status,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func (h *CompanyHandlers) AddCompany(ctx context.Context, _ *mcp.CallToolRequest, input AddCompanyInput) (*mcp.CallToolResult, CompanyOutput, error) {
	company := models.Company{
		Name:        input.Name,
		Industry:    input.Industry,
		Email:       input.Email,
		Website:     input.Website,
		Phone:       input.Phone,
		Address:     input.Address,
		Employees:   input.Employees,
		Revenue:     input.Revenue,
		Status:      models.CompanyStatus(input.Status),
		Description: input.Description,
	}
	if company.Status == "" {
		company.Status = models.CompanyProspect
	}

	created, err := forms.SaveCompany(ctx, h.db.Companies, company)
	if err != nil {
		return nil, CompanyOutput{}, fmt.Errorf("failed to create company: %w", err)
	}
	return nil, companyToOutput(created), nil
}

type FindCompaniesInput struct {
	Query    string `json:"query,omitempty" jsonschema:"Search query (matches name, industry and website)"`
	Industry string `json:"industry,omitempty" jsonschema:"Filter by industry"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindCompaniesOutput struct {
	Companies []CompanyOutput `json:"companies"`
}

func (h *CompanyHandlers) FindCompanies(ctx context.Context, _ *mcp.CallToolRequest, input FindCompaniesInput) (*mcp.CallToolResult, FindCompaniesOutput, error) {
	companies, err := h.db.Companies.Filter(ctx, func(c models.Company) bool {
		if input.Industry != "" && !containsFold(input.Industry, c.Industry) {
			return false
		}
		return containsFold(input.Query, c.Name, c.Industry, c.Website)
	})
	if err != nil {
		return nil, FindCompaniesOutput{}, fmt.Errorf("failed to find companies: %w", err)
	}

	companies = truncate(companies, limitOrDefault(input.Limit))
	result := make([]CompanyOutput, len(companies))
	for i, c := range companies {
		result[i] = companyToOutput(c)
	}
	return nil, FindCompaniesOutput{Companies: result}, nil
}

type UpdateCompanyInput struct {
	ID          int    `json:"id" jsonschema:"Company ID (required)"`
	Name        string `json:"name,omitempty" jsonschema:"Updated name"`
	Industry    string `json:"industry,omitempty" jsonschema:"Updated industry"`
	Email       string `json:"email,omitempty" jsonschema:"Updated email"`
	Website     string `json:"website,omitempty" jsonschema:"Updated website"`
	Phone       string `json:"phone,omitempty" jsonschema:"Updated phone"`
	Address     string `json:"address,omitempty" jsonschema:"Updated address"`
	Employees   int    `json:"employees,omitempty" jsonschema:"Updated employee count"`
	Revenue     string `json:"revenue,omitempty" jsonschema:"Updated revenue"`
	Status      string `json:"status,omitempty" jsonschema:"Updated status"`
	Description string `json:"description,omitempty" jsonschema:"Updated description"`
}

func (h *CompanyHandlers) UpdateCompany(ctx context.Context, _ *mcp.CallToolRequest, input UpdateCompanyInput) (*mcp.CallToolResult, CompanyOutput, error) {
	if input.ID == 0 {
		return nil, CompanyOutput{}, fmt.Errorf("id is required")
	}
	company, err := h.db.Companies.GetByID(ctx, input.ID)
	if err != nil {
		return nil, CompanyOutput{}, fmt.Errorf("failed to get company: %w", err)
	}

	setIfPresent(&company.Name, input.Name)
	setIfPresent(&company.Industry, input.Industry)
	setIfPresent(&company.Email, input.Email)
	setIfPresent(&company.Website, input.Website)
	setIfPresent(&company.Phone, input.Phone)
	setIfPresent(&company.Address, input.Address)
	setIfPresent(&company.Revenue, input.Revenue)
	setIfPresent(&company.Description, input.Description)
	if input.Employees > 0 {
		company.Employees = input.Employees
	}
	if input.Status != "" {
		company.Status = models.CompanyStatus(input.Status)
	}

	updated, err := forms.SaveCompany(ctx, h.db.Companies, company)
	if err != nil {
		return nil, CompanyOutput{}, fmt.Errorf("failed to update company: %w", err)
	}
	return nil, companyToOutput(updated), nil
}

func (h *CompanyHandlers) DeleteCompany(ctx context.Context, _ *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	removed, err := h.db.Companies.Delete(ctx, input.ID)
	if err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete company: %w", err)
	}
	return nil, DeleteOutput{ID: removed.ID, Deleted: true, Message: fmt.Sprintf("Deleted company %s", removed.Name)}, nil
}

func companyToOutput(c models.Company) CompanyOutput {
	return CompanyOutput{
		ID:          c.ID,
		Name:        c.Name,
		Industry:    c.Industry,
		Email:       c.Email,
		Website:     c.Website,
		Phone:       c.Phone,
		Address:     c.Address,
		Employees:   c.Employees,
		Revenue:     c.Revenue,
		Status:      string(c.Status),
		Description: c.Description,
		CreatedAt:   formatTime(c.CreatedAt),
		UpdatedAt:   formatTime(c.UpdatedAt),
	}
}
