// ABOUTME: Contact and company CLI commands
// ABOUTME: Lists contacts and companies from the fixture-backed stores
package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/harperreed/dealboard/models"
)

// ListContactsCommand lists contacts.
func ListContactsCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("list-contacts", flag.ContinueOnError)
	query := fs.String("query", "", "Search by name, email or company")
	company := fs.Int("company", 0, "Filter by company ID")
	status := fs.String("status", "", "Filter by status (Active, Inactive, Prospect)")
	limit := fs.Int("limit", 50, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	q := strings.ToLower(*query)
	contacts, err := app.DB.Contacts.Filter(ctx, func(c models.Contact) bool {
		if *company != 0 && c.CompanyID != *company {
			return false
		}
		if *status != "" && !strings.EqualFold(string(c.Status), *status) {
			return false
		}
		return q == "" ||
			strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Email), q) ||
			strings.Contains(strings.ToLower(c.Company), q)
	})
	if err != nil {
		return fmt.Errorf("failed to find contacts: %w", err)
	}

	out := app.out()
	if len(contacts) == 0 {
		fmt.Fprintln(out, "No contacts found")
		return nil
	}
	if len(contacts) > *limit {
		contacts = contacts[:*limit]
	}

	w := app.table()
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tCOMPANY\tSTATUS\tLAST CONTACTED")
	fmt.Fprintln(w, "--\t----\t-----\t-------\t------\t--------------")
	for _, c := range contacts {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, c.Email, orDash(c.Company), c.Status, formatDate(c.LastContactedAt))
	}
	w.Flush()

	fmt.Fprintf(out, "\nTotal: %d contact(s)\n", len(contacts))
	return nil
}

// ListCompaniesCommand lists companies.
func ListCompaniesCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("list-companies", flag.ContinueOnError)
	query := fs.String("query", "", "Search by name")
	limit := fs.Int("limit", 50, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	companies, err := app.DB.Companies.FindByName(ctx, *query)
	if err != nil {
		return fmt.Errorf("failed to find companies: %w", err)
	}

	out := app.out()
	if len(companies) == 0 {
		fmt.Fprintln(out, "No companies found")
		return nil
	}
	if len(companies) > *limit {
		companies = companies[:*limit]
	}

	w := app.table()
	fmt.Fprintln(w, "ID\tNAME\tINDUSTRY\tEMPLOYEES\tSTATUS\tWEBSITE")
	fmt.Fprintln(w, "--\t----\t--------\t---------\t------\t-------")
	for _, c := range companies {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n",
			c.ID, c.Name, c.Industry, c.Employees, c.Status, orDash(c.Website))
	}
	w.Flush()

	fmt.Fprintf(out, "\nTotal: %d company(ies)\n", len(companies))
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
