// ABOUTME: Company and whole-CRM graph generation
// ABOUTME: Links companies to their contacts and contacts to their deals
package viz

import (
	"context"
	"fmt"

	"github.com/goccy/go-graphviz/cgraph"
	"github.com/harperreed/dealboard/models"
)

type entities struct {
	companies []models.Company
	contacts  []models.Contact
	deals     []models.Deal
}

func (g *GraphGenerator) load(ctx context.Context) (entities, error) {
	var e entities
	var err error
	if e.companies, err = g.db.Companies.GetAll(ctx); err != nil {
		return e, fmt.Errorf("failed to fetch companies: %w", err)
	}
	if e.contacts, err = g.db.Contacts.GetAll(ctx); err != nil {
		return e, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	if e.deals, err = g.db.Deals.GetAll(ctx); err != nil {
		return e, fmt.Errorf("failed to fetch deals: %w", err)
	}
	return e, nil
}

// GenerateCompanyGraph draws one company with its contacts and their deals.
func (g *GraphGenerator) GenerateCompanyGraph(ctx context.Context, companyID int) (string, error) {
	company, err := g.db.Companies.GetByID(ctx, companyID)
	if err != nil {
		return "", err
	}
	e, err := g.load(ctx)
	if err != nil {
		return "", err
	}
	e.companies = []models.Company{company}
	return render(ctx, company.Name, func(graph *cgraph.Graph) error {
		return drawEntities(graph, e, true)
	})
}

// GenerateCompleteGraph draws every company, contact and deal.
func (g *GraphGenerator) GenerateCompleteGraph(ctx context.Context) (string, error) {
	e, err := g.load(ctx)
	if err != nil {
		return "", err
	}
	return render(ctx, "Complete CRM Graph", func(graph *cgraph.Graph) error {
		return drawEntities(graph, e, false)
	})
}

// drawEntities adds company, contact and deal nodes. With onlyLinked set,
// contacts outside the given companies and their deals are skipped.
func drawEntities(graph *cgraph.Graph, e entities, onlyLinked bool) error {
	companyNodes := make(map[int]*cgraph.Node)
	for _, company := range e.companies {
		node, err := graph.CreateNodeByName(fmt.Sprintf("company_%d", company.ID))
		if err != nil {
			return fmt.Errorf("failed to create company node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n(%s)", company.Name, company.Industry))
		node.SetShape("box")
		node.SetStyle("filled")
		node.SetFillColor("lightblue")
		companyNodes[company.ID] = node
	}

	contactNodes := make(map[int]*cgraph.Node)
	for _, contact := range e.contacts {
		companyNode, linked := companyNodes[contact.CompanyID]
		if onlyLinked && !linked {
			continue
		}
		node, err := graph.CreateNodeByName(fmt.Sprintf("contact_%d", contact.ID))
		if err != nil {
			return fmt.Errorf("failed to create contact node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n%s", contact.Name, contact.Email))
		node.SetShape("ellipse")
		node.SetStyle("filled")
		node.SetFillColor("lightgreen")
		contactNodes[contact.ID] = node

		if linked {
			edge, err := graph.CreateEdgeByName(fmt.Sprintf("works_at_%d", contact.ID), node, companyNode)
			if err != nil {
				return fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetLabel("works at")
			edge.SetStyle("dashed")
		}
	}

	for _, deal := range e.deals {
		contactNode, linked := contactNodes[deal.ContactID]
		if onlyLinked && !linked {
			continue
		}
		node, err := graph.CreateNodeByName(fmt.Sprintf("deal_%d", deal.ID))
		if err != nil {
			return fmt.Errorf("failed to create deal node: %w", err)
		}
		node.SetLabel(dealLabel(deal))
		node.SetShape("diamond")
		node.SetStyle("filled")
		node.SetFillColor(stageColors[deal.Stage])

		if linked {
			edge, err := graph.CreateEdgeByName(fmt.Sprintf("contact_for_%d", deal.ID), contactNode, node)
			if err != nil {
				return fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetLabel("contact")
			edge.SetStyle("dotted")
		}
	}
	return nil
}
