// ABOUTME: Single-contact graph generation
// ABOUTME: Shows a contact with its deals and logged activities
package viz

import (
	"context"
	"fmt"

	"github.com/goccy/go-graphviz/cgraph"
)

func (g *GraphGenerator) GenerateContactGraph(ctx context.Context, contactID int) (string, error) {
	contact, err := g.db.Contacts.GetByID(ctx, contactID)
	if err != nil {
		return "", err
	}
	deals, err := g.db.Deals.GetByContactID(ctx, contactID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch deals: %w", err)
	}
	activities, err := g.db.Activities.GetByContactID(ctx, contactID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch activities: %w", err)
	}

	return render(ctx, contact.Name, func(graph *cgraph.Graph) error {
		graph.SetRankDir(cgraph.LRRank)

		root, err := graph.CreateNodeByName("contact")
		if err != nil {
			return fmt.Errorf("failed to create contact node: %w", err)
		}
		root.SetLabel(fmt.Sprintf("%s\n%s", contact.Name, contact.Position))
		root.SetShape("ellipse")
		root.SetStyle("filled")
		root.SetFillColor("lightgreen")

		dealNodes := make(map[int]*cgraph.Node)
		for _, d := range deals {
			node, err := graph.CreateNodeByName(fmt.Sprintf("deal_%d", d.ID))
			if err != nil {
				return fmt.Errorf("failed to create deal node: %w", err)
			}
			node.SetLabel(dealLabel(d))
			node.SetShape("diamond")
			node.SetStyle("filled")
			node.SetFillColor(stageColors[d.Stage])
			dealNodes[d.ID] = node
			if _, err := graph.CreateEdgeByName(fmt.Sprintf("owns_%d", d.ID), root, node); err != nil {
				return fmt.Errorf("failed to create edge: %w", err)
			}
		}

		for _, a := range activities {
			node, err := graph.CreateNodeByName(fmt.Sprintf("activity_%d", a.ID))
			if err != nil {
				return fmt.Errorf("failed to create activity node: %w", err)
			}
			node.SetLabel(fmt.Sprintf("%s: %s\n%s", a.Type, a.Subject, a.Date.Format("2006-01-02")))
			node.SetShape("note")
			parent := root
			if dn, ok := dealNodes[a.DealID]; ok {
				parent = dn
			}
			edge, err := graph.CreateEdgeByName(fmt.Sprintf("logged_%d", a.ID), parent, node)
			if err != nil {
				return fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetStyle("dotted")
		}
		return nil
	})
}
