// ABOUTME: Graphviz graph generation for the pipeline and CRM entities
// ABOUTME: Builds cgraph graphs from the stores and renders them as DOT text
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/pipeline"
)

var stageColors = map[models.Stage]string{
	models.StageLead:        "lightgrey",
	models.StageQualified:   "lightblue",
	models.StageProposal:    "lightyellow",
	models.StageNegotiation: "orange",
	models.StageClosed:      "palegreen",
}

// GraphGenerator renders graphs from a database.
type GraphGenerator struct {
	db *db.Database
}

func NewGraphGenerator(database *db.Database) *GraphGenerator {
	return &GraphGenerator{db: database}
}

// render creates a graph, lets build populate it and returns the DOT text.
func render(ctx context.Context, label string, build func(graph *cgraph.Graph) error) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	graph.SetLabel(label)
	if err := build(graph); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}

func dealLabel(d models.Deal) string {
	return fmt.Sprintf("%s\n%s\n(%s, %d%%)", d.Title, pipeline.FormatCurrency(d.Value), d.Stage, d.Probability)
}

// GeneratePipelineGraph draws the five stages left to right with each deal
// hanging off its stage.
func (g *GraphGenerator) GeneratePipelineGraph(ctx context.Context) (string, error) {
	deals, err := g.db.Deals.GetAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch deals: %w", err)
	}
	summary := pipeline.Aggregate(deals)

	return render(ctx, "Sales Pipeline", func(graph *cgraph.Graph) error {
		graph.SetRankDir(cgraph.LRRank)

		stageNodes := make(map[models.Stage]*cgraph.Node, len(models.Stages))
		var prev *cgraph.Node
		for _, stage := range models.Stages {
			stats := summary.Stage(stage)
			node, err := graph.CreateNodeByName("stage_" + string(stage))
			if err != nil {
				return fmt.Errorf("failed to create stage node: %w", err)
			}
			node.SetLabel(fmt.Sprintf("%s\n%d deals\n%s", stage, stats.Count, pipeline.FormatCurrency(stats.TotalValue)))
			node.SetShape("box")
			node.SetStyle("filled")
			node.SetFillColor(stageColors[stage])
			stageNodes[stage] = node

			if prev != nil {
				edge, err := graph.CreateEdgeByName("next_"+string(stage), prev, node)
				if err != nil {
					return fmt.Errorf("failed to create stage edge: %w", err)
				}
				edge.SetStyle("bold")
			}
			prev = node
		}

		for _, d := range deals {
			stageNode, ok := stageNodes[d.Stage]
			if !ok {
				continue
			}
			node, err := graph.CreateNodeByName(fmt.Sprintf("deal_%d", d.ID))
			if err != nil {
				return fmt.Errorf("failed to create deal node: %w", err)
			}
			node.SetLabel(dealLabel(d))
			node.SetShape("note")
			if _, err := graph.CreateEdgeByName(fmt.Sprintf("in_%d", d.ID), stageNode, node); err != nil {
				return fmt.Errorf("failed to create deal edge: %w", err)
			}
		}
		return nil
	})
}
