// ABOUTME: Visualization CLI commands
// ABOUTME: Handles viz dashboard and graph generation commands
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/harperreed/dealboard/viz"
)

// VizGraphCommand dispatches "viz graph <kind>" to the matching generator.
func VizGraphCommand(ctx context.Context, app *App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: viz graph <pipeline|company|contact|all> [--output file] [id]")
	}
	switch args[0] {
	case "pipeline":
		return vizGraph(ctx, app, "pipeline", args[1:], false, func(g *viz.GraphGenerator, _ int) (string, error) {
			return g.GeneratePipelineGraph(ctx)
		})
	case "company":
		return vizGraph(ctx, app, "company", args[1:], true, func(g *viz.GraphGenerator, id int) (string, error) {
			return g.GenerateCompanyGraph(ctx, id)
		})
	case "contact", "contacts":
		return vizGraph(ctx, app, "contact", args[1:], true, func(g *viz.GraphGenerator, id int) (string, error) {
			return g.GenerateContactGraph(ctx, id)
		})
	case "all", "complete":
		return vizGraph(ctx, app, "all", args[1:], false, func(g *viz.GraphGenerator, _ int) (string, error) {
			return g.GenerateCompleteGraph(ctx)
		})
	default:
		return fmt.Errorf("unknown graph type: %s", args[0])
	}
}

func vizGraph(_ context.Context, app *App, name string, args []string, needsID bool, generate func(*viz.GraphGenerator, int) (string, error)) error {
	fs := flag.NewFlagSet("viz graph "+name, flag.ContinueOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var id int
	if needsID {
		if fs.NArg() < 1 {
			return fmt.Errorf("%s ID required", name)
		}
		n, err := strconv.Atoi(fs.Arg(0))
		if err != nil {
			return fmt.Errorf("invalid %s ID: %w", name, err)
		}
		id = n
	}

	dot, err := generate(viz.NewGraphGenerator(app.DB), id)
	if err != nil {
		return err
	}

	if *output != "" {
		return os.WriteFile(*output, []byte(dot), 0o644)
	}
	fmt.Fprintln(app.out(), dot)
	return nil
}

// DashboardCommand prints the terminal dashboard.
func DashboardCommand(ctx context.Context, app *App, _ []string) error {
	stats, err := viz.GenerateDashboardStats(ctx, app.DB, app.now())
	if err != nil {
		return fmt.Errorf("failed to generate dashboard stats: %w", err)
	}
	fmt.Fprint(app.out(), viz.RenderDashboard(stats))
	return nil
}
