// ABOUTME: Deal and pipeline CLI commands
// ABOUTME: Lists deals, prints the stage board and moves deals between stages
package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/notify"
	"github.com/harperreed/dealboard/pipeline"
)

// ListDealsCommand lists deals.
func ListDealsCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("list-deals", flag.ContinueOnError)
	stage := fs.String("stage", "", "Filter by stage")
	contact := fs.Int("contact", 0, "Filter by contact ID")
	limit := fs.Int("limit", 50, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		deals []models.Deal
		err   error
	)
	switch {
	case *stage != "":
		s, perr := models.ParseStage(*stage)
		if perr != nil {
			return perr
		}
		deals, err = app.DB.Deals.GetByStage(ctx, s)
	case *contact != 0:
		deals, err = app.DB.Deals.GetByContactID(ctx, *contact)
	default:
		deals, err = app.DB.Deals.GetAll(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to find deals: %w", err)
	}

	out := app.out()
	if len(deals) == 0 {
		fmt.Fprintln(out, "No deals found")
		return nil
	}
	if len(deals) > *limit {
		deals = deals[:*limit]
	}

	w := app.table()
	fmt.Fprintln(w, "ID\tTITLE\tCONTACT\tSTAGE\tVALUE\tPROB\tEXPECTED CLOSE")
	fmt.Fprintln(w, "--\t-----\t-------\t-----\t-----\t----\t--------------")
	for _, d := range deals {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d%%\t%s\n",
			d.ID, d.Title, orDash(d.ContactName), d.Stage, pipeline.FormatCurrency(d.Value), d.Probability, formatDate(d.ExpectedCloseDate))
	}
	w.Flush()

	fmt.Fprintf(out, "\nTotal: %d deal(s)\n", len(deals))
	return nil
}

// PipelineCommand prints the board: one block per stage with its stats and
// deals, then the pipeline totals.
func PipelineCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("pipeline", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	board := pipeline.NewBoard(app.DB.Deals, notify.LogNotifier{Logger: app.Logger}, pipeline.WithLogger(app.Logger))
	if err := board.Load(ctx); err != nil {
		return err
	}
	printBoard(app, board)
	return nil
}

func printBoard(app *App, board *pipeline.Board) {
	out := app.out()
	for _, col := range board.Columns() {
		fmt.Fprintf(out, "%s  %s\n",
			app.stage(col.Stage),
			app.paint(mutedStyle, fmt.Sprintf("%d deals, %s (%s)",
				col.Stats.Count, pipeline.FormatCurrency(col.Stats.TotalValue), pipeline.FormatPercent(col.Stats.PctOfTotal))))
		for _, d := range col.Deals {
			fmt.Fprintf(out, "  #%-3d %-36s %10s  %3d%%  %s\n",
				d.ID, d.Title, pipeline.FormatCurrency(d.Value), d.Probability, d.ContactName)
		}
		fmt.Fprintln(out)
	}

	s := board.Summary()
	fmt.Fprintln(out, app.paint(headerStyle, "Totals"))
	fmt.Fprintf(out, "  Deals:           %d\n", s.TotalCount)
	fmt.Fprintf(out, "  Pipeline value:  %s\n", pipeline.FormatCurrency(s.TotalPipelineValue))
	fmt.Fprintf(out, "  Closed:          %d\n", s.ClosedCount)
	fmt.Fprintf(out, "  Conversion rate: %s\n", pipeline.FormatPercent(s.ConversionRate))
	fmt.Fprintf(out, "  Avg deal size:   %s\n", pipeline.FormatCurrency(s.AvgDealSize))
}

// printNotifier shows board notifications on the command's output.
type printNotifier struct {
	app *App
}

func (p printNotifier) Success(message string) {
	fmt.Fprintln(p.app.out(), p.app.paint(okStyle, "✓ "+message))
}

func (p printNotifier) Failure(message string) {
	fmt.Fprintln(p.app.out(), p.app.paint(errStyle, "✗ "+message))
}

// MoveDealCommand moves a deal to another stage and prints the outcome. The
// change lives only as long as this process.
func MoveDealCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("move-deal", flag.ContinueOnError)
	showBoard := fs.Bool("board", false, "Print the board after the move")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: move-deal [--board] <deal-id> <stage>")
	}
	dealID, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid deal ID: %w", err)
	}
	target, err := models.ParseStage(fs.Arg(1))
	if err != nil {
		target = models.Stage(strings.TrimSpace(fs.Arg(1)))
	}

	board := pipeline.NewBoard(app.DB.Deals, printNotifier{app: app},
		pipeline.WithLogger(app.Logger), pipeline.WithClock(app.now))
	if err := board.Load(ctx); err != nil {
		return err
	}
	before, _ := board.Deal(dealID)

	deal, err := board.Move(ctx, dealID, target)
	if err != nil {
		return err
	}
	if before.Stage == deal.Stage {
		fmt.Fprintf(app.out(), "Deal #%d is already in %s\n", deal.ID, deal.Stage)
	} else {
		fmt.Fprintf(app.out(), "  %s: %s → %s (probability %d%%)\n", deal.Title, before.Stage, deal.Stage, deal.Probability)
	}

	if *showBoard {
		fmt.Fprintln(app.out())
		printBoard(app, board)
	}
	return nil
}
