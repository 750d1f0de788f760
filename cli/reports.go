// ABOUTME: Report CLI commands
// ABOUTME: Renders sales reports to the terminal and exports them as JSON, CSV or SQLite
package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/harperreed/dealboard/reports"
)

// ReportCommand renders a report. The kind is the first positional argument
// and defaults to the overview.
func ReportCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	from := fs.String("from", "", "Range start (YYYY-MM-DD, default: first of this month)")
	to := fs.String("to", "", "Range end (YYYY-MM-DD, inclusive, default: end of this month)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	kind, rep, err := generateReport(ctx, app, fs.Arg(0), *from, *to)
	if err != nil {
		return err
	}
	return reports.Render(app.out(), kind, rep)
}

// ExportCommand writes a report file into the export directory.
func ExportCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.String("format", "json", "Export format (json, csv, sqlite)")
	dir := fs.String("dir", "", "Output directory (default: export.dir from config)")
	from := fs.String("from", "", "Range start (YYYY-MM-DD)")
	to := fs.String("to", "", "Range end (YYYY-MM-DD, inclusive)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := reports.ParseFormat(*format)
	if err != nil {
		return err
	}
	kind, rep, err := generateReport(ctx, app, fs.Arg(0), *from, *to)
	if err != nil {
		return err
	}

	target := *dir
	if target == "" && app.Config != nil {
		target = app.Config.Export.Dir
	}
	path, err := reports.ExportFile(target, f, reports.NewEnvelope(kind, rep))
	if err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}
	fmt.Fprintf(app.out(), "Exported %s report to %s\n", kind, path)
	return nil
}

func generateReport(ctx context.Context, app *App, kindArg, from, to string) (reports.Kind, *reports.Report, error) {
	kind, err := reports.ParseKind(kindArg)
	if err != nil {
		return "", nil, err
	}
	now := app.now()
	r, err := reports.ParseRange(from, to, now)
	if err != nil {
		return "", nil, err
	}
	rep, err := reports.Generate(ctx, reports.FromDatabase(app.DB), r, now)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate report: %w", err)
	}
	return kind, rep, nil
}
