// ABOUTME: Entry point for the dealboard CLI, MCP server, TUI and web server
// ABOUTME: Loads config and fixtures once, then routes to the requested command
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/dealboard/cli"
	"github.com/harperreed/dealboard/config"
	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/logging"
	"github.com/harperreed/dealboard/tui"
	"github.com/harperreed/dealboard/web"
	"go.uber.org/zap"
)

const version = "0.2.0"

type command func(ctx context.Context, app *cli.App, args []string) error

var commands = map[string]command{
	"list-contacts":   cli.ListContactsCommand,
	"list-companies":  cli.ListCompaniesCommand,
	"list-deals":      cli.ListDealsCommand,
	"list-activities": cli.ListActivitiesCommand,
	"list-quotes":     cli.ListQuotesCommand,
	"list-orders":     cli.ListOrdersCommand,
	"list-tables":     cli.ListTablesCommand,
	"pipeline":        cli.PipelineCommand,
	"move-deal":       cli.MoveDealCommand,
	"report":          cli.ReportCommand,
	"export":          cli.ExportCommand,
	"dashboard":       cli.DashboardCommand,
	"viz":             vizCommand,
	"mcp": func(ctx context.Context, app *cli.App, _ []string) error {
		return cli.MCPCommand(ctx, app)
	},
	"tui": tuiCommand,
	"web": webCommand,
}

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "", "Config file (default: ./config.toml or $XDG_CONFIG_HOME/dealboard/config.toml)")
	fixtures := flag.String("fixtures", "", "Directory of fixture JSON files (default: built-in fixtures)")
	latency := flag.Duration("latency", 0, "Simulated store latency, e.g. 150ms")
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Printf("dealboard version %s\n", version)
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		return
	}
	run, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "fixtures":
			cfg.Data.Fixtures = *fixtures
		case "latency":
			cfg.Data.Latency = *latency
		}
	})

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	database, err := db.Open(db.Options{
		FixturesDir: cfg.Data.Fixtures,
		Latency:     cfg.Data.Latency,
	})
	if err != nil {
		logger.Error("failed to load fixtures", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		DB:     database,
		Config: cfg,
		Logger: logger,
		Now:    time.Now,
	}
	cli.ServerVersion = version

	if err := run(ctx, app, args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func vizCommand(ctx context.Context, app *cli.App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("viz requires a subcommand (graph)")
	}
	switch args[0] {
	case "graph":
		return cli.VizGraphCommand(ctx, app, args[1:])
	case "dashboard":
		return cli.DashboardCommand(ctx, app, args[1:])
	default:
		return fmt.Errorf("unknown viz command: %s", args[0])
	}
}

func tuiCommand(ctx context.Context, app *cli.App, _ []string) error {
	model := tui.NewModel(tui.Options{DB: app.DB, Logger: app.Logger, Now: app.Now})
	_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func webCommand(ctx context.Context, app *cli.App, args []string) error {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	port := fs.Int("port", app.Config.Web.Port, "Port to listen on")
	if err := fs.Parse(args); err != nil {
		return err
	}
	server, err := web.NewServer(ctx, web.Options{
		DB:     app.DB,
		Logger: app.Logger,
		Now:    app.Now,
		Debug:  !app.Config.IsProduction() && app.Config.Log.Level == "debug",
	})
	if err != nil {
		return err
	}
	return server.Start(ctx, *port)
}

func printUsage() {
	fmt.Printf(`dealboard v%s - sales pipeline CRM

Data comes from fixtures and lives in memory; changes last until the process exits.

USAGE:
  dealboard [global flags] <command> [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --config <path>        Config file (default: ./config.toml, then $XDG_CONFIG_HOME/dealboard/config.toml)
  --fixtures <dir>       Fixture directory (default: built-in fixtures)
  --latency <duration>   Simulated store latency (default: data.latency, 150ms)

LIST COMMANDS:
  list-contacts          --query, --company <id>, --status, --limit
  list-companies         --query, --limit
  list-deals             --stage, --contact <id>, --limit
  list-activities        --contact <id>, --deal <id>, --type, --limit
  list-quotes            --status, --contact <id>
  list-orders            --status, --from, --to, --min, --max
  list-tables            --fields

PIPELINE:
  pipeline               Show the board with per-stage stats and totals
  move-deal [--board] <deal-id> <stage>
                         Move a deal to another stage

REPORTS:
  report [type]          Render overview|sales|pipeline|contacts|revenue
    --from, --to           Inclusive range (default: current month)
  export [type]          Write a report file
    --format               json|csv|sqlite (default: json)
    --dir                  Output directory (default: export.dir)
  dashboard              Terminal dashboard

VISUALIZATION:
  viz graph pipeline|all [--output file]
  viz graph company|contact [--output file] <id>

INTERFACES:
  mcp                    Start the MCP server on stdio
  tui                    Interactive pipeline board
  web [--port n]         JSON API and drag-and-drop board (default port: web.port)

CONFIGURATION:
  config.toml keys: app.env, data.fixtures, data.latency, log.level,
  log.format, log.output, web.port, export.dir
  Environment: DEALBOARD_<KEY> with dots as underscores, .env is loaded first
`, version)
}
