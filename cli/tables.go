// ABOUTME: Custom table CLI command
// ABOUTME: Lists table definitions with their fields
package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
)

// ListTablesCommand lists custom table definitions. Tables hold schema only.
func ListTablesCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("list-tables", flag.ContinueOnError)
	fields := fs.Bool("fields", false, "Show every field")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tables, err := app.DB.Tables.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	out := app.out()
	if len(tables) == 0 {
		fmt.Fprintln(out, "No tables found")
		return nil
	}

	w := app.table()
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tSTATUS\tFIELDS\tDESCRIPTION")
	fmt.Fprintln(w, "--\t----\t----\t------\t------\t-----------")
	for _, t := range tables {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n", t.ID, t.Name, t.Type, t.Status, len(t.Fields), t.Description)
	}
	w.Flush()

	if *fields {
		for _, t := range tables {
			fmt.Fprintf(out, "\n%s\n", app.paint(headerStyle, t.Name))
			for _, f := range t.Fields {
				var flags []string
				if f.Required {
					flags = append(flags, "required")
				}
				if f.DefaultValue != "" {
					flags = append(flags, "default "+f.DefaultValue)
				}
				fmt.Fprintf(out, "  %-20s %-8s %s\n", f.Name, f.Type, strings.Join(flags, ", "))
			}
		}
	}
	return nil
}
