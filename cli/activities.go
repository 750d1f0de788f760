// ABOUTME: Activity CLI commands
// ABOUTME: Lists calls, emails, meetings and notes newest first
package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/harperreed/dealboard/models"
)

// ListActivitiesCommand lists activities, newest first.
func ListActivitiesCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("list-activities", flag.ContinueOnError)
	contact := fs.Int("contact", 0, "Filter by contact ID")
	deal := fs.Int("deal", 0, "Filter by deal ID")
	kind := fs.String("type", "", "Filter by type (Call, Email, Meeting, Note)")
	limit := fs.Int("limit", 50, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		activities []models.Activity
		err        error
	)
	switch {
	case *contact != 0:
		activities, err = app.DB.Activities.GetByContactID(ctx, *contact)
	case *deal != 0:
		activities, err = app.DB.Activities.GetByDealID(ctx, *deal)
	case *kind != "":
		activities, err = app.DB.Activities.GetByType(ctx, models.ActivityType(*kind))
	default:
		activities, err = app.DB.Activities.Recent(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to find activities: %w", err)
	}

	out := app.out()
	if len(activities) == 0 {
		fmt.Fprintln(out, "No activities found")
		return nil
	}
	if len(activities) > *limit {
		activities = activities[:*limit]
	}

	w := app.table()
	fmt.Fprintln(w, "ID\tDATE\tTYPE\tCONTACT\tDEAL\tSUBJECT")
	fmt.Fprintln(w, "--\t----\t----\t-------\t----\t-------")
	for _, a := range activities {
		dealID := "-"
		if a.DealID != 0 {
			dealID = fmt.Sprint(a.DealID)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n",
			a.ID, formatDate(&a.Date), a.Type, a.ContactID, dealID, a.Subject)
	}
	w.Flush()

	fmt.Fprintf(out, "\nTotal: %d activity(ies)\n", len(activities))
	return nil
}
