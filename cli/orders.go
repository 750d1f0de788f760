// ABOUTME: Quote and sales order CLI commands
// ABOUTME: Lists quotes and orders with status, date and amount filters
package cli

import (
	"context"
	"flag"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/pipeline"
	"github.com/shopspring/decimal"
)

// ListQuotesCommand lists quotes.
func ListQuotesCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("list-quotes", flag.ContinueOnError)
	status := fs.String("status", "", "Filter by status")
	contact := fs.Int("contact", 0, "Filter by contact ID")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		quotes []models.Quote
		err    error
	)
	switch {
	case *status != "":
		quotes, err = app.DB.Quotes.GetByStatus(ctx, models.QuoteStatus(*status))
	case *contact != 0:
		quotes, err = app.DB.Quotes.GetByContactID(ctx, *contact)
	default:
		quotes, err = app.DB.Quotes.GetAll(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to find quotes: %w", err)
	}

	out := app.out()
	if len(quotes) == 0 {
		fmt.Fprintln(out, "No quotes found")
		return nil
	}

	w := app.table()
	fmt.Fprintln(w, "ID\tNUMBER\tTITLE\tAMOUNT\tSTATUS\tVALID UNTIL")
	fmt.Fprintln(w, "--\t------\t-----\t------\t------\t-----------")
	for _, q := range quotes {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			q.ID, q.QuoteNumber, q.Title, pipeline.FormatCurrency(q.Amount), q.Status, formatDate(&q.ValidUntil))
	}
	w.Flush()

	fmt.Fprintf(out, "\nTotal: %d quote(s)\n", len(quotes))
	return nil
}

// ListOrdersCommand lists sales orders and their summary.
func ListOrdersCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("list-orders", flag.ContinueOnError)
	status := fs.String("status", "", "Filter by status")
	from := fs.String("from", "", "Earliest order date (YYYY-MM-DD)")
	to := fs.String("to", "", "Latest order date (YYYY-MM-DD, inclusive)")
	minAmount := fs.String("min", "", "Smallest order total")
	maxAmount := fs.String("max", "", "Largest order total")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		orders []models.SalesOrder
		err    error
	)
	switch {
	case *from != "" || *to != "":
		start, end, rerr := dateBounds(*from, *to)
		if rerr != nil {
			return rerr
		}
		orders, err = app.DB.SalesOrders.GetByDateRange(ctx, start, end)
	case *minAmount != "" || *maxAmount != "":
		low, high, rerr := amountBounds(*minAmount, *maxAmount)
		if rerr != nil {
			return rerr
		}
		orders, err = app.DB.SalesOrders.GetByAmountRange(ctx, low, high)
	default:
		orders, err = app.DB.SalesOrders.GetAll(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to find sales orders: %w", err)
	}
	if *status != "" {
		orders = slices.DeleteFunc(orders, func(o models.SalesOrder) bool {
			return !strings.EqualFold(string(o.Status), *status)
		})
	}

	out := app.out()
	if len(orders) == 0 {
		fmt.Fprintln(out, "No sales orders found")
	} else {
		w := app.table()
		fmt.Fprintln(w, "ID\tNUMBER\tTITLE\tDATE\tSTATUS\tITEMS\tTOTAL")
		fmt.Fprintln(w, "--\t------\t-----\t----\t------\t-----\t-----")
		for _, o := range orders {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
				o.ID, o.OrderNumber, o.Title, formatDate(&o.OrderDate), o.Status, len(o.LineItems), pipeline.FormatCurrency(o.TotalAmount))
		}
		w.Flush()
	}

	summary, err := app.DB.SalesOrders.Summary(ctx)
	if err != nil {
		return fmt.Errorf("failed to summarize sales orders: %w", err)
	}
	fmt.Fprintf(out, "\nAll orders: %d, revenue %s, average %s\n",
		summary.TotalOrders, pipeline.FormatCurrency(summary.TotalRevenue), pipeline.FormatCurrency(summary.AverageOrderValue))
	return nil
}

func dateBounds(from, to string) (time.Time, time.Time, error) {
	start := time.Time{}
	end := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	if from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return start, end, fmt.Errorf("invalid --from date: %w", err)
		}
		start = t
	}
	if to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return start, end, fmt.Errorf("invalid --to date: %w", err)
		}
		end = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return start, end, nil
}

func amountBounds(low, high string) (decimal.Decimal, decimal.Decimal, error) {
	lo, hi := decimal.Zero, decimal.New(1, 18)
	var err error
	if low != "" {
		if lo, err = decimal.NewFromString(low); err != nil {
			return lo, hi, fmt.Errorf("invalid --min amount: %w", err)
		}
	}
	if high != "" {
		if hi, err = decimal.NewFromString(high); err != nil {
			return lo, hi, fmt.Errorf("invalid --max amount: %w", err)
		}
	}
	return lo, hi, nil
}
