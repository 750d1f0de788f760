// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Provides an ASCII overview of the pipeline and records needing attention
package viz

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/pipeline"
)

const (
	staleContactDays = 30
	staleDealDays    = 14
)

type DashboardStats struct {
	Pipeline pipeline.Summary

	TotalContacts   int
	ActiveContacts  int
	TotalCompanies  int
	TotalDeals      int
	OpenQuotes      int
	OrderRevenue    string
	RecentActivity  []ActivityItem
	StaleContacts   []StaleContact
	StaleDeals      []StaleDeal
	GeneratedAtDate string
}

type ActivityItem struct {
	Date        time.Time
	Description string
}

type StaleContact struct {
	Name      string
	DaysSince int // -1 when never contacted
}

type StaleDeal struct {
	Title     string
	DaysSince int
}

// GenerateDashboardStats gathers dashboard figures as of now.
func GenerateDashboardStats(ctx context.Context, database *db.Database, now time.Time) (*DashboardStats, error) {
	deals, err := database.Deals.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deals: %w", err)
	}
	contacts, err := database.Contacts.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	companies, err := database.Companies.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch companies: %w", err)
	}
	activities, err := database.Activities.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}
	quotes, err := database.Quotes.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quotes: %w", err)
	}
	orders, err := database.SalesOrders.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize orders: %w", err)
	}

	stats := &DashboardStats{
		Pipeline:        pipeline.Aggregate(deals),
		TotalContacts:   len(contacts),
		TotalCompanies:  len(companies),
		TotalDeals:      len(deals),
		OrderRevenue:    pipeline.FormatCurrency(orders.TotalRevenue),
		GeneratedAtDate: now.Format("2006-01-02"),
	}

	for _, q := range quotes {
		if q.Status == models.QuoteSent || q.Status == models.QuoteUnderReview {
			stats.OpenQuotes++
		}
	}

	weekAgo := now.AddDate(0, 0, -7)
	for _, a := range activities {
		if a.Date.After(weekAgo) && !a.Date.After(now) {
			stats.RecentActivity = append(stats.RecentActivity, ActivityItem{
				Date:        a.Date,
				Description: fmt.Sprintf("%s: %s", a.Type, a.Subject),
			})
		}
	}
	sort.Slice(stats.RecentActivity, func(i, j int) bool {
		return stats.RecentActivity[i].Date.After(stats.RecentActivity[j].Date)
	})

	for _, contact := range contacts {
		if contact.Status == models.ContactActive {
			stats.ActiveContacts++
		}
		if contact.LastContactedAt == nil {
			stats.StaleContacts = append(stats.StaleContacts, StaleContact{Name: contact.Name, DaysSince: -1})
			continue
		}
		if days := daysBetween(*contact.LastContactedAt, now); days > staleContactDays {
			stats.StaleContacts = append(stats.StaleContacts, StaleContact{Name: contact.Name, DaysSince: days})
		}
	}

	for _, deal := range deals {
		if deal.Stage == models.StageClosed {
			continue
		}
		if days := daysBetween(deal.UpdatedAt, now); days > staleDealDays {
			stats.StaleDeals = append(stats.StaleDeals, StaleDeal{Title: deal.Title, DaysSince: days})
		}
	}

	return stats, nil
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  DEALBOARD CRM DASHBOARD  " + stats.GeneratedAtDate + "\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("PIPELINE OVERVIEW\n")
	renderPipeline(&out, stats.Pipeline)
	fmt.Fprintf(&out, "  total %s  avg %s  conversion %s\n\n",
		pipeline.FormatCurrency(stats.Pipeline.TotalPipelineValue),
		pipeline.FormatCurrency(stats.Pipeline.AvgDealSize),
		pipeline.FormatPercent(stats.Pipeline.ConversionRate))

	out.WriteString("STATS\n")
	fmt.Fprintf(&out, "  📇 %d contacts (%d active)  🏢 %d companies  💼 %d deals\n",
		stats.TotalContacts, stats.ActiveContacts, stats.TotalCompanies, stats.TotalDeals)
	fmt.Fprintf(&out, "  📝 %d open quotes  📦 %s in orders\n\n", stats.OpenQuotes, stats.OrderRevenue)

	if len(stats.RecentActivity) > 0 {
		out.WriteString("RECENT ACTIVITY\n")
		for _, a := range stats.RecentActivity {
			fmt.Fprintf(&out, "  %s  %s\n", a.Date.Format("Jan 02"), a.Description)
		}
		out.WriteString("\n")
	}

	if len(stats.StaleContacts) > 0 || len(stats.StaleDeals) > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		if len(stats.StaleContacts) > 0 {
			fmt.Fprintf(&out, "  ⚠️  %d contacts - no contact in %d+ days\n", len(stats.StaleContacts), staleContactDays)
		}
		if len(stats.StaleDeals) > 0 {
			fmt.Fprintf(&out, "  ⚠️  %d deals - stale (no update in %d+ days)\n", len(stats.StaleDeals), staleDealDays)
		}
	}

	return out.String()
}

func renderPipeline(out *strings.Builder, summary pipeline.Summary) {
	maxCount := 1
	for _, st := range summary.Stages {
		maxCount = max(maxCount, st.Count)
	}
	for _, st := range summary.Stages {
		barLength := (st.Count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		fmt.Fprintf(out, "  %-12s %s  %2d  %-10s %s\n",
			st.Stage, bar, st.Count, pipeline.FormatCurrency(st.TotalValue), pipeline.FormatPercent(st.PctOfTotal))
	}
}
