// ABOUTME: Derived reports over deals, contacts and activities
// ABOUTME: Recomputes every figure from scratch for an inclusive date range
package reports

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Kind selects which section of a report is shown or exported.
type Kind string

const (
	KindOverview Kind = "overview"
	KindSales    Kind = "sales"
	KindPipeline Kind = "pipeline"
	KindContacts Kind = "contacts"
	KindRevenue  Kind = "revenue"
)

var Kinds = []Kind{KindOverview, KindSales, KindPipeline, KindContacts, KindRevenue}

var kindTitles = map[Kind]string{
	KindOverview: "Overview",
	KindSales:    "Sales Performance",
	KindPipeline: "Pipeline Analysis",
	KindContacts: "Contact Activity",
	KindRevenue:  "Revenue Trends",
}

func (k Kind) Title() string {
	return kindTitles[k]
}

// ParseKind reads a report type in any casing. An empty string is the
// overview.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return KindOverview, nil
	}
	if _, ok := kindTitles[k]; !ok {
		return "", fmt.Errorf("invalid report type: %s (valid: overview, sales, pipeline, contacts, revenue)", s)
	}
	return k, nil
}

const dateLayout = "2006-01-02"

// Range is an inclusive time window.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CurrentMonth spans the first to the last instant of t's month.
func CurrentMonth(t time.Time) Range {
	n := now.With(t)
	return Range{Start: n.BeginningOfMonth(), End: n.EndOfMonth()}
}

// ParseRange reads yyyy-mm-dd bounds. The end date covers its whole day.
// Empty bounds fall back to the current month.
func ParseRange(from, to string, t time.Time) (Range, error) {
	r := CurrentMonth(t)
	if from != "" {
		start, err := time.ParseInLocation(dateLayout, from, t.Location())
		if err != nil {
			return Range{}, fmt.Errorf("invalid start date %q: %w", from, err)
		}
		r.Start = start
	}
	if to != "" {
		end, err := time.ParseInLocation(dateLayout, to, t.Location())
		if err != nil {
			return Range{}, fmt.Errorf("invalid end date %q: %w", to, err)
		}
		r.End = now.With(end).EndOfDay()
	}
	if r.End.Before(r.Start) {
		return Range{}, fmt.Errorf("end date %s is before start date %s", r.End.Format(dateLayout), r.Start.Format(dateLayout))
	}
	return r, nil
}

// Contains reports whether t lies in [Start, End].
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

func (r Range) String() string {
	return r.Start.Format(dateLayout) + " to " + r.End.Format(dateLayout)
}

// Lister is the read surface of a store.
type Lister[T any] interface {
	GetAll(ctx context.Context) ([]T, error)
}

// Sources are the three collections a report reads.
type Sources struct {
	Deals      Lister[models.Deal]
	Contacts   Lister[models.Contact]
	Activities Lister[models.Activity]
}

func FromDatabase(d *db.Database) Sources {
	return Sources{Deals: d.Deals, Contacts: d.Contacts, Activities: d.Activities}
}

type Summary struct {
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalDeals      int             `json:"total_deals"`
	WonDeals        int             `json:"won_deals"`
	WinRate         float64         `json:"win_rate"`
	AvgDealSize     decimal.Decimal `json:"avg_deal_size"`
	TotalContacts   int             `json:"total_contacts"`
	ActiveContacts  int             `json:"active_contacts"`
	TotalActivities int             `json:"total_activities"`
}

// StageBreakdown is the count and value of in-range deals in one stage.
type StageBreakdown struct {
	Stage models.Stage    `json:"stage"`
	Count int             `json:"count"`
	Value decimal.Decimal `json:"value"`
}

type TypeCount struct {
	Type  models.ActivityType `json:"type"`
	Count int                 `json:"count"`
}

type MonthRevenue struct {
	Month   string          `json:"month"`
	Start   time.Time       `json:"start"`
	Revenue decimal.Decimal `json:"revenue"`
}

type ContactValue struct {
	Name  string          `json:"name"`
	Count int             `json:"count"`
	Value decimal.Decimal `json:"value"`
}

// Report holds every figure for one date range.
type Report struct {
	Range          Range            `json:"range"`
	GeneratedAt    time.Time        `json:"generated_at"`
	Summary        Summary          `json:"summary"`
	Stages         []StageBreakdown `json:"stages"`
	ActivityTypes  []TypeCount      `json:"activity_types"`
	MonthlyRevenue []MonthRevenue   `json:"monthly_revenue"`
	TopContacts    []ContactValue   `json:"top_contacts"`
}

const topContactLimit = 5

// Generate loads the three collections concurrently and builds the report.
// A failure in any load fails the whole report.
func Generate(ctx context.Context, src Sources, r Range, generatedAt time.Time) (*Report, error) {
	var (
		deals      []models.Deal
		contacts   []models.Contact
		activities []models.Activity
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		deals, err = src.Deals.GetAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		contacts, err = src.Contacts.GetAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		activities, err = src.Activities.GetAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load report data: %w", err)
	}
	return Build(deals, contacts, activities, r, generatedAt), nil
}

// Build computes a report from already loaded collections.
func Build(deals []models.Deal, contacts []models.Contact, activities []models.Activity, r Range, generatedAt time.Time) *Report {
	rep := &Report{Range: r, GeneratedAt: generatedAt}

	var inRange []models.Deal
	for _, d := range deals {
		if r.Contains(d.CreatedAt) {
			inRange = append(inRange, d)
		}
	}
	var actsInRange []models.Activity
	for _, a := range activities {
		if r.Contains(a.Date) {
			actsInRange = append(actsInRange, a)
		}
	}

	revenue := decimal.Zero
	won := 0
	for _, d := range inRange {
		revenue = revenue.Add(d.Value)
		if d.Stage == models.StageClosed {
			won++
		}
	}
	active := 0
	for _, c := range contacts {
		if c.Status == models.ContactActive {
			active++
		}
	}
	rep.Summary = Summary{
		TotalRevenue:    revenue,
		TotalDeals:      len(inRange),
		WonDeals:        won,
		AvgDealSize:     decimal.Zero,
		TotalContacts:   len(contacts),
		ActiveContacts:  active,
		TotalActivities: len(actsInRange),
	}
	if len(inRange) > 0 {
		rep.Summary.WinRate = float64(won) / float64(len(inRange)) * 100
		rep.Summary.AvgDealSize = revenue.Div(decimal.NewFromInt(int64(len(inRange))))
	}

	rep.Stages = stageBreakdown(inRange)
	rep.ActivityTypes = activityTypes(actsInRange)
	rep.MonthlyRevenue = monthlyRevenue(inRange)
	rep.TopContacts = topContacts(inRange)
	return rep
}

// stageBreakdown lists the five known stages in board order, then any
// other stage labels in the order they were first seen.
func stageBreakdown(deals []models.Deal) []StageBreakdown {
	out := make([]StageBreakdown, 0, len(models.Stages))
	index := map[models.Stage]int{}
	for _, s := range models.Stages {
		index[s] = len(out)
		out = append(out, StageBreakdown{Stage: s, Value: decimal.Zero})
	}
	for _, d := range deals {
		i, ok := index[d.Stage]
		if !ok {
			i = len(out)
			index[d.Stage] = i
			out = append(out, StageBreakdown{Stage: d.Stage, Value: decimal.Zero})
		}
		out[i].Count++
		out[i].Value = out[i].Value.Add(d.Value)
	}
	return out
}

func activityTypes(activities []models.Activity) []TypeCount {
	out := []TypeCount{}
	index := map[models.ActivityType]int{}
	for _, a := range activities {
		i, ok := index[a.Type]
		if !ok {
			i = len(out)
			index[a.Type] = i
			out = append(out, TypeCount{Type: a.Type})
		}
		out[i].Count++
	}
	return out
}

func monthlyRevenue(deals []models.Deal) []MonthRevenue {
	buckets := map[string]*MonthRevenue{}
	for _, d := range deals {
		start := now.With(d.CreatedAt).BeginningOfMonth()
		key := start.Format("2006-01")
		b, ok := buckets[key]
		if !ok {
			b = &MonthRevenue{Month: start.Format("Jan 2006"), Start: start, Revenue: decimal.Zero}
			buckets[key] = b
		}
		b.Revenue = b.Revenue.Add(d.Value)
	}
	out := make([]MonthRevenue, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// topContacts groups by the deal's copied contact name, so two contacts with
// the same name are merged. Ties keep first-seen order.
func topContacts(deals []models.Deal) []ContactValue {
	out := []ContactValue{}
	index := map[string]int{}
	for _, d := range deals {
		name := d.ContactName
		if name == "" {
			name = "Unknown"
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, ContactValue{Name: name, Value: decimal.Zero})
		}
		out[i].Count++
		out[i].Value = out[i].Value.Add(d.Value)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value.GreaterThan(out[j].Value) })
	if len(out) > topContactLimit {
		out = out[:topContactLimit]
	}
	return out
}
