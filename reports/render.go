// ABOUTME: Plain-text rendering of report sections
// ABOUTME: Used by the CLI and the MCP report tool
package reports

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/harperreed/dealboard/pipeline"
)

// Render writes the section of rep selected by kind.
func Render(w io.Writer, kind Kind, rep *Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s (%s)\n\n", kind.Title(), rep.Range)

	switch kind {
	case KindOverview:
		s := rep.Summary
		fmt.Fprintf(tw, "Total Revenue\t%s\n", pipeline.FormatCurrency(s.TotalRevenue))
		fmt.Fprintf(tw, "Total Deals\t%d\n", s.TotalDeals)
		fmt.Fprintf(tw, "Won Deals\t%d\n", s.WonDeals)
		fmt.Fprintf(tw, "Win Rate\t%s\n", pipeline.FormatPercent(s.WinRate))
		fmt.Fprintf(tw, "Avg Deal Size\t%s\n", pipeline.FormatCurrency(s.AvgDealSize))
		fmt.Fprintf(tw, "Contacts\t%d (%d active)\n", s.TotalContacts, s.ActiveContacts)
		fmt.Fprintf(tw, "Activities\t%d\n", s.TotalActivities)
	case KindSales:
		fmt.Fprintln(tw, "STAGE\tDEALS")
		for _, st := range rep.Stages {
			fmt.Fprintf(tw, "%s\t%d\n", st.Stage, st.Count)
		}
		fmt.Fprintln(tw, "\nTOP CONTACTS\tDEALS\tVALUE")
		for i, c := range rep.TopContacts {
			fmt.Fprintf(tw, "%d. %s\t%d\t%s\n", i+1, c.Name, c.Count, pipeline.FormatCurrency(c.Value))
		}
	case KindPipeline:
		fmt.Fprintln(tw, "STAGE\tDEALS\tVALUE")
		for _, st := range rep.Stages {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", st.Stage, st.Count, pipeline.FormatCurrency(st.Value))
		}
	case KindContacts:
		fmt.Fprintf(tw, "Contacts\t%d (%d active)\n", rep.Summary.TotalContacts, rep.Summary.ActiveContacts)
		fmt.Fprintf(tw, "Activities\t%d\n\n", rep.Summary.TotalActivities)
		fmt.Fprintln(tw, "TYPE\tCOUNT")
		for _, a := range rep.ActivityTypes {
			fmt.Fprintf(tw, "%s\t%d\n", a.Type, a.Count)
		}
	case KindRevenue:
		fmt.Fprintln(tw, "MONTH\tREVENUE")
		for _, m := range rep.MonthlyRevenue {
			fmt.Fprintf(tw, "%s\t%s\n", m.Month, pipeline.FormatCurrency(m.Revenue))
		}
	default:
		return fmt.Errorf("invalid report type: %s", kind)
	}
	return tw.Flush()
}
