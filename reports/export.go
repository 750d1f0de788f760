// ABOUTME: Report export as JSON, CSV or a SQLite file
// ABOUTME: Exports are informational snapshots and are never read back
package reports

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

type Format string

const (
	FormatJSON   Format = "json"
	FormatCSV    Format = "csv"
	FormatSQLite Format = "sqlite"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatSQLite:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid export format: %s (valid: json, csv, sqlite)", s)
	}
}

func (f Format) Extension() string {
	if f == FormatSQLite {
		return "db"
	}
	return string(f)
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatSQLite:
		return "application/vnd.sqlite3"
	default:
		return "application/json"
	}
}

// DateRange is the yyyy-mm-dd form of a Range used in exports.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Envelope is the exported document.
type Envelope struct {
	ID          string    `json:"id"`
	ReportType  Kind      `json:"report_type"`
	DateRange   DateRange `json:"date_range"`
	GeneratedAt time.Time `json:"generated_at"`
	Summary     Summary   `json:"summary"`
	Data        *Report   `json:"data"`
}

func NewEnvelope(kind Kind, rep *Report) Envelope {
	return Envelope{
		ID:          ulid.MustNew(ulid.Timestamp(rep.GeneratedAt), ulid.DefaultEntropy()).String(),
		ReportType:  kind,
		DateRange:   DateRange{Start: rep.Range.Start.Format(dateLayout), End: rep.Range.End.Format(dateLayout)},
		GeneratedAt: rep.GeneratedAt,
		Summary:     rep.Summary,
		Data:        rep,
	}
}

// FileName is <kind>-report-<yyyy-mm-dd>.<ext> for the generation date.
func (e Envelope) FileName(f Format) string {
	return fmt.Sprintf("%s-report-%s.%s", e.ReportType, e.GeneratedAt.Format(dateLayout), f.Extension())
}

func WriteJSON(w io.Writer, e Envelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(e); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// Row is one flattened figure of a report.
type Row struct {
	Section string
	Key     string
	Value   string
}

// Rows flattens the envelope into section/key/value triples.
func Rows(e Envelope) []Row {
	s := e.Summary
	rows := []Row{
		{"meta", "id", e.ID},
		{"meta", "report_type", string(e.ReportType)},
		{"meta", "start", e.DateRange.Start},
		{"meta", "end", e.DateRange.End},
		{"meta", "generated_at", e.GeneratedAt.Format(time.RFC3339)},
		{"summary", "total_revenue", s.TotalRevenue.StringFixed(2)},
		{"summary", "total_deals", strconv.Itoa(s.TotalDeals)},
		{"summary", "won_deals", strconv.Itoa(s.WonDeals)},
		{"summary", "win_rate", strconv.FormatFloat(s.WinRate, 'f', 1, 64)},
		{"summary", "avg_deal_size", s.AvgDealSize.StringFixed(2)},
		{"summary", "total_contacts", strconv.Itoa(s.TotalContacts)},
		{"summary", "active_contacts", strconv.Itoa(s.ActiveContacts)},
		{"summary", "total_activities", strconv.Itoa(s.TotalActivities)},
	}
	if e.Data == nil {
		return rows
	}
	for _, st := range e.Data.Stages {
		rows = append(rows,
			Row{"deals_by_stage", string(st.Stage), strconv.Itoa(st.Count)},
			Row{"pipeline_value", string(st.Stage), st.Value.StringFixed(2)})
	}
	for _, a := range e.Data.ActivityTypes {
		rows = append(rows, Row{"activity_types", string(a.Type), strconv.Itoa(a.Count)})
	}
	for _, m := range e.Data.MonthlyRevenue {
		rows = append(rows, Row{"monthly_revenue", m.Month, m.Revenue.StringFixed(2)})
	}
	for _, c := range e.Data.TopContacts {
		rows = append(rows, Row{"top_contacts", c.Name, c.Value.StringFixed(2)})
	}
	return rows
}

func WriteCSV(w io.Writer, e Envelope) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"section", "key", "value"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range Rows(e) {
		if err := cw.Write([]string{r.Section, r.Key, r.Value}); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write encodes e in a streamable format. SQLite needs a file path, use
// ExportFile for it.
func Write(w io.Writer, f Format, e Envelope) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, e)
	case FormatCSV:
		return WriteCSV(w, e)
	default:
		return fmt.Errorf("format %s cannot be streamed", f)
	}
}

// ExportFile writes e into dir under its canonical file name and returns the
// path.
func ExportFile(dir string, f Format, e Envelope) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, e.FileName(f))
	if f == FormatSQLite {
		if err := WriteSQLite(path, e); err != nil {
			return "", err
		}
		return path, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	if err := Write(file, f, e); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close export file: %w", err)
	}
	return path, nil
}
