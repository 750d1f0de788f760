// ABOUTME: Shared state and output helpers for CLI commands
// ABOUTME: Holds the database, config and logger and styles output when writing to a terminal
package cli

import (
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/dealboard/config"
	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/models"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// App is what every command runs against.
type App struct {
	DB     *db.Database
	Config *config.Config
	Logger *zap.Logger
	Out    io.Writer
	Now    func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) out() io.Writer {
	if a.Out != nil {
		return a.Out
	}
	return os.Stdout
}

func (a *App) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out(), 0, 0, 2, ' ', 0)
}

// styled reports whether output goes to a terminal and may carry colors.
func (a *App) styled() bool {
	f, ok := a.out().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	stageStyles = map[models.Stage]lipgloss.Style{
		models.StageLead:        lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		models.StageQualified:   lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
		models.StageProposal:    lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		models.StageNegotiation: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		models.StageClosed:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
)

func (a *App) paint(style lipgloss.Style, s string) string {
	if !a.styled() {
		return s
	}
	return style.Render(s)
}

func (a *App) stage(s models.Stage) string {
	style, ok := stageStyles[s]
	if !ok {
		return string(s)
	}
	return a.paint(style, string(s))
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
