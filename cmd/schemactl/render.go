package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"tasky/internal/schema/domain/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB000"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// renderer prints bootstrap reports, styled only when writing to a terminal
type renderer struct {
	w     io.Writer
	color bool
}

func newRenderer(w io.Writer, noColor bool) *renderer {
	color := false
	if f, ok := w.(*os.File); ok && !noColor && os.Getenv("NO_COLOR") == "" {
		color = isatty.IsTerminal(f.Fd())
	}
	return &renderer{w: w, color: color}
}

func (r *renderer) style(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

func (r *renderer) outcome(o model.Outcome) string {
	label := fmt.Sprintf("%-17s", o)
	switch o {
	case model.OutcomeCreated, model.OutcomeAlreadySatisfied:
		return r.style(successStyle, label)
	case model.OutcomeWouldCreate, model.OutcomeConflict:
		return r.style(warnStyle, label)
	default:
		return r.style(errorStyle, label)
	}
}

// Report writes one line per collection followed by a summary
func (r *renderer) Report(report *model.Report) {
	title := "Bootstrap"
	if report.DryRun {
		title = "Plan"
	}
	fmt.Fprintln(r.w, r.style(headerStyle, title))

	for _, res := range report.Results {
		fmt.Fprintf(r.w, "  %s %s %s\n", r.outcome(res.Outcome), res.Collection,
			r.style(dimStyle, res.Duration.Round(time.Microsecond).String()))
		if res.Error != "" {
			fmt.Fprintf(r.w, "      %s\n", res.Error)
		}
		if res.Diff != "" {
			fmt.Fprintln(r.w, r.style(dimStyle, res.Diff))
		}
	}

	summary := fmt.Sprintf("%d collections: %d created, %d satisfied, %d conflict, %d failed",
		len(report.Results),
		report.Count(model.OutcomeCreated)+report.Count(model.OutcomeWouldCreate),
		report.Count(model.OutcomeAlreadySatisfied),
		report.Count(model.OutcomeConflict),
		report.Count(model.OutcomeFailed))
	if report.OK() {
		fmt.Fprintln(r.w, r.style(successStyle, summary))
	} else {
		fmt.Fprintln(r.w, r.style(errorStyle, summary))
	}
}
