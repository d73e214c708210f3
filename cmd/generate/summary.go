package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"resume-generator/internal/generation"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).Width(24)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

func renderSummary(r generation.BatchReport, costLog string) string {
	var rows []string
	row := func(label, value string) {
		rows = append(rows, labelStyle.Render(label)+value)
	}

	row("Resumes generated", fmt.Sprintf("%d / %d", r.Succeeded, r.Requested))
	row("Total time", fmt.Sprintf("%.1fs", r.Elapsed.Seconds()))
	row("Speed", fmt.Sprintf("%.2f resumes/sec", r.Throughput()))
	row("Input tokens", fmt.Sprintf("%d", r.Ledger.InputTokens))
	row("Output tokens", fmt.Sprintf("%d", r.Ledger.OutputTokens))
	if avg, ok := r.AverageCost(); ok {
		row("Avg cost per resume", avg.String())
	} else {
		row("Avg cost per resume", "n/a")
	}
	row("Total cost", r.Ledger.TotalCost.String())
	if r.WastedCost > 0 {
		row("Billed for failures", r.WastedCost.String())
	}
	if r.Failed > 0 {
		var parts []string
		for _, k := range generation.Kinds() {
			if n := r.FailedBy[k]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s=%d", k, n))
			}
		}
		row("Failures", strings.Join(parts, " "))
	}
	if costLog != "" {
		row("Cost log", costLog)
	}

	title := titleStyle.Render("BATCH " + r.BatchID)
	if r.Cancelled {
		title += "  " + warnStyle.Render(fmt.Sprintf("INTERRUPTED (%d abandoned)", r.Abandoned))
	}
	return boxStyle.Render(title + "\n" + strings.Join(rows, "\n"))
}
