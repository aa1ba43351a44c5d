package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/shashiranjanraj/ordersync/app/services"
	"github.com/shashiranjanraj/ordersync/pkg/migration"
	"github.com/shashiranjanraj/ordersync/pkg/router"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	headerStyle  = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	cellStyle    = lipgloss.NewStyle().PaddingRight(3)
)

func printOK(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", successStyle.Render("✓"), fmt.Sprintf(format, args...))
}

func printWarn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", warningStyle.Render("⚠"), fmt.Sprintf(format, args...))
}

func printFail(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", errorStyle.Render("✗"), fmt.Sprintf(format, args...))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", infoStyle.Render("ℹ"), fmt.Sprintf(format, args...))
}

func renderError(err error) string {
	return errorStyle.Render("✗ ") + err.Error()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func section(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(title))
	fmt.Fprintln(w, mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
}

// table renders rows as left-aligned columns. The first row is the header.
func table(w io.Writer, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	for n, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			st := cellStyle.Width(widths[i] + 3)
			if n == 0 {
				st = st.Inherit(headerStyle)
			}
			cells[i] = st.Render(cell)
		}
		fmt.Fprintln(w, strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, cells...), " "))
	}
}

func renderRoutes(w io.Writer, infos []router.RouteInfo) {
	rows := [][]string{{"METHOD", "PATH", "NAME"}}
	for _, ri := range infos {
		rows = append(rows, []string{ri.Method, ri.Path, ri.Name})
	}
	table(w, rows)
}

func renderMigrations(w io.Writer, statuses []migration.Status) {
	rows := [][]string{{"", "MIGRATION", "BATCH"}}
	for _, s := range statuses {
		icon, batch := warningStyle.Render("○"), "-"
		if s.Ran {
			icon, batch = successStyle.Render("✓"), fmt.Sprint(s.Batch)
		}
		rows = append(rows, []string{icon, s.Name, batch})
	}
	table(w, rows)
}

func renderGaps(w io.Writer, gaps []services.ResolutionGap) {
	for _, g := range gaps {
		printWarn(w, "unresolved %s", g)
	}
}

func renderSyncReport(w io.Writer, rep *services.SyncReport) {
	section(w, fmt.Sprintf("Product %s  %s", rep.ProductID, rep.ProductName))
	fmt.Fprintf(w, "%s %s\n", mutedStyle.Render("specs:"), rep.Specs)
	if rep.SpecsRewritten {
		printInfo(w, "product specs rewritten")
	}
	renderGaps(w, rep.Gaps)

	summary := fmt.Sprintf("%d orders: %d updated, %d skipped, %d failed",
		rep.Orders, rep.Updated, rep.Skipped, rep.Failed)
	if rep.Failed > 0 {
		printFail(w, "%s", summary)
	} else {
		printOK(w, "%s", summary)
	}
	for _, f := range rep.Failures {
		fmt.Fprintf(w, "    %s %s\n", errorStyle.Render(f.ID), f.Reason)
	}
}

func renderRunReport(w io.Writer, run *services.RunReport) {
	for _, rep := range run.Products {
		renderSyncReport(w, rep)
	}
	section(w, "Summary")
	for _, f := range run.ProductErrors {
		printFail(w, "product %s: %s", f.ID, f.Reason)
	}
	summary := fmt.Sprintf("%d products: %d orders updated, %d skipped, %d failed",
		len(run.Products), run.Updated, run.Skipped, run.Failed)
	if run.OK() {
		printOK(w, "%s", summary)
	} else {
		printFail(w, "%s", summary)
	}
}

func renderProductAudit(w io.Writer, pa *services.ProductAudit) {
	section(w, fmt.Sprintf("Product %s  %s", pa.ProductID, pa.ProductName))
	fmt.Fprintf(w, "%s %s\n", mutedStyle.Render("expected specs:"), pa.ExpectedSpecs)
	if pa.SpecsStale {
		printWarn(w, "product specs are stale")
	}
	renderGaps(w, pa.Gaps)

	for _, o := range pa.Orders {
		if !o.Drifted() {
			if o.RawIdentifiers {
				printWarn(w, "order %s (%s): special_effects holds raw ids", o.OrderID, o.ID)
			}
			continue
		}
		printFail(w, "order %s (%s)", o.OrderID, o.ID)
		for _, m := range o.Mismatches {
			fmt.Fprintf(w, "    %-16s %s %s %s\n", m.Field,
				mutedStyle.Render(quote(m.Actual)), mutedStyle.Render("→"), quote(m.Expected))
		}
		if o.RawIdentifiers {
			fmt.Fprintf(w, "    %s\n", warningStyle.Render("special_effects holds raw ids"))
		}
	}

	summary := fmt.Sprintf("%d orders checked, %d drifted", len(pa.Orders), pa.Drifted)
	if pa.Drifted > 0 {
		printFail(w, "%s", summary)
	} else {
		printOK(w, "%s", summary)
	}
}

func renderAuditReport(w io.Writer, rep *services.AuditReport) {
	for _, pa := range rep.Products {
		renderProductAudit(w, pa)
	}

	section(w, "Summary")
	for _, o := range rep.Orphans {
		printWarn(w, "orphan order %s (%s): %s", o.OrderID, o.ID, o.Reason)
	}
	for _, f := range rep.ProductErrors {
		printFail(w, "product %s: %s", f.ID, f.Reason)
	}
	summary := fmt.Sprintf("%d orders checked, %d drifted, %d orphans",
		rep.Checked, rep.Drifted, len(rep.Orphans))
	if rep.Clean() {
		printOK(w, "%s", summary)
	} else {
		printFail(w, "%s", summary)
	}
}

func quote(s string) string {
	if s == "" {
		return "∅"
	}
	return fmt.Sprintf("%q", s)
}
