package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	imagededup "github.com/anatolykoptev/go-imagededup"
)

func printSummary(w io.Writer, report *imagededup.Report) {
	if len(report.Groups) > 0 {
		fmt.Fprintln(w, renderGroups(report.Groups))
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(w, "Run %s: scanned %d, hashed %d, unreadable %d\n",
		report.RunID, report.Scanned, report.Hashed, len(report.Unreadable))
	p.Fprintf(w, "%d duplicate group(s): %d file(s) removed (%s), %d group(s) skipped, %d bytes reclaimed\n",
		len(report.Groups), report.Removed(), report.Removal, report.SkippedGroups(), report.Freed())

	for _, path := range report.Dropped() {
		fmt.Fprintf(w, "unreadable duplicate: %s\n", path)
	}
	for _, f := range report.Failures() {
		fmt.Fprintf(w, "failed: %s\n", f.Error())
	}
}

// renderGroups lays out one row per resolved group: the keeper, the stage
// that picked it, the full decision trail and the removal counts.
func renderGroups(groups []imagededup.GroupResult) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Fingerprint", "Keeper", "Size", "Stage", "Decision", "Removed", "Failed"})

	for _, g := range groups {
		o := g.Outcome
		keeper, size := "(skipped)", "-"
		if !o.Skipped() {
			keeper = o.Keeper.Path
			size = fmt.Sprintf("%dx%d", o.Keeper.Width, o.Keeper.Height)
		}
		tw.AppendRow(table.Row{
			o.Group.Fingerprint.String(),
			keeper,
			size,
			o.Stage.String(),
			o.Explain(),
			len(g.Disposal.Removed),
			len(g.Disposal.Failed),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Size", Align: text.AlignRight},
		{Name: "Decision", WidthMax: 60},
		{Name: "Removed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
	})
	return tw.Render()
}
