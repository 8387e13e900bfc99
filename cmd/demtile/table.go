package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/twpayne/go-demtile"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func count(n int) string {
	return humanize.Comma(int64(n))
}

func unpackSummaryRows(report *demtile.UnpackReport) [][]string {
	rows := [][]string{
		{"Archives found", count(len(report.Archives))},
		{"Archives extracted", count(report.Extracted())},
		{"Archives failed", count(len(report.Failed()))},
		{"Bytes extracted", humanize.Bytes(uint64(report.Bytes()))},
	}
	if report.Organize != nil {
		rows = append(rows, organizeSummaryRows(report.Organize)...)
	}
	return rows
}

func organizeSummaryRows(report *demtile.OrganizeReport) [][]string {
	return [][]string{
		{"Files found", count(report.Found)},
		{"Files organized", count(report.Organized)},
		{"Files already in place", count(report.Kept)},
		{"Unparseable files", count(len(report.Unparseable))},
		{"Destination collisions", count(len(report.Collisions))},
		{"Verification warnings", count(len(report.VerifyWarnings))},
		{"Files deleted", count(report.DeletedFiles)},
		{"Directories removed", count(report.RemovedDirs)},
		{"Tile directories", count(len(report.TileDirs))},
	}
}

func writeUnpackSummary(w io.Writer, report *demtile.UnpackReport) {
	fmt.Fprintln(w, renderTable([]string{"Summary", "Count"}, unpackSummaryRows(report), []columnAlignment{alignLeft, alignRight}))
	for _, failed := range report.Failed() {
		fmt.Fprintf(w, "failed archive %s: %v\n", failed.Name, failed.Err)
	}
	if report.Organize != nil {
		writeOrganizeDetails(w, report.Organize)
	}
}

func writeOrganizeSummary(w io.Writer, report *demtile.OrganizeReport) {
	fmt.Fprintln(w, renderTable([]string{"Summary", "Count"}, organizeSummaryRows(report), []columnAlignment{alignLeft, alignRight}))
	writeOrganizeDetails(w, report)
}

func writeOrganizeDetails(w io.Writer, report *demtile.OrganizeReport) {
	if len(report.TileDirs) > 0 {
		rows := make([][]string, 0, len(report.TileDirs))
		for _, dir := range slices.Sorted(maps.Keys(report.TileDirs)) {
			rows = append(rows, []string{dir, strconv.Itoa(report.TileDirs[dir])})
		}
		fmt.Fprintln(w, renderTable([]string{"Tile directory", "Files"}, rows, []columnAlignment{alignLeft, alignRight}))
	}
	for _, name := range report.Unparseable {
		fmt.Fprintf(w, "unparseable: %s\n", name)
	}
	for _, name := range report.Collisions {
		fmt.Fprintf(w, "overwritten: %s\n", name)
	}
	for _, name := range report.VerifyWarnings {
		fmt.Fprintf(w, "verification warning: %s\n", name)
	}
}
