package main

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/rickgao/onthisday/internal/timeline"
)

// renderTable writes entries as an aligned table. showDate adds the
// observed date column used by multi-day results.
func renderTable(w io.Writer, entries []timeline.Entry, showDate bool) {
	header := []string{"Side", "Year", "Category", "Text"}
	if showDate {
		header = append([]string{"Date"}, header...)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, e := range entries {
		row := []string{string(e.Side), strconv.Itoa(e.Year), string(e.Category), e.Text}
		if showDate {
			observed := ""
			if e.ObservedDate != nil {
				observed = e.ObservedDate.String()
			}
			row = append([]string{observed}, row...)
		}
		table.Append(row)
	}
	table.Render()
}
