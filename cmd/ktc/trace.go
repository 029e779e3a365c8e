package main

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/you-not-fish/ktc/internal/driver"
)

// printTrace renders the phase timings as a table.
func printTrace(w io.Writer, phases []driver.Phase) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Phase", "Duration", "Items"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	var total time.Duration
	for _, p := range phases {
		total += p.Duration
		table.Append([]string{p.Name, p.Duration.String(), fmt.Sprintf("%d %s", p.Items, p.Unit)})
	}
	table.SetFooter([]string{"total", total.String(), ""})
	table.Render()
}
