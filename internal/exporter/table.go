package exporter

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"kpistats/pkg/contracts/domain"
)

// WriteTable renders results as a terminal table
func WriteTable(w io.Writer, results domain.Results) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	header := make(table.Row, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	t.AppendHeader(header)

	for _, c := range results {
		row := table.Row{c.Name}
		for _, v := range statValues(c.Stats) {
			row = append(row, formatFloat(v))
		}
		t.AppendRow(row)
	}

	configs := make([]table.ColumnConfig, 0, len(Headers)-1)
	for i := 2; i <= len(Headers); i++ {
		configs = append(configs, table.ColumnConfig{Number: i, Align: text.AlignRight})
	}
	t.SetColumnConfigs(configs)
	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}
