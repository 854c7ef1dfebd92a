package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"kpistats/pkg/contracts/domain"
)

// WriteCSV writes one row per KPI, preceded by Headers
func WriteCSV(w io.Writer, results domain.Results) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, c := range results {
		record := []string{c.Name}
		for _, v := range statValues(c.Stats) {
			record = append(record, formatExact(v))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
