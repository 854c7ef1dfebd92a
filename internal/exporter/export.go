package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"kpistats/pkg/contracts/domain"
)

// Export writes results to w in the given format
func Export(w io.Writer, results domain.Results, format Format) error {
	switch format {
	case FormatJSON, "":
		return WriteJSON(w, results)
	case FormatTable:
		return WriteTable(w, results)
	case FormatCSV:
		return WriteCSV(w, results)
	case FormatXLSX:
		return WriteXLSX(w, results)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// ExportFile writes results to path, replacing any existing file
func ExportFile(path string, results domain.Results, format Format) (err error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return Export(file, results, format)
}

// WriteJSON writes results as an indented, ordered JSON object
func WriteJSON(w io.Writer, results domain.Results) error {
	if results == nil {
		results = domain.Results{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
