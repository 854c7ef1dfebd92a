// Package exporter renders KPI statistics.
//
// Supported formats:
//
//	json   ordered object keyed by KPI name (default)
//	table  aligned terminal table
//	csv    one row per KPI with a header row
//	xlsx   Excel workbook with a single "KPI Stats" sheet
//
// Example usage:
//
//	format, err := exporter.ParseFormat("table")
//	if err != nil {
//	    return err
//	}
//	err = exporter.Export(os.Stdout, results, format)
package exporter
