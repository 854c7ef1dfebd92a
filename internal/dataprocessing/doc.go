// Package dataprocessing turns a KPI CSV payload into summary statistics.
//
// The pipeline has two steps:
//
//  1. FilterTable parses the CSV, keeps the rows whose date lies inside an
//     inclusive DateRange and projects the requested KPI columns.
//  2. ComputeStats summarizes every column of the filtered table.
//
// Usage:
//
//	table, err := dataprocessing.FilterTable(csvText, rng, kpis)
//	if err != nil {
//	    return err
//	}
//	results, err := dataprocessing.ComputeStats(table)
//
// Row order is never changed. An empty payload yields an empty table and an
// empty result.
package dataprocessing
