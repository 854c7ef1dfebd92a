// Package datasource retrieves the raw KPI CSV payload.
//
// The remote source answers with a JSON envelope of the form
//
//	{"ok": true, "data": "date,kpi_a\n2020-01-01,10\n"}
//
// A falsy ok flag or an empty data field is not an error: fetchers return
// the empty string and the pipeline produces an empty result.
package datasource
