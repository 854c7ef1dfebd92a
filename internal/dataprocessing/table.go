package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	apperrors "kpistats/internal/errors"
	"kpistats/pkg/contracts/domain"
)

// DateColumn is the header name of the date column
const DateColumn = "date"

// Table is a filtered and projected KPI table
type Table struct {
	names []string
	dates []time.Time
	df    dataframe.DataFrame
}

// Names returns the KPI column names in order
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.dates)
}

// Dates returns the date of every row in row order
func (t *Table) Dates() []time.Time {
	out := make([]time.Time, len(t.dates))
	copy(out, t.dates)
	return out
}

// Column returns the values of a KPI column in row order
func (t *Table) Column(name string) ([]float64, error) {
	if !contains(t.names, name) {
		return nil, apperrors.NewMissingColumnError(name, t.Names())
	}
	if t.Len() == 0 {
		return []float64{}, nil
	}
	return t.df.Col(name).Float(), nil
}

// Project narrows the table to kpis, in kpis order
func (t *Table) Project(kpis domain.KPIList) (*Table, error) {
	for _, name := range kpis {
		if !contains(t.names, name) {
			return nil, apperrors.NewMissingColumnError(name, t.Names())
		}
	}

	out := &Table{names: append([]string(nil), kpis...), dates: t.dates}
	if t.Len() == 0 {
		return out, nil
	}

	out.df = t.df.Select([]string(kpis))
	if out.df.Err != nil {
		return nil, apperrors.NewParsingError("failed to project columns", out.df.Err)
	}
	return out, nil
}

// FilterTable parses csvText, keeps rows with rng.Start <= date <= rng.Stop
// and projects them to kpis. Empty input yields an empty table with no columns.
func FilterTable(csvText string, rng domain.DateRange, kpis domain.KPIList) (*Table, error) {
	if csvText == "" {
		return &Table{}, nil
	}

	records, err := readRecords(csvText)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	header := records[0]
	dateIdx := indexOf(header, DateColumn)
	if dateIdx < 0 {
		return nil, apperrors.NewMissingColumnError(DateColumn, header)
	}

	for _, name := range kpis {
		if !contains(header, name) {
			return nil, apperrors.NewMissingColumnError(name, header)
		}
	}

	rows := records[1:]
	kept := [][]string{header}
	dates := make([]time.Time, 0, len(rows))
	for i, row := range rows {
		d, err := ParseDate(row[dateIdx])
		if err != nil {
			return nil, apperrors.NewParsingError("invalid date", err).
				WithContext("row", i+1)
		}
		// both bounds are checked against the same row
		if rng.Contains(d) {
			kept = append(kept, row)
			dates = append(dates, d)
		}
	}

	for _, name := range kpis {
		if err := checkNumeric(rows, indexOf(header, name), name); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(header)-1)
	for i, name := range header {
		if i != dateIdx {
			names = append(names, name)
		}
	}

	table := &Table{names: names, dates: dates}
	if len(dates) > 0 {
		table.df = dataframe.LoadRecords(kept,
			dataframe.HasHeader(true),
			dataframe.DetectTypes(false),
			dataframe.DefaultType(series.Float),
			dataframe.WithTypes(map[string]series.Type{header[dateIdx]: series.String}),
		)
		if table.df.Err != nil {
			return nil, apperrors.NewParsingError("failed to load table", table.df.Err)
		}
	}
	return table.Project(kpis)
}

// readRecords reads and trims every record. Short rows are padded with
// missing values, long rows are rejected, and duplicate or empty header
// names are renamed so every column stays addressable.
func readRecords(csvText string) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(csvText))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("malformed csv", err)
	}
	if len(records) == 0 {
		return records, nil
	}

	width := len(records[0])
	for i, row := range records {
		if len(row) > width {
			return nil, apperrors.NewParsingError("malformed csv",
				fmt.Errorf("expected %d fields, saw %d", width, len(row))).
				WithContext("row", i)
		}
		for j := range row {
			row[j] = strings.TrimSpace(row[j])
		}
		for len(row) < width {
			row = append(row, "")
		}
		records[i] = row
	}
	records[0] = uniqueHeader(records[0])
	return records, nil
}

// uniqueHeader names empty columns "Unnamed: <i>" and suffixes repeated
// names with ".1", ".2" so the first occurrence keeps its name.
func uniqueHeader(header []string) []string {
	out := make([]string, len(header))
	taken := make(map[string]bool, len(header))
	repeats := make(map[string]int)
	for i, name := range header {
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		candidate := name
		for taken[candidate] {
			repeats[name]++
			candidate = name + "." + strconv.Itoa(repeats[name])
		}
		taken[candidate] = true
		out[i] = candidate
	}
	return out
}

// missing values parse to NaN and do not make a column non-numeric
var missingValues = map[string]bool{"": true, "NA": true, "NaN": true, "nan": true, "null": true}

func checkNumeric(rows [][]string, idx int, name string) error {
	for i, row := range rows {
		v := row[idx]
		if missingValues[v] {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return apperrors.NewParsingError(fmt.Sprintf("column %q is not numeric", name), err).
				WithContext("column", name).
				WithContext("row", i+1)
		}
	}
	return nil
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func contains(names []string, name string) bool {
	return indexOf(names, name) >= 0
}
