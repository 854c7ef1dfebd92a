package exporter

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"kpistats/pkg/contracts/domain"
)

func sampleResults() domain.Results {
	mode := 5.0
	return domain.Results{
		{Name: "Temp", Stats: domain.StatsRecord{
			PercentChange: 200, FirstValue: 10, LastValue: 20, Lowest: 10,
			Highest: 20, Mode: nil, Average: 15, Median: 15,
		}},
		{Name: "Load", Stats: domain.StatsRecord{
			PercentChange: 140, FirstValue: 5, LastValue: 7, Lowest: 5,
			Highest: 7, Mode: &mode, Average: 5.5, Median: math.NaN(),
		}},
	}
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"json", "TABLE", " csv ", "xlsx"} {
		_, err := ParseFormat(in)
		assert.NoError(t, err, in)
	}
	_, err := ParseFormat("yaml")
	assert.Error(t, err)

	assert.True(t, FormatXLSX.Binary())
	assert.False(t, FormatJSON.Binary())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleResults(), FormatJSON))

	out := buf.String()
	assert.Less(t, strings.Index(out, `"Temp"`), strings.Index(out, `"Load"`))
	assert.Contains(t, out, `"percent_change": 200`)
	assert.Contains(t, out, `"mode": null`)
	assert.Contains(t, out, `"median": null`)
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "{}\n", buf.String())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleResults(), FormatCSV))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Headers, records[0])
	assert.Equal(t, []string{"Temp", "200", "10", "20", "10", "20", "", "15", "15"}, records[1])
	assert.Equal(t, []string{"Load", "140", "5", "7", "5", "7", "5", "5.5", ""}, records[2])
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleResults(), FormatTable))

	out := buf.String()
	assert.Contains(t, strings.ToLower(out), "percent_change")
	assert.Contains(t, out, "Temp")
	assert.Contains(t, out, "200.00")
	assert.Contains(t, out, "5.50")
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleResults(), FormatXLSX))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, "Temp", rows[1][0])
	assert.Equal(t, "200", rows[1][1])
	assert.Equal(t, "Load", rows[2][0])
}

func TestExportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.csv")
	require.NoError(t, ExportFile(path, sampleResults(), FormatCSV))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "kpi,percent_change"))

	_, err = os.Stat(path)
	require.NoError(t, err)
	assert.Error(t, ExportFile(filepath.Join(t.TempDir(), "missing", "x.csv"), sampleResults(), FormatCSV))
}
