package dataprocessing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "kpistats/internal/errors"
	"kpistats/pkg/contracts/domain"
)

func ptr(v float64) *float64 { return &v }

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single nonzero", []float64{5}, 100},
		{"single zero", []float64{0}, 0},
		{"growth", []float64{10, 15, 20}, 200},
		{"zero first guarded", []float64{0, 3}, 300},
		{"negative", []float64{-4, 2}, -50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PercentChange(tt.values), 1e-9)
		})
	}
}

func TestMode(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   *float64
	}{
		{"two modes returns smallest", []float64{1, 1, 2, 2, 3}, ptr(1)},
		{"two modes unsorted input", []float64{9, 4, 9, 4}, ptr(4)},
		{"single mode is nil", []float64{1, 1, 2}, nil},
		{"single value is nil", []float64{5}, nil},
		{"all distinct is nil", []float64{10, 20}, nil},
		{"empty is nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Mode(tt.values)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestSummarizeColumn(t *testing.T) {
	rec, err := SummarizeColumn([]float64{3, 1, 4, 1, 5, 9})
	require.NoError(t, err)

	assert.InDelta(t, 300, rec.PercentChange, 1e-9)
	assert.Equal(t, 3.0, rec.FirstValue)
	assert.Equal(t, 9.0, rec.LastValue)
	assert.Equal(t, 1.0, rec.Lowest)
	assert.Equal(t, 9.0, rec.Highest)
	assert.Nil(t, rec.Mode)
	assert.InDelta(t, 23.0/6, rec.Average, 1e-9)
	assert.InDelta(t, 3.5, rec.Median, 1e-9)
}

func TestSummarizeColumn_SingleRow(t *testing.T) {
	rec, err := SummarizeColumn([]float64{7})
	require.NoError(t, err)

	assert.Equal(t, rec.FirstValue, rec.LastValue)
	assert.InDelta(t, 100, rec.PercentChange, 1e-9)
	assert.Nil(t, rec.Mode)
	for _, v := range []float64{rec.Lowest, rec.Highest, rec.Average, rec.Median} {
		assert.Equal(t, 7.0, v)
	}
}

func TestSummarizeColumn_Empty(t *testing.T) {
	_, err := SummarizeColumn(nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestSummarizeColumn_AllMissing(t *testing.T) {
	rec, err := SummarizeColumn([]float64{math.NaN(), math.NaN()})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(rec.Lowest))
	assert.True(t, math.IsNaN(rec.Median))

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"lowest":null`)
}

func TestComputeStats_EndToEnd(t *testing.T) {
	csvText := "date,Temp\n2020-01-01,10\n2020-01-02,20\n2020-01-03,30\n"

	table, err := FilterTable(csvText, rangeOf(day(1), day(2)), domain.ParseKPIList("Temp"))
	require.NoError(t, err)

	results, err := ComputeStats(table)
	require.NoError(t, err)
	require.Equal(t, []string{"Temp"}, results.Names())

	got, ok := results.Get("Temp")
	require.True(t, ok)
	assert.Equal(t, domain.StatsRecord{
		PercentChange: 200,
		FirstValue:    10,
		LastValue:     20,
		Lowest:        10,
		Highest:       20,
		Mode:          nil,
		Average:       15,
		Median:        15,
	}, got)
}

func TestComputeStats_KeysFollowKPIOrder(t *testing.T) {
	csvText := "date,a,b,c\n2020-01-01,1,2,3\n2020-01-02,4,5,6\n"
	kpis := domain.KPIList{"c", "a", "b"}

	table, err := FilterTable(csvText, rangeOf(day(1), day(2)), kpis)
	require.NoError(t, err)
	results, err := ComputeStats(table)
	require.NoError(t, err)

	assert.Equal(t, []string(kpis), results.Names())

	data, err := json.Marshal(results)
	require.NoError(t, err)
	assert.Regexp(t, `^\{"c":.*,"a":.*,"b":.*\}$`, string(data))
}

func TestComputeStats_EmptyTables(t *testing.T) {
	empty, err := FilterTable("", rangeOf(day(1), day(2)), domain.KPIList{"a"})
	require.NoError(t, err)
	results, err := ComputeStats(empty)
	require.NoError(t, err)
	assert.Empty(t, results)

	noRows, err := FilterTable("date,a\n2019-01-01,1\n", rangeOf(day(1), day(2)), domain.KPIList{"a"})
	require.NoError(t, err)
	results, err = ComputeStats(noRows)
	require.NoError(t, err)
	assert.Empty(t, results)

	data, err := json.Marshal(results)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}
