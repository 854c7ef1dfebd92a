package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"
)

// DateRange is an inclusive [Start, Stop] window over the date column.
// A zero Start leaves the window unbounded below.
type DateRange struct {
	Start time.Time `json:"start"`
	Stop  time.Time `json:"stop"`
}

// Contains reports whether t falls inside the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return (r.Start.IsZero() || !t.Before(r.Start)) && !t.After(r.Stop)
}

// KPIList is an ordered set of KPI column names
type KPIList []string

// ParseKPIList splits a comma delimited list of KPI names.
// Names are trimmed and duplicates keep their first position.
func ParseKPIList(raw string) KPIList {
	parts := strings.Split(raw, ",")
	seen := make(map[string]bool, len(parts))
	list := make(KPIList, 0, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if seen[name] {
			continue
		}
		seen[name] = true
		list = append(list, name)
	}
	return list
}

// String joins the list back into its comma delimited form
func (l KPIList) String() string {
	return strings.Join(l, ",")
}

// StatsRecord holds the summary statistics of one KPI column
type StatsRecord struct {
	PercentChange float64  `json:"percent_change"`
	FirstValue    float64  `json:"first_value"`
	LastValue     float64  `json:"last_value"`
	Lowest        float64  `json:"lowest"`
	Highest       float64  `json:"highest"`
	Mode          *float64 `json:"mode"`
	Average       float64  `json:"average"`
	Median        float64  `json:"median"`
}

// MarshalJSON writes non-finite statistics as null so a column with gaps
// still produces a valid document.
func (s StatsRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(statsRecordJSON{
		PercentChange: finite(s.PercentChange),
		FirstValue:    finite(s.FirstValue),
		LastValue:     finite(s.LastValue),
		Lowest:        finite(s.Lowest),
		Highest:       finite(s.Highest),
		Mode:          s.Mode,
		Average:       finite(s.Average),
		Median:        finite(s.Median),
	})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ColumnStats pairs a KPI name with its statistics
type ColumnStats struct {
	Name  string      `json:"name"`
	Stats StatsRecord `json:"stats"`
}

// Results maps KPI names to statistics, keeping the column order of the
// filtered table. It encodes as a JSON object whose keys follow that order.
type Results []ColumnStats

// Names returns the KPI names in order
func (r Results) Names() []string {
	names := make([]string, len(r))
	for i, c := range r {
		names[i] = c.Name
	}
	return names
}

// Get looks up the statistics for a KPI
func (r Results) Get(name string) (StatsRecord, bool) {
	for _, c := range r {
		if c.Name == name {
			return c.Stats, true
		}
	}
	return StatsRecord{}, false
}

// MarshalJSON encodes the results as an ordered JSON object
func (r Results) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.Stats)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an ordered JSON object back into Results
func (r *Results) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	out := Results{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var stats statsRecordJSON
		if err := dec.Decode(&stats); err != nil {
			return err
		}
		out = append(out, ColumnStats{Name: name, Stats: stats.record()})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = out
	return nil
}

type statsRecordJSON struct {
	PercentChange *float64 `json:"percent_change"`
	FirstValue    *float64 `json:"first_value"`
	LastValue     *float64 `json:"last_value"`
	Lowest        *float64 `json:"lowest"`
	Highest       *float64 `json:"highest"`
	Mode          *float64 `json:"mode"`
	Average       *float64 `json:"average"`
	Median        *float64 `json:"median"`
}

func (s statsRecordJSON) record() StatsRecord {
	val := func(p *float64) float64 {
		if p == nil {
			return math.NaN()
		}
		return *p
	}
	return StatsRecord{
		PercentChange: val(s.PercentChange),
		FirstValue:    val(s.FirstValue),
		LastValue:     val(s.LastValue),
		Lowest:        val(s.Lowest),
		Highest:       val(s.Highest),
		Mode:          s.Mode,
		Average:       val(s.Average),
		Median:        val(s.Median),
	}
}
