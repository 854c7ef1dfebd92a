package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// SampleCSV is a small KPI table with unsorted dates and two KPI columns
const SampleCSV = `date,kpi_a,kpi_b
2020-01-01,10,5
2020-01-02,20,5
2020-01-03,30,7
`

// Envelope builds the JSON body a KPI source responds with
func Envelope(ok any, data string) []byte {
	body, _ := json.Marshal(map[string]any{"ok": ok, "data": data})
	return body
}

// NewSourceServer starts an httptest server answering every request with body.
// Each request's query is sent to the returned channel when it has room.
func NewSourceServer(t *testing.T, status int, body []byte) (*httptest.Server, <-chan string) {
	t.Helper()
	queries := make(chan string, 16)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case queries <- r.URL.RawQuery:
		default:
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, queries
}
