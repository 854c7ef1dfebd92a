package app

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpistats/internal/config"
	"kpistats/internal/datasource"
	"kpistats/internal/infrastructure"
	"kpistats/internal/shared/testutil"
)

func newTestApp(t *testing.T, mutate func(cfg *config.Config)) *Application {
	t.Helper()

	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	logger, _ := testutil.NewTestLogger(t)

	tel, err := infrastructure.InitializeOTel(cfg.Telemetry, io.Discard, logger)
	require.NoError(t, err)

	application, err := NewApplication(cfg, logger, tel, datasource.StaticFetcher(testutil.SampleCSV))
	require.NoError(t, err)
	return application
}

func serve(t *testing.T, router http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestNewApplication_RequiresConfig(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	_, err := NewApplication(nil, logger, nil, datasource.StaticFetcher(""))
	require.Error(t, err)
}

func TestApplication_Routes(t *testing.T) {
	application := newTestApp(t, nil)
	router := application.Router

	tests := []struct {
		name         string
		method       string
		target       string
		expectedCode int
		check        func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:         "stats",
			method:       http.MethodGet,
			target:       "/api/stats?stop=2020-01-03&kpi_list=kpi_a",
			expectedCode: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var body map[string]map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, 300.0, body["kpi_a"]["percent_change"])
				assert.Equal(t, 20.0, body["kpi_a"]["median"])
				assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
				assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			},
		},
		{
			name:         "missing column",
			method:       http.MethodGet,
			target:       "/api/stats?stop=2020-01-03&kpi_list=kpi_z",
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "health",
			method:       http.MethodGet,
			target:       "/api/health",
			expectedCode: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Contains(t, rec.Body.String(), config.Default().Source.URL)
			},
		},
		{
			name:         "version",
			method:       http.MethodGet,
			target:       "/api/version",
			expectedCode: http.StatusOK,
		},
		{
			name:         "unknown route",
			method:       http.MethodGet,
			target:       "/api/nothing",
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "wrong method",
			method:       http.MethodPost,
			target:       "/api/health",
			expectedCode: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, router, tt.method, tt.target)
			assert.Equal(t, tt.expectedCode, rec.Code, rec.Body.String())
			if tt.check != nil {
				tt.check(t, rec)
			}
		})
	}

	rec := serve(t, router, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "kpistats_runs_total")
	assert.Contains(t, rec.Body.String(), "kpistats_http_requests_total")
}

func TestApplication_SourceFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     []byte
		wantCode int
		wantErr  string
	}{
		{
			name:     "html instead of envelope",
			status:   http.StatusOK,
			body:     []byte("<html>oops</html>"),
			wantCode: http.StatusBadGateway,
			wantErr:  "UPSTREAM_FAILED",
		},
		{
			name:     "malformed csv payload",
			status:   http.StatusOK,
			body:     testutil.Envelope(true, "date,kpi_a\n2020-01-01,\"open\n"),
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "PARSE_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := testutil.NewSourceServer(t, tt.status, tt.body)
			cfg := config.Default()
			logger, _ := testutil.NewTestLogger(t)
			tel, err := infrastructure.InitializeOTel(cfg.Telemetry, io.Discard, logger)
			require.NoError(t, err)

			application, err := NewApplication(cfg, logger, tel, datasource.NewHTTPFetcher(srv.URL, time.Second, logger))
			require.NoError(t, err)

			rec := serve(t, application.Router, http.MethodGet, "/api/stats?stop=2020-01-03&kpi_list=kpi_a")
			assert.Equal(t, tt.wantCode, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantErr, body["error_code"])
		})
	}
}

func TestApplication_MetricsDisabled(t *testing.T) {
	application := newTestApp(t, func(cfg *config.Config) {
		cfg.Telemetry.Metrics = false
	})

	rec := serve(t, application.Router, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApplication_RateLimit(t *testing.T) {
	application := newTestApp(t, func(cfg *config.Config) {
		cfg.Security.RateLimit.Enabled = true
		cfg.Security.RateLimit.RPS = 0.001
		cfg.Security.RateLimit.Burst = 1
	})

	assert.Equal(t, http.StatusOK, serve(t, application.Router, http.MethodGet, "/api/health").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(t, application.Router, http.MethodGet, "/api/health").Code)
}

func TestApplication_ServeAndShutdown(t *testing.T) {
	application := newTestApp(t, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
