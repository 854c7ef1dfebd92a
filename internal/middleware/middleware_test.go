package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apperrors "kpistats/internal/errors"
	"kpistats/internal/infrastructure"
	"kpistats/internal/shared/testutil"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
	}{
		{name: "generated", incoming: ""},
		{name: "propagated", incoming: "req-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seenReqID, seenTraceID string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seenReqID = GetReqID(r.Context())
				seenTraceID = infrastructure.GetTraceID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.NotEmpty(t, seenReqID)
			assert.Equal(t, seenReqID, seenTraceID)
			assert.Equal(t, seenReqID, rec.Header().Get(RequestIDHeader))
			if tt.incoming != "" {
				assert.Equal(t, tt.incoming, seenReqID)
			}
		})
	}
}

func TestStructuredLogger(t *testing.T) {
	logger, capture := testutil.NewTestLogger(t)

	router := chi.NewRouter()
	router.Use(RequestID, StructuredLogger(logger))
	router.Get("/ok", okHandler)
	router.Get("/bad", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok?stop=2020-01-01", nil))
	rec, ok := capture.Find("request completed")
	require.True(t, ok)
	assert.Equal(t, slog.LevelInfo, rec.Level)
	assert.Equal(t, int64(http.StatusOK), rec.Attrs["status"])
	assert.Equal(t, "stop=2020-01-01", rec.Attrs["query"])
	assert.Equal(t, "http", rec.Attrs["component"])

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad", nil))
	testutil.AssertLogged(t, capture, slog.LevelWarn, "request completed")
}

func TestRecoverer(t *testing.T) {
	logger, capture := testutil.NewTestLogger(t)
	errHandler := apperrors.NewErrorHandler(logger, false, infrastructure.GetTraceID)

	h := RequestID(Recoverer(errHandler)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set(RequestIDHeader, "trace-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperrors.TypeInternal, body["type"])
	assert.Equal(t, "trace-1", body["trace_id"])

	testutil.AssertLogged(t, capture, slog.LevelError, "panic recovered")
}

func TestRateLimiter(t *testing.T) {
	logger, capture := testutil.NewTestLogger(t)
	errHandler := apperrors.NewErrorHandler(logger, false, infrastructure.GetTraceID)
	rl := NewRateLimiter(0.001, 2, logger, errHandler)
	h := RequestID(rl.Handler(http.HandlerFunc(okHandler)))

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		req.Header.Set(RequestIDHeader, "trace-rl")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)

		if rec.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, rec.Header().Get("Retry-After"))
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, apperrors.TypeRateLimit, body["type"])
			assert.Equal(t, "RATE_LIMIT_EXCEEDED", body["error_code"])
			assert.Equal(t, "trace-rl", body["trace_id"])
			assert.Contains(t, body["detail"], "retry after")
		}
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
	testutil.AssertLogged(t, capture, slog.LevelWarn, "rate limit exceeded")
	testutil.AssertNoErrors(t, capture)
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestOTelMiddleware(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	tel := &infrastructure.Telemetry{
		Tracer: tp.Tracer("test"),
		Meter:  mp.Meter("test"),
	}
	otelMW, err := NewOTelMiddleware(tel)
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Use(RequestID, otelMW.Handler)
	router.Get("/api/stats", okHandler)
	router.Get("/api/fail", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/fail", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "GET /api/stats", spans[0].Name())
	assert.Equal(t, "GET /api/fail", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	found := map[string]bool{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		found[m.Name] = true
		if m.Name == "kpistats.http.requests" {
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			assert.Len(t, sum.DataPoints, 2)
		}
	}
	assert.True(t, found["kpistats.http.requests"])
	assert.True(t, found["kpistats.http.request.duration"])
}

func TestGetRealIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "forwarded", headers: map[string]string{"X-Forwarded-For": "10.0.0.1"}, want: "10.0.0.1"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "10.0.0.2"}, want: "10.0.0.2"},
		{name: "remote addr", want: "192.0.2.1:1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetRealIP(req))
		})
	}
}
