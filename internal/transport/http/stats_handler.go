package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "kpistats/internal/errors"
	"kpistats/internal/exporter"
	"kpistats/internal/middleware"
	"kpistats/internal/services"
	"kpistats/internal/validation"
	api "kpistats/pkg/contracts/api/v1"
)

// StatsHandler serves KPI summary statistics
type StatsHandler struct {
	service      StatsServiceInterface
	validator    *validation.RequestValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewStatsHandler creates a stats handler
func NewStatsHandler(service StatsServiceInterface, validator *validation.RequestValidator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *StatsHandler {
	return &StatsHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "stats_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the stats routes
func (h *StatsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetStats)
	return r
}

// GetStats handles GET /api/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := bindStatsRequest(r)
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	format := exporter.FormatJSON
	if raw := r.URL.Query().Get("format"); raw != "" {
		f, err := exporter.ParseFormat(raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", err.Error()))
			return
		}
		format = f
	}

	query, err := services.ParseQuery(req.Start, req.Stop, req.KPIList)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.New(http.StatusBadRequest, "VALIDATION_FAILED", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "computing stats",
		slog.String("request_id", middleware.GetReqID(ctx)),
		slog.String("start", req.Start),
		slog.String("stop", req.Stop),
		slog.String("kpi_list", req.KPIList),
		slog.String("format", string(format)),
	)

	results, err := h.service.Run(ctx, query)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if format == exporter.FormatJSON {
		render.JSON(w, r, results)
		return
	}

	// Buffer so an export failure can still become a problem response
	var buf bytes.Buffer
	if err := exporter.Export(&buf, results, format); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	if format.Binary() {
		w.Header().Set("Content-Disposition", `attachment; filename="kpi_stats.xlsx"`)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// bindStatsRequest copies the query parameters into a StatsRequest
func bindStatsRequest(r *http.Request) api.StatsRequest {
	q := r.URL.Query()
	return api.StatsRequest{
		Start:   strings.TrimSpace(q.Get("start")),
		Stop:    strings.TrimSpace(q.Get("stop")),
		KPIList: q.Get("kpi_list"),
	}
}
