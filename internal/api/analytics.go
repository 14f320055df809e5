package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/calldeskhq/backend/internal/analytics"
	"github.com/calldeskhq/backend/internal/auth"
	"github.com/calldeskhq/backend/internal/metrics"
	"github.com/calldeskhq/backend/internal/storage"
	"github.com/rs/zerolog"
)

// maxBlockRangeDays caps block-performance requests to one schema cycle
const maxBlockRangeDays = 31

// AnalyticsHandler serves the dashboard report endpoints
type AnalyticsHandler struct {
	service *analytics.Service
	logger  zerolog.Logger
}

// NewAnalyticsHandler creates an AnalyticsHandler
func NewAnalyticsHandler(service *analytics.Service, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// respondReportError maps engine errors onto HTTP statuses
func (h *AnalyticsHandler) respondReportError(w http.ResponseWriter, report string, err error) {
	metrics.Get().RecordReportError()

	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, analytics.ErrInvalidRange):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Str("report", report).Msg("report failed")
		respondError(w, http.StatusInternalServerError, "internal server error processing visualization")
	}
}

// daysInRange counts calendar days covered by an inclusive date range.
// End arrives normalized to the last instant of its day, so the fraction
// is truncated.
func daysInRange(start, end time.Time) int {
	diff := end.Sub(start)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Floor(diff.Hours()/24)) + 1
}

// DailyActivity handles GET /api/datavis/daily-activity?from=...&to=...
func (h *AnalyticsHandler) DailyActivity(w http.ResponseWriter, r *http.Request) {
	companyID, _ := auth.CompanyFromContext(r.Context())
	start, end, err := parseDateRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	metrics.Get().RecordReportRequest("daily_activity")
	report, err := h.service.DailyActivity(r.Context(), companyID, start, end)
	if err != nil {
		h.respondReportError(w, "daily_activity", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// BlockPerformance handles GET /api/datavis/block-performance
func (h *AnalyticsHandler) BlockPerformance(w http.ResponseWriter, r *http.Request) {
	companyID, _ := auth.CompanyFromContext(r.Context())
	schemaID := r.URL.Query().Get("schemaId")
	if schemaID == "" {
		respondError(w, http.StatusBadRequest, "missing schemaId parameter")
		return
	}
	start, end, err := parseDateRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if daysInRange(start, end) > maxBlockRangeDays {
		respondError(w, http.StatusBadRequest, "date range exceeds maximum schema limit of 31 days")
		return
	}

	metrics.Get().RecordReportRequest("block_performance")
	report, err := h.service.BlockPerformance(r.Context(), companyID, start, end, schemaID)
	if err != nil {
		h.respondReportError(w, "block_performance", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// BlockPerformanceFiltered handles GET /api/datavis/block-performance-filtered
func (h *AnalyticsHandler) BlockPerformanceFiltered(w http.ResponseWriter, r *http.Request) {
	companyID, _ := auth.CompanyFromContext(r.Context())
	schemaID := r.URL.Query().Get("schemaId")
	if schemaID == "" {
		respondError(w, http.StatusBadRequest, "missing schemaId parameter")
		return
	}
	start, end, err := parseDateRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	fromDayIndex, err := strconv.Atoi(r.URL.Query().Get("fromDayIndex"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid fromDayIndex")
		return
	}
	toDayIndex, err := strconv.Atoi(r.URL.Query().Get("toDayIndex"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid toDayIndex")
		return
	}

	// The requested indices must fit inside the date span actually provided
	if days := daysInRange(start, end); toDayIndex >= days {
		respondError(w, http.StatusBadRequest,
			"the requested toDayIndex ("+strconv.Itoa(toDayIndex)+") exceeds the provided date range of "+strconv.Itoa(days)+" days")
		return
	}
	if fromDayIndex > toDayIndex {
		respondError(w, http.StatusBadRequest, "fromDayIndex cannot be greater than toDayIndex")
		return
	}

	metrics.Get().RecordReportRequest("block_performance_filtered")
	report, err := h.service.BlockPerformanceFiltered(r.Context(), companyID, start, end, schemaID, fromDayIndex, toDayIndex)
	if err != nil {
		h.respondReportError(w, "block_performance_filtered", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// LongCallDistribution handles GET /api/datavis/long-call-distribution
func (h *AnalyticsHandler) LongCallDistribution(w http.ResponseWriter, r *http.Request) {
	companyID, _ := auth.CompanyFromContext(r.Context())
	start, end, err := parseDateRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	metrics.Get().RecordReportRequest("long_call_distribution")
	report, err := h.service.LongCallDistribution(r.Context(), companyID, start, end)
	if err != nil {
		h.respondReportError(w, "long_call_distribution", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// SeedTimelineHeatmap handles GET /api/datavis/seed-timeline-heatmap
func (h *AnalyticsHandler) SeedTimelineHeatmap(w http.ResponseWriter, r *http.Request) {
	companyID, _ := auth.CompanyFromContext(r.Context())
	start, end, err := parseDateRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	metrics.Get().RecordReportRequest("seed_timeline_heatmap")
	report, err := h.service.SeedTimelineHeatmap(r.Context(), companyID, start, end)
	if err != nil {
		h.respondReportError(w, "seed_timeline_heatmap", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// ConversionFunnel handles GET /api/datavis/conversion-funnel
func (h *AnalyticsHandler) ConversionFunnel(w http.ResponseWriter, r *http.Request) {
	companyID, _ := auth.CompanyFromContext(r.Context())
	start, end, err := parseDateRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	metrics.Get().RecordReportRequest("conversion_funnel")
	report, err := h.service.ConversionFunnel(r.Context(), companyID, start, end)
	if err != nil {
		h.respondReportError(w, "conversion_funnel", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// ConsistencyHistory handles GET /api/datavis/consistency-history?goalId=...
func (h *AnalyticsHandler) ConsistencyHistory(w http.ResponseWriter, r *http.Request) {
	companyID, _ := auth.CompanyFromContext(r.Context())
	goalID := r.URL.Query().Get("goalId")
	if goalID == "" {
		respondError(w, http.StatusBadRequest, "missing goalId parameter")
		return
	}
	start, end, err := parseDateRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	metrics.Get().RecordReportRequest("consistency_history")
	report, err := h.service.ConsistencyHistory(r.Context(), goalID, companyID, start, end)
	if err != nil {
		h.respondReportError(w, "consistency_history", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
