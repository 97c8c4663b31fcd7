package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"invoicedesk/backend/internal/domain"
	"invoicedesk/backend/internal/metrics"
	"invoicedesk/backend/internal/render"
	"invoicedesk/backend/internal/service"
)

func parseStatsQuery(r *http.Request) (domain.StatsQuery, error) {
	year, err := parseOptionalInt(r.URL.Query().Get("year"), "year")
	if err != nil {
		return domain.StatsQuery{}, err
	}
	q, err := parseOptionalInt(r.URL.Query().Get("quarter"), "quarter")
	if err != nil {
		return domain.StatsQuery{}, err
	}
	if (year == 0) != (q == 0) {
		return domain.StatsQuery{}, fmt.Errorf("%w: year and quarter must be given together", service.ErrInvalidQuery)
	}
	return domain.StatsQuery{Year: year, Quarter: q}, nil
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	query, err := parseStatsQuery(r)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	view, err := a.stats.Stats(r.Context(), query)
	a.writeStatsView(w, r, view, err)
}

func (a *API) handleStatsRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	query, err := parseStatsQuery(r)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	view, err := a.stats.RefetchStats(r.Context(), query)
	a.writeStatsView(w, r, view, err)
}

// writeStatsView answers a failed aggregation with the error view so the
// dashboard can show its error state; the cause is only logged.
func (a *API) writeStatsView(w http.ResponseWriter, r *http.Request, view domain.StatsView, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, view)
		return
	}
	if errors.Is(err, service.ErrInvalidQuery) || !view.IsError {
		a.writeDomainError(w, r, err)
		return
	}
	a.logger.Error("stats aggregation failed",
		zap.String("request_id", w.Header().Get(requestIDHeader)),
		zap.Int("year", view.Year),
		zap.Int("quarter", view.Quarter),
		zap.Error(err),
	)
	view.Error = "stats are temporarily unavailable"
	writeJSON(w, http.StatusServiceUnavailable, view)
}

func (a *API) handleQuarterlyReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	query, err := parseStatsQuery(r)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	switch format {
	case "":
		format = "json"
	case "json", "csv", "xlsx":
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported format %q", format))
		return
	}

	report, err := a.stats.QuarterlyReport(r.Context(), query)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	filename := fmt.Sprintf("quarterly-report-%d-q%d", report.Year, report.Quarter)

	switch format {
	case "csv":
		body, err := render.QuarterlyCSV(report)
		if err != nil {
			a.writeDomainError(w, r, err)
			return
		}
		writeAttachment(w, "text/csv; charset=utf-8", filename+".csv", body)
	case "xlsx":
		body, err := render.QuarterlyXLSX(report)
		if err != nil {
			a.writeDomainError(w, r, err)
			return
		}
		writeAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", filename+".xlsx", body)
	default:
		writeJSON(w, http.StatusOK, report)
	}
	metrics.IncReportExport(format)
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
