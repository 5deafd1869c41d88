package http

import (
	"log/slog"
	"net/http"

	"budget/internal/core"
	"budget/internal/export"
)

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	report, ok := s.buildReport(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, reportToDTO(report))
}

// buildReport parses the window parameters and returns a (possibly cached)
// report. On failure it writes the error response and returns ok=false.
func (s *Server) buildReport(w http.ResponseWriter, r *http.Request) (core.Report, bool) {
	from, to, err := parseWindow(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return core.Report{}, false
	}
	referenceDate, err := parseReferenceDate(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return core.Report{}, false
	}

	key := reportCacheKey(from, to, referenceDate)
	if cached, found := s.reportCache.Get(key); found {
		slog.DebugContext(r.Context(), "Report cache hit", "from", from.String(), "to", to.String())
		return cached, true
	}

	report, err := s.reports.Build(r.Context(), from, to, referenceDate)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to build report",
			"error", err,
			"from", from.String(),
			"to", to.String(),
			"reference_date", referenceDate.String())
		writeDomainError(w, err)
		return core.Report{}, false
	}

	s.reportCache.Set(key, report)
	return report, true
}

func (s *Server) handleReportExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.exporter == nil {
		writeError(w, http.StatusNotImplemented, "no export backend configured")
		return
	}

	report, ok := s.buildReport(w, r)
	if !ok {
		return
	}

	rows := export.RowsFromReport(report)
	if err := s.exporter.Append(r.Context(), rows...); err != nil {
		slog.ErrorContext(r.Context(), "Failed to export report",
			"error", err,
			"from", report.From.String(),
			"to", report.To.String(),
			"rows", len(rows))
		writeError(w, http.StatusBadGateway, "export failed")
		return
	}

	slog.InfoContext(r.Context(), "Report exported",
		"from", report.From.String(),
		"to", report.To.String(),
		"rows", len(rows))
	writeJSON(w, http.StatusOK, map[string]int{"exported_rows": len(rows)})
}
