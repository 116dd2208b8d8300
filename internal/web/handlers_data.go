package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sidoarjo/callcenter/internal/logging"
)

// handleListSchemas returns the importable tables.
func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	type schemaInfo struct {
		Key           string   `json:"key"`
		Label         string   `json:"label"`
		Columns       []string `json:"columns"`
		StatusOptions []string `json:"status_options"`
	}
	schemas := s.service.Schemas()
	out := make([]schemaInfo, len(schemas))
	for i, sc := range schemas {
		out[i] = schemaInfo{Key: sc.Key, Label: sc.Label, Columns: sc.ColumnNames(), StatusOptions: sc.StatusOptions}
	}
	writeJSON(w, out)
}

// handleDashboard returns the dashboard summary as JSON.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	f, err := dashboardFilter(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	d, err := s.service.Dashboard(r.Context(), f)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, d)
}

// handleStatistics returns one table's statistics as JSON.
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	f, err := statsFilter(r, chi.URLParam(r, "schema"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	stats, err := s.service.Statistics(r.Context(), f)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, stats)
}

// handleStatisticsExport streams the filtered rows of one table as CSV.
func (s *Server) handleStatisticsExport(w http.ResponseWriter, r *http.Request) {
	schema := chi.URLParam(r, "schema")
	f, err := statsFilter(r, schema)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	dw := &downloadWriter{w: w, filename: fmt.Sprintf("%s_%s.csv", schema, time.Now().Format("20060102"))}
	n, err := s.service.ExportStatistics(r.Context(), f, dw)
	if err != nil {
		if !dw.started {
			s.respondError(w, r, err)
			return
		}
		logging.FromContext(r.Context()).Error("export interrupted", "table", schema, "rows", n, "error", err)
		return
	}
	logging.FromContext(r.Context()).Info("export completed", "table", schema, "rows", n)
}
