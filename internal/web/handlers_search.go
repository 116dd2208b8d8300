package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sidoarjo/callcenter/internal/core"
	"github.com/sidoarjo/callcenter/internal/logging"
)

// SearchResponse is the JSON body of a search.
type SearchResponse struct {
	Term    string              `json:"term"`
	Count   int                 `json:"count"`
	Results []core.SearchResult `json:"results"`
}

// handleSearch runs a free-text search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	f, err := searchFilter(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	results, err := s.service.Search(r.Context(), f)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if results == nil {
		results = []core.SearchResult{}
	}
	writeJSON(w, SearchResponse{Term: f.Term, Count: len(results), Results: results})
}

// handleSearchExport writes search results as CSV.
func (s *Server) handleSearchExport(w http.ResponseWriter, r *http.Request) {
	f, err := searchFilter(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	dw := &downloadWriter{w: w, filename: fmt.Sprintf("pencarian_%s.csv", time.Now().Format("20060102"))}
	n, err := s.service.ExportSearch(r.Context(), f, dw)
	if err != nil {
		if !dw.started {
			s.respondError(w, r, err)
			return
		}
		logging.FromContext(r.Context()).Error("export interrupted", "rows", n, "error", err)
		return
	}
	logging.FromContext(r.Context()).Info("search export completed", "rows", n)
}
