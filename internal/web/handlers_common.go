package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sidoarjo/callcenter/internal/core"
)

// parseDateRange reads the "from" and "to" query parameters (YYYY-MM-DD).
func parseDateRange(r *http.Request) (core.DateRange, error) {
	var d core.DateRange
	var err error
	q := r.URL.Query()
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		if d.From, err = core.ParseDate(v); err != nil {
			return d, err
		}
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		if d.To, err = core.ParseDate(v); err != nil {
			return d, err
		}
	}
	return d, nil
}

// parseStatuses accepts repeated and comma-separated "status" parameters.
func parseStatuses(r *http.Request) []string {
	var out []string
	for _, v := range r.URL.Query()["status"] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// parseYear reads the optional "year" parameter.
func parseYear(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("year"))
	if v == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: year %q", core.ErrInvalidFilter, v)
	}
	return year, nil
}

func statsFilter(r *http.Request, schema string) (core.StatsFilter, error) {
	dr, err := parseDateRange(r)
	if err != nil {
		return core.StatsFilter{}, err
	}
	return core.StatsFilter{Schema: schema, Statuses: parseStatuses(r), DateRange: dr}, nil
}

func dashboardFilter(r *http.Request) (core.DashboardFilter, error) {
	year, err := parseYear(r)
	if err != nil {
		return core.DashboardFilter{}, err
	}
	dr, err := parseDateRange(r)
	if err != nil {
		return core.DashboardFilter{}, err
	}
	return core.DashboardFilter{Year: year, DateRange: dr}, nil
}

func searchFilter(r *http.Request) (core.SearchFilter, error) {
	dr, err := parseDateRange(r)
	if err != nil {
		return core.SearchFilter{}, err
	}
	return core.SearchFilter{Term: r.URL.Query().Get("q"), DateRange: dr}, nil
}

// setDownloadHeaders marks the response as a CSV attachment.
func setDownloadHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

// ImportResponse wraps the import result for JSON encoding.
type ImportResponse struct {
	*core.ImportResult
	Duration string `json:"duration"`
}

// downloadWriter sets the CSV attachment headers on the first write, so an
// error raised before any output can still be sent as a normal response.
type downloadWriter struct {
	w        http.ResponseWriter
	filename string
	started  bool
}

func (d *downloadWriter) Write(p []byte) (int, error) {
	if !d.started {
		setDownloadHeaders(d.w, d.filename)
		d.started = true
	}
	return d.w.Write(p)
}
