// Package templates holds the HTML pages. Components are written in the
// .templ files; the _templ.go files are generated by `templ generate`.
package templates

//go:generate templ generate

import "github.com/sidoarjo/callcenter/internal/core"

const stylesheet = `
body{font-family:system-ui,sans-serif;margin:0;background:#f5f6f8;color:#1f2933}
header{display:flex;justify-content:space-between;align-items:center;padding:.75rem 1.5rem;background:#12355b;color:#fff}
header form{margin:0}
main{max-width:1200px;margin:0 auto;padding:1.5rem}
section{background:#fff;border-radius:6px;padding:1rem 1.25rem;margin-bottom:1.25rem}
section.login{max-width:360px;margin:3rem auto}
.cards{display:flex;gap:1rem;flex-wrap:wrap}
.card{flex:1;min-width:160px;background:#fff;border-radius:6px;padding:1rem}
.card strong{display:block;font-size:1.75rem}
.charts{display:grid;grid-template-columns:repeat(auto-fill,minmax(320px,1fr));gap:1rem}
table{border-collapse:collapse;width:100%}
th,td{text-align:left;padding:.25rem .5rem;border-bottom:1px solid #e4e7eb}
td.n{text-align:right}
.alert{border-left:4px solid #c53030;background:#fff5f5;padding:.75rem 1rem;margin-bottom:1rem}
.muted{color:#616e7c}
`

// DashboardData is everything the landing page shows.
type DashboardData struct {
	User      string
	Dashboard *core.Dashboard
	Schemas   []core.Schema

	// Filter form values, echoed back as entered.
	Year, From, To string
}

func (d DashboardData) summary() *core.Dashboard {
	if d.Dashboard == nil {
		return &core.Dashboard{}
	}
	return d.Dashboard
}

// charts lists the series in display order.
func charts(dash *core.Dashboard) []core.ChartSeries {
	out := make([]core.ChartSeries, 0, len(dash.StatusByTable)+len(dash.Top)+3)
	out = append(out, dash.StatusByTable...)
	out = append(out, dash.CombinedStatus, dash.Monthly, dash.Trend)
	return append(out, dash.Top...)
}
