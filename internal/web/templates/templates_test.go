package templates

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/sidoarjo/callcenter/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c interface {
	Render(context.Context, io.Writer) error
}) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestLoginPage_EscapesInput(t *testing.T) {
	out := render(t, LoginPage(`/"><script>`, "Salah <b>password</b>"))

	assert.Contains(t, out, `value="/&#34;&gt;&lt;script&gt;"`)
	assert.Contains(t, out, "Salah &lt;b&gt;password&lt;/b&gt;")
	assert.NotContains(t, out, `action="/logout"`)
}

func TestDashboardPage(t *testing.T) {
	d := DashboardData{
		User: "admin",
		Dashboard: &core.Dashboard{
			GrandTotal: 3,
			Done:       1,
			Totals:     []core.Point{{Label: "Laporan", Value: 3}},
			Top: []core.ChartSeries{{
				Title:  "Top 10 Kategori",
				Kind:   core.ChartPie,
				Points: []core.Point{{Label: "Jalan & Trotoar", Value: 2}},
			}},
		},
		Schemas: []core.Schema{{Key: "laporan", Label: "Laporan"}},
		Year:    "2024",
	}
	out := render(t, DashboardPage(d))

	assert.Contains(t, out, `action="/logout"`)
	assert.Contains(t, out, `action="/api/import/laporan"`)
	assert.Contains(t, out, `data-chart="pie"`)
	assert.Contains(t, out, "Jalan &amp; Trotoar")
	assert.Contains(t, out, `name="year" inputmode="numeric" size="6" value="2024"`)
	assert.Contains(t, out, `<a href="/api/statistics/laporan">Statistik</a>`)
	assert.Contains(t, out, "Total data<strong>3</strong>")
	assert.NotContains(t, out, "Belum ada data")
}

func TestDashboardPage_EscapesData(t *testing.T) {
	d := DashboardData{
		Dashboard: &core.Dashboard{
			GrandTotal: 1,
			Trend: core.ChartSeries{
				Title:  "Tren <harian>",
				Kind:   core.ChartLine,
				Points: []core.Point{{Label: `<img src=x onerror="alert(1)">`, Group: "a&b", Value: 1}},
			},
		},
		Schemas: []core.Schema{{Key: "laporan", Label: "<i>Laporan</i>"}},
		From:    `2024-01-01"><script>`,
	}
	out := render(t, DashboardPage(d))

	assert.NotContains(t, out, "<img")
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "<i>Laporan")
	assert.Contains(t, out, "Tren &lt;harian&gt;")
	assert.Contains(t, out, "<td>a&amp;b</td>")
	assert.Contains(t, out, `value="2024-01-01&#34;&gt;&lt;script&gt;"`)
	assert.NotContains(t, out, `action="/logout"`)
}

func TestCharts_Order(t *testing.T) {
	dash := &core.Dashboard{
		StatusByTable:  []core.ChartSeries{{Title: "a"}},
		CombinedStatus: core.ChartSeries{Title: "b"},
		Monthly:        core.ChartSeries{Title: "c"},
		Trend:          core.ChartSeries{Title: "d"},
		Top:            []core.ChartSeries{{Title: "e"}},
	}
	var titles []string
	for _, s := range charts(dash) {
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, titles)
}

func TestDashboardPage_Empty(t *testing.T) {
	out := render(t, DashboardPage(DashboardData{User: "admin"}))
	assert.Contains(t, out, "Belum ada data")
}

func TestErrorPage(t *testing.T) {
	out := render(t, ErrorPage(404, "", core.MapError(core.ErrUnknownSchema)))
	assert.Contains(t, out, "<title>Not Found")
	assert.Contains(t, out, "Kode: TBL002")
	assert.Contains(t, out, `<a href="/">Kembali ke dashboard</a>`)
}
