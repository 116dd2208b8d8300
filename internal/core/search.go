package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// SearchResult is one report joined with one of its tickets and log entries.
// Missing values are Placeholder.
type SearchResult struct {
	NoLaporan      string `json:"no_laporan"`
	NoTelp         string `json:"no_telp"`
	UID            string `json:"uid"`
	TipeLaporan    string `json:"tipe_laporan"`
	Kecamatan      string `json:"kecamatan"`
	Kelurahan      string `json:"kelurahan"`
	StatusLaporan  string `json:"status_laporan"`
	WaktuLapor     string `json:"waktu_lapor"`
	Pelapor        string `json:"pelapor"`
	Kategori       string `json:"kategori"`
	SubKategori1   string `json:"sub_kategori_1"`
	SubKategori2   string `json:"sub_kategori_2"`
	LokasiKejadian string `json:"lokasi_kejadian"`
	NoTiketDinas   string `json:"no_tiket_dinas"`
	Dinas          string `json:"dinas"`
	StatusTiket    string `json:"status_tiket"`
	TiketDibuat    string `json:"tiket_dibuat"`
	TiketSelesai   string `json:"tiket_selesai"`
	LogNoTiket     string `json:"log_no_tiket"`
	LogDinas       string `json:"log_dinas"`
	StatusLog      string `json:"status_log"`
	WaktuProses    string `json:"waktu_proses"`
	Catatan        string `json:"catatan"`
	Durasi         string `json:"durasi"`
}

// SearchColumns is the CSV header for exported search results.
var SearchColumns = []string{
	"no_laporan", "no_telp", "uid", "tipe_laporan", "kecamatan", "kelurahan", "status_laporan",
	"waktu_lapor", "pelapor", "kategori", "sub_kategori_1", "sub_kategori_2", "lokasi_kejadian",
	"no_tiket_dinas", "dinas", "status_tiket", "tiket_dibuat", "tiket_selesai",
	"log_no_tiket", "log_dinas", "status_log", "waktu_proses", "catatan", "durasi",
}

// Values returns the fields in SearchColumns order.
func (r SearchResult) Values() []string {
	return []string{
		r.NoLaporan, r.NoTelp, r.UID, r.TipeLaporan, r.Kecamatan, r.Kelurahan, r.StatusLaporan,
		r.WaktuLapor, r.Pelapor, r.Kategori, r.SubKategori1, r.SubKategori2, r.LokasiKejadian,
		r.NoTiketDinas, r.Dinas, r.StatusTiket, r.TiketDibuat, r.TiketSelesai,
		r.LogNoTiket, r.LogDinas, r.StatusLog, r.WaktuProses, r.Catatan, r.Durasi,
	}
}

// searchRecord is one scanned row before post-processing.
type searchRecord struct {
	NoLaporan, NoTelp, UID, TipeLaporan, Kecamatan, Kelurahan, StatusLaporan pgtype.Text
	WaktuLapor                                                               pgtype.Timestamp
	Pelapor, Kategori, SubKategori1, SubKategori2, LokasiKejadian            pgtype.Text
	NoTiketDinas, Dinas, StatusTiket, TiketDibuat, TiketSelesai              pgtype.Text
	TiketSelesaiAt                                                           pgtype.Timestamp
	LogNoTiket, LogDinas, StatusLog, WaktuProses                             pgtype.Text
	WaktuProsesAt                                                            pgtype.Timestamp
	Catatan                                                                  pgtype.Text
}

func (r *searchRecord) dest() []any {
	return []any{
		&r.NoLaporan, &r.NoTelp, &r.UID, &r.TipeLaporan, &r.Kecamatan, &r.Kelurahan, &r.StatusLaporan,
		&r.WaktuLapor, &r.Pelapor, &r.Kategori, &r.SubKategori1, &r.SubKategori2, &r.LokasiKejadian,
		&r.NoTiketDinas, &r.Dinas, &r.StatusTiket, &r.TiketDibuat, &r.TiketSelesai, &r.TiketSelesaiAt,
		&r.LogNoTiket, &r.LogDinas, &r.StatusLog, &r.WaktuProses, &r.WaktuProsesAt, &r.Catatan,
	}
}

const searchSelect = `SELECT DISTINCT
	l.no_laporan, l.no_telp, l.uid, l.tipe_laporan, l.kecamatan, l.kelurahan, l.status,
	l.waktu_lapor, l.pelapor, l.kategori, l.sub_kategori_1, l.sub_kategori_2, l.lokasi_kejadian,
	t.no_tiket_dinas, t.dinas, t.status, t.tiket_dibuat, t.tiket_selesai, try_timestamp(t.tiket_selesai),
	g.no_tiket_dinas, g.dinas, g.status, g.waktu_proses, try_timestamp(g.waktu_proses), g.catatan
FROM laporan l
LEFT JOIN tiket_dinas t ON l.no_laporan = t.no_laporan
LEFT JOIN log_dinas g ON l.no_laporan = g.no_laporan`

const searchOrder = ` ORDER BY l.waktu_lapor DESC NULLS LAST,
	try_timestamp(g.waktu_proses) DESC NULLS LAST,
	try_timestamp(t.tiket_selesai) DESC NULLS LAST`

// searchFields are matched against the term.
var searchFields = []string{
	"l.no_laporan", "l.no_telp", "l.kecamatan", "l.kelurahan", "l.pelapor",
	"l.kategori", "l.sub_kategori_1", "l.sub_kategori_2", "l.lokasi_kejadian", "l.status",
	"t.no_tiket_dinas", "t.dinas", "t.status",
	"g.dinas", "g.status", "g.catatan",
}

// searchDates are the timestamps a date range may match.
var searchDates = []string{
	"l.waktu_lapor",
	"try_timestamp(t.tiket_dibuat)",
	"try_timestamp(t.tiket_selesai)",
	"try_timestamp(g.waktu_proses)",
}

// buildSearchQuery returns the search SQL; the term and dates are bound.
func buildSearchQuery(f SearchFilter, limit int) (string, []any) {
	wb := NewWhereBuilder()
	if term := strings.TrimSpace(f.Term); term != "" {
		wb.AddContainsAny(searchFields, escapeLike(term))
	}
	if f.Set() {
		start, end := f.bounds()
		wb.AddRangeAny(searchDates, start, end)
	}
	where, args := wb.Build()

	query := searchSelect + where + searchOrder
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", wb.NextArgIndex())
		args = append(args, limit)
	}
	return query, args
}

// escapeLike makes LIKE wildcards in user input literal.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Search finds reports matching the filter.
func (s *Service) Search(ctx context.Context, f SearchFilter) ([]SearchResult, error) {
	if err := validateFilter(f); err != nil {
		return nil, err
	}

	query, args := buildSearchQuery(f, s.searchLimit)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (searchRecord, error) {
		var rec searchRecord
		err := row.Scan(rec.dest()...)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	return resolveSearchResults(records, s.statusPolicy), nil
}

// resolveSearchResults fills placeholders, applies the status policy,
// computes durations and keeps the first row per (report, ticket).
func resolveSearchResults(records []searchRecord, policy StatusPolicy) []SearchResult {
	if policy == nil {
		policy = StoredStatusPolicy
	}

	type key struct{ laporan, tiket string }
	seen := make(map[key]struct{}, len(records))
	out := make([]SearchResult, 0, len(records))

	for _, rec := range records {
		res := SearchResult{
			NoLaporan:      orPlaceholder(rec.NoLaporan),
			NoTelp:         orPlaceholder(rec.NoTelp),
			UID:            orPlaceholder(rec.UID),
			TipeLaporan:    orPlaceholder(rec.TipeLaporan),
			Kecamatan:      orPlaceholder(rec.Kecamatan),
			Kelurahan:      orPlaceholder(rec.Kelurahan),
			WaktuLapor:     timestampText(rec.WaktuLapor),
			Pelapor:        orPlaceholder(rec.Pelapor),
			Kategori:       orPlaceholder(rec.Kategori),
			SubKategori1:   orPlaceholder(rec.SubKategori1),
			SubKategori2:   orPlaceholder(rec.SubKategori2),
			LokasiKejadian: orPlaceholder(rec.LokasiKejadian),
			NoTiketDinas:   orPlaceholder(rec.NoTiketDinas),
			Dinas:          orPlaceholder(rec.Dinas),
			StatusTiket:    orPlaceholder(rec.StatusTiket),
			TiketDibuat:    orPlaceholder(rec.TiketDibuat),
			TiketSelesai:   orPlaceholder(rec.TiketSelesai),
			LogNoTiket:     orPlaceholder(rec.LogNoTiket),
			LogDinas:       orPlaceholder(rec.LogDinas),
			StatusLog:      orPlaceholder(rec.StatusLog),
			WaktuProses:    orPlaceholder(rec.WaktuProses),
			Catatan:        orPlaceholder(rec.Catatan),
			Durasi:         Placeholder,
		}

		k := key{res.NoLaporan, res.NoTiketDinas}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		lapor := validTime(rec.WaktuLapor)
		selesai := validTime(rec.TiketSelesaiAt)
		res.StatusLaporan = policy(orPlaceholder(rec.StatusLaporan), lapor, validTime(rec.WaktuProsesAt), selesai)
		if !lapor.IsZero() && !selesai.IsZero() {
			res.Durasi = FormatDuration(selesai.Sub(lapor))
		}

		out = append(out, res)
	}
	return out
}

func orPlaceholder(t pgtype.Text) string {
	if !t.Valid {
		return Placeholder
	}
	return t.String
}

func validTime(t pgtype.Timestamp) time.Time {
	if !t.Valid || t.InfinityModifier != pgtype.Finite {
		return time.Time{}
	}
	return t.Time
}

func timestampText(t pgtype.Timestamp) string {
	return formatTimestamp(validTime(t))
}
