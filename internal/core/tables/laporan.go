package tables

import "github.com/sidoarjo/callcenter/internal/core"

func init() {
	core.Register(core.Schema{
		Key:   "laporan",
		Label: "Laporan",
		Columns: []core.Column{
			text("no"),
			text("uid"),
			text("no_laporan"),
			text("tipe_saluran"),
			timestamp("waktu_lapor"),
			text("agent_l1"),
			text("tipe_laporan"),
			text("pelapor"),
			text("no_telp"),
			text("kategori"),
			text("sub_kategori_1"),
			text("sub_kategori_2"),
			text("deskripsi"),
			text("lokasi_kejadian"),
			text("kecamatan"),
			text("kelurahan"),
			text("catatan_lokasi"),
			text("latitude"),
			text("longitude"),
			timestamp("waktu_selesai"),
			text("ditutup_oleh"),
			text("status"),
			text("dinas_terkait"),
			text("durasi_pengerjaan"),
		},
		TimeColumn: "waktu_lapor",
		StatusBuckets: []core.StatusBucket{
			{Label: "Selesai", Value: "selesai", Match: core.MatchExact},
			{Label: "Proses", Value: "proses", Match: core.MatchContains},
			{Label: "Baru", Value: "baru", Match: core.MatchContains},
		},
		StatusOptions: []string{"baru", "proses", "selesai"},
		Breakdowns:    []string{"tipe_laporan", "kategori"},
	})
}
