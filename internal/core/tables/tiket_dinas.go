package tables

import "github.com/sidoarjo/callcenter/internal/core"

func init() {
	core.Register(core.Schema{
		Key:   "tiket_dinas",
		Label: "Tiket Dinas",
		Columns: []core.Column{
			renamed("no.laporan", "no_laporan"),
			text("uid_dinas"),
			renamed("no.tiket_dinas", "no_tiket_dinas"),
			text("dinas"),
			text("l2_notes"),
			text("status"),
			text("tiket_dibuat"),
			text("tiket_selesai"),
			text("durasi_penanganan"),
		},
		TimeColumn:    "tiket_dibuat",
		StatusBuckets: agencyBuckets,
		StatusOptions: []string{"aktif", "dikerjakan", "selesai"},
		Breakdowns:    []string{"dinas"},
	})
}
