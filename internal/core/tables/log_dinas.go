package tables

import "github.com/sidoarjo/callcenter/internal/core"

func init() {
	core.Register(core.Schema{
		Key:   "log_dinas",
		Label: "Log Dinas",
		Columns: []core.Column{
			renamed("no.laporan", "no_laporan"),
			renamed("no.tiket_dinas", "no_tiket_dinas"),
			text("dinas"),
			text("agent_l2"),
			text("status"),
			text("waktu_proses"),
			text("durasi_penanganan"),
			text("catatan"),
			text("foto_1"),
			text("foto_2"),
			text("foto_3"),
			text("foto_4"),
		},
		// Report number and timestamp are not part of the identity.
		IdentityKey:   []string{"no_tiket_dinas", "status", "catatan"},
		TimeColumn:    "waktu_proses",
		StatusBuckets: agencyBuckets,
		StatusOptions: []string{
			"aktif",
			"dikerjakan",
			"verivikasi l2",
			"selesai",
			"selesai tanpa eskalasi",
			"perbaharuan laporan",
			"transfer tiket",
		},
		Breakdowns: []string{"dinas"},
	})
}
