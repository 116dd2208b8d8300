package tables

import "github.com/sidoarjo/callcenter/internal/core"

// text builds a text column whose CSV header equals its database name.
func text(name string) core.Column {
	return core.Column{Header: name, Name: name, Kind: core.KindText}
}

// renamed builds a text column read from a differently named header.
// The database name is also accepted as a header.
func renamed(header, name string) core.Column {
	return core.Column{Header: header, Aliases: []string{name}, Name: name, Kind: core.KindText}
}

func timestamp(name string) core.Column {
	return core.Column{Header: name, Name: name, Kind: core.KindTimestamp}
}

// agencyBuckets are the statistics buckets shared by tickets and log entries.
var agencyBuckets = []core.StatusBucket{
	{Label: "Aktif", Value: "aktif", Match: core.MatchExact},
	{Label: "Dikerjakan", Value: "dikerjakan", Match: core.MatchContains},
	{Label: "Selesai", Value: "selesai", Match: core.MatchExact},
}
