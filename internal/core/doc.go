// Package core provides the business logic for importing, reporting on and
// searching call-center records. It has no UI or transport dependencies and
// is used unchanged by the web handlers and the CLI.
//
// # Schemas
//
// Each importable table is a [Schema] value registered at init time with
// [Register]; package tables holds the three call-center schemas. A schema
// lists its columns in insert order, which CSV header each column is read
// from, the optional identity key used for de-duplication, and the time and
// status columns the reports use.
//
// # Import
//
// An upload flows through three steps:
//
//	ds, _ := core.ReadDataset(file)          // parse CSV
//	rows, _ := core.Normalize(schema, ds)    // project, clean, truncate
//	res, _ := writer.Write(ctx, schema, rows) // skip duplicates, COPY, commit
//
// [Service.Import] runs all three in one call and logs the outcome.
//
// # Reports and search
//
// [Service.Statistics], [Service.Dashboard] and [Service.Search] build SQL
// with [WhereBuilder]; every user-supplied value is a bound parameter.
// Chart data is returned as [ChartSeries] and drawn by the client.
//
// # Errors
//
// Failures wrap the sentinels in errors.go. [MapError] turns any error into
// a [UserMessage] with a support code.
package core
