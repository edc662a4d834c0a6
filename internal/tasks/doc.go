// Package tasks imports movie catalogs in bulk with real-time progress reporting.
//
// # Catalog files
//
// [LoadCatalogFile] and [ParseCatalog] read a YAML sequence of [models.CatalogEntry] values:
//
//	- title: Dune
//	  release_date: "2021-10-22"
//	  duration_minutes: 155
//	  budget: 165000000
//	  genres: [Sci-Fi, Adventure]
//	  directors: [Denis Villeneuve]
//	  actors: []
//
// A kind left out of an entry is not touched; an empty list stores no associations of that kind.
//
// # Import
//
// [Importer.Import] feeds entries to a small worker pool. Each worker saves one entry per transaction
// through a [Saver], optionally throttled by a [rate.Limiter]. A failing entry is recorded in the
// [ImportResult] and the batch carries on.
//
// # Progress Reporting
//
// Updates are sent on an optional channel with select and default, so a slow or absent reader never
// blocks the import.
package tasks
