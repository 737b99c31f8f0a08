// Package sqlite provides a SQLite-backed document catalog.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. The catalog records which
// documents have been ingested along with their checksums and chunk counts;
// retrieval itself runs against the vector index, not this store.
//
// # Schema
//
// The database schema is managed through versioned migrations embedded from
// the migrations/ directory.
//
// # Thread Safety
//
// All operations are thread-safe. The store relies on database-level locking
// provided by SQLite in WAL mode.
package sqlite
