// Package database provides SQLite connectivity for Locus Core.
//
// It manages the connection lifecycle (WAL mode, busy timeout, single-writer
// pool), applies embedded schema migrations at startup, and exposes health
// checks for the readiness probe.
//
// # Thread Safety
//
// The DB wrapper is safe for concurrent use; SQLite WAL mode allows
// concurrent reads during writes, with a single writer connection.
package database
