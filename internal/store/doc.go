// Package store provides the persistence adapter: a key-value byte store
// holding one JSON document per collection.
//
// Five fixed keys are used (see Keys). The adapter does not interpret the
// bytes it stores; encoding and decoding of domain records happens in the
// codec helpers (Encode, Decode) directly above it.
//
// Two implementations are provided:
//   - Store: SQLite-backed, one row per key in the collections table
//   - Memory: map-backed, for tests and throwaway sessions
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//
// SaveAll writes every entry in one transaction so a commit touching
// several collections is never half persisted.
package store
