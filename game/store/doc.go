// Package store provides persistence for matches.
//
// Three implementations of the Store interface ship with the server:
//   - MemoryStore: in-process map, nothing survives a restart
//   - FileStore: one JSON snapshot per match under a directory
//   - SQLiteStore: durable rows in SQLite through GORM
//
// All of them persist snapshots rather than live entities, and every load
// rebuilds a fresh match by replaying its move log. Two consequences fall
// out of that: a loaded match never shares state with storage or with other
// loads, and a record whose move log no longer replays surfaces as a
// CorruptStateError instead of silently producing a wrong position.
package store
