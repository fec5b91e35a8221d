// Package history persists decoded remote events.
//
// Every decoded frame is stored, including repeats within a
// transmission burst, so pairing sessions and interference patterns
// can be replayed from the database later. The store is an output
// sink: the bridge appends, startup summarises per-remote counts, and
// a retention sweep prunes old events. Anything richer reads the
// SQLite file directly via the remote_events table.
package history
