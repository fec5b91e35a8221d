// Package database opens and migrates the SQLite store that holds the
// decoded-event history.
//
// The store is write-mostly: the rf433 bridge inserts one row per
// decoded frame and a retention sweep prunes old rows. WAL mode keeps
// those writes from blocking external readers of the history file, and
// a single writer connection matches SQLite's concurrency model.
//
// Schema migrations are embedded in the binary (see the migrations
// package) and applied at startup:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration files come in .up.sql/.down.sql pairs named
// YYYYMMDD_HHMMSS_description; the date-time prefix orders them.
// The database file is created 0600: the history reveals which remotes
// are in use and when.
package database
