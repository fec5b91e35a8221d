package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/hunter-rf-core/internal/decoder"
)

// Event is a decoded remote frame as stored in the database.
type Event struct {
	// ID is a UUID assigned on insert.
	ID string `json:"id"`

	// ReceivedAt is when the frame was decoded (UTC).
	ReceivedAt time.Time `json:"received_at"`

	// Model is the device model name (e.g. "Hunter").
	Model string `json:"model"`

	// RemoteID is the remote's pairing identifier in hex.
	RemoteID string `json:"remote_id"`

	// Command is the raw command code.
	Command int `json:"command"`

	// Target is "Fan", "Light" or "Unknown"; empty for raw profiles.
	Target string `json:"target,omitempty"`

	// Action is the human-readable action label; empty for raw profiles.
	Action string `json:"action,omitempty"`

	// Data is the raw payload hex; only set for raw profiles.
	Data string `json:"data,omitempty"`

	// RowIndex is the bitbuffer row the frame decoded from.
	RowIndex int `json:"row"`
}

// FromRecord builds an Event from a decoded record.
// The ID and ReceivedAt fields are assigned on insert.
func FromRecord(rec decoder.Record) Event {
	return Event{
		Model:    rec.Model,
		RemoteID: rec.RemoteID,
		Command:  rec.Command,
		Target:   string(rec.Target),
		Action:   rec.Action,
		Data:     rec.Data,
		RowIndex: rec.Row,
	}
}

// Repository is the event store as the daemon uses it: the bridge
// appends, startup summarises, and the retention sweep prunes.
// Consumers wanting richer queries read the SQLite file directly.
type Repository interface {
	// Insert stores a new event. If the event has no ID, a UUID is
	// assigned. If ReceivedAt is zero, the current time is used.
	Insert(ctx context.Context, event *Event) error

	// CountByRemote returns the number of stored events per remote ID.
	CountByRemote(ctx context.Context) (map[string]int, error)

	// DeleteBefore removes events received before the cutoff time.
	// Returns the number of events removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SQLiteRepository implements Repository on the remote_events table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open, migrated SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Insert stores a new event.
func (r *SQLiteRepository) Insert(ctx context.Context, event *Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO remote_events (
			id, received_at, model, remote_id, command, target, action, data, row_index
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.ReceivedAt.UTC().Format(time.RFC3339),
		event.Model,
		event.RemoteID,
		event.Command,
		event.Target,
		event.Action,
		event.Data,
		event.RowIndex,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrEventExists
		}
		return fmt.Errorf("inserting event: %w", err)
	}

	return nil
}

// CountByRemote returns the number of stored events per remote ID.
func (r *SQLiteRepository) CountByRemote(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT remote_id, COUNT(*) FROM remote_events GROUP BY remote_id",
	)
	if err != nil {
		return nil, fmt.Errorf("counting events: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var remoteID string
		var count int
		if err := rows.Scan(&remoteID, &count); err != nil {
			return nil, fmt.Errorf("scanning count row: %w", err)
		}
		counts[remoteID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating counts: %w", err)
	}
	return counts, nil
}

// DeleteBefore removes events received before the cutoff time.
func (r *SQLiteRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM remote_events WHERE received_at < ?",
		cutoff.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting events: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return removed, nil
}

// isUniqueConstraintError checks if an error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
