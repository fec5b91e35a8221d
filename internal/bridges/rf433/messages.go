package rf433

import (
	"time"

	"github.com/nerrad567/hunter-rf-core/internal/decoder"
)

// MQTT message types exchanged between the receiver daemon and the rest
// of the system.

// PulseMessage is published by the external demodulator for each capture.
// Topic: hunterrf/radio/pulses
type PulseMessage struct {
	// Pulses alternates mark and space durations in microseconds,
	// starting with a mark.
	Pulses []int `json:"pulses"`

	// CapturedAt is when the capture ended (UTC, ISO8601). Optional;
	// the bridge falls back to its own clock.
	CapturedAt time.Time `json:"captured_at,omitempty"`
}

// EventMessage is published for each decoded frame.
// Topic: hunterrf/event/remote/{id}
type EventMessage struct {
	// ReceiverID identifies the receiver instance that decoded the frame.
	ReceiverID string `json:"receiver_id"`

	// Timestamp is when the frame was decoded (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	decoder.Record
}

// NewEventMessage builds an event message from a decoded record.
func NewEventMessage(receiverID string, rec decoder.Record) EventMessage {
	return EventMessage{
		ReceiverID: receiverID,
		Timestamp:  time.Now().UTC(),
		Record:     rec,
	}
}

// HealthStatus represents the bridge health state.
type HealthStatus string

// Health status values.
const (
	HealthStarting HealthStatus = "starting"
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthStopping HealthStatus = "stopping"
)

// HealthCounters holds cumulative decode counters since bridge start.
type HealthCounters struct {
	// Captures is the number of pulse messages processed.
	Captures uint64 `json:"captures"`

	// Rows is the total number of bit rows examined.
	Rows uint64 `json:"rows"`

	// Decoded is the number of valid frames emitted.
	Decoded uint64 `json:"decoded"`

	// NoPreamble, ShortMessage and BadMessage count the per-row decode
	// failure reasons.
	NoPreamble   uint64 `json:"no_preamble"`
	ShortMessage uint64 `json:"short_message"`
	BadMessage   uint64 `json:"bad_message"`
}

// HealthMessage is published periodically to report bridge status.
// Topic: hunterrf/health/rf433
// QoS: 1, Retained: Yes
type HealthMessage struct {
	// BridgeID is the bridge identifier ("rf433").
	BridgeID string `json:"bridge_id"`

	// Timestamp is when this message was generated (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// Status is the current health status.
	Status HealthStatus `json:"status"`

	// Version is the bridge software version.
	Version string `json:"version,omitempty"`

	// UptimeSeconds is time since bridge start.
	UptimeSeconds int64 `json:"uptime_seconds"`

	// Counters holds cumulative decode counters.
	Counters HealthCounters `json:"counters"`

	// Reason explains a degraded or stopping status.
	Reason string `json:"reason,omitempty"`
}

// NewHealthMessage builds a health message.
func NewHealthMessage(bridgeID, version string, status HealthStatus, counters HealthCounters, startTime time.Time) HealthMessage {
	return HealthMessage{
		BridgeID:      bridgeID,
		Timestamp:     time.Now().UTC(),
		Status:        status,
		Version:       version,
		UptimeSeconds: int64(time.Since(startTime).Seconds()),
		Counters:      counters,
	}
}
