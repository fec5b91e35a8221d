package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteCommandEvent writes a decoded remote command to InfluxDB.
//
// This is the primary method for recording decoded remote activity.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - remoteID: Remote/pairing identifier in hex (e.g., "0102030405")
//   - target: Subsystem the command addresses ("Fan", "Light", "Unknown")
//   - action: Human-readable action label (e.g., "Speed 33%")
//   - command: Raw command code from the frame
//
// Example:
//
//	client.WriteCommandEvent("0102030405", "Fan", "Speed 33%", 4)
func (c *Client) WriteCommandEvent(remoteID, target, action string, command int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"remote_commands",
		map[string]string{
			"remote_id": remoteID,
			"target":    target,
			"action":    action,
		},
		map[string]interface{}{
			"command": command,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteDecodeStats writes per-capture decode counters.
//
// Used for monitoring receiver health: a rising bad-message or
// no-preamble rate usually means interference or timing drift.
//
// Parameters:
//   - receiverID: The receiver instance identifier
//   - rows: Total bitbuffer rows examined
//   - decoded: Rows that produced a valid frame
//   - noPreamble: Rows with no sync word
//   - shortMessage: Rows truncated below the minimum payload
//   - badMessage: Rows failing the complement check
func (c *Client) WriteDecodeStats(receiverID string, rows, decoded, noPreamble, shortMessage, badMessage int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"decode_stats",
		map[string]string{
			"receiver_id": receiverID,
		},
		map[string]interface{}{
			"rows":          rows,
			"decoded":       decoded,
			"no_preamble":   noPreamble,
			"short_message": shortMessage,
			"bad_message":   badMessage,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
