// Package influxdb writes decode telemetry to InfluxDB.
//
// Two measurements are produced: remote_commands, one point per
// decoded frame, and decode_stats, per-capture counters (preamble
// misses, short messages, complement failures) used to spot
// interference or timing drift on the receiver.
//
// Writes are batched and non-blocking so a slow or absent server
// never stalls the decode path; batch failures surface through the
// SetOnError callback. The whole section is optional: when
// influxdb.enabled is false in config.yaml, Connect returns
// ErrDisabled and the daemon runs without telemetry.
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    // handle ErrDisabled vs real failures
//	}
//	defer client.Close()
//
//	client.WriteCommandEvent("0102030405", "Fan", "Speed 33%", 4)
//
// All methods are safe for concurrent use.
package influxdb
