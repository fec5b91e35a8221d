// Package rf433 bridges the 433MHz receiver to MQTT.
//
// The external demodulator publishes raw mark/space pulse trains to
// hunterrf/radio/pulses. The bridge slices each train into bit rows,
// runs the Hunter decoder over them, and publishes one event per
// decoded frame to hunterrf/event/remote/{id}.
//
// Decoded events are also persisted to the history repository and,
// when enabled, mirrored to InfluxDB together with per-capture decode
// statistics. A health reporter publishes the bridge status to
// hunterrf/health/rf433 at a fixed interval.
//
// The bridge holds no per-capture state: each pulse message is decoded
// independently, so a crash or restart loses at most the message in
// flight.
package rf433
