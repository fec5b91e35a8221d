package influxdb

import "errors"

// Sentinel errors for InfluxDB operations; match with errors.Is.
var (
	// ErrNotConnected indicates the client is closed or was never
	// connected.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed indicates the initial ping failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled indicates the influxdb config section is switched
	// off.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
