// Package config loads the daemon's configuration.
//
// Values layer in order: built-in defaults, then configs/config.yaml,
// then HUNTERRF_* environment variables. The defaults carry the
// measured Hunter remote timing profile, so a bare config file with
// just broker details is enough to run. Load validates the result;
// the radio section in particular is checked so the slicer's short
// and long pulse windows cannot overlap.
//
// Secrets (broker password, InfluxDB token) belong in environment
// variables, not the YAML file.
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
package config
