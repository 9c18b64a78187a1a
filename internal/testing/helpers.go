// Package testing provides helpers for separating unit tests from
// integration tests that need external services (a NATS server, a reachable
// socket endpoint).
package testing

import (
	"os"
	"testing"
)

// Unit returns true if running in unit test mode. Unit tests are fast and
// do not require external services. Integration tests are opted into with
// LOOMLOG_RUN_INTEGRATION_TESTS=true; the -short flag always forces unit
// mode.
func Unit() bool {
	if testing.Short() {
		return true
	}
	return os.Getenv("LOOMLOG_RUN_INTEGRATION_TESTS") != "true"
}

// Integration returns true if running in integration test mode.
func Integration() bool {
	return !Unit()
}

// SkipIfUnit skips the test if running in unit test mode.
func SkipIfUnit(t *testing.T, message ...string) {
	t.Helper()
	if Unit() {
		msg := "Skipping integration test in unit mode"
		if len(message) > 0 {
			msg = message[0]
		}
		t.Skip(msg)
	}
}

// NATSURL returns the NATS server URL for integration tests, defaulting to
// the local server address.
func NATSURL() string {
	if url := os.Getenv("LOOMLOG_NATS_URL"); url != "" {
		return url
	}
	return "nats://127.0.0.1:4222"
}
