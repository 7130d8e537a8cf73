package adapters

import (
	"testing"
	"time"
)

// waitFor drains a state channel until cond holds or the deadline passes.
func waitFor[T any](t *testing.T, ch <-chan T, cond func(T) bool) T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case v := <-ch:
			if cond(v) {
				return v
			}
		case <-deadline:
			t.Fatal("timed out waiting for state")
		}
	}
}
