// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import "time"

// Clock supplies the pipeline's notion of "now". The production
// implementation is pinned to the configured reference zone; tests pin it
// to a fixed instant.
type Clock interface {
	// Now returns the current time in the reference zone.
	Now() time.Time
}
