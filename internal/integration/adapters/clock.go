package adapters

import (
	"log/slog"
	"time"

	"github.com/smart-accounting/backend/internal/application/adapter"
)

// referenceClock reports the current time in a fixed reference zone so
// date decisions do not depend on where a server instance happens to run.
// Falls back to the host clock's zone when the zone cannot be loaded.
type referenceClock struct {
	location *time.Location
}

// NewReferenceClock creates a clock pinned to the named IANA zone.
func NewReferenceClock(timezone string) adapter.Clock {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		slog.Warn("Reference timezone unavailable, using host clock",
			"timezone", timezone,
			"error", err,
		)
		location = time.Local
	}
	return &referenceClock{location: location}
}

// Now returns the current instant in the reference zone.
func (c *referenceClock) Now() time.Time {
	return time.Now().In(c.location)
}
