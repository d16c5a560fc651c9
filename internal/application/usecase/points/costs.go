// Package points contains the prepaid points ledger use cases.
package points

import (
	"time"

	domainerror "github.com/smart-accounting/backend/internal/domain/error"
	"github.com/smart-accounting/backend/internal/domain/entity"
)

// Ledger constants. The cost schedule is a fixed table, not per-call
// configuration.
const (
	// DailyGift is the amount granted on a user's first visit each day and
	// the seed balance of a fresh account.
	DailyGift = 10
	// GiftCap is the ceiling of the gift pool. No grant or checkin may push
	// the gift balance above it.
	GiftCap = 30
	// CheckinReward is the checkin award before cap clamping.
	CheckinReward = 5
)

// actionCosts is the authoritative cost schedule for paid AI actions.
var actionCosts = map[entity.ActionKind]int{
	entity.ActionKindText:  1,
	entity.ActionKindVoice: 2,
	entity.ActionKindImage: 3,
}

// CostFor returns the point cost of a paid action kind.
// Unknown kinds report an error rather than a zero cost.
func CostFor(kind entity.ActionKind) (int, error) {
	cost, ok := actionCosts[kind]
	if !ok {
		return 0, domainerror.ErrInvalidSubmissionSource
	}
	return cost, nil
}

// dayOf normalizes an instant to the midnight of its calendar day,
// preserving nothing but the date. Used for checkin and daily-gift markers.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
