package points

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smart-accounting/backend/internal/application/adapter"
)

// checkinStreakLookback bounds how far back the streak calculation scans.
const checkinStreakLookback = 365

// CheckinStatusOutput describes a user's checkin state for today.
type CheckinStatusOutput struct {
	CheckedInToday  bool
	ConsecutiveDays int
}

// CheckinStatusUseCase reports whether the user checked in today and the
// length of their current streak.
type CheckinStatusUseCase struct {
	checkinRepo adapter.CheckinRepository
	clock       adapter.Clock
}

// NewCheckinStatusUseCase creates a new CheckinStatusUseCase instance.
func NewCheckinStatusUseCase(checkinRepo adapter.CheckinRepository, clock adapter.Clock) *CheckinStatusUseCase {
	return &CheckinStatusUseCase{
		checkinRepo: checkinRepo,
		clock:       clock,
	}
}

// Execute computes the status. A missing checkin today does not break the
// streak; a gap before that does.
func (uc *CheckinStatusUseCase) Execute(ctx context.Context, userID uuid.UUID) (*CheckinStatusOutput, error) {
	today := dayOf(uc.clock.Now())
	start := today.AddDate(0, 0, -checkinStreakLookback)

	checkins, err := uc.checkinRepo.ListByRange(ctx, userID, start, today)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkin history: %w", err)
	}

	days := make(map[time.Time]bool, len(checkins))
	for _, c := range checkins {
		days[dayOf(c.CheckinDate)] = true
	}

	streak := 0
	for i := 0; i < checkinStreakLookback; i++ {
		day := today.AddDate(0, 0, -i)
		if days[day] {
			streak++
			continue
		}
		if i == 0 {
			continue
		}
		break
	}

	return &CheckinStatusOutput{
		CheckedInToday:  days[today],
		ConsecutiveDays: streak,
	}, nil
}
