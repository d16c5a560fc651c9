package points

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/smart-accounting/backend/internal/application/adapter"
	"github.com/smart-accounting/backend/internal/domain/entity"
	domainerror "github.com/smart-accounting/backend/internal/domain/error"
)

// CheckinOutput reports a successful checkin.
type CheckinOutput struct {
	Checkin    *entity.Checkin
	NewBalance int
}

// CheckinUseCase awards the daily checkin bonus, at most once per
// reference calendar day per user.
type CheckinUseCase struct {
	checkinRepo adapter.CheckinRepository
	getAccount  *GetAccountUseCase
	clock       adapter.Clock
}

// NewCheckinUseCase creates a new CheckinUseCase instance.
func NewCheckinUseCase(
	checkinRepo adapter.CheckinRepository,
	getAccount *GetAccountUseCase,
	clock adapter.Clock,
) *CheckinUseCase {
	return &CheckinUseCase{
		checkinRepo: checkinRepo,
		getAccount:  getAccount,
		clock:       clock,
	}
}

// Execute records today's checkin and credits the award to the gift pool.
// The award is clamped so the gift balance never exceeds the cap; the
// credit is guarded by the balance the clamp was computed from, so a
// concurrent grant forces a retry with a fresh clamp instead of pushing
// the pool past the cap.
func (uc *CheckinUseCase) Execute(ctx context.Context, userID uuid.UUID) (*CheckinOutput, error) {
	today := dayOf(uc.clock.Now())

	for attempt := 0; attempt < debitRetries; attempt++ {
		account, err := uc.getAccount.Execute(ctx, userID)
		if err != nil {
			return nil, err
		}

		award := CheckinReward
		if headroom := GiftCap - account.GiftBalance; award > headroom {
			award = headroom
		}
		if award < 0 {
			award = 0
		}

		checkin := entity.NewCheckin(userID, today, award)
		applied, err := uc.checkinRepo.Create(ctx, checkin, account.GiftBalance)
		if err != nil {
			if errors.Is(err, domainerror.ErrAlreadyCheckedIn) {
				return nil, domainerror.NewPointsError(
					domainerror.ErrCodeAlreadyCheckedIn,
					"already checked in today",
					domainerror.ErrAlreadyCheckedIn,
				)
			}
			return nil, fmt.Errorf("failed to record checkin: %w", err)
		}
		if !applied {
			continue
		}

		newBalance := account.GiftBalance + award
		slog.Info("Checkin recorded",
			"userID", userID,
			"day", today.Format("2006-01-02"),
			"pointsAwarded", award,
			"giftBalance", newBalance,
		)

		return &CheckinOutput{Checkin: checkin, NewBalance: newBalance}, nil
	}

	return nil, domainerror.NewPointsError(
		domainerror.ErrCodePointsStorageFailure,
		"checkin contended beyond retry budget",
		nil,
	)
}
