package points

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/smart-accounting/backend/internal/application/adapter"
	domainerror "github.com/smart-accounting/backend/internal/domain/error"
)

// GrantDailyGiftOutput reports what the first-visit grant did.
type GrantDailyGiftOutput struct {
	Granted bool // true only on the first call of the day
	Amount  int  // points actually added, 0 when the pool is at cap
}

// GrantDailyGiftUseCase hands out the once-per-day gift on a user's first
// visit. The granted-today marker is written even when the computed amount
// is 0, so an at-cap user is not re-evaluated within the same day.
type GrantDailyGiftUseCase struct {
	accountRepo adapter.PointsAccountRepository
	getAccount  *GetAccountUseCase
	clock       adapter.Clock
}

// NewGrantDailyGiftUseCase creates a new GrantDailyGiftUseCase instance.
func NewGrantDailyGiftUseCase(
	accountRepo adapter.PointsAccountRepository,
	getAccount *GetAccountUseCase,
	clock adapter.Clock,
) *GrantDailyGiftUseCase {
	return &GrantDailyGiftUseCase{
		accountRepo: accountRepo,
		getAccount:  getAccount,
		clock:       clock,
	}
}

// Execute grants min(DailyGift, GiftCap - giftBalance) once per reference
// calendar day. Idempotent: repeated calls on the same day are no-ops.
func (uc *GrantDailyGiftUseCase) Execute(ctx context.Context, userID uuid.UUID) (*GrantDailyGiftOutput, error) {
	today := dayOf(uc.clock.Now())

	for attempt := 0; attempt < debitRetries; attempt++ {
		account, err := uc.getAccount.Execute(ctx, userID)
		if err != nil {
			return nil, err
		}

		if account.LastDailyGiftDate != nil && !account.LastDailyGiftDate.Before(today) {
			return &GrantDailyGiftOutput{Granted: false}, nil
		}

		amount := 0
		if account.GiftBalance < GiftCap {
			amount = DailyGift
			if headroom := GiftCap - account.GiftBalance; amount > headroom {
				amount = headroom
			}
		}

		applied, err := uc.accountRepo.ApplyDailyGift(ctx, userID, today, account.GiftBalance, amount)
		if err != nil {
			return nil, fmt.Errorf("failed to apply daily gift: %w", err)
		}
		if !applied {
			continue
		}

		slog.Info("Daily gift processed",
			"userID", userID,
			"day", today.Format("2006-01-02"),
			"amount", amount,
			"giftBalance", account.GiftBalance+amount,
		)

		return &GrantDailyGiftOutput{Granted: true, Amount: amount}, nil
	}

	return nil, domainerror.NewPointsError(
		domainerror.ErrCodePointsStorageFailure,
		"daily gift contended beyond retry budget",
		nil,
	)
}
