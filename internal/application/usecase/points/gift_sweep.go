package points

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/smart-accounting/backend/internal/application/adapter"
)

// GiftSweepUseCase tops up every account below the gift cap. Run nightly
// by the scheduler; per-user grants go through the same idempotent
// daily-gift path, so a user who already received today's gift is skipped.
type GiftSweepUseCase struct {
	accountRepo adapter.PointsAccountRepository
	grantDaily  *GrantDailyGiftUseCase
}

// NewGiftSweepUseCase creates a new GiftSweepUseCase instance.
func NewGiftSweepUseCase(
	accountRepo adapter.PointsAccountRepository,
	grantDaily *GrantDailyGiftUseCase,
) *GiftSweepUseCase {
	return &GiftSweepUseCase{
		accountRepo: accountRepo,
		grantDaily:  grantDaily,
	}
}

// Execute sweeps all accounts below the cap. Individual failures are
// logged and skipped so one broken account does not stall the sweep.
func (uc *GiftSweepUseCase) Execute(ctx context.Context) (int, error) {
	userIDs, err := uc.accountRepo.ListBelowGiftBalance(ctx, GiftCap)
	if err != nil {
		return 0, fmt.Errorf("failed to list sweep candidates: %w", err)
	}

	granted := 0
	for _, userID := range userIDs {
		output, err := uc.grantDaily.Execute(ctx, userID)
		if err != nil {
			slog.Warn("Gift sweep skipped user", "userID", userID, "error", err)
			continue
		}
		if output.Granted && output.Amount > 0 {
			granted++
		}
	}

	slog.Info("Gift sweep finished", "candidates", len(userIDs), "granted", granted)
	return granted, nil
}
