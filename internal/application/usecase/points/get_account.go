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

// GetAccountUseCase resolves a user's points account, creating it lazily
// on first access.
type GetAccountUseCase struct {
	accountRepo adapter.PointsAccountRepository
}

// NewGetAccountUseCase creates a new GetAccountUseCase instance.
func NewGetAccountUseCase(accountRepo adapter.PointsAccountRepository) *GetAccountUseCase {
	return &GetAccountUseCase{accountRepo: accountRepo}
}

// Execute returns the existing account, or creates one seeded with the
// daily gift amount plus one gift/add audit row. Idempotent per user.
func (uc *GetAccountUseCase) Execute(ctx context.Context, userID uuid.UUID) (*entity.PointsAccount, error) {
	account, err := uc.accountRepo.FindByUser(ctx, userID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, domainerror.ErrPointsAccountNotFound) {
		return nil, fmt.Errorf("failed to load points account: %w", err)
	}

	account = entity.NewPointsAccount(userID, DailyGift)
	seed := entity.NewLedgerEntry(
		userID,
		entity.ActionKindRegistration,
		entity.LedgerOperationAdd,
		DailyGift,
		entity.BalancePoolGift,
		DailyGift,
		"welcome points on account creation",
	)

	if err := uc.accountRepo.CreateWithSeed(ctx, account, seed); err != nil {
		// Another request created the account first; use theirs.
		existing, findErr := uc.accountRepo.FindByUser(ctx, userID)
		if findErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create points account: %w", err)
	}

	slog.Info("Points account created",
		"userID", userID,
		"giftBalance", account.GiftBalance,
	)

	return account, nil
}
