package points

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/smart-accounting/backend/internal/application/adapter"
	"github.com/smart-accounting/backend/internal/domain/entity"
	domainerror "github.com/smart-accounting/backend/internal/domain/error"
)

// AddPointsInput represents the input for a points credit.
type AddPointsInput struct {
	UserID      uuid.UUID
	Kind        entity.ActionKind
	Points      int
	Pool        entity.BalancePool
	Description string
}

// AddPointsOutput carries the credited pool's new balance.
type AddPointsOutput struct {
	NewBalance int
}

// AddPointsUseCase credits points to a named pool with one audit row.
// Unbounded; the daily-grant path is the only capped entry point.
type AddPointsUseCase struct {
	accountRepo adapter.PointsAccountRepository
	getAccount  *GetAccountUseCase
}

// NewAddPointsUseCase creates a new AddPointsUseCase instance.
func NewAddPointsUseCase(
	accountRepo adapter.PointsAccountRepository,
	getAccount *GetAccountUseCase,
) *AddPointsUseCase {
	return &AddPointsUseCase{
		accountRepo: accountRepo,
		getAccount:  getAccount,
	}
}

// Execute performs the credit.
func (uc *AddPointsUseCase) Execute(ctx context.Context, input AddPointsInput) (*AddPointsOutput, error) {
	if input.Points <= 0 {
		return nil, domainerror.NewPointsError(
			domainerror.ErrCodeInvalidPointsAmount,
			fmt.Sprintf("cannot credit %d points", input.Points),
			domainerror.ErrInvalidPointsAmount,
		)
	}
	if input.Pool != entity.BalancePoolGift && input.Pool != entity.BalancePoolMember {
		return nil, domainerror.NewPointsError(
			domainerror.ErrCodeInvalidBalancePool,
			fmt.Sprintf("unknown balance pool %q", input.Pool),
			domainerror.ErrInvalidBalancePool,
		)
	}

	// Make sure the account exists before incrementing.
	if _, err := uc.getAccount.Execute(ctx, input.UserID); err != nil {
		return nil, err
	}

	newBalance, err := uc.accountRepo.Credit(
		ctx,
		input.UserID,
		input.Pool,
		input.Kind,
		input.Points,
		input.Description,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to credit points: %w", err)
	}

	slog.Info("Points credited",
		"userID", input.UserID,
		"kind", input.Kind,
		"points", input.Points,
		"pool", input.Pool,
		"newBalance", newBalance,
	)

	return &AddPointsOutput{NewBalance: newBalance}, nil
}
