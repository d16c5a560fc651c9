package points

import (
	"context"

	"github.com/google/uuid"

	"github.com/smart-accounting/backend/internal/domain/entity"
)

// CanAffordUseCase answers whether a user's combined balance covers a
// paid action. Always affirmative when the points system is disabled.
type CanAffordUseCase struct {
	getAccount *GetAccountUseCase
	enabled    bool
}

// NewCanAffordUseCase creates a new CanAffordUseCase instance.
func NewCanAffordUseCase(getAccount *GetAccountUseCase, enabled bool) *CanAffordUseCase {
	return &CanAffordUseCase{
		getAccount: getAccount,
		enabled:    enabled,
	}
}

// Execute reports whether the total balance covers the cost of kind.
func (uc *CanAffordUseCase) Execute(ctx context.Context, userID uuid.UUID, kind entity.ActionKind) (bool, error) {
	cost, err := CostFor(kind)
	if err != nil {
		return false, err
	}

	if !uc.enabled {
		return true, nil
	}

	account, err := uc.getAccount.Execute(ctx, userID)
	if err != nil {
		return false, err
	}

	return account.TotalBalance() >= cost, nil
}
