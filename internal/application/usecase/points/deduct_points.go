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

// debitRetries bounds the compare-and-set loop against concurrent writers.
const debitRetries = 3

// poolRef pairs a pool with its observed balance. The slice order is the
// deduction priority: earlier pools are drained first.
type poolRef struct {
	pool    entity.BalancePool
	balance int
}

// DeductPointsInput represents the input for a points deduction.
type DeductPointsInput struct {
	UserID uuid.UUID
	Kind   entity.ActionKind
}

// DeductPointsOutput represents the balances after a deduction.
type DeductPointsOutput struct {
	GiftBalance   int
	MemberBalance int
	TotalDeducted int
}

// DeductPointsUseCase debits a paid action from a user's account,
// draining the gift pool before the member pool.
type DeductPointsUseCase struct {
	accountRepo adapter.PointsAccountRepository
	getAccount  *GetAccountUseCase
	enabled     bool
}

// NewDeductPointsUseCase creates a new DeductPointsUseCase instance.
// When enabled is false the points system is off and deductions are no-ops.
func NewDeductPointsUseCase(
	accountRepo adapter.PointsAccountRepository,
	getAccount *GetAccountUseCase,
	enabled bool,
) *DeductPointsUseCase {
	return &DeductPointsUseCase{
		accountRepo: accountRepo,
		getAccount:  getAccount,
		enabled:     enabled,
	}
}

// Execute performs the deduction. The cost comes from the fixed schedule.
// Concurrent debits for the same user are serialized by a guarded
// compare-and-set update: each attempt re-reads the balances and only
// writes when nobody moved them in between.
func (uc *DeductPointsUseCase) Execute(ctx context.Context, input DeductPointsInput) (*DeductPointsOutput, error) {
	cost, err := CostFor(input.Kind)
	if err != nil {
		return nil, err
	}

	if !uc.enabled {
		account, err := uc.getAccount.Execute(ctx, input.UserID)
		if err != nil {
			return nil, err
		}
		return &DeductPointsOutput{
			GiftBalance:   account.GiftBalance,
			MemberBalance: account.MemberBalance,
			TotalDeducted: 0,
		}, nil
	}

	for attempt := 0; attempt < debitRetries; attempt++ {
		account, err := uc.getAccount.Execute(ctx, input.UserID)
		if err != nil {
			return nil, err
		}

		if account.TotalBalance() < cost {
			return nil, domainerror.NewPointsError(
				domainerror.ErrCodeInsufficientPoints,
				fmt.Sprintf("action needs %d points but only %d available", cost, account.TotalBalance()),
				domainerror.ErrInsufficientPoints,
			)
		}

		pools := []poolRef{
			{pool: entity.BalancePoolGift, balance: account.GiftBalance},
			{pool: entity.BalancePoolMember, balance: account.MemberBalance},
		}

		remaining := cost
		entries := make([]*entity.LedgerEntry, 0, len(pools))
		newBalances := make(map[entity.BalancePool]int, len(pools))
		for _, p := range pools {
			take := remaining
			if take > p.balance {
				take = p.balance
			}
			newBalances[p.pool] = p.balance - take
			remaining -= take
			if take == 0 {
				continue
			}
			entries = append(entries, entity.NewLedgerEntry(
				input.UserID,
				input.Kind,
				entity.LedgerOperationDeduct,
				take,
				p.pool,
				p.balance-take,
				fmt.Sprintf("%s action cost", input.Kind),
			))
		}

		applied, err := uc.accountRepo.ApplyDebit(
			ctx,
			input.UserID,
			account.GiftBalance, account.MemberBalance,
			newBalances[entity.BalancePoolGift], newBalances[entity.BalancePoolMember],
			entries,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to apply debit: %w", err)
		}
		if !applied {
			continue
		}

		slog.Info("Points deducted",
			"userID", input.UserID,
			"kind", input.Kind,
			"cost", cost,
			"giftBalance", newBalances[entity.BalancePoolGift],
			"memberBalance", newBalances[entity.BalancePoolMember],
			"auditRows", len(entries),
		)

		return &DeductPointsOutput{
			GiftBalance:   newBalances[entity.BalancePoolGift],
			MemberBalance: newBalances[entity.BalancePoolMember],
			TotalDeducted: cost,
		}, nil
	}

	return nil, domainerror.NewPointsError(
		domainerror.ErrCodePointsStorageFailure,
		"debit contended beyond retry budget",
		nil,
	)
}
