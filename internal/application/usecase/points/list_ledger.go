package points

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/smart-accounting/backend/internal/application/adapter"
	"github.com/smart-accounting/backend/internal/domain/entity"
)

const (
	defaultLedgerLimit = 50
	maxLedgerLimit     = 200
)

// ListLedgerEntriesInput represents the input for listing ledger history.
type ListLedgerEntriesInput struct {
	UserID uuid.UUID
	Limit  int
	Offset int
}

// ListLedgerEntriesUseCase pages through a user's audit trail, newest first.
type ListLedgerEntriesUseCase struct {
	accountRepo adapter.PointsAccountRepository
}

// NewListLedgerEntriesUseCase creates a new ListLedgerEntriesUseCase instance.
func NewListLedgerEntriesUseCase(accountRepo adapter.PointsAccountRepository) *ListLedgerEntriesUseCase {
	return &ListLedgerEntriesUseCase{accountRepo: accountRepo}
}

// Execute returns one page of ledger entries.
func (uc *ListLedgerEntriesUseCase) Execute(ctx context.Context, input ListLedgerEntriesInput) ([]*entity.LedgerEntry, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultLedgerLimit
	}
	if limit > maxLedgerLimit {
		limit = maxLedgerLimit
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	entries, err := uc.accountRepo.ListEntries(ctx, input.UserID, adapter.LedgerPagination{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	return entries, nil
}
