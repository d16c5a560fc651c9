// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/smart-accounting/backend/internal/domain/entity"
)

// LedgerPagination defines pagination options for ledger history.
type LedgerPagination struct {
	Limit  int
	Offset int
}

// PointsAccountRepository defines persistence for the prepaid points ledger.
// Every mutating method applies its balance update and its audit-row
// insert(s) as one atomic unit.
type PointsAccountRepository interface {
	// FindByUser retrieves a user's points account.
	// Returns domainerror.ErrPointsAccountNotFound when none exists.
	FindByUser(ctx context.Context, userID uuid.UUID) (*entity.PointsAccount, error)

	// CreateWithSeed creates the account together with its seed audit row.
	// A concurrent creation for the same user must not produce two accounts.
	CreateWithSeed(ctx context.Context, account *entity.PointsAccount, seed *entity.LedgerEntry) error

	// ApplyDebit writes the new balances guarded by the observed ones and
	// inserts the per-pool audit rows. Returns false without error when the
	// guard missed because a concurrent writer got there first.
	ApplyDebit(
		ctx context.Context,
		userID uuid.UUID,
		observedGift, observedMember int,
		newGift, newMember int,
		entries []*entity.LedgerEntry,
	) (bool, error)

	// Credit atomically increments the named pool and inserts one audit row.
	// Returns the pool's new balance.
	Credit(
		ctx context.Context,
		userID uuid.UUID,
		pool entity.BalancePool,
		kind entity.ActionKind,
		points int,
		description string,
	) (int, error)

	// ApplyDailyGift sets the granted-today marker and adds amount to the
	// gift pool, guarded by the observed gift balance and by the marker not
	// yet pointing at day. The marker is written even when amount is 0.
	// Returns false without error when the guard missed.
	ApplyDailyGift(
		ctx context.Context,
		userID uuid.UUID,
		day time.Time,
		observedGift int,
		amount int,
	) (bool, error)

	// ListEntries returns the audit trail for a user, newest first.
	ListEntries(ctx context.Context, userID uuid.UUID, pagination LedgerPagination) ([]*entity.LedgerEntry, error)

	// ListBelowGiftBalance returns the user IDs of all accounts whose gift
	// balance is below the given threshold. Used by the nightly gift sweep.
	ListBelowGiftBalance(ctx context.Context, threshold int) ([]uuid.UUID, error)
}

// CheckinRepository defines persistence for daily checkins.
type CheckinRepository interface {
	// Create inserts the checkin row, credits the award to the gift pool and
	// writes the ledger audit row in one atomic unit. The credit is guarded
	// by the observed gift balance so a clamp computed from a stale read is
	// never applied. Returns false without error when the guard missed.
	// Returns domainerror.ErrAlreadyCheckedIn when a row for (user, day)
	// already exists.
	Create(ctx context.Context, checkin *entity.Checkin, observedGift int) (applied bool, err error)

	// HasCheckedIn reports whether a checkin row exists for (user, day).
	HasCheckedIn(ctx context.Context, userID uuid.UUID, day time.Time) (bool, error)

	// ListByRange returns a user's checkins with day in [start, end], oldest first.
	ListByRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*entity.Checkin, error)
}
