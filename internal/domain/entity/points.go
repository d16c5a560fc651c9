// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// BalancePool identifies which of the two point pools an operation touches.
type BalancePool string

const (
	// BalancePoolGift is the capped, periodically replenished pool.
	BalancePoolGift BalancePool = "gift"
	// BalancePoolMember is the uncapped pool funded by paid membership.
	BalancePoolMember BalancePool = "member"
)

// LedgerOperation is the direction of a ledger entry.
type LedgerOperation string

const (
	LedgerOperationAdd    LedgerOperation = "add"
	LedgerOperationDeduct LedgerOperation = "deduct"
)

// ActionKind labels what a ledger entry paid for or was granted by.
type ActionKind string

const (
	ActionKindText            ActionKind = "text"
	ActionKindVoice           ActionKind = "voice"
	ActionKindImage           ActionKind = "image"
	ActionKindRegistration    ActionKind = "registration"
	ActionKindCheckin         ActionKind = "checkin"
	ActionKindDailyFirstVisit ActionKind = "daily_first_visit"
	ActionKindDailySweep      ActionKind = "daily"
	ActionKindRefund          ActionKind = "refund"
	ActionKindAdmin           ActionKind = "admin"
)

// PointsAccount is a user's dual-balance prepaid points account.
// Both balances are always >= 0; the spendable quota is their sum.
type PointsAccount struct {
	UserID            uuid.UUID
	GiftBalance       int
	MemberBalance     int
	LastDailyGiftDate *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TotalBalance returns the spendable quota across both pools.
func (a *PointsAccount) TotalBalance() int {
	return a.GiftBalance + a.MemberBalance
}

// NewPointsAccount creates a fresh account seeded with the given gift credits.
func NewPointsAccount(userID uuid.UUID, seedGift int) *PointsAccount {
	now := time.Now().UTC()

	return &PointsAccount{
		UserID:        userID,
		GiftBalance:   seedGift,
		MemberBalance: 0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// LedgerEntry is one append-only audit row of the points ledger.
// Entries are immutable and are the sole audit source of truth.
type LedgerEntry struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Kind         ActionKind
	Operation    LedgerOperation
	Points       int // always > 0; direction comes from Operation
	BalancePool  BalancePool
	BalanceAfter int
	Description  string
	CreatedAt    time.Time
}

// NewLedgerEntry creates a new audit row for a single-pool balance change.
func NewLedgerEntry(
	userID uuid.UUID,
	kind ActionKind,
	operation LedgerOperation,
	points int,
	pool BalancePool,
	balanceAfter int,
	description string,
) *LedgerEntry {
	return &LedgerEntry{
		ID:           uuid.New(),
		UserID:       userID,
		Kind:         kind,
		Operation:    operation,
		Points:       points,
		BalancePool:  pool,
		BalanceAfter: balanceAfter,
		Description:  description,
		CreatedAt:    time.Now().UTC(),
	}
}

// Checkin records one daily checkin. Unique per user and calendar day.
type Checkin struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	CheckinDate   time.Time // normalized to midnight of the reference day
	PointsAwarded int
	CreatedAt     time.Time
}

// NewCheckin creates a checkin row for the given reference day.
func NewCheckin(userID uuid.UUID, day time.Time, pointsAwarded int) *Checkin {
	return &Checkin{
		ID:            uuid.New(),
		UserID:        userID,
		CheckinDate:   day,
		PointsAwarded: pointsAwarded,
		CreatedAt:     time.Now().UTC(),
	}
}
