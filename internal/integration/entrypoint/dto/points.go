package dto

import (
	"time"

	"github.com/smart-accounting/backend/internal/domain/entity"
)

// PointsAccountResponse represents a user's points account in API responses.
type PointsAccountResponse struct {
	UserID        string `json:"user_id"`
	GiftBalance   int    `json:"gift_balance"`
	MemberBalance int    `json:"member_balance"`
	TotalBalance  int    `json:"total_balance"`
}

// PointsAccountResponseFromEntity converts a PointsAccount entity to its response DTO.
func PointsAccountResponseFromEntity(account *entity.PointsAccount) PointsAccountResponse {
	return PointsAccountResponse{
		UserID:        account.UserID.String(),
		GiftBalance:   account.GiftBalance,
		MemberBalance: account.MemberBalance,
		TotalBalance:  account.TotalBalance(),
	}
}

// CheckinResponse represents the result of a daily checkin.
type CheckinResponse struct {
	PointsAwarded  int    `json:"points_awarded"`
	NewGiftBalance int    `json:"new_gift_balance"`
	CheckinDate    string `json:"checkin_date"`
}

// CheckinStatusResponse represents the checkin status for today.
type CheckinStatusResponse struct {
	HasCheckedInToday bool `json:"has_checked_in_today"`
	Streak            int  `json:"streak"`
}

// LedgerEntryResponse represents one points audit row in API responses.
type LedgerEntryResponse struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	Operation    string    `json:"operation"`
	Points       int       `json:"points"`
	BalancePool  string    `json:"balance_pool"`
	BalanceAfter int       `json:"balance_after"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

// LedgerEntryResponseFromEntity converts a LedgerEntry entity to its response DTO.
func LedgerEntryResponseFromEntity(entry *entity.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:           entry.ID.String(),
		Kind:         string(entry.Kind),
		Operation:    string(entry.Operation),
		Points:       entry.Points,
		BalancePool:  string(entry.BalancePool),
		BalanceAfter: entry.BalanceAfter,
		Description:  entry.Description,
		CreatedAt:    entry.CreatedAt,
	}
}

// LedgerListResponse represents a page of the points audit trail.
type LedgerListResponse struct {
	Entries []LedgerEntryResponse `json:"entries"`
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
}

// DailyGrantResponse represents the outcome of a daily first-visit grant.
type DailyGrantResponse struct {
	Granted bool `json:"granted"`
	Amount  int  `json:"amount"`
}
