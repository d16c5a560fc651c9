// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/smart-accounting/backend/internal/domain/entity"
)

// PointsAccountModel represents the points_accounts table in the database.
type PointsAccountModel struct {
	UserID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	GiftBalance       int        `gorm:"not null;default:0;check:gift_balance >= 0"`
	MemberBalance     int        `gorm:"not null;default:0;check:member_balance >= 0"`
	LastDailyGiftDate *time.Time `gorm:"type:date"`
	CreatedAt         time.Time  `gorm:"not null"`
	UpdatedAt         time.Time  `gorm:"not null"`
}

// TableName returns the table name for the PointsAccountModel.
func (PointsAccountModel) TableName() string {
	return "points_accounts"
}

// ToEntity converts a PointsAccountModel to a domain PointsAccount entity.
func (m *PointsAccountModel) ToEntity() *entity.PointsAccount {
	return &entity.PointsAccount{
		UserID:            m.UserID,
		GiftBalance:       m.GiftBalance,
		MemberBalance:     m.MemberBalance,
		LastDailyGiftDate: m.LastDailyGiftDate,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// PointsAccountFromEntity creates a PointsAccountModel from a domain entity.
func PointsAccountFromEntity(account *entity.PointsAccount) *PointsAccountModel {
	return &PointsAccountModel{
		UserID:            account.UserID,
		GiftBalance:       account.GiftBalance,
		MemberBalance:     account.MemberBalance,
		LastDailyGiftDate: account.LastDailyGiftDate,
		CreatedAt:         account.CreatedAt,
		UpdatedAt:         account.UpdatedAt,
	}
}

// LedgerEntryModel represents the points_ledger table in the database.
// Rows are append-only; there is no update or delete path.
type LedgerEntryModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind         string    `gorm:"type:varchar(32);not null"`
	Operation    string    `gorm:"type:varchar(10);not null"`
	Points       int       `gorm:"not null;check:points > 0"`
	BalancePool  string    `gorm:"type:varchar(10);not null"`
	BalanceAfter int       `gorm:"not null"`
	Description  string    `gorm:"type:varchar(255)"`
	CreatedAt    time.Time `gorm:"not null;index"`
}

// TableName returns the table name for the LedgerEntryModel.
func (LedgerEntryModel) TableName() string {
	return "points_ledger"
}

// ToEntity converts a LedgerEntryModel to a domain LedgerEntry entity.
func (m *LedgerEntryModel) ToEntity() *entity.LedgerEntry {
	return &entity.LedgerEntry{
		ID:           m.ID,
		UserID:       m.UserID,
		Kind:         entity.ActionKind(m.Kind),
		Operation:    entity.LedgerOperation(m.Operation),
		Points:       m.Points,
		BalancePool:  entity.BalancePool(m.BalancePool),
		BalanceAfter: m.BalanceAfter,
		Description:  m.Description,
		CreatedAt:    m.CreatedAt,
	}
}

// LedgerEntryFromEntity creates a LedgerEntryModel from a domain entity.
func LedgerEntryFromEntity(entry *entity.LedgerEntry) *LedgerEntryModel {
	return &LedgerEntryModel{
		ID:           entry.ID,
		UserID:       entry.UserID,
		Kind:         string(entry.Kind),
		Operation:    string(entry.Operation),
		Points:       entry.Points,
		BalancePool:  string(entry.BalancePool),
		BalanceAfter: entry.BalanceAfter,
		Description:  entry.Description,
		CreatedAt:    entry.CreatedAt,
	}
}

// CheckinModel represents the checkins table in the database.
// The (user_id, checkin_date) pair is unique: one checkin per user per day.
type CheckinModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_checkins_user_day"`
	CheckinDate   time.Time `gorm:"type:date;not null;uniqueIndex:idx_checkins_user_day"`
	PointsAwarded int       `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for the CheckinModel.
func (CheckinModel) TableName() string {
	return "checkins"
}

// ToEntity converts a CheckinModel to a domain Checkin entity.
func (m *CheckinModel) ToEntity() *entity.Checkin {
	return &entity.Checkin{
		ID:            m.ID,
		UserID:        m.UserID,
		CheckinDate:   m.CheckinDate,
		PointsAwarded: m.PointsAwarded,
		CreatedAt:     m.CreatedAt,
	}
}

// CheckinFromEntity creates a CheckinModel from a domain entity.
func CheckinFromEntity(checkin *entity.Checkin) *CheckinModel {
	return &CheckinModel{
		ID:            checkin.ID,
		UserID:        checkin.UserID,
		CheckinDate:   checkin.CheckinDate,
		PointsAwarded: checkin.PointsAwarded,
		CreatedAt:     checkin.CreatedAt,
	}
}
