// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smart-accounting/backend/internal/application/adapter"
	"github.com/smart-accounting/backend/internal/domain/entity"
	domainerror "github.com/smart-accounting/backend/internal/domain/error"
	"github.com/smart-accounting/backend/internal/integration/persistence/model"
)

// pointsAccountRepository implements the adapter.PointsAccountRepository interface.
type pointsAccountRepository struct {
	db *gorm.DB
}

// NewPointsAccountRepository creates a new points account repository instance.
func NewPointsAccountRepository(db *gorm.DB) adapter.PointsAccountRepository {
	return &pointsAccountRepository{
		db: db,
	}
}

// FindByUser retrieves a user's points account.
func (r *pointsAccountRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*entity.PointsAccount, error) {
	var accountModel model.PointsAccountModel
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&accountModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrPointsAccountNotFound
		}
		return nil, result.Error
	}
	return accountModel.ToEntity(), nil
}

// CreateWithSeed creates the account together with its seed audit row.
// The primary key on user_id rejects a concurrent second creation.
func (r *pointsAccountRepository) CreateWithSeed(
	ctx context.Context,
	account *entity.PointsAccount,
	seed *entity.LedgerEntry,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model.PointsAccountFromEntity(account)).Error; err != nil {
			return err
		}
		return tx.Create(model.LedgerEntryFromEntity(seed)).Error
	})
}

// ApplyDebit writes the new balances guarded by the observed ones and
// inserts the per-pool audit rows. The WHERE clause is the serialization
// point: if a concurrent writer moved either balance, zero rows match and
// the caller retries with fresh state.
func (r *pointsAccountRepository) ApplyDebit(
	ctx context.Context,
	userID uuid.UUID,
	observedGift, observedMember int,
	newGift, newMember int,
	entries []*entity.LedgerEntry,
) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.PointsAccountModel{}).
			Where("user_id = ? AND gift_balance = ? AND member_balance = ?",
				userID, observedGift, observedMember).
			Updates(map[string]interface{}{
				"gift_balance":   newGift,
				"member_balance": newMember,
				"updated_at":     time.Now().UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		for _, entry := range entries {
			if err := tx.Create(model.LedgerEntryFromEntity(entry)).Error; err != nil {
				return err
			}
		}

		applied = true
		return nil
	})
	return applied, err
}

// Credit atomically increments the named pool and inserts one audit row.
func (r *pointsAccountRepository) Credit(
	ctx context.Context,
	userID uuid.UUID,
	pool entity.BalancePool,
	kind entity.ActionKind,
	points int,
	description string,
) (int, error) {
	column := "member_balance"
	if pool == entity.BalancePoolGift {
		column = "gift_balance"
	}

	newBalance := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.PointsAccountModel{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				column:       gorm.Expr(column+" + ?", points),
				"updated_at": time.Now().UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerror.ErrPointsAccountNotFound
		}

		var accountModel model.PointsAccountModel
		if err := tx.Where("user_id = ?", userID).First(&accountModel).Error; err != nil {
			return err
		}
		if pool == entity.BalancePoolGift {
			newBalance = accountModel.GiftBalance
		} else {
			newBalance = accountModel.MemberBalance
		}

		entry := entity.NewLedgerEntry(
			userID, kind, entity.LedgerOperationAdd, points, pool, newBalance, description,
		)
		return tx.Create(model.LedgerEntryFromEntity(entry)).Error
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// ApplyDailyGift sets the granted-today marker and adds amount to the gift
// pool. Guarded by the observed gift balance and by the marker not yet
// pointing at day, so two same-day grants cannot both land. The marker row
// is written even when amount is 0 (at-cap users).
func (r *pointsAccountRepository) ApplyDailyGift(
	ctx context.Context,
	userID uuid.UUID,
	day time.Time,
	observedGift int,
	amount int,
) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.PointsAccountModel{}).
			Where("user_id = ? AND gift_balance = ?", userID, observedGift).
			Where("last_daily_gift_date IS NULL OR last_daily_gift_date < ?", day).
			Updates(map[string]interface{}{
				"gift_balance":         observedGift + amount,
				"last_daily_gift_date": day,
				"updated_at":           time.Now().UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if amount > 0 {
			entry := entity.NewLedgerEntry(
				userID,
				entity.ActionKindDailyFirstVisit,
				entity.LedgerOperationAdd,
				amount,
				entity.BalancePoolGift,
				observedGift+amount,
				"daily gift points",
			)
			if err := tx.Create(model.LedgerEntryFromEntity(entry)).Error; err != nil {
				return err
			}
		}

		applied = true
		return nil
	})
	return applied, err
}

// ListEntries returns the audit trail for a user, newest first.
func (r *pointsAccountRepository) ListEntries(
	ctx context.Context,
	userID uuid.UUID,
	pagination adapter.LedgerPagination,
) ([]*entity.LedgerEntry, error) {
	var entryModels []model.LedgerEntryModel
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(pagination.Offset).
		Limit(pagination.Limit).
		Find(&entryModels)
	if result.Error != nil {
		return nil, result.Error
	}

	entries := make([]*entity.LedgerEntry, len(entryModels))
	for i, em := range entryModels {
		entries[i] = em.ToEntity()
	}
	return entries, nil
}

// ListBelowGiftBalance returns the user IDs of all accounts whose gift
// balance is below the given threshold.
func (r *pointsAccountRepository) ListBelowGiftBalance(ctx context.Context, threshold int) ([]uuid.UUID, error) {
	var userIDs []uuid.UUID
	result := r.db.WithContext(ctx).
		Model(&model.PointsAccountModel{}).
		Where("gift_balance < ?", threshold).
		Pluck("user_id", &userIDs)
	if result.Error != nil {
		return nil, result.Error
	}
	return userIDs, nil
}
