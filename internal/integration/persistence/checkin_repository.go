package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smart-accounting/backend/internal/application/adapter"
	"github.com/smart-accounting/backend/internal/domain/entity"
	domainerror "github.com/smart-accounting/backend/internal/domain/error"
	"github.com/smart-accounting/backend/internal/integration/persistence/model"
)

// checkinRepository implements the adapter.CheckinRepository interface.
type checkinRepository struct {
	db *gorm.DB
}

// NewCheckinRepository creates a new checkin repository instance.
func NewCheckinRepository(db *gorm.DB) adapter.CheckinRepository {
	return &checkinRepository{
		db: db,
	}
}

// errStaleGiftBalance aborts the checkin transaction when the gift
// balance moved between the caller's read and the guarded credit.
var errStaleGiftBalance = errors.New("gift balance changed since it was observed")

// Create inserts the checkin row, credits the award to the gift pool and
// writes the ledger audit row in one atomic unit. The unique index on
// (user_id, checkin_date) rejects a same-day double checkin; the credit
// is guarded by the observed gift balance so a stale clamp rolls the
// whole transaction back instead of overshooting the cap.
func (r *checkinRepository) Create(ctx context.Context, checkin *entity.Checkin, observedGift int) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model.CheckinFromEntity(checkin)).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerror.ErrAlreadyCheckedIn
			}
			return err
		}

		if checkin.PointsAwarded > 0 {
			newGiftBalance := observedGift + checkin.PointsAwarded
			result := tx.Model(&model.PointsAccountModel{}).
				Where("user_id = ? AND gift_balance = ?", checkin.UserID, observedGift).
				Updates(map[string]interface{}{
					"gift_balance": newGiftBalance,
					"updated_at":   time.Now().UTC(),
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return errStaleGiftBalance
			}

			entry := entity.NewLedgerEntry(
				checkin.UserID,
				entity.ActionKindCheckin,
				entity.LedgerOperationAdd,
				checkin.PointsAwarded,
				entity.BalancePoolGift,
				newGiftBalance,
				"daily checkin reward",
			)
			if err := tx.Create(model.LedgerEntryFromEntity(entry)).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if errors.Is(err, errStaleGiftBalance) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// HasCheckedIn reports whether a checkin row exists for (user, day).
func (r *checkinRepository) HasCheckedIn(ctx context.Context, userID uuid.UUID, day time.Time) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&model.CheckinModel{}).
		Where("user_id = ? AND checkin_date = ?", userID, day).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// ListByRange returns a user's checkins with day in [start, end], oldest first.
func (r *checkinRepository) ListByRange(
	ctx context.Context,
	userID uuid.UUID,
	start, end time.Time,
) ([]*entity.Checkin, error) {
	var checkinModels []model.CheckinModel
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND checkin_date >= ? AND checkin_date <= ?", userID, start, end).
		Order("checkin_date ASC").
		Find(&checkinModels)
	if result.Error != nil {
		return nil, result.Error
	}

	checkins := make([]*entity.Checkin, len(checkinModels))
	for i, cm := range checkinModels {
		checkins[i] = cm.ToEntity()
	}
	return checkins, nil
}

// isUniqueViolation matches unique-constraint errors from both postgres
// and the sqlite driver used by the integration harness.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "duplicate key") || strings.Contains(message, "unique constraint")
}
