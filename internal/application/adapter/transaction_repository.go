// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/smart-accounting/backend/internal/domain/entity"
)

// TransactionRepository defines the persistence surface the pipeline needs:
// committing validated records and reading committed rows for the
// duplicate-detection window. Everything else about transaction storage
// belongs to the orchestrating application.
type TransactionRepository interface {
	// Create commits a single transaction.
	Create(ctx context.Context, transaction *entity.Transaction) error

	// CreateBatch commits several transactions in one database transaction.
	CreateBatch(ctx context.Context, transactions []*entity.Transaction) error

	// FindByID retrieves a committed transaction by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)

	// FindForDuplicateWindow returns committed rows of the given type in the
	// account whose date lies in [start, end], newest first. Only committed
	// rows are visible here; sibling candidates of an in-flight batch never
	// appear.
	FindForDuplicateWindow(
		ctx context.Context,
		accountID uuid.UUID,
		transactionType entity.TransactionType,
		start, end time.Time,
	) ([]*entity.Transaction, error)
}
