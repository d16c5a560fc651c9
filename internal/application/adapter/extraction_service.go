// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/smart-accounting/backend/internal/domain/entity"
)

// ExtractionRequest carries one free-text description to be turned into
// candidate transaction drafts.
type ExtractionRequest struct {
	UserID    uuid.UUID
	AccountID uuid.UUID
	Text      string
	// Now anchors relative wording ("yesterday", "last Friday") in the
	// extraction prompt.
	Now time.Time
}

// ExtractionService is the AI collaborator that turns free text into
// candidate transactions. The extraction algorithm itself is outside this
// service's contract.
type ExtractionService interface {
	// IsAvailable reports whether the service is configured.
	IsAvailable() bool

	// Extract returns zero or more candidate drafts for the given text.
	Extract(ctx context.Context, request *ExtractionRequest) ([]*entity.CandidateTransaction, error)
}
