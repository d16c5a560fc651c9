package mock

import (
	"context"
	"sync"

	"github.com/smart-accounting/backend/internal/application/adapter"
	"github.com/smart-accounting/backend/internal/domain/entity"
)

// Extraction is a scriptable stand-in for the AI extraction service.
// Scenarios queue the candidates it should return for the next request.
type Extraction struct {
	mu         sync.Mutex
	candidates []*entity.CandidateTransaction
	err        error
	available  bool
}

func NewExtraction() *Extraction {
	return &Extraction{available: true}
}

func (e *Extraction) SetCandidates(candidates []*entity.CandidateTransaction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.candidates = candidates
	e.err = nil
}

func (e *Extraction) SetError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = err
}

func (e *Extraction) SetAvailable(available bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.available = available
}

// Reset restores the default state between scenarios.
func (e *Extraction) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.candidates = nil
	e.err = nil
	e.available = true
}

func (e *Extraction) IsAvailable() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.available
}

func (e *Extraction) Extract(ctx context.Context, request *adapter.ExtractionRequest) ([]*entity.CandidateTransaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}

	// Inherit the account from the request like the real service does.
	out := make([]*entity.CandidateTransaction, 0, len(e.candidates))
	for _, candidate := range e.candidates {
		copied := *candidate
		copied.AccountID = request.AccountID
		out = append(out, &copied)
	}
	return out, nil
}
