// Package valueobject contains domain value objects for the Smart Accounting backend.
package valueobject

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DetectionConfig contains the tunable policy constants for duplicate
// detection. The threshold and weights are empirical; they are carried as
// configuration rather than hard invariants.
type DetectionConfig struct {
	// SimilarityThreshold is the minimum text similarity for a pair that
	// already passed the amount and same-day gates to count as a duplicate.
	SimilarityThreshold float64 // 0.5

	// DescriptionWeight and CategoryWeight combine the two sub-similarities.
	DescriptionWeight float64 // 0.8
	CategoryWeight    float64 // 0.2

	// WindowDays bounds the committed-row search around the candidate date.
	WindowDays int // 7

	// MaxMatches caps how many matched rows a result reports.
	MaxMatches int // 3
}

// DefaultDetectionConfig returns the stock detection policy.
func DefaultDetectionConfig() DetectionConfig {
	return DetectionConfig{
		SimilarityThreshold: 0.5,
		DescriptionWeight:   0.8,
		CategoryWeight:      0.2,
		WindowDays:          7,
		MaxMatches:          3,
	}
}

// MatchedTransaction is one committed row that resembles the candidate.
type MatchedTransaction struct {
	ID           uuid.UUID
	Amount       decimal.Decimal
	Description  string
	Date         time.Time
	CategoryName string
	Similarity   float64
}

// DuplicateDetectionResult is the outcome of checking one candidate
// against committed rows. Computed on demand, never cached.
type DuplicateDetectionResult struct {
	IsDuplicate         bool
	Confidence          float64 // highest pair similarity, in [0,1]
	MatchedTransactions []MatchedTransaction
	Reason              string
}

// BatchDuplicateDetectionResult tags a result with the index of the
// candidate it belongs to, preserving input order.
type BatchDuplicateDetectionResult struct {
	DuplicateDetectionResult
	RecordIndex int
}
