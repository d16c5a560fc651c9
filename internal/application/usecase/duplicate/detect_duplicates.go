package duplicate

import (
	"context"
	"log/slog"
	"time"

	"github.com/smart-accounting/backend/internal/application/adapter"
	"github.com/smart-accounting/backend/internal/application/usecase/datecheck"
	"github.com/smart-accounting/backend/internal/domain/entity"
	"github.com/smart-accounting/backend/internal/domain/valueobject"
)

// DetectDuplicatesUseCase checks candidates against committed rows in the
// surrounding date window. Detection is advisory and fail-open: a storage
// error yields a non-duplicate result instead of blocking the pipeline.
type DetectDuplicatesUseCase struct {
	transactionRepo adapter.TransactionRepository
	config          valueobject.DetectionConfig
}

// NewDetectDuplicatesUseCase creates a new DetectDuplicatesUseCase instance.
func NewDetectDuplicatesUseCase(
	transactionRepo adapter.TransactionRepository,
	config valueobject.DetectionConfig,
) *DetectDuplicatesUseCase {
	return &DetectDuplicatesUseCase{
		transactionRepo: transactionRepo,
		config:          config,
	}
}

// Execute checks one candidate (with its resolved date) against committed
// rows of the same type in the account, within the configured window around
// the candidate's date.
func (uc *DetectDuplicatesUseCase) Execute(
	ctx context.Context,
	candidate entity.CandidateTransaction,
	date time.Time,
) valueobject.DuplicateDetectionResult {
	start := date.AddDate(0, 0, -uc.config.WindowDays)
	end := date.AddDate(0, 0, uc.config.WindowDays)

	committed, err := uc.transactionRepo.FindForDuplicateWindow(
		ctx, candidate.AccountID, candidate.Type, start, end,
	)
	if err != nil {
		slog.Warn("Duplicate detection query failed, passing candidate through",
			"accountID", candidate.AccountID,
			"error", err,
		)
		return valueobject.DuplicateDetectionResult{
			MatchedTransactions: []valueobject.MatchedTransaction{},
			Reason:              "detection unavailable",
		}
	}

	if len(committed) == 0 {
		return valueobject.DuplicateDetectionResult{
			MatchedTransactions: []valueobject.MatchedTransaction{},
		}
	}

	matches := make([]valueobject.MatchedTransaction, 0, len(committed))
	for _, row := range committed {
		matches = append(matches, valueobject.MatchedTransaction{
			ID:           row.ID,
			Amount:       row.Amount,
			Description:  row.Description,
			Date:         row.Date,
			CategoryName: row.CategoryName,
			Similarity:   pairSimilarity(candidate, date, row, uc.config),
		})
	}

	matches = rankMatches(matches)

	confidence := 0.0
	if len(matches) > 0 {
		confidence = matches[0].Similarity
	}
	isDuplicate := confidence >= uc.config.SimilarityThreshold

	result := valueobject.DuplicateDetectionResult{
		IsDuplicate:         isDuplicate,
		Confidence:          confidence,
		MatchedTransactions: capMatches(matches, uc.config.MaxMatches),
	}
	if isDuplicate {
		result.Reason = describeMatch(candidate, matches[0])
	}

	return result
}

// ExecuteBatch runs detection over an ordered batch of checked records,
// tagging each result with the index of the candidate it belongs to. Only
// committed rows count as duplicates; siblings within the batch do not see
// each other.
func (uc *DetectDuplicatesUseCase) ExecuteBatch(
	ctx context.Context,
	records []datecheck.CheckedRecord,
) []valueobject.BatchDuplicateDetectionResult {
	results := make([]valueobject.BatchDuplicateDetectionResult, 0, len(records))

	for i, record := range records {
		result := uc.Execute(ctx, record.Candidate, record.Date)
		results = append(results, valueobject.BatchDuplicateDetectionResult{
			DuplicateDetectionResult: result,
			RecordIndex:              i,
		})
	}

	return results
}

// HasDuplicates reports whether any batch result crossed the threshold.
func HasDuplicates(results []valueobject.BatchDuplicateDetectionResult) bool {
	for _, result := range results {
		if result.IsDuplicate {
			return true
		}
	}
	return false
}

func capMatches(
	matches []valueobject.MatchedTransaction,
	limit int,
) []valueobject.MatchedTransaction {
	if len(matches) <= limit {
		return matches
	}
	return matches[:limit]
}
