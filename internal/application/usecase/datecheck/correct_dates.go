package datecheck

import (
	"log/slog"
	"time"

	"github.com/smart-accounting/backend/internal/domain/entity"
	"github.com/smart-accounting/backend/internal/domain/valueobject"
)

// CheckedRecord is a candidate paired with its resolved date and, when the
// original date was anomalous, a validation annotation. The candidate's raw
// date string is never rewritten; Date is the value the pipeline works with.
type CheckedRecord struct {
	Candidate entity.CandidateTransaction
	Date      time.Time
	// Validation is nil when the original date was valid or absent.
	Validation *valueobject.DateValidationAnnotation
	// Duplicate is filled later by the duplicate detector, when it runs.
	Duplicate *valueobject.DuplicateDetectionResult
}

// BatchSummary aggregates what a correction pass did to a batch.
type BatchSummary struct {
	Total              int
	Valid              int
	Invalid            int
	Corrected          int
	RequiresCorrection int
}

// CorrectDatesUseCase applies the channel-aware correction policy over a
// batch: automated channels get silent fixes, interactive channels get
// flagged records for user confirmation.
type CorrectDatesUseCase struct {
	validator *ValidateDateUseCase
}

// NewCorrectDatesUseCase creates a new CorrectDatesUseCase instance.
func NewCorrectDatesUseCase(validator *ValidateDateUseCase) *CorrectDatesUseCase {
	return &CorrectDatesUseCase{validator: validator}
}

// Execute validates every record and resolves its date per the channel
// policy. Emits exactly one summary log line per batch.
func (uc *CorrectDatesUseCase) Execute(
	records []entity.CandidateTransaction,
	channel valueobject.SubmissionChannel,
	source string,
) ([]CheckedRecord, BatchSummary) {
	checked := make([]CheckedRecord, 0, len(records))
	summary := BatchSummary{Total: len(records)}

	for _, record := range records {
		result := uc.validator.Execute(record.Date, source)

		if result.IsValid {
			// For a present valid date the suggestion is the date itself;
			// for an absent one it is "now" (default fill).
			summary.Valid++
			checked = append(checked, CheckedRecord{
				Candidate: record,
				Date:      result.SuggestedDate,
			})
			continue
		}

		summary.Invalid++
		annotation := &valueobject.DateValidationAnnotation{
			OriginalDate:  result.OriginalDate,
			SuggestedDate: result.SuggestedDate,
			Reason:        result.Reason,
		}

		switch channel {
		case valueobject.ChannelAutomated:
			// No human before commit: rewrite silently, annotate as FYI.
			annotation.RequiresCorrection = false
			summary.Corrected++
		default:
			// A human can still review: surface instead of rewriting.
			annotation.RequiresCorrection = true
			summary.RequiresCorrection++
		}

		checked = append(checked, CheckedRecord{
			Candidate:  record,
			Date:       result.SuggestedDate,
			Validation: annotation,
		})
	}

	slog.Info("Date correction batch processed",
		"channel", channel.String(),
		"source", source,
		"total", summary.Total,
		"valid", summary.Valid,
		"invalid", summary.Invalid,
		"corrected", summary.Corrected,
		"requiresCorrection", summary.RequiresCorrection,
	)

	return checked, summary
}

// HasAnomalies reports whether any record in the batch carries a date
// validation annotation.
func HasAnomalies(records []CheckedRecord) bool {
	for _, record := range records {
		if record.Validation != nil {
			return true
		}
	}
	return false
}

// RequiresUserCorrection reports whether any record must be confirmed by
// the user before the batch may be committed.
func RequiresUserCorrection(records []CheckedRecord) bool {
	for _, record := range records {
		if record.Validation != nil && record.Validation.RequiresCorrection {
			return true
		}
	}
	return false
}
