// Package datecheck contains date validation and correction use cases for
// AI-extracted candidate transactions.
package datecheck

import (
	"log/slog"
	"time"

	"github.com/smart-accounting/backend/internal/application/adapter"
	"github.com/smart-accounting/backend/internal/domain/valueobject"
)

// recentWindowDays is the trailing window that keeps a date valid even when
// it falls outside the current calendar month.
const recentWindowDays = 7

// dateLayouts are the accepted representations of an extracted date.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ValidateDateUseCase classifies a candidate date against the sliding
// policy window and proposes a replacement. Pure: same input and clock
// always yield the same result.
type ValidateDateUseCase struct {
	clock   adapter.Clock
	enabled bool
}

// NewValidateDateUseCase creates a new ValidateDateUseCase instance.
// When enabled is false every date is reported valid (pass-through).
func NewValidateDateUseCase(clock adapter.Clock, enabled bool) *ValidateDateUseCase {
	return &ValidateDateUseCase{
		clock:   clock,
		enabled: enabled,
	}
}

// Execute validates one raw date string. A date is valid iff it is not in
// the future and lies within the current calendar month or the trailing
// 7-day window. An absent date is valid with SuggestedDate=now (default
// fill); a malformed one is invalid with the same fallback — downstream
// relies on that distinction to decide silent-fill vs. flagged-anomaly.
func (uc *ValidateDateUseCase) Execute(raw string, source string) valueobject.DateValidationResult {
	now := uc.clock.Now()

	result := uc.classify(raw, now)

	slog.Debug("Date validated",
		"source", source,
		"originalDate", raw,
		"isValid", result.IsValid,
		"suggestedDate", result.SuggestedDate.Format("2006-01-02"),
		"reason", result.Reason,
	)

	return result
}

func (uc *ValidateDateUseCase) classify(raw string, now time.Time) valueobject.DateValidationResult {
	if raw == "" {
		return valueobject.DateValidationResult{
			IsValid:       true,
			OriginalDate:  raw,
			SuggestedDate: now,
			Reason:        valueobject.DateReasonAbsent,
		}
	}

	parsed, ok := parseDate(raw, now.Location())
	if !ok {
		return valueobject.DateValidationResult{
			IsValid:       uc.passThrough(),
			OriginalDate:  raw,
			SuggestedDate: now,
			Reason:        valueobject.DateReasonUnparseable,
		}
	}

	if !uc.enabled {
		return valueobject.DateValidationResult{
			IsValid:       true,
			OriginalDate:  raw,
			SuggestedDate: parsed,
		}
	}

	if parsed.After(now) {
		return valueobject.DateValidationResult{
			IsValid:       false,
			OriginalDate:  raw,
			SuggestedDate: now,
			Reason:        valueobject.DateReasonFuture,
		}
	}

	sameMonth := parsed.Year() == now.Year() && parsed.Month() == now.Month()
	withinRecentWindow := !parsed.Before(now.AddDate(0, 0, -recentWindowDays))
	if sameMonth || withinRecentWindow {
		return valueobject.DateValidationResult{
			IsValid:       true,
			OriginalDate:  raw,
			SuggestedDate: parsed,
		}
	}

	return valueobject.DateValidationResult{
		IsValid:       false,
		OriginalDate:  raw,
		SuggestedDate: now,
		Reason:        valueobject.DateReasonOutsideRange,
	}
}

// passThrough reports how an unparseable date is classified: invalid under
// normal operation, valid when validation is globally disabled.
func (uc *ValidateDateUseCase) passThrough() bool {
	return !uc.enabled
}

// parseDate tries the accepted layouts in the reference zone.
func parseDate(raw string, loc *time.Location) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
