package datecheck

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smart-accounting/backend/internal/domain/entity"
	"github.com/smart-accounting/backend/internal/domain/valueobject"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

// Mid-June keeps the month window and the 7-day window clearly apart.
var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newValidator(enabled bool) *ValidateDateUseCase {
	return NewValidateDateUseCase(&fixedClock{now: testNow}, enabled)
}

func TestValidateDate(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantValid  bool
		wantReason string
	}{
		{name: "today is valid", raw: "2025-06-15", wantValid: true},
		{name: "tomorrow is invalid", raw: "2025-06-16", wantValid: false, wantReason: valueobject.DateReasonFuture},
		{name: "forty days back outside month is invalid", raw: "2025-05-06", wantValid: false, wantReason: valueobject.DateReasonOutsideRange},
		{name: "three days back is valid", raw: "2025-06-12", wantValid: true},
		{name: "first of current month is valid", raw: "2025-06-01", wantValid: true},
		{name: "late previous month within 7 days is valid", raw: "2025-06-09", wantValid: true},
		{name: "absent date is valid default fill", raw: "", wantValid: true, wantReason: valueobject.DateReasonAbsent},
		{name: "malformed date is invalid", raw: "junk-date", wantValid: false, wantReason: valueobject.DateReasonUnparseable},
	}

	validator := newValidator(true)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.Execute(tt.raw, "text")
			if result.IsValid != tt.wantValid {
				t.Errorf("isValid=%v, want %v", result.IsValid, tt.wantValid)
			}
			if result.Reason != tt.wantReason {
				t.Errorf("reason=%q, want %q", result.Reason, tt.wantReason)
			}
			if result.OriginalDate != tt.raw {
				t.Errorf("originalDate=%q, want %q", result.OriginalDate, tt.raw)
			}
			if result.SuggestedDate.IsZero() {
				t.Errorf("suggestedDate must always be set")
			}
		})
	}
}

func TestValidateDateMonthBoundaryWindow(t *testing.T) {
	// Three days before "now" stays valid even across a month boundary.
	clock := &fixedClock{now: time.Date(2025, 7, 2, 9, 0, 0, 0, time.UTC)}
	validator := NewValidateDateUseCase(clock, true)

	result := validator.Execute("2025-06-29", "text")
	if !result.IsValid {
		t.Errorf("now-3d must be valid regardless of month boundary, got reason %q", result.Reason)
	}
}

func TestValidateDateFallbacksTargetNow(t *testing.T) {
	validator := newValidator(true)

	for _, raw := range []string{"", "not-a-date"} {
		result := validator.Execute(raw, "text")
		if !result.SuggestedDate.Equal(testNow) {
			t.Errorf("raw=%q: suggested %v, want now %v", raw, result.SuggestedDate, testNow)
		}
	}
}

func TestValidateDateDisabledPassesEverything(t *testing.T) {
	validator := newValidator(false)

	for _, raw := range []string{"2031-01-01", "junk-date", "1999-12-31"} {
		result := validator.Execute(raw, "text")
		if !result.IsValid {
			t.Errorf("disabled validator must pass %q", raw)
		}
	}
}

func candidate(date string) entity.CandidateTransaction {
	return entity.CandidateTransaction{
		Amount: decimal.NewFromInt(25),
		Type:   entity.TransactionTypeExpense,
		Date:   date,
		Note:   "lunch",
	}
}

func TestCorrectDatesAutomatedRewritesInvalid(t *testing.T) {
	uc := NewCorrectDatesUseCase(newValidator(true))

	records := []entity.CandidateTransaction{
		candidate("2025-06-14"),
		candidate("2025-06-20"), // future
	}

	checked, summary := uc.Execute(records, valueobject.ChannelAutomated, "text")
	if summary.Corrected != 1 || summary.Invalid != 1 || summary.Valid != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	fixed := checked[1]
	if !fixed.Date.Equal(testNow) {
		t.Errorf("automated channel must rewrite to the suggestion, got %v", fixed.Date)
	}
	if fixed.Validation == nil || fixed.Validation.RequiresCorrection {
		t.Errorf("automated fix must be annotated as FYI, got %+v", fixed.Validation)
	}
}

func TestCorrectDatesInteractiveFlagsInvalid(t *testing.T) {
	uc := NewCorrectDatesUseCase(newValidator(true))

	checked, summary := uc.Execute(
		[]entity.CandidateTransaction{candidate("2025-06-20")},
		valueobject.ChannelInteractive,
		"text",
	)
	if summary.RequiresCorrection != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	flagged := checked[0]
	if flagged.Validation == nil || !flagged.Validation.RequiresCorrection {
		t.Fatalf("interactive channel must flag instead of rewriting, got %+v", flagged.Validation)
	}
	if flagged.Candidate.Date != "2025-06-20" {
		t.Errorf("candidate's raw date must be preserved, got %q", flagged.Candidate.Date)
	}
	if !RequiresUserCorrection(checked) {
		t.Errorf("batch helper must report the flagged record")
	}
}

func TestCorrectDatesFillsAbsentSilently(t *testing.T) {
	uc := NewCorrectDatesUseCase(newValidator(true))

	checked, summary := uc.Execute(
		[]entity.CandidateTransaction{candidate("")},
		valueobject.ChannelInteractive,
		"voice",
	)
	if summary.Valid != 1 || summary.Invalid != 0 {
		t.Fatalf("absent date must count as valid, got %+v", summary)
	}
	if !checked[0].Date.Equal(testNow) {
		t.Errorf("absent date must default to now, got %v", checked[0].Date)
	}
	if checked[0].Validation != nil {
		t.Errorf("absent-date fill must be silent, got %+v", checked[0].Validation)
	}
	if HasAnomalies(checked) {
		t.Errorf("absent date is not an anomaly")
	}
}

func TestCorrectDatesOnlyMalformedRecordFlagged(t *testing.T) {
	uc := NewCorrectDatesUseCase(newValidator(true))

	records := []entity.CandidateTransaction{
		candidate("2025-06-14"),
		candidate("15/06/2025"), // unparseable layout
		candidate("2025-06-13"),
	}

	checked, summary := uc.Execute(records, valueobject.ChannelInteractive, "text")
	if summary.Total != 3 || summary.Invalid != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	if checked[0].Validation != nil || checked[2].Validation != nil {
		t.Errorf("well-formed records must be untouched")
	}
	if checked[1].Validation == nil || checked[1].Validation.Reason != valueobject.DateReasonUnparseable {
		t.Fatalf("malformed record must carry a format reason, got %+v", checked[1].Validation)
	}
}
