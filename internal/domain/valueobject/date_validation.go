// Package valueobject contains domain value objects for the Smart Accounting backend.
package valueobject

import "time"

// DateValidationResult is the outcome of validating one candidate date.
// It is a pure function of (date, now, policy window); no stored state.
type DateValidationResult struct {
	IsValid       bool
	OriginalDate  string // raw input as extracted; empty when absent
	SuggestedDate time.Time
	Reason        string
}

// Reasons attached to date validation results. Absent and malformed dates
// both fall back to "now" but carry distinct reasons: downstream uses the
// difference to decide silent-fill vs. flagged-anomaly.
const (
	DateReasonAbsent       = "date absent, defaulted to today"
	DateReasonUnparseable  = "date format not recognized"
	DateReasonFuture       = "date is in the future"
	DateReasonOutsideRange = "date is outside the current month and the last 7 days"
)

// DateValidationAnnotation is attached to a processed record so the
// orchestrator can surface what happened to its date.
type DateValidationAnnotation struct {
	RequiresCorrection bool
	OriginalDate       string
	SuggestedDate      time.Time
	Reason             string
}

// SubmissionChannel distinguishes how a batch reaches the pipeline. The two
// policies are exhaustive and mutually exclusive.
type SubmissionChannel int

const (
	// ChannelInteractive is a path where a human can still reject or edit
	// before commit; invalid dates are surfaced, never rewritten.
	ChannelInteractive SubmissionChannel = iota
	// ChannelAutomated is a relay path with no human in the loop before
	// commit; invalid dates are rewritten to the suggestion.
	ChannelAutomated
)

// String returns the channel name for logging.
func (c SubmissionChannel) String() string {
	switch c {
	case ChannelAutomated:
		return "automated"
	default:
		return "interactive"
	}
}
