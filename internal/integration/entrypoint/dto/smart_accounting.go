package dto

import (
	"github.com/smart-accounting/backend/internal/application/usecase/datecheck"
	"github.com/smart-accounting/backend/internal/application/usecase/smartaccounting"
	"github.com/smart-accounting/backend/internal/domain/valueobject"
)

// SmartAccountingRequest represents the request body for a smart
// accounting submission. Either text or records must be present.
type SmartAccountingRequest struct {
	AccountID string `json:"account_id" binding:"required,uuid"`
	// Source is the paid action kind: text, voice or image.
	Source string `json:"source" binding:"required,oneof=text voice image"`
	// Channel selects the correction policy; defaults to interactive.
	Channel string                   `json:"channel,omitempty" binding:"omitempty,oneof=interactive automated"`
	Text    string                   `json:"text,omitempty"`
	Records []CandidateRecordRequest `json:"records,omitempty"`
}

// CandidateRecordRequest represents one pre-extracted candidate record.
type CandidateRecordRequest struct {
	Amount       string  `json:"amount" binding:"required"`
	Type         string  `json:"type" binding:"required,oneof=EXPENSE INCOME"`
	Date         string  `json:"date,omitempty"`
	Note         string  `json:"note,omitempty" binding:"omitempty,max=255"`
	CategoryID   *string `json:"category_id,omitempty"`
	CategoryName string  `json:"category_name,omitempty"`
	BudgetID     *string `json:"budget_id,omitempty"`
}

// DateValidationResponse annotates a record whose date was anomalous.
type DateValidationResponse struct {
	RequiresCorrection bool   `json:"requires_correction"`
	OriginalDate       string `json:"original_date"`
	SuggestedDate      string `json:"suggested_date"`
	Reason             string `json:"reason"`
}

// MatchedTransactionResponse represents one committed row that resembles
// a candidate.
type MatchedTransactionResponse struct {
	ID           string  `json:"id"`
	Amount       string  `json:"amount"`
	Description  string  `json:"description"`
	Date         string  `json:"date"`
	CategoryName string  `json:"category_name"`
	Similarity   float64 `json:"similarity"`
}

// DuplicateDetectionResponse annotates a record with its detection result.
type DuplicateDetectionResponse struct {
	IsDuplicate         bool                         `json:"is_duplicate"`
	Confidence          float64                      `json:"confidence"`
	MatchedTransactions []MatchedTransactionResponse `json:"matched_transactions"`
	Reason              string                       `json:"reason,omitempty"`
}

// CheckedRecordResponse represents one processed record with its
// optional annotations.
type CheckedRecordResponse struct {
	Amount             string                      `json:"amount"`
	Type               string                      `json:"type"`
	Date               string                      `json:"date"`
	Note               string                      `json:"note"`
	CategoryName       string                      `json:"category_name,omitempty"`
	DateValidation     *DateValidationResponse     `json:"date_validation,omitempty"`
	DuplicateDetection *DuplicateDetectionResponse `json:"duplicate_detection,omitempty"`
}

// SmartAccountingResponse represents the outcome of a submission: either
// committed records or a terminal prompt instruction.
type SmartAccountingResponse struct {
	RequiresDateCorrection bool                    `json:"requires_date_correction"`
	RequiresUserSelection  bool                    `json:"requires_user_selection"`
	Records                []CheckedRecordResponse `json:"records"`
	PersistedCount         int                     `json:"persisted_count"`
	PointsDeducted         int                     `json:"points_deducted"`
	GiftBalance            int                     `json:"gift_balance"`
	MemberBalance          int                     `json:"member_balance"`
}

// SmartAccountingResponseFromOutput converts the pipeline output to its
// response DTO.
func SmartAccountingResponseFromOutput(output *smartaccounting.ProcessSubmissionOutput) SmartAccountingResponse {
	records := make([]CheckedRecordResponse, 0, len(output.Records))
	for _, record := range output.Records {
		records = append(records, checkedRecordResponse(record))
	}

	return SmartAccountingResponse{
		RequiresDateCorrection: output.RequiresDateCorrection,
		RequiresUserSelection:  output.RequiresUserSelection,
		Records:                records,
		PersistedCount:         len(output.Persisted),
		PointsDeducted:         output.PointsDeducted,
		GiftBalance:            output.GiftBalance,
		MemberBalance:          output.MemberBalance,
	}
}

func checkedRecordResponse(record datecheck.CheckedRecord) CheckedRecordResponse {
	response := CheckedRecordResponse{
		Amount:       record.Candidate.Amount.String(),
		Type:         string(record.Candidate.Type),
		Date:         record.Date.Format("2006-01-02"),
		Note:         record.Candidate.Note,
		CategoryName: record.Candidate.CategoryName,
	}

	if record.Validation != nil {
		response.DateValidation = &DateValidationResponse{
			RequiresCorrection: record.Validation.RequiresCorrection,
			OriginalDate:       record.Validation.OriginalDate,
			SuggestedDate:      record.Validation.SuggestedDate.Format("2006-01-02"),
			Reason:             record.Validation.Reason,
		}
	}

	if record.Duplicate != nil {
		response.DuplicateDetection = duplicateDetectionResponse(record.Duplicate)
	}

	return response
}

func duplicateDetectionResponse(result *valueobject.DuplicateDetectionResult) *DuplicateDetectionResponse {
	matches := make([]MatchedTransactionResponse, 0, len(result.MatchedTransactions))
	for _, match := range result.MatchedTransactions {
		matches = append(matches, MatchedTransactionResponse{
			ID:           match.ID.String(),
			Amount:       match.Amount.String(),
			Description:  match.Description,
			Date:         match.Date.Format("2006-01-02"),
			CategoryName: match.CategoryName,
			Similarity:   match.Similarity,
		})
	}

	return &DuplicateDetectionResponse{
		IsDuplicate:         result.IsDuplicate,
		Confidence:          result.Confidence,
		MatchedTransactions: matches,
		Reason:              result.Reason,
	}
}
