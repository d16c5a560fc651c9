// Package smartaccounting orchestrates the validation and metering
// pipeline: extraction, date correction, duplicate detection, points
// debit and persistence.
package smartaccounting

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/smart-accounting/backend/internal/application/adapter"
	"github.com/smart-accounting/backend/internal/application/usecase/datecheck"
	"github.com/smart-accounting/backend/internal/application/usecase/duplicate"
	"github.com/smart-accounting/backend/internal/application/usecase/points"
	"github.com/smart-accounting/backend/internal/domain/entity"
	domainerror "github.com/smart-accounting/backend/internal/domain/error"
	"github.com/smart-accounting/backend/internal/domain/valueobject"
)

// ProcessSubmissionInput represents one accounting submission. Either Text
// (free text to extract from) or Candidates (pre-extracted drafts) must be
// present.
type ProcessSubmissionInput struct {
	UserID     uuid.UUID
	AccountID  uuid.UUID
	Channel    valueobject.SubmissionChannel
	Kind       entity.ActionKind // text, voice or image; drives the cost
	Text       string
	Candidates []*entity.CandidateTransaction
}

// ProcessSubmissionOutput is either a committed result or a terminal
// instruction telling the caller to stop and prompt the user.
type ProcessSubmissionOutput struct {
	// RequiresDateCorrection is set when an interactive submission carries
	// dates the user must confirm before anything is committed.
	RequiresDateCorrection bool
	// RequiresUserSelection is set when suspected duplicates were found and
	// the user must choose what to keep before anything is committed.
	RequiresUserSelection bool

	Records    []datecheck.CheckedRecord
	Summary    datecheck.BatchSummary
	Duplicates []valueobject.BatchDuplicateDetectionResult

	// Persisted, PointsDeducted and the balances are only meaningful when
	// neither terminal flag is set.
	Persisted      []*entity.Transaction
	PointsDeducted int
	GiftBalance    int
	MemberBalance  int
}

// ProcessSubmissionUseCase wires the pipeline end to end. A debit is only
// taken once the batch is clear to commit; if persistence then fails, the
// debit is compensated with an explicit refund credit.
type ProcessSubmissionUseCase struct {
	canAfford       *points.CanAffordUseCase
	deductPoints    *points.DeductPointsUseCase
	addPoints       *points.AddPointsUseCase
	correctDates    *datecheck.CorrectDatesUseCase
	detectDupes     *duplicate.DetectDuplicatesUseCase
	extraction      adapter.ExtractionService
	transactionRepo adapter.TransactionRepository
	clock           adapter.Clock
}

// NewProcessSubmissionUseCase creates a new ProcessSubmissionUseCase instance.
func NewProcessSubmissionUseCase(
	canAfford *points.CanAffordUseCase,
	deductPoints *points.DeductPointsUseCase,
	addPoints *points.AddPointsUseCase,
	correctDates *datecheck.CorrectDatesUseCase,
	detectDupes *duplicate.DetectDuplicatesUseCase,
	extraction adapter.ExtractionService,
	transactionRepo adapter.TransactionRepository,
	clock adapter.Clock,
) *ProcessSubmissionUseCase {
	return &ProcessSubmissionUseCase{
		canAfford:       canAfford,
		deductPoints:    deductPoints,
		addPoints:       addPoints,
		correctDates:    correctDates,
		detectDupes:     detectDupes,
		extraction:      extraction,
		transactionRepo: transactionRepo,
		clock:           clock,
	}
}

// Execute runs a submission through the pipeline.
func (uc *ProcessSubmissionUseCase) Execute(
	ctx context.Context,
	input ProcessSubmissionInput,
) (*ProcessSubmissionOutput, error) {
	if input.Text == "" && len(input.Candidates) == 0 {
		return nil, domainerror.NewSmartAccountingError(
			domainerror.ErrCodeEmptySubmission,
			"submission carries neither text nor candidates",
			domainerror.ErrEmptySubmission,
		)
	}

	// Affordability precheck before any expensive work. The actual debit
	// happens later, guarded against concurrent spenders.
	affordable, err := uc.canAfford.Execute(ctx, input.UserID, input.Kind)
	if err != nil {
		return nil, err
	}
	if !affordable {
		cost, _ := points.CostFor(input.Kind)
		return nil, domainerror.NewPointsError(
			domainerror.ErrCodeInsufficientPoints,
			fmt.Sprintf("%s submission needs %d points", input.Kind, cost),
			domainerror.ErrInsufficientPoints,
		)
	}

	candidates, err := uc.resolveCandidates(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		slog.Info("Submission yielded no candidates",
			"userID", input.UserID,
			"kind", input.Kind,
		)
		return &ProcessSubmissionOutput{Records: []datecheck.CheckedRecord{}}, nil
	}

	for _, candidate := range candidates {
		if candidate.Type != entity.TransactionTypeExpense && candidate.Type != entity.TransactionTypeIncome {
			return nil, domainerror.NewSmartAccountingError(
				domainerror.ErrCodeInvalidTransactionType,
				fmt.Sprintf("extracted type %q is neither expense nor income", candidate.Type),
				domainerror.ErrInvalidTransactionType,
			)
		}
		if candidate.AccountID == uuid.Nil {
			candidate.AccountID = input.AccountID
		}
	}

	records, summary := uc.correctDates.Execute(
		dereference(candidates), input.Channel, string(input.Kind),
	)

	output := &ProcessSubmissionOutput{
		Records: records,
		Summary: summary,
	}

	// An interactive submission with flagged dates stops here: the user
	// confirms or edits before anything is charged or stored.
	if datecheck.RequiresUserCorrection(records) {
		output.RequiresDateCorrection = true
		return output, nil
	}

	// Duplicate detection guards automated multi-record batches, where no
	// human has reviewed the extraction before commit.
	if input.Channel == valueobject.ChannelAutomated && len(records) > 1 {
		output.Duplicates = uc.detectDupes.ExecuteBatch(ctx, records)
		for i := range records {
			records[i].Duplicate = &output.Duplicates[i].DuplicateDetectionResult
		}
		if duplicate.HasDuplicates(output.Duplicates) {
			output.RequiresUserSelection = true
			return output, nil
		}
	}

	debit, err := uc.deductPoints.Execute(ctx, points.DeductPointsInput{
		UserID: input.UserID,
		Kind:   input.Kind,
	})
	if err != nil {
		return nil, err
	}

	transactions := uc.buildTransactions(input, records)
	if err := uc.transactionRepo.CreateBatch(ctx, transactions); err != nil {
		uc.compensateDebit(ctx, input, debit.TotalDeducted)
		return nil, domainerror.NewSmartAccountingError(
			domainerror.ErrCodeStorageFailure,
			"failed to persist submission batch",
			err,
		)
	}

	slog.Info("Submission committed",
		"userID", input.UserID,
		"kind", input.Kind,
		"channel", input.Channel.String(),
		"records", len(transactions),
		"pointsDeducted", debit.TotalDeducted,
	)

	output.Persisted = transactions
	output.PointsDeducted = debit.TotalDeducted
	output.GiftBalance = debit.GiftBalance
	output.MemberBalance = debit.MemberBalance
	return output, nil
}

// resolveCandidates returns the pre-extracted drafts or calls the AI
// collaborator when only text was submitted.
func (uc *ProcessSubmissionUseCase) resolveCandidates(
	ctx context.Context,
	input ProcessSubmissionInput,
) ([]*entity.CandidateTransaction, error) {
	if len(input.Candidates) > 0 {
		return input.Candidates, nil
	}

	if !uc.extraction.IsAvailable() {
		return nil, domainerror.NewSmartAccountingError(
			domainerror.ErrCodeExtractionFailed,
			"extraction service is not configured",
			domainerror.ErrExtractionFailed,
		)
	}

	candidates, err := uc.extraction.Extract(ctx, &adapter.ExtractionRequest{
		UserID:    input.UserID,
		AccountID: input.AccountID,
		Text:      input.Text,
		Now:       uc.clock.Now(),
	})
	if err != nil {
		return nil, domainerror.NewSmartAccountingError(
			domainerror.ErrCodeExtractionFailed,
			"extraction collaborator failed",
			fmt.Errorf("%w: %w", domainerror.ErrExtractionFailed, err),
		)
	}
	return candidates, nil
}

func (uc *ProcessSubmissionUseCase) buildTransactions(
	input ProcessSubmissionInput,
	records []datecheck.CheckedRecord,
) []*entity.Transaction {
	transactions := make([]*entity.Transaction, 0, len(records))
	for _, record := range records {
		candidate := record.Candidate
		transaction := entity.NewTransaction(
			input.UserID,
			candidate.AccountID,
			record.Date,
			candidate.Note,
			candidate.Amount,
			candidate.Type,
			candidate.CategoryID,
			candidate.BudgetID,
		)
		transaction.CategoryName = candidate.CategoryName
		transactions = append(transactions, transaction)
	}
	return transactions
}

// compensateDebit refunds a charge whose submission could not be stored.
// The refund goes to the member pool, which is uncapped, so it can never
// collide with the gift cap.
func (uc *ProcessSubmissionUseCase) compensateDebit(
	ctx context.Context,
	input ProcessSubmissionInput,
	totalDeducted int,
) {
	if totalDeducted <= 0 {
		return
	}

	_, err := uc.addPoints.Execute(ctx, points.AddPointsInput{
		UserID:      input.UserID,
		Kind:        entity.ActionKindRefund,
		Points:      totalDeducted,
		Pool:        entity.BalancePoolMember,
		Description: fmt.Sprintf("refund for failed %s submission", input.Kind),
	})
	if err != nil {
		slog.Error("Compensating credit failed, balance is short",
			"userID", input.UserID,
			"points", totalDeducted,
			"error", err,
		)
	}
}

func dereference(candidates []*entity.CandidateTransaction) []entity.CandidateTransaction {
	out := make([]entity.CandidateTransaction, 0, len(candidates))
	for _, candidate := range candidates {
		out = append(out, *candidate)
	}
	return out
}
