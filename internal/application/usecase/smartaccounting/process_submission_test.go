package smartaccounting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smart-accounting/backend/internal/application/adapter"
	"github.com/smart-accounting/backend/internal/application/usecase/datecheck"
	"github.com/smart-accounting/backend/internal/application/usecase/duplicate"
	"github.com/smart-accounting/backend/internal/application/usecase/points"
	"github.com/smart-accounting/backend/internal/domain/entity"
	domainerror "github.com/smart-accounting/backend/internal/domain/error"
	"github.com/smart-accounting/backend/internal/domain/valueobject"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// fakeAccountStore is an in-memory PointsAccountRepository honoring the
// compare-and-set guards.
type fakeAccountStore struct {
	accounts map[uuid.UUID]*entity.PointsAccount
	entries  []*entity.LedgerEntry
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: make(map[uuid.UUID]*entity.PointsAccount)}
}

func (s *fakeAccountStore) FindByUser(ctx context.Context, userID uuid.UUID) (*entity.PointsAccount, error) {
	account, ok := s.accounts[userID]
	if !ok {
		return nil, domainerror.ErrPointsAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func (s *fakeAccountStore) CreateWithSeed(ctx context.Context, account *entity.PointsAccount, seed *entity.LedgerEntry) error {
	if _, ok := s.accounts[account.UserID]; ok {
		return errors.New("account exists")
	}
	copied := *account
	s.accounts[account.UserID] = &copied
	s.entries = append(s.entries, seed)
	return nil
}

func (s *fakeAccountStore) ApplyDebit(
	ctx context.Context,
	userID uuid.UUID,
	observedGift, observedMember int,
	newGift, newMember int,
	entries []*entity.LedgerEntry,
) (bool, error) {
	account, ok := s.accounts[userID]
	if !ok {
		return false, domainerror.ErrPointsAccountNotFound
	}
	if account.GiftBalance != observedGift || account.MemberBalance != observedMember {
		return false, nil
	}
	account.GiftBalance = newGift
	account.MemberBalance = newMember
	s.entries = append(s.entries, entries...)
	return true, nil
}

func (s *fakeAccountStore) Credit(
	ctx context.Context,
	userID uuid.UUID,
	pool entity.BalancePool,
	kind entity.ActionKind,
	pts int,
	description string,
) (int, error) {
	account, ok := s.accounts[userID]
	if !ok {
		return 0, domainerror.ErrPointsAccountNotFound
	}
	var newBalance int
	if pool == entity.BalancePoolGift {
		account.GiftBalance += pts
		newBalance = account.GiftBalance
	} else {
		account.MemberBalance += pts
		newBalance = account.MemberBalance
	}
	s.entries = append(s.entries, entity.NewLedgerEntry(
		userID, kind, entity.LedgerOperationAdd, pts, pool, newBalance, description,
	))
	return newBalance, nil
}

func (s *fakeAccountStore) ApplyDailyGift(
	ctx context.Context,
	userID uuid.UUID,
	day time.Time,
	observedGift int,
	amount int,
) (bool, error) {
	account, ok := s.accounts[userID]
	if !ok {
		return false, domainerror.ErrPointsAccountNotFound
	}
	if account.GiftBalance != observedGift {
		return false, nil
	}
	account.GiftBalance += amount
	marker := day
	account.LastDailyGiftDate = &marker
	return true, nil
}

func (s *fakeAccountStore) ListEntries(
	ctx context.Context,
	userID uuid.UUID,
	pagination adapter.LedgerPagination,
) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	for _, entry := range s.entries {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (s *fakeAccountStore) ListBelowGiftBalance(ctx context.Context, threshold int) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for id, account := range s.accounts {
		if account.GiftBalance < threshold {
			out = append(out, id)
		}
	}
	return out, nil
}

type fakeTransactionStore struct {
	rows      []*entity.Transaction
	failWrite bool
}

func (s *fakeTransactionStore) Create(ctx context.Context, transaction *entity.Transaction) error {
	if s.failWrite {
		return errors.New("disk full")
	}
	s.rows = append(s.rows, transaction)
	return nil
}

func (s *fakeTransactionStore) CreateBatch(ctx context.Context, transactions []*entity.Transaction) error {
	if s.failWrite {
		return errors.New("disk full")
	}
	s.rows = append(s.rows, transactions...)
	return nil
}

func (s *fakeTransactionStore) FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	for _, row := range s.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, domainerror.ErrTransactionNotFound
}

func (s *fakeTransactionStore) FindForDuplicateWindow(
	ctx context.Context,
	accountID uuid.UUID,
	transactionType entity.TransactionType,
	start, end time.Time,
) ([]*entity.Transaction, error) {
	var out []*entity.Transaction
	for _, row := range s.rows {
		if row.AccountID != accountID || row.Type != transactionType {
			continue
		}
		if row.Date.Before(start) || row.Date.After(end) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

type fakeExtraction struct {
	available  bool
	candidates []*entity.CandidateTransaction
	err        error
}

func (s *fakeExtraction) IsAvailable() bool { return s.available }

func (s *fakeExtraction) Extract(ctx context.Context, request *adapter.ExtractionRequest) ([]*entity.CandidateTransaction, error) {
	return s.candidates, s.err
}

type pipelineHarness struct {
	uc       *ProcessSubmissionUseCase
	accounts *fakeAccountStore
	rows     *fakeTransactionStore
	extract  *fakeExtraction
}

func newHarness(pointsEnabled bool) *pipelineHarness {
	clock := &fixedClock{now: testNow}
	accounts := newFakeAccountStore()
	rows := &fakeTransactionStore{}
	extract := &fakeExtraction{available: true}

	getAccount := points.NewGetAccountUseCase(accounts)
	uc := NewProcessSubmissionUseCase(
		points.NewCanAffordUseCase(getAccount, pointsEnabled),
		points.NewDeductPointsUseCase(accounts, getAccount, pointsEnabled),
		points.NewAddPointsUseCase(accounts, getAccount),
		datecheck.NewCorrectDatesUseCase(datecheck.NewValidateDateUseCase(clock, true)),
		duplicate.NewDetectDuplicatesUseCase(rows, valueobject.DefaultDetectionConfig()),
		extract,
		rows,
		clock,
	)

	return &pipelineHarness{uc: uc, accounts: accounts, rows: rows, extract: extract}
}

func textCandidate(amount int64, note, date string, accountID uuid.UUID) *entity.CandidateTransaction {
	return &entity.CandidateTransaction{
		Amount:    decimal.NewFromInt(amount),
		Type:      entity.TransactionTypeExpense,
		Date:      date,
		Note:      note,
		AccountID: accountID,
	}
}

func TestProcessSubmissionCommitsCleanBatch(t *testing.T) {
	h := newHarness(true)
	userID := uuid.New()
	accountID := uuid.New()

	output, err := h.uc.Execute(context.Background(), ProcessSubmissionInput{
		UserID:    userID,
		AccountID: accountID,
		Channel:   valueobject.ChannelInteractive,
		Kind:      entity.ActionKindText,
		Candidates: []*entity.CandidateTransaction{
			textCandidate(25, "lunch", "2025-06-14", accountID),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output.RequiresDateCorrection || output.RequiresUserSelection {
		t.Fatalf("clean batch must commit, got %+v", output)
	}
	if len(output.Persisted) != 1 || len(h.rows.rows) != 1 {
		t.Fatalf("expected one persisted row, got %d", len(h.rows.rows))
	}
	if output.PointsDeducted != 1 {
		t.Errorf("text submission must cost 1 point, deducted %d", output.PointsDeducted)
	}
	// Fresh account seeded with 10, minus the text cost.
	if output.GiftBalance != 9 {
		t.Errorf("giftBalance=%d, want 9", output.GiftBalance)
	}
}

func TestProcessSubmissionEmptyInput(t *testing.T) {
	h := newHarness(true)

	_, err := h.uc.Execute(context.Background(), ProcessSubmissionInput{
		UserID:  uuid.New(),
		Channel: valueobject.ChannelInteractive,
		Kind:    entity.ActionKindText,
	})
	if !errors.Is(err, domainerror.ErrEmptySubmission) {
		t.Fatalf("want ErrEmptySubmission, got %v", err)
	}
}

func TestProcessSubmissionInsufficientBalanceBlocksEarly(t *testing.T) {
	h := newHarness(true)
	userID := uuid.New()
	accountID := uuid.New()

	// Drain the seeded account to zero.
	account := entity.NewPointsAccount(userID, 0)
	h.accounts.accounts[userID] = account

	_, err := h.uc.Execute(context.Background(), ProcessSubmissionInput{
		UserID:    userID,
		AccountID: accountID,
		Channel:   valueobject.ChannelInteractive,
		Kind:      entity.ActionKindImage,
		Candidates: []*entity.CandidateTransaction{
			textCandidate(25, "lunch", "2025-06-14", accountID),
		},
	})
	if !errors.Is(err, domainerror.ErrInsufficientPoints) {
		t.Fatalf("want ErrInsufficientPoints, got %v", err)
	}
	if len(h.rows.rows) != 0 {
		t.Errorf("nothing may be persisted when the precheck fails")
	}
}

func TestProcessSubmissionDisabledPointsStillCommits(t *testing.T) {
	h := newHarness(false)
	userID := uuid.New()
	accountID := uuid.New()
	h.accounts.accounts[userID] = entity.NewPointsAccount(userID, 0)

	output, err := h.uc.Execute(context.Background(), ProcessSubmissionInput{
		UserID:    userID,
		AccountID: accountID,
		Channel:   valueobject.ChannelInteractive,
		Kind:      entity.ActionKindImage,
		Candidates: []*entity.CandidateTransaction{
			textCandidate(25, "lunch", "2025-06-14", accountID),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.PointsDeducted != 0 {
		t.Errorf("disabled points system must not charge, deducted %d", output.PointsDeducted)
	}
	if len(h.rows.rows) != 1 {
		t.Errorf("record must still be committed")
	}
}

func TestProcessSubmissionInteractiveDateStop(t *testing.T) {
	h := newHarness(true)
	userID := uuid.New()
	accountID := uuid.New()

	output, err := h.uc.Execute(context.Background(), ProcessSubmissionInput{
		UserID:    userID,
		AccountID: accountID,
		Channel:   valueobject.ChannelInteractive,
		Kind:      entity.ActionKindText,
		Candidates: []*entity.CandidateTransaction{
			textCandidate(25, "lunch", "2025-06-20", accountID), // future date
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !output.RequiresDateCorrection {
		t.Fatalf("flagged date on an interactive channel must stop the pipeline")
	}
	if len(h.rows.rows) != 0 {
		t.Errorf("nothing may be persisted before the user confirms")
	}
	if account, ok := h.accounts.accounts[userID]; ok && account.GiftBalance != 10 {
		t.Errorf("nothing may be charged before the user confirms, gift=%d", account.GiftBalance)
	}
}

func TestProcessSubmissionAutomatedDateFix(t *testing.T) {
	h := newHarness(true)
	userID := uuid.New()
	accountID := uuid.New()

	output, err := h.uc.Execute(context.Background(), ProcessSubmissionInput{
		UserID:    userID,
		AccountID: accountID,
		Channel:   valueobject.ChannelAutomated,
		Kind:      entity.ActionKindText,
		Candidates: []*entity.CandidateTransaction{
			textCandidate(25, "lunch", "2025-06-20", accountID), // future date
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output.RequiresDateCorrection {
		t.Fatalf("automated channel must fix silently")
	}
	if len(output.Persisted) != 1 {
		t.Fatalf("expected one persisted row")
	}
	if !output.Persisted[0].Date.Equal(testNow) {
		t.Errorf("future date must be rewritten to now, got %v", output.Persisted[0].Date)
	}
}

func TestProcessSubmissionAutomatedDuplicateStop(t *testing.T) {
	h := newHarness(true)
	userID := uuid.New()
	accountID := uuid.New()

	// A committed row that one of the batch candidates duplicates.
	existing := entity.NewTransaction(
		userID, accountID,
		time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
		"lunch", decimal.NewFromInt(25),
		entity.TransactionTypeExpense, nil, nil,
	)
	h.rows.rows = append(h.rows.rows, existing)

	output, err := h.uc.Execute(context.Background(), ProcessSubmissionInput{
		UserID:    userID,
		AccountID: accountID,
		Channel:   valueobject.ChannelAutomated,
		Kind:      entity.ActionKindText,
		Candidates: []*entity.CandidateTransaction{
			textCandidate(25, "lunch", "2025-06-14", accountID),
			textCandidate(9, "coffee", "2025-06-14", accountID),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !output.RequiresUserSelection {
		t.Fatalf("suspected duplicate must stop the automated pipeline")
	}
	if len(output.Duplicates) != 2 {
		t.Fatalf("every record must carry a detection result, got %d", len(output.Duplicates))
	}
	if !output.Duplicates[0].IsDuplicate || output.Duplicates[1].IsDuplicate {
		t.Errorf("only the matching record may be flagged")
	}
	if len(h.rows.rows) != 1 {
		t.Errorf("nothing new may be persisted before the user selects")
	}
}

func TestProcessSubmissionSingleRecordSkipsDetection(t *testing.T) {
	h := newHarness(true)
	userID := uuid.New()
	accountID := uuid.New()

	existing := entity.NewTransaction(
		userID, accountID,
		time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
		"lunch", decimal.NewFromInt(25),
		entity.TransactionTypeExpense, nil, nil,
	)
	h.rows.rows = append(h.rows.rows, existing)

	output, err := h.uc.Execute(context.Background(), ProcessSubmissionInput{
		UserID:    userID,
		AccountID: accountID,
		Channel:   valueobject.ChannelAutomated,
		Kind:      entity.ActionKindText,
		Candidates: []*entity.CandidateTransaction{
			textCandidate(25, "lunch", "2025-06-14", accountID),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output.RequiresUserSelection {
		t.Errorf("single-record submissions bypass duplicate detection")
	}
	if len(h.rows.rows) != 2 {
		t.Errorf("record must be committed, rows=%d", len(h.rows.rows))
	}
}

func TestProcessSubmissionRefundsOnPersistFailure(t *testing.T) {
	h := newHarness(true)
	userID := uuid.New()
	accountID := uuid.New()
	h.rows.failWrite = true

	_, err := h.uc.Execute(context.Background(), ProcessSubmissionInput{
		UserID:    userID,
		AccountID: accountID,
		Channel:   valueobject.ChannelInteractive,
		Kind:      entity.ActionKindVoice,
		Candidates: []*entity.CandidateTransaction{
			textCandidate(25, "lunch", "2025-06-14", accountID),
		},
	})
	var pipelineErr *domainerror.SmartAccountingError
	if !errors.As(err, &pipelineErr) || pipelineErr.Code != domainerror.ErrCodeStorageFailure {
		t.Fatalf("want storage failure, got %v", err)
	}

	account := h.accounts.accounts[userID]
	if account.GiftBalance+account.MemberBalance != 10 {
		t.Errorf("debit must be compensated, gift=%d member=%d",
			account.GiftBalance, account.MemberBalance)
	}

	refunds := 0
	for _, entry := range h.accounts.entries {
		if entry.Kind == entity.ActionKindRefund {
			refunds++
		}
	}
	if refunds != 1 {
		t.Errorf("expected one refund audit row, got %d", refunds)
	}
}

func TestProcessSubmissionExtractsFromText(t *testing.T) {
	h := newHarness(true)
	userID := uuid.New()
	accountID := uuid.New()
	h.extract.candidates = []*entity.CandidateTransaction{
		textCandidate(25, "lunch", "2025-06-14", uuid.Nil),
	}

	output, err := h.uc.Execute(context.Background(), ProcessSubmissionInput{
		UserID:    userID,
		AccountID: accountID,
		Channel:   valueobject.ChannelInteractive,
		Kind:      entity.ActionKindText,
		Text:      "spent 25 on lunch yesterday",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(output.Persisted) != 1 {
		t.Fatalf("extracted candidate must be committed")
	}
	if output.Persisted[0].AccountID != accountID {
		t.Errorf("candidate without an account must inherit the submission's")
	}
}

func TestProcessSubmissionExtractionFailure(t *testing.T) {
	h := newHarness(true)
	h.extract.err = errors.New("model timeout")

	_, err := h.uc.Execute(context.Background(), ProcessSubmissionInput{
		UserID:    uuid.New(),
		AccountID: uuid.New(),
		Channel:   valueobject.ChannelInteractive,
		Kind:      entity.ActionKindText,
		Text:      "spent 25 on lunch",
	})
	if !errors.Is(err, domainerror.ErrExtractionFailed) {
		t.Fatalf("want ErrExtractionFailed, got %v", err)
	}
}

func TestProcessSubmissionNoCandidatesIsNotAnError(t *testing.T) {
	h := newHarness(true)
	h.extract.candidates = nil

	output, err := h.uc.Execute(context.Background(), ProcessSubmissionInput{
		UserID:    uuid.New(),
		AccountID: uuid.New(),
		Channel:   valueobject.ChannelInteractive,
		Kind:      entity.ActionKindText,
		Text:      "hello there",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Records) != 0 || output.PointsDeducted != 0 {
		t.Errorf("empty extraction must be a free no-op, got %+v", output)
	}
}

func TestProcessSubmissionRejectsUnknownType(t *testing.T) {
	h := newHarness(true)
	accountID := uuid.New()
	bad := textCandidate(25, "lunch", "2025-06-14", accountID)
	bad.Type = "TRANSFER"

	_, err := h.uc.Execute(context.Background(), ProcessSubmissionInput{
		UserID:     uuid.New(),
		AccountID:  accountID,
		Channel:    valueobject.ChannelInteractive,
		Kind:       entity.ActionKindText,
		Candidates: []*entity.CandidateTransaction{bad},
	})
	if !errors.Is(err, domainerror.ErrInvalidTransactionType) {
		t.Fatalf("want ErrInvalidTransactionType, got %v", err)
	}
}
