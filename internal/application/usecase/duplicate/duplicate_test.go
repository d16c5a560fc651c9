package duplicate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smart-accounting/backend/config"
	"github.com/smart-accounting/backend/internal/application/usecase/datecheck"
	"github.com/smart-accounting/backend/internal/domain/entity"
	"github.com/smart-accounting/backend/internal/domain/valueobject"
)

type fakeTransactionRepo struct {
	rows []*entity.Transaction
	err  error
}

func (r *fakeTransactionRepo) Create(ctx context.Context, transaction *entity.Transaction) error {
	r.rows = append(r.rows, transaction)
	return nil
}

func (r *fakeTransactionRepo) CreateBatch(ctx context.Context, transactions []*entity.Transaction) error {
	r.rows = append(r.rows, transactions...)
	return nil
}

func (r *fakeTransactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	for _, row := range r.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *fakeTransactionRepo) FindForDuplicateWindow(
	ctx context.Context,
	accountID uuid.UUID,
	transactionType entity.TransactionType,
	start, end time.Time,
) ([]*entity.Transaction, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*entity.Transaction
	for _, row := range r.rows {
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

var (
	testAccountID = uuid.New()
	testDay       = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
)

func committedRow(amount int64, description, category string, date time.Time) *entity.Transaction {
	return &entity.Transaction{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		AccountID:    testAccountID,
		Date:         date,
		Description:  description,
		Amount:       decimal.NewFromInt(amount),
		Type:         entity.TransactionTypeExpense,
		CategoryName: category,
	}
}

func candidateOf(amount int64, note, category string) entity.CandidateTransaction {
	return entity.CandidateTransaction{
		Amount:       decimal.NewFromInt(amount),
		Type:         entity.TransactionTypeExpense,
		Note:         note,
		CategoryName: category,
		AccountID:    testAccountID,
	}
}

func newDetector(repo *fakeTransactionRepo) *DetectDuplicatesUseCase {
	return NewDetectDuplicatesUseCase(repo, valueobject.DefaultDetectionConfig())
}

func TestDetectExactDuplicate(t *testing.T) {
	repo := &fakeTransactionRepo{
		rows: []*entity.Transaction{committedRow(25, "lunch at cafe", "Dining", testDay)},
	}

	result := newDetector(repo).Execute(
		context.Background(), candidateOf(25, "lunch at cafe", "Dining"), testDay,
	)

	if !result.IsDuplicate {
		t.Fatalf("identical amount, date, description and category must be a duplicate")
	}
	if result.Confidence != 1.0 {
		t.Errorf("confidence=%v, want 1.0", result.Confidence)
	}
	if !strings.HasPrefix(result.Reason, "amount identical, same date") {
		t.Errorf("reason must lead with the hard gates, got %q", result.Reason)
	}
	if len(result.MatchedTransactions) != 1 {
		t.Errorf("expected one matched row, got %d", len(result.MatchedTransactions))
	}
}

func TestDetectDifferentAmountNeverMatches(t *testing.T) {
	repo := &fakeTransactionRepo{
		rows: []*entity.Transaction{committedRow(26, "lunch at cafe", "Dining", testDay)},
	}

	result := newDetector(repo).Execute(
		context.Background(), candidateOf(25, "lunch at cafe", "Dining"), testDay,
	)

	if result.IsDuplicate || result.Confidence != 0 {
		t.Errorf("amount gate must zero the score, got %+v", result)
	}
	if len(result.MatchedTransactions) != 0 {
		t.Errorf("zero-score rows must be filtered out")
	}
}

func TestDetectDifferentDayNeverMatches(t *testing.T) {
	repo := &fakeTransactionRepo{
		rows: []*entity.Transaction{committedRow(25, "lunch at cafe", "Dining", testDay.AddDate(0, 0, -1))},
	}

	result := newDetector(repo).Execute(
		context.Background(), candidateOf(25, "lunch at cafe", "Dining"), testDay,
	)

	if result.IsDuplicate || result.Confidence != 0 {
		t.Errorf("same-day gate must zero the score, got %+v", result)
	}
}

func TestDetectContainmentScoresBelowExactMatch(t *testing.T) {
	repo := &fakeTransactionRepo{
		rows: []*entity.Transaction{committedRow(25, "lunch", "Dining", testDay)},
	}

	result := newDetector(repo).Execute(
		context.Background(), candidateOf(25, "lunch at cafe", "Dining"), testDay,
	)

	// 0.8 (containment) * 0.8 + 1.0 (category) * 0.2
	want := 0.8*0.8 + 0.2
	if diff := result.Confidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("confidence=%v, want %v", result.Confidence, want)
	}
	if !result.IsDuplicate {
		t.Errorf("score above threshold must be flagged")
	}
	if !strings.Contains(result.Reason, "description highly similar") {
		t.Errorf("reason must mention containment, got %q", result.Reason)
	}
}

func TestDetectWindowExcludesOldRows(t *testing.T) {
	repo := &fakeTransactionRepo{
		rows: []*entity.Transaction{committedRow(25, "lunch at cafe", "Dining", testDay.AddDate(0, 0, -10))},
	}

	result := newDetector(repo).Execute(
		context.Background(), candidateOf(25, "lunch at cafe", "Dining"), testDay,
	)

	if result.IsDuplicate || len(result.MatchedTransactions) != 0 {
		t.Errorf("rows outside the window must not be fetched, got %+v", result)
	}
}

func TestDetectCapsMatchedRows(t *testing.T) {
	repo := &fakeTransactionRepo{}
	for i := 0; i < 5; i++ {
		repo.rows = append(repo.rows, committedRow(25, "lunch at cafe", "Dining", testDay))
	}

	result := newDetector(repo).Execute(
		context.Background(), candidateOf(25, "lunch at cafe", "Dining"), testDay,
	)

	if len(result.MatchedTransactions) != 3 {
		t.Errorf("matched rows must be capped at 3, got %d", len(result.MatchedTransactions))
	}
}

func TestDetectWithEnvConfigReportsMatchedRows(t *testing.T) {
	// Build the policy from env config field by field, the way the
	// dependency injector does. A flagged duplicate must carry the rows
	// it matched; a zero match cap would silently truncate them away.
	cfg := config.Load()
	detector := NewDetectDuplicatesUseCase(
		&fakeTransactionRepo{
			rows: []*entity.Transaction{committedRow(25, "lunch at cafe", "Dining", testDay)},
		},
		valueobject.DetectionConfig{
			SimilarityThreshold: cfg.Duplicate.SimilarityThreshold,
			DescriptionWeight:   cfg.Duplicate.DescriptionWeight,
			CategoryWeight:      cfg.Duplicate.CategoryWeight,
			WindowDays:          cfg.Duplicate.WindowDays,
			MaxMatches:          cfg.Duplicate.MaxMatches,
		},
	)

	result := detector.Execute(
		context.Background(), candidateOf(25, "lunch at cafe", "Dining"), testDay,
	)

	if !result.IsDuplicate {
		t.Fatalf("exact match must be flagged under the configured policy")
	}
	if len(result.MatchedTransactions) != 1 {
		t.Fatalf("flagged duplicate must report its matched rows, got %d", len(result.MatchedTransactions))
	}
	if want := valueobject.DefaultDetectionConfig().MaxMatches; cfg.Duplicate.MaxMatches != want {
		t.Errorf("configured match cap %d diverges from the stock policy %d", cfg.Duplicate.MaxMatches, want)
	}
}

func TestDetectFailsOpenOnRepoError(t *testing.T) {
	repo := &fakeTransactionRepo{err: errors.New("connection reset")}

	result := newDetector(repo).Execute(
		context.Background(), candidateOf(25, "lunch at cafe", "Dining"), testDay,
	)

	if result.IsDuplicate || result.Confidence != 0 {
		t.Errorf("detection errors must not block the pipeline, got %+v", result)
	}
}

func TestDetectBatchPreservesOrder(t *testing.T) {
	repo := &fakeTransactionRepo{
		rows: []*entity.Transaction{committedRow(25, "lunch at cafe", "Dining", testDay)},
	}

	records := []datecheck.CheckedRecord{
		{Candidate: candidateOf(9, "coffee", "Dining"), Date: testDay},
		{Candidate: candidateOf(25, "lunch at cafe", "Dining"), Date: testDay},
	}

	results := newDetector(repo).ExecuteBatch(context.Background(), records)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].RecordIndex != 0 || results[1].RecordIndex != 1 {
		t.Errorf("record indexes must follow input order")
	}
	if results[0].IsDuplicate {
		t.Errorf("non-matching candidate flagged")
	}
	if !results[1].IsDuplicate {
		t.Errorf("matching candidate missed")
	}
	if !HasDuplicates(results) {
		t.Errorf("batch helper must report the flagged record")
	}
}

func TestDetectBatchSiblingsInvisible(t *testing.T) {
	// Two identical candidates in one batch: neither is committed yet, so
	// neither may flag the other.
	repo := &fakeTransactionRepo{}

	records := []datecheck.CheckedRecord{
		{Candidate: candidateOf(25, "lunch at cafe", "Dining"), Date: testDay},
		{Candidate: candidateOf(25, "lunch at cafe", "Dining"), Date: testDay},
	}

	results := newDetector(repo).ExecuteBatch(context.Background(), records)
	if HasDuplicates(results) {
		t.Errorf("in-flight siblings must not see each other")
	}
}

func TestTextSimilarityEdgeCases(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "both empty", a: "", b: "", want: 1},
		{name: "one empty", a: "lunch", b: "", want: 0},
		{name: "exact after normalization", a: " Lunch ", b: "lunch", want: 1},
		{name: "containment", a: "lunch", b: "lunch at cafe", want: 0.8},
		{name: "disjoint char sets", a: "abc", b: "xyz", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := textSimilarity(tt.a, tt.b); got != tt.want {
				t.Errorf("textSimilarity(%q, %q)=%v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
