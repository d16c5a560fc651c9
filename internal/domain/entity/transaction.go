// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction (expense or income).
// Values follow the wire format produced by the extraction step.
type TransactionType string

const (
	TransactionTypeExpense TransactionType = "EXPENSE"
	TransactionTypeIncome  TransactionType = "INCOME"
)

// Transaction is a committed transaction row in an account book.
type Transaction struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	AccountID    uuid.UUID
	Date         time.Time
	Description  string
	Amount       decimal.Decimal
	Type         TransactionType
	CategoryID   *uuid.UUID
	CategoryName string
	BudgetID     *uuid.UUID
	Tags         []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewTransaction creates a new Transaction entity.
func NewTransaction(
	userID uuid.UUID,
	accountID uuid.UUID,
	date time.Time,
	description string,
	amount decimal.Decimal,
	transactionType TransactionType,
	categoryID *uuid.UUID,
	budgetID *uuid.UUID,
) *Transaction {
	now := time.Now().UTC()

	return &Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		AccountID:   accountID,
		Date:        date,
		Description: description,
		Amount:      amount,
		Type:        transactionType,
		CategoryID:  categoryID,
		BudgetID:    budgetID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CandidateTransaction is an AI-extracted, not-yet-persisted transaction
// draft. It must pass through date validation (and, on automated channels,
// duplicate detection) before it may be committed.
type CandidateTransaction struct {
	Amount       decimal.Decimal
	Type         TransactionType
	Date         string // ISO date from extraction; empty when absent
	Note         string
	CategoryID   *uuid.UUID
	CategoryName string
	AccountID    uuid.UUID
	BudgetID     *uuid.UUID
}
