// Package model defines domain types for fincast transactions and series.
package model

import (
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// ErrInvalidTransaction is returned by Validate for malformed transactions.
var ErrInvalidTransaction = errors.New("invalid transaction")

// DefaultCategory is assigned to transactions without a category.
const DefaultCategory = "Other"

// TxType distinguishes money coming in from money going out.
type TxType string

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

// ParseTxType accepts the common spellings found in exports.
func ParseTxType(s string) (TxType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "in", "credit", "deposit":
		return Income, nil
	case "expense", "out", "debit", "withdrawal":
		return Expense, nil
	}
	return "", fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, s)
}

// Periodicity describes how a planned transaction repeats.
type Periodicity string

const (
	PeriodNone    Periodicity = "none"
	PeriodOnce    Periodicity = "once"
	PeriodDaily   Periodicity = "daily"
	PeriodMonthly Periodicity = "monthly"
)

// ParsePeriodicity maps an empty string to PeriodNone.
func ParsePeriodicity(s string) (Periodicity, error) {
	switch p := Periodicity(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PeriodNone, nil
	case PeriodNone, PeriodOnce, PeriodDaily, PeriodMonthly:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown periodicity %q", ErrInvalidTransaction, s)
}

// Transaction is a single dated cash movement, actual or planned.
type Transaction struct {
	ID          string
	Description string
	Date        civil.Date
	Amount      decimal.Decimal // always positive; Type carries the sign
	Type        TxType
	IsPlanned   bool
	Category    string
	Periodicity Periodicity
	FilePath    string // source file, used by the cache
}

// Signed returns the amount with the sign implied by the transaction type.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// CategoryOrDefault returns the category, or DefaultCategory when unset.
func (t Transaction) CategoryOrDefault() string {
	if strings.TrimSpace(t.Category) == "" {
		return DefaultCategory
	}
	return t.Category
}

// Validate reports the first problem that makes t unusable by the pipeline.
func (t Transaction) Validate() error {
	if !t.Date.IsValid() {
		return fmt.Errorf("%w: bad date %v", ErrInvalidTransaction, t.Date)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidTransaction, t.Amount)
	}
	if t.Type != Income && t.Type != Expense {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, t.Type)
	}
	switch t.Periodicity {
	case "", PeriodNone, PeriodOnce, PeriodDaily, PeriodMonthly:
	default:
		return fmt.Errorf("%w: unknown periodicity %q", ErrInvalidTransaction, t.Periodicity)
	}
	return nil
}
