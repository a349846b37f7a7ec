package model

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Totals holds the top-level aggregate across a transaction set.
type Totals struct {
	Transactions int
	Planned      int

	RealIncome     decimal.Decimal
	RealExpense    decimal.Decimal
	PlannedIncome  decimal.Decimal
	PlannedExpense decimal.Decimal

	FirstDate civil.Date
	LastDate  civil.Date
}

// RealNet is real income minus real expense.
func (t Totals) RealNet() decimal.Decimal {
	return t.RealIncome.Sub(t.RealExpense)
}

// PlannedNet is planned income minus planned expense.
func (t Totals) PlannedNet() decimal.Decimal {
	return t.PlannedIncome.Sub(t.PlannedExpense)
}

// CategoryStats holds actual vs planned spending for one category.
type CategoryStats struct {
	Category     string
	Actual       decimal.Decimal
	Planned      decimal.Decimal
	SharePercent float64 // of total actual expense
}

// DescriptionStats holds real income grouped by description.
type DescriptionStats struct {
	Description string
	Amount      decimal.Decimal
}

// MonthlyStats holds income and expense for one calendar month.
type MonthlyStats struct {
	Year       int
	Month      int
	Income     decimal.Decimal
	Expense    decimal.Decimal
	Difference decimal.Decimal
	Cumulative decimal.Decimal
}
