// Package pipeline loads transactions and turns them into balances,
// aggregates, forecasts and backtests.
package pipeline

import (
	"sort"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/fincast/fincast/internal/model"
)

// UnnamedIncome labels income without a description.
const UnnamedIncome = "Unnamed Income"

// ComputeTotals sums real and planned income and expense.
func ComputeTotals(txs []model.Transaction) model.Totals {
	var t model.Totals
	for i, tx := range txs {
		t.Transactions++
		if i == 0 || tx.Date.Before(t.FirstDate) {
			t.FirstDate = tx.Date
		}
		if i == 0 || tx.Date.After(t.LastDate) {
			t.LastDate = tx.Date
		}

		switch {
		case tx.IsPlanned && tx.Type == model.Income:
			t.Planned++
			t.PlannedIncome = t.PlannedIncome.Add(tx.Amount)
		case tx.IsPlanned:
			t.Planned++
			t.PlannedExpense = t.PlannedExpense.Add(tx.Amount)
		case tx.Type == model.Income:
			t.RealIncome = t.RealIncome.Add(tx.Amount)
		default:
			t.RealExpense = t.RealExpense.Add(tx.Amount)
		}
	}
	return t
}

// GroupExpensesByCategory sums actual and planned expense per category,
// sorted by actual spend descending.
func GroupExpensesByCategory(txs []model.Transaction) []model.CategoryStats {
	catMap := make(map[string]*model.CategoryStats)
	total := decimal.Zero

	for _, tx := range txs {
		if tx.Type != model.Expense {
			continue
		}
		name := tx.CategoryOrDefault()
		cs, ok := catMap[name]
		if !ok {
			cs = &model.CategoryStats{Category: name}
			catMap[name] = cs
		}
		if tx.IsPlanned {
			cs.Planned = cs.Planned.Add(tx.Amount)
		} else {
			cs.Actual = cs.Actual.Add(tx.Amount)
			total = total.Add(tx.Amount)
		}
	}

	result := make([]model.CategoryStats, 0, len(catMap))
	for _, cs := range catMap {
		if total.IsPositive() {
			cs.SharePercent = cs.Actual.Div(total).InexactFloat64() * 100
		}
		result = append(result, *cs)
	}
	sort.Slice(result, func(i, j int) bool {
		if c := result[i].Actual.Cmp(result[j].Actual); c != 0 {
			return c > 0
		}
		if c := result[i].Planned.Cmp(result[j].Planned); c != 0 {
			return c > 0
		}
		return result[i].Category < result[j].Category
	})
	return result
}

// GroupIncomeByDescription sums real income per description, largest first.
func GroupIncomeByDescription(txs []model.Transaction) []model.DescriptionStats {
	descMap := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.Type != model.Income || tx.IsPlanned {
			continue
		}
		desc := strings.TrimSpace(tx.Description)
		if desc == "" {
			desc = UnnamedIncome
		}
		descMap[desc] = descMap[desc].Add(tx.Amount)
	}

	result := make([]model.DescriptionStats, 0, len(descMap))
	for desc, amount := range descMap {
		result = append(result, model.DescriptionStats{Description: desc, Amount: amount})
	}
	sort.Slice(result, func(i, j int) bool {
		if c := result[i].Amount.Cmp(result[j].Amount); c != 0 {
			return c > 0
		}
		return result[i].Description < result[j].Description
	})
	return result
}

// AggregateMonths sums income and expense per calendar month in
// chronological order, with a running total of the monthly difference.
func AggregateMonths(txs []model.Transaction, includePlanned bool) []model.MonthlyStats {
	type key struct{ year, month int }
	monthMap := make(map[key]*model.MonthlyStats)

	for _, tx := range txs {
		if tx.IsPlanned && !includePlanned {
			continue
		}
		k := key{tx.Date.Year, int(tx.Date.Month)}
		ms, ok := monthMap[k]
		if !ok {
			ms = &model.MonthlyStats{Year: k.year, Month: k.month}
			monthMap[k] = ms
		}
		if tx.Type == model.Income {
			ms.Income = ms.Income.Add(tx.Amount)
		} else {
			ms.Expense = ms.Expense.Add(tx.Amount)
		}
	}

	months := make([]model.MonthlyStats, 0, len(monthMap))
	for _, ms := range monthMap {
		months = append(months, *ms)
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year < months[j].Year
		}
		return months[i].Month < months[j].Month
	})

	running := decimal.Zero
	for i := range months {
		months[i].Difference = months[i].Income.Sub(months[i].Expense)
		running = running.Add(months[i].Difference)
		months[i].Cumulative = running
	}
	return months
}

// FilterByDate returns transactions dated within [since, until]. A zero
// bound is open.
func FilterByDate(txs []model.Transaction, since, until civil.Date) []model.Transaction {
	var zero civil.Date
	if since == zero && until == zero {
		return txs
	}

	var result []model.Transaction
	for _, tx := range txs {
		if since != zero && tx.Date.Before(since) {
			continue
		}
		if until != zero && tx.Date.After(until) {
			continue
		}
		result = append(result, tx)
	}
	return result
}

// FilterByCategory returns transactions whose category contains the given
// substring, case-insensitively. Uncategorized transactions match as
// model.DefaultCategory.
func FilterByCategory(txs []model.Transaction, category string) []model.Transaction {
	if category == "" {
		return txs
	}
	var result []model.Transaction
	for _, tx := range txs {
		if containsIgnoreCase(tx.CategoryOrDefault(), category) {
			result = append(result, tx)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
