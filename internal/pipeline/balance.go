package pipeline

import (
	"sort"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/fincast/fincast/internal/model"
)

// ComputeDailyBalances folds transactions into a running balance starting at
// zero and returns one point per calendar day from the earliest to the latest
// transaction date. Days without transactions carry the previous balance.
// Planned transactions are skipped unless includePlanned is set.
func ComputeDailyBalances(txs []model.Transaction, includePlanned bool) []model.DailyPoint {
	return balancesFrom(txs, includePlanned, decimal.Zero)
}

// SplitRealAndPlanned returns the real balance series and a planned series
// built from planned transactions dated on or after the last real date. The
// planned series continues from the real closing balance. Without real
// transactions every planned transaction is used and it starts at zero.
func SplitRealAndPlanned(txs []model.Transaction) (real, planned []model.DailyPoint) {
	var realTx, plannedTx []model.Transaction
	var lastReal civil.Date
	closing := decimal.Zero
	for _, t := range txs {
		if t.IsPlanned {
			continue
		}
		realTx = append(realTx, t)
		closing = closing.Add(t.Signed())
		if lastReal.After(t.Date) {
			continue
		}
		lastReal = t.Date
	}

	for _, t := range txs {
		if !t.IsPlanned {
			continue
		}
		if len(realTx) > 0 && t.Date.Before(lastReal) {
			continue
		}
		plannedTx = append(plannedTx, t)
	}

	return ComputeDailyBalances(realTx, false), balancesFrom(plannedTx, true, closing)
}

func balancesFrom(txs []model.Transaction, includePlanned bool, opening decimal.Decimal) []model.DailyPoint {
	filtered := make([]model.Transaction, 0, len(txs))
	for _, t := range txs {
		if includePlanned || !t.IsPlanned {
			filtered = append(filtered, t)
		}
	}
	if len(filtered) == 0 {
		return []model.DailyPoint{}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date.Before(filtered[j].Date)
	})

	// Closing balance of every day that has transactions.
	closing := make(map[civil.Date]decimal.Decimal)
	bal := opening
	for _, t := range filtered {
		bal = bal.Add(t.Signed())
		closing[t.Date] = bal
	}

	first, last := filtered[0].Date, filtered[len(filtered)-1].Date
	out := make([]model.DailyPoint, 0, last.DaysSince(first)+1)
	cur := opening
	for d := first; !d.After(last); d = d.AddDays(1) {
		if v, ok := closing[d]; ok {
			cur = v
		}
		out = append(out, model.DailyPoint{Date: d, Value: cur.InexactFloat64()})
	}
	return out
}
