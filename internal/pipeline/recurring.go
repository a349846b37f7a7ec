package pipeline

import (
	"strconv"
	"time"

	"cloud.google.com/go/civil"

	"github.com/fincast/fincast/internal/model"
)

// ExpandRecurring materialises planned daily and monthly transactions as one
// planned occurrence per period, from the transaction date through until.
// The first occurrence keeps the original id; later ones get "#n" suffixes.
// Real transactions and other periodicities pass through unchanged.
func ExpandRecurring(txs []model.Transaction, until civil.Date) []model.Transaction {
	out := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !tx.IsPlanned || (tx.Periodicity != model.PeriodDaily && tx.Periodicity != model.PeriodMonthly) {
			out = append(out, tx)
			continue
		}

		for n := 0; ; n++ {
			var d civil.Date
			if tx.Periodicity == model.PeriodDaily {
				d = tx.Date.AddDays(n)
			} else {
				d = addMonthsClamped(tx.Date, n)
			}
			if n > 0 && d.After(until) {
				break
			}
			occ := tx
			occ.Date = d
			occ.Periodicity = model.PeriodOnce
			if n > 0 {
				occ.ID = tx.ID + "#" + strconv.Itoa(n)
			}
			out = append(out, occ)
		}
	}
	return out
}

// addMonthsClamped moves d forward n months, clamping the day to the last
// day of the target month (Jan 31 + 1 month is Feb 28 or 29).
func addMonthsClamped(d civil.Date, n int) civil.Date {
	total := int(d.Month) - 1 + n
	year := d.Year + total/12
	month := time.Month(total%12 + 1)
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return civil.Date{Year: year, Month: month, Day: min(d.Day, last)}
}
