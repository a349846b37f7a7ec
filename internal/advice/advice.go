// Package advice turns income and expense totals into short plain-language
// recommendations.
package advice

import "github.com/shopspring/decimal"

const (
	RealOverspend = "Your expenses exceed your income. Consider reviewing your spending."
	RealCovered   = "Great! Your current income covers your expenses."

	ForecastOverspend = "The forecast shows expenses will exceed income. Try cutting back on non-essential purchases."
	ForecastSurplus   = "The forecast leaves you with spare money. You could put more into savings."
)

// Recommend returns two recommendations: the first compares real income and
// expense, the second the forecast totals. Equal totals count as covered.
func Recommend(realIncome, realExpense, forecastIncome, forecastExpense decimal.Decimal) []string {
	recs := make([]string, 0, 2)

	if realExpense.GreaterThan(realIncome) {
		recs = append(recs, RealOverspend)
	} else {
		recs = append(recs, RealCovered)
	}

	if forecastExpense.GreaterThan(forecastIncome) {
		recs = append(recs, ForecastOverspend)
	} else {
		recs = append(recs, ForecastSurplus)
	}
	return recs
}
