package pipeline

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/fincast/fincast/internal/model"
)

var day0 = civil.Date{Year: 2024, Month: 1, Day: 1}

// tx builds a real transaction on day0+day.
func tx(day int, typ model.TxType, amount string) model.Transaction {
	return model.Transaction{
		ID:     string(typ) + "-" + amount,
		Date:   day0.AddDays(day),
		Amount: decimal.RequireFromString(amount),
		Type:   typ,
	}
}

func planned(day int, typ model.TxType, amount string) model.Transaction {
	t := tx(day, typ, amount)
	t.IsPlanned = true
	return t
}

func withCategory(t model.Transaction, category string) model.Transaction {
	t.Category = category
	return t
}

func withDescription(t model.Transaction, desc string) model.Transaction {
	t.Description = desc
	return t
}
