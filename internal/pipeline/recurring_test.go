package pipeline

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fincast/fincast/internal/model"
)

func TestExpandRecurring_Daily(t *testing.T) {
	p := planned(0, model.Expense, "3")
	p.ID = "coffee"
	p.Periodicity = model.PeriodDaily

	got := ExpandRecurring([]model.Transaction{p}, day0.AddDays(2))
	require.Len(t, got, 3)
	for i, occ := range got {
		assert.Equal(t, day0.AddDays(i), occ.Date)
		assert.True(t, occ.IsPlanned)
		assert.Equal(t, model.PeriodOnce, occ.Periodicity)
	}
	assert.Equal(t, []string{"coffee", "coffee#1", "coffee#2"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestExpandRecurring_MonthlyClampsDay(t *testing.T) {
	p := model.Transaction{
		ID:          "rent",
		Date:        civil.Date{Year: 2024, Month: 1, Day: 31},
		Amount:      dec("900"),
		Type:        model.Expense,
		IsPlanned:   true,
		Periodicity: model.PeriodMonthly,
	}
	got := ExpandRecurring([]model.Transaction{p}, civil.Date{Year: 2024, Month: 4, Day: 30})

	want := []civil.Date{
		{Year: 2024, Month: 1, Day: 31},
		{Year: 2024, Month: 2, Day: 29},
		{Year: 2024, Month: 3, Day: 31},
		{Year: 2024, Month: 4, Day: 30},
	}
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i], got[i].Date)
	}
}

func TestExpandRecurring_PassThrough(t *testing.T) {
	realDaily := tx(0, model.Income, "1")
	realDaily.Periodicity = model.PeriodDaily
	once := planned(0, model.Income, "1")
	once.Periodicity = model.PeriodOnce
	late := planned(10, model.Expense, "1")
	late.Periodicity = model.PeriodMonthly

	got := ExpandRecurring([]model.Transaction{realDaily, once, late}, day0.AddDays(5))
	require.Len(t, got, 3)
	assert.Equal(t, model.PeriodDaily, got[0].Periodicity)
	assert.Equal(t, day0.AddDays(10), got[2].Date, "occurrence after until keeps its own date")
}

func TestAddMonthsClamped(t *testing.T) {
	d := civil.Date{Year: 2023, Month: 11, Day: 30}
	assert.Equal(t, civil.Date{Year: 2024, Month: 2, Day: 29}, addMonthsClamped(d, 3))
	assert.Equal(t, civil.Date{Year: 2025, Month: 2, Day: 28}, addMonthsClamped(d, 15))
	assert.Equal(t, d, addMonthsClamped(d, 0))
}
