package core

import "github.com/shopspring/decimal"

// MonthTotals are the aggregated figures for one calendar month. All
// values are in the base currency. PendingPayments is a subset of
// TotalExpenses (a reporting figure, not an additional expense).
type MonthTotals struct {
	TotalIncome     decimal.Decimal // received + partial, converted received amounts
	ExpectedIncome  decimal.Decimal // upcoming, original-converted amounts
	CancelledIncome decimal.Decimal // cancelled, original-converted amounts
	TotalExpenses   decimal.Decimal // every expense in the month, any payment status
	PendingPayments decimal.Decimal // expenses still pending
}

// Aggregate filters both collections to the target month and sums them.
// Records are matched by month key, so a transaction belongs to exactly
// one monthly summary. The result is order-independent and all-zero for
// empty input. Inputs are trusted to be normalized; nothing here errors.
func Aggregate(incomes []Income, expenses []Expense, month MonthKey) MonthTotals {
	var t MonthTotals

	for _, in := range incomes {
		if !month.Contains(in.Date) {
			continue
		}
		switch {
		case in.Status.Confirmed():
			t.TotalIncome = t.TotalIncome.Add(in.ConvertedAmount)
		case in.Status == StatusUpcoming:
			t.ExpectedIncome = t.ExpectedIncome.Add(in.OriginalConvertedAmount)
		case in.Status == StatusCancelled:
			t.CancelledIncome = t.CancelledIncome.Add(in.OriginalConvertedAmount)
		}
	}

	for _, ex := range expenses {
		if !month.Contains(ex.Date) {
			continue
		}
		t.TotalExpenses = t.TotalExpenses.Add(ex.ConvertedAmount)
		if ex.PaymentStatus == PaymentPending {
			t.PendingPayments = t.PendingPayments.Add(ex.ConvertedAmount)
		}
	}

	return t
}

// NetBalance is confirmed income minus all expenses; it may be negative.
func (t MonthTotals) NetBalance() decimal.Decimal {
	return t.TotalIncome.Sub(t.TotalExpenses)
}
