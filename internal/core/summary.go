package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// recentLimit caps the dashboard's recent-transactions list.
const recentLimit = 5

// MonthlySummary is the derived financial picture of one month. It is
// never persisted; it is recomputed in full from fresh inputs whenever
// underlying data changes.
type MonthlySummary struct {
	Month  MonthKey
	Totals MonthTotals
	Shares Shares

	NetBalance decimal.Decimal

	// TotalBalance aliases RemainingCompanyBalance, not the sum of
	// account balances. A deliberate simplification carried over from
	// the original dashboard semantics.
	TotalBalance decimal.Decimal
}

// TransactionKind tags entries in the recent-transactions list.
type TransactionKind string

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

// Transaction is a uniform view of an income or expense for display.
type Transaction struct {
	Kind        TransactionKind
	ID          string
	Date        Date
	Description string
	Account     string
	Category    string
	Amount      decimal.Decimal // converted amount in the base currency
}

// DashboardSummary is the fully-assembled dashboard view model. Every
// field is populated: zero totals and empty slices when there is no data.
type DashboardSummary struct {
	Summary            MonthlySummary
	Accounts           []Account
	RecentTransactions []Transaction
	UpcomingIncome     []Income
	PartialPayments    []Income
	PendingExpenses    []Expense
}

// BuildDashboard composes aggregation and distribution into the final
// summary for the target month. It never fails; callers get a complete
// structure regardless of input.
func BuildDashboard(incomes []Income, expenses []Expense, accounts []Account, month MonthKey, setting *DistributionSetting) DashboardSummary {
	totals := Aggregate(incomes, expenses, month)
	shares := Distribute(totals.TotalIncome, totals.TotalExpenses, setting)

	d := DashboardSummary{
		Summary: MonthlySummary{
			Month:        month,
			Totals:       totals,
			Shares:       shares,
			NetBalance:   totals.NetBalance(),
			TotalBalance: shares.RemainingCompanyBalance,
		},
		Accounts:           accounts,
		RecentTransactions: []Transaction{},
		UpcomingIncome:     []Income{},
		PartialPayments:    []Income{},
		PendingExpenses:    []Expense{},
	}

	var all []Transaction
	for _, in := range incomes {
		if !month.Contains(in.Date) {
			continue
		}
		all = append(all, Transaction{
			Kind:        KindIncome,
			ID:          in.ID,
			Date:        in.Date,
			Description: in.Description,
			Account:     in.Account,
			Category:    in.Category,
			Amount:      in.ConvertedAmount,
		})
		switch in.Status {
		case StatusUpcoming:
			d.UpcomingIncome = append(d.UpcomingIncome, in)
		case StatusPartial:
			d.PartialPayments = append(d.PartialPayments, in)
		}
	}
	for _, ex := range expenses {
		if !month.Contains(ex.Date) {
			continue
		}
		all = append(all, Transaction{
			Kind:        KindExpense,
			ID:          ex.ID,
			Date:        ex.Date,
			Description: ex.Description,
			Account:     ex.Account,
			Category:    ex.Category,
			Amount:      ex.ConvertedAmount,
		})
		if ex.PaymentStatus == PaymentPending {
			d.PendingExpenses = append(d.PendingExpenses, ex)
		}
	}

	// Most recent first; ties broken by kind then ID so the order is
	// stable across runs regardless of input ordering.
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date.Time) {
			return all[i].Date.After(all[j].Date.Time)
		}
		if all[i].Kind != all[j].Kind {
			return all[i].Kind < all[j].Kind
		}
		return all[i].ID < all[j].ID
	})
	if len(all) > recentLimit {
		all = all[:recentLimit]
	}
	d.RecentTransactions = append(d.RecentTransactions, all...)

	return d
}
