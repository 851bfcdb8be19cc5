package core

import "github.com/shopspring/decimal"

// RecomputeAccountBalance derives an account's balance from the
// transactions that reference it: confirmed received amounts in, expense
// amounts out, all in the account's own currency. The converted balance
// applies the current table rate (falling back to 1 for a missing rate,
// like any conversion).
//
// This is an explicit operation, never a side effect of posting a
// transaction: stored account balances remain manually-edited values
// until a caller asks for reconciliation.
func RecomputeAccountBalance(account Account, incomes []Income, expenses []Expense, rates RateTable) (balance, converted decimal.Decimal) {
	for _, in := range incomes {
		if in.Account != account.Name || !in.Status.Confirmed() {
			continue
		}
		balance = balance.Add(in.ReceivedAmount)
	}
	for _, ex := range expenses {
		if ex.Account != account.Name {
			continue
		}
		balance = balance.Sub(ex.Amount)
	}

	conv := Convert(balance, account.Currency, rates, nil, nil)
	return balance, conv.Amount
}
