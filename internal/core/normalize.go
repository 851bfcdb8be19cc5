package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AccountCurrencyResolver resolves an account name to its configured
// currency. The account's currency is authoritative for a transaction,
// regardless of any currency field the caller supplied. Implementations
// must fail loudly — typically with *UnknownAccountError — rather than
// silently defaulting, since an unresolvable name means the transaction
// references a deleted or renamed account.
type AccountCurrencyResolver func(accountName string) (string, error)

// NormalizeIncome validates a raw income record and computes its derived
// fields: converted amounts, split amount and the effective rate used.
// The result is a new record; the input is not mutated. The derived
// fields are frozen once persisted — editing the record runs it through
// here again, but rate-table changes alone never do.
func NormalizeIncome(in Income, resolve AccountCurrencyResolver, rates RateTable) (Income, error) {
	if err := validateIncome(in); err != nil {
		return Income{}, err
	}

	currency, err := resolve(in.Account)
	if err != nil {
		return Income{}, err
	}
	in.Currency = currency

	conv := Convert(in.OriginalAmount, currency, rates, in.ManualRate, in.ManualConvertedAmount)
	in.OriginalConvertedAmount = conv.Amount
	in.SplitRateUsed = conv.Rate
	in.MissingRate = conv.MissingRate

	switch in.Status {
	case StatusReceived:
		in.ReceivedAmount = in.OriginalAmount
		in.ConvertedAmount = conv.Amount
	case StatusPartial:
		in.ConvertedAmount = partialConverted(in, currency, conv)
	default: // upcoming, cancelled
		in.ReceivedAmount = decimal.Zero
		in.ConvertedAmount = decimal.Zero
	}
	in.SplitAmount = in.ConvertedAmount

	return in, nil
}

// partialConverted computes the received-converted portion of a partial
// income. A manual converted amount covers the full original amount, so
// it is scaled proportionally by received/original.
func partialConverted(in Income, currency string, conv Conversion) decimal.Decimal {
	if currency != BaseCurrency && in.ManualConvertedAmount != nil {
		return in.ManualConvertedAmount.Mul(in.ReceivedAmount).Div(in.OriginalAmount)
	}
	return in.ReceivedAmount.Mul(conv.Rate)
}

// NormalizeExpense validates a raw expense record and computes its
// converted amount and effective rate.
func NormalizeExpense(in Expense, resolve AccountCurrencyResolver, rates RateTable) (Expense, error) {
	if err := validateExpense(in); err != nil {
		return Expense{}, err
	}

	currency, err := resolve(in.Account)
	if err != nil {
		return Expense{}, err
	}
	in.Currency = currency

	conv := Convert(in.Amount, currency, rates, in.ManualRate, in.ManualConvertedAmount)
	in.ConvertedAmount = conv.Amount
	in.RateUsed = conv.Rate
	in.MissingRate = conv.MissingRate

	return in, nil
}

func validateIncome(in Income) error {
	if in.Date.IsZero() {
		return &ValidationError{Field: "date", Err: ErrInvalidDate}
	}
	if !in.OriginalAmount.IsPositive() {
		return &ValidationError{Field: "originalAmount", Err: ErrInvalidAmount}
	}
	if strings.TrimSpace(in.Description) == "" {
		return &ValidationError{Field: "description", Err: ErrEmptyDescription}
	}
	if strings.TrimSpace(in.ClientName) == "" {
		return &ValidationError{Field: "clientName", Err: ErrEmptyClientName}
	}
	if strings.TrimSpace(in.Account) == "" {
		return &ValidationError{Field: "account", Err: ErrEmptyAccount}
	}
	if !in.Status.Valid() {
		return &ValidationError{Field: "status", Err: ErrUnknownStatus}
	}
	if in.Status == StatusUpcoming && in.DueDate.IsZero() {
		return &ValidationError{Field: "dueDate", Err: ErrMissingDueDate}
	}
	if in.Status == StatusPartial {
		if !in.ReceivedAmount.IsPositive() || in.ReceivedAmount.GreaterThanOrEqual(in.OriginalAmount) {
			return &ValidationError{Field: "receivedAmount", Err: ErrReceivedOutOfRange}
		}
	}
	return nil
}

func validateExpense(in Expense) error {
	if in.Date.IsZero() {
		return &ValidationError{Field: "date", Err: ErrInvalidDate}
	}
	if !in.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	if strings.TrimSpace(in.Description) == "" {
		return &ValidationError{Field: "description", Err: ErrEmptyDescription}
	}
	if strings.TrimSpace(in.Account) == "" {
		return &ValidationError{Field: "account", Err: ErrEmptyAccount}
	}
	if !in.PaymentStatus.Valid() {
		return &ValidationError{Field: "paymentStatus", Err: ErrUnknownStatus}
	}
	if in.PaymentStatus == PaymentPending && in.DueDate.IsZero() {
		return &ValidationError{Field: "dueDate", Err: ErrMissingDueDate}
	}
	return nil
}
