package core

import "github.com/shopspring/decimal"

// RateTable maps a currency code to the number of base-currency units one
// unit of that currency is worth. The base currency entry is fixed at 1.
type RateTable map[string]decimal.Decimal

var one = decimal.NewFromInt(1)

// Rate returns the stored rate for a currency. The base currency is
// always 1 whether or not it appears in the table.
func (t RateTable) Rate(currency string) (decimal.Decimal, bool) {
	if currency == BaseCurrency {
		return one, true
	}
	r, ok := t[currency]
	return r, ok
}

// Conversion is the outcome of converting an amount to the base currency.
type Conversion struct {
	Amount decimal.Decimal // converted amount in the base currency
	Rate   decimal.Decimal // effective rate actually applied

	// MissingRate is set when the currency had no table entry and no
	// override, so the conversion fell back to rate 1. It is a soft
	// signal for the caller to surface, never an error: historical
	// records in retired currencies must remain viewable.
	MissingRate bool
}

// Convert converts amount from currency into the base currency.
//
// Precedence: base currency short-circuits everything; then a manual
// converted amount, then a manual rate, then the table. A currency absent
// from the table converts at rate 1 with MissingRate set.
//
// When manualConverted is given, the reported rate is the derived
// manualConverted/amount; for a zero amount the derived rate is
// undefined, so the nominal rate (manual override or table entry,
// defaulting to 1) is reported instead.
func Convert(amount decimal.Decimal, currency string, rates RateTable, manualRate, manualConverted *decimal.Decimal) Conversion {
	if currency == BaseCurrency {
		return Conversion{Amount: amount, Rate: one}
	}

	if manualConverted != nil {
		rate := nominalRate(currency, rates, manualRate)
		if !amount.IsZero() {
			rate = manualConverted.Div(amount)
		}
		return Conversion{Amount: *manualConverted, Rate: rate}
	}

	if manualRate != nil {
		return Conversion{Amount: amount.Mul(*manualRate), Rate: *manualRate}
	}

	if rate, ok := rates.Rate(currency); ok {
		return Conversion{Amount: amount.Mul(rate), Rate: rate}
	}

	return Conversion{Amount: amount, Rate: one, MissingRate: true}
}

func nominalRate(currency string, rates RateTable, manualRate *decimal.Decimal) decimal.Decimal {
	if manualRate != nil {
		return *manualRate
	}
	if rate, ok := rates.Rate(currency); ok {
		return rate
	}
	return one
}
