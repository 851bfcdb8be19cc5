package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BaseCurrency is the reference currency all converted amounts are
// expressed in. Its rate is always 1 and cannot be changed or removed.
const BaseCurrency = "PKR"

const (
	StatusReceived  IncomeStatus = "received"
	StatusUpcoming  IncomeStatus = "upcoming"
	StatusPartial   IncomeStatus = "partial"
	StatusCancelled IncomeStatus = "cancelled"
)

const (
	PaymentPending PaymentStatus = "pending"
	PaymentDone    PaymentStatus = "done"
)

type (
	IncomeStatus  string
	PaymentStatus string

	Date struct {
		time.Time
	}

	// MonthKey identifies a calendar month as a zero-padded "YYYY-MM" string.
	MonthKey string

	// Account is a currency-denominated account. Balances are
	// independently-mutated values (manual edits); they are never
	// recomputed implicitly on transaction writes — see
	// RecomputeAccountBalance for the explicit derivation.
	Account struct {
		ID               string
		Name             string
		Currency         string
		Balance          decimal.Decimal
		ConvertedBalance decimal.Decimal
		Notes            string
		LastUpdated      time.Time
	}

	// Income is an income transaction. The fields from ConvertedAmount
	// down are derived at normalization time and frozen on the record:
	// later rate-table edits never touch them.
	Income struct {
		ID             string
		Date           Date
		OriginalAmount decimal.Decimal
		Currency       string
		ReceivedAmount decimal.Decimal
		Status         IncomeStatus
		Account        string // account name, a soft reference
		Category       string
		Description    string
		ClientName     string
		Notes          string
		DueDate        Date // required when status is upcoming

		ManualRate            *decimal.Decimal
		ManualConvertedAmount *decimal.Decimal

		ConvertedAmount         decimal.Decimal
		OriginalConvertedAmount decimal.Decimal
		SplitAmount             decimal.Decimal
		SplitRateUsed           decimal.Decimal
		MissingRate             bool
	}

	// Expense is an expense transaction. Derived fields mirror Income.
	Expense struct {
		ID            string
		Date          Date
		Amount        decimal.Decimal
		Currency      string
		Category      string
		Description   string
		PaymentStatus PaymentStatus
		Account       string
		Notes         string
		DueDate       Date // required when payment status is pending

		ManualRate            *decimal.Decimal
		ManualConvertedAmount *decimal.Decimal

		ConvertedAmount decimal.Decimal
		RateUsed        decimal.Decimal
		MissingRate     bool
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidPercent     = errors.New("percentage must be between 0 and 100")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptyClientName    = errors.New("empty client name")
	ErrEmptyAccount       = errors.New("empty account")
	ErrMissingDueDate     = errors.New("due date required")
	ErrUnknownStatus      = errors.New("unknown status")
	ErrReceivedOutOfRange = errors.New("received amount out of range")
)

// ValidationError reports which field of a raw record violated an
// invariant. It is always recoverable at the caller: surface the field
// and reason, do not persist the record.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// UnknownAccountError means a transaction references an account name with
// no resolvable currency — a data-integrity problem, fatal for that
// single operation.
type UnknownAccountError struct {
	Account string
}

func (e *UnknownAccountError) Error() string {
	return fmt.Sprintf("unknown account %q", e.Account)
}

func (s IncomeStatus) Valid() bool {
	switch s {
	case StatusReceived, StatusUpcoming, StatusPartial, StatusCancelled:
		return true
	}
	return false
}

// Confirmed reports whether income with this status counts toward
// monthly totals (money actually received, fully or partially).
func (s IncomeStatus) Confirmed() bool {
	return s == StatusReceived || s == StatusPartial
}

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentDone
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String formats the date as "YYYY-MM-DD".
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Month returns the month key the date falls in.
func (d Date) Month() MonthKey {
	return MonthKey(d.Format("2006-01"))
}

// MonthOf builds the key for a given year and month.
func MonthOf(year, month int) MonthKey {
	return MonthKey(fmt.Sprintf("%04d-%02d", year, month))
}

// ParseMonthKey validates a "YYYY-MM" string.
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return "", fmt.Errorf("invalid month key %q", s)
	}
	return MonthKey(t.Format("2006-01")), nil
}

// Contains reports whether the date falls in this month. A record dated
// in a different month never matches, so no transaction can appear in
// two monthly summaries.
func (m MonthKey) Contains(d Date) bool {
	return d.Month() == m
}

// Parts returns the year and month of the key.
func (m MonthKey) Parts() (year, month int) {
	t, err := time.Parse("2006-01", string(m))
	if err != nil {
		return 0, 0
	}
	return t.Year(), int(t.Month())
}

// Outstanding is the converted amount still owed on a partial income:
// the original-converted amount minus the received-converted portion.
func (i Income) Outstanding() decimal.Decimal {
	if i.Status != StatusPartial {
		return decimal.Zero
	}
	return i.OriginalConvertedAmount.Sub(i.ConvertedAmount)
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return &ValidationError{Field: "name", Err: errors.New("empty account name")}
	}
	if strings.TrimSpace(a.Currency) == "" {
		return &ValidationError{Field: "currency", Err: errors.New("empty currency")}
	}
	return nil
}
