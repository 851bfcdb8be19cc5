package core

import (
	"errors"
	"testing"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2024-03-31" {
		t.Fatalf("round trip: %s", d)
	}
	if d.Month() != "2024-03" {
		t.Fatalf("month key: %s", d.Month())
	}

	for _, bad := range []string{"", "31-03-2024", "2024-13-01", "2024-02-30"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q: err=%v, want ErrInvalidDate", bad, err)
		}
	}
}

func TestMonthKey(t *testing.T) {
	if MonthOf(2024, 3) != "2024-03" {
		t.Fatalf("MonthOf: %s", MonthOf(2024, 3))
	}
	if _, err := ParseMonthKey("2024-3"); err == nil {
		t.Fatal("unpadded month must be rejected")
	}
	m, err := ParseMonthKey("2024-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	year, month := m.Parts()
	if year != 2024 || month != 3 {
		t.Fatalf("parts: %d-%d", year, month)
	}
}

func TestIncomeStatus(t *testing.T) {
	for _, s := range []IncomeStatus{StatusReceived, StatusUpcoming, StatusPartial, StatusCancelled} {
		if !s.Valid() {
			t.Fatalf("%s should be valid", s)
		}
	}
	if IncomeStatus("maybe").Valid() {
		t.Fatal("unknown status accepted")
	}
	if !StatusReceived.Confirmed() || !StatusPartial.Confirmed() {
		t.Fatal("received and partial are confirmed")
	}
	if StatusUpcoming.Confirmed() || StatusCancelled.Confirmed() {
		t.Fatal("upcoming and cancelled are not confirmed")
	}
}

func TestValidationErrorUnwraps(t *testing.T) {
	err := error(&ValidationError{Field: "amount", Err: ErrInvalidAmount})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatal("sentinel lost through wrapper")
	}
	if err.Error() != "amount: amount must be positive" {
		t.Fatalf("message: %q", err.Error())
	}
}

func TestAccountValidate(t *testing.T) {
	ok := Account{Name: "Meezan", Currency: "PKR"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, bad := range []Account{
		{Name: "", Currency: "PKR"},
		{Name: "Meezan", Currency: " "},
	} {
		if err := bad.Validate(); err == nil {
			t.Fatalf("%+v: expected error", bad)
		}
	}
}
