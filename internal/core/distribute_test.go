package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDistributeDefaultSplit(t *testing.T) {
	got := Distribute(dec("100000"), dec("0"), nil)
	if !got.CompanyShare.Equal(dec("50000")) {
		t.Fatalf("company %s, want 50000", got.CompanyShare)
	}
	if !got.RoshaanShare.Equal(dec("25000")) || !got.ShahbazShare.Equal(dec("25000")) {
		t.Fatalf("owners %s/%s, want 25000 each", got.RoshaanShare, got.ShahbazShare)
	}
}

func TestDistributeCustomSetting(t *testing.T) {
	setting := &DistributionSetting{CompanyPercent: dec("80")}
	got := Distribute(dec("100000"), dec("0"), setting)
	if !got.CompanyShare.Equal(dec("80000")) {
		t.Fatalf("company %s, want 80000", got.CompanyShare)
	}
	if !got.RoshaanShare.Equal(dec("10000")) || !got.ShahbazShare.Equal(dec("10000")) {
		t.Fatalf("owners %s/%s, want 10000 each", got.RoshaanShare, got.ShahbazShare)
	}
}

func TestDistributeCompleteness(t *testing.T) {
	tolerance := dec("0.000001")
	incomes := []string{"100000", "1", "0.03", "99999.99", "7777777.77"}
	percents := []string{"0", "10", "33.33", "50", "66.6", "100"}

	for _, income := range incomes {
		for _, pct := range percents {
			setting := &DistributionSetting{CompanyPercent: dec(pct)}
			got := Distribute(dec(income), dec("0"), setting)
			sum := got.CompanyShare.Add(got.RoshaanShare).Add(got.ShahbazShare)
			if sum.Sub(dec(income)).Abs().GreaterThan(tolerance) {
				t.Fatalf("income=%s pct=%s: shares sum to %s", income, pct, sum)
			}
		}
	}
}

func TestDistributeNegativeRemainder(t *testing.T) {
	got := Distribute(dec("100000"), dec("70000"), nil)
	if !got.RemainingCompanyBalance.Equal(dec("-20000")) {
		t.Fatalf("remaining %s, want -20000 (not clamped)", got.RemainingCompanyBalance)
	}
}

func TestDistributeOwnerSharesIgnoreExpenses(t *testing.T) {
	income := dec("100000")
	base := Distribute(income, dec("0"), nil)

	for _, expenses := range []string{"1", "50000", "100000", "250000"} {
		got := Distribute(income, dec(expenses), nil)
		if !got.RoshaanShare.Equal(base.RoshaanShare) || !got.ShahbazShare.Equal(base.ShahbazShare) {
			t.Fatalf("expenses=%s moved owner shares", expenses)
		}
		if !got.CompanyShare.Equal(base.CompanyShare) {
			t.Fatalf("expenses=%s moved the company share itself", expenses)
		}
		want := base.CompanyShare.Sub(dec(expenses))
		if !got.RemainingCompanyBalance.Equal(want) {
			t.Fatalf("expenses=%s: remaining %s, want %s", expenses, got.RemainingCompanyBalance, want)
		}
	}
}

func TestDistributionSettingValidate(t *testing.T) {
	cases := []struct {
		pct string
		ok  bool
	}{
		{"0", true},
		{"50", true},
		{"100", true},
		{"-1", false},
		{"100.01", false},
	}
	for _, tc := range cases {
		s := DistributionSetting{CompanyPercent: dec(tc.pct)}
		err := s.Validate()
		if tc.ok && err != nil {
			t.Fatalf("pct=%s: unexpected error %v", tc.pct, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("pct=%s: expected error", tc.pct)
		}
	}
}

func TestOwnerPercent(t *testing.T) {
	s := DistributionSetting{CompanyPercent: decimal.NewFromInt(80)}
	if !s.OwnerPercent().Equal(dec("10")) {
		t.Fatalf("owner percent %s, want 10", s.OwnerPercent())
	}
}
