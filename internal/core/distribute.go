package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DistributionSetting is the company/owner profit split for one month.
// Only the company percentage is stored; the remainder is always split
// evenly between the two owners.
type DistributionSetting struct {
	CompanyPercent decimal.Decimal
}

// DefaultDistribution is the 50/25/25 split applied to months without a
// custom setting.
func DefaultDistribution() DistributionSetting {
	return DistributionSetting{CompanyPercent: decimal.NewFromInt(50)}
}

func (s DistributionSetting) Validate() error {
	if s.CompanyPercent.IsNegative() || s.CompanyPercent.GreaterThan(hundred) {
		return fmt.Errorf("company percentage %s out of range [0,100]", s.CompanyPercent)
	}
	return nil
}

// OwnerPercent is each owner's percentage: half of what the company
// does not take.
func (s DistributionSetting) OwnerPercent() decimal.Decimal {
	return hundred.Sub(s.CompanyPercent).Div(decimal.NewFromInt(2))
}

// Shares is the outcome of distributing one month's confirmed income.
type Shares struct {
	CompanyShare decimal.Decimal
	RoshaanShare decimal.Decimal
	ShahbazShare decimal.Decimal

	// RemainingCompanyBalance is the company share after absorbing all
	// of the month's expenses. Negative means the company overspent its
	// share — a valid, displayed state, not an error.
	RemainingCompanyBalance decimal.Decimal
}

// Distribute applies the percentage split to the month's confirmed
// income. A nil setting means no custom split exists for the month and
// the default applies. Owner shares are never reduced by expenses; only
// the company share absorbs them. That is a fixed business rule, not
// configurable beyond the percentage itself.
func Distribute(totalIncome, totalExpenses decimal.Decimal, setting *DistributionSetting) Shares {
	s := DefaultDistribution()
	if setting != nil {
		s = *setting
	}

	ownerPct := s.OwnerPercent()
	company := totalIncome.Mul(s.CompanyPercent).Div(hundred)
	owner := totalIncome.Mul(ownerPct).Div(hundred)

	return Shares{
		CompanyShare:            company,
		RoshaanShare:            owner,
		ShahbazShare:            owner,
		RemainingCompanyBalance: company.Sub(totalExpenses),
	}
}
