package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"hisab/internal/core"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal.NewFromString(%q) error = %v", s, err)
	}
	return d
}

func TestAccountRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.CreateAccount(ctx, "u1", core.Account{
		Name:     "Wise USD",
		Currency: "USD",
		Balance:  dec(t, "1500.50"),
		Notes:    "main client account",
	})
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	if created.ID == "" {
		t.Fatal("CreateAccount() did not assign an id")
	}

	got, err := repo.GetAccount(ctx, "u1", created.ID)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if got.Name != "Wise USD" || got.Currency != "USD" {
		t.Errorf("GetAccount() = %+v, want name and currency preserved", got)
	}
	if !got.Balance.Equal(dec(t, "1500.50")) {
		t.Errorf("balance = %s, want 1500.50", got.Balance)
	}

	got.Balance = dec(t, "2000")
	if err := repo.UpdateAccount(ctx, "u1", got); err != nil {
		t.Fatalf("UpdateAccount() error = %v", err)
	}
	updated, err := repo.GetAccount(ctx, "u1", created.ID)
	if err != nil {
		t.Fatalf("GetAccount() after update error = %v", err)
	}
	if !updated.Balance.Equal(dec(t, "2000")) {
		t.Errorf("updated balance = %s, want 2000", updated.Balance)
	}

	if err := repo.DeleteAccount(ctx, "u1", created.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	if _, err := repo.GetAccount(ctx, "u1", created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAccount() after delete error = %v, want ErrNotFound", err)
	}
}

func TestAccountUserScoping(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.CreateAccount(ctx, "u1", core.Account{Name: "Meezan PKR", Currency: "PKR"})
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	if _, err := repo.GetAccount(ctx, "u2", created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAccount() for other user error = %v, want ErrNotFound", err)
	}
	others, err := repo.ListAccounts(ctx, "u2")
	if err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}
	if len(others) != 0 {
		t.Errorf("ListAccounts() for other user returned %d accounts, want 0", len(others))
	}
}

func TestIncomeRoundTripPreservesManualOverrides(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	manualRate := dec(t, "285.5")
	saved, err := repo.SaveIncome(ctx, "u1", core.Income{
		Date:                    core.NewDate(2024, 3, 15),
		OriginalAmount:          dec(t, "1000"),
		Currency:                "USD",
		ReceivedAmount:          dec(t, "1000"),
		Status:                  core.StatusReceived,
		Account:                 "Wise USD",
		Description:             "website build",
		ClientName:              "Acme",
		ManualRate:              &manualRate,
		ConvertedAmount:         dec(t, "285500"),
		OriginalConvertedAmount: dec(t, "285500"),
		SplitAmount:             dec(t, "285500"),
		SplitRateUsed:           dec(t, "285.5"),
	})
	if err != nil {
		t.Fatalf("SaveIncome() error = %v", err)
	}

	got, err := repo.GetIncome(ctx, "u1", saved.ID)
	if err != nil {
		t.Fatalf("GetIncome() error = %v", err)
	}
	if got.ManualRate == nil || !got.ManualRate.Equal(manualRate) {
		t.Errorf("ManualRate = %v, want 285.5", got.ManualRate)
	}
	if got.ManualConvertedAmount != nil {
		t.Errorf("ManualConvertedAmount = %v, want nil", got.ManualConvertedAmount)
	}
	if !got.ConvertedAmount.Equal(dec(t, "285500")) {
		t.Errorf("ConvertedAmount = %s, want 285500", got.ConvertedAmount)
	}
	if !got.SplitAmount.Equal(got.ConvertedAmount) {
		t.Errorf("SplitAmount = %s, want %s", got.SplitAmount, got.ConvertedAmount)
	}
	if got.Status != core.StatusReceived {
		t.Errorf("Status = %q, want received", got.Status)
	}
	if !got.DueDate.IsZero() {
		t.Errorf("DueDate = %v, want zero", got.DueDate)
	}
}

func TestListIncomesByMonth(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	dates := []core.Date{
		core.NewDate(2024, 3, 1),
		core.NewDate(2024, 3, 31),
		core.NewDate(2024, 4, 1),
	}
	for _, d := range dates {
		_, err := repo.SaveIncome(ctx, "u1", core.Income{
			Date:           d,
			OriginalAmount: dec(t, "100"),
			Currency:       "PKR",
			ReceivedAmount: dec(t, "100"),
			Status:         core.StatusReceived,
			Account:        "Cash",
			Description:    "retainer",
			ClientName:     "Acme",
		})
		if err != nil {
			t.Fatalf("SaveIncome(%s) error = %v", d, err)
		}
	}

	march, err := repo.ListIncomesByMonth(ctx, "u1", core.MonthKey("2024-03"))
	if err != nil {
		t.Fatalf("ListIncomesByMonth() error = %v", err)
	}
	if len(march) != 2 {
		t.Fatalf("ListIncomesByMonth() returned %d incomes, want 2", len(march))
	}
	for _, in := range march {
		if in.Date.Month() != core.MonthKey("2024-03") {
			t.Errorf("income dated %s leaked into 2024-03", in.Date)
		}
	}
}

func TestUpdateIncomeResetsExported(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	saved, err := repo.SaveIncome(ctx, "u1", core.Income{
		Date:           core.NewDate(2024, 3, 10),
		OriginalAmount: dec(t, "500"),
		Currency:       "PKR",
		ReceivedAmount: dec(t, "500"),
		Status:         core.StatusReceived,
		Account:        "Cash",
		Description:    "logo design",
		ClientName:     "Acme",
	})
	if err != nil {
		t.Fatalf("SaveIncome() error = %v", err)
	}
	if err := repo.MarkExported(ctx, "income", saved.ID); err != nil {
		t.Fatalf("MarkExported() error = %v", err)
	}

	pending, err := repo.PendingExport(ctx, 10)
	if err != nil {
		t.Fatalf("PendingExport() error = %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("PendingExport() after mark returned %d records, want 0", len(pending))
	}

	saved.Description = "logo redesign"
	if err := repo.UpdateIncome(ctx, "u1", saved); err != nil {
		t.Fatalf("UpdateIncome() error = %v", err)
	}
	pending, err = repo.PendingExport(ctx, 10)
	if err != nil {
		t.Fatalf("PendingExport() error = %v", err)
	}
	if len(pending) != 1 || pending[0].ID != saved.ID || pending[0].Entity != "income" {
		t.Errorf("PendingExport() after update = %+v, want the updated income", pending)
	}
}

func TestExpenseRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	manualConverted := dec(t, "29000")
	saved, err := repo.SaveExpense(ctx, "u1", core.Expense{
		Date:                  core.NewDate(2024, 3, 20),
		Amount:                dec(t, "100"),
		Currency:              "USD",
		Category:              "hosting",
		Description:           "server renewal",
		PaymentStatus:         core.PaymentPending,
		Account:               "Wise USD",
		DueDate:               core.NewDate(2024, 4, 1),
		ManualConvertedAmount: &manualConverted,
		ConvertedAmount:       dec(t, "29000"),
		RateUsed:              dec(t, "290"),
	})
	if err != nil {
		t.Fatalf("SaveExpense() error = %v", err)
	}

	got, err := repo.GetExpense(ctx, "u1", saved.ID)
	if err != nil {
		t.Fatalf("GetExpense() error = %v", err)
	}
	if got.PaymentStatus != core.PaymentPending {
		t.Errorf("PaymentStatus = %q, want pending", got.PaymentStatus)
	}
	if got.DueDate.String() != "2024-04-01" {
		t.Errorf("DueDate = %s, want 2024-04-01", got.DueDate)
	}
	if got.ManualConvertedAmount == nil || !got.ManualConvertedAmount.Equal(manualConverted) {
		t.Errorf("ManualConvertedAmount = %v, want 29000", got.ManualConvertedAmount)
	}
	if !got.RateUsed.Equal(dec(t, "290")) {
		t.Errorf("RateUsed = %s, want 290", got.RateUsed)
	}

	if err := repo.DeleteExpense(ctx, "u1", saved.ID); err != nil {
		t.Fatalf("DeleteExpense() error = %v", err)
	}
	if err := repo.DeleteExpense(ctx, "u1", saved.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteExpense() twice error = %v, want ErrNotFound", err)
	}
}

func TestRateTableIncludesBase(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	table, err := repo.RateTable(ctx, "u1")
	if err != nil {
		t.Fatalf("RateTable() error = %v", err)
	}
	base, ok := table[core.BaseCurrency]
	if !ok || !base.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("RateTable()[%s] = %s, %v; want 1, true", core.BaseCurrency, base, ok)
	}

	if err := repo.UpsertRate(ctx, "u1", "USD", dec(t, "280.75")); err != nil {
		t.Fatalf("UpsertRate() error = %v", err)
	}
	if err := repo.UpsertRate(ctx, "u1", "USD", dec(t, "282")); err != nil {
		t.Fatalf("UpsertRate() update error = %v", err)
	}

	table, err = repo.RateTable(ctx, "u1")
	if err != nil {
		t.Fatalf("RateTable() error = %v", err)
	}
	if !table["USD"].Equal(dec(t, "282")) {
		t.Errorf("RateTable()[USD] = %s, want 282", table["USD"])
	}
}

func TestBaseCurrencyRateIsFixed(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.UpsertRate(ctx, "u1", core.BaseCurrency, dec(t, "2")); !errors.Is(err, ErrBaseCurrencyFixed) {
		t.Errorf("UpsertRate(base, 2) error = %v, want ErrBaseCurrencyFixed", err)
	}
	if err := repo.UpsertRate(ctx, "u1", core.BaseCurrency, decimal.NewFromInt(1)); err != nil {
		t.Errorf("UpsertRate(base, 1) error = %v, want nil", err)
	}
	if err := repo.DeleteRate(ctx, "u1", core.BaseCurrency); !errors.Is(err, ErrBaseCurrencyFixed) {
		t.Errorf("DeleteRate(base) error = %v, want ErrBaseCurrencyFixed", err)
	}
}

func TestUpsertRateRejectsNonPositive(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.UpsertRate(ctx, "u1", "USD", decimal.Zero); err == nil {
		t.Error("UpsertRate(USD, 0) error = nil, want error")
	}
	if err := repo.UpsertRate(ctx, "u1", "USD", dec(t, "-1")); err == nil {
		t.Error("UpsertRate(USD, -1) error = nil, want error")
	}
}

func TestDistributionSettingAbsentIsNil(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	setting, err := repo.DistributionSetting(ctx, "u1", core.MonthKey("2024-03"))
	if err != nil {
		t.Fatalf("DistributionSetting() error = %v", err)
	}
	if setting != nil {
		t.Fatalf("DistributionSetting() = %+v, want nil for absent month", setting)
	}

	want := core.DistributionSetting{CompanyPercent: dec(t, "60")}
	if err := repo.UpsertDistributionSetting(ctx, "u1", core.MonthKey("2024-03"), want); err != nil {
		t.Fatalf("UpsertDistributionSetting() error = %v", err)
	}

	setting, err = repo.DistributionSetting(ctx, "u1", core.MonthKey("2024-03"))
	if err != nil {
		t.Fatalf("DistributionSetting() after upsert error = %v", err)
	}
	if setting == nil || !setting.CompanyPercent.Equal(dec(t, "60")) {
		t.Errorf("DistributionSetting() = %+v, want company percent 60", setting)
	}

	// Another month still falls through to the default.
	other, err := repo.DistributionSetting(ctx, "u1", core.MonthKey("2024-04"))
	if err != nil {
		t.Fatalf("DistributionSetting() for other month error = %v", err)
	}
	if other != nil {
		t.Errorf("DistributionSetting() for other month = %+v, want nil", other)
	}
}

func TestUpsertDistributionSettingValidates(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	bad := core.DistributionSetting{CompanyPercent: dec(t, "150")}
	if err := repo.UpsertDistributionSetting(ctx, "u1", core.MonthKey("2024-03"), bad); err == nil {
		t.Error("UpsertDistributionSetting(150%) error = nil, want error")
	}
}
