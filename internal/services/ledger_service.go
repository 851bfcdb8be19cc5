// Package services orchestrates ledger operations across SQLite and
// AMQP. Writes persist locally first; event publishing is best-effort
// and never fails the request.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"hisab/internal/amqp"
	"hisab/internal/core"
	"hisab/internal/storage"
)

// Store is the persistence surface the service needs. Satisfied by
// *storage.SQLiteRepository.
type Store interface {
	CreateAccount(ctx context.Context, userID string, a core.Account) (core.Account, error)
	GetAccount(ctx context.Context, userID, id string) (core.Account, error)
	ListAccounts(ctx context.Context, userID string) ([]core.Account, error)
	UpdateAccount(ctx context.Context, userID string, a core.Account) error
	DeleteAccount(ctx context.Context, userID, id string) error

	SaveIncome(ctx context.Context, userID string, in core.Income) (core.Income, error)
	GetIncome(ctx context.Context, userID, id string) (core.Income, error)
	ListIncomes(ctx context.Context, userID string) ([]core.Income, error)
	ListIncomesByMonth(ctx context.Context, userID string, month core.MonthKey) ([]core.Income, error)
	UpdateIncome(ctx context.Context, userID string, in core.Income) error
	DeleteIncome(ctx context.Context, userID, id string) error

	SaveExpense(ctx context.Context, userID string, ex core.Expense) (core.Expense, error)
	GetExpense(ctx context.Context, userID, id string) (core.Expense, error)
	ListExpenses(ctx context.Context, userID string) ([]core.Expense, error)
	ListExpensesByMonth(ctx context.Context, userID string, month core.MonthKey) ([]core.Expense, error)
	UpdateExpense(ctx context.Context, userID string, ex core.Expense) error
	DeleteExpense(ctx context.Context, userID, id string) error

	RateTable(ctx context.Context, userID string) (core.RateTable, error)
	UpsertRate(ctx context.Context, userID, currency string, rate decimal.Decimal) error
	DeleteRate(ctx context.Context, userID, currency string) error

	DistributionSetting(ctx context.Context, userID string, month core.MonthKey) (*core.DistributionSetting, error)
	UpsertDistributionSetting(ctx context.Context, userID string, month core.MonthKey, setting core.DistributionSetting) error

	Close() error
}

// EventPublisher publishes ledger events. Satisfied by *amqp.Client.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, event *amqp.LedgerEvent) error
	Close() error
}

// LedgerService is the write and read path for the ledger.
type LedgerService struct {
	store     Store
	publisher EventPublisher
}

func NewLedgerService(store Store, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
	}
}

// --- accounts ---

func (s *LedgerService) CreateAccount(ctx context.Context, userID string, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	if err := s.fillConvertedBalance(ctx, userID, &a); err != nil {
		return core.Account{}, err
	}
	return s.store.CreateAccount(ctx, userID, a)
}

func (s *LedgerService) GetAccount(ctx context.Context, userID, id string) (core.Account, error) {
	return s.store.GetAccount(ctx, userID, id)
}

func (s *LedgerService) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	return s.store.ListAccounts(ctx, userID)
}

func (s *LedgerService) UpdateAccount(ctx context.Context, userID string, a core.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if err := s.fillConvertedBalance(ctx, userID, &a); err != nil {
		return err
	}
	return s.store.UpdateAccount(ctx, userID, a)
}

func (s *LedgerService) DeleteAccount(ctx context.Context, userID, id string) error {
	return s.store.DeleteAccount(ctx, userID, id)
}

// fillConvertedBalance derives the base-currency view of a manually
// edited balance from the current rate table, keeping converted and
// native balance in step on every account write. For the base currency
// the two are identical.
func (s *LedgerService) fillConvertedBalance(ctx context.Context, userID string, a *core.Account) error {
	rates, err := s.store.RateTable(ctx, userID)
	if err != nil {
		return fmt.Errorf("load rate table: %w", err)
	}
	a.ConvertedBalance = core.Convert(a.Balance, a.Currency, rates, nil, nil).Amount
	return nil
}

// RecomputeAccountBalance derives the account balance from its full
// transaction history and persists the result. This is the only path
// that moves an account balance from transaction data.
func (s *LedgerService) RecomputeAccountBalance(ctx context.Context, userID, id string) (core.Account, error) {
	account, err := s.store.GetAccount(ctx, userID, id)
	if err != nil {
		return core.Account{}, err
	}

	incomes, err := s.store.ListIncomes(ctx, userID)
	if err != nil {
		return core.Account{}, fmt.Errorf("list incomes: %w", err)
	}
	expenses, err := s.store.ListExpenses(ctx, userID)
	if err != nil {
		return core.Account{}, fmt.Errorf("list expenses: %w", err)
	}
	rates, err := s.store.RateTable(ctx, userID)
	if err != nil {
		return core.Account{}, fmt.Errorf("load rate table: %w", err)
	}

	account.Balance, account.ConvertedBalance = core.RecomputeAccountBalance(account, incomes, expenses, rates)
	if err := s.store.UpdateAccount(ctx, userID, account); err != nil {
		return core.Account{}, fmt.Errorf("persist recomputed balance: %w", err)
	}

	slog.InfoContext(ctx, "Account balance recomputed",
		"account", account.Name,
		"balance", account.Balance.String(),
		"converted_balance", account.ConvertedBalance.String())
	return account, nil
}

// --- incomes ---

func (s *LedgerService) CreateIncome(ctx context.Context, userID string, in core.Income) (core.Income, error) {
	normalized, err := s.normalizeIncome(ctx, userID, in)
	if err != nil {
		return core.Income{}, err
	}

	saved, err := s.store.SaveIncome(ctx, userID, normalized)
	if err != nil {
		return core.Income{}, fmt.Errorf("save income: %w", err)
	}

	s.publish(ctx, amqp.NewLedgerEvent(amqp.EntityIncome, amqp.OpCreated, saved.ID, userID, string(saved.Date.Month())))
	return saved, nil
}

func (s *LedgerService) GetIncome(ctx context.Context, userID, id string) (core.Income, error) {
	return s.store.GetIncome(ctx, userID, id)
}

func (s *LedgerService) ListIncomes(ctx context.Context, userID string) ([]core.Income, error) {
	return s.store.ListIncomes(ctx, userID)
}

func (s *LedgerService) UpdateIncome(ctx context.Context, userID string, in core.Income) error {
	if _, err := s.store.GetIncome(ctx, userID, in.ID); err != nil {
		return err
	}

	normalized, err := s.normalizeIncome(ctx, userID, in)
	if err != nil {
		return err
	}
	normalized.ID = in.ID

	if err := s.store.UpdateIncome(ctx, userID, normalized); err != nil {
		return fmt.Errorf("update income: %w", err)
	}

	s.publish(ctx, amqp.NewLedgerEvent(amqp.EntityIncome, amqp.OpUpdated, normalized.ID, userID, string(normalized.Date.Month())))
	return nil
}

func (s *LedgerService) DeleteIncome(ctx context.Context, userID, id string) error {
	in, err := s.store.GetIncome(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteIncome(ctx, userID, id); err != nil {
		return err
	}

	s.publish(ctx, amqp.NewLedgerEvent(amqp.EntityIncome, amqp.OpDeleted, id, userID, string(in.Date.Month())))
	return nil
}

// --- expenses ---

func (s *LedgerService) CreateExpense(ctx context.Context, userID string, ex core.Expense) (core.Expense, error) {
	normalized, err := s.normalizeExpense(ctx, userID, ex)
	if err != nil {
		return core.Expense{}, err
	}

	saved, err := s.store.SaveExpense(ctx, userID, normalized)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.publish(ctx, amqp.NewLedgerEvent(amqp.EntityExpense, amqp.OpCreated, saved.ID, userID, string(saved.Date.Month())))
	return saved, nil
}

func (s *LedgerService) GetExpense(ctx context.Context, userID, id string) (core.Expense, error) {
	return s.store.GetExpense(ctx, userID, id)
}

func (s *LedgerService) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, userID)
}

func (s *LedgerService) UpdateExpense(ctx context.Context, userID string, ex core.Expense) error {
	if _, err := s.store.GetExpense(ctx, userID, ex.ID); err != nil {
		return err
	}

	normalized, err := s.normalizeExpense(ctx, userID, ex)
	if err != nil {
		return err
	}
	normalized.ID = ex.ID

	if err := s.store.UpdateExpense(ctx, userID, normalized); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}

	s.publish(ctx, amqp.NewLedgerEvent(amqp.EntityExpense, amqp.OpUpdated, normalized.ID, userID, string(normalized.Date.Month())))
	return nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, userID, id string) error {
	ex, err := s.store.GetExpense(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, userID, id); err != nil {
		return err
	}

	s.publish(ctx, amqp.NewLedgerEvent(amqp.EntityExpense, amqp.OpDeleted, id, userID, string(ex.Date.Month())))
	return nil
}

// --- rates and settings ---

func (s *LedgerService) RateTable(ctx context.Context, userID string) (core.RateTable, error) {
	return s.store.RateTable(ctx, userID)
}

// UpsertRate changes the table for future normalizations only; amounts
// already converted on stored transactions stay frozen.
func (s *LedgerService) UpsertRate(ctx context.Context, userID, currency string, rate decimal.Decimal) error {
	return s.store.UpsertRate(ctx, userID, currency, rate)
}

func (s *LedgerService) DeleteRate(ctx context.Context, userID, currency string) error {
	return s.store.DeleteRate(ctx, userID, currency)
}

func (s *LedgerService) DistributionSetting(ctx context.Context, userID string, month core.MonthKey) (core.DistributionSetting, error) {
	setting, err := s.store.DistributionSetting(ctx, userID, month)
	if err != nil {
		return core.DistributionSetting{}, err
	}
	if setting == nil {
		return core.DefaultDistribution(), nil
	}
	return *setting, nil
}

func (s *LedgerService) UpsertDistributionSetting(ctx context.Context, userID string, month core.MonthKey, setting core.DistributionSetting) error {
	return s.store.UpsertDistributionSetting(ctx, userID, month, setting)
}

// --- dashboard ---

// Dashboard composes the monthly view: totals, profit split and the
// attention lists, all from the given month's records.
func (s *LedgerService) Dashboard(ctx context.Context, userID string, month core.MonthKey) (core.DashboardSummary, error) {
	accounts, err := s.store.ListAccounts(ctx, userID)
	if err != nil {
		return core.DashboardSummary{}, fmt.Errorf("list accounts: %w", err)
	}
	incomes, err := s.store.ListIncomesByMonth(ctx, userID, month)
	if err != nil {
		return core.DashboardSummary{}, fmt.Errorf("list incomes: %w", err)
	}
	expenses, err := s.store.ListExpensesByMonth(ctx, userID, month)
	if err != nil {
		return core.DashboardSummary{}, fmt.Errorf("list expenses: %w", err)
	}
	setting, err := s.store.DistributionSetting(ctx, userID, month)
	if err != nil {
		return core.DashboardSummary{}, fmt.Errorf("load distribution setting: %w", err)
	}

	return core.BuildDashboard(incomes, expenses, accounts, month, setting), nil
}

func (s *LedgerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}

// --- helpers ---

func (s *LedgerService) normalizeIncome(ctx context.Context, userID string, in core.Income) (core.Income, error) {
	resolver, rates, err := s.loadNormalizationInputs(ctx, userID)
	if err != nil {
		return core.Income{}, err
	}
	return core.NormalizeIncome(in, resolver, rates)
}

func (s *LedgerService) normalizeExpense(ctx context.Context, userID string, ex core.Expense) (core.Expense, error) {
	resolver, rates, err := s.loadNormalizationInputs(ctx, userID)
	if err != nil {
		return core.Expense{}, err
	}
	return core.NormalizeExpense(ex, resolver, rates)
}

func (s *LedgerService) loadNormalizationInputs(ctx context.Context, userID string) (core.AccountCurrencyResolver, core.RateTable, error) {
	accounts, err := s.store.ListAccounts(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("list accounts: %w", err)
	}
	rates, err := s.store.RateTable(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load rate table: %w", err)
	}

	byName := make(map[string]string, len(accounts))
	for _, a := range accounts {
		byName[a.Name] = a.Currency
	}
	resolver := func(name string) (string, error) {
		currency, ok := byName[name]
		if !ok {
			return "", &core.UnknownAccountError{Account: name}
		}
		return currency, nil
	}
	return resolver, rates, nil
}

func (s *LedgerService) publish(ctx context.Context, event *amqp.LedgerEvent) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP publisher not available, skipping event",
			"entity", event.Entity, "op", event.Op, "id", event.ID)
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, event); err != nil {
		// The record is saved locally; the worker catches up from the
		// exported flag.
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"entity", event.Entity, "op", event.Op, "id", event.ID, "error", err)
	}
}

var _ Store = (*storage.SQLiteRepository)(nil)
var _ EventPublisher = (*amqp.Client)(nil)
