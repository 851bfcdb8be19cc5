// Package storage persists the ledger's collections in SQLite. All
// queries are scoped by user; decimals travel as their canonical string
// form and come back exact.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hisab/internal/core"

	_ "modernc.org/sqlite"
)

// ledgerSchema holds the versioned DDL for the five ledger tables:
// accounts, incomes, expenses, exchange_rates, distribution_settings.
//
//go:embed migrations/*.sql
var ledgerSchema embed.FS

// ErrNotFound is returned when a record does not exist for the given
// user and id.
var ErrNotFound = errors.New("record not found")

// ErrBaseCurrencyFixed is returned on attempts to change or remove the
// base currency's rate.
var ErrBaseCurrencyFixed = errors.New("base currency rate is fixed at 1")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateLedgerSchema(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ledger schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// migrateLedgerSchema brings the database at dbPath up to the current
// schema version on a dedicated connection.
func migrateLedgerSchema(dbPath string) error {
	schemaDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open schema connection: %w", err)
	}
	defer schemaDB.Close()

	driver, err := migratesqlite.WithInstance(schemaDB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite migrate driver: %w", err)
	}
	src, err := iofs.New(ledgerSchema, "migrations")
	if err != nil {
		return fmt.Errorf("read embedded schema: %w", err)
	}

	m, err := migrate.NewWithInstance("ledger-schema", src, "hisab", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- accounts ---

func (r *SQLiteRepository) CreateAccount(ctx context.Context, userID string, a core.Account) (core.Account, error) {
	a.ID = uuid.NewString()
	a.LastUpdated = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, name, currency, balance, converted_balance, notes, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, userID, a.Name, a.Currency, a.Balance.String(), a.ConvertedBalance.String(), a.Notes, a.LastUpdated)
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}

	slog.InfoContext(ctx, "Account created", "id", a.ID, "name", a.Name, "currency", a.Currency)
	return a, nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, userID, id string) (core.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, currency, balance, converted_balance, notes, last_updated
		FROM accounts WHERE user_id = ? AND id = ?`, userID, id)
	return scanAccount(row)
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, currency, balance, converted_balance, notes, last_updated
		FROM accounts WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *SQLiteRepository) UpdateAccount(ctx context.Context, userID string, a core.Account) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET name = ?, currency = ?, balance = ?, converted_balance = ?, notes = ?, last_updated = ?
		WHERE user_id = ? AND id = ?`,
		a.Name, a.Currency, a.Balance.String(), a.ConvertedBalance.String(), a.Notes, time.Now().UTC(), userID, a.ID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return requireRow(res)
}

// DeleteAccount removes the account only. Historical transactions keep
// the account name as a plain string and stay untouched.
func (r *SQLiteRepository) DeleteAccount(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return requireRow(res)
}

// --- incomes ---

func (r *SQLiteRepository) SaveIncome(ctx context.Context, userID string, in core.Income) (core.Income, error) {
	in.ID = uuid.NewString()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO incomes (id, user_id, date, original_amount, currency, received_amount, status,
			account, category, description, client_name, notes, due_date,
			manual_rate, manual_converted_amount,
			converted_amount, original_converted_amount, split_rate_used, missing_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, userID, in.Date.String(), in.OriginalAmount.String(), in.Currency,
		in.ReceivedAmount.String(), string(in.Status),
		in.Account, in.Category, in.Description, in.ClientName, in.Notes, nullDate(in.DueDate),
		nullDecimal(in.ManualRate), nullDecimal(in.ManualConvertedAmount),
		in.ConvertedAmount.String(), in.OriginalConvertedAmount.String(), in.SplitRateUsed.String(),
		boolInt(in.MissingRate))
	if err != nil {
		return core.Income{}, fmt.Errorf("insert income: %w", err)
	}

	slog.InfoContext(ctx, "Income saved",
		"id", in.ID,
		"date", in.Date.String(),
		"status", string(in.Status),
		"converted_amount", in.ConvertedAmount.String())
	return in, nil
}

func (r *SQLiteRepository) GetIncome(ctx context.Context, userID, id string) (core.Income, error) {
	row := r.db.QueryRowContext(ctx, incomeSelect+` WHERE user_id = ? AND id = ?`, userID, id)
	return scanIncome(row)
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context, userID string) ([]core.Income, error) {
	return r.queryIncomes(ctx, incomeSelect+` WHERE user_id = ? ORDER BY date DESC, id`, userID)
}

// ListIncomesByMonth filters on the month prefix of the stored date, so
// a record belongs to exactly one month.
func (r *SQLiteRepository) ListIncomesByMonth(ctx context.Context, userID string, month core.MonthKey) ([]core.Income, error) {
	return r.queryIncomes(ctx, incomeSelect+` WHERE user_id = ? AND date LIKE ? ORDER BY date DESC, id`,
		userID, string(month)+"-%")
}

func (r *SQLiteRepository) UpdateIncome(ctx context.Context, userID string, in core.Income) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE incomes SET date = ?, original_amount = ?, currency = ?, received_amount = ?, status = ?,
			account = ?, category = ?, description = ?, client_name = ?, notes = ?, due_date = ?,
			manual_rate = ?, manual_converted_amount = ?,
			converted_amount = ?, original_converted_amount = ?, split_rate_used = ?, missing_rate = ?,
			exported = 0
		WHERE user_id = ? AND id = ?`,
		in.Date.String(), in.OriginalAmount.String(), in.Currency, in.ReceivedAmount.String(), string(in.Status),
		in.Account, in.Category, in.Description, in.ClientName, in.Notes, nullDate(in.DueDate),
		nullDecimal(in.ManualRate), nullDecimal(in.ManualConvertedAmount),
		in.ConvertedAmount.String(), in.OriginalConvertedAmount.String(), in.SplitRateUsed.String(),
		boolInt(in.MissingRate),
		userID, in.ID)
	if err != nil {
		return fmt.Errorf("update income: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM incomes WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	return requireRow(res)
}

// --- expenses ---

func (r *SQLiteRepository) SaveExpense(ctx context.Context, userID string, ex core.Expense) (core.Expense, error) {
	ex.ID = uuid.NewString()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, user_id, date, amount, currency, category, description, payment_status,
			account, notes, due_date, manual_rate, manual_converted_amount,
			converted_amount, rate_used, missing_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ex.ID, userID, ex.Date.String(), ex.Amount.String(), ex.Currency, ex.Category, ex.Description,
		string(ex.PaymentStatus), ex.Account, ex.Notes, nullDate(ex.DueDate),
		nullDecimal(ex.ManualRate), nullDecimal(ex.ManualConvertedAmount),
		ex.ConvertedAmount.String(), ex.RateUsed.String(), boolInt(ex.MissingRate))
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", ex.ID,
		"date", ex.Date.String(),
		"payment_status", string(ex.PaymentStatus),
		"converted_amount", ex.ConvertedAmount.String())
	return ex, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, userID, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, expenseSelect+` WHERE user_id = ? AND id = ?`, userID, id)
	return scanExpense(row)
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	return r.queryExpenses(ctx, expenseSelect+` WHERE user_id = ? ORDER BY date DESC, id`, userID)
}

func (r *SQLiteRepository) ListExpensesByMonth(ctx context.Context, userID string, month core.MonthKey) ([]core.Expense, error) {
	return r.queryExpenses(ctx, expenseSelect+` WHERE user_id = ? AND date LIKE ? ORDER BY date DESC, id`,
		userID, string(month)+"-%")
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, userID string, ex core.Expense) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET date = ?, amount = ?, currency = ?, category = ?, description = ?, payment_status = ?,
			account = ?, notes = ?, due_date = ?, manual_rate = ?, manual_converted_amount = ?,
			converted_amount = ?, rate_used = ?, missing_rate = ?, exported = 0
		WHERE user_id = ? AND id = ?`,
		ex.Date.String(), ex.Amount.String(), ex.Currency, ex.Category, ex.Description, string(ex.PaymentStatus),
		ex.Account, ex.Notes, nullDate(ex.DueDate), nullDecimal(ex.ManualRate), nullDecimal(ex.ManualConvertedAmount),
		ex.ConvertedAmount.String(), ex.RateUsed.String(), boolInt(ex.MissingRate),
		userID, ex.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(res)
}

// --- exchange rates ---

// RateTable loads the user's rates. The base currency is present with
// rate 1 whether or not a row exists for it.
func (r *SQLiteRepository) RateTable(ctx context.Context, userID string) (core.RateTable, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT currency, rate FROM exchange_rates WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list exchange rates: %w", err)
	}
	defer rows.Close()

	table := core.RateTable{core.BaseCurrency: decimal.NewFromInt(1)}
	for rows.Next() {
		var currency, rate string
		if err := rows.Scan(&currency, &rate); err != nil {
			return nil, fmt.Errorf("scan exchange rate: %w", err)
		}
		d, err := decimal.NewFromString(rate)
		if err != nil {
			return nil, fmt.Errorf("stored rate for %s: %w", currency, err)
		}
		table[currency] = d
	}
	return table, rows.Err()
}

func (r *SQLiteRepository) UpsertRate(ctx context.Context, userID, currency string, rate decimal.Decimal) error {
	if currency == core.BaseCurrency && !rate.Equal(decimal.NewFromInt(1)) {
		return ErrBaseCurrencyFixed
	}
	if !rate.IsPositive() {
		return fmt.Errorf("rate for %s must be positive, got %s", currency, rate)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO exchange_rates (user_id, currency, rate, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, currency) DO UPDATE SET rate = excluded.rate, updated_at = excluded.updated_at`,
		userID, currency, rate.String(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert exchange rate: %w", err)
	}

	slog.InfoContext(ctx, "Exchange rate upserted", "currency", currency, "rate", rate.String())
	return nil
}

func (r *SQLiteRepository) DeleteRate(ctx context.Context, userID, currency string) error {
	if currency == core.BaseCurrency {
		return ErrBaseCurrencyFixed
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM exchange_rates WHERE user_id = ? AND currency = ?`, userID, currency)
	if err != nil {
		return fmt.Errorf("delete exchange rate: %w", err)
	}
	return requireRow(res)
}

// --- distribution settings ---

// DistributionSetting returns nil (not an error) when no custom split
// exists for the month; callers fall back to the default.
func (r *SQLiteRepository) DistributionSetting(ctx context.Context, userID string, month core.MonthKey) (*core.DistributionSetting, error) {
	year, m := month.Parts()
	var pct string
	err := r.db.QueryRowContext(ctx, `
		SELECT company_percent FROM distribution_settings WHERE user_id = ? AND year = ? AND month = ?`,
		userID, year, m).Scan(&pct)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get distribution setting: %w", err)
	}

	d, err := decimal.NewFromString(pct)
	if err != nil {
		return nil, fmt.Errorf("stored company percent: %w", err)
	}
	return &core.DistributionSetting{CompanyPercent: d}, nil
}

func (r *SQLiteRepository) UpsertDistributionSetting(ctx context.Context, userID string, month core.MonthKey, setting core.DistributionSetting) error {
	if err := setting.Validate(); err != nil {
		return err
	}

	year, m := month.Parts()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO distribution_settings (user_id, year, month, company_percent, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, year, month) DO UPDATE SET company_percent = excluded.company_percent, updated_at = excluded.updated_at`,
		userID, year, m, setting.CompanyPercent.String(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert distribution setting: %w", err)
	}

	slog.InfoContext(ctx, "Distribution setting upserted",
		"month", string(month), "company_percent", setting.CompanyPercent.String())
	return nil
}

// --- export queue ---

// ExportRecord identifies a transaction awaiting export.
type ExportRecord struct {
	Entity string // "income" or "expense"
	ID     string
	UserID string
}

// PendingExport lists transactions not yet exported, oldest first.
func (r *SQLiteRepository) PendingExport(ctx context.Context, limit int) ([]ExportRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT 'income' AS entity, id, user_id, created_at FROM incomes WHERE exported = 0
		UNION ALL
		SELECT 'expense' AS entity, id, user_id, created_at FROM expenses WHERE exported = 0
		ORDER BY created_at LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending export: %w", err)
	}
	defer rows.Close()

	var pending []ExportRecord
	for rows.Next() {
		var rec ExportRecord
		var createdAt time.Time
		if err := rows.Scan(&rec.Entity, &rec.ID, &rec.UserID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan pending export: %w", err)
		}
		pending = append(pending, rec)
	}
	return pending, rows.Err()
}

func (r *SQLiteRepository) MarkExported(ctx context.Context, entity, id string) error {
	table := "incomes"
	if entity == "expense" {
		table = "expenses"
	}
	_, err := r.db.ExecContext(ctx, `UPDATE `+table+` SET exported = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark %s exported: %w", entity, err)
	}
	return nil
}

// --- scanning ---

const incomeSelect = `
	SELECT id, date, original_amount, currency, received_amount, status,
		account, category, description, client_name, notes, due_date,
		manual_rate, manual_converted_amount,
		converted_amount, original_converted_amount, split_rate_used, missing_rate
	FROM incomes`

const expenseSelect = `
	SELECT id, date, amount, currency, category, description, payment_status,
		account, notes, due_date, manual_rate, manual_converted_amount,
		converted_amount, rate_used, missing_rate
	FROM expenses`

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (core.Account, error) {
	var a core.Account
	var balance, converted string
	err := s.Scan(&a.ID, &a.Name, &a.Currency, &balance, &converted, &a.Notes, &a.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("scan account: %w", err)
	}
	if a.Balance, err = decimal.NewFromString(balance); err != nil {
		return core.Account{}, fmt.Errorf("stored balance: %w", err)
	}
	if a.ConvertedBalance, err = decimal.NewFromString(converted); err != nil {
		return core.Account{}, fmt.Errorf("stored converted balance: %w", err)
	}
	return a, nil
}

func scanIncome(s scanner) (core.Income, error) {
	var in core.Income
	var date string
	var status string
	var original, received, converted, originalConverted, rateUsed string
	var dueDate, manualRate, manualConverted sql.NullString
	var missingRate int

	err := s.Scan(&in.ID, &date, &original, &in.Currency, &received, &status,
		&in.Account, &in.Category, &in.Description, &in.ClientName, &in.Notes, &dueDate,
		&manualRate, &manualConverted,
		&converted, &originalConverted, &rateUsed, &missingRate)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Income{}, ErrNotFound
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("scan income: %w", err)
	}

	in.Status = core.IncomeStatus(status)
	in.MissingRate = missingRate != 0
	if in.Date, err = core.ParseDate(date); err != nil {
		return core.Income{}, fmt.Errorf("stored income date %q: %w", date, err)
	}
	if dueDate.Valid && dueDate.String != "" {
		if in.DueDate, err = core.ParseDate(dueDate.String); err != nil {
			return core.Income{}, fmt.Errorf("stored due date %q: %w", dueDate.String, err)
		}
	}
	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&in.OriginalAmount, original},
		{&in.ReceivedAmount, received},
		{&in.ConvertedAmount, converted},
		{&in.OriginalConvertedAmount, originalConverted},
		{&in.SplitRateUsed, rateUsed},
	}
	for _, f := range fields {
		if *f.dst, err = decimal.NewFromString(f.src); err != nil {
			return core.Income{}, fmt.Errorf("stored income amount: %w", err)
		}
	}
	in.SplitAmount = in.ConvertedAmount
	if in.ManualRate, err = decimalPtr(manualRate); err != nil {
		return core.Income{}, err
	}
	if in.ManualConvertedAmount, err = decimalPtr(manualConverted); err != nil {
		return core.Income{}, err
	}
	return in, nil
}

func scanExpense(s scanner) (core.Expense, error) {
	var ex core.Expense
	var date, status string
	var amount, converted, rateUsed string
	var dueDate, manualRate, manualConverted sql.NullString
	var missingRate int

	err := s.Scan(&ex.ID, &date, &amount, &ex.Currency, &ex.Category, &ex.Description, &status,
		&ex.Account, &ex.Notes, &dueDate, &manualRate, &manualConverted,
		&converted, &rateUsed, &missingRate)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}

	ex.PaymentStatus = core.PaymentStatus(status)
	ex.MissingRate = missingRate != 0
	if ex.Date, err = core.ParseDate(date); err != nil {
		return core.Expense{}, fmt.Errorf("stored expense date %q: %w", date, err)
	}
	if dueDate.Valid && dueDate.String != "" {
		if ex.DueDate, err = core.ParseDate(dueDate.String); err != nil {
			return core.Expense{}, fmt.Errorf("stored due date %q: %w", dueDate.String, err)
		}
	}
	if ex.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Expense{}, fmt.Errorf("stored expense amount: %w", err)
	}
	if ex.ConvertedAmount, err = decimal.NewFromString(converted); err != nil {
		return core.Expense{}, fmt.Errorf("stored converted amount: %w", err)
	}
	if ex.RateUsed, err = decimal.NewFromString(rateUsed); err != nil {
		return core.Expense{}, fmt.Errorf("stored rate used: %w", err)
	}
	if ex.ManualRate, err = decimalPtr(manualRate); err != nil {
		return core.Expense{}, err
	}
	if ex.ManualConvertedAmount, err = decimalPtr(manualConverted); err != nil {
		return core.Expense{}, err
	}
	return ex, nil
}

func (r *SQLiteRepository) queryIncomes(ctx context.Context, query string, args ...any) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var incomes []core.Income
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}
		incomes = append(incomes, in)
	}
	return incomes, rows.Err()
}

func (r *SQLiteRepository) queryExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		ex, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, ex)
	}
	return expenses, rows.Err()
}

func nullDate(d core.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

func nullDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func decimalPtr(s sql.NullString) (*decimal.Decimal, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return nil, fmt.Errorf("stored decimal: %w", err)
	}
	return &d, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
