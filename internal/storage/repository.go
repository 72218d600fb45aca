package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/core"
	applog "github.com/Philou1985/SLC-APP-BUDGET/internal/log"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// SQLiteRepository persists the tracker's data in a single SQLite file.
// It implements engine.Store and engine.ClearingStore plus the CRUD the
// HTTP layer and the export worker need.
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

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const accountColumns = `id, name, bank, kind, balance_cents, tracked_in_budget, overdraft_alert,
	liquidity, asset_class, term_bucket, billing_day, cycle_start_day, cycle_end_day, settlement_account`

func scanAccount(row interface{ Scan(...any) error }) (core.Account, error) {
	var a core.Account
	var balance int64
	err := row.Scan(&a.ID, &a.Name, &a.Bank, &a.Kind, &balance, &a.TrackedInBudget, &a.OverdraftAlert,
		&a.Liquidity, &a.AssetClass, &a.TermBucket, &a.BillingDay, &a.CycleStartDay, &a.CycleEndDay,
		&a.SettlementAccount)
	if err != nil {
		return core.Account{}, err
	}
	a.Balance = core.Money{Cents: balance}
	return a, nil
}

// LoadAccounts implements engine.Store.
func (r *SQLiteRepository) LoadAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// AccountByName implements engine.ClearingStore.
func (r *SQLiteRepository) AccountByName(ctx context.Context, name string) (core.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE name = ?`, name)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, fmt.Errorf("account %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("query account %q: %w", name, err)
	}
	return a, nil
}

func (r *SQLiteRepository) SaveAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (name, bank, kind, balance_cents, tracked_in_budget, overdraft_alert,
			liquidity, asset_class, term_bucket, billing_day, cycle_start_day, cycle_end_day, settlement_account)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			bank = excluded.bank,
			kind = excluded.kind,
			balance_cents = excluded.balance_cents,
			tracked_in_budget = excluded.tracked_in_budget,
			overdraft_alert = excluded.overdraft_alert,
			liquidity = excluded.liquidity,
			asset_class = excluded.asset_class,
			term_bucket = excluded.term_bucket,
			billing_day = excluded.billing_day,
			cycle_start_day = excluded.cycle_start_day,
			cycle_end_day = excluded.cycle_end_day,
			settlement_account = excluded.settlement_account`,
		a.Name, a.Bank, a.Kind, a.Balance.Cents, a.TrackedInBudget, a.OverdraftAlert,
		a.Liquidity, a.AssetClass, a.TermBucket, a.BillingDay, a.CycleStartDay, a.CycleEndDay,
		a.SettlementAccount)
	if err != nil {
		return core.Account{}, fmt.Errorf("save account %q: %w", a.Name, err)
	}
	if a.ID == 0 {
		if id, err := res.LastInsertId(); err == nil {
			a.ID = id
		}
	}

	slog.InfoContext(ctx, "Account saved", "name", a.Name, "kind", a.Kind)
	return a, nil
}

// UpdateAccountBalance implements engine.ClearingStore.
func (r *SQLiteRepository) UpdateAccountBalance(ctx context.Context, name string, balance core.Money) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET balance_cents = ? WHERE name = ?`, balance.Cents, name)
	if err != nil {
		return fmt.Errorf("update balance %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account %q: %w", name, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeleteAccount(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete account %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account %q: %w", name, ErrNotFound)
	}
	return nil
}

const ruleColumns = `id, active, description, amount_cents, category, account, kind,
	source, destination, periodicity, due_day_spec, start_date, end_date`

// LoadRecurringRules implements engine.Store.
func (r *SQLiteRepository) LoadRecurringRules(ctx context.Context) ([]core.RecurringRule, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+ruleColumns+` FROM recurring_rules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query recurring rules: %w", err)
	}
	defer rows.Close()

	var rules []core.RecurringRule
	for rows.Next() {
		var rule core.RecurringRule
		var amount int64
		var start, end string
		err := rows.Scan(&rule.ID, &rule.Active, &rule.Description, &amount, &rule.Category,
			&rule.Account, &rule.Kind, &rule.Source, &rule.Destination, &rule.Periodicity,
			&rule.DueDaySpec, &start, &end)
		if err != nil {
			return nil, fmt.Errorf("scan recurring rule: %w", err)
		}
		rule.Amount = core.Money{Cents: amount}
		if rule.StartDate, err = core.ParseFlexibleDate(start); err != nil {
			return nil, fmt.Errorf("rule %q start date: %w", rule.ID, err)
		}
		if end != "" {
			if rule.EndDate, err = core.ParseFlexibleDate(end); err != nil {
				return nil, fmt.Errorf("rule %q end date: %w", rule.ID, err)
			}
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *SQLiteRepository) SaveRecurringRule(ctx context.Context, rule core.RecurringRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	end := ""
	if !rule.EndDate.IsZero() {
		end = rule.EndDate.ISO()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_rules (`+ruleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			active = excluded.active,
			description = excluded.description,
			amount_cents = excluded.amount_cents,
			category = excluded.category,
			account = excluded.account,
			kind = excluded.kind,
			source = excluded.source,
			destination = excluded.destination,
			periodicity = excluded.periodicity,
			due_day_spec = excluded.due_day_spec,
			start_date = excluded.start_date,
			end_date = excluded.end_date`,
		rule.ID, rule.Active, rule.Description, rule.Amount.Cents, rule.Category,
		rule.Account, rule.Kind, rule.Source, rule.Destination, rule.Periodicity,
		rule.DueDaySpec, rule.StartDate.ISO(), end)
	if err != nil {
		return fmt.Errorf("save recurring rule %q: %w", rule.ID, err)
	}

	slog.InfoContext(ctx, "Recurring rule saved", applog.FieldRuleID, rule.ID, "periodicity", rule.Periodicity)
	return nil
}

func (r *SQLiteRepository) DeleteRecurringRule(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recurring rule %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("recurring rule %q: %w", id, ErrNotFound)
	}
	return nil
}

const txColumns = `id, month_key, date, description, amount_cents, category, account,
	cleared, kind, transfer_group_id, origin, recurrence_id`

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var t core.Transaction
	var monthKey, date string
	var amount int64
	err := rows.Scan(&t.ID, &monthKey, &date, &t.Description, &amount, &t.Category, &t.Account,
		&t.Cleared, &t.Kind, &t.TransferGroupID, &t.Origin, &t.RecurrenceID)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Amount = core.Money{Cents: amount}
	if t.Date, err = core.ParseFlexibleDate(date); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %q date: %w", t.ID, err)
	}
	return t, nil
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// LoadAllTransactions implements engine.Store.
func (r *SQLiteRepository) LoadAllTransactions(ctx context.Context) ([]core.Transaction, error) {
	return r.queryTransactions(ctx, `SELECT `+txColumns+` FROM transactions ORDER BY date, id`)
}

// TransactionsByID implements engine.ClearingStore.
func (r *SQLiteRepository) TransactionsByID(ctx context.Context, ids []string) ([]core.Transaction, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return r.queryTransactions(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE id IN (`+placeholders+`) ORDER BY date, id`, args...)
}

// MarkTransactionCleared implements engine.ClearingStore.
func (r *SQLiteRepository) MarkTransactionCleared(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE transactions SET cleared = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark transaction cleared %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %q: %w", id, ErrNotFound)
	}
	return nil
}

// LoadMonthlyLedger implements engine.Store. Months that were never
// written come back as an empty ledger.
func (r *SQLiteRepository) LoadMonthlyLedger(ctx context.Context, month core.YearMonth) (*core.MonthlyLedger, error) {
	ledger := &core.MonthlyLedger{Month: month}

	txs, err := r.queryTransactions(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE month_key = ? ORDER BY date, id`, month.Key())
	if err != nil {
		return nil, err
	}
	ledger.Transactions = txs

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, category, planned_cents, type, account, settled
		FROM budget_categories WHERE month_key = ? ORDER BY category`, month.Key())
	if err != nil {
		return nil, fmt.Errorf("query budget categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cat core.BudgetedCategory
		var planned int64
		if err := rows.Scan(&cat.ID, &cat.Category, &planned, &cat.Type, &cat.Account, &cat.Settled); err != nil {
			return nil, fmt.Errorf("scan budget category: %w", err)
		}
		cat.Planned = core.Money{Cents: planned}
		ledger.Categories = append(ledger.Categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range ledger.Categories {
		details, err := r.loadDetails(ctx, ledger.Categories[i].ID)
		if err != nil {
			return nil, err
		}
		ledger.Categories[i].Details = details
	}

	return ledger, nil
}

func (r *SQLiteRepository) loadDetails(ctx context.Context, categoryID int64) ([]core.DailyBudgetDetail, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT day, amount_cents, neutralized FROM budget_details
		WHERE category_id = ? ORDER BY day`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("query budget details: %w", err)
	}
	defer rows.Close()

	var details []core.DailyBudgetDetail
	for rows.Next() {
		var d core.DailyBudgetDetail
		var amount int64
		if err := rows.Scan(&d.Day, &amount, &d.Neutralized); err != nil {
			return nil, fmt.Errorf("scan budget detail: %w", err)
		}
		d.Amount = core.Money{Cents: amount}
		details = append(details, d)
	}
	return details, rows.Err()
}

// SaveMonthlyLedger implements engine.Store. The month is synchronized in
// one database transaction: rows missing from the ledger are deleted,
// everything else is upserted. Export state on existing transaction rows
// survives the upsert.
func (r *SQLiteRepository) SaveMonthlyLedger(ctx context.Context, ledger *core.MonthlyLedger) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	key := ledger.Month.Key()

	keep := make(map[string]bool, len(ledger.Transactions))
	for _, t := range ledger.Transactions {
		keep[t.ID] = true
	}
	rows, err := dbTx.QueryContext(ctx, `SELECT id FROM transactions WHERE month_key = ?`, key)
	if err != nil {
		return fmt.Errorf("query month transactions: %w", err)
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan transaction id: %w", err)
		}
		if !keep[id] {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	for _, id := range stale {
		if _, err := dbTx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete transaction %q: %w", id, err)
		}
	}

	for _, t := range ledger.Transactions {
		_, err := dbTx.ExecContext(ctx, `
			INSERT INTO transactions (`+txColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				date = excluded.date,
				description = excluded.description,
				amount_cents = excluded.amount_cents,
				category = excluded.category,
				account = excluded.account,
				cleared = excluded.cleared,
				kind = excluded.kind,
				transfer_group_id = excluded.transfer_group_id,
				origin = excluded.origin,
				recurrence_id = excluded.recurrence_id`,
			t.ID, key, t.Date.ISO(), t.Description, t.Amount.Cents, t.Category, t.Account,
			t.Cleared, t.Kind, t.TransferGroupID, t.Origin, t.RecurrenceID)
		if err != nil {
			return fmt.Errorf("upsert transaction %q: %w", t.ID, err)
		}
	}

	if err := saveCategories(ctx, dbTx, key, ledger.Categories); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit ledger %s: %w", key, err)
	}

	slog.InfoContext(ctx, "Monthly ledger saved",
		applog.FieldMonth, key,
		"transactions", len(ledger.Transactions),
		"categories", len(ledger.Categories),
		"deleted", len(stale))
	return nil
}

func saveCategories(ctx context.Context, dbTx *sql.Tx, key string, categories []core.BudgetedCategory) error {
	keep := make(map[string]bool, len(categories))
	for _, c := range categories {
		keep[c.Category] = true
	}
	rows, err := dbTx.QueryContext(ctx, `SELECT category FROM budget_categories WHERE month_key = ?`, key)
	if err != nil {
		return fmt.Errorf("query month categories: %w", err)
	}
	var stale []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return fmt.Errorf("scan category name: %w", err)
		}
		if !keep[name] {
			stale = append(stale, name)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	for _, name := range stale {
		if _, err := dbTx.ExecContext(ctx,
			`DELETE FROM budget_categories WHERE month_key = ? AND category = ?`, key, name); err != nil {
			return fmt.Errorf("delete category %q: %w", name, err)
		}
	}

	for _, c := range categories {
		_, err := dbTx.ExecContext(ctx, `
			INSERT INTO budget_categories (month_key, category, planned_cents, type, account, settled)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(month_key, category) DO UPDATE SET
				planned_cents = excluded.planned_cents,
				type = excluded.type,
				account = excluded.account,
				settled = excluded.settled`,
			key, c.Category, c.Planned.Cents, c.Type, c.Account, c.Settled)
		if err != nil {
			return fmt.Errorf("upsert category %q: %w", c.Category, err)
		}

		var id int64
		if err := dbTx.QueryRowContext(ctx,
			`SELECT id FROM budget_categories WHERE month_key = ? AND category = ?`,
			key, c.Category).Scan(&id); err != nil {
			return fmt.Errorf("resolve category id %q: %w", c.Category, err)
		}
		if _, err := dbTx.ExecContext(ctx, `DELETE FROM budget_details WHERE category_id = ?`, id); err != nil {
			return fmt.Errorf("clear details %q: %w", c.Category, err)
		}
		for _, d := range c.Details {
			if _, err := dbTx.ExecContext(ctx, `
				INSERT INTO budget_details (category_id, day, amount_cents, neutralized)
				VALUES (?, ?, ?, ?)`, id, d.Day, d.Amount.Cents, d.Neutralized); err != nil {
				return fmt.Errorf("insert detail %q day %d: %w", c.Category, d.Day, err)
			}
		}
	}
	return nil
}

// PendingExportTransaction is the minimal row the export worker enqueues.
type PendingExportTransaction struct {
	ID    string
	Month string
}

// PendingExportTransactions lists transactions not yet exported, oldest
// first.
func (r *SQLiteRepository) PendingExportTransactions(ctx context.Context, limit int) ([]PendingExportTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, month_key FROM transactions
		WHERE exported = 0 ORDER BY date, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending export: %w", err)
	}
	defer rows.Close()

	var pending []PendingExportTransaction
	for rows.Next() {
		var p PendingExportTransaction
		if err := rows.Scan(&p.ID, &p.Month); err != nil {
			return nil, fmt.Errorf("scan pending export: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

func (r *SQLiteRepository) TransactionByID(ctx context.Context, id string) (core.Transaction, error) {
	txs, err := r.TransactionsByID(ctx, []string{id})
	if err != nil {
		return core.Transaction{}, err
	}
	if len(txs) == 0 {
		return core.Transaction{}, fmt.Errorf("transaction %q: %w", id, ErrNotFound)
	}
	return txs[0], nil
}

// MarkExported marks a transaction as successfully exported.
func (r *SQLiteRepository) MarkExported(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET exported = 1, export_error = 0 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark exported %q: %w", id, err)
	}
	slog.InfoContext(ctx, "Transaction marked as exported", applog.FieldTransactionID, id)
	return nil
}

// MarkExportError flags a transaction whose export attempt failed.
func (r *SQLiteRepository) MarkExportError(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET export_error = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark export error %q: %w", id, err)
	}
	slog.WarnContext(ctx, "Transaction marked with export error", applog.FieldTransactionID, id)
	return nil
}

// SaveSnapshot stores a point-in-time capture of all account balances.
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, snap core.Snapshot) (core.Snapshot, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	res, err := dbTx.ExecContext(ctx, `
		INSERT INTO snapshots (taken_at, total_assets_cents, total_liabilities_cents, net_worth_cents)
		VALUES (?, ?, ?, ?)`,
		snap.TakenAt.ISO(), snap.TotalAssets.Cents, snap.TotalLiabilities.Cents, snap.NetWorth.Cents)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}
	snap.ID, err = res.LastInsertId()
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("snapshot id: %w", err)
	}

	for _, line := range snap.Balances {
		if _, err := dbTx.ExecContext(ctx, `
			INSERT INTO snapshot_lines (snapshot_id, account, balance_cents)
			VALUES (?, ?, ?)`, snap.ID, line.Account, line.Balance.Cents); err != nil {
			return core.Snapshot{}, fmt.Errorf("insert snapshot line %q: %w", line.Account, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return core.Snapshot{}, fmt.Errorf("commit snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot saved",
		"snapshot_id", snap.ID,
		"taken_at", snap.TakenAt.ISO(),
		"net_worth_cents", snap.NetWorth.Cents)
	return snap, nil
}

// ListSnapshots returns all snapshots with their balance lines, newest
// first.
func (r *SQLiteRepository) ListSnapshots(ctx context.Context) ([]core.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, taken_at, total_assets_cents, total_liabilities_cents, net_worth_cents
		FROM snapshots ORDER BY taken_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []core.Snapshot
	for rows.Next() {
		var s core.Snapshot
		var takenAt string
		var assets, liabilities, net int64
		if err := rows.Scan(&s.ID, &takenAt, &assets, &liabilities, &net); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if s.TakenAt, err = core.ParseFlexibleDate(takenAt); err != nil {
			return nil, fmt.Errorf("snapshot %d date: %w", s.ID, err)
		}
		s.TotalAssets = core.Money{Cents: assets}
		s.TotalLiabilities = core.Money{Cents: liabilities}
		s.NetWorth = core.Money{Cents: net}
		snaps = append(snaps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range snaps {
		lines, err := r.loadSnapshotLines(ctx, snaps[i].ID)
		if err != nil {
			return nil, err
		}
		snaps[i].Balances = lines
	}
	return snaps, nil
}

func (r *SQLiteRepository) loadSnapshotLines(ctx context.Context, snapshotID int64) ([]core.SnapshotLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT account, balance_cents FROM snapshot_lines
		WHERE snapshot_id = ? ORDER BY account`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("query snapshot lines: %w", err)
	}
	defer rows.Close()

	var lines []core.SnapshotLine
	for rows.Next() {
		var line core.SnapshotLine
		var balance int64
		if err := rows.Scan(&line.Account, &balance); err != nil {
			return nil, fmt.Errorf("scan snapshot line: %w", err)
		}
		line.Balance = core.Money{Cents: balance}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
