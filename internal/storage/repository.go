package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"budget/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row lookup matches nothing.
var ErrNotFound = errors.New("not found")

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
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

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateRule validates and persists a recurrence rule, returning its ID.
func (r *SQLiteRepository) CreateRule(ctx context.Context, rule core.RecurrenceRule) (int64, error) {
	if err := rule.Validate(); err != nil {
		return 0, err
	}

	row, err := r.queries.CreateRule(ctx, CreateRuleParams{
		Label:            rule.Label,
		Kind:             string(rule.Kind),
		Flow:             string(rule.Flow),
		AnchorDate:       rule.Anchor.String(),
		DayOfMonth:       nullDay(rule.DayOfMonth),
		FirstDayOfMonth:  nullDay(rule.FirstDayOfMonth),
		SecondDayOfMonth: nullDay(rule.SecondDayOfMonth),
		AmountCents:      rule.Amount.Cents,
		CategoryID:       nullID(rule.CategoryID),
	})
	if err != nil {
		return 0, fmt.Errorf("create rule: %w", err)
	}

	slog.InfoContext(ctx, "Rule saved to SQLite",
		"id", row.ID,
		"label", row.Label,
		"kind", row.Kind,
		"flow", row.Flow,
		"amount_cents", row.AmountCents)

	return row.ID, nil
}

func (r *SQLiteRepository) GetRule(ctx context.Context, id int64) (core.RecurrenceRule, error) {
	row, err := r.queries.GetRule(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurrenceRule{}, fmt.Errorf("rule %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.RecurrenceRule{}, fmt.Errorf("get rule: %w", err)
	}
	return ruleFromRow(row)
}

func (r *SQLiteRepository) ListRules(ctx context.Context) ([]core.RecurrenceRule, error) {
	rows, err := r.queries.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}

	rules := make([]core.RecurrenceRule, 0, len(rows))
	for _, row := range rows {
		rule, err := ruleFromRow(row)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func (r *SQLiteRepository) ListRulesByFlow(ctx context.Context, flow core.FlowType) ([]core.RecurrenceRule, error) {
	rows, err := r.queries.ListRulesByFlow(ctx, string(flow))
	if err != nil {
		return nil, fmt.Errorf("list rules by flow: %w", err)
	}

	rules := make([]core.RecurrenceRule, 0, len(rows))
	for _, row := range rows {
		rule, err := ruleFromRow(row)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func (r *SQLiteRepository) UpdateRule(ctx context.Context, rule core.RecurrenceRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	if _, err := r.GetRule(ctx, rule.ID); err != nil {
		return err
	}

	err := r.queries.UpdateRule(ctx, UpdateRuleParams{
		Label:            rule.Label,
		Kind:             string(rule.Kind),
		Flow:             string(rule.Flow),
		AnchorDate:       rule.Anchor.String(),
		DayOfMonth:       nullDay(rule.DayOfMonth),
		FirstDayOfMonth:  nullDay(rule.FirstDayOfMonth),
		SecondDayOfMonth: nullDay(rule.SecondDayOfMonth),
		AmountCents:      rule.Amount.Cents,
		CategoryID:       nullID(rule.CategoryID),
		ID:               rule.ID,
	})
	if err != nil {
		return fmt.Errorf("update rule: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteRule(ctx context.Context, id int64) error {
	if _, err := r.GetRule(ctx, id); err != nil {
		return err
	}
	if err := r.queries.DeleteRule(ctx, id); err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	return nil
}

// CreateTransaction persists a posted transaction, returning its ID.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Flow.Validate(); err != nil {
		return 0, err
	}
	if err := tx.Amount.Validate(); err != nil {
		return 0, err
	}
	if tx.Date.IsZero() {
		return 0, fmt.Errorf("transaction date is required")
	}

	row, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		TxDate:      tx.Date.String(),
		AmountCents: tx.Amount.Cents,
		Flow:        string(tx.Flow),
		CategoryID:  nullID(tx.CategoryID),
		Description: tx.Description,
	})
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", row.ID,
		"description", row.Description,
		"amount_cents", row.AmountCents,
		"date", row.TxDate)

	return row.ID, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return transactionFromRow(row)
}

// ListTransactionsByRange implements services.TransactionLister. Both bounds
// are inclusive; the TEXT date encoding sorts lexicographically.
func (r *SQLiteRepository) ListTransactionsByRange(ctx context.Context, from, to core.Date) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactionsByDateRange(ctx, ListTransactionsByDateRangeParams{
		FromDate: from.String(),
		ToDate:   to.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	txs := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := transactionFromRow(row)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	if _, err := r.GetTransaction(ctx, id); err != nil {
		return err
	}
	if err := r.queries.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// MarkSynced marks a transaction as exported to the external ledger.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if err := r.queries.MarkTransactionSynced(ctx, id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}

	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	categories := make([]core.Category, len(rows))
	for i, row := range rows {
		categories[i] = core.Category{ID: row.ID, Name: row.Name}
	}
	return categories, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	row, err := r.queries.GetCategory(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return core.Category{ID: row.ID, Name: row.Name}, nil
}

func ruleFromRow(row RecurrenceRuleRow) (core.RecurrenceRule, error) {
	anchor, err := parseDate(row.AnchorDate)
	if err != nil {
		return core.RecurrenceRule{}, fmt.Errorf("rule %d anchor date: %w", row.ID, err)
	}

	return core.RecurrenceRule{
		ID:               row.ID,
		Label:            row.Label,
		Kind:             core.RuleKind(row.Kind),
		Flow:             core.FlowType(row.Flow),
		Anchor:           anchor,
		DayOfMonth:       int(row.DayOfMonth.Int64),
		FirstDayOfMonth:  int(row.FirstDayOfMonth.Int64),
		SecondDayOfMonth: int(row.SecondDayOfMonth.Int64),
		Amount:           core.Money{Cents: row.AmountCents},
		CategoryID:       row.CategoryID.Int64,
	}, nil
}

func transactionFromRow(row TransactionRow) (core.Transaction, error) {
	date, err := parseDate(row.TxDate)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d date: %w", row.ID, err)
	}

	return core.Transaction{
		ID:          row.ID,
		Date:        date,
		Amount:      core.Money{Cents: row.AmountCents},
		Flow:        core.FlowType(row.Flow),
		CategoryID:  row.CategoryID.Int64,
		Description: row.Description,
	}, nil
}

func parseDate(s string) (core.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}, err
	}
	return core.DateOf(t), nil
}

func nullDay(d int) sql.NullInt64 {
	if d == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(d), Valid: true}
}

func nullID(id int64) sql.NullInt64 {
	if id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}
