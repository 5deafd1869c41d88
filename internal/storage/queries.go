package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// RecurrenceRuleRow is the recurrence_rules table shape. Dates are TEXT in
// 2006-01-02 form; day columns are NULL for kinds that do not use them.
type RecurrenceRuleRow struct {
	ID               int64
	Label            string
	Kind             string
	Flow             string
	AnchorDate       string
	DayOfMonth       sql.NullInt64
	FirstDayOfMonth  sql.NullInt64
	SecondDayOfMonth sql.NullInt64
	AmountCents      int64
	CategoryID       sql.NullInt64
	CreatedAt        sql.NullTime
}

type TransactionRow struct {
	ID          int64
	TxDate      string
	AmountCents int64
	Flow        string
	CategoryID  sql.NullInt64
	Description string
	Synced      int64
	CreatedAt   sql.NullTime
}

type CategoryRow struct {
	ID   int64
	Name string
}

const createRule = `-- name: CreateRule :one
INSERT INTO recurrence_rules (
    label, kind, flow, anchor_date, day_of_month, first_day_of_month, second_day_of_month, amount_cents, category_id
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, label, kind, flow, anchor_date, day_of_month, first_day_of_month, second_day_of_month, amount_cents, category_id, created_at
`

type CreateRuleParams struct {
	Label            string
	Kind             string
	Flow             string
	AnchorDate       string
	DayOfMonth       sql.NullInt64
	FirstDayOfMonth  sql.NullInt64
	SecondDayOfMonth sql.NullInt64
	AmountCents      int64
	CategoryID       sql.NullInt64
}

func (q *Queries) CreateRule(ctx context.Context, arg CreateRuleParams) (RecurrenceRuleRow, error) {
	row := q.db.QueryRowContext(ctx, createRule,
		arg.Label,
		arg.Kind,
		arg.Flow,
		arg.AnchorDate,
		arg.DayOfMonth,
		arg.FirstDayOfMonth,
		arg.SecondDayOfMonth,
		arg.AmountCents,
		arg.CategoryID,
	)
	var i RecurrenceRuleRow
	err := row.Scan(
		&i.ID,
		&i.Label,
		&i.Kind,
		&i.Flow,
		&i.AnchorDate,
		&i.DayOfMonth,
		&i.FirstDayOfMonth,
		&i.SecondDayOfMonth,
		&i.AmountCents,
		&i.CategoryID,
		&i.CreatedAt,
	)
	return i, err
}

const getRule = `-- name: GetRule :one
SELECT id, label, kind, flow, anchor_date, day_of_month, first_day_of_month, second_day_of_month, amount_cents, category_id, created_at
FROM recurrence_rules
WHERE id = ?
`

func (q *Queries) GetRule(ctx context.Context, id int64) (RecurrenceRuleRow, error) {
	row := q.db.QueryRowContext(ctx, getRule, id)
	var i RecurrenceRuleRow
	err := row.Scan(
		&i.ID,
		&i.Label,
		&i.Kind,
		&i.Flow,
		&i.AnchorDate,
		&i.DayOfMonth,
		&i.FirstDayOfMonth,
		&i.SecondDayOfMonth,
		&i.AmountCents,
		&i.CategoryID,
		&i.CreatedAt,
	)
	return i, err
}

const listRules = `-- name: ListRules :many
SELECT id, label, kind, flow, anchor_date, day_of_month, first_day_of_month, second_day_of_month, amount_cents, category_id, created_at
FROM recurrence_rules
ORDER BY id
`

func (q *Queries) ListRules(ctx context.Context) ([]RecurrenceRuleRow, error) {
	rows, err := q.db.QueryContext(ctx, listRules)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RecurrenceRuleRow
	for rows.Next() {
		var i RecurrenceRuleRow
		if err := rows.Scan(
			&i.ID,
			&i.Label,
			&i.Kind,
			&i.Flow,
			&i.AnchorDate,
			&i.DayOfMonth,
			&i.FirstDayOfMonth,
			&i.SecondDayOfMonth,
			&i.AmountCents,
			&i.CategoryID,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listRulesByFlow = `-- name: ListRulesByFlow :many
SELECT id, label, kind, flow, anchor_date, day_of_month, first_day_of_month, second_day_of_month, amount_cents, category_id, created_at
FROM recurrence_rules
WHERE flow = ?
ORDER BY id
`

func (q *Queries) ListRulesByFlow(ctx context.Context, flow string) ([]RecurrenceRuleRow, error) {
	rows, err := q.db.QueryContext(ctx, listRulesByFlow, flow)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RecurrenceRuleRow
	for rows.Next() {
		var i RecurrenceRuleRow
		if err := rows.Scan(
			&i.ID,
			&i.Label,
			&i.Kind,
			&i.Flow,
			&i.AnchorDate,
			&i.DayOfMonth,
			&i.FirstDayOfMonth,
			&i.SecondDayOfMonth,
			&i.AmountCents,
			&i.CategoryID,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateRule = `-- name: UpdateRule :exec
UPDATE recurrence_rules
SET label = ?, kind = ?, flow = ?, anchor_date = ?, day_of_month = ?, first_day_of_month = ?, second_day_of_month = ?, amount_cents = ?, category_id = ?
WHERE id = ?
`

type UpdateRuleParams struct {
	Label            string
	Kind             string
	Flow             string
	AnchorDate       string
	DayOfMonth       sql.NullInt64
	FirstDayOfMonth  sql.NullInt64
	SecondDayOfMonth sql.NullInt64
	AmountCents      int64
	CategoryID       sql.NullInt64
	ID               int64
}

func (q *Queries) UpdateRule(ctx context.Context, arg UpdateRuleParams) error {
	_, err := q.db.ExecContext(ctx, updateRule,
		arg.Label,
		arg.Kind,
		arg.Flow,
		arg.AnchorDate,
		arg.DayOfMonth,
		arg.FirstDayOfMonth,
		arg.SecondDayOfMonth,
		arg.AmountCents,
		arg.CategoryID,
		arg.ID,
	)
	return err
}

const deleteRule = `-- name: DeleteRule :exec
DELETE FROM recurrence_rules
WHERE id = ?
`

func (q *Queries) DeleteRule(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteRule, id)
	return err
}

const createTransaction = `-- name: CreateTransaction :one
INSERT INTO transactions (
    tx_date, amount_cents, flow, category_id, description
) VALUES (?, ?, ?, ?, ?)
RETURNING id, tx_date, amount_cents, flow, category_id, description, synced, created_at
`

type CreateTransactionParams struct {
	TxDate      string
	AmountCents int64
	Flow        string
	CategoryID  sql.NullInt64
	Description string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.TxDate,
		arg.AmountCents,
		arg.Flow,
		arg.CategoryID,
		arg.Description,
	)
	var i TransactionRow
	err := row.Scan(
		&i.ID,
		&i.TxDate,
		&i.AmountCents,
		&i.Flow,
		&i.CategoryID,
		&i.Description,
		&i.Synced,
		&i.CreatedAt,
	)
	return i, err
}

const getTransaction = `-- name: GetTransaction :one
SELECT id, tx_date, amount_cents, flow, category_id, description, synced, created_at
FROM transactions
WHERE id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id)
	var i TransactionRow
	err := row.Scan(
		&i.ID,
		&i.TxDate,
		&i.AmountCents,
		&i.Flow,
		&i.CategoryID,
		&i.Description,
		&i.Synced,
		&i.CreatedAt,
	)
	return i, err
}

const listTransactionsByDateRange = `-- name: ListTransactionsByDateRange :many
SELECT id, tx_date, amount_cents, flow, category_id, description, synced, created_at
FROM transactions
WHERE tx_date >= ? AND tx_date <= ?
ORDER BY tx_date, id
`

type ListTransactionsByDateRangeParams struct {
	FromDate string
	ToDate   string
}

func (q *Queries) ListTransactionsByDateRange(ctx context.Context, arg ListTransactionsByDateRangeParams) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsByDateRange, arg.FromDate, arg.ToDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(
			&i.ID,
			&i.TxDate,
			&i.AmountCents,
			&i.Flow,
			&i.CategoryID,
			&i.Description,
			&i.Synced,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteTransaction = `-- name: DeleteTransaction :exec
DELETE FROM transactions
WHERE id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteTransaction, id)
	return err
}

const markTransactionSynced = `-- name: MarkTransactionSynced :exec
UPDATE transactions
SET synced = 1
WHERE id = ?
`

func (q *Queries) MarkTransactionSynced(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markTransactionSynced, id)
	return err
}

const listCategories = `-- name: ListCategories :many
SELECT id, name
FROM categories
ORDER BY name
`

func (q *Queries) ListCategories(ctx context.Context) ([]CategoryRow, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategoryRow
	for rows.Next() {
		var i CategoryRow
		if err := rows.Scan(&i.ID, &i.Name); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getCategory = `-- name: GetCategory :one
SELECT id, name
FROM categories
WHERE id = ?
`

func (q *Queries) GetCategory(ctx context.Context, id int64) (CategoryRow, error) {
	row := q.db.QueryRowContext(ctx, getCategory, id)
	var i CategoryRow
	err := row.Scan(&i.ID, &i.Name)
	return i, err
}
