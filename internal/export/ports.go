package export

import (
	"context"

	"budget/internal/core"
)

// Row is one ledger line in the external export target.
type Row struct {
	Date        string
	Description string
	Flow        string
	Category    string
	AmountCents int64
}

// RowAppender is the outbound port for ledger exports.
type RowAppender interface {
	Append(ctx context.Context, rows ...Row) error
}

// RowFromTransaction converts a posted transaction to an export row.
func RowFromTransaction(tx core.Transaction, categoryName string) Row {
	return Row{
		Date:        tx.Date.String(),
		Description: tx.Description,
		Flow:        string(tx.Flow),
		Category:    categoryName,
		AmountCents: tx.Amount.Cents,
	}
}

// RowsFromReport flattens a report into export rows, occurred first then
// pending, preserving each list's order.
func RowsFromReport(report core.Report) []Row {
	rows := make([]Row, 0, len(report.Occurred)+len(report.Pending))
	for _, o := range report.Occurred {
		rows = append(rows, rowFromOccurrence(o))
	}
	for _, o := range report.Pending {
		rows = append(rows, rowFromOccurrence(o))
	}
	return rows
}

func rowFromOccurrence(o core.Occurrence) Row {
	return Row{
		Date:        o.Date.String(),
		Description: o.Label,
		Flow:        string(o.Flow),
		AmountCents: o.Amount.Cents,
	}
}
