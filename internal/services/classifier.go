package services

import "budget/internal/core"

// Classify partitions occurrences into occurred and pending relative to an
// explicit reference date and computes the aggregate totals. The boundary is
// inclusive: an occurrence dated exactly on the reference date is occurred.
//
// The reference date is always a parameter, never an implicit clock read, so
// the same input always classifies the same way.
func Classify(occurrences []core.Occurrence, referenceDate core.Date) core.Classification {
	var c core.Classification
	for _, occ := range occurrences {
		if occ.OccurredBy(referenceDate) {
			c.Occurred = append(c.Occurred, occ)
			switch occ.Flow {
			case core.Income:
				c.Totals.OccurredIncome = c.Totals.OccurredIncome.Add(occ.Amount)
			case core.Expense:
				c.Totals.OccurredExpense = c.Totals.OccurredExpense.Add(occ.Amount)
			}
		} else {
			c.Pending = append(c.Pending, occ)
			switch occ.Flow {
			case core.Income:
				c.Totals.PendingIncome = c.Totals.PendingIncome.Add(occ.Amount)
			case core.Expense:
				c.Totals.PendingExpense = c.Totals.PendingExpense.Add(occ.Amount)
			}
		}
	}
	c.Totals.NetOccurred = c.Totals.OccurredIncome.Sub(c.Totals.OccurredExpense)
	c.Totals.NetPending = c.Totals.PendingIncome.Sub(c.Totals.PendingExpense)
	return c
}
