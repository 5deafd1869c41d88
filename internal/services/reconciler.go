package services

import "budget/internal/core"

// Reconcile matches projected occurrences against posted transactions so a
// bill that already turned into a real transaction is not counted twice.
//
// The matching is best-effort: no natural key ties a rule's projected
// instance to a posted row, so a transaction matches an occurrence when it
// has the same flow, the exact same amount, the same category (when both
// sides carry one), and a date in the same month. An exact-day match wins;
// otherwise the closest day in the month is taken, tolerating posting-date
// drift. Each transaction satisfies at most one occurrence.
//
// The input slice is not mutated; a copy with MatchedTransactionID filled in
// is returned. An empty transaction list returns the occurrences unchanged.
func Reconcile(occurrences []core.Occurrence, transactions []core.Transaction) []core.Occurrence {
	out := make([]core.Occurrence, len(occurrences))
	copy(out, occurrences)
	if len(transactions) == 0 {
		return out
	}

	used := make(map[int]bool, len(transactions))
	for i := range out {
		best := -1
		bestDistance := 0
		for j, tx := range transactions {
			if used[j] || !matchable(out[i], tx) {
				continue
			}
			distance := dayDistance(out[i].Date, tx.Date)
			if best == -1 || distance < bestDistance {
				best = j
				bestDistance = distance
			}
			if bestDistance == 0 {
				break
			}
		}
		if best >= 0 {
			out[i].MatchedTransactionID = transactions[best].ID
			used[best] = true
		}
	}
	return out
}

// matchable applies the hard criteria: flow, exact amount, same month, and
// category equality when both the occurrence and the transaction have one.
func matchable(occ core.Occurrence, tx core.Transaction) bool {
	if tx.Flow != occ.Flow {
		return false
	}
	if tx.Amount.Cents != occ.Amount.Cents {
		return false
	}
	if !occ.Date.SameMonth(tx.Date) {
		return false
	}
	if occ.CategoryID != 0 && tx.CategoryID != 0 && occ.CategoryID != tx.CategoryID {
		return false
	}
	return true
}

func dayDistance(a, b core.Date) int {
	d := a.DaysBetween(b)
	if d < 0 {
		return -d
	}
	return d
}
