package core

// ReportTotals aggregates occurrence amounts partitioned by flow and by the
// occurred/pending split. Net values are signed (income minus expense).
type ReportTotals struct {
	OccurredIncome  Money
	OccurredExpense Money
	PendingIncome   Money
	PendingExpense  Money
	NetOccurred     Money
	NetPending      Money
}

// Classification is the result of partitioning an occurrence list at a
// reference date. Occurred and Pending together hold every input occurrence.
type Classification struct {
	Occurred []Occurrence
	Pending  []Occurrence
	Totals   ReportTotals
}

// Report is a fully built projection for one query window: all rule
// occurrences, reconciled against posted transactions and classified at
// ReferenceDate.
type Report struct {
	From          Date
	To            Date
	ReferenceDate Date
	Classification
}
