package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"budget/internal/core"
)

// RuleLister provides the recurrence rules a report is built from.
type RuleLister interface {
	ListRules(ctx context.Context) ([]core.RecurrenceRule, error)
}

// TransactionLister provides the posted transactions inside a date range.
type TransactionLister interface {
	ListTransactionsByRange(ctx context.Context, from, to core.Date) ([]core.Transaction, error)
}

// ReportService builds budget reports: it expands every stored rule over the
// requested window, reconciles the projection against posted transactions,
// and classifies the result at the reference date. Every rendering and
// export path goes through here so the date arithmetic lives in one place.
type ReportService struct {
	rules RuleLister
	txns  TransactionLister
}

func NewReportService(rules RuleLister, txns TransactionLister) *ReportService {
	return &ReportService{rules: rules, txns: txns}
}

// Build loads rules and transactions and runs the projection pipeline.
func (s *ReportService) Build(ctx context.Context, from, to, referenceDate core.Date) (core.Report, error) {
	if to.Before(from.Time) {
		return core.Report{}, fmt.Errorf("%w: %s > %s", core.ErrInvalidWindow, from, to)
	}

	rules, err := s.rules.ListRules(ctx)
	if err != nil {
		return core.Report{}, fmt.Errorf("list rules: %w", err)
	}
	transactions, err := s.txns.ListTransactionsByRange(ctx, from, to)
	if err != nil {
		return core.Report{}, fmt.Errorf("list transactions: %w", err)
	}

	report, err := BuildReport(rules, transactions, from, to, referenceDate)
	if err != nil {
		return core.Report{}, err
	}

	slog.DebugContext(ctx, "Report built",
		"from", from.String(),
		"to", to.String(),
		"reference_date", referenceDate.String(),
		"rules", len(rules),
		"occurred", len(report.Occurred),
		"pending", len(report.Pending))

	return report, nil
}

// BuildReport is the pure pipeline behind Build: expand, merge, reconcile,
// classify. Callers that already hold rules and transactions in memory (the
// posting worker, tests) use it directly.
func BuildReport(rules []core.RecurrenceRule, transactions []core.Transaction, from, to, referenceDate core.Date) (core.Report, error) {
	var occurrences []core.Occurrence
	for _, rule := range rules {
		occs, err := Expand(rule, from, to)
		if err != nil {
			return core.Report{}, fmt.Errorf("expand rule %d (%s): %w", rule.ID, rule.Label, err)
		}
		occurrences = append(occurrences, occs...)
	}

	// Merge across rules by date. The sort is stable so each rule's own
	// emission order survives for equal dates.
	sort.SliceStable(occurrences, func(i, j int) bool {
		return occurrences[i].Date.Before(occurrences[j].Date.Time)
	})

	occurrences = Reconcile(occurrences, transactions)

	report := core.Report{
		From:          from,
		To:            to,
		ReferenceDate: referenceDate,
	}
	report.Classification = Classify(occurrences, referenceDate)
	return report, nil
}
