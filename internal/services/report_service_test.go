package services

import (
	"context"
	"testing"

	"budget/internal/core"
)

type fakeStore struct {
	rules []core.RecurrenceRule
	txns  []core.Transaction
}

func (f *fakeStore) ListRules(context.Context) ([]core.RecurrenceRule, error) {
	return f.rules, nil
}

func (f *fakeStore) ListTransactionsByRange(_ context.Context, _, _ core.Date) ([]core.Transaction, error) {
	return f.txns, nil
}

func TestReportService_Build(t *testing.T) {
	store := &fakeStore{
		rules: []core.RecurrenceRule{
			{
				ID: 1, Label: "Salary", Kind: core.Monthly, Flow: core.Income,
				Anchor: core.NewDate(2024, 1, 1), DayOfMonth: 1,
				Amount: core.Money{Cents: 473900},
			},
			{
				ID: 2, Label: "Mortgage", Kind: core.Monthly, Flow: core.Expense,
				Anchor: core.NewDate(2024, 1, 1), DayOfMonth: 1, CategoryID: 1,
				Amount: core.Money{Cents: 375000},
			},
			{
				ID: 3, Label: "Paycheck", Kind: core.Biweekly, Flow: core.Income,
				Anchor: core.NewDate(2025, 1, 10),
				Amount: core.Money{Cents: 216800},
			},
		},
		txns: []core.Transaction{
			{ID: 9, Date: core.NewDate(2025, 2, 1), Amount: core.Money{Cents: 375000}, Flow: core.Expense, CategoryID: 1, Description: "Mortgage feb"},
		},
	}

	svc := NewReportService(store, store)
	report, err := svc.Build(context.Background(),
		core.NewDate(2025, 2, 1), core.NewDate(2025, 2, 28), core.NewDate(2025, 2, 10))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// Salary 02-01, mortgage 02-01, paychecks 02-07 and 02-21.
	total := len(report.Occurred) + len(report.Pending)
	if total != 4 {
		t.Fatalf("total occurrences = %d, want 4", total)
	}
	if len(report.Occurred) != 3 {
		t.Errorf("occurred = %d, want 3 (salary, mortgage, first paycheck)", len(report.Occurred))
	}
	if len(report.Pending) != 1 {
		t.Errorf("pending = %d, want 1 (second paycheck)", len(report.Pending))
	}

	// The mortgage occurrence reconciles against the posted transaction.
	var mortgage *core.Occurrence
	for i := range report.Occurred {
		if report.Occurred[i].RuleID == 2 {
			mortgage = &report.Occurred[i]
		}
	}
	if mortgage == nil {
		t.Fatal("mortgage occurrence missing from occurred list")
	}
	if mortgage.MatchedTransactionID != 9 {
		t.Errorf("mortgage MatchedTransactionID = %d, want 9", mortgage.MatchedTransactionID)
	}

	if got := report.Totals.OccurredIncome.Cents; got != 473900+216800 {
		t.Errorf("OccurredIncome = %d, want %d", got, 473900+216800)
	}
	if got := report.Totals.PendingIncome.Cents; got != 216800 {
		t.Errorf("PendingIncome = %d, want 216800", got)
	}
	if got := report.Totals.NetOccurred.Cents; got != 473900+216800-375000 {
		t.Errorf("NetOccurred = %d, want %d", got, 473900+216800-375000)
	}
}

func TestReportService_InvertedWindow(t *testing.T) {
	svc := NewReportService(&fakeStore{}, &fakeStore{})
	_, err := svc.Build(context.Background(),
		core.NewDate(2025, 3, 1), core.NewDate(2025, 2, 1), core.NewDate(2025, 2, 10))
	if err == nil {
		t.Fatal("Build() with inverted window returned nil error")
	}
}

func TestBuildReport_MergedOrdering(t *testing.T) {
	rules := []core.RecurrenceRule{
		{ID: 1, Label: "Rent", Kind: core.Monthly, Flow: core.Expense, Anchor: core.NewDate(2024, 1, 1), DayOfMonth: 20, Amount: core.Money{Cents: 100}},
		{ID: 2, Label: "Paycheck", Kind: core.Biweekly, Flow: core.Income, Anchor: core.NewDate(2025, 1, 10), Amount: core.Money{Cents: 200}},
	}

	report, err := BuildReport(rules, nil,
		core.NewDate(2025, 2, 1), core.NewDate(2025, 2, 28), core.NewDate(2025, 2, 28))
	if err != nil {
		t.Fatalf("BuildReport() error = %v", err)
	}

	all := append(append([]core.Occurrence{}, report.Occurred...), report.Pending...)
	for i := 1; i < len(all); i++ {
		if all[i].Date.Before(all[i-1].Date.Time) {
			t.Errorf("occurrences out of order: %s before %s", all[i].Date, all[i-1].Date)
		}
	}
}

func TestBuildReport_EmptyRules(t *testing.T) {
	report, err := BuildReport(nil, nil,
		core.NewDate(2025, 2, 1), core.NewDate(2025, 2, 28), core.NewDate(2025, 2, 10))
	if err != nil {
		t.Fatalf("BuildReport() error = %v", err)
	}
	if len(report.Occurred) != 0 || len(report.Pending) != 0 {
		t.Error("empty rule set produced occurrences")
	}
	if report.Totals != (core.ReportTotals{}) {
		t.Errorf("empty rule set totals = %+v, want zero", report.Totals)
	}
}
