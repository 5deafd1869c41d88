package services

import (
	"testing"

	"budget/internal/core"
)

func billOcc(date core.Date, cents int64, categoryID int64) core.Occurrence {
	return core.Occurrence{
		Date:       date,
		Amount:     core.Money{Cents: cents},
		Flow:       core.Expense,
		CategoryID: categoryID,
		Label:      "Mortgage",
	}
}

func tx(id int64, date core.Date, cents int64, flow core.FlowType, categoryID int64) core.Transaction {
	return core.Transaction{
		ID:         id,
		Date:       date,
		Amount:     core.Money{Cents: cents},
		Flow:       flow,
		CategoryID: categoryID,
	}
}

func TestReconcile_ExactDayMatch(t *testing.T) {
	occurrences := []core.Occurrence{billOcc(core.NewDate(2025, 2, 1), 375000, 1)}
	transactions := []core.Transaction{tx(41, core.NewDate(2025, 2, 1), 375000, core.Expense, 1)}

	got := Reconcile(occurrences, transactions)
	if got[0].MatchedTransactionID != 41 {
		t.Errorf("MatchedTransactionID = %d, want 41", got[0].MatchedTransactionID)
	}
	if occurrences[0].MatchedTransactionID != 0 {
		t.Error("Reconcile mutated its input slice")
	}
}

func TestReconcile_TransactionUsedAtMostOnce(t *testing.T) {
	// Two identical-looking occurrences, one matching transaction: the first
	// gets it, the second stays unmatched.
	occurrences := []core.Occurrence{
		billOcc(core.NewDate(2025, 2, 1), 375000, 1),
		billOcc(core.NewDate(2025, 2, 1), 375000, 1),
	}
	transactions := []core.Transaction{tx(41, core.NewDate(2025, 2, 1), 375000, core.Expense, 1)}

	got := Reconcile(occurrences, transactions)
	if got[0].MatchedTransactionID != 41 {
		t.Errorf("first occurrence MatchedTransactionID = %d, want 41", got[0].MatchedTransactionID)
	}
	if got[1].MatchedTransactionID != 0 {
		t.Errorf("second occurrence MatchedTransactionID = %d, want 0", got[1].MatchedTransactionID)
	}
}

func TestReconcile_SameMonthDrift(t *testing.T) {
	// No exact-day candidate: the closest same-month transaction matches,
	// tolerating posting-date drift.
	occurrences := []core.Occurrence{billOcc(core.NewDate(2025, 2, 1), 375000, 1)}
	transactions := []core.Transaction{
		tx(50, core.NewDate(2025, 2, 20), 375000, core.Expense, 1),
		tx(51, core.NewDate(2025, 2, 3), 375000, core.Expense, 1),
	}

	got := Reconcile(occurrences, transactions)
	if got[0].MatchedTransactionID != 51 {
		t.Errorf("MatchedTransactionID = %d, want 51 (closest day)", got[0].MatchedTransactionID)
	}
}

func TestReconcile_Criteria(t *testing.T) {
	occurrence := billOcc(core.NewDate(2025, 2, 1), 375000, 1)

	tests := []struct {
		name string
		tx   core.Transaction
		want int64 // expected MatchedTransactionID
	}{
		{"wrong flow", tx(1, core.NewDate(2025, 2, 1), 375000, core.Income, 1), 0},
		{"amount off by one cent", tx(2, core.NewDate(2025, 2, 1), 375001, core.Expense, 1), 0},
		{"different month", tx(3, core.NewDate(2025, 3, 1), 375000, core.Expense, 1), 0},
		{"different category", tx(4, core.NewDate(2025, 2, 1), 375000, core.Expense, 2), 0},
		{"uncategorized transaction still matches", tx(5, core.NewDate(2025, 2, 1), 375000, core.Expense, 0), 5},
		{"exact match", tx(6, core.NewDate(2025, 2, 1), 375000, core.Expense, 1), 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile([]core.Occurrence{occurrence}, []core.Transaction{tt.tx})
			if got[0].MatchedTransactionID != tt.want {
				t.Errorf("MatchedTransactionID = %d, want %d", got[0].MatchedTransactionID, tt.want)
			}
		})
	}
}

func TestReconcile_EmptyTransactions(t *testing.T) {
	occurrences := []core.Occurrence{
		billOcc(core.NewDate(2025, 2, 1), 375000, 1),
		billOcc(core.NewDate(2025, 2, 15), 9900, 2),
	}

	got := Reconcile(occurrences, nil)
	if len(got) != len(occurrences) {
		t.Fatalf("Reconcile() returned %d occurrences, want %d", len(got), len(occurrences))
	}
	for i, o := range got {
		if o.MatchedTransactionID != 0 {
			t.Errorf("occurrence %d matched %d with no transactions", i, o.MatchedTransactionID)
		}
	}
}
