package memory

import (
	"context"
	"testing"

	"budget/internal/export"
)

func TestStore_Append(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.Append(ctx,
		export.Row{Date: "2025-02-01", Description: "Mortgage", Flow: "expense", Category: "Housing", AmountCents: 375000},
		export.Row{Date: "2025-02-07", Description: "Paycheck", Flow: "income", AmountCents: 216800},
	)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := s.Append(ctx, export.Row{Date: "2025-02-15", Description: "Power", Flow: "expense", Category: "Utilities", AmountCents: 9900}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	rows := s.Rows()
	if len(rows) != 3 {
		t.Fatalf("Rows() = %d rows, want 3", len(rows))
	}
	if rows[0].Description != "Mortgage" || rows[2].Description != "Power" {
		t.Errorf("rows out of order: %+v", rows)
	}

	// Rows returns a copy; mutating it must not touch the store.
	rows[0].Description = "changed"
	if s.Rows()[0].Description != "Mortgage" {
		t.Error("Rows() exposed internal slice")
	}
}
