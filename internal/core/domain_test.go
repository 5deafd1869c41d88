package core

import (
	"errors"
	"testing"
)

func validRule() RecurrenceRule {
	return RecurrenceRule{
		Label:      "Rent",
		Kind:       Monthly,
		Flow:       Expense,
		Anchor:     NewDate(2025, 1, 1),
		DayOfMonth: 1,
		Amount:     Money{Cents: 120000},
	}
}

func TestRecurrenceRule_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RecurrenceRule)
		ok     bool
	}{
		{"valid monthly", func(r *RecurrenceRule) {}, true},
		{"empty label", func(r *RecurrenceRule) { r.Label = "   " }, false},
		{"missing anchor", func(r *RecurrenceRule) { r.Anchor = Date{} }, false},
		{"negative amount", func(r *RecurrenceRule) { r.Amount.Cents = -1 }, false},
		{"bad flow", func(r *RecurrenceRule) { r.Flow = "transfer" }, false},
		{"monthly day zero", func(r *RecurrenceRule) { r.DayOfMonth = 0 }, false},
		{"monthly day 32", func(r *RecurrenceRule) { r.DayOfMonth = 32 }, false},
		{"monthly day 31 allowed", func(r *RecurrenceRule) { r.DayOfMonth = 31 }, true},
		{"unknown kind", func(r *RecurrenceRule) { r.Kind = "quarterly" }, false},
		{"once needs only anchor", func(r *RecurrenceRule) {
			r.Kind = Once
			r.DayOfMonth = 0
		}, true},
		{"weekly needs only anchor", func(r *RecurrenceRule) {
			r.Kind = Weekly
			r.DayOfMonth = 0
		}, true},
		{"twice-monthly valid", func(r *RecurrenceRule) {
			r.Kind = TwiceMonthly
			r.FirstDayOfMonth = 1
			r.SecondDayOfMonth = 15
		}, true},
		{"twice-monthly equal days", func(r *RecurrenceRule) {
			r.Kind = TwiceMonthly
			r.FirstDayOfMonth = 15
			r.SecondDayOfMonth = 15
		}, false},
		{"twice-monthly missing second day", func(r *RecurrenceRule) {
			r.Kind = TwiceMonthly
			r.FirstDayOfMonth = 1
			r.SecondDayOfMonth = 0
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := validRule()
			tt.mutate(&rule)
			err := rule.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("Validate() = nil, want error")
				}
				if !errors.Is(err, ErrInvalidRule) {
					t.Errorf("Validate() error %v does not wrap ErrInvalidRule", err)
				}
			}
		})
	}
}

func TestDate_LastDayOfMonth(t *testing.T) {
	tests := []struct {
		name string
		date Date
		want int
	}{
		{"january", NewDate(2025, 1, 10), 31},
		{"february non-leap", NewDate(2025, 2, 1), 28},
		{"february leap", NewDate(2024, 2, 1), 29},
		{"april", NewDate(2025, 4, 30), 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.date.LastDayOfMonth(); got != tt.want {
				t.Errorf("LastDayOfMonth() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDate_SameOrBefore(t *testing.T) {
	a := NewDate(2025, 2, 10)
	if !a.SameOrBefore(NewDate(2025, 2, 10)) {
		t.Error("date should be same-or-before itself")
	}
	if !a.SameOrBefore(NewDate(2025, 2, 11)) {
		t.Error("earlier date should be same-or-before later date")
	}
	if a.SameOrBefore(NewDate(2025, 2, 9)) {
		t.Error("later date should not be same-or-before earlier date")
	}
}

func TestOccurrence_OccurredBy(t *testing.T) {
	occ := Occurrence{Date: NewDate(2025, 2, 10)}
	if !occ.OccurredBy(NewDate(2025, 2, 10)) {
		t.Error("occurrence on the reference date must count as occurred")
	}
	if occ.OccurredBy(NewDate(2025, 2, 9)) {
		t.Error("future occurrence must not count as occurred")
	}
}
