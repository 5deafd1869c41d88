package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Once         RuleKind = "once"
	Weekly       RuleKind = "weekly"
	Biweekly     RuleKind = "biweekly"
	Monthly      RuleKind = "monthly"
	TwiceMonthly RuleKind = "twice-monthly"
)

const (
	Income  FlowType = "income"
	Expense FlowType = "expense"
)

type (
	// RuleKind identifies how a recurrence rule repeats.
	RuleKind string

	// FlowType identifies the direction of a financial event.
	FlowType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// RecurrenceRule describes how an income or a bill repeats.
	// Which fields are required depends on Kind; see Validate.
	RecurrenceRule struct {
		ID               int64
		Label            string
		Kind             RuleKind
		Flow             FlowType
		Anchor           Date // phase reference: weekday for weekly, cadence start for biweekly, earliest valid date for monthly kinds
		DayOfMonth       int  // monthly only, 1-31
		FirstDayOfMonth  int  // twice-monthly only, 1-31
		SecondDayOfMonth int  // twice-monthly only, 1-31
		Amount           Money
		CategoryID       int64 // 0 when uncategorized
	}

	// Occurrence is one concrete dated instance produced by expanding a rule.
	// Occurrences are computed per request and never persisted.
	Occurrence struct {
		Date                 Date
		Amount               Money
		Flow                 FlowType
		RuleID               int64
		Label                string
		CategoryID           int64
		MatchedTransactionID int64 // 0 until the reconciler finds a posted transaction
	}

	// Transaction is a posted ledger entry, owned by the storage layer.
	Transaction struct {
		ID          int64
		Date        Date
		Amount      Money
		Flow        FlowType
		CategoryID  int64
		Description string
	}

	Category struct {
		ID   int64
		Name string
	}
)

var (
	ErrInvalidRule   = errors.New("invalid recurrence rule")
	ErrInvalidWindow = errors.New("window start after window end")
	ErrInvalidDay    = errors.New("day of month out of range")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidFlow   = errors.New("invalid flow type")
	ErrEmptyLabel    = errors.New("empty label")
)

// NewDate creates a Date normalized to start-of-day UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to start-of-day UTC.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// SameOrBefore reports whether d falls on or before other.
func (d Date) SameOrBefore(other Date) bool {
	return !d.Time.After(other.Time)
}

// SameMonth reports whether two dates share year and month.
func (d Date) SameMonth(other Date) bool {
	return d.Year() == other.Year() && d.Month() == other.Month()
}

// DaysBetween returns the number of calendar days from d to other.
// Negative when other precedes d.
func (d Date) DaysBetween(other Date) int {
	return int(other.Time.Sub(d.Time).Hours() / 24)
}

// LastDayOfMonth returns the number of days in d's month.
func (d Date) LastDayOfMonth() int {
	return time.Date(d.Year(), d.Time.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (f FlowType) Validate() error {
	switch f {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidFlow
	}
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks the per-kind field contract. All returned errors wrap
// ErrInvalidRule so callers can classify them with errors.Is.
func (r RecurrenceRule) Validate() error {
	if len(strings.TrimSpace(r.Label)) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRule, ErrEmptyLabel)
	}
	if len(r.Label) > 200 {
		return fmt.Errorf("%w: label too long (max 200 characters)", ErrInvalidRule)
	}
	if err := r.Flow.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}
	if err := r.Amount.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}
	if r.Anchor.IsZero() {
		return fmt.Errorf("%w: anchor date is required", ErrInvalidRule)
	}

	switch r.Kind {
	case Once, Weekly, Biweekly:
		// Anchor alone is enough.
	case Monthly:
		if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
			return fmt.Errorf("%w: %w (day_of_month=%d)", ErrInvalidRule, ErrInvalidDay, r.DayOfMonth)
		}
	case TwiceMonthly:
		if r.FirstDayOfMonth < 1 || r.FirstDayOfMonth > 31 {
			return fmt.Errorf("%w: %w (first_day_of_month=%d)", ErrInvalidRule, ErrInvalidDay, r.FirstDayOfMonth)
		}
		if r.SecondDayOfMonth < 1 || r.SecondDayOfMonth > 31 {
			return fmt.Errorf("%w: %w (second_day_of_month=%d)", ErrInvalidRule, ErrInvalidDay, r.SecondDayOfMonth)
		}
		if r.FirstDayOfMonth == r.SecondDayOfMonth {
			return fmt.Errorf("%w: twice-monthly days must be distinct", ErrInvalidRule)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRule, r.Kind)
	}

	return nil
}

// OccurredBy reports whether the occurrence falls on or before the reference
// date. The boundary is inclusive: an occurrence on the reference date itself
// counts as occurred.
func (o Occurrence) OccurredBy(reference Date) bool {
	return o.Date.SameOrBefore(reference)
}
