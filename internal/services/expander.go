// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for recurrence expansion. Each
// rule kind (once, weekly, biweekly, monthly, twice-monthly) has its own
// strategy that turns a rule plus a date window into concrete occurrences.

package services

import (
	"fmt"

	"budget/internal/core"
)

// RuleExpander is the strategy interface for expanding one recurrence rule
// over a window. Implementations receive a validated rule and an ordered
// window and return occurrences in ascending date order.
type RuleExpander interface {
	Expand(rule core.RecurrenceRule, windowStart, windowEnd core.Date) []core.Occurrence
}

// OnceExpander implements RuleExpander for one-time events.
type OnceExpander struct{}

// Expand yields a single occurrence iff the anchor falls inside the window.
func (OnceExpander) Expand(rule core.RecurrenceRule, windowStart, windowEnd core.Date) []core.Occurrence {
	if windowStart.SameOrBefore(rule.Anchor) && rule.Anchor.SameOrBefore(windowEnd) {
		return []core.Occurrence{occurrenceOn(rule, rule.Anchor)}
	}
	return nil
}

// WeeklyExpander implements RuleExpander for weekly events.
type WeeklyExpander struct{}

// Expand steps by 7 days from the first occurrence of the anchor's weekday
// at or after the window start, never before the anchor itself.
func (WeeklyExpander) Expand(rule core.RecurrenceRule, windowStart, windowEnd core.Date) []core.Occurrence {
	from := windowStart
	if from.SameOrBefore(rule.Anchor) {
		from = rule.Anchor
	}
	// Align to the anchor's weekday.
	offset := (int(rule.Anchor.Weekday()) - int(from.Weekday()) + 7) % 7
	d := from.AddDays(offset)

	var out []core.Occurrence
	for d.SameOrBefore(windowEnd) {
		out = append(out, occurrenceOn(rule, d))
		d = d.AddDays(7)
	}
	return out
}

// BiweeklyExpander implements RuleExpander for every-other-week events.
type BiweeklyExpander struct{}

// Expand emits anchor+14k for integer k >= 0, filtered to the window. The
// cadence is never re-phased from the window start: a window that opens
// mid-cycle starts at the next on-phase date.
func (BiweeklyExpander) Expand(rule core.RecurrenceRule, windowStart, windowEnd core.Date) []core.Occurrence {
	d := rule.Anchor
	if rule.Anchor.Before(windowStart.Time) {
		days := rule.Anchor.DaysBetween(windowStart)
		steps := days / 14
		if days%14 != 0 {
			steps++
		}
		d = rule.Anchor.AddDays(14 * steps)
	}

	var out []core.Occurrence
	for d.SameOrBefore(windowEnd) {
		out = append(out, occurrenceOn(rule, d))
		d = d.AddDays(14)
	}
	return out
}

// MonthlyExpander implements RuleExpander for monthly-on-day-N events.
type MonthlyExpander struct{}

// Expand emits one occurrence per month overlapping the window. Days that
// don't exist in a month (31 in February) clamp to the last day. A rule
// never applies before its anchor.
func (MonthlyExpander) Expand(rule core.RecurrenceRule, windowStart, windowEnd core.Date) []core.Occurrence {
	var out []core.Occurrence
	for m := monthStart(windowStart); m.SameOrBefore(windowEnd); m = nextMonth(m) {
		d := dayInMonth(m, rule.DayOfMonth)
		if inWindow(d, windowStart, windowEnd) && rule.Anchor.SameOrBefore(d) {
			out = append(out, occurrenceOn(rule, d))
		}
	}
	return out
}

// TwiceMonthlyExpander implements RuleExpander for twice-monthly events.
type TwiceMonthlyExpander struct{}

// Expand emits up to two occurrences per month, each under the same
// within-window and on-or-after-anchor constraints as monthly rules. Within
// a month the configured first day precedes the second day regardless of
// their numeric values.
func (TwiceMonthlyExpander) Expand(rule core.RecurrenceRule, windowStart, windowEnd core.Date) []core.Occurrence {
	var out []core.Occurrence
	for m := monthStart(windowStart); m.SameOrBefore(windowEnd); m = nextMonth(m) {
		for _, day := range []int{rule.FirstDayOfMonth, rule.SecondDayOfMonth} {
			d := dayInMonth(m, day)
			if inWindow(d, windowStart, windowEnd) && rule.Anchor.SameOrBefore(d) {
				out = append(out, occurrenceOn(rule, d))
			}
		}
	}
	return out
}

// expandStrategies maps rule kinds to their corresponding expanders.
// This registry enables O(1) lookup and easy extension for new kinds.
var expandStrategies = map[core.RuleKind]RuleExpander{
	core.Once:         OnceExpander{},
	core.Weekly:       WeeklyExpander{},
	core.Biweekly:     BiweeklyExpander{},
	core.Monthly:      MonthlyExpander{},
	core.TwiceMonthly: TwiceMonthlyExpander{},
}

// Expand turns a recurrence rule plus a query window into the ordered list
// of concrete occurrences. It is pure: identical arguments always produce
// identical output, and there is no hidden clock dependency.
//
// A malformed rule or a window whose start exceeds its end is a caller
// contract violation and returns an error; expansion never partially
// succeeds.
func Expand(rule core.RecurrenceRule, windowStart, windowEnd core.Date) ([]core.Occurrence, error) {
	if windowEnd.Before(windowStart.Time) {
		return nil, fmt.Errorf("%w: %s > %s", core.ErrInvalidWindow, windowStart, windowEnd)
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	expander, ok := expandStrategies[rule.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %q", core.ErrInvalidRule, rule.Kind)
	}
	return expander.Expand(rule, windowStart, windowEnd), nil
}

// RegisterRuleExpander allows registering custom expanders for new rule
// kinds without touching the built-in strategies.
func RegisterRuleExpander(kind core.RuleKind, expander RuleExpander) {
	expandStrategies[kind] = expander
}

func occurrenceOn(rule core.RecurrenceRule, d core.Date) core.Occurrence {
	return core.Occurrence{
		Date:       d,
		Amount:     rule.Amount,
		Flow:       rule.Flow,
		RuleID:     rule.ID,
		Label:      rule.Label,
		CategoryID: rule.CategoryID,
	}
}

func inWindow(d, windowStart, windowEnd core.Date) bool {
	return windowStart.SameOrBefore(d) && d.SameOrBefore(windowEnd)
}

// dayInMonth places day inside m's month, clamping to the last day when the
// month is shorter (31 in February becomes the 28th or 29th).
func dayInMonth(m core.Date, day int) core.Date {
	if last := m.LastDayOfMonth(); day > last {
		day = last
	}
	return core.NewDate(m.Year(), m.Month(), day)
}

func monthStart(d core.Date) core.Date {
	return core.NewDate(d.Year(), d.Month(), 1)
}

func nextMonth(m core.Date) core.Date {
	return core.NewDate(m.Year(), m.Month()+1, 1)
}
