// Package http provides the JSON API in front of the budget services.
//
// This file implements utilities for parsing and validating request data:
// date windows from query strings, IDs from paths, and rule/transaction
// payloads from JSON bodies.

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"budget/internal/core"
)

const dateLayout = "2006-01-02"

func parseDateParam(query url.Values, key string) (core.Date, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return core.Date{}, fmt.Errorf("missing %s parameter", key)
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return core.Date{}, fmt.Errorf("invalid %s date %q: want YYYY-MM-DD", key, v)
	}
	return core.DateOf(t), nil
}

// parseWindow extracts the inclusive from/to window from query parameters.
func parseWindow(query url.Values) (from, to core.Date, err error) {
	from, err = parseDateParam(query, "from")
	if err != nil {
		return core.Date{}, core.Date{}, err
	}
	to, err = parseDateParam(query, "to")
	if err != nil {
		return core.Date{}, core.Date{}, err
	}
	return from, to, nil
}

// parseReferenceDate reads the as_of query parameter, defaulting to today.
// The default is the only place the HTTP layer consults the clock; the
// services always take the reference date as an argument.
func parseReferenceDate(query url.Values) (core.Date, error) {
	v := strings.TrimSpace(query.Get("as_of"))
	if v == "" {
		return core.DateOf(time.Now()), nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return core.Date{}, fmt.Errorf("invalid as_of date %q: want YYYY-MM-DD", v)
	}
	return core.DateOf(t), nil
}

// parsePathID extracts the numeric ID from paths like /rules/42.
func parsePathID(path, prefix string) (int64, error) {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	if rest == "" || strings.Contains(rest, "/") {
		return 0, fmt.Errorf("invalid path %q", path)
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", rest)
	}
	return id, nil
}

type rulePayload struct {
	Label            string `json:"label"`
	Kind             string `json:"kind"`
	Flow             string `json:"flow"`
	AnchorDate       string `json:"anchor_date"`
	DayOfMonth       int    `json:"day_of_month"`
	FirstDayOfMonth  int    `json:"first_day_of_month"`
	SecondDayOfMonth int    `json:"second_day_of_month"`
	Amount           string `json:"amount"`
	CategoryID       int64  `json:"category_id"`
}

// decodeRule parses and validates a rule body. The returned rule has no ID;
// callers set it for updates.
func decodeRule(r *http.Request) (core.RecurrenceRule, error) {
	var payload rulePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return core.RecurrenceRule{}, fmt.Errorf("%w: invalid JSON body: %v", core.ErrInvalidRule, err)
	}

	anchor, err := time.Parse(dateLayout, strings.TrimSpace(payload.AnchorDate))
	if err != nil {
		return core.RecurrenceRule{}, fmt.Errorf("%w: invalid anchor_date %q: want YYYY-MM-DD", core.ErrInvalidRule, payload.AnchorDate)
	}

	cents, err := core.ParseDecimalToCents(payload.Amount)
	if err != nil {
		return core.RecurrenceRule{}, fmt.Errorf("%w: amount %q: %w", core.ErrInvalidRule, payload.Amount, err)
	}

	rule := core.RecurrenceRule{
		Label:            sanitizeInput(payload.Label),
		Kind:             core.RuleKind(strings.TrimSpace(payload.Kind)),
		Flow:             core.FlowType(strings.TrimSpace(payload.Flow)),
		Anchor:           core.DateOf(anchor),
		DayOfMonth:       payload.DayOfMonth,
		FirstDayOfMonth:  payload.FirstDayOfMonth,
		SecondDayOfMonth: payload.SecondDayOfMonth,
		Amount:           core.Money{Cents: cents},
		CategoryID:       payload.CategoryID,
	}

	if err := rule.Validate(); err != nil {
		return core.RecurrenceRule{}, err
	}
	return rule, nil
}

type transactionPayload struct {
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Flow        string `json:"flow"`
	CategoryID  int64  `json:"category_id"`
	Description string `json:"description"`
}

func decodeTransaction(r *http.Request) (core.Transaction, error) {
	var payload transactionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return core.Transaction{}, fmt.Errorf("invalid JSON body: %w", err)
	}

	date, err := time.Parse(dateLayout, strings.TrimSpace(payload.Date))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", payload.Date)
	}

	cents, err := core.ParseDecimalToCents(payload.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", payload.Amount, err)
	}

	tx := core.Transaction{
		Date:        core.DateOf(date),
		Amount:      core.Money{Cents: cents},
		Flow:        core.FlowType(strings.TrimSpace(payload.Flow)),
		CategoryID:  payload.CategoryID,
		Description: sanitizeInput(payload.Description),
	}

	if err := tx.Flow.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// sanitizeInput removes control characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1 // remove character
		}
		return r
	}, s)
	return result
}
