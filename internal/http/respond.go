package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"budget/internal/core"
	"budget/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps domain errors onto HTTP statuses: invalid rules are
// unprocessable, bad windows are bad requests, missing rows are 404, and
// everything else is a 500 with a generic body.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidRule):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, core.ErrInvalidWindow), errors.Is(err, core.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// formatCents renders cents as a decimal amount string, e.g. 4739 -> "47.39".
func formatCents(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := fmt.Sprintf("%d.%02d", cents/100, cents%100)
	if neg {
		return "-" + s
	}
	return s
}

type ruleDTO struct {
	ID               int64  `json:"id"`
	Label            string `json:"label"`
	Kind             string `json:"kind"`
	Flow             string `json:"flow"`
	AnchorDate       string `json:"anchor_date"`
	DayOfMonth       int    `json:"day_of_month,omitempty"`
	FirstDayOfMonth  int    `json:"first_day_of_month,omitempty"`
	SecondDayOfMonth int    `json:"second_day_of_month,omitempty"`
	Amount           string `json:"amount"`
	CategoryID       int64  `json:"category_id,omitempty"`
}

func ruleToDTO(r core.RecurrenceRule) ruleDTO {
	return ruleDTO{
		ID:               r.ID,
		Label:            r.Label,
		Kind:             string(r.Kind),
		Flow:             string(r.Flow),
		AnchorDate:       r.Anchor.String(),
		DayOfMonth:       r.DayOfMonth,
		FirstDayOfMonth:  r.FirstDayOfMonth,
		SecondDayOfMonth: r.SecondDayOfMonth,
		Amount:           formatCents(r.Amount.Cents),
		CategoryID:       r.CategoryID,
	}
}

func rulesToDTO(rules []core.RecurrenceRule) []ruleDTO {
	out := make([]ruleDTO, len(rules))
	for i, r := range rules {
		out[i] = ruleToDTO(r)
	}
	return out
}

type transactionDTO struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Flow        string `json:"flow"`
	CategoryID  int64  `json:"category_id,omitempty"`
	Description string `json:"description,omitempty"`
}

func transactionToDTO(t core.Transaction) transactionDTO {
	return transactionDTO{
		ID:          t.ID,
		Date:        t.Date.String(),
		Amount:      formatCents(t.Amount.Cents),
		Flow:        string(t.Flow),
		CategoryID:  t.CategoryID,
		Description: t.Description,
	}
}

type occurrenceDTO struct {
	Date                 string `json:"date"`
	Label                string `json:"label"`
	Flow                 string `json:"flow"`
	Amount               string `json:"amount"`
	RuleID               int64  `json:"rule_id"`
	CategoryID           int64  `json:"category_id,omitempty"`
	MatchedTransactionID int64  `json:"matched_transaction_id,omitempty"`
}

func occurrencesToDTO(occs []core.Occurrence) []occurrenceDTO {
	out := make([]occurrenceDTO, len(occs))
	for i, o := range occs {
		out[i] = occurrenceDTO{
			Date:                 o.Date.String(),
			Label:                o.Label,
			Flow:                 string(o.Flow),
			Amount:               formatCents(o.Amount.Cents),
			RuleID:               o.RuleID,
			CategoryID:           o.CategoryID,
			MatchedTransactionID: o.MatchedTransactionID,
		}
	}
	return out
}

type totalsDTO struct {
	OccurredIncome  string `json:"occurred_income"`
	OccurredExpense string `json:"occurred_expense"`
	PendingIncome   string `json:"pending_income"`
	PendingExpense  string `json:"pending_expense"`
	NetOccurred     string `json:"net_occurred"`
	NetPending      string `json:"net_pending"`
}

type reportDTO struct {
	From          string          `json:"from"`
	To            string          `json:"to"`
	ReferenceDate string          `json:"reference_date"`
	Occurred      []occurrenceDTO `json:"occurred"`
	Pending       []occurrenceDTO `json:"pending"`
	Totals        totalsDTO       `json:"totals"`
}

func reportToDTO(r core.Report) reportDTO {
	return reportDTO{
		From:          r.From.String(),
		To:            r.To.String(),
		ReferenceDate: r.ReferenceDate.String(),
		Occurred:      occurrencesToDTO(r.Occurred),
		Pending:       occurrencesToDTO(r.Pending),
		Totals: totalsDTO{
			OccurredIncome:  formatCents(r.Totals.OccurredIncome.Cents),
			OccurredExpense: formatCents(r.Totals.OccurredExpense.Cents),
			PendingIncome:   formatCents(r.Totals.PendingIncome.Cents),
			PendingExpense:  formatCents(r.Totals.PendingExpense.Cents),
			NetOccurred:     formatCents(r.Totals.NetOccurred.Cents),
			NetPending:      formatCents(r.Totals.NetPending.Cents),
		},
	}
}

type categoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
