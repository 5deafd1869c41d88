package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/storage"
)

// PostingProcessor turns due bill occurrences into posted transactions. It
// expands every expense rule over the current month, reconciles against what
// is already posted, and creates transactions for the due occurrences that
// have no match. Reconciling the whole month at once keeps two rules with the
// same amount from claiming the same transaction.
type PostingProcessor struct {
	storage      *storage.SQLiteRepository
	transactions *TransactionService
}

func NewPostingProcessor(storage *storage.SQLiteRepository, transactions *TransactionService) *PostingProcessor {
	return &PostingProcessor{
		storage:      storage,
		transactions: transactions,
	}
}

// ProcessDueBills posts the month's due, unmatched bill occurrences.
func (p *PostingProcessor) ProcessDueBills(ctx context.Context, now time.Time) (int, error) {
	if p.storage == nil || p.transactions == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	today := core.DateOf(now)
	from := core.NewDate(today.Year(), today.Month(), 1)
	to := core.NewDate(today.Year(), today.Month(), today.LastDayOfMonth())

	rules, err := p.storage.ListRules(ctx)
	if err != nil {
		return 0, fmt.Errorf("list rules: %w", err)
	}

	transactions, err := p.storage.ListTransactionsByRange(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}

	var occurrences []core.Occurrence
	billRules := 0
	for _, rule := range rules {
		if rule.Flow != core.Expense {
			continue
		}
		billRules++
		occs, err := Expand(rule, from, to)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to expand bill rule",
				applog.FieldRuleID, rule.ID,
				applog.FieldRuleLabel, rule.Label,
				applog.FieldError, err)
			continue
		}
		occurrences = append(occurrences, occs...)
	}

	sort.SliceStable(occurrences, func(i, j int) bool {
		return occurrences[i].Date.Before(occurrences[j].Date.Time)
	})
	occurrences = Reconcile(occurrences, transactions)

	slog.InfoContext(ctx, "Processing due bills",
		applog.FieldComponent, applog.ComponentWorker,
		"bill_rules", billRules,
		"occurrences", len(occurrences),
		applog.FieldReferenceDate, today.String())

	postedCount := 0

	for _, occ := range occurrences {
		if !occ.OccurredBy(today) {
			continue
		}
		if occ.MatchedTransactionID != 0 {
			continue
		}

		tx := core.Transaction{
			Date:        occ.Date,
			Amount:      occ.Amount,
			Flow:        core.Expense,
			CategoryID:  occ.CategoryID,
			Description: occ.Label,
		}

		id, err := p.transactions.CreateTransaction(ctx, tx)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to post transaction from bill rule",
				applog.FieldRuleID, occ.RuleID,
				applog.FieldRuleLabel, occ.Label,
				applog.FieldError, err)
			continue
		}

		postedCount++
		slog.InfoContext(ctx, "Posted transaction from bill rule",
			applog.FieldRuleID, occ.RuleID,
			applog.FieldTransactionID, id,
			applog.FieldRuleLabel, occ.Label,
			applog.FieldAmountCents, occ.Amount.Cents,
			"due_date", occ.Date.String())
	}

	slog.InfoContext(ctx, "Bill posting complete",
		"posted", postedCount,
		"total_checked", len(occurrences))

	return postedCount, nil
}
