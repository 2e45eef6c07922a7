// Package mirror implements the reconciliation core: one pass pulls new and
// changed shared expenses into the budget ledger as tagged mirror
// transactions, and the reverse direction pushes marked ledger transactions
// back to the expense tracker.
package mirror

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carden/splitsync/internal/logger"
	"github.com/carden/splitsync/internal/ynab"
)

// LookbackDays is the trailing fetch window for both directions.
const LookbackDays = 90

// Syncer drives one user's reconciliation passes. It is stateless across
// passes; the only cross-pass linkage is the trailing lookback window.
type Syncer struct {
	source    ExpenseSource
	ledger    BudgetLedger
	budgetID  string
	accountID string

	// useUpdatedAt fetches by record modification time instead of expense
	// date, which also surfaces edits and deletions of older expenses.
	useUpdatedAt bool
	// reverse enables the ledger-to-source direction after the forward pass.
	reverse bool

	now     func() time.Time
	newSalt func() string
}

// New creates a Syncer for one user's budget and mirror account.
func New(source ExpenseSource, ledger BudgetLedger, budgetID, accountID string, useUpdatedAt, reverse bool) *Syncer {
	return &Syncer{
		source:       source,
		ledger:       ledger,
		budgetID:     budgetID,
		accountID:    accountID,
		useUpdatedAt: useUpdatedAt,
		reverse:      reverse,
		now:          time.Now,
		newSalt:      runSalt,
	}
}

// runSalt returns a fresh 8-hex-char salt for this run's import IDs.
func runSalt() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// window returns the pass's fetch window: trailing lookback up to tomorrow
// midnight, so future-dated expenses are included.
func (s *Syncer) window() (start, end time.Time) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return midnight.AddDate(0, 0, -LookbackDays), midnight.AddDate(0, 0, 1)
}

// Run executes one full reconciliation pass: the forward direction, then,
// when enabled, the reverse direction. Reverse failures are logged per
// record and do not fail the pass; only forward write failures do.
func (s *Syncer) Run(ctx context.Context) error {
	forwardErr := s.Forward(ctx)
	if s.reverse {
		if err := s.Reverse(ctx); err != nil {
			log := logger.FromContext(ctx)
			log.Error().Err(err).Msg("Reverse sync failed")
		}
	}
	return forwardErr
}

// Forward runs the source-to-ledger direction: fetch the window, collapse
// duplicate revisions, resolve each expense against the dedup index, then
// submit the batched writes.
func (s *Syncer) Forward(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info().Msg("Moving transactions from Splitwise to YNAB")

	start, end := s.window()
	log.Info().Time("start", start).Time("end", end).Bool("use_updated_at", s.useUpdatedAt).
		Msg("Getting all Splitwise expenses")

	expenses, err := s.source.ListExpenses(ctx, start, end, s.useUpdatedAt)
	if err != nil {
		return fmt.Errorf("listing expenses: %w", err)
	}
	if len(expenses) == 0 {
		log.Info().Msg("No transactions to write to YNAB")
		return nil
	}

	expenses = collapseRevisions(ctx, expenses)
	if len(expenses) == 0 {
		log.Info().Msg("No valid transactions to write to YNAB")
		return nil
	}

	earliest := expenses[0].Date
	for _, exp := range expenses[1:] {
		if exp.Date.Before(earliest) {
			earliest = exp.Date
		}
	}

	index, err := s.buildIndex(ctx, earliest)
	if err != nil {
		return fmt.Errorf("indexing ledger transactions: %w", err)
	}

	resolver := NewResolver(s.accountID, index, s.now(), s.newSalt())

	var creates, updates, scheduled []ynab.Transaction
	var deleted, skipped int
	for i := range expenses {
		action := resolver.Resolve(ctx, &expenses[i])
		switch action.Kind {
		case ActionSkip:
			skipped++
		case ActionDelete:
			if err := s.ledger.DeleteTransaction(ctx, s.budgetID, action.DeleteID); err != nil {
				log.Error().Err(err).Str("transaction_id", action.DeleteID).Msg("Failed to delete YNAB transaction")
				return err
			}
			deleted++
		case ActionCreate:
			creates = append(creates, action.Transaction)
			index.Add(action.Transaction)
		case ActionUpdate:
			updates = append(updates, action.Transaction)
			index.Add(action.Transaction)
		case ActionCreateScheduled:
			scheduled = append(scheduled, action.Transaction)
			index.Add(action.Transaction)
		}
	}

	if len(creates) == 0 && len(updates) == 0 && len(scheduled) == 0 {
		log.Info().Int("deleted", deleted).Int("skipped", skipped).Msg("No transactions to write to YNAB")
		return nil
	}

	log.Info().Int("records", len(creates)).Msg("Writing records to YNAB")
	log.Info().Int("scheduled", len(scheduled)).Msg("Writing scheduled transactions to YNAB")
	log.Info().Int("updates", len(updates)).Msg("Writing updated transactions to YNAB")

	if err := s.submit(ctx, creates, updates, scheduled); err != nil {
		log.Error().Err(err).Msg("Error writing transactions to YNAB")
		for _, t := range creates {
			log.Error().Str("date", t.Date).Str("memo", t.Memo).Int64("amount", t.Amount).Msg("Failed transaction")
		}
		return err
	}

	log.Info().
		Int("created", len(creates)).
		Int("updated", len(updates)).
		Int("scheduled", len(scheduled)).
		Int("deleted", deleted).
		Int("skipped", skipped).
		Msg("Forward sync completed")
	return nil
}

// buildIndex loads the dedup index from the ledger's tagged transactions
// since the given date, scheduled transactions included.
func (s *Syncer) buildIndex(ctx context.Context, since time.Time) (*DedupIndex, error) {
	index := NewDedupIndex()

	transactions, err := s.ledger.ListTransactions(ctx, s.budgetID, s.accountID, since, time.Time{})
	if err != nil {
		return nil, err
	}
	for _, t := range transactions {
		index.Add(t)
	}

	scheduled, err := s.ledger.ListScheduledTransactions(ctx, s.budgetID)
	if err != nil {
		return nil, err
	}
	for _, t := range scheduled {
		index.Add(t)
	}
	return index, nil
}

// submit sends the three write batches: one bulk create, one bulk update,
// then each scheduled transaction individually (the API accepts scheduled
// creates only one at a time). The first failure aborts the rest.
func (s *Syncer) submit(ctx context.Context, creates, updates, scheduled []ynab.Transaction) error {
	if len(creates) > 0 {
		if err := s.ledger.CreateTransactions(ctx, s.budgetID, creates); err != nil {
			return err
		}
	}
	if len(updates) > 0 {
		if err := s.ledger.UpdateTransactions(ctx, s.budgetID, updates); err != nil {
			return err
		}
	}
	for _, t := range scheduled {
		t.Cleared = ""
		t.Frequency = "never"
		if err := s.ledger.CreateScheduledTransaction(ctx, s.budgetID, t); err != nil {
			return err
		}
	}
	return nil
}
