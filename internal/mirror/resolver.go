package mirror

import (
	"context"
	"strings"
	"time"

	"github.com/carden/splitsync/internal/domain"
	"github.com/carden/splitsync/internal/logger"
	"github.com/carden/splitsync/internal/split"
	"github.com/carden/splitsync/internal/swidtag"
	"github.com/carden/splitsync/internal/ynab"
)

// DefaultPayee is the payee used for expenses without a group.
const DefaultPayee = "Splitwise"

// ActionKind classifies what the resolver decided for one expense.
type ActionKind int

const (
	// ActionSkip means no write is needed.
	ActionSkip ActionKind = iota
	// ActionCreate routes the transaction to the bulk-create batch.
	ActionCreate
	// ActionCreateScheduled routes a future-dated transaction to the
	// one-at-a-time scheduled creates.
	ActionCreateScheduled
	// ActionUpdate routes the transaction to the bulk-update batch.
	ActionUpdate
	// ActionDelete removes the mirror of a deleted source expense.
	ActionDelete
)

// Action is the resolver's decision for one expense.
type Action struct {
	Kind        ActionKind
	Transaction ynab.Transaction // set for create/scheduled/update
	DeleteID    string           // set for delete
}

// Resolver decides, for each canonical expense, whether its ledger mirror
// must be created, updated, deleted or left alone. It consults and mutates a
// pass-scoped DedupIndex.
type Resolver struct {
	accountID string
	index     *DedupIndex
	now       time.Time
	salt      string
}

// NewResolver creates a resolver for one pass. salt is mixed into fresh
// import-dedup IDs so re-imports of the same amount and date across runs do
// not collide.
func NewResolver(accountID string, index *DedupIndex, now time.Time, salt string) *Resolver {
	return &Resolver{accountID: accountID, index: index, now: now, salt: salt}
}

// Resolve runs the per-expense state machine.
func (r *Resolver) Resolve(ctx context.Context, exp *domain.Expense) Action {
	log := logger.FromContext(ctx)

	tag, tagged := swidtag.Decode(exp.Tag)

	if exp.Deleted() {
		if !tagged {
			return Action{Kind: ActionSkip}
		}
		existing, ok := r.index.Lookup(tag.ID)
		if !ok {
			log.Info().
				Time("date", exp.Date).
				Str("description", exp.Description).
				Str("tag", exp.Tag).
				Msg("Skipping deleted expense as it is not found in YNAB")
			return Action{Kind: ActionSkip}
		}
		existingTag, ok := swidtag.Decode(existing.Memo)
		if !ok || existingTag.ID != tag.ID {
			return Action{Kind: ActionSkip}
		}
		log.Info().
			Time("date", exp.Date).
			Str("description", exp.Description).
			Str("tag", exp.Tag).
			Msg("Deleting expense from YNAB as it has been deleted from Splitwise")
		return Action{Kind: ActionDelete, DeleteID: existing.ID}
	}

	updateID := ""
	if tagged {
		if existing, ok := r.index.Lookup(tag.ID); ok {
			if !swidtag.NeedsUpdate(log, exp.Tag, exp.UpdatedTime, existing.Memo) {
				log.Info().
					Time("date", exp.Date).
					Str("description", exp.Description).
					Str("tag", exp.Tag).
					Msg("Skipping Splitwise expense as it is already in YNAB")
				return Action{Kind: ActionSkip}
			}
			updateID = existing.ID
		}
	}

	t := r.build(exp)
	log.Info().
		Time("date", exp.Date).
		Str("description", exp.Description).
		Str("tag", exp.Tag).
		Msg("Importing Splitwise expense")

	switch {
	case updateID != "":
		t.ID = updateID
		return Action{Kind: ActionUpdate, Transaction: t}
	case exp.Date.After(r.now):
		// Future-dated mirrors become scheduled transactions; they cannot be
		// cleared and must not carry an import ID.
		t.Cleared = "uncleared"
		return Action{Kind: ActionCreateScheduled, Transaction: t}
	default:
		if importID, err := ynab.MakeImportID(t.Amount, t.Date, r.salt); err == nil {
			t.ImportID = importID
		} else {
			log.Error().Err(err).Str("date", t.Date).Msg("Could not build import ID")
		}
		return Action{Kind: ActionCreate, Transaction: t}
	}
}

// build constructs the mirror payload. When the current user fronted the
// whole cost the mirror is a single line for what others owe; otherwise the
// user's out-of-pocket amount splits into the total cost and the owed
// portion.
func (r *Resolver) build(exp *domain.Expense) ynab.Transaction {
	figures := split.Forward(exp.Cost, exp.Owed)

	payee := exp.GroupName
	if payee == "" {
		payee = DefaultPayee
	}

	t := ynab.Transaction{
		AccountID: r.accountID,
		Date:      exp.Date.Format("2006-01-02"),
		PayeeName: payee,
		Cleared:   "cleared",
	}
	if exp.CurrentUserPaid {
		t.Amount = figures.OwedToUser
		t.Memo = exp.Description
	} else {
		others := CombineNames(exp.Participants)
		t.Amount = figures.UserPaid
		t.Memo = strings.TrimSpace(exp.Description) + " with " + others
		t.SubTransactions = []ynab.SubTransaction{
			{Amount: figures.TotalCost, PayeeName: exp.Description, Memo: "Total Cost"},
			{Amount: figures.OwedToUser, PayeeName: others, Memo: "What others owe."},
		}
	}
	if exp.Tag != "" {
		t.Memo = t.Memo + " " + exp.Tag
	}
	return t
}

// CombineNames joins display names as "A, B and C".
func CombineNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}

// collapseRevisions keeps only the latest revision of each tagged expense,
// dropping older duplicates fetched in the same window. Untagged records are
// never deduplicated against each other. Order is preserved: untagged
// records first, then one survivor per source ID in first-seen order.
func collapseRevisions(ctx context.Context, expenses []domain.Expense) []domain.Expense {
	log := logger.FromContext(ctx)

	var untagged []domain.Expense
	latest := make(map[int64]domain.Expense)
	var order []int64
	for _, exp := range expenses {
		tag, ok := swidtag.Decode(exp.Tag)
		if !ok {
			untagged = append(untagged, exp)
			continue
		}
		existing, seen := latest[tag.ID]
		if !seen {
			latest[tag.ID] = exp
			order = append(order, tag.ID)
			continue
		}
		if exp.Date.After(existing.Date) {
			log.Info().Int64("source_id", tag.ID).Msg("Found newer version of expense")
			latest[tag.ID] = exp
		}
	}

	out := untagged
	for _, id := range order {
		out = append(out, latest[id])
	}
	return out
}
