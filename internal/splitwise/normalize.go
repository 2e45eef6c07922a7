package splitwise

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carden/splitsync/internal/domain"
	"github.com/carden/splitsync/internal/logger"
	"github.com/carden/splitsync/internal/swidtag"
)

// SkipReason says why the normalizer dropped a record. None of these are
// errors; skipped records are logged and the pass continues.
type SkipReason int

const (
	// SkipNone means the record was normalized.
	SkipNone SkipReason = iota
	// SkipNotInvolved means the current user is not a participant.
	SkipNotInvolved
	// SkipDebtConsolidation means the record is a groupless debt-consolidation
	// entry that duplicates the per-group consolidation entries.
	SkipDebtConsolidation
	// SkipNoDate means the record has no usable date and cannot be ordered or
	// deduplicated.
	SkipNoDate
)

// GroupNamer resolves a Splitwise group ID to its display name.
type GroupNamer interface {
	GroupName(ctx context.Context, id int64) (string, error)
}

// Normalizer converts raw Splitwise expense records into domain expenses
// from the point of view of one user.
type Normalizer struct {
	current User
	groups  GroupNamer
}

// NewNormalizer creates a normalizer for the given current user.
func NewNormalizer(current User, groups GroupNamer) *Normalizer {
	return &Normalizer{current: current, groups: groups}
}

// Normalize converts one raw expense. A nil expense with a non-None skip
// reason means the record was dropped by policy; an error means an external
// lookup failed and the pass should stop.
func (n *Normalizer) Normalize(ctx context.Context, raw Expense) (*domain.Expense, SkipReason, error) {
	log := logger.FromContext(ctx)

	// Payment (settle-up) records shift the balance to the payment method,
	// like a transfer; skipping them would under-record settle-ups.
	if raw.Payment {
		log.Info().Int64("expense_id", raw.ID).Msg("Found payment expense, processing normally")
	}

	cost, err := decimal.NewFromString(raw.Cost)
	if err != nil {
		return nil, SkipNone, fmt.Errorf("expense %d: bad cost %q: %w", raw.ID, raw.Cost, err)
	}

	var currentRow *ExpenseUser
	for i := range raw.Users {
		if raw.Users[i].User.ID == n.current.ID {
			currentRow = &raw.Users[i]
			break
		}
	}
	if currentRow == nil {
		return nil, SkipNotInvolved, nil
	}

	groupName := ""
	if raw.GroupID > 0 {
		groupName, err = n.groups.GroupName(ctx, raw.GroupID)
		if err != nil {
			return nil, SkipNone, fmt.Errorf("expense %d: group %d lookup: %w", raw.ID, raw.GroupID, err)
		}
	}

	// Splitwise logs the aggregate debt consolidation once and then again per
	// group; only the per-group entries are kept.
	if raw.CreationMethod == "debt_consolidation" && groupName == "" {
		log.Info().
			Str("date", raw.Date).
			Str("description", raw.Description).
			Msg("Skipping debt consolidation expense, deferring to the per-group entries")
		return nil, SkipDebtConsolidation, nil
	}

	if raw.Date == "" {
		log.Warn().
			Str("description", raw.Description).
			Int64("expense_id", raw.ID).
			Msg("Skipping expense without date")
		return nil, SkipNoDate, nil
	}
	date, err := time.Parse(timeFormat, raw.Date)
	if err != nil {
		log.Warn().
			Str("description", raw.Description).
			Int64("expense_id", raw.ID).
			Str("date", raw.Date).
			Msg("Skipping expense with unparseable date")
		return nil, SkipNoDate, nil
	}

	// Whether the current user fronted the whole expense: some participant's
	// paid share equals the full cost and that participant is the user.
	currentUserPaid := false
	for _, row := range raw.Users {
		paid, perr := decimal.NewFromString(row.PaidShare)
		if perr != nil {
			continue
		}
		if paid.Equal(cost) {
			currentUserPaid = row.User.ID == n.current.ID
		}
	}

	owedShare, err := decimal.NewFromString(currentRow.OwedShare)
	if err != nil {
		return nil, SkipNone, fmt.Errorf("expense %d: bad owed share %q: %w", raw.ID, currentRow.OwedShare, err)
	}

	var participants []string
	for _, row := range raw.Users {
		if row.User.ID != n.current.ID {
			participants = append(participants, row.User.DisplayName())
		}
	}

	return &domain.Expense{
		SourceID:        raw.ID,
		Description:     raw.Description,
		Cost:            cost,
		Owed:            cost.Sub(owedShare),
		CurrentUserPaid: currentUserPaid,
		GroupName:       groupName,
		Date:            date,
		CreatedTime:     raw.CreatedAt,
		UpdatedTime:     raw.UpdatedAt,
		DeletedTime:     raw.DeletedAt,
		Participants:    participants,
		Tag:             swidtag.Encode(raw.ID, raw.UpdatedAt),
	}, SkipNone, nil
}
