package mirror

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/carden/splitsync/internal/domain"
	"github.com/carden/splitsync/internal/logger"
	"github.com/carden/splitsync/internal/split"
	"github.com/carden/splitsync/internal/ynab"
)

const (
	// reverseMarker flags a ledger transaction for pushing to Splitwise.
	reverseMarker = "splitwise"
	// mirroredMarker is prefixed to the memo once the push succeeded, so the
	// transaction is not pushed again.
	mirroredMarker = "added to splitwise"
	// participantSeparator introduces the participant names in the memo. The
	// delimiter is case-sensitive and space-padded so names containing
	// "with" are left alone.
	participantSeparator = " with "
)

// Reverse runs the ledger-to-source direction: scan every account's recent
// transactions for the marker word, push each as a new Splitwise expense
// split with the named friends, then annotate the ledger transaction as
// mirrored and split it into the user's own share and the mirror category.
func (s *Syncer) Reverse(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info().Msg("Moving transactions from YNAB to Splitwise")

	start, end := s.window()

	accounts, err := s.ledger.ListAccounts(ctx, s.budgetID)
	if err != nil {
		return fmt.Errorf("listing accounts: %w", err)
	}

	// Both fetched lazily: most passes have no marked transactions.
	var friends []domain.Friend
	mirrorCategoryID := ""

	var pushed int
	for _, account := range accounts {
		log.Info().Str("account", account.Name).Time("start", start).Time("end", end).
			Msg("Getting transactions to move to Splitwise")
		transactions, err := s.ledger.ListTransactions(ctx, s.budgetID, account.ID, start, end)
		if err != nil {
			return fmt.Errorf("listing transactions for %s: %w", account.Name, err)
		}

		for _, t := range transactions {
			if t.Memo == "" {
				continue
			}
			memo := strings.ToLower(t.Memo)
			if !strings.Contains(memo, reverseMarker) || strings.Contains(memo, mirroredMarker) {
				continue
			}

			if friends == nil {
				friends, err = s.source.ListFriends(ctx)
				if err != nil {
					return fmt.Errorf("listing friends: %w", err)
				}
			}

			names := extractParticipantNames(t.Memo)
			friendIDs := resolveFriendIDs(names, friends)

			if err := s.pushExpense(ctx, t, friendIDs); err != nil {
				log.Warn().Err(err).Str("memo", t.Memo).Msg("Failed to add transaction on Splitwise")
				continue
			}
			log.Info().Str("memo", t.Memo).Msg("Added a transaction on Splitwise")

			if mirrorCategoryID == "" {
				mirrorCategoryID, err = s.ledger.GetCategoryID(ctx, s.budgetID, DefaultPayee)
				if err != nil {
					return fmt.Errorf("resolving mirror category: %w", err)
				}
			}
			if err := s.annotateMirrored(ctx, t, len(friendIDs), mirrorCategoryID); err != nil {
				log.Warn().Err(err).Str("transaction_id", t.ID).Msg("Failed to update YNAB transaction")
				continue
			}
			log.Info().Str("transaction_id", t.ID).Msg("Updated YNAB transaction")
			pushed++
		}
	}

	log.Info().Int("pushed", pushed).Msg("Reverse sync completed")
	return nil
}

// pushExpense creates the Splitwise expense for one marked ledger
// transaction. The current user paid the whole amount; each resolved friend
// owes an even share, with the last share taking the rounding residual.
func (s *Syncer) pushExpense(ctx context.Context, t ynab.Transaction, friendIDs []int64) error {
	shares := split.Reverse(t.Amount, len(friendIDs))

	_, end := s.window()
	expense := domain.NewExpense{
		Cost:        shares.Total,
		Date:        end.Format("2006-01-02 15:04:05"),
		Description: t.PayeeName,
		Shares: []domain.ExpenseShare{
			{UserID: s.source.CurrentUserID(), Paid: shares.Total, Owed: shares.UserOwed},
		},
	}
	for i, id := range friendIDs {
		expense.Shares = append(expense.Shares, domain.ExpenseShare{
			UserID: id,
			Paid:   decimal.Zero,
			Owed:   shares.FriendShares[i],
		})
	}
	return s.source.CreateExpense(ctx, expense)
}

// annotateMirrored splits the pushed ledger transaction into the user's own
// category share and the remainder under the mirror category, and prefixes
// the memo so the transaction is never pushed twice.
func (s *Syncer) annotateMirrored(ctx context.Context, t ynab.Transaction, nFriends int, mirrorCategoryID string) error {
	userShare, remainder := split.LedgerSplit(t.Amount, nFriends)
	t.SubTransactions = []ynab.SubTransaction{
		{Amount: userShare, CategoryID: t.CategoryID},
		{Amount: remainder, CategoryID: mirrorCategoryID},
	}
	t.Memo = "Added to " + t.Memo
	return s.ledger.UpdateTransaction(ctx, s.budgetID, t.ID, t)
}

// extractParticipantNames pulls the participant names out of a memo:
// everything after the first " with ", split on commas and " and ". A memo
// without the separator yields no participants.
func extractParticipantNames(memo string) []string {
	parts := strings.Split(memo, participantSeparator)
	if len(parts) < 2 {
		return nil
	}
	joined := strings.TrimSpace(strings.Join(parts[1:], " "))
	joined = strings.ReplaceAll(joined, " and ", ",")
	joined = strings.ReplaceAll(joined, " ", "")

	var names []string
	for _, name := range strings.Split(joined, ",") {
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// resolveFriendIDs maps memo names to friend IDs by case-insensitive
// substring match against the full friend list. Unmatched names are dropped
// silently; a short name contained in several friends' names adds every
// match. This fuzziness is intentional.
func resolveFriendIDs(names []string, friends []domain.Friend) []int64 {
	var ids []int64
	for _, name := range names {
		lowered := strings.ToLower(name)
		for _, friend := range friends {
			if strings.Contains(strings.ToLower(friend.Name), lowered) {
				ids = append(ids, friend.ID)
			}
		}
	}
	return ids
}
