package splitwise

import (
	"context"
	"fmt"
	"time"

	"github.com/carden/splitsync/internal/domain"
	"github.com/carden/splitsync/internal/logger"
)

// Source adapts the raw Splitwise client to the expense-source interface the
// mirror expects: raw records go in, normalized domain expenses come out.
type Source struct {
	client     *Client
	normalizer *Normalizer
	current    User
}

// NewSource builds a Source bound to the authenticated user. It fetches the
// current user once up front; every later call normalizes from that user's
// point of view.
func NewSource(ctx context.Context, client *Client) (*Source, error) {
	current, err := client.GetCurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching current user: %w", err)
	}
	return &Source{
		client:     client,
		normalizer: NewNormalizer(current, client),
		current:    current,
	}, nil
}

// CurrentUserID identifies the syncing user on the Splitwise side.
func (s *Source) CurrentUserID() int64 {
	return s.current.ID
}

// ListExpenses fetches every raw expense in the window and normalizes each
// one. Records dropped by policy are counted and logged, not returned.
func (s *Source) ListExpenses(ctx context.Context, after, before time.Time, useUpdatedAt bool) ([]domain.Expense, error) {
	log := logger.FromContext(ctx)

	raw, err := s.client.ListExpenses(ctx, after, before, useUpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}

	expenses := make([]domain.Expense, 0, len(raw))
	skipped := 0
	for _, record := range raw {
		expense, reason, err := s.normalizer.Normalize(ctx, record)
		if err != nil {
			return nil, fmt.Errorf("normalizing expense %d: %w", record.ID, err)
		}
		if reason != SkipNone {
			skipped++
			continue
		}
		expenses = append(expenses, *expense)
	}

	log.Info().Int("fetched", len(raw)).Int("skipped", skipped).
		Msg("Fetched expenses from Splitwise")
	return expenses, nil
}

// ListFriends returns the current user's friends with display names.
func (s *Source) ListFriends(ctx context.Context) ([]domain.Friend, error) {
	users, err := s.client.GetFriends(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing friends: %w", err)
	}
	friends := make([]domain.Friend, 0, len(users))
	for _, u := range users {
		friends = append(friends, domain.Friend{ID: u.ID, Name: u.DisplayName()})
	}
	return friends, nil
}

// CreateExpense creates a new expense on Splitwise.
func (s *Source) CreateExpense(ctx context.Context, expense domain.NewExpense) error {
	return s.client.CreateExpense(ctx, expense)
}
