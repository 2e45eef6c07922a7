package mirror

import (
	"context"
	"time"

	"github.com/carden/splitsync/internal/domain"
	"github.com/carden/splitsync/internal/ynab"
)

// ExpenseSource is the shared-expense tracker side of the sync. It yields
// already-normalized domain expenses; vendor records never cross this
// boundary.
type ExpenseSource interface {
	// ListExpenses returns all expenses in the window, normalized. When
	// useUpdatedAt is set the window filters on record modification time.
	ListExpenses(ctx context.Context, after, before time.Time, useUpdatedAt bool) ([]domain.Expense, error)

	// ListFriends returns the current user's friends.
	ListFriends(ctx context.Context) ([]domain.Friend, error)

	// CreateExpense creates a new expense with explicit participant shares.
	CreateExpense(ctx context.Context, expense domain.NewExpense) error

	// CurrentUserID identifies the syncing user on the source side.
	CurrentUserID() int64
}

// BudgetLedger is the budget-ledger side of the sync. Implemented by the
// ynab client; mocked in tests.
type BudgetLedger interface {
	ListAccounts(ctx context.Context, budgetID string) ([]ynab.Account, error)
	GetCategoryID(ctx context.Context, budgetID, name string) (string, error)
	ListTransactions(ctx context.Context, budgetID, accountID string, since, before time.Time) ([]ynab.Transaction, error)
	ListScheduledTransactions(ctx context.Context, budgetID string) ([]ynab.Transaction, error)
	CreateTransactions(ctx context.Context, budgetID string, transactions []ynab.Transaction) error
	UpdateTransactions(ctx context.Context, budgetID string, transactions []ynab.Transaction) error
	UpdateTransaction(ctx context.Context, budgetID, transactionID string, transaction ynab.Transaction) error
	CreateScheduledTransaction(ctx context.Context, budgetID string, transaction ynab.Transaction) error
	DeleteTransaction(ctx context.Context, budgetID, transactionID string) error
}
