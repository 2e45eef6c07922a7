package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense represents one normalized Splitwise expense as seen by the current
// user. This is a domain struct, not a vendor API object; the splitwise
// package maps raw API records into it and everything downstream operates
// only on this shape. Instances live for a single reconciliation pass and
// are never persisted.
type Expense struct {
	SourceID    int64           // Splitwise expense ID
	Description string          // free-text expense description
	Cost        decimal.Decimal // full expense cost in currency units
	Owed        decimal.Decimal // cost minus the current user's owed share; positive when the user is owed money

	// CurrentUserPaid is true when some participant's paid share equals the
	// full cost and that participant is the current user.
	CurrentUserPaid bool

	GroupName string    // resolved group name, empty when the expense has no group
	Date      time.Time // expense date

	// UpdatedTime and DeletedTime keep the exact API string representation.
	// The change hash in the memo tag is computed over UpdatedTime verbatim,
	// so it must not be re-formatted.
	CreatedTime string
	UpdatedTime string
	DeletedTime string // empty when the expense is not deleted

	// Participants holds the display names of everyone on the expense other
	// than the current user, in API order.
	Participants []string

	// Tag is the encoded "[SWID:<id>-<hash>]" marker for this revision, empty
	// for records that carry no source ID.
	Tag string
}

// Deleted reports whether the source expense has been deleted upstream.
func (e *Expense) Deleted() bool {
	return e.DeletedTime != ""
}

// Friend is one Splitwise friend of the current user.
type Friend struct {
	ID   int64
	Name string
}

// ExpenseShare is one participant's slice of a new Splitwise expense.
type ExpenseShare struct {
	UserID int64
	Paid   decimal.Decimal
	Owed   decimal.Decimal
}

// NewExpense is an expense to be created in Splitwise, produced by the
// reverse mirror from a budget-ledger transaction.
type NewExpense struct {
	Cost        decimal.Decimal
	Date        string // "2006-01-02 15:04:05"
	Description string
	Shares      []ExpenseShare
}
