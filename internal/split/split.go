// Package split holds the monetary arithmetic for mirroring expenses in
// either direction: converting source cost/owed figures into ledger
// milliunit amounts, and dividing a ledger transaction back into
// participant shares that sum exactly to the total.
package split

import (
	"github.com/shopspring/decimal"
)

var thousand = decimal.NewFromInt(1000)

// Milliunits converts a currency-unit amount to integer milliunits,
// truncating toward zero.
func Milliunits(d decimal.Decimal) int64 {
	return d.Mul(thousand).IntPart()
}

// ForwardFigures are the milliunit amounts derived from one source expense.
// Outflows are negative.
type ForwardFigures struct {
	// TotalCost is the full expense as an outflow.
	TotalCost int64
	// UserPaid is what the current user actually paid out of pocket.
	UserPaid int64
	// OwedToUser is the portion owed to (positive) or by (negative) the
	// current user; an inflow when others owe the user.
	OwedToUser int64
}

// Forward derives the ledger amounts for a source expense with the given
// total cost and current-user owed figure, both in currency units.
func Forward(cost, owed decimal.Decimal) ForwardFigures {
	costMilli := Milliunits(cost)
	owedMilli := Milliunits(owed)
	return ForwardFigures{
		TotalCost:  -costMilli,
		UserPaid:   -(costMilli - owedMilli),
		OwedToUser: owedMilli,
	}
}

// ReverseShares are the currency-unit shares for pushing a ledger
// transaction back to the source tracker.
type ReverseShares struct {
	// Total is the full expense cost. A ledger outflow (negative amount)
	// becomes a positive cost.
	Total decimal.Decimal
	// UserOwed is the current user's own share.
	UserOwed decimal.Decimal
	// FriendShares has one entry per friend. Every share except the last is
	// the even division rounded to 2 decimal places; the last share is the
	// exact residual so the shares always sum to Total.
	FriendShares []decimal.Decimal
}

// Reverse splits a ledger transaction amount (milliunits, negative = outflow)
// between the current user and nFriends other participants.
func Reverse(amount int64, nFriends int) ReverseShares {
	total := decimal.NewFromInt(-amount).Div(thousand)
	userOwed := total.DivRound(decimal.NewFromInt(int64(nFriends+1)), 2)

	shares := make([]decimal.Decimal, 0, nFriends)
	remaining := total.Sub(userOwed)
	sum := decimal.Zero
	for i := 0; i < nFriends; i++ {
		var share decimal.Decimal
		if i == nFriends-1 {
			share = remaining.Sub(sum)
		} else {
			share = remaining.DivRound(decimal.NewFromInt(int64(nFriends)), 2)
		}
		sum = sum.Add(share)
		shares = append(shares, share)
	}
	return ReverseShares{Total: total, UserOwed: userOwed, FriendShares: shares}
}

// LedgerSplit divides a ledger transaction amount (milliunits) into the
// current user's own category share and the remainder that stays on the
// mirror category. The remainder absorbs rounding so the two sum exactly.
func LedgerSplit(amount int64, nFriends int) (userShare, remainder int64) {
	userShare = decimal.NewFromInt(amount).
		DivRound(decimal.NewFromInt(int64(nFriends+1)), 0).
		IntPart()
	return userShare, amount - userShare
}
