package split

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestForward(t *testing.T) {
	tests := []struct {
		name       string
		cost, owed string
		want       ForwardFigures
	}{
		{
			name: "user paid full, others owe half",
			cost: "100.00", owed: "50.00",
			want: ForwardFigures{TotalCost: -100000, UserPaid: -50000, OwedToUser: 50000},
		},
		{
			name: "someone else paid, user owes",
			cost: "60.00", owed: "-20.00",
			want: ForwardFigures{TotalCost: -60000, UserPaid: -80000, OwedToUser: -20000},
		},
		{
			name: "user paid own share exactly",
			cost: "30.00", owed: "0",
			want: ForwardFigures{TotalCost: -30000, UserPaid: -30000, OwedToUser: 0},
		},
		{
			name: "fractional cents truncate",
			cost: "10.555", owed: "5.2775",
			want: ForwardFigures{TotalCost: -10555, UserPaid: -5278, OwedToUser: 5277},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Forward(dec(tt.cost), dec(tt.owed))
			if got != tt.want {
				t.Errorf("Forward(%s, %s) = %+v, want %+v", tt.cost, tt.owed, got, tt.want)
			}
		})
	}
}

func TestReverseSharesSumToTotal(t *testing.T) {
	amounts := []int64{-10000, -33333, -100, -99999, -12345, 5000}
	for _, amount := range amounts {
		for n := 0; n <= 5; n++ {
			got := Reverse(amount, n)
			sum := got.UserOwed
			for _, s := range got.FriendShares {
				sum = sum.Add(s)
			}
			if !sum.Equal(got.Total) {
				t.Errorf("Reverse(%d, %d): shares sum to %s, total %s", amount, n, sum, got.Total)
			}
			wantTotal := decimal.NewFromInt(-amount).Div(decimal.NewFromInt(1000))
			if !got.Total.Equal(wantTotal) {
				t.Errorf("Reverse(%d, %d): total %s, want %s", amount, n, got.Total, wantTotal)
			}
		}
	}
}

func TestReverseEvenSharesRounded(t *testing.T) {
	// -100.00 over user + 2 friends: user 33.33, first friend rounded even
	// split of the rest, last friend the residual.
	got := Reverse(-100000, 2)
	if !got.UserOwed.Equal(dec("33.33")) {
		t.Errorf("UserOwed = %s, want 33.33", got.UserOwed)
	}
	if len(got.FriendShares) != 2 {
		t.Fatalf("FriendShares = %d, want 2", len(got.FriendShares))
	}
	if !got.FriendShares[0].Equal(dec("33.34")) {
		t.Errorf("first share = %s, want 33.34", got.FriendShares[0])
	}
	if !got.FriendShares[1].Equal(dec("33.33")) {
		t.Errorf("residual share = %s, want 33.33", got.FriendShares[1])
	}
}

func TestReverseNoFriends(t *testing.T) {
	got := Reverse(-4200, 0)
	if len(got.FriendShares) != 0 {
		t.Fatalf("expected no friend shares, got %d", len(got.FriendShares))
	}
	if !got.UserOwed.Equal(dec("4.20")) {
		t.Errorf("UserOwed = %s, want 4.20", got.UserOwed)
	}
}

func TestLedgerSplit(t *testing.T) {
	tests := []struct {
		amount    int64
		nFriends  int
		userShare int64
		remainder int64
	}{
		{-30000, 2, -10000, -20000},
		{-10000, 2, -3333, -6667},
		{-5000, 0, -5000, 0},
		{-101, 1, -51, -50},
	}
	for _, tt := range tests {
		user, rem := LedgerSplit(tt.amount, tt.nFriends)
		if user != tt.userShare || rem != tt.remainder {
			t.Errorf("LedgerSplit(%d, %d) = (%d, %d), want (%d, %d)",
				tt.amount, tt.nFriends, user, rem, tt.userShare, tt.remainder)
		}
		if user+rem != tt.amount {
			t.Errorf("LedgerSplit(%d, %d) does not sum back to the amount", tt.amount, tt.nFriends)
		}
	}
}

func TestMilliunits(t *testing.T) {
	if got := Milliunits(dec("12.34")); got != 12340 {
		t.Errorf("Milliunits(12.34) = %d, want 12340", got)
	}
	if got := Milliunits(dec("-0.001")); got != -1 {
		t.Errorf("Milliunits(-0.001) = %d, want -1", got)
	}
}
