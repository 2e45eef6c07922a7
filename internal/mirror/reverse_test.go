package mirror

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carden/splitsync/internal/domain"
	"github.com/carden/splitsync/internal/ynab"
)

func reverseLedger(transactions []ynab.Transaction) *mockLedger {
	return &mockLedger{
		listAccountsFunc: func(ctx context.Context, budgetID string) ([]ynab.Account, error) {
			return []ynab.Account{{ID: "acct-1", Name: "Checking"}}, nil
		},
		listTransactionsFunc: func(ctx context.Context, budgetID, accountID string, since, before time.Time) ([]ynab.Transaction, error) {
			return transactions, nil
		},
		getCategoryIDFunc: func(ctx context.Context, budgetID, name string) (string, error) {
			return "cat-splitwise", nil
		},
	}
}

func reverseSource(friends []domain.Friend) (*mockSource, *[]domain.NewExpense) {
	var created []domain.NewExpense
	source := &mockSource{
		currentUserID: 7,
		listFriendsFunc: func(ctx context.Context) ([]domain.Friend, error) {
			return friends, nil
		},
		createExpenseFunc: func(ctx context.Context, expense domain.NewExpense) error {
			created = append(created, expense)
			return nil
		},
	}
	return source, &created
}

func TestReversePushesMarkedTransaction(t *testing.T) {
	friends := []domain.Friend{
		{ID: 8, Name: "Alice Smith"},
		{ID: 9, Name: "Bob Jones"},
	}
	source, created := reverseSource(friends)

	var updated []ynab.Transaction
	ledger := reverseLedger([]ynab.Transaction{
		{
			ID:         "t-1",
			Amount:     -30000,
			PayeeName:  "Pizza Place",
			CategoryID: "cat-food",
			Memo:       "Splitwise dinner with Alice and Bob",
		},
	})
	ledger.updateTransactionFunc = func(ctx context.Context, budgetID, transactionID string, transaction ynab.Transaction) error {
		updated = append(updated, transaction)
		return nil
	}

	s := newTestSyncer(source, ledger)
	if err := s.Reverse(testContext()); err != nil {
		t.Fatalf("Reverse: %v", err)
	}

	if len(*created) != 1 {
		t.Fatalf("created = %d, want 1", len(*created))
	}
	expense := (*created)[0]
	if !expense.Cost.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Cost = %s, want 30", expense.Cost)
	}
	if expense.Description != "Pizza Place" {
		t.Errorf("Description = %q", expense.Description)
	}
	if len(expense.Shares) != 3 {
		t.Fatalf("Shares = %v", expense.Shares)
	}
	if expense.Shares[0].UserID != 7 || !expense.Shares[0].Paid.Equal(decimal.NewFromInt(30)) {
		t.Errorf("payer share = %+v", expense.Shares[0])
	}
	sum := decimal.Zero
	for _, share := range expense.Shares {
		sum = sum.Add(share.Owed)
	}
	if !sum.Equal(expense.Cost) {
		t.Errorf("owed shares sum to %s, want %s", sum, expense.Cost)
	}

	if len(updated) != 1 {
		t.Fatalf("updated = %d, want 1", len(updated))
	}
	u := updated[0]
	if u.Memo != "Added to Splitwise dinner with Alice and Bob" {
		t.Errorf("Memo = %q", u.Memo)
	}
	if len(u.SubTransactions) != 2 {
		t.Fatalf("SubTransactions = %v", u.SubTransactions)
	}
	if u.SubTransactions[0].CategoryID != "cat-food" {
		t.Errorf("own share category = %q, want cat-food", u.SubTransactions[0].CategoryID)
	}
	if u.SubTransactions[1].CategoryID != "cat-splitwise" {
		t.Errorf("remainder category = %q", u.SubTransactions[1].CategoryID)
	}
	if u.SubTransactions[0].Amount+u.SubTransactions[1].Amount != -30000 {
		t.Errorf("split does not sum to total: %d + %d",
			u.SubTransactions[0].Amount, u.SubTransactions[1].Amount)
	}
}

func TestReverseIgnoresUnmarkedAndMirrored(t *testing.T) {
	source, created := reverseSource(nil)
	ledger := reverseLedger([]ynab.Transaction{
		{ID: "t-1", Amount: -1000, Memo: "groceries"},
		{ID: "t-2", Amount: -2000, Memo: ""},
		{ID: "t-3", Amount: -3000, Memo: "Added to Splitwise dinner with Alice"},
	})

	s := newTestSyncer(source, ledger)
	if err := s.Reverse(testContext()); err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if len(*created) != 0 {
		t.Errorf("created = %v, want none", *created)
	}
}

func TestReverseCreateFailureLeavesLedgerUntouched(t *testing.T) {
	source, _ := reverseSource([]domain.Friend{{ID: 8, Name: "Alice Smith"}})
	source.createExpenseFunc = func(ctx context.Context, expense domain.NewExpense) error {
		return errors.New("api: 500")
	}
	ledger := reverseLedger([]ynab.Transaction{
		{ID: "t-1", Amount: -10000, PayeeName: "Cafe", Memo: "splitwise with Alice"},
	})
	ledger.updateTransactionFunc = func(ctx context.Context, budgetID, transactionID string, transaction ynab.Transaction) error {
		t.Errorf("unexpected ledger update after failed push: %v", transaction)
		return nil
	}

	s := newTestSyncer(source, ledger)
	if err := s.Reverse(testContext()); err != nil {
		t.Fatalf("Reverse: %v; per-record push failures must not fail the pass", err)
	}
}

func TestExtractParticipantNames(t *testing.T) {
	tests := []struct {
		memo string
		want []string
	}{
		{"Splitwise dinner with Alice and Bob", []string{"Alice", "Bob"}},
		{"splitwise with Alice, Bob and Carol", []string{"Alice", "Bob", "Carol"}},
		{"splitwise groceries", nil},
		{"splitwise with ", nil},
	}
	for _, tt := range tests {
		got := extractParticipantNames(tt.memo)
		if len(got) != len(tt.want) {
			t.Errorf("extractParticipantNames(%q) = %v, want %v", tt.memo, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("extractParticipantNames(%q) = %v, want %v", tt.memo, got, tt.want)
				break
			}
		}
	}
}

func TestResolveFriendIDs(t *testing.T) {
	friends := []domain.Friend{
		{ID: 8, Name: "Alice Smith"},
		{ID: 9, Name: "Bob Jones"},
		{ID: 10, Name: "Alice Jones"},
	}

	if got := resolveFriendIDs([]string{"Bob"}, friends); len(got) != 1 || got[0] != 9 {
		t.Errorf("Bob resolved to %v", got)
	}
	// A first name shared by two friends matches both.
	if got := resolveFriendIDs([]string{"Alice"}, friends); len(got) != 2 {
		t.Errorf("Alice resolved to %v, want both Alices", got)
	}
	// Unknown names are dropped.
	if got := resolveFriendIDs([]string{"Dave"}, friends); got != nil {
		t.Errorf("Dave resolved to %v, want none", got)
	}
}
