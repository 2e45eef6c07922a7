package ynab

// Budget is one YNAB budget as returned by the budgets endpoint.
type Budget struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Account is one account within a budget.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Category is one budget category.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryGroup is a group of categories; the categories endpoint nests
// categories under their group.
type CategoryGroup struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Categories []Category `json:"categories"`
}

// SubTransaction is one split line of a transaction.
type SubTransaction struct {
	Amount     int64  `json:"amount"`
	PayeeName  string `json:"payee_name,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
	Memo       string `json:"memo,omitempty"`
}

// Transaction is a transaction payload, used for both reads and writes.
// Amounts are integer milliunits, negative for outflows. Optional fields are
// left zero and omitted from the JSON body: ID is set only when updating an
// existing transaction, ImportID only on fresh creates, Frequency only on
// scheduled transactions.
type Transaction struct {
	ID              string           `json:"id,omitempty"`
	AccountID       string           `json:"account_id,omitempty"`
	Date            string           `json:"date,omitempty"` // "YYYY-MM-DD"
	Amount          int64            `json:"amount"`
	PayeeName       string           `json:"payee_name,omitempty"`
	CategoryID      string           `json:"category_id,omitempty"`
	Memo            string           `json:"memo,omitempty"`
	Cleared         string           `json:"cleared,omitempty"`
	ImportID        string           `json:"import_id,omitempty"`
	Frequency       string           `json:"frequency,omitempty"`
	SubTransactions []SubTransaction `json:"subtransactions,omitempty"`
}
