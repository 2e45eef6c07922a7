// Package ynab is a minimal client for the YNAB v1 API, covering the
// endpoints the mirror needs: budget/account/category lookup, transaction
// listing, bulk create/update, scheduled transactions and deletes.
package ynab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// DefaultBaseURL is the production YNAB API endpoint.
const DefaultBaseURL = "https://api.youneedabudget.com/v1"

var dateOnly = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// Client is a YNAB API client.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

// NewClient creates a client authenticated with a personal access token.
func NewClient(accessToken string) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     DefaultBaseURL,
		accessToken: accessToken,
	}
}

// NewClientWithBaseURL creates a client against a custom endpoint; used by
// tests.
func NewClientWithBaseURL(accessToken, baseURL string) *Client {
	c := NewClient(accessToken)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type apiError struct {
	Error struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Detail string `json:"detail"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, body, out any) error {
	u := fmt.Sprintf("%s/%s", c.baseURL, endpoint)
	if len(params) > 0 {
		u = fmt.Sprintf("%s?%s", u, params.Encode())
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.accessToken))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.parseError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) parseError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)
	var apiErr apiError
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Name != "" {
		return fmt.Errorf("ynab API error (status %d): %s: %s", resp.StatusCode, apiErr.Error.Name, apiErr.Error.Detail)
	}
	return fmt.Errorf("ynab API error (status %d): %s", resp.StatusCode, string(data))
}

// ListBudgets returns all budgets for the authenticated user.
func (c *Client) ListBudgets(ctx context.Context) ([]Budget, error) {
	var resp struct {
		Data struct {
			Budgets []Budget `json:"budgets"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "budgets", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("ListBudgets: %w", err)
	}
	return resp.Data.Budgets, nil
}

// GetBudgetID resolves a budget name to its ID.
func (c *Client) GetBudgetID(ctx context.Context, name string) (string, error) {
	budgets, err := c.ListBudgets(ctx)
	if err != nil {
		return "", err
	}
	for _, b := range budgets {
		if b.Name == name {
			return b.ID, nil
		}
	}
	return "", fmt.Errorf("budget %q not found", name)
}

// ListAccounts returns all accounts in a budget.
func (c *Client) ListAccounts(ctx context.Context, budgetID string) ([]Account, error) {
	var resp struct {
		Data struct {
			Accounts []Account `json:"accounts"`
		} `json:"data"`
	}
	endpoint := fmt.Sprintf("budgets/%s/accounts", budgetID)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("ListAccounts: %w", err)
	}
	return resp.Data.Accounts, nil
}

// GetAccountID resolves an account name to its ID. Names are compared with
// surrounding whitespace trimmed.
func (c *Client) GetAccountID(ctx context.Context, budgetID, name string) (string, error) {
	accounts, err := c.ListAccounts(ctx, budgetID)
	if err != nil {
		return "", err
	}
	for _, a := range accounts {
		if strings.TrimSpace(a.Name) == strings.TrimSpace(name) {
			return a.ID, nil
		}
	}
	return "", fmt.Errorf("account %q not found", name)
}

// GetCategoryID resolves a category name to its ID, searching every category
// group.
func (c *Client) GetCategoryID(ctx context.Context, budgetID, name string) (string, error) {
	var resp struct {
		Data struct {
			CategoryGroups []CategoryGroup `json:"category_groups"`
		} `json:"data"`
	}
	endpoint := fmt.Sprintf("budgets/%s/categories", budgetID)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, nil, &resp); err != nil {
		return "", fmt.Errorf("GetCategoryID: %w", err)
	}
	for _, group := range resp.Data.CategoryGroups {
		for _, cat := range group.Categories {
			if strings.TrimSpace(cat.Name) == strings.TrimSpace(name) {
				return cat.ID, nil
			}
		}
	}
	return "", fmt.Errorf("category %q not found", name)
}

// ListTransactions returns transactions, scoped to one account when accountID
// is non-empty and bounded by since/before when non-zero.
func (c *Client) ListTransactions(ctx context.Context, budgetID, accountID string, since, before time.Time) ([]Transaction, error) {
	endpoint := fmt.Sprintf("budgets/%s/transactions", budgetID)
	if accountID != "" {
		endpoint = fmt.Sprintf("budgets/%s/accounts/%s/transactions", budgetID, accountID)
	}
	params := url.Values{}
	if !since.IsZero() {
		params.Set("since_date", since.Format("2006-01-02"))
	}
	if !before.IsZero() {
		params.Set("before_date", before.Format("2006-01-02"))
	}
	var resp struct {
		Data struct {
			Transactions []Transaction `json:"transactions"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, params, nil, &resp); err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}
	return resp.Data.Transactions, nil
}

// ListScheduledTransactions returns all scheduled transactions in a budget.
func (c *Client) ListScheduledTransactions(ctx context.Context, budgetID string) ([]Transaction, error) {
	var resp struct {
		Data struct {
			ScheduledTransactions []Transaction `json:"scheduled_transactions"`
		} `json:"data"`
	}
	endpoint := fmt.Sprintf("budgets/%s/scheduled_transactions", budgetID)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("ListScheduledTransactions: %w", err)
	}
	return resp.Data.ScheduledTransactions, nil
}

// CreateTransactions creates a batch of transactions in one call.
func (c *Client) CreateTransactions(ctx context.Context, budgetID string, transactions []Transaction) error {
	endpoint := fmt.Sprintf("budgets/%s/transactions", budgetID)
	body := map[string][]Transaction{"transactions": transactions}
	if err := c.do(ctx, http.MethodPost, endpoint, nil, body, nil); err != nil {
		return fmt.Errorf("CreateTransactions: %w", err)
	}
	return nil
}

// UpdateTransactions updates a batch of transactions in one call; each entry
// must carry its transaction ID.
func (c *Client) UpdateTransactions(ctx context.Context, budgetID string, transactions []Transaction) error {
	endpoint := fmt.Sprintf("budgets/%s/transactions", budgetID)
	body := map[string][]Transaction{"transactions": transactions}
	if err := c.do(ctx, http.MethodPatch, endpoint, nil, body, nil); err != nil {
		return fmt.Errorf("UpdateTransactions: %w", err)
	}
	return nil
}

// UpdateTransaction updates a single transaction.
func (c *Client) UpdateTransaction(ctx context.Context, budgetID, transactionID string, transaction Transaction) error {
	endpoint := fmt.Sprintf("budgets/%s/transactions/%s", budgetID, transactionID)
	body := map[string]Transaction{"transaction": transaction}
	if err := c.do(ctx, http.MethodPatch, endpoint, nil, body, nil); err != nil {
		return fmt.Errorf("UpdateTransaction: %w", err)
	}
	return nil
}

// CreateScheduledTransaction creates one scheduled transaction. The API only
// accepts these one at a time.
func (c *Client) CreateScheduledTransaction(ctx context.Context, budgetID string, transaction Transaction) error {
	endpoint := fmt.Sprintf("budgets/%s/scheduled_transactions", budgetID)
	body := map[string]Transaction{"scheduled_transaction": transaction}
	if err := c.do(ctx, http.MethodPost, endpoint, nil, body, nil); err != nil {
		return fmt.Errorf("CreateScheduledTransaction: %w", err)
	}
	return nil
}

// DeleteTransaction deletes a transaction by ID.
func (c *Client) DeleteTransaction(ctx context.Context, budgetID, transactionID string) error {
	endpoint := fmt.Sprintf("budgets/%s/transactions/%s", budgetID, transactionID)
	if err := c.do(ctx, http.MethodDelete, endpoint, nil, nil, nil); err != nil {
		return fmt.Errorf("DeleteTransaction: %w", err)
	}
	return nil
}

// MakeImportID builds the import-dedup ID for a transaction:
// "YNAB:<amount>:<date>[:<salt>]". The date must be "YYYY-MM-DD". YNAB
// rejects duplicate import IDs, so the caller salts them with a random
// per-run value to avoid accidental collisions across runs.
func MakeImportID(amount int64, date, salt string) (string, error) {
	if !dateOnly.MatchString(date) {
		return "", fmt.Errorf("invalid date format: %q, expected YYYY-MM-DD", date)
	}
	importID := fmt.Sprintf("YNAB:%d:%s", amount, date)
	if salt != "" {
		importID += ":" + salt
	}
	return importID, nil
}
