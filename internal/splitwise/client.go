// Package splitwise is a client for the Splitwise v3.0 API plus the
// normalizer that turns its raw expense records into domain expenses.
package splitwise

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/carden/splitsync/internal/domain"
)

// DefaultBaseURL is the production Splitwise API endpoint.
const DefaultBaseURL = "https://secure.splitwise.com/api/v3.0"

// PageSize is the fixed page size for expense listing.
const PageSize = 50

const timeFormat = "2006-01-02T15:04:05Z"

// ClientConfig configures a Splitwise API client. The consumer key/secret
// pair belongs to the registered application; the API key authenticates the
// current user and is what actually signs requests.
type ClientConfig struct {
	ConsumerKey    string
	ConsumerSecret string
	APIKey         string
	BaseURL        string        // Default: DefaultBaseURL
	Timeout        time.Duration // Default: 30 seconds
}

// Client is a Splitwise API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a new Splitwise API client.
func NewClient(config ClientConfig) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     config.APIKey,
	}
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
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("splitwise API error (status %d): %s", resp.StatusCode, string(data))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// GetCurrentUser returns the authenticated user.
func (c *Client) GetCurrentUser(ctx context.Context) (User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "get_current_user", nil, nil, &resp); err != nil {
		return User{}, fmt.Errorf("GetCurrentUser: %w", err)
	}
	return resp.User, nil
}

// GetFriends returns the current user's friend list.
func (c *Client) GetFriends(ctx context.Context) ([]User, error) {
	var resp struct {
		Friends []User `json:"friends"`
	}
	if err := c.do(ctx, http.MethodGet, "get_friends", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("GetFriends: %w", err)
	}
	return resp.Friends, nil
}

// GetGroup fetches one group by ID.
func (c *Client) GetGroup(ctx context.Context, id int64) (Group, error) {
	var resp struct {
		Group Group `json:"group"`
	}
	endpoint := fmt.Sprintf("get_group/%d", id)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, nil, &resp); err != nil {
		return Group{}, fmt.Errorf("GetGroup: %w", err)
	}
	return resp.Group, nil
}

// GroupName resolves a group ID to its name.
func (c *Client) GroupName(ctx context.Context, id int64) (string, error) {
	group, err := c.GetGroup(ctx, id)
	if err != nil {
		return "", err
	}
	return group.Name, nil
}

// ListExpenses returns all raw expenses in the window, paginating with the
// fixed page size until an empty page. When useUpdatedAt is set the window
// filters on record modification time instead of expense date, which also
// surfaces deletions and edits of older expenses.
func (c *Client) ListExpenses(ctx context.Context, after, before time.Time, useUpdatedAt bool) ([]Expense, error) {
	var all []Expense
	for offset := 0; ; offset += PageSize {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(PageSize))
		params.Set("offset", strconv.Itoa(offset))
		if useUpdatedAt {
			params.Set("updated_after", after.UTC().Format(timeFormat))
			if !before.IsZero() {
				params.Set("updated_before", before.UTC().Format(timeFormat))
			}
		} else {
			params.Set("dated_after", after.UTC().Format(timeFormat))
			if !before.IsZero() {
				params.Set("dated_before", before.UTC().Format(timeFormat))
			}
		}

		var resp struct {
			Expenses []Expense `json:"expenses"`
		}
		if err := c.do(ctx, http.MethodGet, "get_expenses", params, nil, &resp); err != nil {
			return nil, fmt.Errorf("ListExpenses: %w", err)
		}
		if len(resp.Expenses) == 0 {
			return all, nil
		}
		all = append(all, resp.Expenses...)
	}
}

type createExpenseResponse struct {
	Expenses []Expense           `json:"expenses"`
	Errors   map[string][]string `json:"errors"`
}

// CreateExpense creates a new expense with explicit per-user shares. The API
// takes participants as indexed users__N__* fields.
func (c *Client) CreateExpense(ctx context.Context, expense domain.NewExpense) error {
	body := map[string]any{
		"cost":        expense.Cost.StringFixed(2),
		"date":        expense.Date,
		"description": expense.Description,
	}
	for i, share := range expense.Shares {
		body[fmt.Sprintf("users__%d__user_id", i)] = share.UserID
		body[fmt.Sprintf("users__%d__paid_share", i)] = share.Paid.StringFixed(2)
		body[fmt.Sprintf("users__%d__owed_share", i)] = share.Owed.StringFixed(2)
	}

	var resp createExpenseResponse
	if err := c.do(ctx, http.MethodPost, "create_expense", nil, body, &resp); err != nil {
		return fmt.Errorf("CreateExpense: %w", err)
	}
	if len(resp.Errors) > 0 {
		return fmt.Errorf("CreateExpense: API rejected expense: %v", resp.Errors)
	}
	return nil
}
