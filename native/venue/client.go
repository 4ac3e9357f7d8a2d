package venue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lockdropd/crypto"
)

// Client queries the yield venue's read API over HTTP. It implements the
// ledger's venue querier surface: the contract's share balance, its reward
// balance and the rewards still pending.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
}

// Option adjusts the client construction.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		if c != nil {
			client.http = c
		}
	}
}

// WithTimeout bounds each venue query.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		if d > 0 {
			client.timeout = d
		}
	}
}

var errEmptyBaseURL = errors.New("venue: base URL required")

// NewClient builds a venue client against the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errEmptyBaseURL
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("venue: parse base URL: %w", err)
	}
	client := &Client{
		baseURL: parsed,
		http:    &http.Client{},
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// amountPayload is the wire shape every balance endpoint responds with.
type amountPayload struct {
	Amount string `json:"amount"`
}

// ShareBalance returns the holder's venue share token balance.
func (c *Client) ShareBalance(holder crypto.Address) (*big.Int, error) {
	return c.fetchAmount("shares", holder)
}

// PendingRewards returns the holder's accrued but unclaimed venue rewards.
func (c *Client) PendingRewards(holder crypto.Address) (*big.Int, error) {
	return c.fetchAmount("pending-rewards", holder)
}

// RewardBalance returns the holder's reward token balance.
func (c *Client) RewardBalance(holder crypto.Address) (*big.Int, error) {
	return c.fetchAmount("reward-balance", holder)
}

func (c *Client) fetchAmount(endpoint string, holder crypto.Address) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	target := c.baseURL.JoinPath("v1", endpoint, holder.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("venue: build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("venue: query %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("venue: %s returned status %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload amountPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("venue: decode %s response: %w", endpoint, err)
	}
	amount, ok := new(big.Int).SetString(strings.TrimSpace(payload.Amount), 10)
	if !ok {
		return nil, fmt.Errorf("venue: %s returned malformed amount %q", endpoint, payload.Amount)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("venue: %s returned negative amount %s", endpoint, amount)
	}
	return amount, nil
}
