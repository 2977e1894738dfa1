// Package mirror implements the Ledger port against the Hedera Mirror Node
// REST API.
package mirror

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/layer-3/hashgate/core"
	"github.com/layer-3/hashgate/ports"
)

const (
	defaultRetryBase  = 300 * time.Millisecond
	defaultMaxRetries = 3
	defaultTimeout    = 10 * time.Second

	// DER envelope the mirror node sometimes wraps raw Ed25519 keys in.
	ed25519DERPrefix = "302a300506032b6570032100"
)

// ClientConfig configures a mirror node client. Zero values fall back to
// production defaults; RetryBase and MaxRetries exist so tests don't sleep.
type ClientConfig struct {
	BaseURL    string
	Logger     *slog.Logger
	HTTPClient *http.Client
	RetryBase  time.Duration
	MaxRetries int
}

// Client is a Hedera Mirror Node REST client
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	retryBase  time.Duration
	maxRetries int
}

// NewClient creates a new mirror node client
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	retryBase := cfg.RetryBase
	if retryBase <= 0 {
		retryBase = defaultRetryBase
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		retryBase:  retryBase,
		maxRetries: maxRetries,
	}
}

type accountResponse struct {
	Account string `json:"account"`
	Key     *struct {
		Type string `json:"_type"`
		Key  string `json:"key"`
	} `json:"key"`
}

// AccountKey resolves the account's primary public key. Only a single
// Ed25519 key is supported; key lists, threshold keys and ECDSA keys fail
// closed with core.ErrUnsupportedKey.
func (c *Client) AccountKey(ctx context.Context, accountID string) (ed25519.PublicKey, error) {
	var resp accountResponse
	if err := c.getJSON(ctx, c.baseURL+"/api/v1/accounts/"+accountID, &resp); err != nil {
		return nil, err
	}

	if resp.Key == nil || resp.Key.Key == "" {
		return nil, fmt.Errorf("account %s has no resolvable key: %w", accountID, core.ErrUnsupportedKey)
	}
	if resp.Key.Type != "ED25519" {
		return nil, fmt.Errorf("account %s key type %s: %w", accountID, resp.Key.Type, core.ErrUnsupportedKey)
	}

	keyHex := strings.TrimPrefix(strings.ToLower(resp.Key.Key), ed25519DERPrefix)
	raw, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("account %s key is not valid hex: %w", accountID, core.ErrUnsupportedKey)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("account %s key is %d bytes, want %d: %w",
			accountID, len(raw), ed25519.PublicKeySize, core.ErrUnsupportedKey)
	}

	return ed25519.PublicKey(raw), nil
}

// TokenBalances returns a pager over the token's balance listing.
func (c *Client) TokenBalances(tokenID string, limit, maxPages, target int) ports.BalancePager {
	return &balancePager{
		client:   c,
		nextPath: fmt.Sprintf("/api/v1/tokens/%s/balances?limit=%d", tokenID, limit),
		maxPages: maxPages,
		target:   target,
	}
}

// getJSON issues a GET and decodes the response body. HTTP 429 and 5xx
// responses are retried with a doubling backoff before giving up.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	backoff := c.retryBase

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("mirror node request canceled: %w", ctx.Err())
			case <-timer.C:
			}
			backoff *= 2
		}

		status, retryable, err := c.tryGetJSON(ctx, url, out)
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable {
			return err
		}

		c.logger.Warn("mirror node request failed, retrying",
			slog.String("url", url),
			slog.Int("status", status),
			slog.Int("attempt", attempt+1),
		)
	}

	return fmt.Errorf("mirror node retries exhausted: %w", lastErr)
}

func (c *Client) tryGetJSON(ctx context.Context, url string, out any) (status int, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, false, fmt.Errorf("failed to build mirror node request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, true, fmt.Errorf("mirror node request failed: %w", core.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, false, fmt.Errorf("failed to decode mirror node response: %w", err)
		}
		return resp.StatusCode, false, nil
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, false, core.ErrAccountNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, true, fmt.Errorf("mirror node returned %d: %w", resp.StatusCode, core.ErrUpstreamUnavailable)
	default:
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, false, fmt.Errorf("mirror node returned %d: %w", resp.StatusCode, core.ErrUpstreamUnavailable)
	}
}

var _ ports.Ledger = (*Client)(nil)
