// Package ledger is the HTTP client for the personal-finance ledger
// server: the remote currency catalog and transaction creation.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/oauth2"

	"github.com/mtkohut/spendwatch/pkg/api"
)

const (
	currenciesPath   = "/api/v1/currencies"
	transactionsPath = "/api/v1/transactions"
)

// Config holds the ledger client configuration.
type Config struct {
	// BaseURL is the root URL of the ledger server.
	BaseURL string
	// Token is a personal access token sent as a bearer token.
	Token string
	// Timeout bounds each HTTP request. Defaults to 30 seconds.
	Timeout time.Duration
	// RetryAttempts is the number of tries for throttled or failing
	// requests. Defaults to 3.
	RetryAttempts uint
	// RetryDelay is the base delay between retries. Defaults to 2s.
	RetryDelay time.Duration
}

// Client talks to the ledger server.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	logger        *slog.Logger
	retryAttempts uint
	retryDelay    time.Duration
}

// ValidationError is returned when the ledger rejects a transaction.
type ValidationError struct {
	StatusCode int
	Message    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ledger rejected request (%d): %s", e.StatusCode, e.Message)
}

// httpError marks a transient server-side failure eligible for retry.
type httpError struct {
	StatusCode int
}

func (e *httpError) Error() string {
	return fmt.Sprintf("ledger returned status %d", e.StatusCode)
}

// New creates a ledger client.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("ledger base URL is required")
	}
	if cfg.Token == "" {
		return nil, errors.New("ledger access token is required")
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	httpClient := oauth2.NewClient(context.Background(), src)
	httpClient.Timeout = cfg.Timeout

	return &Client{
		httpClient:    httpClient,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		logger:        logger,
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
	}, nil
}

// currenciesResponse is the catalog listing envelope.
type currenciesResponse struct {
	Data []api.Currency `json:"data"`
}

// ListCurrencies fetches the currency catalog.
func (c *Client) ListCurrencies(ctx context.Context) ([]api.Currency, error) {
	var out currenciesResponse
	if err := c.do(ctx, http.MethodGet, currenciesPath, nil, &out); err != nil {
		return nil, fmt.Errorf("listing currencies: %w", err)
	}
	return out.Data, nil
}

// createRequest is the transaction-creation envelope. Duplicate-hash
// detection and rule application are always requested.
type createRequest struct {
	ErrorIfDuplicateHash bool                 `json:"error_if_duplicate_hash"`
	ApplyRules           bool                 `json:"apply_rules"`
	Transactions         []transactionPayload `json:"transactions"`
}

type transactionPayload struct {
	Type            string `json:"type"`
	Date            string `json:"date"`
	Amount          string `json:"amount"`
	Description     string `json:"description"`
	Notes           string `json:"notes,omitempty"`
	SourceAccountID string `json:"source_id"`
}

type createResponse struct {
	Data api.TransactionRecord `json:"data"`
}

// CreateTransaction posts one transaction to the ledger.
func (c *Client) CreateTransaction(ctx context.Context, req api.TransactionRequest) (api.TransactionRecord, error) {
	body := createRequest{
		ErrorIfDuplicateHash: true,
		ApplyRules:           true,
		Transactions: []transactionPayload{{
			Type:            string(req.Type),
			Date:            req.Date.Format(time.RFC3339),
			Amount:          req.Amount,
			Description:     req.Description,
			Notes:           req.Notes,
			SourceAccountID: req.SourceAccountID,
		}},
	}

	var out createResponse
	if err := c.do(ctx, http.MethodPost, transactionsPath, body, &out); err != nil {
		return api.TransactionRecord{}, fmt.Errorf("creating transaction: %w", err)
	}
	return out.Data, nil
}

// do performs one request with retries on throttling and server errors.
// Client errors (validation, auth) are never retried.
func (c *Client) do(ctx context.Context, method, path string, reqBody, respBody any) error {
	var encoded []byte
	if reqBody != nil {
		var err error
		encoded, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	return retry.Do(
		func() error {
			return c.once(ctx, method, path, encoded, respBody)
		},
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			var he *httpError
			if errors.As(err, &he) {
				retryable := he.StatusCode == http.StatusTooManyRequests || he.StatusCode >= 500
				if retryable {
					c.logger.Warn("retrying ledger request", "path", path, "status", he.StatusCode)
				}
				return retryable
			}
			return false
		}),
		retry.Attempts(c.retryAttempts),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
	)
}

func (c *Client) once(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &httpError{StatusCode: resp.StatusCode}
	case resp.StatusCode >= 400:
		return &ValidationError{
			StatusCode: resp.StatusCode,
			Message:    readMessage(resp.Body),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// readMessage extracts the server's error message, falling back to the
// raw body.
func readMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(raw))
}
