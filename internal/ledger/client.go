package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"payadmin/internal/config"
	"payadmin/internal/constants"
	"payadmin/internal/logger"
	"payadmin/pkg/circuitbreaker"
	"payadmin/pkg/metrics"
	"payadmin/pkg/retry"
)

// Transaction is the ledger's read model of a payment, fetched by the
// payment's external id. Only the fields used for notification
// personalisation are decoded.
type Transaction struct {
	TransactionID string    `json:"transaction_id"`
	Reference     string    `json:"reference"`
	CreatedDate   time.Time `json:"created_date"`
}

type Client struct {
	baseURL string
	client  *http.Client
	policy  retry.Policy
	breaker *circuitbreaker.Wrapper
	logger  logger.Logger
}

func NewClient(cfg config.LedgerConfig, log logger.Logger) *Client {
	timeout := constants.DefaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
		policy: retry.FromConfig(
			cfg.Retry.MaxAttempts,
			cfg.Retry.InitialInterval,
			cfg.Retry.MaxInterval,
			cfg.Retry.Multiplier,
		),
		logger: log,
	}
}

// WithBreaker wraps all transaction lookups in the given circuit
// breaker.
func (c *Client) WithBreaker(breaker *circuitbreaker.Wrapper) *Client {
	c.breaker = breaker
	return c
}

// GetTransaction fetches the parent payment transaction. The lookup
// carries override_account_id_restriction because this subscriber is a
// trusted internal caller, not a tenant-scoped one. Any non-2xx
// response or transport failure is returned as an error; the caller
// decides whether the message is retried.
func (c *Client) GetTransaction(ctx context.Context, externalID string) (*Transaction, error) {
	requestURL := fmt.Sprintf("%s/v1/transaction/%s?override_account_id_restriction=true",
		c.baseURL, url.PathEscape(externalID))

	var txn *Transaction
	err := retry.Do(ctx, c.policy, func() error {
		fetched, err := c.fetch(ctx, requestURL)
		if err != nil {
			return err
		}
		txn = fetched
		return nil
	})
	if err != nil {
		metrics.LedgerRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("ledger lookup for transaction %s failed: %w", externalID, err)
	}

	metrics.LedgerRequestsTotal.WithLabelValues("success").Inc()
	return txn, nil
}

func (c *Client) fetch(ctx context.Context, requestURL string) (*Transaction, error) {
	if c.breaker != nil {
		result, err := c.breaker.Execute(ctx, func() (interface{}, error) {
			return c.doFetch(ctx, requestURL)
		})
		if err != nil {
			return nil, err
		}
		return result.(*Transaction), nil
	}
	return c.doFetch(ctx, requestURL)
}

func (c *Client) doFetch(ctx context.Context, requestURL string) (*Transaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ledger request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < constants.HTTPStatusOKMin || resp.StatusCode >= constants.HTTPStatusOKMax {
		return nil, fmt.Errorf("ledger returned status: %d", resp.StatusCode)
	}

	var txn Transaction
	if err := json.NewDecoder(resp.Body).Decode(&txn); err != nil {
		return nil, fmt.Errorf("failed to decode ledger response: %w", err)
	}

	return &txn, nil
}
