package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"payadmin/internal/config"
	"payadmin/internal/constants"
	"payadmin/internal/logger"
	"payadmin/pkg/metrics"
	"payadmin/pkg/retry"
)

// Sender sends one composed notification to one recipient.
type Sender interface {
	Send(ctx context.Context, notification Notification) error
}

type emailRequest struct {
	EmailAddress    string            `json:"email_address"`
	TemplateID      string            `json:"template_id"`
	EmailReplyToID  string            `json:"email_reply_to_id,omitempty"`
	Personalisation map[string]string `json:"personalisation"`
	Reference       string            `json:"reference"`
}

// Client talks to the transactional-email API. It is safe for
// concurrent use by all workers; the underlying http.Client pools
// connections.
type Client struct {
	baseURL   string
	apiKey    string
	replyToID string
	client    *http.Client
	limiter   *rate.Limiter
	policy    retry.Policy
	logger    logger.Logger
}

func NewClient(cfg config.NotifyConfig, log logger.Logger) *Client {
	timeout := constants.DefaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimit.Enabled {
		burst := cfg.RateLimit.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), burst)
	}

	return &Client{
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		replyToID: cfg.ReplyToID,
		client:    &http.Client{Timeout: timeout},
		limiter:   limiter,
		policy: retry.FromConfig(
			cfg.Retry.MaxAttempts,
			cfg.Retry.InitialInterval,
			cfg.Retry.MaxInterval,
			cfg.Retry.Multiplier,
		),
		logger: log,
	}
}

// Send posts one email-send request. The reference is regenerated per
// attempt: the email API treats every call as a new send, and
// duplicate sends on queue redelivery are an accepted trade-off of
// at-least-once delivery.
func (c *Client) Send(ctx context.Context, notification Notification) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}

	start := time.Now()
	err := retry.Do(ctx, c.policy, func() error {
		return c.post(ctx, notification)
	})
	metrics.ObserveNotificationSendDuration(time.Since(start))

	if err != nil {
		metrics.NotificationSendsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("email send to %s failed: %w", notification.RecipientEmail, err)
	}

	metrics.NotificationSendsTotal.WithLabelValues("success").Inc()
	return nil
}

func (c *Client) post(ctx context.Context, notification Notification) error {
	body, err := json.Marshal(emailRequest{
		EmailAddress:    notification.RecipientEmail,
		TemplateID:      notification.TemplateID,
		EmailReplyToID:  c.replyToID,
		Personalisation: notification.Personalisation,
		Reference:       uuid.NewString(),
	})
	if err != nil {
		return retry.NewPermanentError(fmt.Errorf("failed to marshal email request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/notifications/email", bytes.NewReader(body))
	if err != nil {
		return retry.NewPermanentError(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("email api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= constants.HTTPStatusOKMin && resp.StatusCode < constants.HTTPStatusOKMax {
		return nil
	}

	statusErr := fmt.Errorf("email api returned status: %d", resp.StatusCode)
	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		// A rejected request will not heal within this attempt.
		return retry.NewPermanentError(statusErr)
	}
	return statusErr
}
