package config

import (
	"fmt"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validateQueue(cfg.Queue); err != nil {
		errors = append(errors, err)
	}

	if err := validateSubscriber(cfg.Subscriber); err != nil {
		errors = append(errors, err)
	}

	if err := validateLedger(cfg.Ledger); err != nil {
		errors = append(errors, err)
	}

	if err := validateNotify(cfg.Notify); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	return nil
}

func validateQueue(cfg QueueConfig) error {
	if cfg.URL == "" {
		return &ValidationError{
			Field:   "queue.url",
			Message: "queue URL is required",
		}
	}

	if cfg.Stream == "" {
		return &ValidationError{
			Field:   "queue.stream",
			Message: "stream name is required",
		}
	}

	if cfg.Consumer == "" {
		return &ValidationError{
			Field:   "queue.consumer",
			Message: "durable consumer name is required",
		}
	}

	return nil
}

func validateSubscriber(cfg SubscriberConfig) error {
	if cfg.Workers < 1 {
		return &ValidationError{
			Field:   "subscriber.workers",
			Message: fmt.Sprintf("worker count must be at least 1, got %d", cfg.Workers),
		}
	}

	if cfg.BatchSize < 1 {
		return &ValidationError{
			Field:   "subscriber.batch_size",
			Message: fmt.Sprintf("batch size must be at least 1, got %d", cfg.BatchSize),
		}
	}

	if cfg.PollWaitSeconds < 1 {
		return &ValidationError{
			Field:   "subscriber.poll_wait_seconds",
			Message: "poll wait must be positive",
		}
	}

	if cfg.RetryDelaySeconds < 1 {
		return &ValidationError{
			Field:   "subscriber.retry_delay_seconds",
			Message: "retry delay must be positive",
		}
	}

	if cfg.DrainTimeoutSeconds < 1 {
		return &ValidationError{
			Field:   "subscriber.drain_timeout_seconds",
			Message: "drain timeout must be positive",
		}
	}

	return nil
}

func validateLedger(cfg LedgerConfig) error {
	if cfg.BaseURL == "" {
		return &ValidationError{
			Field:   "ledger.base_url",
			Message: "ledger base URL is required",
		}
	}

	return nil
}

func validateNotify(cfg NotifyConfig) error {
	if cfg.BaseURL == "" {
		return &ValidationError{
			Field:   "notify.base_url",
			Message: "notification service base URL is required",
		}
	}

	if cfg.Templates.DisputeCreated == "" ||
		cfg.Templates.DisputeLost == "" ||
		cfg.Templates.DisputeWon == "" ||
		cfg.Templates.DisputeEvidenceSubmitted == "" {
		return &ValidationError{
			Field:   "notify.templates",
			Message: "all four dispute template ids are required",
		}
	}

	if cfg.EvidenceLeadDays < 0 {
		return &ValidationError{
			Field:   "notify.evidence_lead_days",
			Message: "evidence lead days cannot be negative",
		}
	}

	if cfg.DisplayTimezone != "" {
		if _, err := time.LoadLocation(cfg.DisplayTimezone); err != nil {
			return &ValidationError{
				Field:   "notify.display_timezone",
				Message: fmt.Sprintf("unknown timezone: %s", cfg.DisplayTimezone),
			}
		}
	}

	if cfg.RateLimit.Enabled && cfg.RateLimit.RPS <= 0 {
		return &ValidationError{
			Field:   "notify.rate_limit.rps",
			Message: "rate limit rps must be positive when enabled",
		}
	}

	return nil
}
