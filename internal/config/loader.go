package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func LoadConfig(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(configFile)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	bindEnvVariables()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("subscriber.workers", 1)
	viper.SetDefault("subscriber.batch_size", 10)
	viper.SetDefault("subscriber.poll_wait_seconds", 20)
	viper.SetDefault("subscriber.retry_delay_seconds", 900)
	viper.SetDefault("subscriber.drain_timeout_seconds", 25)
	viper.SetDefault("notify.evidence_lead_days", 7)
	viper.SetDefault("notify.display_timezone", "Europe/London")
	viper.SetDefault("ledger.timeout_seconds", 10)
	viper.SetDefault("notify.timeout_seconds", 10)
	viper.SetDefault("cache.ttl_seconds", 3600)
	viper.SetDefault("logging.level", "info")
}

func bindEnvVariables() {
	viper.BindEnv("queue.url", "QUEUE_URL")
	viper.BindEnv("queue.stream", "QUEUE_STREAM")
	viper.BindEnv("queue.subject", "QUEUE_SUBJECT")
	viper.BindEnv("queue.consumer", "QUEUE_CONSUMER")

	viper.BindEnv("subscriber.workers", "SUBSCRIBER_WORKERS")
	viper.BindEnv("subscriber.batch_size", "SUBSCRIBER_BATCH_SIZE")
	viper.BindEnv("subscriber.poll_wait_seconds", "SUBSCRIBER_POLL_WAIT_SECONDS")
	viper.BindEnv("subscriber.retry_delay_seconds", "SUBSCRIBER_RETRY_DELAY_SECONDS")
	viper.BindEnv("subscriber.drain_timeout_seconds", "SUBSCRIBER_DRAIN_TIMEOUT_SECONDS")

	viper.BindEnv("ledger.base_url", "LEDGER_BASE_URL")

	viper.BindEnv("notify.base_url", "NOTIFY_BASE_URL")
	viper.BindEnv("notify.api_key", "NOTIFY_API_KEY")
	viper.BindEnv("notify.reply_to_id", "NOTIFY_REPLY_TO_ID")
	viper.BindEnv("notify.templates.dispute_created", "NOTIFY_TEMPLATES_DISPUTE_CREATED")
	viper.BindEnv("notify.templates.dispute_lost", "NOTIFY_TEMPLATES_DISPUTE_LOST")
	viper.BindEnv("notify.templates.dispute_won", "NOTIFY_TEMPLATES_DISPUTE_WON")
	viper.BindEnv("notify.templates.dispute_evidence_submitted", "NOTIFY_TEMPLATES_DISPUTE_EVIDENCE_SUBMITTED")

	viper.BindEnv("database.postgres.host", "DATABASE_POSTGRES_HOST")
	viper.BindEnv("database.postgres.port", "DATABASE_POSTGRES_PORT")
	viper.BindEnv("database.postgres.user", "DATABASE_POSTGRES_USER")
	viper.BindEnv("database.postgres.password", "DATABASE_POSTGRES_PASSWORD")
	viper.BindEnv("database.postgres.dbname", "DATABASE_POSTGRES_DBNAME")
	viper.BindEnv("database.postgres.sslmode", "DATABASE_POSTGRES_SSLMODE")

	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("cache.redis.host", "CACHE_REDIS_HOST")
	viper.BindEnv("cache.redis.port", "CACHE_REDIS_PORT")
	viper.BindEnv("cache.redis.password", "CACHE_REDIS_PASSWORD")
	viper.BindEnv("cache.redis.db", "CACHE_REDIS_DB")

	viper.BindEnv("server.port", "SERVER_PORT")

	viper.BindEnv("logging.level", "LOGGING_LEVEL")
	viper.BindEnv("logging.format", "LOGGING_FORMAT")
}
