package config

import (
	"time"
)

type Config struct {
	Server         ServerConfig
	Queue          QueueConfig
	Subscriber     SubscriberConfig
	Ledger         LedgerConfig
	Notify         NotifyConfig
	Database       DatabaseConfig
	Cache          CacheConfig
	Logging        LoggingConfig
	CircuitBreaker CircuitBreakerConfig
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type QueueConfig struct {
	URL      string `mapstructure:"url"`
	Stream   string `mapstructure:"stream"`
	Subject  string `mapstructure:"subject"`
	Consumer string `mapstructure:"consumer"`
}

type SubscriberConfig struct {
	Workers             int `mapstructure:"workers"`
	BatchSize           int `mapstructure:"batch_size"`
	PollWaitSeconds     int `mapstructure:"poll_wait_seconds"`
	RetryDelaySeconds   int `mapstructure:"retry_delay_seconds"`
	DrainTimeoutSeconds int `mapstructure:"drain_timeout_seconds"`
}

type LedgerConfig struct {
	BaseURL        string      `mapstructure:"base_url"`
	TimeoutSeconds int         `mapstructure:"timeout_seconds"`
	Retry          RetryConfig `mapstructure:"retry"`
}

type NotifyConfig struct {
	BaseURL          string          `mapstructure:"base_url"`
	APIKey           string          `mapstructure:"api_key"`
	ReplyToID        string          `mapstructure:"reply_to_id"`
	TimeoutSeconds   int             `mapstructure:"timeout_seconds"`
	EvidenceLeadDays int             `mapstructure:"evidence_lead_days"`
	DisplayTimezone  string          `mapstructure:"display_timezone"`
	Templates        TemplatesConfig `mapstructure:"templates"`
	RateLimit        RateLimitConfig `mapstructure:"rate_limit"`
	Retry            RetryConfig     `mapstructure:"retry"`
}

type TemplatesConfig struct {
	DisputeCreated           string `mapstructure:"dispute_created"`
	DisputeLost              string `mapstructure:"dispute_lost"`
	DisputeWon               string `mapstructure:"dispute_won"`
	DisputeEvidenceSubmitted string `mapstructure:"dispute_evidence_submitted"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type CacheConfig struct {
	Enabled    bool        `mapstructure:"enabled"`
	TTLSeconds int         `mapstructure:"ttl_seconds"`
	Redis      RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}
