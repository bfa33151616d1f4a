// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetEnv() string
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// JWTConfig provides JWT validation settings for the admin middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// EnrichmentConfig provides settings for the company-enrichment API.
type EnrichmentConfig interface {
	GetEnrichmentAPIURL() string
	GetEnrichmentAPIKey() string
	IsEnrichmentEnabled() bool
}

// LeadsConfig provides settings for the lead qualification module.
type LeadsConfig interface {
	GetSchedulingURL() string
	GetScoringPolicyPath() string
}

// DownloadsConfig provides settings for the gated-download module.
type DownloadsConfig interface {
	GetDownloadCap() int
	GetDownloadURLTTL() time.Duration
	GetSchedulingURL() string
	GetFollowUpDelay() time.Duration
}

// EmailConfig provides settings for email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetBrevoAPIKey() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailMaxRetries() int
}

// QuotesConfig provides settings for quote generation.
type QuotesConfig interface {
	GetAppBaseURL() string
	GetQuoteValidityDays() int
	GetQuoteReminderDays() int
}

// NotificationsConfig provides settings for the event-driven notification
// module.
type NotificationsConfig interface {
	GetSalesNotifyEmail() string
	GetSchedulingURL() string
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketCollateral() string
	GetMinioBucketQuotePDFs() string
	IsMinIOEnabled() bool
}

// GotenbergConfig provides settings for the Gotenberg HTML-to-PDF service.
type GotenbergConfig interface {
	GetGotenbergURL() string
	GetGotenbergUsername() string
	GetGotenbergPassword() string
	IsGotenbergEnabled() bool
}

// SchedulerConfig provides settings for the asynq scheduler over Redis.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env               string
	HTTPAddr          string
	DatabaseURL       string
	JWTAccessSecret   string
	CORSAllowAll      bool
	CORSOrigins       []string
	AppBaseURL        string
	SchedulingURL     string
	ScoringPolicyPath string
	EnrichmentAPIURL  string
	EnrichmentAPIKey  string
	DownloadCap       int
	DownloadURLTTL    time.Duration
	FollowUpDelay     time.Duration
	QuoteValidityDays int
	QuoteReminderDays int
	EmailEnabled      bool
	BrevoAPIKey       string
	EmailFromName     string
	EmailFromAddress  string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	EmailMaxRetries   int
	SalesNotifyEmail  string
	MinIOEndpoint     string
	MinIOAccessKey    string
	MinIOSecretKey    string
	MinIOUseSSL       bool
	BucketCollateral  string
	BucketQuotePDFs   string
	GotenbergURL      string
	GotenbergUsername string
	GotenbergPassword string
	RedisURL          string
	RedisTLSInsecure  bool
	AsynqQueueName    string
	AsynqConcurrency  int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetEnv() string           { return c.Env }
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// EnrichmentConfig implementation
func (c *Config) GetEnrichmentAPIURL() string { return c.EnrichmentAPIURL }
func (c *Config) GetEnrichmentAPIKey() string { return c.EnrichmentAPIKey }
func (c *Config) IsEnrichmentEnabled() bool   { return c.EnrichmentAPIKey != "" }

// LeadsConfig implementation
func (c *Config) GetSchedulingURL() string     { return c.SchedulingURL }
func (c *Config) GetScoringPolicyPath() string { return c.ScoringPolicyPath }

// DownloadsConfig implementation
func (c *Config) GetDownloadCap() int              { return c.DownloadCap }
func (c *Config) GetDownloadURLTTL() time.Duration { return c.DownloadURLTTL }
func (c *Config) GetFollowUpDelay() time.Duration  { return c.FollowUpDelay }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetBrevoAPIKey() string      { return c.BrevoAPIKey }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailMaxRetries() int     { return c.EmailMaxRetries }

// NotificationsConfig implementation
func (c *Config) GetSalesNotifyEmail() string { return c.SalesNotifyEmail }

// QuotesConfig implementation
func (c *Config) GetAppBaseURL() string     { return c.AppBaseURL }
func (c *Config) GetQuoteValidityDays() int { return c.QuoteValidityDays }
func (c *Config) GetQuoteReminderDays() int { return c.QuoteReminderDays }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string         { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string        { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string        { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool             { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketCollateral() string { return c.BucketCollateral }
func (c *Config) GetMinioBucketQuotePDFs() string  { return c.BucketQuotePDFs }
func (c *Config) IsMinIOEnabled() bool             { return c.MinIOEndpoint != "" }

// GotenbergConfig implementation
func (c *Config) GetGotenbergURL() string      { return c.GotenbergURL }
func (c *Config) GetGotenbergUsername() string { return c.GotenbergUsername }
func (c *Config) GetGotenbergPassword() string { return c.GotenbergPassword }
func (c *Config) IsGotenbergEnabled() bool     { return c.GotenbergURL != "" }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	brevoAPIKey := getEnv("BREVO_API_KEY", "")
	smtpHost := getEnv("SMTP_HOST", "")
	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")

	cfg := &Config{
		Env:               getEnv("APP_ENV", "development"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		JWTAccessSecret:   getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:      corsAllowAll,
		CORSOrigins:       corsOrigins,
		AppBaseURL:        getEnv("APP_BASE_URL", "http://localhost:3000"),
		SchedulingURL:     getEnv("SCHEDULING_URL", "https://calendly.com/compliance-sales/intro"),
		ScoringPolicyPath: getEnv("SCORING_POLICY_PATH", ""),
		EnrichmentAPIURL:  getEnv("ENRICHMENT_API_URL", "https://api.apollo.io/v1"),
		EnrichmentAPIKey:  getEnv("ENRICHMENT_API_KEY", ""),
		DownloadCap:       mustInt(getEnv("DOWNLOAD_CAP", "3")),
		DownloadURLTTL:    mustDuration(getEnv("DOWNLOAD_URL_TTL", "1h")),
		FollowUpDelay:     mustDuration(getEnv("DOWNLOAD_FOLLOWUP_DELAY", "24h")),
		QuoteValidityDays: mustInt(getEnv("QUOTE_VALIDITY_DAYS", "30")),
		QuoteReminderDays: mustInt(getEnv("QUOTE_REMINDER_DAYS", "7")),
		EmailEnabled:      emailEnabled && (brevoAPIKey != "" || smtpHost != ""),
		BrevoAPIKey:       brevoAPIKey,
		EmailFromName:     getEnv("EMAIL_FROM_NAME", "Compliance Sales"),
		EmailFromAddress:  getEnv("EMAIL_FROM_ADDRESS", ""),
		SMTPHost:          smtpHost,
		SMTPPort:          mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		EmailMaxRetries:   mustInt(getEnv("EMAIL_MAX_RETRIES", "3")),
		SalesNotifyEmail:  getEnv("SALES_NOTIFY_EMAIL", ""),
		MinIOEndpoint:     getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:    getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:    getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:       strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		BucketCollateral:  getEnv("MINIO_BUCKET_COLLATERAL", "gated-collateral"),
		BucketQuotePDFs:   getEnv("MINIO_BUCKET_QUOTE_PDFS", "quote-pdfs"),
		GotenbergURL:      getEnv("GOTENBERG_URL", ""),
		GotenbergUsername: getEnv("GOTENBERG_USERNAME", ""),
		GotenbergPassword: getEnv("GOTENBERG_PASSWORD", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		RedisTLSInsecure:  strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:    getEnv("ASYNQ_QUEUE", "funnel"),
		AsynqConcurrency:  mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.EmailEnabled && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}
	if cfg.DownloadCap < 1 {
		return nil, fmt.Errorf("DOWNLOAD_CAP must be at least 1")
	}
	if cfg.QuoteValidityDays < 1 {
		return nil, fmt.Errorf("QUOTE_VALIDITY_DAYS must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
