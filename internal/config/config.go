// Package config provides configuration types and loading for callvault.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Config is the root configuration struct.
// Top-level groups: Database, Storage, Notify, Log.
type Config struct {
	Database DatabaseConfig
	Storage  StorageConfig
	Notify   NotifyConfig
	Log      LogConfig
}

// ---------------------------------------------------------------------------
// Database – recording index store
// ---------------------------------------------------------------------------

// DatabaseConfig groups PostgreSQL connection settings for the index store.
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD"`
	Name     string `envconfig:"DB_NAME" default:"recordings"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// DSN returns the pgx connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=10",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// ---------------------------------------------------------------------------
// Storage – source tree and destination bucket
// ---------------------------------------------------------------------------

// StorageConfig groups the local storage tree and S3 destination settings.
type StorageConfig struct {
	Bucket            string `envconfig:"S3_BUCKET"`
	Region            string `envconfig:"AWS_REGION" default:"ap-southeast-1"`
	Root              string `envconfig:"STORAGE_ROOT" default:"/opt/recordings"`
	UploadBatchSize   int    `envconfig:"UPLOAD_BATCH_SIZE" default:"100"`
	UploadConcurrency int    `envconfig:"UPLOAD_CONCURRENCY" default:"1"`
}

// ---------------------------------------------------------------------------
// Notify – operator notifications and event stream
// ---------------------------------------------------------------------------

// NotifyConfig groups notification transport settings. A transport is active
// only when its settings are present; with none configured notifications are
// logged and dropped.
type NotifyConfig struct {
	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser     string `envconfig:"SMTP_USER"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	Email        string `envconfig:"NOTIFY_EMAIL"`

	SlackWebhookURL string `envconfig:"SLACK_WEBHOOK_URL"`

	KafkaBrokers string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string `envconfig:"KAFKA_TOPIC" default:"callvault.migrations"`
}

// EmailEnabled reports whether the SMTP transport is fully configured.
func (c NotifyConfig) EmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPassword != "" && c.Email != ""
}

// SlackEnabled reports whether the Slack webhook transport is configured.
func (c NotifyConfig) SlackEnabled() bool {
	return strings.TrimSpace(c.SlackWebhookURL) != ""
}

// KafkaEnabled reports whether the Kafka event stream is configured.
func (c NotifyConfig) KafkaEnabled() bool {
	return strings.TrimSpace(c.KafkaBrokers) != ""
}

// ---------------------------------------------------------------------------
// Log – logging behaviour
// ---------------------------------------------------------------------------

// LogConfig groups logging settings.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"text"`
}

// ---------------------------------------------------------------------------
// Sweep preconditions
// ---------------------------------------------------------------------------

// RequireStorageRoot validates the indexing sweep precondition.
func (c *Config) RequireStorageRoot() error {
	if strings.TrimSpace(c.Storage.Root) == "" {
		return errors.New("STORAGE_ROOT is not set")
	}
	return nil
}

// RequireBucket validates the upload sweep precondition.
func (c *Config) RequireBucket() error {
	if strings.TrimSpace(c.Storage.Bucket) == "" {
		return errors.New("S3_BUCKET environment variable not set")
	}
	return nil
}
