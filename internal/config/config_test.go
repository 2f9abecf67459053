package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("default db port = %d", cfg.Database.Port)
	}
	if cfg.Storage.UploadBatchSize != 100 {
		t.Errorf("default batch size = %d", cfg.Storage.UploadBatchSize)
	}
	if cfg.Storage.UploadConcurrency != 1 {
		t.Errorf("default concurrency = %d", cfg.Storage.UploadConcurrency)
	}
	if cfg.Notify.KafkaTopic != "callvault.migrations" {
		t.Errorf("default kafka topic = %q", cfg.Notify.KafkaTopic)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6432")
	t.Setenv("S3_BUCKET", "calls-bucket")
	t.Setenv("STORAGE_ROOT", "/srv/recordings")
	t.Setenv("UPLOAD_BATCH_SIZE", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Host != "db.internal" || cfg.Database.Port != 6432 {
		t.Errorf("database config = %+v", cfg.Database)
	}
	if cfg.Storage.Bucket != "calls-bucket" || cfg.Storage.Root != "/srv/recordings" {
		t.Errorf("storage config = %+v", cfg.Storage)
	}
	if cfg.Storage.UploadBatchSize != 25 {
		t.Errorf("batch size = %d", cfg.Storage.UploadBatchSize)
	}
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "callvault",
		Password: "pw", Name: "recordings", SSLMode: "disable",
	}
	dsn := c.DSN()
	for _, part := range []string{"host=localhost", "port=5432", "dbname=recordings", "sslmode=disable"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("dsn missing %q: %s", part, dsn)
		}
	}
}

func TestPreconditions(t *testing.T) {
	cfg := &Config{}
	if err := cfg.RequireStorageRoot(); err == nil {
		t.Errorf("empty storage root must violate the indexing precondition")
	}
	if err := cfg.RequireBucket(); err == nil {
		t.Errorf("empty bucket must violate the upload precondition")
	}

	cfg.Storage.Root = "/opt/recordings"
	cfg.Storage.Bucket = "calls-bucket"
	if err := cfg.RequireStorageRoot(); err != nil {
		t.Errorf("unexpected precondition error: %v", err)
	}
	if err := cfg.RequireBucket(); err != nil {
		t.Errorf("unexpected precondition error: %v", err)
	}
}

func TestNotifyTransportToggles(t *testing.T) {
	var n NotifyConfig
	if n.EmailEnabled() || n.SlackEnabled() || n.KafkaEnabled() {
		t.Errorf("empty config must disable all transports")
	}
	n = NotifyConfig{
		SMTPHost: "smtp", SMTPUser: "u", SMTPPassword: "p", Email: "ops@example.com",
		SlackWebhookURL: "https://hooks.slack.com/x",
		KafkaBrokers:    "broker:9092",
	}
	if !n.EmailEnabled() || !n.SlackEnabled() || !n.KafkaEnabled() {
		t.Errorf("configured transports should be enabled: %+v", n)
	}
}
