package notify

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/callvault/callvault/internal/config"
)

type recording struct {
	failures  int
	successes int
	sweeps    int
}

func (r *recording) UploadFailure(context.Context, string)           { r.failures++ }
func (r *recording) UploadSucceeded(context.Context, string, string) { r.successes++ }
func (r *recording) SweepFailure(context.Context, string, string)    { r.sweeps++ }

func TestMultiFansOut(t *testing.T) {
	a, b := &recording{}, &recording{}
	m := Multi{a, b}
	ctx := context.Background()

	m.UploadFailure(ctx, "call1")
	m.UploadSucceeded(ctx, "call2", "recordings/audio/2024/03/01/a/call2.wav")
	m.SweepFailure(ctx, "upload", "boom")

	for _, r := range []*recording{a, b} {
		if r.failures != 1 || r.successes != 1 || r.sweeps != 1 {
			t.Errorf("transport counts = %+v", *r)
		}
	}
}

func TestRenderUploadFailure(t *testing.T) {
	ts := time.Date(2025, 7, 4, 12, 30, 0, 0, time.UTC)
	body := renderUploadFailure("call1.wav", ts)
	if !strings.Contains(body, "call1.wav") {
		t.Errorf("filename placeholder not substituted: %s", body)
	}
	if !strings.Contains(body, "2025-07-04 12:30:00") {
		t.Errorf("timestamp placeholder not substituted: %s", body)
	}
	if strings.Contains(body, "{{") {
		t.Errorf("unresolved placeholders remain: %s", body)
	}
}

func TestFromConfigWithNothingConfigured(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	n, closer := FromConfig(config.NotifyConfig{}, log)
	defer closer()
	if _, ok := n.(Nop); !ok {
		t.Fatalf("expected Nop notifier, got %T", n)
	}
	// Nop must be safe to call
	n.UploadFailure(context.Background(), "x")
}

func TestFromConfigAssemblesTransports(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.NotifyConfig{
		SMTPHost:        "smtp.example.com",
		SMTPPort:        587,
		SMTPUser:        "alerts@example.com",
		SMTPPassword:    "secret",
		Email:           "ops@example.com",
		SlackWebhookURL: "https://hooks.slack.com/services/T/B/x",
	}
	n, closer := FromConfig(cfg, log)
	defer closer()
	m, ok := n.(Multi)
	if !ok {
		t.Fatalf("expected Multi, got %T", n)
	}
	if len(m) != 2 {
		t.Fatalf("expected email and slack transports, got %d", len(m))
	}
}
