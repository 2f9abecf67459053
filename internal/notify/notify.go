// Package notify delivers migration notifications to operators and
// downstream systems. Transport delivery failures are logged by the
// transport itself and never escalate: a broken mail server must not turn a
// succeeded upload into a failed sweep.
package notify

import (
	"context"
	"log/slog"

	"github.com/callvault/callvault/internal/config"
)

// Notifier receives migration lifecycle notifications.
type Notifier interface {
	// UploadFailure reports one artifact that could not be migrated.
	UploadFailure(ctx context.Context, filename string)
	// UploadSucceeded reports one migrated artifact and its storage key.
	UploadSucceeded(ctx context.Context, filename, storageKey string)
	// SweepFailure reports an unrecoverable failure of a whole stage.
	SweepFailure(ctx context.Context, stage, detail string)
}

// Nop discards all notifications. Used when no transport is configured and
// in tests.
type Nop struct{}

func (Nop) UploadFailure(context.Context, string)           {}
func (Nop) UploadSucceeded(context.Context, string, string) {}
func (Nop) SweepFailure(context.Context, string, string)    {}

// Multi fans out to several transports.
type Multi []Notifier

func (m Multi) UploadFailure(ctx context.Context, filename string) {
	for _, n := range m {
		n.UploadFailure(ctx, filename)
	}
}

func (m Multi) UploadSucceeded(ctx context.Context, filename, storageKey string) {
	for _, n := range m {
		n.UploadSucceeded(ctx, filename, storageKey)
	}
}

func (m Multi) SweepFailure(ctx context.Context, stage, detail string) {
	for _, n := range m {
		n.SweepFailure(ctx, stage, detail)
	}
}

// FromConfig assembles the configured transports into one Notifier. The
// returned closer releases transport resources (the Kafka writer) and must
// be called on exit.
func FromConfig(cfg config.NotifyConfig, log *slog.Logger) (Notifier, func()) {
	var transports Multi
	closer := func() {}

	if cfg.EmailEnabled() {
		transports = append(transports, NewEmailNotifier(cfg, log))
	} else {
		log.Warn("SMTP configuration incomplete, email notifications disabled")
	}
	if cfg.SlackEnabled() {
		transports = append(transports, NewSlackNotifier(cfg.SlackWebhookURL, log))
	}
	if cfg.KafkaEnabled() {
		k := NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		transports = append(transports, k)
		closer = func() { _ = k.Close() }
	}

	if len(transports) == 0 {
		return Nop{}, closer
	}
	return transports, closer
}
