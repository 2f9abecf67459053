package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"
)

// SlackNotifier posts short notifications to an incoming webhook.
type SlackNotifier struct {
	webhookURL string
	log        *slog.Logger
}

// NewSlackNotifier creates the Slack webhook transport.
func NewSlackNotifier(webhookURL string, log *slog.Logger) *SlackNotifier {
	return &SlackNotifier{webhookURL: webhookURL, log: log}
}

func (n *SlackNotifier) UploadFailure(ctx context.Context, filename string) {
	n.post(ctx, fmt.Sprintf(":rotating_light: Recording upload failed: `%s`", filename))
}

// UploadSucceeded is a no-op for Slack; routine successes would drown the
// channel on large sweeps.
func (n *SlackNotifier) UploadSucceeded(context.Context, string, string) {}

func (n *SlackNotifier) SweepFailure(ctx context.Context, stage, detail string) {
	n.post(ctx, fmt.Sprintf(":rotating_light: Recording migration sweep `%s` failed: %s", stage, detail))
}

func (n *SlackNotifier) post(ctx context.Context, text string) {
	msg := &slack.WebhookMessage{Text: text}
	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		n.log.Error("Failed to post Slack notification", "error", err)
	}
}
