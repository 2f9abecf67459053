package notify

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/callvault/callvault/internal/config"
)

//go:embed upload_failure.html
var uploadFailureTemplate string

// EmailNotifier sends HTML notification emails over SMTP with STARTTLS.
type EmailNotifier struct {
	cfg config.NotifyConfig
	log *slog.Logger
	now func() time.Time
}

// NewEmailNotifier creates the SMTP transport.
func NewEmailNotifier(cfg config.NotifyConfig, log *slog.Logger) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, log: log, now: time.Now}
}

func (n *EmailNotifier) UploadFailure(ctx context.Context, filename string) {
	subject := fmt.Sprintf("Failed to upload recording: %s", filename)
	body := renderUploadFailure(filename, n.now())
	if err := n.send(ctx, subject, body); err != nil {
		n.log.Error("Failed to send notification email", "file", filename, "error", err)
	}
}

// UploadSucceeded is a no-op for email; operators only hear about failures.
func (n *EmailNotifier) UploadSucceeded(context.Context, string, string) {}

func (n *EmailNotifier) SweepFailure(ctx context.Context, stage, detail string) {
	subject := fmt.Sprintf("Recording migration sweep failed: %s", stage)
	body := fmt.Sprintf(
		"<h3>Hello team,</h3><p>The <strong>%s</strong> sweep failed:</p><pre>%s</pre><p>Please investigate.</p>",
		stage, detail,
	)
	if err := n.send(ctx, subject, body); err != nil {
		n.log.Error("Failed to send notification email", "stage", stage, "error", err)
	}
}

func (n *EmailNotifier) send(ctx context.Context, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(n.cfg.SMTPUser); err != nil {
		return err
	}
	if err := msg.To(n.cfg.Email); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)

	client, err := mail.NewClient(n.cfg.SMTPHost,
		mail.WithPort(n.cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.SMTPUser),
		mail.WithPassword(n.cfg.SMTPPassword),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// renderUploadFailure fills the embedded HTML template.
func renderUploadFailure(filename string, ts time.Time) string {
	body := strings.ReplaceAll(uploadFailureTemplate, "{{ filename }}", filename)
	return strings.ReplaceAll(body, "{{ timestamp }}", ts.Format("2006-01-02 15:04:05"))
}
