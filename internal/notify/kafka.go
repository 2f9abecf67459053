package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event is the JSON payload published to the migration event topic.
type Event struct {
	Kind       string    `json:"kind"` // upload_failed, upload_succeeded, sweep_failed
	Filename   string    `json:"filename,omitempty"`
	StorageKey string    `json:"storage_key,omitempty"`
	Stage      string    `json:"stage,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// KafkaNotifier publishes migration lifecycle events for downstream
// consumers (dashboards, retention jobs).
type KafkaNotifier struct {
	writer *kafka.Writer
	log    *slog.Logger
}

// NewKafkaNotifier creates a writer for the migration event topic. Brokers
// is a comma-separated list.
func NewKafkaNotifier(brokers, topic string, log *slog.Logger) *KafkaNotifier {
	w := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return &KafkaNotifier{writer: w, log: log}
}

func (n *KafkaNotifier) UploadFailure(ctx context.Context, filename string) {
	n.publish(ctx, Event{Kind: "upload_failed", Filename: filename})
}

func (n *KafkaNotifier) UploadSucceeded(ctx context.Context, filename, storageKey string) {
	n.publish(ctx, Event{Kind: "upload_succeeded", Filename: filename, StorageKey: storageKey})
}

func (n *KafkaNotifier) SweepFailure(ctx context.Context, stage, detail string) {
	n.publish(ctx, Event{Kind: "sweep_failed", Stage: stage, Detail: detail})
}

func (n *KafkaNotifier) publish(ctx context.Context, ev Event) {
	ev.Timestamp = time.Now().UTC()
	value, err := json.Marshal(ev)
	if err != nil {
		n.log.Error("Failed to encode migration event", "kind", ev.Kind, "error", err)
		return
	}
	key := ev.Filename
	if key == "" {
		key = ev.Kind
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  ev.Timestamp,
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		n.log.Error("Failed to publish migration event", "kind", ev.Kind, "error", err)
	}
}

// Close releases the underlying writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
