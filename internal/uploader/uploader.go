// Package uploader migrates indexed recordings to object storage and marks
// them uploaded, exactly once per entry.
package uploader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/callvault/callvault/internal/index"
	"github.com/callvault/callvault/internal/keys"
	"github.com/callvault/callvault/internal/notify"
)

// Store is the slice of the index store the pipeline needs.
type Store interface {
	SelectUnmigrated(ctx context.Context, limit int) ([]index.Candidate, error)
	MarkUploaded(ctx context.Context, id int64, s3Path string) error
}

// Options configures a Pipeline.
type Options struct {
	Store     Store
	Client    S3API
	Notifier  notify.Notifier
	Bucket    string
	BatchSize int
	// Workers bounds upload parallelism. 1 preserves start-time order;
	// higher values relax ordering to batch membership only.
	Workers int
	Logger  *slog.Logger
	// Now is the processing clock used for key-date fallback. Defaults to
	// time.Now.
	Now func() time.Time
}

// Pipeline uploads one batch of candidates per sweep.
type Pipeline struct {
	store    Store
	client   S3API
	notifier notify.Notifier
	bucket   string
	batch    int
	workers  int
	log      *slog.Logger
	now      func() time.Time
}

// Summary aggregates the per-row outcomes of one upload sweep.
type Summary struct {
	Candidates int
	Succeeded  int
	Failed     int
}

// result is one worker's report for one candidate.
type result struct {
	id       int64
	filename string
	key      string
	err      error
}

// New creates an upload Pipeline.
func New(opts Options) *Pipeline {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Pipeline{
		store:    opts.Store,
		client:   opts.Client,
		notifier: notifier,
		bucket:   opts.Bucket,
		batch:    opts.BatchSize,
		workers:  workers,
		log:      opts.Logger,
		now:      now,
	}
}

// Sweep selects one batch of unmigrated entries and uploads them. Per-row
// failures are contained: the row stays unmarked, a notification fires, and
// the batch continues. The returned error is reserved for sweep-fatal store
// problems; the caller commits the transaction whenever it is nil, so
// committed successes survive a sweep that is reported failed.
func (p *Pipeline) Sweep(ctx context.Context) (Summary, error) {
	candidates, err := p.store.SelectUnmigrated(ctx, p.batch)
	if err != nil {
		return Summary{}, err
	}
	if len(candidates) == 0 {
		p.log.Info("No new files to upload")
		return Summary{}, nil
	}

	sum := Summary{Candidates: len(candidates)}

	jobs := make(chan index.Candidate)
	results := make(chan result, len(candidates))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				results <- p.uploadOne(ctx, c)
			}
		}()
	}
	go func() {
		for _, c := range candidates {
			jobs <- c
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	// Only this goroutine touches the store; workers upload and report.
	for res := range results {
		if res.err != nil {
			p.log.Error("Upload failed", "file", res.filename, "error", res.err)
			p.notifier.UploadFailure(ctx, res.filename)
			sum.Failed++
			continue
		}
		if err := p.store.MarkUploaded(ctx, res.id, res.key); err != nil {
			return sum, err
		}
		p.notifier.UploadSucceeded(ctx, res.filename, res.key)
		sum.Succeeded++
	}

	p.log.Info("Upload sweep completed",
		"succeeded", sum.Succeeded, "failed", sum.Failed, "candidates", sum.Candidates)
	return sum, nil
}

// uploadOne pushes a single artifact to object storage under its derived
// key, attaching the recording attributes as object metadata.
func (p *Pipeline) uploadOne(ctx context.Context, c index.Candidate) result {
	res := result{id: c.ID, filename: c.Filename}

	if _, err := os.Stat(c.LocalPath); err != nil {
		res.err = fmt.Errorf("local file not found: %s: %w", c.LocalPath, err)
		return res
	}

	key, fromRecording := keys.Derive(keys.Input{
		LocalPath:   c.LocalPath,
		AgentID:     c.AgentID,
		ContentType: c.ContentType,
		StartTime:   c.StartTime,
		Now:         p.now(),
	})
	if !fromRecording {
		p.log.Warn("Recording start time unavailable, keying under processing date",
			"file", c.Filename, "key", key)
	}

	f, err := os.Open(c.LocalPath)
	if err != nil {
		res.err = fmt.Errorf("failed to open %s: %w", c.LocalPath, err)
		return res
	}
	defer f.Close()

	startTime := ""
	if c.StartTime != nil {
		startTime = c.StartTime.Format(time.RFC3339)
	}
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(c.ContentType),
		Metadata: map[string]string{
			"agent_id":   c.AgentID,
			"extension":  c.Extension,
			"caller_id":  c.CallerID,
			"called_id":  c.CalledID,
			"start_time": startTime,
			"duration":   c.Duration,
		},
	})
	if err != nil {
		res.err = fmt.Errorf("upload to s3://%s/%s failed: %w", p.bucket, key, err)
		return res
	}

	p.log.Info("Uploaded", "file", c.LocalPath, "destination", "s3://"+p.bucket+"/"+key)
	res.key = key
	return res
}
