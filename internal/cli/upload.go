package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/callvault/callvault/internal/config"
	"github.com/callvault/callvault/internal/index"
	"github.com/callvault/callvault/internal/notify"
	"github.com/callvault/callvault/internal/uploader"
)

var uploadLimit int

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload one batch of unmigrated recordings to object storage",
	Run:   runUploadSweep,
}

func init() {
	uploadCmd.Flags().IntVar(&uploadLimit, "limit", 0, "Batch size limit (defaults to UPLOAD_BATCH_SIZE)")
}

func runUploadSweep(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}
	if uploadLimit > 0 {
		cfg.Storage.UploadBatchSize = uploadLimit
	}

	log := newSweepLogger(cfg.Log, "upload")
	ctx := context.Background()

	if err := cfg.RequireBucket(); err != nil {
		log.Error("Precondition violated", "error", err)
		os.Exit(1)
	}

	notifier, closeNotify := notify.FromConfig(cfg.Notify, log)
	defer closeNotify()

	client, err := uploader.NewS3Client(ctx, cfg.Storage.Region)
	if err != nil {
		log.Error("Upload sweep aborted", "error", err)
		notifier.SweepFailure(ctx, "upload", err.Error())
		os.Exit(1)
	}

	pool, err := index.Connect(ctx, cfg.Database, log)
	if err != nil {
		log.Error("Upload sweep aborted", "error", err)
		notifier.SweepFailure(ctx, "upload", err.Error())
		os.Exit(1)
	}
	defer pool.Close()

	// Successful state transitions commit together at end of batch, even
	// when other rows in the batch failed.
	var summary uploader.Summary
	err = index.NewTxRunner(pool).RunInTx(ctx, func(tx pgx.Tx) error {
		pipeline := uploader.New(uploader.Options{
			Store:     index.NewStore(tx),
			Client:    client,
			Notifier:  notifier,
			Bucket:    cfg.Storage.Bucket,
			BatchSize: cfg.Storage.UploadBatchSize,
			Workers:   cfg.Storage.UploadConcurrency,
			Logger:    log,
		})
		var sweepErr error
		summary, sweepErr = pipeline.Sweep(ctx)
		return sweepErr
	})
	if err != nil {
		log.Error("Upload sweep aborted", "error", err)
		notifier.SweepFailure(ctx, "upload", err.Error())
		os.Exit(1)
	}

	log.Info("Upload completed",
		"succeeded", summary.Succeeded, "failed", summary.Failed, "candidates", summary.Candidates)
	if summary.Failed > 0 {
		os.Exit(1)
	}
}
