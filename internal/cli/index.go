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
	"github.com/callvault/callvault/internal/scanner"
)

var indexRoot string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Scan the storage tree and index new recordings",
	Run:   runIndexSweep,
}

func init() {
	indexCmd.Flags().StringVar(&indexRoot, "root", "", "Storage root to scan (defaults to STORAGE_ROOT)")
}

func runIndexSweep(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}
	if indexRoot != "" {
		cfg.Storage.Root = indexRoot
	}

	log := newSweepLogger(cfg.Log, "index")
	ctx := context.Background()

	if err := cfg.RequireStorageRoot(); err != nil {
		log.Error("Precondition violated", "error", err)
		os.Exit(1)
	}

	notifier, closeNotify := notify.FromConfig(cfg.Notify, log)
	defer closeNotify()

	pool, err := index.Connect(ctx, cfg.Database, log)
	if err != nil {
		log.Error("Indexing sweep aborted", "error", err)
		notifier.SweepFailure(ctx, "index", err.Error())
		os.Exit(1)
	}
	defer pool.Close()

	// All inserts of one sweep commit together; a store failure rolls the
	// whole sweep back.
	var summary scanner.Summary
	err = index.NewTxRunner(pool).RunInTx(ctx, func(tx pgx.Tx) error {
		var sweepErr error
		summary, sweepErr = scanner.New(index.NewStore(tx), log).Sweep(ctx, cfg.Storage.Root)
		return sweepErr
	})
	if err != nil {
		log.Error("Indexing sweep aborted", "error", err)
		notifier.SweepFailure(ctx, "index", err.Error())
		os.Exit(1)
	}

	log.Info("Indexing completed",
		"processed", summary.Processed, "skipped", summary.Skipped, "failed", summary.Failed)
	if summary.Failed > 0 {
		os.Exit(1)
	}
}
