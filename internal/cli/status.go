package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/callvault/callvault/internal/config"
	"github.com/callvault/callvault/internal/index"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index counts and migration progress",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("callvault status")

		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Config error: %v\n", err)
			os.Exit(1)
		}
		log := newSweepLogger(cfg.Log, "status")
		ctx := context.Background()

		pool, err := index.Connect(ctx, cfg.Database, log)
		if err != nil {
			fmt.Printf("Store error: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()

		total, uploaded, err := index.NewStore(pool).Counts(ctx)
		if err != nil {
			fmt.Printf("Store error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Indexed:  %d\n", total)
		fmt.Printf("Uploaded: %d\n", uploaded)
		fmt.Printf("Pending:  %d\n", total-uploaded)
	},
}
