// Package cli wires the callvault commands: one full sweep per invocation,
// exit status reflecting row-level failures for the orchestrator.
package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/callvault/callvault/internal/cli.version=1.2.3"
	version = "1.3.0"
	logo    = "\n" +
		"            _ _                  _ _\n" +
		"   ___ __ _| | |_   ____ _ _   _| | |_\n" +
		"  / __/ _` | | \\ \\ / / _` | | | | | __|\n" +
		" | (_| (_| | | |\\ V / (_| | |_| | | |_\n" +
		"  \\___\\__,_|_|_| \\_/ \\__,_|\\__,_|_|\\__|\n"
)

var rootCmd = &cobra.Command{
	Use:   "callvault",
	Short: "callvault - call recording indexing and migration",
	Long:  color.CyanString(logo) + "\nIndexes call recordings and migrates them to object storage, exactly once.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(statusCmd)
}

func printHeader(title string) {
	fmt.Println(color.CyanString(logo))
	if title != "" {
		fmt.Println(title)
		fmt.Println("─────────────────────")
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("callvault %s\n", version)
	},
}
