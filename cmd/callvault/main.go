// Package main is the entry point for the callvault CLI.
package main

import (
	"os"

	"github.com/callvault/callvault/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
