// Package main is the entry point for the azure-bom-cost CLI.
package main

import (
	"os"

	"azure-bom-cost/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
