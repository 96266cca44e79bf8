// Package main provides the entry point for the dorindex CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/dorindex/cmd/dorindex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
