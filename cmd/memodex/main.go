// Package main provides the entry point for the memodex CLI.
package main

import (
	"os"

	"github.com/harukit/memodex/cmd/memodex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
