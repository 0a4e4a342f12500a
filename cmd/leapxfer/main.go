// Package main provides the leapxfer command.
package main

import (
	"os"

	"github.com/leapstack-labs/leapxfer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
