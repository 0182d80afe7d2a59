// Package main is the entry point for the palefire desktop shell.
package main

import (
	"os"

	"github.com/palefire-io/palefire/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
