// Package main is the entry point for the taskgraph CLI.
package main

import (
	"os"

	"github.com/watchfire-io/taskgraph/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
