// Package main is the entry point for the portion CLI.
package main

import (
	"os"

	"github.com/jmylchreest/portion/cmd/portion/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
