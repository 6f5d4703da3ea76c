// Package main is the entry point for the defclean CLI.
package main

import (
	"os"

	"github.com/jmylchreest/defclean/cmd/defclean/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
