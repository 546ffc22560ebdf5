// Package main is the entry point for the rsvp CLI.
package main

import (
	"os"

	"github.com/f3rmion/rsvp/cmd/rsvp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
