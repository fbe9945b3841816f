// Package main provides the entry point for the atlk CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rfielding/kripke-atlk/cli"
)

func main() {
	app := cli.New()

	if err := app.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
