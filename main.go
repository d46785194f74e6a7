// askdb – natural-language-to-SQL chatbot backend.
//
// Entry point: initializes the Cobra root command, which starts the
// HTTP service (no subcommand required).
package main

import (
	"os"

	"github.com/askdb/askdb/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
