package main

import (
	"os"

	"github.com/moolen/driftdiag/cmd/driftdiag/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
