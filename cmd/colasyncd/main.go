package main

import (
	"os"

	"github.com/bevalc-intelligence/cola-engine/cmd/colasyncd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
