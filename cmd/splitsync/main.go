package main

import (
	"os"

	"github.com/carden/splitsync/cmd/splitsync/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
