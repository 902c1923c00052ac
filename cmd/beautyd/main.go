package main

import (
	"os"

	"github.com/tillberg/autorestart"

	"github.com/rodrigiego-coder/beauty-manager/internal/cli"
)

func main() {
	// Restart in place when the binary is replaced on disk.
	go autorestart.RestartOnChange()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
