package main

import (
	"os"

	"github.com/bloch-labs/bloch-go/cmd/bloch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
