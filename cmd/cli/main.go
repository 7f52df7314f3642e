package main

import (
	"os"

	"github.com/evently-dev/evently/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
