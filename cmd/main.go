package main

import (
	"os"

	"go.rscript.dev/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
