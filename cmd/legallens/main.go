package main

import (
	"os"

	"github.com/Codewiz19/legallens/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
