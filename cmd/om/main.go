package main

import (
	"os"

	"github.com/omnity-hq/omnity-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
