package main

import (
	"os"

	"github.com/rustyeddy/guarantee/cmd/guarantee/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
