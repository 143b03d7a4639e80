package main

import (
	"os"

	"github.com/openclaw/dashd/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
