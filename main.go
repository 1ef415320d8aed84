package main

import (
	"os"

	"github.com/genweave/genweave/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
