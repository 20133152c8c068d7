package main

import (
	"os"

	"github.com/cwbudde/fixpoint/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
