// Package main is the entry point for npcpath.
package main

import (
	"fmt"
	"os"

	"github.com/npcpath/npcpath/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
