// Package main is the entry point for the opusinfo CLI.
//
// Usage:
//
//	opusinfo [flags] <command> [args]
//
// Commands:
//
//	info     - Show stream parameters and packet statistics
//	tags     - Show the comment header (vendor string and tags)
//	decode   - Decode to WAV or raw PCM
//	version  - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/oggopus/cmd/opusinfo/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
