package main

import (
	"fmt"
	"os"
)

// main builds the command tree and exits non-zero on failure. Business logic
// lives in internal packages.
func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
