// Command canopy scores rows against forest containers and prints the
// reconstructed trees of a model.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
