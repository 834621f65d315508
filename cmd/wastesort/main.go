// Command wastesort classifies household waste by item name or photo and
// manages the classification rule table.
//
//	@title			wastesort API
//	@version		2.0.0
//	@description	Waste classification by item name or photo, plus rule management.
//	@BasePath		/api
package main

import (
	"fmt"
	"os"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "2.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
