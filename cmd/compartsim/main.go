// Command compartsim is a demonstration host for the compartmental solver:
// it loads a JSON configuration bundle, optionally drives it through a
// sequence of events, and prints a recordable trace. It is not part of the
// solver's public contract — real hosts embed the node and config packages
// directly.
package main

import (
	"fmt"
	"os"

	"github.com/SynapticNetworks/compartsim/cmd/compartsim/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
