package main

import (
	"fmt"
	"os"

	"github.com/de-tools/cost-atlas/pkg/runtime/terminal"
	"github.com/de-tools/cost-atlas/pkg/services/registry"
)

func main() {
	cli := terminal.NewCLI(terminal.Options{
		Registry: registry.Default(),
		Output:   os.Stdout,
		Logs:     os.Stderr,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
