// Command fsguard performs file operations sandboxed to a set of allowed
// directories.
package main

import (
	"errors"
	"fmt"
	"os"

	"fsguard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		// The tool's own error message has already been printed.
		if !errors.Is(err, cli.ErrToolFailed) {
			fmt.Fprintln(os.Stderr, cli.ErrorStyle.Render("Error: "+err.Error()))
		}
		os.Exit(1)
	}
}
