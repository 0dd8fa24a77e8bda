// Command jsonfilter filters JSON, NDJSON, YAML and SQLite records with
// ad-hoc expressions.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Mika83AC/ad-hoc-json-filter/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands report their own failures; only bare errors (flag
		// parsing, argument counts) still need printing.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
