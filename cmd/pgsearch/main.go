// Command pgsearch compiles declarative search scopes into PostgreSQL SQL.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/pgsearch/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}

	// Commands report their own failures; anything else came from flag parsing.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
