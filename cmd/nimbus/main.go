// Command nimbus is the host CLI around pkg/engine: a script runner, a
// REPL, and debugging subcommands (lex/parse) for inspecting the earlier
// pipeline stages. The CLI is out of the interpreter core
// proper — everything here is a thin wrapper over the embedding API.
package main

import (
	"fmt"
	"os"

	"github.com/nimbus-lang/nimbus/cmd/nimbus/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cmd.ExitCode(err))
	}
}
