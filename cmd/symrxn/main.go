// symrxn is the command line entry point of the reaction enumeration engine.
package main

import (
	"os"

	"github.com/turtacn/SymRxn/internal/interfaces/cli"
	"github.com/turtacn/SymRxn/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(errors.ExitStatusForCode(errors.GetCode(err)))
	}
}

//Personal.AI order the ending
