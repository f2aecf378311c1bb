// Command rxncenter featurizes atom-mapped reactions for reaction-center
// prediction.
package main

import (
	"os"

	"github.com/turtacn/rxncenter/internal/interfaces/cli"
	"github.com/turtacn/rxncenter/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	// Inject build-time variables into the cli package.
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	// Execute prints the error; only the exit status is decided here.
	if err := cli.Execute(); err != nil {
		os.Exit(errors.ExitCodeForCode(errors.GetCode(err)))
	}
}

//Personal.AI order the ending
