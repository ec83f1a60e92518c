// chemsar is the command-line interface: clustering, similarity search,
// descriptor annotation, and dataset ingestion over CSV files.
package main

import (
	"os"

	"github.com/turtacn/ChemSAR/internal/interfaces/cli"
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
		os.Exit(1)
	}
}
