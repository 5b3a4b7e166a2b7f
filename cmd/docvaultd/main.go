// Command docvaultd watches a directory, chunks changed documents by
// sentence-embedding similarity, and archives and indexes the results.
package main

import (
	"fmt"
	"os"

	"github.com/veltra-labs/docvault/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
