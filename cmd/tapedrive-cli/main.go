// Command tapedrive-cli is a thin HTTP client of the internal/api
// facade, the Go analogue of the Rust cli crate the original project
// keeps out of the core's scope (spec.md §1). Every subcommand makes
// one or two calls to a running tapedrive-server and prints the
// decoded JSON response.
package main

import (
	"os"

	flags "github.com/jessevdk/go-flags"
)

type options struct {
	Server string `long:"server" default:"http://localhost:8080" description:"base URL of a running tapedrive-server"`
}

func main() {
	opts := options{}
	parser := flags.NewParser(&opts, flags.Default)
	parser.SubcommandsOptional = false

	client := &client{baseURL: func() string { return opts.Server }}

	parser.AddCommand("create", "create a tape", "Create a new tape owned by --authority.", &createCmd{client: client})
	parser.AddCommand("write", "write bytes to a tape", "Write the contents of --file (or stdin) to the tape.", &writeCmd{client: client})
	parser.AddCommand("update", "replace a tape segment", "Replace a segment by Merkle proof.", &updateCmd{client: client})
	parser.AddCommand("finalize", "finalize a tape", "Close a tape's writer and register it in the archive.", &finalizeCmd{client: client})
	parser.AddCommand("register", "register a miner", "Register a new miner owned by --authority.", &registerCmd{client: client})
	parser.AddCommand("mine", "submit a proof-of-storage solution", "Submit a mining solution for a tape.", &mineCmd{client: client})
	parser.AddCommand("claim", "claim mining rewards", "Claim a miner's unclaimed reward to --beneficiary.", &claimCmd{client: client})
	parser.AddCommand("close", "close an empty miner", "Close a miner account with zero unclaimed reward.", &closeCmd{client: client})
	parser.AddCommand("advance", "advance epoch/block", "Describes why there is no standalone advance command.", &advanceCmd{})

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
