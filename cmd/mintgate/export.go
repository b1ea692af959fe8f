package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/pflow-xyz/go-mintgate/journal"
)

// export dumps a journal database as JSON Lines.
func export(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	journalPath := fs.String("journal", "mintgate.db", "journal database path")
	output := fs.String("output", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := journal.Open(*journalPath, zerolog.Nop())
	if err != nil {
		return err
	}
	defer store.Close()

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if err := store.ExportJSONL(out); err != nil {
		return err
	}
	if *output != "" {
		fmt.Fprintf(os.Stderr, "wrote %s\n", *output)
	}
	return nil
}
