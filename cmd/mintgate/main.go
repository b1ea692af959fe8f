package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "serve":
		if err := serve(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "demo":
		if err := demo(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "root":
		if err := root(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "export":
		if err := export(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("mintgate version 1.0.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`mintgate - refundable token issuance ledger

Usage:
  mintgate <command> [options]

Commands:
  serve      Run the HTTP API over one contract instance
  demo       Run a scripted mint/refund scenario and print the event log
  root       Compute an allowlist Merkle root (and optional proof)
  export     Export a journal database as JSON Lines
  help       Show this help message
  version    Show version information

Examples:
  # Serve a contract with a durable journal
  mintgate serve --addr :8080 --operator 0xoperator --journal mintgate.db

  # Compute the allowlist root for a presale
  mintgate root --accounts allowlist.txt --depth 8

  # Emit a membership proof for one account
  mintgate root --accounts allowlist.txt --account alice

  # Dump a journal for offline tooling
  mintgate export --journal mintgate.db --output events.jsonl

For command-specific help, run:
  mintgate <command> --help`)
}
