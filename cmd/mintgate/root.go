package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pflow-xyz/go-mintgate/allowlist"
)

// root computes an allowlist Merkle root from an accounts file, and
// optionally a membership proof for one account.
func root(args []string) error {
	fs := flag.NewFlagSet("root", flag.ExitOnError)
	accountsPath := fs.String("accounts", "", "file with one account per line (required)")
	depth := fs.Int("depth", 0, "pad the tree to a fixed depth (0 = minimal)")
	account := fs.String("account", "", "also print a membership proof for this account")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *accountsPath == "" {
		return fmt.Errorf("root: --accounts is required")
	}

	accounts, err := readAccounts(*accountsPath)
	if err != nil {
		return err
	}

	var tree *allowlist.Tree
	if *depth > 0 {
		tree, err = allowlist.NewTreeWithDepth(accounts, *depth)
	} else {
		tree, err = allowlist.NewTree(accounts)
	}
	if err != nil {
		return err
	}

	treeRoot := tree.Root()
	fmt.Printf("accounts: %d\n", tree.Len())
	fmt.Printf("depth:    %d\n", tree.Depth())
	fmt.Printf("root:     %s\n", hex.EncodeToString(treeRoot[:]))

	if *account != "" {
		proof, err := tree.ProofFor(*account)
		if err != nil {
			return err
		}
		fmt.Printf("account:  %s\n", *account)
		fmt.Printf("index:    %d\n", proof.Index)
		for i, sibling := range proof.Siblings {
			fmt.Printf("sibling %d: %s\n", i, hex.EncodeToString(sibling[:]))
		}
	}
	return nil
}

func readAccounts(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var accounts []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		accounts = append(accounts, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("no accounts in %s", path)
	}
	return accounts, nil
}
