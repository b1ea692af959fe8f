package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-mintgate/token"
)

// demo runs a scripted sale against an in-memory contract and prints
// the committed event log, one JSON object per line.
func demo(args []string) error {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	operator := fs.String("operator", "0xoperator", "operator account")
	if err := fs.Parse(args); err != nil {
		return err
	}

	contract, err := token.New(token.DefaultConfig(token.Address(*operator)))
	if err != nil {
		return err
	}

	price := contract.MintPrice()
	pay := func(quantity uint64) *uint256.Int {
		return new(uint256.Int).Mul(price, uint256.NewInt(quantity))
	}

	if _, err := contract.TogglePublicSaleStatus(token.Address(*operator)); err != nil {
		return err
	}
	aliceIDs, err := contract.PublicSaleMint("alice", 2, pay(2))
	if err != nil {
		return err
	}
	if _, err := contract.PublicSaleMint("bob", 1, pay(1)); err != nil {
		return err
	}
	if _, err := contract.OwnerMint(token.Address(*operator), 1); err != nil {
		return err
	}
	payout, err := contract.Refund("alice", aliceIDs[:1])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	for _, ev := range contract.Events() {
		if err := enc.Encode(ev); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "issued %d records, refunded %s wei, treasury holds %s wei\n",
		contract.TotalIssued(), payout.Dec(), contract.TreasuryBalance().Dec())
	return nil
}
