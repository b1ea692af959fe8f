package ledger

import (
	"errors"
	"testing"
)

func TestMintAssignsSequentialIDs(t *testing.T) {
	l := New(100)

	ids, err := l.Mint("alice", 3, false)
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	for i, id := range ids {
		if id != ID(i) {
			t.Errorf("expected ID %d, got %d", i, id)
		}
	}

	ids, err = l.Mint("bob", 2, false)
	if err != nil {
		t.Fatalf("second mint failed: %v", err)
	}
	if ids[0] != 3 || ids[1] != 4 {
		t.Errorf("expected IDs [3 4], got %v", ids)
	}

	if l.TotalIssued() != 5 {
		t.Errorf("expected 5 issued, got %d", l.TotalIssued())
	}
}

func TestMintSupplyExceeded(t *testing.T) {
	l := New(4)

	if _, err := l.Mint("alice", 3, false); err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	_, err := l.Mint("bob", 2, false)
	if !errors.Is(err, ErrSupplyExceeded) {
		t.Fatalf("expected ErrSupplyExceeded, got %v", err)
	}
	// A failed mint issues nothing.
	if l.TotalIssued() != 3 {
		t.Errorf("expected 3 issued after failed mint, got %d", l.TotalIssued())
	}
	if l.BalanceOf("bob") != 0 {
		t.Errorf("expected bob balance 0, got %d", l.BalanceOf("bob"))
	}

	// Exactly reaching the cap is allowed.
	if _, err := l.Mint("bob", 1, false); err != nil {
		t.Fatalf("mint to cap failed: %v", err)
	}
	if _, err := l.Mint("bob", 1, false); !errors.Is(err, ErrSupplyExceeded) {
		t.Errorf("expected ErrSupplyExceeded at cap, got %v", err)
	}
}

func TestMintHugeQuantityOverflow(t *testing.T) {
	l := New(10)
	if _, err := l.Mint("alice", 1, false); err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	// A quantity near the uint64 ceiling must not wrap past the cap.
	if _, err := l.Mint("alice", ^uint64(0), false); !errors.Is(err, ErrSupplyExceeded) {
		t.Fatalf("expected ErrSupplyExceeded, got %v", err)
	}
	if l.TotalIssued() != 1 {
		t.Errorf("expected 1 issued, got %d", l.TotalIssued())
	}
	if l.BalanceOf("alice") != 1 {
		t.Errorf("expected alice balance 1, got %d", l.BalanceOf("alice"))
	}
}

func TestBalancesSumToTotalIssued(t *testing.T) {
	l := New(1000)
	l.Mint("alice", 5, false)
	l.Mint("bob", 3, true)
	l.Mint("carol", 7, false)
	l.Transfer(0, "alice", "bob")
	l.Transfer(6, "bob", "carol")

	var sum uint64
	for _, a := range []Address{"alice", "bob", "carol"} {
		sum += l.BalanceOf(a)
	}
	if sum != l.TotalIssued() {
		t.Errorf("balance sum %d != total issued %d", sum, l.TotalIssued())
	}
}

func TestTransfer(t *testing.T) {
	l := New(10)
	l.Mint("alice", 2, false)

	if err := l.Transfer(0, "alice", "bob"); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	owner, err := l.OwnerOf(0)
	if err != nil {
		t.Fatalf("ownerOf failed: %v", err)
	}
	if owner != "bob" {
		t.Errorf("expected owner bob, got %s", owner)
	}
	if l.BalanceOf("alice") != 1 || l.BalanceOf("bob") != 1 {
		t.Errorf("expected balances 1/1, got %d/%d", l.BalanceOf("alice"), l.BalanceOf("bob"))
	}

	if err := l.Transfer(1, "bob", "carol"); !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
	if err := l.Transfer(9, "alice", "bob"); !errors.Is(err, ErrUnknownRecord) {
		t.Errorf("expected ErrUnknownRecord, got %v", err)
	}
}

func TestOwnerOfUnknownRecord(t *testing.T) {
	l := New(10)
	l.Mint("alice", 1, false)

	if _, err := l.OwnerOf(1); !errors.Is(err, ErrUnknownRecord) {
		t.Errorf("expected ErrUnknownRecord, got %v", err)
	}
}

func TestMarkRefunded(t *testing.T) {
	l := New(10)
	l.Mint("alice", 1, false)
	l.Mint("bob", 1, true)

	if err := l.MarkRefunded(0); err != nil {
		t.Fatalf("mark refunded failed: %v", err)
	}
	st, _ := l.StateOf(0)
	if st != Refunded {
		t.Errorf("expected Refunded, got %v", st)
	}

	// Refunded is terminal.
	if err := l.MarkRefunded(0); !errors.Is(err, ErrAlreadyRefunded) {
		t.Errorf("expected ErrAlreadyRefunded, got %v", err)
	}
	// Complimentary records never refund.
	if err := l.MarkRefunded(1); !errors.Is(err, ErrComplimentaryNotRefundable) {
		t.Errorf("expected ErrComplimentaryNotRefundable, got %v", err)
	}
	if err := l.MarkRefunded(5); !errors.Is(err, ErrUnknownRecord) {
		t.Errorf("expected ErrUnknownRecord, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	l := New(10)
	l.Mint("alice", 2, false)

	snap := l.Clone()
	l.Transfer(0, "alice", "bob")
	l.MarkRefunded(1)

	owner, _ := snap.OwnerOf(0)
	if owner != "alice" {
		t.Errorf("clone mutated: owner of 0 is %s", owner)
	}
	st, _ := snap.StateOf(1)
	if st != Active {
		t.Errorf("clone mutated: state of 1 is %v", st)
	}
	if snap.BalanceOf("bob") != 0 {
		t.Errorf("clone mutated: bob balance %d", snap.BalanceOf("bob"))
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		Active:        "active",
		Complimentary: "complimentary",
		Refunded:      "refunded",
	}
	for st, want := range cases {
		if st.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", int(st), st.String(), want)
		}
	}
}
