package allowlist

import (
	"errors"
	"testing"
)

var accounts = []string{"alice", "bob", "carol", "dave", "erin"}

func TestTreeRootDeterministic(t *testing.T) {
	t1, err := NewTree(accounts)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	t2, err := NewTree(accounts)
	if err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	if t1.Root() != t2.Root() {
		t.Error("same accounts produced different roots")
	}

	t3, _ := NewTree([]string{"alice", "bob"})
	if t1.Root() == t3.Root() {
		t.Error("different account sets produced the same root")
	}
}

func TestTreeDepth(t *testing.T) {
	tree, err := NewTree(accounts)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	// 5 accounts need 8 slots.
	if tree.Depth() != 3 {
		t.Errorf("expected depth 3, got %d", tree.Depth())
	}
	if tree.Len() != 5 {
		t.Errorf("expected 5 accounts, got %d", tree.Len())
	}
}

func TestProofVerifies(t *testing.T) {
	tree, err := NewTree(accounts)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	var v MiMCVerifier
	for _, account := range accounts {
		proof, err := tree.ProofFor(account)
		if err != nil {
			t.Fatalf("proof for %s failed: %v", account, err)
		}
		if !v.Verify(account, tree.Root(), proof) {
			t.Errorf("proof for %s did not verify", account)
		}
	}
}

func TestProofForUnknownAccount(t *testing.T) {
	tree, _ := NewTree(accounts)
	if _, err := tree.ProofFor("mallory"); !errors.Is(err, ErrNotInTree) {
		t.Errorf("expected ErrNotInTree, got %v", err)
	}
}

func TestVerifyRejectsWrongAccount(t *testing.T) {
	tree, _ := NewTree(accounts)
	proof, _ := tree.ProofFor("alice")

	var v MiMCVerifier
	if v.Verify("mallory", tree.Root(), proof) {
		t.Error("proof for alice verified for mallory")
	}
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	tree, _ := NewTree(accounts)
	proof, _ := tree.ProofFor("bob")

	var v MiMCVerifier
	tampered := proof
	tampered.Siblings = append([]Root(nil), proof.Siblings...)
	tampered.Siblings[0][31] ^= 0x01
	if v.Verify("bob", tree.Root(), tampered) {
		t.Error("tampered sibling verified")
	}

	wrongIndex := proof
	wrongIndex.Index ^= 1
	if v.Verify("bob", tree.Root(), wrongIndex) {
		t.Error("wrong index verified")
	}

	if v.Verify("bob", tree.Root(), Proof{}) {
		t.Error("empty proof verified")
	}
}

func TestVerifyRejectsWrongRoot(t *testing.T) {
	tree, _ := NewTree(accounts)
	other, _ := NewTree([]string{"mallory", "oscar"})
	proof, _ := tree.ProofFor("carol")

	var v MiMCVerifier
	if v.Verify("carol", other.Root(), proof) {
		t.Error("proof verified against foreign root")
	}
}

func TestNewTreeWithDepthValidation(t *testing.T) {
	if _, err := NewTreeWithDepth(accounts, 2); err == nil {
		t.Error("expected capacity error for 5 accounts at depth 2")
	}
	if _, err := NewTreeWithDepth(accounts, 0); err == nil {
		t.Error("expected error for depth 0")
	}
	if _, err := NewTree([]string{"alice", "alice"}); err == nil {
		t.Error("expected error for duplicate account")
	}
}

func TestFixedDepthTreeVerifies(t *testing.T) {
	tree, err := NewTreeWithDepth(accounts, 8)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	proof, err := tree.ProofFor("dave")
	if err != nil {
		t.Fatalf("proof failed: %v", err)
	}
	if len(proof.Siblings) != 8 {
		t.Fatalf("expected path length 8, got %d", len(proof.Siblings))
	}

	var v MiMCVerifier
	if !v.Verify("dave", tree.Root(), proof) {
		t.Error("fixed-depth proof did not verify")
	}
}
