// Package allowlist commits a set of accounts to a single Merkle root
// and verifies membership proofs against it.
//
// Leaves and interior nodes are hashed with MiMC over the BN254 scalar
// field, so the same tree can be proven natively (MiMCVerifier) or
// inside a Groth16 circuit (see the zkallowlist package). The tree is
// padded with zero leaves to a power of two; proofs carry the sibling
// path and the leaf index, and verification walks the path bottom-up
// selecting left/right by the index bits.
package allowlist

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// ErrNotInTree is returned when a proof is requested for an account
// that was not committed to the tree.
var ErrNotInTree = errors.New("allowlist: account not in tree")

// Root is a tree root or node hash: a canonical big-endian BN254
// scalar field element.
type Root [32]byte

// Proof is the evidence that an account belongs to a committed set.
// For the native verifier, Siblings holds the Merkle path bottom-up
// and Index is the leaf position. For zero-knowledge verification the
// path stays private and Groth16 carries a serialized proof instead.
type Proof struct {
	Siblings []Root
	Index    uint64
	Groth16  []byte
}

// Verifier decides whether an account, together with a proof, belongs
// to the set committed by root. Implementations must be pure: no state
// mutation, same answer for same inputs.
type Verifier interface {
	Verify(account string, root Root, proof Proof) bool
}

// Tree is a fixed-depth MiMC Merkle tree over a set of accounts.
type Tree struct {
	depth  int
	levels [][]Root // levels[0] = leaves, levels[depth] = [root]
	index  map[string]uint64
}

// NewTree builds a tree over the given accounts at the minimum depth
// that fits them (at least 1).
func NewTree(accounts []string) (*Tree, error) {
	depth := 1
	for 1<<depth < len(accounts) {
		depth++
	}
	return NewTreeWithDepth(accounts, depth)
}

// NewTreeWithDepth builds a tree with exactly 2^depth leaf slots,
// padding unused slots with zero leaves. Groth16 circuits have a fixed
// path length, so provers pick the depth their circuit was compiled
// for.
func NewTreeWithDepth(accounts []string, depth int) (*Tree, error) {
	if depth < 1 || depth > 62 {
		return nil, fmt.Errorf("allowlist: invalid depth %d", depth)
	}
	if len(accounts) > 1<<depth {
		return nil, fmt.Errorf("allowlist: %d accounts exceed capacity %d", len(accounts), 1<<depth)
	}

	t := &Tree{
		depth: depth,
		index: make(map[string]uint64, len(accounts)),
	}

	leaves := make([]Root, 1<<depth)
	for i, account := range accounts {
		if _, dup := t.index[account]; dup {
			return nil, fmt.Errorf("allowlist: duplicate account %q", account)
		}
		leaves[i] = LeafHash(account)
		t.index[account] = uint64(i)
	}

	t.levels = make([][]Root, depth+1)
	t.levels[0] = leaves
	for lvl := 1; lvl <= depth; lvl++ {
		below := t.levels[lvl-1]
		nodes := make([]Root, len(below)/2)
		for i := range nodes {
			nodes[i] = hashPair(below[2*i], below[2*i+1])
		}
		t.levels[lvl] = nodes
	}
	return t, nil
}

// Root returns the committed root.
func (t *Tree) Root() Root {
	return t.levels[t.depth][0]
}

// Depth returns the tree depth (path length of every proof).
func (t *Tree) Depth() int {
	return t.depth
}

// Len returns the number of committed accounts.
func (t *Tree) Len() int {
	return len(t.index)
}

// Contains reports whether the account was committed to the tree.
func (t *Tree) Contains(account string) bool {
	_, ok := t.index[account]
	return ok
}

// ProofFor returns the Merkle path for an account.
func (t *Tree) ProofFor(account string) (Proof, error) {
	pos, ok := t.index[account]
	if !ok {
		return Proof{}, ErrNotInTree
	}

	proof := Proof{
		Siblings: make([]Root, t.depth),
		Index:    pos,
	}
	idx := pos
	for lvl := 0; lvl < t.depth; lvl++ {
		proof.Siblings[lvl] = t.levels[lvl][idx^1]
		idx >>= 1
	}
	return proof, nil
}

// LeafHash maps an account to its leaf: MiMC over the account bytes
// reduced into the scalar field.
func LeafHash(account string) Root {
	var e fr.Element
	e.SetBytes([]byte(account))

	h := mimc.NewMiMC()
	h.Write(e.Marshal())
	return toRoot(h.Sum(nil))
}

// hashPair computes the interior node MiMC(left, right).
func hashPair(left, right Root) Root {
	h := mimc.NewMiMC()
	h.Write(left[:])
	h.Write(right[:])
	return toRoot(h.Sum(nil))
}

func toRoot(sum []byte) Root {
	var r Root
	copy(r[32-len(sum):], sum)
	return r
}

// MiMCVerifier verifies Merkle paths natively, walking the sibling
// path bottom-up and selecting hash order by the index bits.
type MiMCVerifier struct{}

// Verify recomputes the root from the leaf and path and compares it to
// the committed root.
func (MiMCVerifier) Verify(account string, root Root, proof Proof) bool {
	if len(proof.Siblings) == 0 || len(proof.Siblings) > 62 {
		return false
	}
	if bits.Len64(proof.Index) > len(proof.Siblings) {
		return false
	}

	node := LeafHash(account)
	idx := proof.Index
	for _, sibling := range proof.Siblings {
		if idx&1 == 1 {
			node = hashPair(sibling, node)
		} else {
			node = hashPair(node, sibling)
		}
		idx >>= 1
	}
	return node == root
}
