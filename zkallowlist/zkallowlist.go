// Package zkallowlist proves and verifies allowlist membership in zero
// knowledge. The circuit recomputes the MiMC Merkle root of the
// allowlist package from a private path, so a prover demonstrates that
// an account was committed to a public root without revealing the
// account's position or the rest of the set.
package zkallowlist

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/std/hash/mimc"

	"github.com/pflow-xyz/go-mintgate/allowlist"
)

// Depth is the fixed Merkle path length of the circuit. Trees proven
// with this package must be built with allowlist.NewTreeWithDepth at
// exactly this depth (256 allowlist slots).
const Depth = 8

// mimcHash computes MiMC(left, right) inside the circuit.
func mimcHash(api frontend.API, left, right frontend.Variable) frontend.Variable {
	h, _ := mimc.NewMiMC(api)
	h.Write(left)
	h.Write(right)
	return h.Sum()
}

// Circuit proves membership of a public account under a public root.
// The sibling path and its direction bits stay private.
type Circuit struct {
	Account frontend.Variable `gnark:",public"`
	Root    frontend.Variable `gnark:",public"`

	Siblings [Depth]frontend.Variable
	PathBits [Depth]frontend.Variable
}

// Define walks the path bottom-up, selecting hash order by the
// direction bit at each level, and pins the result to the root.
func (c *Circuit) Define(api frontend.API) error {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	h.Write(c.Account)
	node := h.Sum()

	for i := 0; i < Depth; i++ {
		api.AssertIsBoolean(c.PathBits[i])
		left := api.Select(c.PathBits[i], c.Siblings[i], node)
		right := api.Select(c.PathBits[i], node, c.Siblings[i])
		node = mimcHash(api, left, right)
	}

	api.AssertIsEqual(node, c.Root)
	return nil
}

// System holds the compiled circuit and Groth16 keys.
type System struct {
	cs constraint.ConstraintSystem
	pk groth16.ProvingKey
	vk groth16.VerifyingKey
}

// Setup compiles the membership circuit and runs the trusted setup.
// Expensive; do it once per process and share the System.
func Setup() (*System, error) {
	var circuit Circuit
	cs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
	if err != nil {
		return nil, fmt.Errorf("zkallowlist: circuit compilation failed: %w", err)
	}
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return nil, fmt.Errorf("zkallowlist: setup failed: %w", err)
	}
	return &System{cs: cs, pk: pk, vk: vk}, nil
}

// Constraints returns the compiled constraint count.
func (s *System) Constraints() int {
	return s.cs.GetNbConstraints()
}

// Prove generates a serialized Groth16 membership proof for an account
// committed to the tree. The tree depth must equal Depth.
func (s *System) Prove(tree *allowlist.Tree, account string) ([]byte, error) {
	if tree.Depth() != Depth {
		return nil, fmt.Errorf("zkallowlist: tree depth %d, circuit wants %d", tree.Depth(), Depth)
	}
	path, err := tree.ProofFor(account)
	if err != nil {
		return nil, err
	}

	root := tree.Root()
	assignment := &Circuit{
		Account: accountElement(account),
		Root:    new(big.Int).SetBytes(root[:]),
	}
	for i := 0; i < Depth; i++ {
		assignment.Siblings[i] = new(big.Int).SetBytes(path.Siblings[i][:])
		assignment.PathBits[i] = (path.Index >> i) & 1
	}

	witness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("zkallowlist: witness failed: %w", err)
	}
	proof, err := groth16.Prove(s.cs, s.pk, witness)
	if err != nil {
		return nil, fmt.Errorf("zkallowlist: prove failed: %w", err)
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("zkallowlist: proof serialization failed: %w", err)
	}
	return buf.Bytes(), nil
}

// VerifyBytes checks a serialized proof against the public inputs.
func (s *System) VerifyBytes(account string, root allowlist.Root, proofBytes []byte) bool {
	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return false
	}

	public := &Circuit{
		Account: accountElement(account),
		Root:    new(big.Int).SetBytes(root[:]),
	}
	witness, err := frontend.NewWitness(public, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false
	}
	return groth16.Verify(proof, s.vk, witness) == nil
}

// Verifier adapts a System to the allowlist.Verifier oracle. Proofs on
// this path carry the serialized Groth16 proof in Proof.Groth16; the
// plain Merkle fields are ignored.
type Verifier struct {
	sys *System
}

// NewVerifier wraps a compiled system.
func NewVerifier(sys *System) *Verifier {
	return &Verifier{sys: sys}
}

// Verify implements allowlist.Verifier.
func (v *Verifier) Verify(account string, root allowlist.Root, proof allowlist.Proof) bool {
	if len(proof.Groth16) == 0 {
		return false
	}
	return v.sys.VerifyBytes(account, root, proof.Groth16)
}

// accountElement reduces an account into the scalar field, matching
// allowlist.LeafHash's preimage.
func accountElement(account string) *big.Int {
	var e fr.Element
	e.SetBytes([]byte(account))
	return e.BigInt(new(big.Int))
}
