// Package merkle implements the fixed-height-18 append/point-replace
// Merkle tree used by the Writer record during a tape's Created/Writing
// lifetime.
//
// Grounded on the from-scratch keccak Merkle construction in
// nazandr-cp-epoch-server/internal/services/merkle/merkleimpl/service.go
// (BuildMerkleRootFromEntries / generateMerkleProof), generalized from a
// one-shot batch builder into a stateful, incrementally-appendable tree
// and switched from value-sorted pair hashing to positional pair
// hashing, since the teacher's sorted-pair scheme serves off-chain
// airdrop proofs where sort order must be canonical independent of
// insertion order, while this core needs deterministic, order-preserving
// slots (spec.md §4.2: "left child comes from the lower-indexed half").
package merkle

import (
	"errors"

	"github.com/tapedrive-io/tape/internal/core/primitives"
)

// ErrTreeFull is returned by TryAddLeaf once the tree already holds
// primitives.MaxLeaves leaves.
var ErrTreeFull = errors.New("merkle: tree is full")

// ErrProofMismatch is returned by TryReplaceLeaf when the supplied
// proof does not recompute to the tree's current root.
var ErrProofMismatch = errors.New("merkle: proof does not match current root")

// ErrBadProofLength names a proof without exactly primitives.ProofLen
// elements. No function in this package returns it: proofs here are
// fixed-size [primitives.ProofLen] arrays.
var ErrBadProofLength = errors.New("merkle: proof must have exactly ProofLen elements")

// buildZeroHashes computes zeroHashes[i], the root of an empty subtree
// of height i, keyed by seed. Every tree keys its own zero-hashes so
// that an absent subtree in one tape hashes differently from an
// absent subtree in another.
func buildZeroHashes(seed primitives.Hash) [primitives.TreeHeight + 1]primitives.Hash {
	var z [primitives.TreeHeight + 1]primitives.Hash
	// level 0: the hash of an absent leaf is the zero hash by convention.
	for i := 1; i <= primitives.TreeHeight; i++ {
		z[i] = primitives.NodeHash(seed, z[i-1], z[i-1])
	}
	return z
}

// Tree is a fixed-height-18 binary Merkle tree, zero-padded at
// construction, keyed per-tape by a derived seed. It owns the full set
// of leaves and internal nodes so that proofs can be produced for any
// previously appended leaf at any time — the same append-then-prove
// shape spec.md §8's round-trip law requires.
type Tree struct {
	seed       primitives.Hash
	zeroHashes [primitives.TreeHeight + 1]primitives.Hash
	leaves     []primitives.Hash
	// levels[0] holds the leaves; levels[TreeHeight] holds the root.
	levels [][]primitives.Hash
}

// New constructs an empty tree keyed by seed.
func New(seed primitives.Hash) *Tree {
	t := &Tree{seed: seed, zeroHashes: buildZeroHashes(seed)}
	t.levels = make([][]primitives.Hash, primitives.TreeHeight+1)
	return t
}

// Seed returns the tree's construction seed.
func (t *Tree) Seed() primitives.Hash { return t.seed }

// Len returns the number of leaves appended so far.
func (t *Tree) Len() int { return len(t.leaves) }

func (t *Tree) nodeAt(level []primitives.Hash, idx, height int) primitives.Hash {
	if idx < len(level) {
		return level[idx]
	}
	return t.zeroHashes[height]
}

// recompute rebuilds every level above the leaves. Called after every
// mutation; the tree caps at 2^18 leaves so this stays cheap in
// practice for the protocol's segment counts.
func (t *Tree) recompute() {
	t.levels[0] = t.leaves
	cur := t.leaves
	for h := 1; h <= primitives.TreeHeight; h++ {
		width := (len(cur) + 1) / 2
		next := make([]primitives.Hash, width)
		for i := 0; i < width; i++ {
			left := t.nodeAt(cur, 2*i, h-1)
			right := t.nodeAt(cur, 2*i+1, h-1)
			next[i] = primitives.NodeHash(t.seed, left, right)
		}
		t.levels[h] = next
		cur = next
	}
}

// Root returns the tree's current root, the zero-height-18 hash for an
// empty tree.
func (t *Tree) Root() primitives.Hash {
	if len(t.leaves) == 0 {
		return t.zeroHashes[primitives.TreeHeight]
	}
	return t.levels[primitives.TreeHeight][0]
}

// TryAddLeaf appends a new leaf in the next free slot, succeeding iff
// fewer than primitives.MaxLeaves leaves are present.
func (t *Tree) TryAddLeaf(leaf primitives.Hash) error {
	if len(t.leaves) >= primitives.MaxLeaves {
		return ErrTreeFull
	}
	t.leaves = append(t.leaves, leaf)
	t.recompute()
	return nil
}

// Proof returns the ProofLen-length inclusion proof for the leaf at index.
func (t *Tree) Proof(index int) ([primitives.ProofLen]primitives.Hash, error) {
	var proof [primitives.ProofLen]primitives.Hash
	if index < 0 || index >= len(t.leaves) {
		return proof, errors.New("merkle: leaf index out of range")
	}
	cur := t.leaves
	idx := index
	for h := 0; h < primitives.TreeHeight; h++ {
		sibling := idx ^ 1
		proof[h] = t.nodeAt(cur, sibling, h)
		idx /= 2
		if h+1 < len(t.levels) {
			cur = t.levels[h+1]
		}
	}
	return proof, nil
}

// TryReplaceLeaf recomputes the root from (oldLeaf, proof) at index; if
// it matches the tree's current root, commits newLeaf at that
// position. index is taken as an explicit argument rather than
// inferred from the proof's path bits: the proof alone carries no
// position information (each step is just "this is the sibling"), so
// deriving the index from it would mean re-deriving the very value the
// caller (Mine/Update) already computed independently, with no
// guarantee the two derivations agree.
func (t *Tree) TryReplaceLeaf(proof [primitives.ProofLen]primitives.Hash, oldLeaf, newLeaf primitives.Hash, index int) error {
	if index < 0 || index >= len(t.leaves) {
		return errors.New("merkle: leaf index out of range")
	}
	if !Verify(t.seed, t.Root(), proof, oldLeaf, index) {
		return ErrProofMismatch
	}
	t.leaves[index] = newLeaf
	t.recompute()
	return nil
}

// Verify reports whether leaf at the given index, combined with proof
// and keyed by seed, recomputes to root. This is the free function
// used on-chain during Mine, where only the tape's persisted
// merkle_seed and root (not a live Tree) are available.
func Verify(seed, root primitives.Hash, proof [primitives.ProofLen]primitives.Hash, leaf primitives.Hash, index int) bool {
	cur := leaf
	idx := index
	for h := 0; h < primitives.ProofLen; h++ {
		sibling := proof[h]
		if idx%2 == 0 {
			cur = primitives.NodeHash(seed, cur, sibling)
		} else {
			cur = primitives.NodeHash(seed, sibling, cur)
		}
		idx /= 2
	}
	return cur == root
}
