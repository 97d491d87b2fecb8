package merkle_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tapedrive-io/tape/internal/core/merkle"
	"github.com/tapedrive-io/tape/internal/core/primitives"
)

func seed(b byte) primitives.Hash {
	var h primitives.Hash
	for i := range h {
		h[i] = b
	}
	return h
}

func TestTree_EmptyRootIsZeroHeight(t *testing.T) {
	tr := merkle.New(seed(0x11))
	require.Equal(t, 0, tr.Len())
	root := tr.Root()
	require.NotEqual(t, primitives.Hash{}, root, "empty-tree root should be the height-18 zero hash, not the all-zero hash")
}

func TestTree_AppendThenProveRoundTrip(t *testing.T) {
	s := seed(0x11)
	tr := merkle.New(s)
	leaves := []primitives.Hash{
		primitives.LeafHash(s, 0, []byte("hello")),
		primitives.LeafHash(s, 1, []byte("world")),
		primitives.LeafHash(s, 2, []byte("segment-2")),
	}
	for _, l := range leaves {
		require.NoError(t, tr.TryAddLeaf(l))
	}
	root := tr.Root()
	for i, l := range leaves {
		proof, err := tr.Proof(i)
		require.NoError(t, err)
		require.True(t, merkle.Verify(s, root, proof, l, i), "leaf %d should verify against the current root", i)
	}
}

func TestTree_SameDataDivergesAcrossSeeds(t *testing.T) {
	a := merkle.New(seed(0xaa))
	b := merkle.New(seed(0xbb))
	leaf := primitives.LeafHash(seed(0xaa), 0, []byte("identical-content"))
	otherLeaf := primitives.LeafHash(seed(0xbb), 0, []byte("identical-content"))
	require.NotEqual(t, leaf, otherLeaf, "leaf hash must be keyed by seed")

	require.NoError(t, a.TryAddLeaf(leaf))
	require.NoError(t, b.TryAddLeaf(otherLeaf))
	require.NotEqual(t, a.Root(), b.Root(), "two tapes with identical segment content must not share a root")
}

func TestTree_UpdateIdempotence(t *testing.T) {
	s := seed(0x22)
	tr := merkle.New(s)
	leaf := primitives.LeafHash(s, 0, []byte("segment"))
	require.NoError(t, tr.TryAddLeaf(leaf))
	before := tr.Root()

	proof, err := tr.Proof(0)
	require.NoError(t, err)
	require.NoError(t, tr.TryReplaceLeaf(proof, leaf, leaf, 0))
	require.Equal(t, before, tr.Root(), "replacing a leaf with itself must not change the root")
}

func TestTree_ReplaceChangesRoot(t *testing.T) {
	s := seed(0x33)
	tr := merkle.New(s)
	oldLeaf := primitives.LeafHash(s, 0, []byte("old-data"))
	newLeaf := primitives.LeafHash(s, 0, []byte("new-data"))
	require.NoError(t, tr.TryAddLeaf(oldLeaf))
	before := tr.Root()

	proof, err := tr.Proof(0)
	require.NoError(t, err)
	require.NoError(t, tr.TryReplaceLeaf(proof, oldLeaf, newLeaf, 0))
	require.NotEqual(t, before, tr.Root())

	newProof, err := tr.Proof(0)
	require.NoError(t, err)
	require.True(t, merkle.Verify(s, tr.Root(), newProof, newLeaf, 0))
}

func TestTree_ReplaceRejectsStaleProof(t *testing.T) {
	s := seed(0x44)
	tr := merkle.New(s)
	leafA := primitives.LeafHash(s, 0, []byte("a"))
	leafB := primitives.LeafHash(s, 1, []byte("b"))
	require.NoError(t, tr.TryAddLeaf(leafA))
	require.NoError(t, tr.TryAddLeaf(leafB))

	staleProof, err := tr.Proof(0)
	require.NoError(t, err)

	// mutate the tree so the stale proof no longer matches the current root
	proof1, err := tr.Proof(1)
	require.NoError(t, err)
	require.NoError(t, tr.TryReplaceLeaf(proof1, leafB, primitives.LeafHash(s, 1, []byte("b2")), 1))

	err = tr.TryReplaceLeaf(staleProof, leafA, primitives.LeafHash(s, 0, []byte("a2")), 0)
	require.ErrorIs(t, err, merkle.ErrProofMismatch)
}

func TestTree_ProofRejectsOutOfRangeIndex(t *testing.T) {
	s := seed(0x55)
	tr := merkle.New(s)
	require.NoError(t, tr.TryAddLeaf(primitives.LeafHash(s, 0, []byte("only-leaf"))))
	_, err := tr.Proof(1)
	require.Error(t, err)
}
