// Package tape defines the Service interface for the Create/Write/
// Update/Finalize operations of spec.md §4.4, following the
// interface-in-the-domain-package, implementation-in-a-sibling-impl-package
// split used throughout nazandr-cp-epoch-server
// (internal/services/epoch + internal/services/epoch/epochimpl).
package tape

import (
	"context"

	"github.com/tapedrive-io/tape/internal/core/primitives"
)

//go:generate moq -out tape_mocks.go . Service

// CreateResult is returned by a successful Create.
type CreateResult struct {
	TapeAddress   primitives.Hash
	WriterAddress primitives.Hash
	MerkleSeed    primitives.Hash
}

// WriteResult is returned by a successful Write.
type WriteResult struct {
	NumAdded      uint64
	TotalSegments uint64
	MerkleRoot    primitives.Hash
}

// UpdateResult is returned by a successful Update.
type UpdateResult struct {
	MerkleRoot primitives.Hash
}

// FinalizeResult is returned by a successful Finalize.
type FinalizeResult struct {
	TapeNumber uint64
	MerkleRoot primitives.Hash
}

// Service implements the tape lifecycle operations from spec.md §4.4.
type Service interface {
	// Create allocates Tape and Writer records for (authority, name).
	Create(ctx context.Context, authority primitives.Hash, name [primitives.NameLen]byte, header [primitives.HeaderSize]byte) (*CreateResult, error)

	// Write appends data to the tape's writer tree as SEGMENT_SIZE
	// leaves, zero-padding the final chunk.
	Write(ctx context.Context, authority primitives.Hash, tapeAddr primitives.Hash, data []byte) (*WriteResult, error)

	// Update replaces one existing segment by Merkle proof.
	Update(ctx context.Context, authority, tapeAddr primitives.Hash, segmentNumber uint64, oldData, newData [primitives.SegmentSize]byte, proof [primitives.ProofLen]primitives.Hash) (*UpdateResult, error)

	// Finalize closes the tape's writer and registers it in the Archive.
	Finalize(ctx context.Context, authority, tapeAddr primitives.Hash, tail [primitives.TailSize]byte) (*FinalizeResult, error)
}
