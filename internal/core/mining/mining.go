// Package mining defines the Service interface for the Mine operation
// and the block/epoch advance routines of spec.md §4.5, following the
// same interface/impl split as internal/core/tape.
package mining

import (
	"context"

	"github.com/tapedrive-io/tape/internal/core/primitives"
)

//go:generate moq -out mining_mocks.go . Service

// MineInput bundles the Mine operation's arguments (spec.md §4.5).
// MinerAddress is the caller-derived address of its own Miner record
// (store.MinerAddress(authority, name)) — the same way a real caller
// already knows its own PDA without the runtime needing to search for
// it by authority alone.
type MineInput struct {
	MinerAuthority primitives.Hash
	MinerAddress   primitives.Hash
	TapeAddress    primitives.Hash
	Digest         [16]byte
	Nonce          [8]byte
	RecallSegment  [primitives.SegmentSize]byte
	RecallProof    [primitives.ProofLen]primitives.Hash
}

// MineResult is returned by a successful Mine.
type MineResult struct {
	FinalReward     uint64
	NewMultiplier   uint32
	BlockAdvanced   bool
	EpochAdvanced   bool
	NewBlockNumber  uint64
	NewEpochNumber  uint64
}

// RegisterResult is returned by a successful Register.
type RegisterResult struct {
	MinerAddress primitives.Hash
}

// Service implements Mine plus miner lifecycle operations
// (Register/Claim/Close) — grouped here because they all share the
// Miner record and the block/epoch singletons that Mine mutates.
type Service interface {
	Register(ctx context.Context, authority primitives.Hash, name [primitives.NameLen]byte) (*RegisterResult, error)
	Mine(ctx context.Context, in MineInput) (*MineResult, error)
	Claim(ctx context.Context, authority, minerAddr, beneficiary primitives.Hash, amount uint64) (uint64, error)
	Close(ctx context.Context, authority, minerAddr primitives.Hash) error
}
