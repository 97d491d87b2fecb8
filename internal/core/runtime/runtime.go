// Package runtime models the thin slice of the underlying blockchain
// runtime that the core depends on but does not implement: a monotonic
// second counter and the "recent slot hashes" entropy sysvar (spec.md
// §1 lists "blockchain runtime primitives" as an out-of-scope external
// collaborator; §9 "Randomness" requires reading the first SlotHash
// entry). Modeled as injected interfaces, the same dependency-injection
// shape the teacher uses for its ContractClient/SubgraphClient.
package runtime

import "github.com/tapedrive-io/tape/internal/core/primitives"

// Clock returns the runtime's monotonic second counter. Non-goal per
// spec.md §1: "does not timestamp in real-world time" — callers must
// not assume Now() tracks wall-clock time, only that it is
// non-decreasing.
type Clock interface {
	Now() int64
}

// SlotHashes exposes the runtime's recent-block-hashes sysvar. Only the
// first entry is read (spec.md §9).
type SlotHashes interface {
	FirstSlotHash() primitives.Hash
}

// SystemClock is the reference Clock, backed by wall-clock seconds.
// It is a reasonable stand-in for a monotonic counter in a
// single-process deployment; a real multi-validator runtime would
// inject its own slot clock instead.
type SystemClock struct {
	now func() int64
}

// NewSystemClock builds a SystemClock sourcing seconds from nowFn
// (typically time.Now().Unix, injected so tests can pin time).
func NewSystemClock(nowFn func() int64) *SystemClock {
	return &SystemClock{now: nowFn}
}

func (c *SystemClock) Now() int64 { return c.now() }

// FixedSlotHashes is a SlotHashes implementation over a single rolling
// hash value, sufficient for a single-process core that has no real
// multi-validator slot history to read.
type FixedSlotHashes struct {
	hash primitives.Hash
}

func NewFixedSlotHashes(initial primitives.Hash) *FixedSlotHashes {
	return &FixedSlotHashes{hash: initial}
}

func (f *FixedSlotHashes) FirstSlotHash() primitives.Hash { return f.hash }

// Advance rolls the fixture forward so successive FirstSlotHash calls
// see fresh entropy instead of a perpetually frozen fixture. The core
// services never call it; a driver that wants fresh entropy calls it
// itself.
func (f *FixedSlotHashes) Advance(mix primitives.Hash) {
	f.hash = primitives.Keccak(f.hash[:], mix[:])
}
