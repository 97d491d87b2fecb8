// Package primitives defines the fixed constants, keyed hashing, and
// challenge/recall derivations shared by every other core package.
//
// Grounded on original_source/api/src/consts.rs and api/src/utils.rs
// (tapedrive-io/tape), reimplemented in Go using the same keccak-256
// primitive the teacher project already depends on
// (github.com/ethereum/go-ethereum/crypto).
package primitives

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/crypto"
)

const (
	TreeHeight  = 18
	ProofLen    = 18
	MaxLeaves   = 1 << TreeHeight
	SegmentSize = 128
	MaxTapeSize = MaxLeaves * SegmentSize

	NameLen    = 32
	HeaderSize = 128
	TailSize   = 64

	TokenDecimals = 10
	OneTape       = 10_000_000_000 // 10^10
	MaxSupply     = 7_000_000 * OneTape

	OneSecond            = 1
	OneMinute            = 60
	BlockDurationSeconds = OneMinute
	EpochBlocks          = 10

	daysPerYear    = 365
	hoursPerDay    = 24
	minutesPerHour = 60
	// EpochsPerYear mirrors the original source's derivation exactly:
	// days/year * hours/day * minutes/hour / (block seconds/60) / epoch blocks.
	EpochsPerYear = daysPerYear * hoursPerDay * minutesPerHour / (BlockDurationSeconds / OneMinute) / EpochBlocks

	MinDifficulty             = 7
	MinConsistencyMultiplier  = 1
	MaxConsistencyMultiplier  = 32
	MinParticipationTarget    = 1
	RewardScaleDivisor uint64 = MaxConsistencyMultiplier
)

// Seed tags used to derive record addresses deterministically; mirrors
// the PDA seed tags in original_source/api/src/consts.rs.
var (
	TagArchive  = []byte("archive")
	TagEpoch    = []byte("epoch")
	TagBlock    = []byte("block")
	TagTreasury = []byte("treasury")
	TagTape     = []byte("tape")
	TagWriter   = []byte("writer")
	TagMiner    = []byte("miner")
	tagLeaf     = []byte("LEAF")
)

// Hash is the core's opaque 32-byte hash type, used for both record
// addresses and Merkle digests.
type Hash [32]byte

// Keccak hashes the concatenation of the given byte slices with
// keccak-256, the keyed hash H used throughout the spec.
func Keccak(parts ...[]byte) Hash {
	var h Hash
	copy(h[:], crypto.Keccak256(parts...))
	return h
}

// LeafHash implements leaf(seed, segment_id, payload) = H(seed || "LEAF" || H(segment_id_le || payload)).
// Keying on the tape's merkle_seed is what gives two tapes with
// identical segment content divergent leaves: without it the tree
// could not claim to be "keyed per-tape" at all.
func LeafHash(seed Hash, segmentID uint64, payload []byte) Hash {
	var idBuf [8]byte
	binary.LittleEndian.PutUint64(idBuf[:], segmentID)
	inner := Keccak(idBuf[:], payload)
	return Keccak(seed[:], tagLeaf, inner[:])
}

// NodeHash implements the internal Merkle node recipe node = H(seed || left || right).
func NodeHash(seed Hash, left, right Hash) Hash {
	return Keccak(seed[:], left[:], right[:])
}

// NextChallenge implements next_challenge(current, slot_hashes) = H(current || first_slot_hash).
func NextChallenge(current Hash, firstSlotHash Hash) Hash {
	return Keccak(current[:], firstSlotHash[:])
}

// MinerCompositeChallenge implements mc = H(block.challenge || miner.challenge).
func MinerCompositeChallenge(blockChallenge, minerChallenge Hash) Hash {
	return Keccak(blockChallenge[:], minerChallenge[:])
}

// RecallTape implements recall_tape(mc, total_tapes).
func RecallTape(mc Hash, totalTapes uint64) uint64 {
	if totalTapes == 0 {
		return 1
	}
	v := binary.LittleEndian.Uint64(mc[0:8]) % totalTapes
	if v == 0 {
		return 1
	}
	return v
}

// RecallSegment implements recall_segment(mc, total_segments).
func RecallSegment(mc Hash, totalSegments uint64) uint64 {
	if totalSegments == 0 {
		return 0
	}
	return binary.LittleEndian.Uint64(mc[8:16]) % totalSegments
}

// PaddedArray zero-pads or truncates src to exactly n bytes.
func PaddedArray(src []byte, n int) []byte {
	out := make([]byte, n)
	copy(out, src)
	return out
}

// SatAddU64 adds with saturation at math.MaxUint64.
func SatAddU64(a, b uint64) uint64 {
	sum := a + b
	if sum < a {
		return ^uint64(0)
	}
	return sum
}

// SatSubU64 subtracts with saturation at 0.
func SatSubU64(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// SatIncU32 increments a u32 counter with saturation.
func SatIncU32(v uint32) uint32 {
	if v == ^uint32(0) {
		return v
	}
	return v + 1
}

// ClampU32 clamps v into [lo, hi].
func ClampU32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PowVerifier is the external proof-of-work verifier contract. The
// core treats the memory-hard solver itself as an out-of-scope
// collaborator (spec §1) and only depends on this narrow interface,
// the same way the teacher depends on its ContractClient/SubgraphClient
// interfaces rather than embedding RPC logic in its services.
type PowVerifier interface {
	// Difficulty returns the number of leading zero bits achieved by
	// (digest, nonce) against (challenge, data), or ok=false if the
	// pair does not correspond to a valid solution shape at all.
	Difficulty(challenge Hash, data []byte, digest [16]byte, nonce [8]byte) (difficulty uint32, ok bool)
	// IsValid reports whether (digest, nonce) is a valid solution for
	// (challenge, data) independent of difficulty — used as the final
	// acceptance predicate in Mine's validation step 7.
	IsValid(challenge Hash, data []byte, digest [16]byte, nonce [8]byte) bool
}

// KeccakPowVerifier is the in-repo reference PowVerifier. It defines
// difficulty as the count of leading zero bits of
// keccak256(challenge || data || digest || nonce), a standard,
// auditable stand-in for the production memory-hard solver that this
// core treats as an external dependency (spec §1, §9 "Token layer"
// sibling note on substitutable external modules).
type KeccakPowVerifier struct{}

func (KeccakPowVerifier) solutionDigest(challenge Hash, data []byte, digest [16]byte, nonce [8]byte) Hash {
	return Keccak(challenge[:], data, digest[:], nonce[:])
}

func leadingZeroBits(h Hash) uint32 {
	var n uint32
	for _, b := range h {
		if b == 0 {
			n += 8
			continue
		}
		for mask := byte(0x80); mask != 0; mask >>= 1 {
			if b&mask != 0 {
				return n
			}
			n++
		}
	}
	return n
}

func (v KeccakPowVerifier) Difficulty(challenge Hash, data []byte, digest [16]byte, nonce [8]byte) (uint32, bool) {
	return leadingZeroBits(v.solutionDigest(challenge, data, digest, nonce)), true
}

func (v KeccakPowVerifier) IsValid(challenge Hash, data []byte, digest [16]byte, nonce [8]byte) bool {
	_, ok := v.Difficulty(challenge, data, digest, nonce)
	return ok
}
