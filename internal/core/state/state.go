// Package state defines the on-chain record types from spec.md §3:
// Archive, Epoch, Block, Treasury, Tape, Writer, Miner. Each record is
// stored as [8-byte discriminator | packed fields], with typed
// (Un)Marshal routines that reject wrong discriminators or short
// buffers, mirroring the teacher's JSON-record persistence shape
// (nazandr-cp-epoch-server's EpochInfo/MerkleSnapshot) but binary and
// fixed-layout because these are consensus-critical records rather than
// off-chain cache entries.
package state

import (
	"encoding/binary"
	"fmt"

	"github.com/tapedrive-io/tape/internal/core/primitives"
)

// Kind is the 8-byte record discriminator. Unknown is the zero value
// and is invalid for every operation.
type Kind uint64

const (
	KindUnknown Kind = iota
	KindArchive
	KindEpoch
	KindBlock
	KindTreasury
	KindTape
	KindWriter
	KindMiner
)

func (k Kind) String() string {
	switch k {
	case KindArchive:
		return "Archive"
	case KindEpoch:
		return "Epoch"
	case KindBlock:
		return "Block"
	case KindTreasury:
		return "Treasury"
	case KindTape:
		return "Tape"
	case KindWriter:
		return "Writer"
	case KindMiner:
		return "Miner"
	default:
		return "Unknown"
	}
}

// ErrBadDiscriminator is returned by Unmarshal functions on a
// discriminator mismatch.
type ErrBadDiscriminator struct {
	Want, Got Kind
}

func (e *ErrBadDiscriminator) Error() string {
	return fmt.Sprintf("state: invalid account data: want discriminator %s, got %s", e.Want, e.Got)
}

// ErrShortBuffer is returned when a buffer is too short to hold a
// record's fixed layout.
type ErrShortBuffer struct {
	Kind Kind
	Want int
	Got  int
}

func (e *ErrShortBuffer) Error() string {
	return fmt.Sprintf("state: invalid account data: %s needs %d bytes, got %d", e.Kind, e.Want, e.Got)
}

func putDiscriminator(buf []byte, k Kind) {
	binary.LittleEndian.PutUint64(buf, uint64(k))
}

func readDiscriminator(buf []byte) (Kind, error) {
	if len(buf) < 8 {
		return KindUnknown, &ErrShortBuffer{Kind: KindUnknown, Want: 8, Got: len(buf)}
	}
	return Kind(binary.LittleEndian.Uint64(buf[:8])), nil
}

// TapeState mirrors spec.md §3's Tape.state enum.
type TapeState uint8

const (
	TapeUnknown TapeState = iota
	TapeCreated
	TapeWriting
	TapeFinalized
)

func (s TapeState) String() string {
	switch s {
	case TapeCreated:
		return "Created"
	case TapeWriting:
		return "Writing"
	case TapeFinalized:
		return "Finalized"
	default:
		return "Unknown"
	}
}

// Archive is the global registry counting finalized tapes and their
// aggregate size.
type Archive struct {
	TapesStored uint64
	BytesStored uint64
}

const archiveLen = 8 + 8 + 8

func (a *Archive) Marshal() []byte {
	buf := make([]byte, archiveLen)
	putDiscriminator(buf, KindArchive)
	binary.LittleEndian.PutUint64(buf[8:], a.TapesStored)
	binary.LittleEndian.PutUint64(buf[16:], a.BytesStored)
	return buf
}

func UnmarshalArchive(buf []byte) (*Archive, error) {
	k, err := readDiscriminator(buf)
	if err != nil {
		return nil, err
	}
	if k != KindArchive {
		return nil, &ErrBadDiscriminator{Want: KindArchive, Got: k}
	}
	if len(buf) < archiveLen {
		return nil, &ErrShortBuffer{Kind: KindArchive, Want: archiveLen, Got: len(buf)}
	}
	return &Archive{
		TapesStored: binary.LittleEndian.Uint64(buf[8:]),
		BytesStored: binary.LittleEndian.Uint64(buf[16:]),
	}, nil
}

// Epoch holds the difficulty/participation/reward-rate parameters held
// constant for EPOCH_BLOCKS blocks.
type Epoch struct {
	Number              uint64
	Progress            uint64
	TargetDifficulty    uint32
	TargetParticipation uint32
	RewardRate          uint64
	Duplicates          uint64
	LastEpochAt         int64
}

const epochLen = 8 + 8 + 8 + 4 + 4 + 8 + 8 + 8

func (e *Epoch) Marshal() []byte {
	buf := make([]byte, epochLen)
	putDiscriminator(buf, KindEpoch)
	off := 8
	binary.LittleEndian.PutUint64(buf[off:], e.Number)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], e.Progress)
	off += 8
	binary.LittleEndian.PutUint32(buf[off:], e.TargetDifficulty)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], e.TargetParticipation)
	off += 4
	binary.LittleEndian.PutUint64(buf[off:], e.RewardRate)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], e.Duplicates)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], uint64(e.LastEpochAt))
	return buf
}

func UnmarshalEpoch(buf []byte) (*Epoch, error) {
	k, err := readDiscriminator(buf)
	if err != nil {
		return nil, err
	}
	if k != KindEpoch {
		return nil, &ErrBadDiscriminator{Want: KindEpoch, Got: k}
	}
	if len(buf) < epochLen {
		return nil, &ErrShortBuffer{Kind: KindEpoch, Want: epochLen, Got: len(buf)}
	}
	off := 8
	e := &Epoch{}
	e.Number = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	e.Progress = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	e.TargetDifficulty = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	e.TargetParticipation = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	e.RewardRate = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	e.Duplicates = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	e.LastEpochAt = int64(binary.LittleEndian.Uint64(buf[off:]))
	return e, nil
}

// Block is the recurring on-chain tick during which a target number of
// distinct miners must submit proofs.
type Block struct {
	Number       uint64
	Progress     uint64
	Challenge    primitives.Hash
	ChallengeSet bool
	LastProofAt  int64
	LastBlockAt  int64
}

const blockLen = 8 + 8 + 8 + 32 + 1 + 8 + 8

func (b *Block) Marshal() []byte {
	buf := make([]byte, blockLen)
	putDiscriminator(buf, KindBlock)
	off := 8
	binary.LittleEndian.PutUint64(buf[off:], b.Number)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], b.Progress)
	off += 8
	copy(buf[off:], b.Challenge[:])
	off += 32
	if b.ChallengeSet {
		buf[off] = 1
	}
	off++
	binary.LittleEndian.PutUint64(buf[off:], uint64(b.LastProofAt))
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], uint64(b.LastBlockAt))
	return buf
}

func UnmarshalBlock(buf []byte) (*Block, error) {
	k, err := readDiscriminator(buf)
	if err != nil {
		return nil, err
	}
	if k != KindBlock {
		return nil, &ErrBadDiscriminator{Want: KindBlock, Got: k}
	}
	if len(buf) < blockLen {
		return nil, &ErrShortBuffer{Kind: KindBlock, Want: blockLen, Got: len(buf)}
	}
	off := 8
	b := &Block{}
	b.Number = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	b.Progress = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	copy(b.Challenge[:], buf[off:off+32])
	off += 32
	b.ChallengeSet = buf[off] == 1
	off++
	b.LastProofAt = int64(binary.LittleEndian.Uint64(buf[off:]))
	off += 8
	b.LastBlockAt = int64(binary.LittleEndian.Uint64(buf[off:]))
	return b, nil
}

// Treasury holds no mutable state; its record exists only so Initialize
// can gate on "must not already exist" and so its derived address can
// hold mint authority conceptually (spec.md §3).
type Treasury struct{}

const treasuryLen = 8

func (Treasury) Marshal() []byte {
	buf := make([]byte, treasuryLen)
	putDiscriminator(buf, KindTreasury)
	return buf
}

func UnmarshalTreasury(buf []byte) (*Treasury, error) {
	k, err := readDiscriminator(buf)
	if err != nil {
		return nil, err
	}
	if k != KindTreasury {
		return nil, &ErrBadDiscriminator{Want: KindTreasury, Got: k}
	}
	return &Treasury{}, nil
}

// Tape is a user-created, append-mostly, Merkle-committed sequence of
// fixed-size segments.
type Tape struct {
	Number        uint64
	State         TapeState
	Authority     primitives.Hash
	Name          [primitives.NameLen]byte
	MerkleSeed    primitives.Hash
	MerkleRoot    primitives.Hash
	Header        [primitives.HeaderSize]byte
	FirstSlot     int64
	TailSlot      int64
	TotalSegments uint64
	TotalSize     uint64
}

const tapeLen = 8 + 8 + 1 + 32 + primitives.NameLen + 32 + 32 + primitives.HeaderSize + 8 + 8 + 8 + 8

func (t *Tape) Marshal() []byte {
	buf := make([]byte, tapeLen)
	putDiscriminator(buf, KindTape)
	off := 8
	binary.LittleEndian.PutUint64(buf[off:], t.Number)
	off += 8
	buf[off] = byte(t.State)
	off++
	copy(buf[off:], t.Authority[:])
	off += 32
	copy(buf[off:], t.Name[:])
	off += primitives.NameLen
	copy(buf[off:], t.MerkleSeed[:])
	off += 32
	copy(buf[off:], t.MerkleRoot[:])
	off += 32
	copy(buf[off:], t.Header[:])
	off += primitives.HeaderSize
	binary.LittleEndian.PutUint64(buf[off:], uint64(t.FirstSlot))
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], uint64(t.TailSlot))
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], t.TotalSegments)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], t.TotalSize)
	return buf
}

func UnmarshalTape(buf []byte) (*Tape, error) {
	k, err := readDiscriminator(buf)
	if err != nil {
		return nil, err
	}
	if k != KindTape {
		return nil, &ErrBadDiscriminator{Want: KindTape, Got: k}
	}
	if len(buf) < tapeLen {
		return nil, &ErrShortBuffer{Kind: KindTape, Want: tapeLen, Got: len(buf)}
	}
	off := 8
	t := &Tape{}
	t.Number = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	t.State = TapeState(buf[off])
	off++
	copy(t.Authority[:], buf[off:off+32])
	off += 32
	copy(t.Name[:], buf[off:off+primitives.NameLen])
	off += primitives.NameLen
	copy(t.MerkleSeed[:], buf[off:off+32])
	off += 32
	copy(t.MerkleRoot[:], buf[off:off+32])
	off += 32
	copy(t.Header[:], buf[off:off+primitives.HeaderSize])
	off += primitives.HeaderSize
	t.FirstSlot = int64(binary.LittleEndian.Uint64(buf[off:]))
	off += 8
	t.TailSlot = int64(binary.LittleEndian.Uint64(buf[off:]))
	off += 8
	t.TotalSegments = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	t.TotalSize = binary.LittleEndian.Uint64(buf[off:])
	return t, nil
}

// Writer is a scratch record holding the in-progress Merkle tree for a
// tape; destroyed at Finalize. Unlike the other records, Writer is not
// persisted via Marshal/Unmarshal — its Merkle tree is mutated far more
// often than it would be worth re-serializing on every leaf append, so
// internal/core/store keeps it resident as a live *merkle.Tree keyed by
// the tape's address, and only persists the tape's
// MerkleRoot snapshot (the commitment other records actually need).
type Writer struct {
	Tape primitives.Hash
}

// Miner tracks a registered prover's rewards, challenge, and
// consistency multiplier.
type Miner struct {
	Authority       primitives.Hash
	Name            [primitives.NameLen]byte
	UnclaimedReward uint64
	Challenge       primitives.Hash
	Multiplier      uint32
	LastProofBlock  uint64
	LastProofAt     int64
	TotalProofs     uint64
	TotalRewards    uint64
}

const minerLen = 8 + 32 + primitives.NameLen + 8 + 32 + 4 + 8 + 8 + 8 + 8

func (m *Miner) Marshal() []byte {
	buf := make([]byte, minerLen)
	putDiscriminator(buf, KindMiner)
	off := 8
	copy(buf[off:], m.Authority[:])
	off += 32
	copy(buf[off:], m.Name[:])
	off += primitives.NameLen
	binary.LittleEndian.PutUint64(buf[off:], m.UnclaimedReward)
	off += 8
	copy(buf[off:], m.Challenge[:])
	off += 32
	binary.LittleEndian.PutUint32(buf[off:], m.Multiplier)
	off += 4
	binary.LittleEndian.PutUint64(buf[off:], m.LastProofBlock)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], uint64(m.LastProofAt))
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], m.TotalProofs)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], m.TotalRewards)
	return buf
}

func UnmarshalMiner(buf []byte) (*Miner, error) {
	k, err := readDiscriminator(buf)
	if err != nil {
		return nil, err
	}
	if k != KindMiner {
		return nil, &ErrBadDiscriminator{Want: KindMiner, Got: k}
	}
	if len(buf) < minerLen {
		return nil, &ErrShortBuffer{Kind: KindMiner, Want: minerLen, Got: len(buf)}
	}
	off := 8
	m := &Miner{}
	copy(m.Authority[:], buf[off:off+32])
	off += 32
	copy(m.Name[:], buf[off:off+primitives.NameLen])
	off += primitives.NameLen
	m.UnclaimedReward = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	copy(m.Challenge[:], buf[off:off+32])
	off += 32
	m.Multiplier = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	m.LastProofBlock = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	m.LastProofAt = int64(binary.LittleEndian.Uint64(buf[off:]))
	off += 8
	m.TotalProofs = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	m.TotalRewards = binary.LittleEndian.Uint64(buf[off:])
	return m, nil
}
