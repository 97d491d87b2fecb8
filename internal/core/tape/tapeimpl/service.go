// Package tapeimpl implements tape.Service against internal/core/store,
// following the Service{store, logger}/NewX constructor-injection
// pattern of nazandr-cp-epoch-server's epochimpl.Service.
package tapeimpl

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-pkgz/lgr"

	"github.com/tapedrive-io/tape/internal/core/events"
	"github.com/tapedrive-io/tape/internal/core/merkle"
	"github.com/tapedrive-io/tape/internal/core/primitives"
	"github.com/tapedrive-io/tape/internal/core/runtime"
	"github.com/tapedrive-io/tape/internal/core/state"
	"github.com/tapedrive-io/tape/internal/core/store"
	"github.com/tapedrive-io/tape/internal/core/tape"
)

// Service implements tape.Service.
type Service struct {
	store      *store.Store
	clock      runtime.Clock
	slotHashes runtime.SlotHashes
	events     events.Sink
	logger     lgr.L
}

// New constructs a tapeimpl.Service.
func New(st *store.Store, clock runtime.Clock, slotHashes runtime.SlotHashes, sink events.Sink, logger lgr.L) *Service {
	return &Service{store: st, clock: clock, slotHashes: slotHashes, events: sink, logger: logger}
}

var _ tape.Service = (*Service)(nil)

func wrapKnown(err error, wrap error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", wrap, err)
}

// Create implements spec.md §4.4 Create.
func (s *Service) Create(ctx context.Context, authority primitives.Hash, name [primitives.NameLen]byte, header [primitives.HeaderSize]byte) (*tape.CreateResult, error) {
	tapeAddr := store.TapeAddress(authority, name)
	writerAddr := store.WriterAddress(tapeAddr)

	unlock := store.LockAll(s.store.Locks(), tapeAddr, writerAddr)
	defer unlock()

	firstSlot := s.slotHashes.FirstSlotHash()
	seed := primitives.Keccak(tapeAddr[:], firstSlot[:])

	t := &state.Tape{
		Number:     0,
		State:      state.TapeCreated,
		Authority:  authority,
		Name:       name,
		MerkleSeed: seed,
		MerkleRoot: primitives.Hash{},
		Header:     header,
		FirstSlot:  s.clock.Now(),
		TailSlot:   0,
	}

	if err := s.store.InitTape(tapeAddr, t); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, tape.ErrAlreadyExists
		}
		return nil, err
	}
	s.store.OpenWriter(tapeAddr, seed)

	s.logger.Logf("INFO created tape address=%x seed=%x", tapeAddr, seed)
	return &tape.CreateResult{TapeAddress: tapeAddr, WriterAddress: writerAddr, MerkleSeed: seed}, nil
}

func chunks(data []byte) [][primitives.SegmentSize]byte {
	n := (len(data) + primitives.SegmentSize - 1) / primitives.SegmentSize
	if n == 0 {
		n = 0
	}
	out := make([][primitives.SegmentSize]byte, n)
	for i := 0; i < n; i++ {
		start := i * primitives.SegmentSize
		end := start + primitives.SegmentSize
		if end > len(data) {
			end = len(data)
		}
		copy(out[i][:], data[start:end])
	}
	return out
}

// Write implements spec.md §4.4 Write.
func (s *Service) Write(ctx context.Context, authority, tapeAddr primitives.Hash, data []byte) (*tape.WriteResult, error) {
	writerAddr := store.WriterAddress(tapeAddr)
	unlock := store.LockAll(s.store.Locks(), tapeAddr, writerAddr)
	defer unlock()

	t, err := s.store.GetTape(tapeAddr)
	if err != nil {
		return nil, wrapKnown(err, tape.ErrNotFound)
	}
	if t.Authority != authority {
		return nil, tape.ErrUnauthorized
	}
	if t.State != state.TapeCreated && t.State != state.TapeWriting {
		return nil, tape.ErrUnexpectedState
	}

	tree := s.store.OpenWriter(tapeAddr, t.MerkleSeed)
	segs := chunks(data)
	for i, seg := range segs {
		leaf := primitives.LeafHash(t.MerkleSeed, t.TotalSegments+uint64(i), seg[:])
		if err := tree.TryAddLeaf(leaf); err != nil {
			return nil, tape.ErrWriteFailed
		}
	}

	t.TotalSegments += uint64(len(segs))
	t.TotalSize += uint64(len(data))
	t.MerkleRoot = tree.Root()
	t.State = state.TapeWriting
	if err := s.store.PutTape(tapeAddr, t); err != nil {
		return nil, err
	}

	s.events.Log(events.Write{NumAdded: uint64(len(segs)), NumTotal: t.TotalSegments, Address: tapeAddr})
	return &tape.WriteResult{NumAdded: uint64(len(segs)), TotalSegments: t.TotalSegments, MerkleRoot: t.MerkleRoot}, nil
}

// Update implements spec.md §4.4 Update.
func (s *Service) Update(ctx context.Context, authority, tapeAddr primitives.Hash, segmentNumber uint64, oldData, newData [primitives.SegmentSize]byte, proof [primitives.ProofLen]primitives.Hash) (*tape.UpdateResult, error) {
	writerAddr := store.WriterAddress(tapeAddr)
	unlock := store.LockAll(s.store.Locks(), tapeAddr, writerAddr)
	defer unlock()

	t, err := s.store.GetTape(tapeAddr)
	if err != nil {
		return nil, wrapKnown(err, tape.ErrNotFound)
	}
	if t.Authority != authority {
		return nil, tape.ErrUnauthorized
	}
	if t.State != state.TapeCreated && t.State != state.TapeWriting {
		return nil, tape.ErrUnexpectedState
	}

	tree := s.store.OpenWriter(tapeAddr, t.MerkleSeed)
	oldLeaf := primitives.LeafHash(t.MerkleSeed, segmentNumber, oldData[:])
	newLeaf := primitives.LeafHash(t.MerkleSeed, segmentNumber, newData[:])

	if err := tree.TryReplaceLeaf(proof, oldLeaf, newLeaf, int(segmentNumber)); err != nil {
		if errors.Is(err, merkle.ErrProofMismatch) {
			return nil, tape.ErrWriteFailed
		}
		return nil, err
	}

	t.MerkleRoot = tree.Root()
	if err := s.store.PutTape(tapeAddr, t); err != nil {
		return nil, err
	}

	s.events.Log(events.Update{SegmentNumber: segmentNumber, OldSlot: t.TailSlot, Address: tapeAddr})
	return &tape.UpdateResult{MerkleRoot: t.MerkleRoot}, nil
}

// Finalize implements spec.md §4.4 Finalize: it increments the global
// Archive singleton's tapes_stored/bytes_stored alongside the tape's
// own state transition, so the two records move together under the
// same lock acquisition (spec.md §5: "every Finalize writes Archive").
func (s *Service) Finalize(ctx context.Context, authority, tapeAddr primitives.Hash, tail [primitives.TailSize]byte) (*tape.FinalizeResult, error) {
	writerAddr := store.WriterAddress(tapeAddr)
	archiveAddr := store.ArchiveAddress()
	unlock := store.LockAll(s.store.Locks(), tapeAddr, writerAddr, archiveAddr)
	defer unlock()

	t, err := s.store.GetTape(tapeAddr)
	if err != nil {
		return nil, wrapKnown(err, tape.ErrNotFound)
	}
	if t.Authority != authority {
		return nil, tape.ErrUnauthorized
	}
	if t.State != state.TapeWriting {
		return nil, tape.ErrUnexpectedState
	}

	root, ok := s.store.CloseWriter(tapeAddr)
	if !ok {
		return nil, tape.ErrWriterMismatch
	}

	archive, err := s.store.GetArchive()
	if err != nil {
		return nil, err
	}
	archive.TapesStored = primitives.SatAddU64(archive.TapesStored, 1)
	archive.BytesStored = primitives.SatAddU64(archive.BytesStored, t.TotalSize)
	if err := s.store.PutArchive(archive); err != nil {
		return nil, err
	}
	number := archive.TapesStored

	t.Number = number
	t.State = state.TapeFinalized
	t.MerkleRoot = root
	t.TailSlot = s.clock.Now()
	copy(t.Header[:primitives.TailSize], tail[:]) // tail is recorded opaquely, per spec.md §6.1 Finalize payload
	if err := s.store.PutTape(tapeAddr, t); err != nil {
		return nil, err
	}

	s.events.Log(events.Finalize{TapeNumber: number, Address: tapeAddr})
	return &tape.FinalizeResult{TapeNumber: number, MerkleRoot: root}, nil
}
