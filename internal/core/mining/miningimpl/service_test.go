package miningimpl_test

import (
	"context"
	"testing"

	"github.com/go-pkgz/lgr"
	"github.com/stretchr/testify/require"

	"github.com/tapedrive-io/tape/internal/core/events"
	"github.com/tapedrive-io/tape/internal/core/mining"
	"github.com/tapedrive-io/tape/internal/core/mining/miningimpl"
	"github.com/tapedrive-io/tape/internal/core/primitives"
	"github.com/tapedrive-io/tape/internal/core/runtime"
	"github.com/tapedrive-io/tape/internal/core/store"
	"github.com/tapedrive-io/tape/internal/core/tape/tapeimpl"
	"github.com/tapedrive-io/tape/internal/core/treasury"
	"github.com/tapedrive-io/tape/internal/core/treasury/treasuryimpl"
)

// fakePow is a deterministic stand-in for the external PoW solver,
// always reporting its configured difficulty and a valid solution,
// so tests can exercise Mine's state transitions without
// brute-forcing a real keccak solution.
type fakePow struct {
	difficulty uint32
}

func (f fakePow) Difficulty(challenge primitives.Hash, data []byte, digest [16]byte, nonce [8]byte) (uint32, bool) {
	return f.difficulty, true
}

func (f fakePow) IsValid(challenge primitives.Hash, data []byte, digest [16]byte, nonce [8]byte) bool {
	return true
}

type harness struct {
	treasurySvc *treasuryimpl.Service
	tapeSvc     *tapeimpl.Service
	miningSvc   *miningimpl.Service
	store       *store.Store
	ledger      treasury.TokenLedger
}

func newHarness(t *testing.T, difficulty uint32) *harness {
	t.Helper()
	logger := lgr.New(lgr.Msec, lgr.Debug)
	st, err := store.New(logger, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	clock := runtime.NewSystemClock(func() int64 { return 1000 })
	slots := runtime.NewFixedSlotHashes(primitives.Keccak([]byte("genesis")))
	ledger := treasury.NewMemoryLedger()

	treasurySvc := treasuryimpl.New(st, clock, slots, ledger, logger)
	tapeSvc := tapeimpl.New(st, clock, slots, events.LogSink{Logger: logger}, logger)
	miningSvc := miningimpl.New(st, clock, slots, fakePow{difficulty: difficulty}, ledger, logger)

	return &harness{treasurySvc: treasurySvc, tapeSvc: tapeSvc, miningSvc: miningSvc, store: st, ledger: ledger}
}

func minerName(s string) [primitives.NameLen]byte {
	var n [primitives.NameLen]byte
	copy(n[:], s)
	return n
}

// paddedSegment returns the zero-padded SEGMENT_SIZE array that Write
// would have stored for a short payload, for use as a recall segment.
func paddedSegment(s string) [primitives.SegmentSize]byte {
	var out [primitives.SegmentSize]byte
	copy(out[:], s)
	return out
}

func TestMining_RegisterMineClaimClose_HappyPath(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 20)

	require.NoError(t, h.treasurySvc.Initialize(ctx))

	authority := primitives.Keccak([]byte("writer-authority"))
	created, err := h.tapeSvc.Create(ctx, authority, minerName("s4-tape"), [primitives.HeaderSize]byte{})
	require.NoError(t, err)

	segment := paddedSegment("hello")
	_, err = h.tapeSvc.Write(ctx, authority, created.TapeAddress, []byte("hello"))
	require.NoError(t, err)

	seed := created.MerkleSeed
	tr := h.store.OpenWriter(created.TapeAddress, seed)
	proof, err := tr.Proof(0)
	require.NoError(t, err)

	fin, err := h.tapeSvc.Finalize(ctx, authority, created.TapeAddress, [primitives.TailSize]byte{})
	require.NoError(t, err)
	require.EqualValues(t, 1, fin.TapeNumber)

	minerAuthority := primitives.Keccak([]byte("miner-authority"))
	reg, err := h.miningSvc.Register(ctx, minerAuthority, minerName("rig-1"))
	require.NoError(t, err)

	mineIn := mining.MineInput{
		MinerAuthority: minerAuthority,
		MinerAddress:   reg.MinerAddress,
		TapeAddress:    created.TapeAddress,
		Digest:         [16]byte{1, 2, 3},
		Nonce:          [8]byte{9, 9, 9},
		RecallSegment:  segment,
		RecallProof:    proof,
	}

	result, err := h.miningSvc.Mine(ctx, mineIn)
	require.NoError(t, err)
	require.EqualValues(t, 1, result.NewMultiplier, "first proof keeps the multiplier at MinConsistencyMultiplier, as set by Register")
	require.Greater(t, result.FinalReward, uint64(0))

	beneficiary := primitives.Keccak([]byte("beneficiary"))
	remaining, err := h.miningSvc.Claim(ctx, minerAuthority, reg.MinerAddress, beneficiary, result.FinalReward)
	require.NoError(t, err)
	require.EqualValues(t, 0, remaining)

	bal, err := h.ledger.BalanceOf(ctx, beneficiary)
	require.NoError(t, err)
	require.Equal(t, result.FinalReward, bal)

	require.NoError(t, h.miningSvc.Close(ctx, minerAuthority, reg.MinerAddress))
}

func TestMining_Mine_RejectsSolutionBelowTargetDifficulty(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, primitives.MinDifficulty-1)

	require.NoError(t, h.treasurySvc.Initialize(ctx))

	authority := primitives.Keccak([]byte("writer"))
	created, err := h.tapeSvc.Create(ctx, authority, minerName("tape-easy"), [primitives.HeaderSize]byte{})
	require.NoError(t, err)
	segment := paddedSegment("data")
	_, err = h.tapeSvc.Write(ctx, authority, created.TapeAddress, []byte("data"))
	require.NoError(t, err)
	tr := h.store.OpenWriter(created.TapeAddress, created.MerkleSeed)
	proof, err := tr.Proof(0)
	require.NoError(t, err)
	_, err = h.tapeSvc.Finalize(ctx, authority, created.TapeAddress, [primitives.TailSize]byte{})
	require.NoError(t, err)

	minerAuthority := primitives.Keccak([]byte("miner"))
	reg, err := h.miningSvc.Register(ctx, minerAuthority, minerName("rig"))
	require.NoError(t, err)

	_, err = h.miningSvc.Mine(ctx, mining.MineInput{
		MinerAuthority: minerAuthority,
		MinerAddress:   reg.MinerAddress,
		TapeAddress:    created.TapeAddress,
		RecallSegment:  segment,
		RecallProof:    proof,
	})
	require.ErrorIs(t, err, mining.ErrSolutionTooEasy)
}

func TestMining_Register_RejectsDuplicateName(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 20)
	require.NoError(t, h.treasurySvc.Initialize(ctx))

	authority := primitives.Keccak([]byte("x"))
	_, err := h.miningSvc.Register(ctx, authority, minerName("dup"))
	require.NoError(t, err)
	_, err = h.miningSvc.Register(ctx, authority, minerName("dup"))
	require.ErrorIs(t, err, mining.ErrAlreadyExists)
}

func TestMining_Claim_RejectsOverclaim(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 20)
	require.NoError(t, h.treasurySvc.Initialize(ctx))

	authority := primitives.Keccak([]byte("y"))
	reg, err := h.miningSvc.Register(ctx, authority, minerName("rig-y"))
	require.NoError(t, err)

	_, err = h.miningSvc.Claim(ctx, authority, reg.MinerAddress, primitives.Keccak([]byte("b")), 1)
	require.ErrorIs(t, err, mining.ErrClaimTooLarge)
}

func TestMining_Close_RejectsNonEmptyMiner(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 20)
	require.NoError(t, h.treasurySvc.Initialize(ctx))

	authority := primitives.Keccak([]byte("z"))
	created, err := h.tapeSvc.Create(ctx, authority, minerName("tape-z"), [primitives.HeaderSize]byte{})
	require.NoError(t, err)
	segment := paddedSegment("z-data")
	_, err = h.tapeSvc.Write(ctx, authority, created.TapeAddress, []byte("z-data"))
	require.NoError(t, err)
	tr := h.store.OpenWriter(created.TapeAddress, created.MerkleSeed)
	proof, err := tr.Proof(0)
	require.NoError(t, err)
	_, err = h.tapeSvc.Finalize(ctx, authority, created.TapeAddress, [primitives.TailSize]byte{})
	require.NoError(t, err)

	minerAuthority := primitives.Keccak([]byte("miner-z"))
	reg, err := h.miningSvc.Register(ctx, minerAuthority, minerName("rig-z"))
	require.NoError(t, err)

	_, err = h.miningSvc.Mine(ctx, mining.MineInput{
		MinerAuthority: minerAuthority,
		MinerAddress:   reg.MinerAddress,
		TapeAddress:    created.TapeAddress,
		RecallSegment:  segment,
		RecallProof:    proof,
	})
	require.NoError(t, err)

	err = h.miningSvc.Close(ctx, minerAuthority, reg.MinerAddress)
	require.ErrorIs(t, err, mining.ErrMinerNotEmpty)
}
