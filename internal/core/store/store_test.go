package store_test

import (
	"testing"

	"github.com/go-pkgz/lgr"
	"github.com/stretchr/testify/require"

	"github.com/tapedrive-io/tape/internal/core/primitives"
	"github.com/tapedrive-io/tape/internal/core/state"
	"github.com/tapedrive-io/tape/internal/core/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	logger := lgr.New(lgr.Msec, lgr.Debug)
	st, err := store.New(logger, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestDerivedAddresses_AreDeterministicAndDistinct(t *testing.T) {
	require.Equal(t, store.ArchiveAddress(), store.ArchiveAddress())
	require.NotEqual(t, store.ArchiveAddress(), store.EpochAddress())
	require.NotEqual(t, store.EpochAddress(), store.BlockAddress())
	require.NotEqual(t, store.BlockAddress(), store.TreasuryAddress())

	authority := primitives.Keccak([]byte("authority"))
	var name [primitives.NameLen]byte
	copy(name[:], "tape-name")

	require.Equal(t, store.TapeAddress(authority, name), store.TapeAddress(authority, name))

	var otherName [primitives.NameLen]byte
	copy(otherName[:], "other-name")
	require.NotEqual(t, store.TapeAddress(authority, name), store.TapeAddress(authority, otherName))

	tapeAddr := store.TapeAddress(authority, name)
	require.NotEqual(t, tapeAddr, store.WriterAddress(tapeAddr))
	require.NotEqual(t, store.TapeAddress(authority, name), store.MinerAddress(authority, name))
}

func TestStore_ArchiveInitGetPutRoundTrip(t *testing.T) {
	st := newStore(t)

	require.NoError(t, st.InitArchive(&state.Archive{}))
	err := st.InitArchive(&state.Archive{})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	got, err := st.GetArchive()
	require.NoError(t, err)
	require.Zero(t, got.TapesStored)

	got.TapesStored = 7
	require.NoError(t, st.PutArchive(got))

	reread, err := st.GetArchive()
	require.NoError(t, err)
	require.EqualValues(t, 7, reread.TapesStored)
}

func TestStore_GetMissingRecordReturnsErrNotFound(t *testing.T) {
	st := newStore(t)
	_, err := st.GetEpoch()
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_TapeByNumberScan(t *testing.T) {
	st := newStore(t)
	authority := primitives.Keccak([]byte("auth"))
	var name [primitives.NameLen]byte
	copy(name[:], "scan-tape")
	addr := store.TapeAddress(authority, name)

	tp := &state.Tape{Number: 42, Authority: authority, Name: name}
	require.NoError(t, st.InitTape(addr, tp))

	foundAddr, found, err := st.GetTapeByNumber(42)
	require.NoError(t, err)
	require.Equal(t, addr, foundAddr)
	require.EqualValues(t, 42, found.Number)

	_, _, err = st.GetTapeByNumber(99)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_WriterLifecycle(t *testing.T) {
	st := newStore(t)
	tapeAddr := primitives.Keccak([]byte("writer-tape"))
	seed := primitives.Keccak([]byte("seed"))

	tr := st.OpenWriter(tapeAddr, seed)
	require.NoError(t, tr.TryAddLeaf(primitives.LeafHash(seed, 0, []byte("x"))))

	same := st.OpenWriter(tapeAddr, seed)
	require.Equal(t, 1, same.Len(), "OpenWriter must return the same resident tree, not a fresh one")

	root, ok := st.CloseWriter(tapeAddr)
	require.True(t, ok)
	require.Equal(t, tr.Root(), root)

	_, ok = st.CloseWriter(tapeAddr)
	require.False(t, ok, "closing twice should report the writer is gone")
}

func TestStore_MinerInitGetPutDelete(t *testing.T) {
	st := newStore(t)
	addr := primitives.Keccak([]byte("miner-addr"))
	m := &state.Miner{Authority: primitives.Keccak([]byte("auth"))}

	require.NoError(t, st.InitMiner(addr, m))
	require.ErrorIs(t, st.InitMiner(addr, m), store.ErrAlreadyExists)

	got, err := st.GetMiner(addr)
	require.NoError(t, err)
	require.Equal(t, m.Authority, got.Authority)

	got.UnclaimedReward = 5
	require.NoError(t, st.PutMiner(addr, got))

	require.NoError(t, st.DeleteMiner(addr))
	_, err = st.GetMiner(addr)
	require.ErrorIs(t, err, store.ErrNotFound)
}
