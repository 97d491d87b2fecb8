package treasuryimpl_test

import (
	"context"
	"testing"

	"github.com/go-pkgz/lgr"
	"github.com/stretchr/testify/require"

	"github.com/tapedrive-io/tape/internal/core/primitives"
	"github.com/tapedrive-io/tape/internal/core/runtime"
	"github.com/tapedrive-io/tape/internal/core/store"
	"github.com/tapedrive-io/tape/internal/core/treasury"
	"github.com/tapedrive-io/tape/internal/core/treasury/treasuryimpl"
)

func newService(t *testing.T) (*treasuryimpl.Service, *store.Store, treasury.TokenLedger) {
	t.Helper()
	logger := lgr.New(lgr.Msec, lgr.Debug)
	st, err := store.New(logger, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	clock := runtime.NewSystemClock(func() int64 { return 500 })
	slots := runtime.NewFixedSlotHashes(primitives.Keccak([]byte("genesis")))
	ledger := treasury.NewMemoryLedger()
	return treasuryimpl.New(st, clock, slots, ledger, logger), st, ledger
}

func TestTreasury_Initialize_SeedsSingletonsAndMintsSupply(t *testing.T) {
	ctx := context.Background()
	svc, st, ledger := newService(t)

	require.NoError(t, svc.Initialize(ctx))

	archive, err := st.GetArchive()
	require.NoError(t, err)
	require.Zero(t, archive.TapesStored)

	epoch, err := st.GetEpoch()
	require.NoError(t, err)
	require.EqualValues(t, 1, epoch.Number)
	require.EqualValues(t, primitives.MinDifficulty, epoch.TargetDifficulty)
	require.EqualValues(t, primitives.MinParticipationTarget, epoch.TargetParticipation)
	require.Greater(t, epoch.RewardRate, uint64(0))

	block, err := st.GetBlock()
	require.NoError(t, err)
	require.EqualValues(t, 1, block.Number)
	require.True(t, block.ChallengeSet)

	_, err = st.GetTreasury()
	require.NoError(t, err)

	bal, err := ledger.BalanceOf(ctx, store.TreasuryAddress())
	require.NoError(t, err)
	require.EqualValues(t, primitives.MaxSupply, bal)
}

func TestTreasury_Initialize_RejectsSecondCall(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	require.NoError(t, svc.Initialize(ctx))
	err := svc.Initialize(ctx)
	require.ErrorIs(t, err, treasury.ErrAlreadyInitialized)
}

func TestMemoryLedger_TransferRejectsInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	ledger := treasury.NewMemoryLedger()
	src := primitives.Keccak([]byte("src"))
	dst := primitives.Keccak([]byte("dst"))

	err := ledger.Transfer(ctx, src, dst, 1)
	require.ErrorIs(t, err, treasury.ErrInsufficientFunds)

	require.NoError(t, ledger.MintTo(ctx, src, 100))
	require.NoError(t, ledger.Transfer(ctx, src, dst, 40))

	srcBal, err := ledger.BalanceOf(ctx, src)
	require.NoError(t, err)
	require.EqualValues(t, 60, srcBal)

	dstBal, err := ledger.BalanceOf(ctx, dst)
	require.NoError(t, err)
	require.EqualValues(t, 40, dstBal)
}
