package state_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tapedrive-io/tape/internal/core/state"
)

func TestArchive_MarshalRoundTrip(t *testing.T) {
	a := &state.Archive{TapesStored: 3, BytesStored: 1024}
	got, err := state.UnmarshalArchive(a.Marshal())
	require.NoError(t, err)
	require.Equal(t, a, got)
}

func TestArchive_RejectsWrongDiscriminator(t *testing.T) {
	e := &state.Epoch{Number: 1}
	_, err := state.UnmarshalArchive(e.Marshal())
	var badDisc *state.ErrBadDiscriminator
	require.ErrorAs(t, err, &badDisc)
}

func TestArchive_RejectsShortBuffer(t *testing.T) {
	_, err := state.UnmarshalArchive([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestEpoch_MarshalRoundTrip(t *testing.T) {
	e := &state.Epoch{
		Number:              5,
		Progress:            2,
		TargetDifficulty:    8,
		TargetParticipation: 3,
		RewardRate:          123456,
		Duplicates:          1,
		LastEpochAt:         999,
	}
	got, err := state.UnmarshalEpoch(e.Marshal())
	require.NoError(t, err)
	require.Equal(t, e, got)
}

func TestMiner_MarshalRoundTrip(t *testing.T) {
	m := &state.Miner{
		Authority:       [32]byte{1},
		UnclaimedReward: 10,
		Multiplier:      4,
		LastProofBlock:  7,
		TotalProofs:     2,
		TotalRewards:    20,
	}
	copy(m.Name[:], "miner-1")
	got, err := state.UnmarshalMiner(m.Marshal())
	require.NoError(t, err)
	require.Equal(t, m, got)
}

func TestTape_MarshalRoundTrip(t *testing.T) {
	tp := &state.Tape{
		Number:        1,
		State:         state.TapeFinalized,
		TotalSegments: 3,
		TotalSize:     300,
	}
	copy(tp.Name[:], "t1")
	got, err := state.UnmarshalTape(tp.Marshal())
	require.NoError(t, err)
	require.Equal(t, tp, got)
}

func TestTapeState_UnknownIsZeroValue(t *testing.T) {
	var s state.TapeState
	require.Equal(t, state.TapeUnknown, s)
	require.Equal(t, "Unknown", s.String())
}
