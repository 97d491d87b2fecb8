package events_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tapedrive-io/tape/internal/core/events"
	"github.com/tapedrive-io/tape/internal/core/primitives"
)

func TestWrite_MarshalLayout(t *testing.T) {
	addr := primitives.Keccak([]byte("addr"))
	w := events.Write{NumAdded: 3, NumTotal: 9, Address: addr}
	buf := w.Marshal()

	require.Len(t, buf, 8+8+8+32)
	require.EqualValues(t, events.KindWrite, binary.LittleEndian.Uint64(buf[0:8]))
	require.EqualValues(t, 3, binary.LittleEndian.Uint64(buf[8:16]))
	require.EqualValues(t, 9, binary.LittleEndian.Uint64(buf[16:24]))
	require.Equal(t, addr[:], buf[24:56])
}

func TestFinalize_MarshalLayout(t *testing.T) {
	addr := primitives.Keccak([]byte("tape"))
	f := events.Finalize{TapeNumber: 5, Address: addr}
	buf := f.Marshal()

	require.Len(t, buf, 8+8+32)
	require.EqualValues(t, events.KindFinalize, binary.LittleEndian.Uint64(buf[0:8]))
	require.EqualValues(t, 5, binary.LittleEndian.Uint64(buf[8:16]))
}
