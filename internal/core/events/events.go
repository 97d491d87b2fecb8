// Package events defines the runtime log-stream event payloads from
// spec.md §6.2, plus a Sink abstraction so Tape operations can emit
// domain events without depending on a concrete log stream — the same
// decoupling the teacher gets by injecting an lgr.L logger rather than
// writing to os.Stdout directly.
package events

import (
	"encoding/binary"

	"github.com/go-pkgz/lgr"

	"github.com/tapedrive-io/tape/internal/core/primitives"
)

// Kind is the 8-byte event discriminator.
type Kind uint64

const (
	KindWrite Kind = iota + 1
	KindUpdate
	KindFinalize
)

// Write is emitted at the end of a successful Write operation.
type Write struct {
	NumAdded uint64
	NumTotal uint64
	Address  primitives.Hash
}

// Update is emitted at the end of a successful Update operation.
type Update struct {
	SegmentNumber uint64
	OldSlot       uint64
	Address       primitives.Hash
}

// Finalize is emitted at the end of a successful Finalize operation.
type Finalize struct {
	TapeNumber uint64
	Address    primitives.Hash
}

// Event is any of Write, Update, Finalize.
type Event interface {
	kind() Kind
	Marshal() []byte
}

func (Write) kind() Kind    { return KindWrite }
func (Update) kind() Kind   { return KindUpdate }
func (Finalize) kind() Kind { return KindFinalize }

func withDiscriminator(k Kind, fields []byte) []byte {
	buf := make([]byte, 8+len(fields))
	binary.LittleEndian.PutUint64(buf, uint64(k))
	copy(buf[8:], fields)
	return buf
}

func (w Write) Marshal() []byte {
	fields := make([]byte, 8+8+32)
	binary.LittleEndian.PutUint64(fields[0:], w.NumAdded)
	binary.LittleEndian.PutUint64(fields[8:], w.NumTotal)
	copy(fields[16:], w.Address[:])
	return withDiscriminator(KindWrite, fields)
}

func (u Update) Marshal() []byte {
	fields := make([]byte, 8+8+32)
	binary.LittleEndian.PutUint64(fields[0:], u.SegmentNumber)
	binary.LittleEndian.PutUint64(fields[8:], u.OldSlot)
	copy(fields[16:], u.Address[:])
	return withDiscriminator(KindUpdate, fields)
}

func (f Finalize) Marshal() []byte {
	fields := make([]byte, 8+32)
	binary.LittleEndian.PutUint64(fields[0:], f.TapeNumber)
	copy(fields[8:], f.Address[:])
	return withDiscriminator(KindFinalize, fields)
}

// Sink receives emitted events. The reference implementation logs them
// as structured INFO lines through lgr.L, the same convention the
// teacher uses for domain-significant log lines (epochimpl.Store's
// "saved epoch %s for vault %s" style).
type Sink interface {
	Log(Event)
}

// LogSink is the reference Sink implementation.
type LogSink struct {
	Logger lgr.L
}

func (s LogSink) Log(e Event) {
	switch ev := e.(type) {
	case Write:
		s.Logger.Logf("INFO event=write num_added=%d num_total=%d address=%x", ev.NumAdded, ev.NumTotal, ev.Address)
	case Update:
		s.Logger.Logf("INFO event=update segment=%d old_slot=%d address=%x", ev.SegmentNumber, ev.OldSlot, ev.Address)
	case Finalize:
		s.Logger.Logf("INFO event=finalize tape_number=%d address=%x", ev.TapeNumber, ev.Address)
	}
}
