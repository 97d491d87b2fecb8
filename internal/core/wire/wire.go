// Package wire implements the single-byte instruction dispatcher from
// spec.md §6.1: a discriminator byte followed by packed little-endian
// argument bytes, decoded here and routed to the core services that
// actually perform the operation. Grounded on the teacher's
// one-handler-per-route HTTP style (cmd/server/main.go's route table),
// generalized from an HTTP method+path pair to a single opcode byte
// since this core has no HTTP framework backing the instruction layer
// itself — that only exists one level up, in internal/api.
package wire

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/tapedrive-io/tape/internal/core/mining"
	"github.com/tapedrive-io/tape/internal/core/primitives"
	"github.com/tapedrive-io/tape/internal/core/tape"
)

// Opcode is the instruction's leading discriminator byte.
type Opcode byte

const (
	OpInitialize Opcode = 1
	OpAdvance    Opcode = 2
	OpCreate     Opcode = 3
	OpWrite      Opcode = 4
	OpUpdate     Opcode = 5
	OpFinalize   Opcode = 6
	OpRegister   Opcode = 7
	OpClose      Opcode = 8
	OpMine       Opcode = 9
	OpClaim      Opcode = 10
)

// ErrShortPayload is returned when a payload is too short for its
// opcode's fixed layout.
type ErrShortPayload struct {
	Opcode Opcode
	Want   int
	Got    int
}

func (e *ErrShortPayload) Error() string {
	return fmt.Sprintf("wire: opcode %d needs at least %d bytes, got %d", e.Opcode, e.Want, e.Got)
}

// ErrUnknownOpcode is returned by Dispatch for a byte outside 1..10.
type ErrUnknownOpcode struct{ Opcode byte }

func (e *ErrUnknownOpcode) Error() string { return fmt.Sprintf("wire: unknown opcode %d", e.Opcode) }

// ErrNotAStandaloneOperation is returned for OpAdvance: the wire format
// reserves discriminator 2, but this core performs block/epoch advance
// as a side effect of Mine (spec.md §4.5), not as a separately
// submitted instruction.
var ErrNotAStandaloneOperation = fmt.Errorf("wire: advance has no standalone handler; it runs inside mine")

// Treasury is the narrow slice of treasuryimpl.Service Dispatch needs
// for OpInitialize.
type Treasury interface {
	Initialize(ctx context.Context) error
}

// OperationCtx bundles the caller-supplied context that the wire
// payload alone does not carry — the equivalent of an instruction's
// account list in a real runtime: which records it touches and who
// signed.
type OperationCtx struct {
	Context context.Context

	Authority    primitives.Hash
	TapeAddress  primitives.Hash
	MinerAddress primitives.Hash
	Beneficiary  primitives.Hash

	Tape     tape.Service
	Mining   mining.Service
	Treasury Treasury
}

// Dispatch decodes payload according to opcode and invokes the
// matching service call on ctx. It returns the service's typed result
// as `any` (callers that need the concrete type can type-assert) or an
// error. The HTTP façade in internal/api does not go through Dispatch;
// its handlers call the services directly.
func Dispatch(opcode byte, payload []byte, ctx OperationCtx) (any, error) {
	switch Opcode(opcode) {
	case OpInitialize:
		return nil, ctx.Treasury.Initialize(ctx.Context)
	case OpAdvance:
		return nil, ErrNotAStandaloneOperation
	case OpCreate:
		name, header, err := DecodeCreate(payload)
		if err != nil {
			return nil, err
		}
		return ctx.Tape.Create(ctx.Context, ctx.Authority, name, header)
	case OpWrite:
		return ctx.Tape.Write(ctx.Context, ctx.Authority, ctx.TapeAddress, payload)
	case OpUpdate:
		segmentNumber, oldData, newData, proof, err := DecodeUpdate(payload)
		if err != nil {
			return nil, err
		}
		return ctx.Tape.Update(ctx.Context, ctx.Authority, ctx.TapeAddress, segmentNumber, oldData, newData, proof)
	case OpFinalize:
		tail, err := DecodeFinalize(payload)
		if err != nil {
			return nil, err
		}
		return ctx.Tape.Finalize(ctx.Context, ctx.Authority, ctx.TapeAddress, tail)
	case OpRegister:
		name, err := DecodeRegister(payload)
		if err != nil {
			return nil, err
		}
		return ctx.Mining.Register(ctx.Context, ctx.Authority, name)
	case OpClose:
		return nil, ctx.Mining.Close(ctx.Context, ctx.Authority, ctx.MinerAddress)
	case OpMine:
		in, err := DecodeMine(payload)
		if err != nil {
			return nil, err
		}
		in.MinerAuthority = ctx.Authority
		in.MinerAddress = ctx.MinerAddress
		in.TapeAddress = ctx.TapeAddress
		return ctx.Mining.Mine(ctx.Context, in)
	case OpClaim:
		amount, err := DecodeClaim(payload)
		if err != nil {
			return nil, err
		}
		return ctx.Mining.Claim(ctx.Context, ctx.Authority, ctx.MinerAddress, ctx.Beneficiary, amount)
	default:
		return nil, &ErrUnknownOpcode{Opcode: opcode}
	}
}

func need(op Opcode, payload []byte, n int) error {
	if len(payload) < n {
		return &ErrShortPayload{Opcode: op, Want: n, Got: len(payload)}
	}
	return nil
}

// DecodeCreate decodes the Create payload: name[32], header[128].
func DecodeCreate(payload []byte) (name [primitives.NameLen]byte, header [primitives.HeaderSize]byte, err error) {
	if err = need(OpCreate, payload, primitives.NameLen+primitives.HeaderSize); err != nil {
		return
	}
	copy(name[:], payload[:primitives.NameLen])
	copy(header[:], payload[primitives.NameLen:primitives.NameLen+primitives.HeaderSize])
	return
}

// DecodeUpdate decodes the Update payload: segment_number u64,
// old_data[128], new_data[128], proof[18][32].
func DecodeUpdate(payload []byte) (segmentNumber uint64, oldData, newData [primitives.SegmentSize]byte, proof [primitives.ProofLen]primitives.Hash, err error) {
	const fixed = 8 + primitives.SegmentSize*2 + primitives.ProofLen*32
	if err = need(OpUpdate, payload, fixed); err != nil {
		return
	}
	off := 0
	segmentNumber = binary.LittleEndian.Uint64(payload[off:])
	off += 8
	copy(oldData[:], payload[off:off+primitives.SegmentSize])
	off += primitives.SegmentSize
	copy(newData[:], payload[off:off+primitives.SegmentSize])
	off += primitives.SegmentSize
	for i := 0; i < primitives.ProofLen; i++ {
		copy(proof[i][:], payload[off:off+32])
		off += 32
	}
	return
}

// DecodeFinalize decodes the Finalize payload: tail[64].
func DecodeFinalize(payload []byte) (tail [primitives.TailSize]byte, err error) {
	if err = need(OpFinalize, payload, primitives.TailSize); err != nil {
		return
	}
	copy(tail[:], payload[:primitives.TailSize])
	return
}

// DecodeRegister decodes the Register payload: name[32].
func DecodeRegister(payload []byte) (name [primitives.NameLen]byte, err error) {
	if err = need(OpRegister, payload, primitives.NameLen); err != nil {
		return
	}
	copy(name[:], payload[:primitives.NameLen])
	return
}

// DecodeMine decodes the Mine payload: digest[16], nonce[8],
// recall_segment[128], recall_proof[18][32]. MinerAuthority,
// MinerAddress and TapeAddress are not part of the wire payload; the
// caller (Dispatch, or a direct caller of DecodeMine) fills them in
// from the surrounding OperationCtx.
func DecodeMine(payload []byte) (in mining.MineInput, err error) {
	const fixed = 16 + 8 + primitives.SegmentSize + primitives.ProofLen*32
	if err = need(OpMine, payload, fixed); err != nil {
		return
	}
	off := 0
	copy(in.Digest[:], payload[off:off+16])
	off += 16
	copy(in.Nonce[:], payload[off:off+8])
	off += 8
	copy(in.RecallSegment[:], payload[off:off+primitives.SegmentSize])
	off += primitives.SegmentSize
	for i := 0; i < primitives.ProofLen; i++ {
		copy(in.RecallProof[i][:], payload[off:off+32])
		off += 32
	}
	return
}

// DecodeClaim decodes the Claim payload: amount u64.
func DecodeClaim(payload []byte) (amount uint64, err error) {
	if err = need(OpClaim, payload, 8); err != nil {
		return
	}
	return binary.LittleEndian.Uint64(payload[:8]), nil
}
