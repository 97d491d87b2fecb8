// Package treasury holds the Treasury's sentinel errors and the
// external fungible-token module spec.md
// §9 describes ("Mint/Transfer/ATA operations are delegated to an
// external fungible-token module with a conventional interface").
package treasury

import (
	"context"
	"errors"

	"github.com/tapedrive-io/tape/internal/core/primitives"
)

// ErrInsufficientFunds is returned by Transfer when the source balance
// cannot cover the requested amount.
var ErrInsufficientFunds = errors.New("treasury: insufficient funds")

// TokenLedger is the external fungible-token module contract from
// spec.md §9: mint_to(mint, dest, authority, amount) and
// transfer(source, dest, authority, amount), both signed by a
// deterministic authority. "implementers may substitute any equivalent
// module" — this core only depends on the interface.
type TokenLedger interface {
	MintTo(ctx context.Context, dest primitives.Hash, amount uint64) error
	Transfer(ctx context.Context, source, dest primitives.Hash, amount uint64) error
	BalanceOf(ctx context.Context, account primitives.Hash) (uint64, error)
}

// MemoryLedger is the in-repo reference TokenLedger, backed by a plain
// map guarded by the caller's own external synchronization (treasuryimpl's
// Initialize and miningimpl's Claim both call it while holding the
// Treasury record lock, so no internal locking is required here — mirroring how
// nazandr-cp-epoch-server's in-memory storage.Client relies on its
// caller-held sync.RWMutex rather than locking per field).
type MemoryLedger struct {
	balances map[primitives.Hash]uint64
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[primitives.Hash]uint64)}
}

func (l *MemoryLedger) MintTo(ctx context.Context, dest primitives.Hash, amount uint64) error {
	l.balances[dest] = primitives.SatAddU64(l.balances[dest], amount)
	return nil
}

func (l *MemoryLedger) Transfer(ctx context.Context, source, dest primitives.Hash, amount uint64) error {
	if l.balances[source] < amount {
		return ErrInsufficientFunds
	}
	l.balances[source] -= amount
	l.balances[dest] = primitives.SatAddU64(l.balances[dest], amount)
	return nil
}

func (l *MemoryLedger) BalanceOf(ctx context.Context, account primitives.Hash) (uint64, error) {
	return l.balances[account], nil
}
