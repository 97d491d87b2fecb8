// Package treasuryimpl implements the Initialize operation, allocating
// the Archive/Epoch/Block/Treasury singletons and minting MAX_SUPPLY to
// the treasury's token account — grounded on
// original_source/program/src/program/initialize.rs, with the
// Metaplex-metadata and raw SPL mint bootstrapping stripped since those
// are "blockchain runtime primitives" spec.md §1 puts out of scope; the
// token mint itself is delegated to treasury.TokenLedger.
package treasuryimpl

import (
	"context"
	"errors"

	"github.com/go-pkgz/lgr"

	"github.com/tapedrive-io/tape/internal/core/emissions"
	"github.com/tapedrive-io/tape/internal/core/primitives"
	"github.com/tapedrive-io/tape/internal/core/runtime"
	"github.com/tapedrive-io/tape/internal/core/state"
	"github.com/tapedrive-io/tape/internal/core/store"
	"github.com/tapedrive-io/tape/internal/core/treasury"
)

// Service implements the Initialize operation and exposes its
// configured TokenLedger.
type Service struct {
	store      *store.Store
	clock      runtime.Clock
	slotHashes runtime.SlotHashes
	ledger     treasury.TokenLedger
	logger     lgr.L
}

func New(st *store.Store, clock runtime.Clock, slotHashes runtime.SlotHashes, ledger treasury.TokenLedger, logger lgr.L) *Service {
	return &Service{store: st, clock: clock, slotHashes: slotHashes, ledger: ledger, logger: logger}
}

// Ledger exposes the configured TokenLedger. The mining service does
// not call it; it receives the same ledger through miningimpl.New.
func (s *Service) Ledger() treasury.TokenLedger { return s.ledger }

// Initialize allocates the process-wide singletons exactly once
// (spec.md §9: "gate Initialize on 'record must not already exist'")
// and mints the full MAX_SUPPLY to the Treasury's token account.
func (s *Service) Initialize(ctx context.Context) error {
	archiveAddr := store.ArchiveAddress()
	epochAddr := store.EpochAddress()
	blockAddr := store.BlockAddress()
	treasuryAddr := store.TreasuryAddress()

	unlock := store.LockAll(s.store.Locks(), archiveAddr, epochAddr, blockAddr, treasuryAddr)
	defer unlock()

	if err := s.store.InitArchive(&state.Archive{}); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return treasury.ErrAlreadyInitialized
		}
		return err
	}

	firstHash := s.slotHashes.FirstSlotHash()
	now := s.clock.Now()

	epoch := &state.Epoch{
		Number:              1,
		Progress:            0,
		TargetDifficulty:    primitives.MinDifficulty,
		TargetParticipation: primitives.MinParticipationTarget,
		RewardRate:          0, // computed below once the curves can be evaluated
		Duplicates:          0,
		LastEpochAt:         now,
	}
	epoch.RewardRate = emissions.RewardRate(0, epoch.Number)
	if err := s.store.InitEpoch(epoch); err != nil {
		return err
	}

	block := &state.Block{
		Number:       1,
		Progress:     0,
		Challenge:    primitives.NextChallenge(primitives.Hash{}, firstHash),
		ChallengeSet: true,
		LastProofAt:  0,
		LastBlockAt:  now,
	}
	if err := s.store.InitBlock(block); err != nil {
		return err
	}

	if err := s.store.InitTreasury(); err != nil {
		return err
	}

	if err := s.ledger.MintTo(ctx, treasuryAddr, primitives.MaxSupply); err != nil {
		return err
	}

	s.logger.Logf("INFO initialized core: epoch=%d difficulty=%d reward_rate=%d", epoch.Number, epoch.TargetDifficulty, epoch.RewardRate)
	return nil
}
