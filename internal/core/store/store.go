// Package store is the badger-backed persistence and address-derivation
// layer for every core record kind, the Go-native adapter behind the
// "generic account-based blockchain runtime" spec.md §1 treats as an
// external service.
//
// Grounded on nazandr-cp-epoch-server/internal/infra/storage/badger_client.go
// (BadgerClient, key-building convention, badgerLogger adapter) and
// internal/services/epoch/epochimpl/store.go (the Store-per-service
// pattern). Keys here are "<kind>:<hex address>", built by hexKey.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-pkgz/lgr"

	"github.com/tapedrive-io/tape/internal/core/merkle"
	"github.com/tapedrive-io/tape/internal/core/primitives"
	"github.com/tapedrive-io/tape/internal/core/state"
)

// ErrNotFound mirrors badger.ErrKeyNotFound at the store's public
// boundary so callers never need to import badger directly, the same
// insulation the teacher's Store wrappers provide over badger.ErrKeyNotFound.
var ErrNotFound = errors.New("store: record not found")

// ErrAlreadyExists is returned by Init-style puts that must not
// overwrite an existing record (spec.md §9: "gate Initialize on
// 'record must not already exist'").
var ErrAlreadyExists = errors.New("store: record already exists")

// Derived address helpers. Solana's ed25519 program-derived addresses
// (original_source/api/src/pda.rs) have no Go equivalent outside a
// literal blockchain runtime; here they are reinterpreted as plain
// deterministic keccak256 derivations used as Badger keys, since
// spec.md §1 explicitly puts "account allocation" behind a fixed
// external contract and only requires the derivation be "deterministic
// ... and collision resistant" (§3).

func ArchiveAddress() primitives.Hash  { return primitives.Keccak(primitives.TagArchive) }
func EpochAddress() primitives.Hash    { return primitives.Keccak(primitives.TagEpoch) }
func BlockAddress() primitives.Hash    { return primitives.Keccak(primitives.TagBlock) }
func TreasuryAddress() primitives.Hash { return primitives.Keccak(primitives.TagTreasury) }

func TapeAddress(authority primitives.Hash, name [primitives.NameLen]byte) primitives.Hash {
	return primitives.Keccak(primitives.TagTape, authority[:], name[:])
}

func WriterAddress(tape primitives.Hash) primitives.Hash {
	return primitives.Keccak(primitives.TagWriter, tape[:])
}

func MinerAddress(authority primitives.Hash, name [primitives.NameLen]byte) primitives.Hash {
	return primitives.Keccak(primitives.TagMiner, authority[:], name[:])
}

func hexKey(prefix string, addr primitives.Hash) []byte {
	return []byte(fmt.Sprintf("%s:%x", prefix, addr[:]))
}

// Store is the single badger-backed persistence handle for all record
// kinds, mirroring nazandr-cp-epoch-server's BadgerClient but
// generalized to TAPEDRIVE's record set instead of epoch snapshots.
type Store struct {
	db     *badger.DB
	logger lgr.L

	locks Locker

	mu      sync.Mutex
	writers map[primitives.Hash]*merkle.Tree
}

// New opens (or creates) a badger database at dbPath.
func New(logger lgr.L, dbPath string) (*Store, error) {
	opts := badger.DefaultOptions(dbPath).WithLogger(&badgerLogger{logger: logger})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: failed to open badger db: %w", err)
	}
	return &Store{
		db:      db,
		logger:  logger,
		writers: make(map[primitives.Hash]*merkle.Tree),
	}, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Locks exposes the store's per-record lock table so core operations
// can serialize conflicting writes the way spec.md §5 requires the
// runtime to.
func (s *Store) Locks() *Locker { return &s.locks }

func (s *Store) get(key []byte) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = append([]byte(nil), val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get failed: %w", err)
	}
	return out, nil
}

func (s *Store) put(key, val []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
	if err != nil {
		return fmt.Errorf("store: put failed: %w", err)
	}
	return nil
}

func (s *Store) putIfAbsent(key, val []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return ErrAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, val)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("store: put-if-absent failed: %w", err)
	}
	return nil
}

func (s *Store) delete(key []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("store: delete failed: %w", err)
	}
	return nil
}

// -- Archive --

func (s *Store) InitArchive(a *state.Archive) error {
	return s.putIfAbsent(hexKey("archive", ArchiveAddress()), a.Marshal())
}

func (s *Store) GetArchive() (*state.Archive, error) {
	buf, err := s.get(hexKey("archive", ArchiveAddress()))
	if err != nil {
		return nil, err
	}
	return state.UnmarshalArchive(buf)
}

func (s *Store) PutArchive(a *state.Archive) error {
	return s.put(hexKey("archive", ArchiveAddress()), a.Marshal())
}

// -- Epoch --

func (s *Store) InitEpoch(e *state.Epoch) error {
	return s.putIfAbsent(hexKey("epoch", EpochAddress()), e.Marshal())
}

func (s *Store) GetEpoch() (*state.Epoch, error) {
	buf, err := s.get(hexKey("epoch", EpochAddress()))
	if err != nil {
		return nil, err
	}
	return state.UnmarshalEpoch(buf)
}

func (s *Store) PutEpoch(e *state.Epoch) error {
	return s.put(hexKey("epoch", EpochAddress()), e.Marshal())
}

// -- Block --

func (s *Store) InitBlock(b *state.Block) error {
	return s.putIfAbsent(hexKey("block", BlockAddress()), b.Marshal())
}

func (s *Store) GetBlock() (*state.Block, error) {
	buf, err := s.get(hexKey("block", BlockAddress()))
	if err != nil {
		return nil, err
	}
	return state.UnmarshalBlock(buf)
}

func (s *Store) PutBlock(b *state.Block) error {
	return s.put(hexKey("block", BlockAddress()), b.Marshal())
}

// -- Treasury --

func (s *Store) InitTreasury() error {
	return s.putIfAbsent(hexKey("treasury", TreasuryAddress()), (&state.Treasury{}).Marshal())
}

func (s *Store) GetTreasury() (*state.Treasury, error) {
	buf, err := s.get(hexKey("treasury", TreasuryAddress()))
	if err != nil {
		return nil, err
	}
	return state.UnmarshalTreasury(buf)
}

// -- Tape --

func (s *Store) InitTape(addr primitives.Hash, t *state.Tape) error {
	return s.putIfAbsent(hexKey("tape", addr), t.Marshal())
}

func (s *Store) GetTape(addr primitives.Hash) (*state.Tape, error) {
	buf, err := s.get(hexKey("tape", addr))
	if err != nil {
		return nil, err
	}
	return state.UnmarshalTape(buf)
}

func (s *Store) PutTape(addr primitives.Hash, t *state.Tape) error {
	return s.put(hexKey("tape", addr), t.Marshal())
}

// GetTapeByNumber scans for the finalized tape with the given number.
// It walks every "tape:" key; no secondary number→address index is
// kept. Mine does not call it: Mine reads the tape at the address the
// caller submits and checks its number against the recall tape number.
func (s *Store) GetTapeByNumber(number uint64) (primitives.Hash, *state.Tape, error) {
	var foundAddr primitives.Hash
	var found *state.Tape
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("tape:")
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			var tp *state.Tape
			err := item.Value(func(val []byte) error {
				t, uerr := state.UnmarshalTape(val)
				if uerr != nil {
					return nil // skip corrupt/foreign entries
				}
				tp = t
				return nil
			})
			if err != nil {
				return err
			}
			if tp != nil && tp.Number == number {
				key := item.KeyCopy(nil)
				var raw []byte
				// key is "tape:<hex>"
				if _, derr := fmt.Sscanf(string(key), "tape:%x", &raw); derr == nil && len(raw) == len(foundAddr) {
					copy(foundAddr[:], raw)
					found = tp
					return nil
				}
			}
		}
		return nil
	})
	if err != nil {
		return primitives.Hash{}, nil, fmt.Errorf("store: scan failed: %w", err)
	}
	if found == nil {
		return primitives.Hash{}, nil, ErrNotFound
	}
	return foundAddr, found, nil
}

// -- Writer (resident Merkle tree, not persisted verbatim) --

// OpenWriter returns the live tree for a tape's Writer record, creating
// a fresh empty tree keyed by seed if none is resident yet. This models
// "Writer exclusively owns the mutable Merkle tree during the
// Created/Writing lifetime" (spec.md §3) without the cost of
// re-marshaling every leaf on every Write.
func (s *Store) OpenWriter(tape primitives.Hash, seed primitives.Hash) *merkle.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.writers[tape]; ok {
		return t
	}
	t := merkle.New(seed)
	s.writers[tape] = t
	return t
}

// CloseWriter destroys the resident Writer tree, returning its final
// root. Called by Finalize.
func (s *Store) CloseWriter(tape primitives.Hash) (primitives.Hash, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.writers[tape]
	if !ok {
		return primitives.Hash{}, false
	}
	root := t.Root()
	delete(s.writers, tape)
	return root, true
}

// -- Miner --

func (s *Store) InitMiner(addr primitives.Hash, m *state.Miner) error {
	return s.putIfAbsent(hexKey("miner", addr), m.Marshal())
}

func (s *Store) GetMiner(addr primitives.Hash) (*state.Miner, error) {
	buf, err := s.get(hexKey("miner", addr))
	if err != nil {
		return nil, err
	}
	return state.UnmarshalMiner(buf)
}

func (s *Store) PutMiner(addr primitives.Hash, m *state.Miner) error {
	return s.put(hexKey("miner", addr), m.Marshal())
}

func (s *Store) DeleteMiner(addr primitives.Hash) error {
	return s.delete(hexKey("miner", addr))
}

// badgerLogger adapts lgr.L to badger's Logger interface, copied from
// nazandr-cp-epoch-server/internal/infra/storage/badger_client.go.
type badgerLogger struct {
	logger lgr.L
}

func (b *badgerLogger) Errorf(format string, args ...interface{}) {
	b.logger.Logf("ERROR "+format, args...)
}

func (b *badgerLogger) Warningf(format string, args ...interface{}) {
	b.logger.Logf("WARN "+format, args...)
}

func (b *badgerLogger) Infof(format string, args ...interface{}) {
	b.logger.Logf("INFO "+format, args...)
}

func (b *badgerLogger) Debugf(format string, args ...interface{}) {
	b.logger.Logf("DEBUG "+format, args...)
}
