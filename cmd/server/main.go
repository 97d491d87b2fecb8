// @title TAPEDRIVE API
// @version 1.0
// @description HTTP facade over the TAPEDRIVE proof-of-storage core: tape lifecycle, mining, and treasury operations
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:8080
// @BasePath /
// @schemes http https
// @accept json
// @produce json
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/tapedrive-io/tape/internal/api"
	"github.com/tapedrive-io/tape/internal/config"
	"github.com/tapedrive-io/tape/internal/core/events"
	"github.com/tapedrive-io/tape/internal/core/mining/miningimpl"
	"github.com/tapedrive-io/tape/internal/core/primitives"
	"github.com/tapedrive-io/tape/internal/core/runtime"
	"github.com/tapedrive-io/tape/internal/core/store"
	"github.com/tapedrive-io/tape/internal/core/tape/tapeimpl"
	"github.com/tapedrive-io/tape/internal/core/treasury"
	"github.com/tapedrive-io/tape/internal/core/treasury/treasuryimpl"
	"github.com/tapedrive-io/tape/internal/logging"
)

func main() {
	configPath := "config.yaml"
	if v := os.Getenv("TAPEDRIVE_CONFIG"); v != "" {
		configPath = v
	}

	cfg, err := config.Load(configPath)
	if err != nil && os.IsNotExist(unwrapPathError(err)) {
		def := config.Default()
		cfg = &def
		err = nil
	}
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.Logging)

	st, err := store.New(logger, cfg.Store.DataDir)
	if err != nil {
		log.Fatalf("failed to open store at %s: %v", cfg.Store.DataDir, err)
	}
	defer st.Close()

	clock := runtime.NewSystemClock(func() int64 { return time.Now().Unix() })
	slotHashes := runtime.NewFixedSlotHashes(primitives.Keccak([]byte("tapedrive genesis")))
	ledger := treasury.NewMemoryLedger()
	sink := events.LogSink{Logger: logger}
	powVerifier := selectPowVerifier(cfg.Mining.PowVerifier)

	treasurySvc := treasuryimpl.New(st, clock, slotHashes, ledger, logger)
	tapeSvc := tapeimpl.New(st, clock, slotHashes, sink, logger)
	miningSvc := miningimpl.New(st, clock, slotHashes, powVerifier, ledger, logger)

	ctx := context.Background()
	if err := treasurySvc.Initialize(ctx); err != nil && !errors.Is(err, treasury.ErrAlreadyInitialized) {
		log.Fatalf("failed to initialize treasury: %v", err)
	}

	server := api.NewServer(tapeSvc, miningSvc, treasurySvc, st, logger, cfg)
	if err := server.Start(); err != nil {
		logger.Logf("ERROR server failed to start: %v", err)
	}
}

func selectPowVerifier(name string) primitives.PowVerifier {
	switch name {
	case "", "keccak":
		return primitives.KeccakPowVerifier{}
	default:
		log.Printf("unknown pow_verifier %q, falling back to keccak", name)
		return primitives.KeccakPowVerifier{}
	}
}

func unwrapPathError(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}
	return err
}
