package handlers

import (
	"encoding/hex"
	"net/http"

	"github.com/go-pkgz/lgr"

	"github.com/tapedrive-io/tape/internal/core/store"
	"github.com/tapedrive-io/tape/internal/core/wire"
)

// TreasuryHandler exposes the one-shot Initialize operation plus a
// read-only snapshot of the Archive, Epoch and Block singletons seeded
// by it.
type TreasuryHandler struct {
	svc    wire.Treasury
	store  *store.Store
	logger lgr.L
}

func NewTreasuryHandler(svc wire.Treasury, st *store.Store, logger lgr.L) *TreasuryHandler {
	return &TreasuryHandler{svc: svc, store: st, logger: logger}
}

// HandleInitialize
// @Summary Initialize the Archive/Epoch/Block/Treasury singletons and mint the total supply
// @Router /api/treasury/initialize [post]
func (h *TreasuryHandler) HandleInitialize(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Initialize(r.Context()); err != nil {
		writeError(w, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetSnapshot
// @Summary Get the Archive/Epoch/Block singleton snapshot
// @Router /api/treasury [get]
func (h *TreasuryHandler) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	archive, err := h.store.GetArchive()
	if err != nil {
		writeError(w, err, "")
		return
	}
	epoch, err := h.store.GetEpoch()
	if err != nil {
		writeError(w, err, "")
		return
	}
	block, err := h.store.GetBlock()
	if err != nil {
		writeError(w, err, "")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"archive": map[string]any{
			"tapes_stored": archive.TapesStored,
			"bytes_stored": archive.BytesStored,
		},
		"epoch": map[string]any{
			"number":               epoch.Number,
			"progress":             epoch.Progress,
			"target_difficulty":    epoch.TargetDifficulty,
			"target_participation": epoch.TargetParticipation,
			"reward_rate":          epoch.RewardRate,
			"duplicates":           epoch.Duplicates,
		},
		"block": map[string]any{
			"number":    block.Number,
			"progress":  block.Progress,
			"challenge": hex.EncodeToString(block.Challenge[:]),
		},
	})
}
