package handlers

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-pkgz/lgr"

	"github.com/tapedrive-io/tape/internal/core/mining"
	"github.com/tapedrive-io/tape/internal/core/primitives"
	"github.com/tapedrive-io/tape/internal/core/store"
)

// MiningHandler exposes mining.Service's Register/Mine/Claim/Close as
// JSON endpoints, following the same thin-wrapper-over-a-core-interface
// shape as TapeHandler.
type MiningHandler struct {
	svc    mining.Service
	store  *store.Store
	logger lgr.L
}

func NewMiningHandler(svc mining.Service, st *store.Store, logger lgr.L) *MiningHandler {
	return &MiningHandler{svc: svc, store: st, logger: logger}
}

type registerMinerRequest struct {
	Authority string `json:"authority"`
	Name      string `json:"name"`
}

// HandleRegister
// @Summary Register a miner
// @Router /api/miners [post]
func (h *MiningHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerMinerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err, "invalid request body")
		return
	}
	authority, err := decodeHash(req.Authority)
	if err != nil {
		writeError(w, err, "")
		return
	}
	result, err := h.svc.Register(r.Context(), authority, decodeName(req.Name))
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"miner_address": hex.EncodeToString(result.MinerAddress[:]),
	})
}

type mineRequest struct {
	MinerAuthority string   `json:"miner_authority"`
	TapeAddress    string   `json:"tape_address"`
	DigestHex      string   `json:"digest_hex"`
	NonceHex       string   `json:"nonce_hex"`
	RecallDataHex  string   `json:"recall_data_hex"`
	RecallProofHex []string `json:"recall_proof_hex"`
}

// HandleMine
// @Summary Submit a proof-of-storage solution
// @Router /api/miners/{address}/mine [post]
func (h *MiningHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	minerAddr, err := decodeHash(r.PathValue("address"))
	if err != nil {
		writeError(w, err, "")
		return
	}
	var req mineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err, "invalid request body")
		return
	}
	minerAuthority, err := decodeHash(req.MinerAuthority)
	if err != nil {
		writeError(w, err, "")
		return
	}
	tapeAddr, err := decodeHash(req.TapeAddress)
	if err != nil {
		writeError(w, err, "")
		return
	}
	if len(req.RecallProofHex) != primitives.ProofLen {
		writeError(w, fmt.Errorf("recall_proof_hex must have exactly %d entries", primitives.ProofLen), "")
		return
	}

	in := mining.MineInput{
		MinerAuthority: minerAuthority,
		MinerAddress:   minerAddr,
		TapeAddress:    tapeAddr,
	}
	if b, derr := hex.DecodeString(req.DigestHex); derr == nil {
		copy(in.Digest[:], b)
	}
	if b, derr := hex.DecodeString(req.NonceHex); derr == nil {
		copy(in.Nonce[:], b)
	}
	if b, derr := hex.DecodeString(req.RecallDataHex); derr == nil {
		copy(in.RecallSegment[:], b)
	}
	for i, p := range req.RecallProofHex {
		ph, derr := decodeHash(p)
		if derr != nil {
			writeError(w, derr, "")
			return
		}
		in.RecallProof[i] = ph
	}

	result, err := h.svc.Mine(r.Context(), in)
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"final_reward":     result.FinalReward,
		"new_multiplier":   result.NewMultiplier,
		"block_advanced":   result.BlockAdvanced,
		"epoch_advanced":   result.EpochAdvanced,
		"new_block_number": result.NewBlockNumber,
		"new_epoch_number": result.NewEpochNumber,
	})
}

type claimRequest struct {
	Authority   string `json:"authority"`
	Beneficiary string `json:"beneficiary"`
	Amount      uint64 `json:"amount"`
}

// HandleClaim
// @Summary Claim unclaimed mining rewards
// @Router /api/miners/{address}/claim [post]
func (h *MiningHandler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	minerAddr, err := decodeHash(r.PathValue("address"))
	if err != nil {
		writeError(w, err, "")
		return
	}
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err, "invalid request body")
		return
	}
	authority, err := decodeHash(req.Authority)
	if err != nil {
		writeError(w, err, "")
		return
	}
	beneficiary, err := decodeHash(req.Beneficiary)
	if err != nil {
		writeError(w, err, "")
		return
	}
	remaining, err := h.svc.Claim(r.Context(), authority, minerAddr, beneficiary, req.Amount)
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"unclaimed_reward": remaining})
}

type closeMinerRequest struct {
	Authority string `json:"authority"`
}

// HandleClose
// @Summary Close an empty miner account
// @Router /api/miners/{address} [delete]
func (h *MiningHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	minerAddr, err := decodeHash(r.PathValue("address"))
	if err != nil {
		writeError(w, err, "")
		return
	}
	var req closeMinerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err, "invalid request body")
		return
	}
	authority, err := decodeHash(req.Authority)
	if err != nil {
		writeError(w, err, "")
		return
	}
	if err := h.svc.Close(r.Context(), authority, minerAddr); err != nil {
		writeError(w, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGet returns the current persisted snapshot of a miner.
// @Summary Get a miner snapshot
// @Router /api/miners/{address} [get]
func (h *MiningHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	addr, err := decodeHash(r.PathValue("address"))
	if err != nil {
		writeError(w, err, "")
		return
	}
	m, err := h.store.GetMiner(addr)
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authority":        hex.EncodeToString(m.Authority[:]),
		"unclaimed_reward": m.UnclaimedReward,
		"multiplier":       m.Multiplier,
		"last_proof_block": m.LastProofBlock,
		"total_proofs":     m.TotalProofs,
		"total_rewards":    m.TotalRewards,
	})
}
