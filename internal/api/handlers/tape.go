package handlers

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-pkgz/lgr"

	"github.com/tapedrive-io/tape/internal/core/primitives"
	"github.com/tapedrive-io/tape/internal/core/store"
	"github.com/tapedrive-io/tape/internal/core/tape"
)

// TapeHandler exposes tape.Service's Create/Write/Update/Finalize as
// JSON POST endpoints, plus a read-only snapshot route backed directly
// by the store (the core has no separate "query service" — spec.md §1
// scopes indexing/querying to an external archive node).
type TapeHandler struct {
	svc    tape.Service
	store  *store.Store
	logger lgr.L
}

func NewTapeHandler(svc tape.Service, st *store.Store, logger lgr.L) *TapeHandler {
	return &TapeHandler{svc: svc, store: st, logger: logger}
}

func decodeHash(s string) (primitives.Hash, error) {
	var h primitives.Hash
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(h) {
		return h, fmt.Errorf("invalid 32-byte hex address %q", s)
	}
	copy(h[:], b)
	return h, nil
}

func decodeName(s string) [primitives.NameLen]byte {
	var n [primitives.NameLen]byte
	copy(n[:], s)
	return n
}

type createTapeRequest struct {
	Authority string `json:"authority"`
	Name      string `json:"name"`
	HeaderHex string `json:"header_hex"`
}

type createTapeResponse struct {
	TapeAddress   string `json:"tape_address"`
	WriterAddress string `json:"writer_address"`
	MerkleSeed    string `json:"merkle_seed"`
}

// HandleCreate
// @Summary Create a tape
// @Accept json
// @Produce json
// @Router /api/tapes [post]
func (h *TapeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err, "invalid request body")
		return
	}
	authority, err := decodeHash(req.Authority)
	if err != nil {
		writeError(w, err, "")
		return
	}
	var header [primitives.HeaderSize]byte
	if req.HeaderHex != "" {
		b, derr := hex.DecodeString(req.HeaderHex)
		if derr != nil {
			writeError(w, derr, "invalid header_hex")
			return
		}
		copy(header[:], b)
	}

	result, err := h.svc.Create(r.Context(), authority, decodeName(req.Name), header)
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, createTapeResponse{
		TapeAddress:   hex.EncodeToString(result.TapeAddress[:]),
		WriterAddress: hex.EncodeToString(result.WriterAddress[:]),
		MerkleSeed:    hex.EncodeToString(result.MerkleSeed[:]),
	})
}

// HandleWrite appends the raw request body to the tape as segments.
// @Summary Write bytes to a tape
// @Router /api/tapes/{address}/write [post]
func (h *TapeHandler) HandleWrite(w http.ResponseWriter, r *http.Request) {
	tapeAddr, authority, err := h.addressAndAuthority(r)
	if err != nil {
		writeError(w, err, "")
		return
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, int64(primitives.MaxTapeSize)))
	if err != nil {
		writeError(w, err, "failed to read body")
		return
	}
	result, err := h.svc.Write(r.Context(), authority, tapeAddr, data)
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"num_added":      result.NumAdded,
		"total_segments": result.TotalSegments,
		"merkle_root":    hex.EncodeToString(result.MerkleRoot[:]),
	})
}

type updateTapeRequest struct {
	Authority     string   `json:"authority"`
	SegmentNumber uint64   `json:"segment_number"`
	OldDataHex    string   `json:"old_data_hex"`
	NewDataHex    string   `json:"new_data_hex"`
	ProofHex      []string `json:"proof_hex"`
}

// HandleUpdate
// @Summary Update a tape segment by Merkle proof
// @Router /api/tapes/{address}/update [post]
func (h *TapeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	tapeAddr, err := decodeHash(r.PathValue("address"))
	if err != nil {
		writeError(w, err, "")
		return
	}
	var req updateTapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err, "invalid request body")
		return
	}
	authority, err := decodeHash(req.Authority)
	if err != nil {
		writeError(w, err, "")
		return
	}
	if len(req.ProofHex) != primitives.ProofLen {
		writeError(w, fmt.Errorf("proof_hex must have exactly %d entries", primitives.ProofLen), "")
		return
	}

	var oldData, newData [primitives.SegmentSize]byte
	if b, derr := hex.DecodeString(req.OldDataHex); derr == nil {
		copy(oldData[:], b)
	}
	if b, derr := hex.DecodeString(req.NewDataHex); derr == nil {
		copy(newData[:], b)
	}
	var proof [primitives.ProofLen]primitives.Hash
	for i, p := range req.ProofHex {
		h, derr := decodeHash(p)
		if derr != nil {
			writeError(w, derr, "")
			return
		}
		proof[i] = h
	}

	result, err := h.svc.Update(r.Context(), authority, tapeAddr, req.SegmentNumber, oldData, newData, proof)
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"merkle_root": hex.EncodeToString(result.MerkleRoot[:])})
}

type finalizeTapeRequest struct {
	Authority string `json:"authority"`
	TailHex   string `json:"tail_hex"`
}

// HandleFinalize
// @Summary Finalize a tape
// @Router /api/tapes/{address}/finalize [post]
func (h *TapeHandler) HandleFinalize(w http.ResponseWriter, r *http.Request) {
	tapeAddr, err := decodeHash(r.PathValue("address"))
	if err != nil {
		writeError(w, err, "")
		return
	}
	var req finalizeTapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err, "invalid request body")
		return
	}
	authority, err := decodeHash(req.Authority)
	if err != nil {
		writeError(w, err, "")
		return
	}
	var tail [primitives.TailSize]byte
	if req.TailHex != "" {
		if b, derr := hex.DecodeString(req.TailHex); derr == nil {
			copy(tail[:], b)
		}
	}

	result, err := h.svc.Finalize(r.Context(), authority, tapeAddr, tail)
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tape_number": result.TapeNumber,
		"merkle_root": hex.EncodeToString(result.MerkleRoot[:]),
	})
}

// HandleGet returns the current persisted snapshot of a tape.
// @Summary Get a tape snapshot
// @Router /api/tapes/{address} [get]
func (h *TapeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	addr, err := decodeHash(r.PathValue("address"))
	if err != nil {
		writeError(w, err, "")
		return
	}
	tp, err := h.store.GetTape(addr)
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"number":         tp.Number,
		"state":          tp.State.String(),
		"authority":      hex.EncodeToString(tp.Authority[:]),
		"merkle_root":    hex.EncodeToString(tp.MerkleRoot[:]),
		"total_segments": tp.TotalSegments,
		"total_size":     tp.TotalSize,
	})
}

func (h *TapeHandler) addressAndAuthority(r *http.Request) (tapeAddr, authority primitives.Hash, err error) {
	tapeAddr, err = decodeHash(r.PathValue("address"))
	if err != nil {
		return
	}
	authority, err = decodeHash(r.Header.Get("X-Authority"))
	return
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
