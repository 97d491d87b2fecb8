package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tapedrive-io/tape/internal/core/coreerr"
	"github.com/tapedrive-io/tape/internal/core/mining"
	"github.com/tapedrive-io/tape/internal/core/store"
	"github.com/tapedrive-io/tape/internal/core/tape"
	"github.com/tapedrive-io/tape/internal/core/treasury"
)

// ErrorResponse is the JSON body written for any non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Details string `json:"details,omitempty"`
}

// writeError maps a core error to an HTTP status the same way the
// teacher's isTransactionFailedError/isInvalidInputError/isNotFoundError
// chain does, generalized to the core's coreerr.Class taxonomy plus the
// package-local sentinels the core services actually return.
func writeError(w http.ResponseWriter, err error, fallback string) {
	status := statusFor(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	msg := fallback
	if msg == "" {
		msg = err.Error()
	}
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: msg, Code: status, Details: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, tape.ErrNotFound), errors.Is(err, mining.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrAlreadyExists), errors.Is(err, tape.ErrAlreadyExists), errors.Is(err, mining.ErrAlreadyExists), errors.Is(err, treasury.ErrAlreadyInitialized), errors.Is(err, mining.ErrMinerNotEmpty):
		return http.StatusConflict
	case errors.Is(err, tape.ErrUnauthorized), errors.Is(err, mining.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, tape.ErrUnexpectedState), errors.Is(err, tape.ErrWriterMismatch):
		return http.StatusBadRequest
	case errors.Is(err, treasury.ErrInsufficientFunds), errors.Is(err, tape.ErrWriteFailed),
		errors.Is(err, mining.ErrSolutionInvalid), errors.Is(err, mining.ErrSolutionTooEasy),
		errors.Is(err, mining.ErrRecallMismatch), errors.Is(err, mining.ErrProofInvalid),
		errors.Is(err, mining.ErrClaimTooLarge):
		return http.StatusUnprocessableEntity
	}

	switch coreerr.ClassOf(err) {
	case coreerr.ClassCaller:
		return http.StatusBadRequest
	case coreerr.ClassProof:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
