package treasury

import "errors"

var (
	ErrAlreadyInitialized = errors.New("treasury: core already initialized")
)
