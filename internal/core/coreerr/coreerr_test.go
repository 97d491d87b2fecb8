package coreerr_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tapedrive-io/tape/internal/core/coreerr"
)

func TestCodeOf_KnownSentinels(t *testing.T) {
	require.Equal(t, coreerr.CodeSolutionTooEasy, coreerr.CodeOf(coreerr.ErrSolutionTooEasy))
	require.Equal(t, coreerr.CodeClaimTooLarge, coreerr.CodeOf(coreerr.ErrClaimTooLarge))
}

func TestCodeOf_WrappedError(t *testing.T) {
	wrapped := fmt.Errorf("mine: %w", coreerr.ErrSolutionInvalid)
	require.Equal(t, coreerr.CodeSolutionInvalid, coreerr.CodeOf(wrapped))
}

func TestCodeOf_UnknownErrorDefaultsToUnknownCode(t *testing.T) {
	require.Equal(t, coreerr.CodeUnknownError, coreerr.CodeOf(fmt.Errorf("boom")))
}

func TestClassOf_Classifications(t *testing.T) {
	require.Equal(t, coreerr.ClassCaller, coreerr.ClassOf(coreerr.ErrUnexpectedState))
	require.Equal(t, coreerr.ClassCaller, coreerr.ClassOf(coreerr.ErrMaxSupply))
	require.Equal(t, coreerr.ClassProof, coreerr.ClassOf(coreerr.ErrSolutionInvalid))
	require.Equal(t, coreerr.ClassProof, coreerr.ClassOf(coreerr.ErrSolutionTooEasy))
	require.Equal(t, coreerr.ClassStructural, coreerr.ClassOf(coreerr.ErrWriteFailed))
}

func TestClassOf_DefaultsToStructural(t *testing.T) {
	require.Equal(t, coreerr.ClassStructural, coreerr.ClassOf(fmt.Errorf("unmapped")))
}
