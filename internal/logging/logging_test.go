package logging_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tapedrive-io/tape/internal/logging"
)

func TestNew_DefaultConfigProducesUsableLogger(t *testing.T) {
	l := logging.New(logging.Default())
	require.NotNil(t, l)
	l.Logf("INFO hello from test")
}

func TestNew_InvalidLevelFallsBackInsteadOfPanicking(t *testing.T) {
	cfg := logging.Default()
	cfg.Level = "not-a-level"
	l := logging.New(cfg)
	require.NotNil(t, l)
}

func TestNew_JSONFormatBuildsWithoutError(t *testing.T) {
	cfg := logging.Config{Level: logging.LevelDebug, Format: logging.FormatJSON, Output: "stdout"}
	l := logging.New(cfg)
	require.NotNil(t, l)
	l.Logf("INFO structured message")
}
