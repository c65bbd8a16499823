package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetLoggerReturnsWorkingLogger(t *testing.T) {
	logger := GetLogger()
	require.NotNil(t, logger)
	logger.Debug().Str("check", "console").Msg("logger smoke test")
}

func TestInitLoggerConfiguresOutputs(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Logging.Level = "debug"
	cfg.Logging.Output = []string{"stdout"}

	logger := InitLogger(cfg)
	require.NotNil(t, logger)
	logger.Info().Str("check", "configured").Msg("logger smoke test")
	require.NotNil(t, GetLogger())
}
