package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWriterLoggerUsesSeverityKeys(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, "warn")
	logger.Info("dropped")
	logger.Warn("kept", zap.String("municipality", "settimo"))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Equal(t, "WARN", entry["severity"])
	require.Equal(t, "kept", entry["message"])
	require.Equal(t, "settimo", entry["municipality"])
	require.Contains(t, entry, "timestamp")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	t.Parallel()

	require.Equal(t, zap.InfoLevel, atomicLevel("loud").Level())
	require.Equal(t, zap.InfoLevel, atomicLevel("").Level())
	require.Equal(t, zap.DebugLevel, atomicLevel(" DEBUG ").Level())
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	require.NotNil(t, FromContext(context.Background()))
	logger := zap.NewExample()
	ctx := WithLogger(context.Background(), logger)
	require.Same(t, logger, FromContext(ctx))
}
