package logging

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("loud"))
}

func TestNew(t *testing.T) {
	l, err := New("error", time.UTC)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.ErrorLevel))
}

func TestNewWithCore_TimestampsInLocation(t *testing.T) {
	var buf bytes.Buffer
	loc := time.FixedZone("COT", -5*60*60)
	l := NewWithCore(zapcore.AddSync(&buf), loc)

	l.Info("document reviewed", zap.String("document_id", "d1"))
	require.NoError(t, l.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "document reviewed", entry["msg"])
	assert.Equal(t, "d1", entry["document_id"])
	assert.Contains(t, entry["ts"], "-05:00")
}
