package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelAndFormat(t *testing.T) {
	tests := []struct {
		level     string
		format    string
		wantLevel logrus.Level
		wantJSON  bool
	}{
		{"debug", "json", logrus.DebugLevel, true},
		{"WARN", "text", logrus.WarnLevel, false},
		{"nonsense", "", logrus.InfoLevel, true},
		{"", "TEXT", logrus.InfoLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			logger := New(tt.level, tt.format, &bytes.Buffer{})
			assert.Equal(t, tt.wantLevel, logger.GetLevel())
			_, isJSON := logger.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.wantJSON, isJSON)
		})
	}
}

func TestFromContext_AddsIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := New("info", "json", &buf)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithSessionID(ctx, "sess-1")

	FromContext(ctx, logger).Info("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "sess-1", entry["session_id"])
	assert.Equal(t, "hello", entry["msg"])
}

func TestFromContext_NoIDs(t *testing.T) {
	logger := Discard()
	assert.Equal(t, logrus.FieldLogger(logger), FromContext(context.Background(), logger))
}

func TestContextAccessors_Empty(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))
	assert.Empty(t, SessionID(context.Background()))
}
