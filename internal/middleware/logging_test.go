package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T, ctx context.Context, msg string) map[string]interface{} {
	t.Helper()

	var buf bytes.Buffer
	logger := slog.New(&ctxHandler{slog.NewJSONHandler(&buf, nil)})
	logger.InfoContext(ctx, msg)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestCtxHandlerEnrichesFromContext(t *testing.T) {
	ctx := context.Background()
	ctx = context.WithValue(ctx, RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, "user-42")
	ctx = context.WithValue(ctx, TraceIDKey, "trace-7")

	record := captureLog(t, ctx, "enriched")
	assert.Equal(t, "req-1", record["request_id"])
	assert.Equal(t, "user-42", record["user_id"])
	assert.Equal(t, "trace-7", record["trace_id"])
}

func TestCtxHandlerSkipsAbsentValues(t *testing.T) {
	record := captureLog(t, context.Background(), "bare")
	assert.NotContains(t, record, "request_id")
	assert.NotContains(t, record, "user_id")
	assert.NotContains(t, record, "trace_id")
}

// The handler only picks up plain strings, so anything stored under these
// keys must be converted before entering the context.
func TestCtxHandlerIgnoresNonStringValues(t *testing.T) {
	type wrapped string
	ctx := context.WithValue(context.Background(), UserIDKey, wrapped("user-42"))

	record := captureLog(t, ctx, "typed")
	assert.NotContains(t, record, "user_id")
}
