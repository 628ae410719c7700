package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestHandler_MasksConfiguredKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, &Config{ServiceName: "otpgate", MaskFields: []string{"Code", " phone "}}, nil))

	logger.InfoContext(context.Background(), "otp issued",
		"code", "12345",
		"phone", "+15551234567",
		"otp_id", "abc",
		"payload", `{"code":"99999","user_id":"u1"}`,
		"meta", map[string]any{"phone": "+1555"},
	)

	line := decodeLine(t, &buf)
	assert.Equal(t, "***", line["code"])
	assert.Equal(t, "***", line["phone"])
	assert.Equal(t, "abc", line["otp_id"])
	assert.JSONEq(t, `{"code":"***","user_id":"u1"}`, line["payload"].(string))
	assert.Equal(t, map[string]any{"phone": "***"}, line["meta"])
	assert.Equal(t, "otpgate", line["service"])
	assert.Equal(t, "INFO", line["severity"])
}

func TestHandler_CorrelationID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, &Config{}, nil))

	ctx := SetCorrelationID(context.Background(), "cid-1")
	logger.InfoContext(ctx, "hello")

	assert.Equal(t, "cid-1", decodeLine(t, &buf)["_cID"])
}

func TestHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, &Config{LogLevel: "warn"}, nil))

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestParseLevel_Fallback(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
}

func TestEnsureCorrelationID(t *testing.T) {
	ctx, id := EnsureCorrelationID(context.Background(), "")
	require.NotEmpty(t, id)
	assert.Equal(t, id, GetCorrelationID(ctx))

	_, kept := EnsureCorrelationID(ctx, "")
	assert.Equal(t, id, kept)

	_, given := EnsureCorrelationID(context.Background(), "given")
	assert.Equal(t, "given", given)
}

func TestNew_Disabled(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	inst, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)
	assert.NotNil(t, inst.Tracer("x"))
	assert.NoError(t, inst.Shutdown(context.Background()))
}
