package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"github.com/veritype/veritype/internal/config"
)

// newTestLogger builds a logger that writes JSON entries to a buffer.
func newTestLogger(t *testing.T) (Logger, *zaptest.Buffer) {
	t.Helper()
	buf := &zaptest.Buffer{}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)
	core := zapcore.NewCore(encoder, buf, zapcore.DebugLevel)
	z := zap.New(core)
	return &zapLogger{z: z}, buf
}

func TestNewLogger_JSONFormat(t *testing.T) {
	l, err := NewLogger(config.LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_TextFormat(t *testing.T) {
	l, err := NewLogger(config.LogConfig{Level: "debug", Format: "text"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_BadOutputPath(t *testing.T) {
	_, err := NewLogger(config.LogConfig{Output: "scheme://nope"})
	assert.Error(t, err)
}

func TestNopLogger_AllMethodsNoOp(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Debug("msg")
		l.Info("msg")
		l.Warn("msg")
		l.Error("msg")
		l.Fatal("msg")
	})
}

func TestNopLogger_With_ReturnsSelf(t *testing.T) {
	l := NewNopLogger()
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("child"))
}

func TestZapLogger_Levels(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Debug("debug msg")
	l.Info("info msg")
	l.Warn("warn msg")
	l.Error("error msg")

	out := buf.String()
	assert.Contains(t, out, "debug msg")
	assert.Contains(t, out, "\"level\":\"info\"")
	assert.Contains(t, out, "warn msg")
	assert.Contains(t, out, "\"level\":\"error\"")
}

func TestZapLogger_With_AddsFields(t *testing.T) {
	l, buf := newTestLogger(t)
	l.With(String("foo", "bar")).Info("msg")
	assert.Contains(t, buf.String(), "\"foo\":\"bar\"")
}

func TestZapLogger_Named(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Named("detector").Info("msg")
	assert.Contains(t, buf.String(), "detector")
}

func TestZapLogger_TypedFields(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Info("msg",
		Int("count", 3),
		Int64("big", 9),
		Float64("prob", 0.5),
		Bool("ok", true),
		Duration("took", 2*time.Second),
		Any("bag", map[string]int{"a": 1}),
	)
	out := buf.String()
	assert.Contains(t, out, "\"count\":3")
	assert.Contains(t, out, "\"prob\":0.5")
	assert.Contains(t, out, "\"ok\":true")
}

func TestErrField(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Error("failed", Err(errors.New("boom")))
	assert.Contains(t, buf.String(), "\"error\":\"boom\"")

	assert.Equal(t, "<nil>", Err(nil).Value)
}

func TestSetDefault(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	l := NewNopLogger()
	SetDefault(l)
	assert.Equal(t, l, Default())

	// nil must be ignored.
	SetDefault(nil)
	assert.Equal(t, l, Default())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("whatever"))
}
